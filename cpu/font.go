package cpu

// Font sprite layout: sixteen hex digit glyphs, five bytes each, starting at address 0.
// The glyph for digit d lives at FontAddress + d*GlyphSize.
const (
	FontAddress = 0x000
	GlyphSize   = 5
)

var fontSprites = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the five sprite rows for hex digit d. It panics if d > 0xF.
func Glyph(d byte) []byte {
	start := int(d) * GlyphSize
	out := make([]byte, GlyphSize)
	copy(out, fontSprites[start:start+GlyphSize])
	return out
}

func loadFontSprites(memory *Memory) error {
	for i, b := range fontSprites {
		if err := memory.Write(FontAddress+i, b); err != nil {
			return err
		}
	}
	return nil
}
