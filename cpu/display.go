package cpu

import "strings"

// Screen dimensions in pixels.
const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// A Frame is a copy of the screen, indexed [row][column] with the origin at the top left.
type Frame [ScreenHeight][ScreenWidth]bool

// Display is the Chip-8's 64x32px monochrome screen.
//
// Pixels are only ever flipped: drawing a set sprite bit over a lit pixel turns the
// pixel off. When that happens the draw reports a collision, which is how
// Chip-8 games find out that two things touched.
type Display struct {
	screen Frame
}

// NewDisplay returns a blank Display.
func NewDisplay() *Display {
	return &Display{}
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.screen = Frame{}
}

// DrawSprite XORs one 8-pixel sprite row onto the screen with its leftmost pixel at x,y.
// The highest bit of row is the leftmost pixel.
//
// Pixels that land off the screen are dropped rather than wrapped around.
// DrawSprite returns true if any pixel was turned off.
func (d *Display) DrawSprite(x, y int, row byte) bool {
	collided := false
	for bit := 0; bit < 8; bit++ {
		on := row&(0x80>>bit) != 0
		if d.SetPixel(x+bit, y, on) {
			collided = true
		}
	}
	return collided
}

// SetPixel XORs the pixel at x,y with on and returns true if the pixel went from lit to unlit.
// Coordinates outside the screen are ignored and return false.
func (d *Display) SetPixel(x, y int, on bool) bool {
	if !onScreen(x, y) {
		return false
	}
	was := d.screen[y][x]
	d.screen[y][x] = was != on
	return was && !d.screen[y][x]
}

// GetPixel reports whether the pixel at x,y is lit. Off-screen pixels are never lit.
func (d *Display) GetPixel(x, y int) bool {
	if !onScreen(x, y) {
		return false
	}
	return d.screen[y][x]
}

// Frame returns a copy of the current screen contents.
func (d *Display) Frame() Frame {
	return d.screen
}

// String draws the screen as ASCII art inside a box, '*' for lit pixels.
func (d *Display) String() string {
	return d.screen.String()
}

func (f Frame) String() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", ScreenWidth) + "+\n"

	sb.WriteString(border)
	for _, row := range f {
		sb.WriteByte('|')
		for _, px := range row {
			if px {
				sb.WriteByte('*')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

func onScreen(x, y int) bool {
	return x >= 0 && x < ScreenWidth && y >= 0 && y < ScreenHeight
}
