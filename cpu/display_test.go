package cpu

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

func TestSetPixel(t *testing.T) {
	d := NewDisplay()

	assert.False(t, d.SetPixel(3, 4, true))
	assert.True(t, d.GetPixel(3, 4))

	// drawing an unset bit leaves the pixel alone
	assert.False(t, d.SetPixel(3, 4, false))
	assert.True(t, d.GetPixel(3, 4))

	// XOR a lit pixel off: that's an erasure
	assert.True(t, d.SetPixel(3, 4, true))
	assert.False(t, d.GetPixel(3, 4))
}

func TestSetPixelOffScreen(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"left", -1, 0},
		{"right", ScreenWidth, 0},
		{"top", 0, -1},
		{"bottom", 0, ScreenHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDisplay()
			assert.False(t, d.SetPixel(tt.x, tt.y, true))
			assert.False(t, d.GetPixel(tt.x, tt.y))
			assert.Equal(t, Frame{}, d.Frame())
		})
	}
}

func TestDrawSpriteRow(t *testing.T) {
	d := NewDisplay()

	assert.False(t, d.DrawSprite(10, 5, 0b10100001))
	want := []bool{true, false, true, false, false, false, false, true}
	for i, on := range want {
		assert.Equal(t, on, d.GetPixel(10+i, 5))
	}

	// overlapping only on unset screen pixels: no collision
	assert.False(t, d.DrawSprite(10, 5, 0b01000000))
	// overlapping a lit pixel: collision
	assert.True(t, d.DrawSprite(10, 5, 0b00000001))
	assert.False(t, d.GetPixel(17, 5))
}

func TestDrawSpriteSelfInverse(t *testing.T) {
	d := NewDisplay()
	d.SetPixel(0, 0, true)
	d.SetPixel(61, 31, true)
	before := d.Frame()

	for _, pos := range [][2]int{{0, 0}, {60, 31}, {-4, 2}, {30, 16}} {
		d.DrawSprite(pos[0], pos[1], 0xA5)
		d.DrawSprite(pos[0], pos[1], 0xA5)
	}
	if diff := cmp.Diff(before, d.Frame()); diff != "" {
		t.Errorf("frame after drawing twice: (-want, +got)\n%s", diff)
	}
}

func TestDrawSpriteClipsRightEdge(t *testing.T) {
	d := NewDisplay()
	d.DrawSprite(60, 0, 0xFF)

	for x := 60; x < ScreenWidth; x++ {
		assert.True(t, d.GetPixel(x, 0))
	}
	// no wrap to the left edge
	for x := 0; x < 4; x++ {
		assert.False(t, d.GetPixel(x, 0))
	}
}

func TestDisplayClearAndString(t *testing.T) {
	d := NewDisplay()
	d.SetPixel(0, 0, true)

	lines := strings.Split(d.String(), "\n")
	assert.Equal(t, "|*"+strings.Repeat(" ", ScreenWidth-1)+"|", lines[1])

	d.Clear()
	assert.Equal(t, Frame{}, d.Frame())
}
