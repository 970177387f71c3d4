package surface

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color. The zero value is off.
type Color [3]uint8

// Common colors.
var (
	ColorOff      = Color{}
	ColorWhite    = Color{255, 255, 255}
	ColorEnabled  = Color{255, 255, 255}
	ColorDisabled = Color{40, 40, 40}
	ColorBound    = Color{0x88, 0x88, 0x88}
)

// ColorFromInt builds a Color from 0xRRGGBB.
func ColorFromInt(v uint32) Color {
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// ParseColor parses "#rrggbb".
func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// Int returns the color as 0xRRGGBB.
func (c Color) Int() uint32 {
	return uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// IsOff reports whether the color is black.
func (c Color) IsOff() bool {
	return c == ColorOff
}

// Fade blends c towards to. t is clamped to [0, 1].
func (c Color) Fade(to Color, t float64) Color {
	t = max(0, min(1, t))
	return fromColorful(c.colorful().BlendRgb(to.colorful(), t))
}

// Dim scales the brightness of c by f in [0, 1].
func (c Color) Dim(f float64) Color {
	return ColorOff.Fade(c, f)
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{r, g, b}
}
