package grid

import "github.com/charmbracelet/x/ansi"

// ColorKind tells a renderer how to interpret a Color.
type ColorKind uint8

const (
	// ColorDefault defers to the renderer's configured foreground or background.
	ColorDefault ColorKind = iota
	// ColorIndexed refers to one of the 256 palette entries.
	ColorIndexed
	// ColorRGB carries a 24-bit value.
	ColorRGB
)

// Color is a compact cell color. The zero value is the default color.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// DefaultColor is the renderer's default foreground or background.
var DefaultColor = Color{}

// Indexed returns a palette color.
func Indexed(i uint8) Color {
	return Color{Kind: ColorIndexed, Index: i}
}

// RGB returns a truecolor value.
func RGB(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// IsDefault reports whether c defers to the renderer default.
func (c Color) IsDefault() bool {
	return c.Kind == ColorDefault
}

// RGB resolves c to 8-bit channels using the built-in palette.
// ok is false for the default color, which only the renderer can resolve.
func (c Color) RGB() (r, g, b uint8, ok bool) {
	switch c.Kind {
	case ColorIndexed:
		r, g, b = IndexedRGB(c.Index)
		return r, g, b, true
	case ColorRGB:
		return c.R, c.G, c.B, true
	default:
		return 0, 0, 0, false
	}
}

// Palette holds the 16 base colors used for SGR 30-37, 40-47, 90-97 and 100-107.
var Palette = [16][3]uint8{
	{0, 0, 0},
	{205, 49, 49},
	{13, 188, 121},
	{229, 229, 16},
	{36, 114, 200},
	{188, 63, 188},
	{17, 168, 205},
	{204, 204, 204},
	{128, 128, 128},
	{255, 0, 0},
	{0, 255, 0},
	{255, 255, 0},
	{0, 0, 255},
	{255, 0, 255},
	{0, 255, 255},
	{255, 255, 255},
}

// DefaultForeground is the RGB value of an unstyled cell's text.
var DefaultForeground = [3]uint8{204, 204, 204}

// IndexedRGB returns the RGB value of a 256-color palette entry. Entries
// 16-231 form the 6x6x6 cube and 232-255 the grayscale ramp.
func IndexedRGB(i uint8) (r, g, b uint8) {
	if i < 16 {
		p := Palette[i]
		return p[0], p[1], p[2]
	}
	cr, cg, cb, _ := ansi.IndexedColor(i).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8)
}
