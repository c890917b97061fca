// Package theme resolves grid colors to the concrete colors a renderer
// paints, using a bubbletint palette when one is selected.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	tint "github.com/lrstanley/bubbletint/v2"

	"github.com/Gaurav-Gosain/termgrid/internal/config"
	"github.com/Gaurav-Gosain/termgrid/internal/grid"
)

var enabled bool

// Initialize sets up the theme registry and selects themeName. Custom
// themes from the themes directory are registered first, so they can be
// selected by id. An empty name disables theming and the built-in palette
// is used. An unknown name falls back to the registry default.
func Initialize(themeName string) error {
	if themeName == "" {
		enabled = false
		return nil
	}

	enabled = true
	tint.NewDefaultRegistry()

	registerCustom()

	if !tint.SetTintID(themeName) {
		log.Warn("unknown theme, using default", "theme", themeName)
		tint.SetTintID("default")
	}
	return nil
}

// IsEnabled reports whether a theme is selected.
func IsEnabled() bool {
	return enabled
}

// Current returns the selected theme, or nil when theming is disabled.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

// IDs lists every registered theme id.
func IDs() []string {
	tint.NewDefaultRegistry()
	registerCustom()
	return tint.TintIDs()
}

// Palette maps grid colors to concrete colors. A nil Background leaves the
// host terminal's background in place.
type Palette struct {
	ANSI       [16]color.Color
	Foreground color.Color
	Background color.Color
	Cursor     color.Color
}

// NewPalette builds the palette for the selected theme. Without a theme
// the built-in 16 colors are used and the default colors come from
// appearance.
func NewPalette(appearance config.AppearanceConfig) Palette {
	if t := Current(); t != nil {
		return Palette{
			ANSI: [16]color.Color{
				t.Black, t.Red, t.Green, t.Yellow,
				t.Blue, t.Purple, t.Cyan, t.White,
				t.BrightBlack, t.BrightRed, t.BrightGreen, t.BrightYellow,
				t.BrightBlue, t.BrightPurple, t.BrightCyan, t.BrightWhite,
			},
			Foreground: t.Fg,
			Background: t.Bg,
			Cursor:     t.Cursor,
		}
	}

	var p Palette
	for i, rgb := range grid.Palette {
		p.ANSI[i] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
	}
	fg := grid.DefaultForeground
	p.Foreground = color.RGBA{R: fg[0], G: fg[1], B: fg[2], A: 0xff}
	if appearance.Foreground != "" {
		p.Foreground = lipgloss.Color(appearance.Foreground)
	}
	if appearance.Background != "" {
		p.Background = lipgloss.Color(appearance.Background)
	}
	p.Cursor = p.Foreground
	if appearance.Cursor != "" {
		p.Cursor = lipgloss.Color(appearance.Cursor)
	}
	return p
}

// WithDefaults returns p with the default colors replaced by any non-nil
// argument. Programs change these at runtime through OSC 10, 11 and 12.
func (p Palette) WithDefaults(fg, bg, cursor color.Color) Palette {
	if fg != nil {
		p.Foreground = fg
	}
	if bg != nil {
		p.Background = bg
	}
	if cursor != nil {
		p.Cursor = cursor
	}
	return p
}

// Fg resolves a cell's foreground color.
func (p Palette) Fg(c grid.Color) color.Color {
	if c.IsDefault() {
		return p.Foreground
	}
	return p.resolve(c)
}

// Bg resolves a cell's background color. The default background may be
// nil.
func (p Palette) Bg(c grid.Color) color.Color {
	if c.IsDefault() {
		return p.Background
	}
	return p.resolve(c)
}

func (p Palette) resolve(c grid.Color) color.Color {
	switch c.Kind {
	case grid.ColorIndexed:
		if c.Index < 16 && p.ANSI[c.Index] != nil {
			return p.ANSI[c.Index]
		}
		return ansi.IndexedColor(c.Index)
	case grid.ColorRGB:
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	return nil
}
