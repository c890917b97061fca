package grid

// Attr is a set of rendition flags.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrUnderline
	AttrInverse
)

// Has reports whether all flags in f are set.
func (a Attr) Has(f Attr) bool {
	return a&f == f
}

// Cell is one grid position. Char is zero when the cell has never been
// painted (or was erased); otherwise it holds exactly one printable rune.
type Cell struct {
	Char  rune
	Fg    Color
	Bg    Color
	Attrs Attr
}

// Empty reports whether the cell holds no character.
func (c Cell) Empty() bool {
	return c.Char == 0
}

// Rune returns the character to draw, a space for empty cells.
func (c Cell) Rune() rune {
	if c.Char == 0 {
		return ' '
	}
	return c.Char
}

// Bold, Underline and Inverse are shorthands for Attrs.Has.
func (c Cell) Bold() bool      { return c.Attrs.Has(AttrBold) }
func (c Cell) Underline() bool { return c.Attrs.Has(AttrUnderline) }
func (c Cell) Inverse() bool   { return c.Attrs.Has(AttrInverse) }

// Pen is the SGR state applied to subsequently printed cells.
type Pen struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

func (p Pen) cell(r rune) Cell {
	return Cell{Char: r, Fg: p.Fg, Bg: p.Bg, Attrs: p.Attrs}
}

// blank is what erase operations leave behind. The background of the
// current pen is kept so cleared areas match the application's colors.
func (p Pen) blank() Cell {
	return Cell{Bg: p.Bg}
}

// Mode is a set of terminal modes toggled by DEC private sequences.
type Mode uint8

const (
	ModeCursorVisible Mode = 1 << iota
	ModeAppCursorKeys
	ModeBracketedPaste
	ModeAutoWrap

	defaultModes = ModeCursorVisible | ModeAutoWrap
)
