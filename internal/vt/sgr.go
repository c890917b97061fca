package vt

import "github.com/Gaurav-Gosain/termgrid/internal/grid"

// selectGraphicRendition applies an SGR parameter list to the grid's pen.
func (p *Parser) selectGraphicRendition(params []int) {
	pen := p.g.Pen()
	if len(params) == 0 {
		pen = grid.Pen{}
	}
	for i := 0; i < len(params); i++ {
		switch v := params[i]; {
		case v == 0:
			pen = grid.Pen{}
		case v == 1:
			pen.Attrs |= grid.AttrBold
		case v == 4:
			pen.Attrs |= grid.AttrUnderline
		case v == 7:
			pen.Attrs |= grid.AttrInverse
		case v == 22:
			pen.Attrs &^= grid.AttrBold
		case v == 24:
			pen.Attrs &^= grid.AttrUnderline
		case v == 27:
			pen.Attrs &^= grid.AttrInverse
		case v >= 30 && v <= 37:
			pen.Fg = grid.Indexed(uint8(v - 30))
		case v == 38:
			c, n, ok := extendedColor(params[i+1:])
			if ok {
				pen.Fg = c
			}
			i += n
		case v == 39:
			pen.Fg = grid.DefaultColor
		case v >= 40 && v <= 47:
			pen.Bg = grid.Indexed(uint8(v - 40))
		case v == 48:
			c, n, ok := extendedColor(params[i+1:])
			if ok {
				pen.Bg = c
			}
			i += n
		case v == 49:
			pen.Bg = grid.DefaultColor
		case v >= 90 && v <= 97:
			pen.Fg = grid.Indexed(uint8(v - 90 + 8))
		case v >= 100 && v <= 107:
			pen.Bg = grid.Indexed(uint8(v - 100 + 8))
		}
	}
	p.g.SetPen(pen)
}

// extendedColor parses the arguments following 38 or 48: "5;N" or
// "2;R;G;B". It returns how many arguments it consumed. A truncated or
// unknown form consumes the rest of the list so its numbers are not
// misread as attributes.
func extendedColor(args []int) (c grid.Color, consumed int, ok bool) {
	if len(args) == 0 {
		return c, 0, false
	}
	switch args[0] {
	case 5:
		if len(args) < 2 {
			return c, len(args), false
		}
		return grid.Indexed(uint8(min(args[1], 255))), 2, true
	case 2:
		if len(args) < 4 {
			return c, len(args), false
		}
		return grid.RGB(channel(args[1]), channel(args[2]), channel(args[3])), 4, true
	default:
		return c, len(args), false
	}
}

func channel(v int) uint8 {
	return uint8(min(v, 255))
}
