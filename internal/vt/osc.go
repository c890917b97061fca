package vt

import (
	"bytes"
	"image/color"
	"strconv"

	"github.com/charmbracelet/x/ansi"
)

// oscDispatch handles a complete OSC payload of the form "Ps;Pt".
// Unknown commands are skipped.
func (p *Parser) oscDispatch() {
	data := p.osc
	p.osc = p.osc[:0]

	cmdPart, arg, _ := bytes.Cut(data, []byte{';'})
	cmd, err := strconv.Atoi(string(cmdPart))
	if err != nil {
		p.logf("vt: malformed OSC %q", data)
		return
	}

	switch cmd {
	case 0, 2:
		p.title = string(arg)
		if p.cb.Title != nil {
			p.cb.Title(p.title)
		}
	case 1:
		// Icon name only.
	case 7:
		p.cwd = string(arg)
		if p.cb.WorkingDirectory != nil {
			p.cb.WorkingDirectory(p.cwd)
		}
	case 10, 11, 12, 110, 111, 112:
		p.handleDefaultColor(cmd, arg)
	default:
		p.logf("vt: unhandled OSC %d", cmd)
	}
}

func (p *Parser) handleDefaultColor(cmd int, arg []byte) {
	var c color.Color
	if cmd < 100 {
		value := string(arg)
		if value == "" || value == "?" {
			// Queries are not answered.
			return
		}
		if c = ansi.XParseColor(value); c == nil {
			return
		}
	}

	var fn func(color.Color)
	switch cmd % 100 {
	case 10:
		fn = p.cb.DefaultForeground
	case 11:
		fn = p.cb.DefaultBackground
	case 12:
		fn = p.cb.CursorColor
	}
	if fn != nil {
		fn(c)
	}
}
