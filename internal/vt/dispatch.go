package vt

import (
	"fmt"
	"image/color"

	"github.com/Gaurav-Gosain/termgrid/internal/grid"
)

// Callbacks are side effects the parser can not express as grid mutations.
// Any of them may be nil.
type Callbacks struct {
	// Reply receives bytes the terminal must send back to the child, such
	// as cursor position reports. The slice is not retained.
	Reply func([]byte)
	// Title is called for OSC 0 and OSC 2.
	Title func(string)
	// WorkingDirectory is called for OSC 7.
	WorkingDirectory func(string)
	// DefaultForeground, DefaultBackground and CursorColor are called for
	// OSC 10, 11 and 12. A nil color resets to the configured default.
	DefaultForeground func(color.Color)
	DefaultBackground func(color.Color)
	CursorColor       func(color.Color)
	// Bell is called for BEL in the ground state.
	Bell func()
}

// action is the closed set of operations a sequence can trigger.
type action uint8

const (
	actNone action = iota
	actCursorUp
	actCursorDown
	actCursorForward
	actCursorBackward
	actCursorNextLine
	actCursorPrevLine
	actCursorColumn
	actCursorRow
	actCursorPosition
	actEraseDisplay
	actEraseLine
	actInsertLines
	actDeleteLines
	actInsertChars
	actDeleteChars
	actEraseChars
	actScrollUp
	actScrollDown
	actSetScrollRegion
	actSaveCursor
	actRestoreCursor
	actSGR
	actDeviceStatus
	actDeviceAttributes
	actWindowOps
	actSetPrivateMode
	actResetPrivateMode
	actIndex
	actNextLine
	actReverseIndex
	actFullReset
	actIgnore
)

// seqKey identifies a sequence by its private marker (one of < = > ?), its
// first intermediate byte and its final byte.
type seqKey struct {
	marker byte
	inter  byte
	final  byte
}

var csiActions = map[seqKey]action{
	{final: 'A'}: actCursorUp,
	{final: 'B'}: actCursorDown,
	{final: 'e'}: actCursorDown,
	{final: 'C'}: actCursorForward,
	{final: 'a'}: actCursorForward,
	{final: 'D'}: actCursorBackward,
	{final: 'E'}: actCursorNextLine,
	{final: 'F'}: actCursorPrevLine,
	{final: 'G'}: actCursorColumn,
	{final: '`'}: actCursorColumn,
	{final: 'd'}: actCursorRow,
	{final: 'H'}: actCursorPosition,
	{final: 'f'}: actCursorPosition,
	{final: 'J'}: actEraseDisplay,
	{final: 'K'}: actEraseLine,
	{final: 'L'}: actInsertLines,
	{final: 'M'}: actDeleteLines,
	{final: '@'}: actInsertChars,
	{final: 'P'}: actDeleteChars,
	{final: 'X'}: actEraseChars,
	{final: 'S'}: actScrollUp,
	{final: 'T'}: actScrollDown,
	{final: 'r'}: actSetScrollRegion,
	{final: 's'}: actSaveCursor,
	{final: 'u'}: actRestoreCursor,
	{final: 'm'}: actSGR,
	{final: 'n'}: actDeviceStatus,
	{final: 'c'}: actDeviceAttributes,
	{final: 't'}: actWindowOps,

	{marker: '?', final: 'h'}: actSetPrivateMode,
	{marker: '?', final: 'l'}: actResetPrivateMode,

	// Cursor style and secondary attributes are accepted and dropped.
	{inter: ' ', final: 'q'}: actIgnore,
	{marker: '>', final: 'c'}: actIgnore,
	{marker: '>', final: 'm'}: actIgnore,
	{marker: '?', final: 'n'}: actIgnore,
}

var escActions = map[seqKey]action{
	{final: '7'}: actSaveCursor,
	{final: '8'}: actRestoreCursor,
	{final: 'D'}: actIndex,
	{final: 'E'}: actNextLine,
	{final: 'M'}: actReverseIndex,
	{final: 'c'}: actFullReset,
	// Keypad modes and the string terminator carry no grid effect.
	{final: '='}:  actIgnore,
	{final: '>'}:  actIgnore,
	{final: '\\'}: actIgnore,
}

// privateModes maps DEC private mode numbers to grid modes.
var privateModes = map[int]grid.Mode{
	1:    grid.ModeAppCursorKeys,
	7:    grid.ModeAutoWrap,
	25:   grid.ModeCursorVisible,
	2004: grid.ModeBracketedPaste,
}

// param returns parameter i, or def when it is missing or zero.
func param(params []int, i, def int) int {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

// rawParam returns parameter i, or def only when it is missing. Used where
// zero is meaningful, such as erase modes.
func rawParam(params []int, i, def int) int {
	if i >= len(params) {
		return def
	}
	return params[i]
}

func (p *Parser) key(final byte) seqKey {
	k := seqKey{marker: p.marker, final: final}
	if p.ninter > 0 {
		k.inter = p.inter[0]
	}
	return k
}

func (p *Parser) csiDispatch(final byte) {
	if p.overInt || p.ninter > 1 {
		p.logf("vt: ignored CSI with %d intermediates", p.ninter)
		return
	}
	act, ok := csiActions[p.key(final)]
	if !ok {
		p.logf("vt: unhandled CSI %c%v%c", max(p.marker, ' '), p.params[:p.nparams], final)
		return
	}
	params := p.params[:p.nparams]
	g := p.g

	switch act {
	case actCursorUp:
		g.MoveCursor(-param(params, 0, 1), 0)
	case actCursorDown:
		g.MoveCursor(param(params, 0, 1), 0)
	case actCursorForward:
		g.MoveCursor(0, param(params, 0, 1))
	case actCursorBackward:
		g.MoveCursor(0, -param(params, 0, 1))
	case actCursorNextLine:
		g.MoveCursor(param(params, 0, 1), 0)
		g.CarriageReturn()
	case actCursorPrevLine:
		g.MoveCursor(-param(params, 0, 1), 0)
		g.CarriageReturn()
	case actCursorColumn:
		row, _ := g.Cursor()
		g.SetCursor(row, param(params, 0, 1)-1)
	case actCursorRow:
		_, col := g.Cursor()
		g.SetCursor(param(params, 0, 1)-1, col)
	case actCursorPosition:
		g.SetCursor(param(params, 0, 1)-1, param(params, 1, 1)-1)
	case actEraseDisplay:
		g.Erase(rawParam(params, 0, 0))
	case actEraseLine:
		g.EraseLine(rawParam(params, 0, 0))
	case actInsertLines:
		g.InsertLines(param(params, 0, 1))
	case actDeleteLines:
		g.DeleteLines(param(params, 0, 1))
	case actInsertChars:
		g.InsertChars(param(params, 0, 1))
	case actDeleteChars:
		g.DeleteChars(param(params, 0, 1))
	case actEraseChars:
		g.EraseChars(param(params, 0, 1))
	case actScrollUp:
		g.ScrollUp(param(params, 0, 1))
	case actScrollDown:
		g.ScrollDown(param(params, 0, 1))
	case actSetScrollRegion:
		rows, _ := g.Size()
		g.SetScrollRegion(param(params, 0, 1)-1, param(params, 1, rows)-1)
	case actSaveCursor:
		g.SaveCursor()
	case actRestoreCursor:
		g.RestoreCursor()
	case actSGR:
		p.selectGraphicRendition(params)
	case actDeviceStatus:
		p.deviceStatus(rawParam(params, 0, 0))
	case actDeviceAttributes:
		if rawParam(params, 0, 0) == 0 {
			p.reply("\x1b[?1;2c")
		}
	case actWindowOps:
		if rawParam(params, 0, 0) == 18 {
			rows, cols := g.Size()
			p.reply(fmt.Sprintf("\x1b[8;%d;%dt", rows, cols))
		}
	case actSetPrivateMode, actResetPrivateMode:
		on := act == actSetPrivateMode
		for _, n := range params {
			if m, ok := privateModes[n]; ok {
				g.SetMode(m, on)
			}
		}
	}
}

func (p *Parser) deviceStatus(n int) {
	switch n {
	case 5:
		p.reply("\x1b[0n")
	case 6:
		row, col := p.g.Cursor()
		p.reply(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
	}
}

func (p *Parser) reply(s string) {
	if p.cb.Reply != nil {
		p.cb.Reply([]byte(s))
	}
}

func (p *Parser) escDispatch(final byte) {
	if p.overInt || p.ninter > 1 {
		return
	}
	act, ok := escActions[p.key(final)]
	if !ok {
		// Charset designations such as ESC ( B land here.
		p.logf("vt: unhandled ESC %q", final)
		return
	}
	g := p.g
	switch act {
	case actSaveCursor:
		g.SaveCursor()
	case actRestoreCursor:
		g.RestoreCursor()
	case actIndex:
		g.Index()
	case actNextLine:
		g.Newline()
	case actReverseIndex:
		g.ReverseIndex()
	case actFullReset:
		g.Reset()
		if p.title != "" {
			p.title = ""
			if p.cb.Title != nil {
				p.cb.Title("")
			}
		}
	}
}
