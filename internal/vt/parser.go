// Package vt interprets a VT100/ECMA-48 byte stream and applies it to a
// grid.Grid.
//
// The Parser is a byte-driven state machine. Every byte, in every state,
// has a defined transition, so arbitrary input can never leave the parser
// stuck or push the grid out of bounds. Malformed or unsupported sequences
// are dropped and the parser resumes in the ground state.
package vt

import (
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/termgrid/internal/grid"
)

const (
	// MaxParams is the number of CSI parameters kept; extra ones are dropped.
	MaxParams = 32
	// MaxParamValue is where a CSI parameter saturates.
	MaxParamValue = 65535
	// MaxOSCLength bounds the OSC payload; longer payloads are truncated.
	MaxOSCLength = 4096
	// maxIntermediates bounds the intermediate bytes of a sequence. A
	// sequence with more is ignored.
	maxIntermediates = 2
)

// State is the parser's current mode.
type State uint8

const (
	StateGround State = iota
	StateEscape
	StateEscapeIntermediate
	StateCsiEntry
	StateCsiParam
	StateCsiIntermediate
	StateCsiIgnore
	StateOscString
	StateDcsPassthrough
	StateIgnoreString
)

var stateNames = [...]string{
	"Ground", "Escape", "EscapeIntermediate", "CsiEntry", "CsiParam",
	"CsiIntermediate", "CsiIgnore", "OscString", "DcsPassthrough", "IgnoreString",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Logger receives diagnostics about sequences the parser skipped.
type Logger interface {
	Debugf(format string, args ...any)
}

// Parser feeds bytes into a grid. It is not safe for concurrent use; the
// grid it drives must be locked by the caller for the duration of Write.
type Parser struct {
	g      *grid.Grid
	cb     Callbacks
	logger Logger

	state State

	params  [MaxParams]int
	nparams int
	cur     int
	curSet  bool
	marker  byte
	inter   [maxIntermediates]byte
	ninter  int
	overInt bool

	osc []byte

	utf8Buf [utf8.UTFMax]byte
	utf8Len int

	title string
	cwd   string
}

// New returns a parser in the ground state that drives g.
func New(g *grid.Grid, cb Callbacks) *Parser {
	return &Parser{
		g:   g,
		cb:  cb,
		osc: make([]byte, 0, 64),
	}
}

// SetLogger sets the logger for skipped sequences. A nil logger disables it.
func (p *Parser) SetLogger(l Logger) {
	p.logger = l
}

func (p *Parser) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Debugf(format, args...)
	}
}

// State returns the current parser mode.
func (p *Parser) State() State {
	return p.state
}

// Title returns the last title set through OSC 0 or 2.
func (p *Parser) Title() string {
	return p.title
}

// WorkingDirectory returns the last directory reported through OSC 7.
func (p *Parser) WorkingDirectory() string {
	return p.cwd
}

// Write applies b to the grid in order. It never fails.
func (p *Parser) Write(b []byte) (int, error) {
	for _, c := range b {
		p.Advance(c)
	}
	return len(b), nil
}

// WriteString is Write for strings.
func (p *Parser) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		p.Advance(s[i])
	}
	return len(s), nil
}

// Advance feeds one byte through the state machine.
func (p *Parser) Advance(b byte) {
	// Transitions valid from every state.
	switch b {
	case ansi.CAN, ansi.SUB:
		p.flushUTF8()
		p.abort()
		return
	case ansi.ESC:
		p.flushUTF8()
		p.endString()
		p.clearSequence()
		p.state = StateEscape
		return
	}

	switch p.state {
	case StateGround:
		p.ground(b)
	case StateEscape:
		p.escape(b)
	case StateEscapeIntermediate:
		p.escapeIntermediate(b)
	case StateCsiEntry, StateCsiParam:
		p.csiParam(b)
	case StateCsiIntermediate:
		p.csiIntermediate(b)
	case StateCsiIgnore:
		p.csiIgnore(b)
	case StateOscString:
		p.oscString(b)
	case StateDcsPassthrough, StateIgnoreString:
		// Payload is discarded; only ESC \ (handled above) ends it.
	default:
		p.state = StateGround
	}
}

// abort drops any partial sequence.
func (p *Parser) abort() {
	p.clearSequence()
	p.osc = p.osc[:0]
	p.state = StateGround
}

// endString terminates an OSC or DCS string on ESC. The ESC then starts a
// new escape sequence, which for ST is the harmless ESC \.
func (p *Parser) endString() {
	switch p.state {
	case StateOscString:
		p.oscDispatch()
	case StateDcsPassthrough:
		p.logf("vt: skipped DCS")
	}
}

func (p *Parser) clearSequence() {
	p.nparams = 0
	p.cur = 0
	p.curSet = false
	p.marker = 0
	p.ninter = 0
	p.overInt = false
}

func (p *Parser) ground(b byte) {
	switch {
	case b < 0x20:
		p.flushUTF8()
		p.execute(b)
	case b == ansi.DEL:
		p.flushUTF8()
	default:
		p.printByte(b)
	}
}

// printByte decodes UTF-8 incrementally. Invalid encodings print U+FFFD.
func (p *Parser) printByte(b byte) {
	if p.utf8Len == 0 && b < utf8.RuneSelf {
		p.g.Print(rune(b))
		return
	}
	p.utf8Buf[p.utf8Len] = b
	p.utf8Len++
	if !utf8.FullRune(p.utf8Buf[:p.utf8Len]) {
		return
	}
	r, size := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
	rest := append([]byte(nil), p.utf8Buf[size:p.utf8Len]...)
	p.utf8Len = 0
	p.g.Print(r)
	for _, c := range rest {
		p.printByte(c)
	}
}

// flushUTF8 prints a replacement for a truncated UTF-8 sequence.
func (p *Parser) flushUTF8() {
	if p.utf8Len > 0 {
		p.utf8Len = 0
		p.g.Print(utf8.RuneError)
	}
}

func (p *Parser) execute(b byte) {
	switch b {
	case ansi.LF:
		p.g.Newline()
	case ansi.CR:
		p.g.CarriageReturn()
	case ansi.BS:
		p.g.Backspace()
	case ansi.HT:
		p.g.Tab()
	case ansi.BEL:
		if p.cb.Bell != nil {
			p.cb.Bell()
		}
	}
}

func (p *Parser) escape(b byte) {
	switch {
	case b < 0x20:
		p.execute(b)
	case b == '[':
		p.clearSequence()
		p.state = StateCsiEntry
	case b == ']':
		p.osc = p.osc[:0]
		p.state = StateOscString
	case b == 'P':
		p.state = StateDcsPassthrough
	case b == 'X' || b == '^' || b == '_':
		p.state = StateIgnoreString
	case b >= 0x20 && b <= 0x2f:
		p.collect(b)
		p.state = StateEscapeIntermediate
	case b >= 0x30 && b <= 0x7e:
		p.escDispatch(b)
		p.state = StateGround
	case b == ansi.DEL:
	default:
		p.state = StateGround
	}
}

func (p *Parser) escapeIntermediate(b byte) {
	switch {
	case b < 0x20:
		p.execute(b)
	case b >= 0x20 && b <= 0x2f:
		p.collect(b)
	case b >= 0x30 && b <= 0x7e:
		p.escDispatch(b)
		p.state = StateGround
	case b == ansi.DEL:
	default:
		p.state = StateGround
	}
}

func (p *Parser) collect(b byte) {
	if p.ninter == maxIntermediates {
		p.overInt = true
		return
	}
	p.inter[p.ninter] = b
	p.ninter++
}

func (p *Parser) csiParam(b byte) {
	switch {
	case b < 0x20:
		p.execute(b)
	case b >= '0' && b <= '9':
		p.cur = min(p.cur*10+int(b-'0'), MaxParamValue)
		p.curSet = true
		p.state = StateCsiParam
	case b == ';' || b == ':':
		p.pushParam()
		p.curSet = true
		p.state = StateCsiParam
	case b >= 0x3c && b <= 0x3f:
		if p.state != StateCsiEntry {
			p.state = StateCsiIgnore
			return
		}
		p.marker = b
		p.state = StateCsiParam
	case b >= 0x20 && b <= 0x2f:
		p.finishParams()
		p.collect(b)
		p.state = StateCsiIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.finishParams()
		p.csiDispatch(b)
		p.state = StateGround
	case b == ansi.DEL:
	default:
		p.abort()
	}
}

func (p *Parser) csiIntermediate(b byte) {
	switch {
	case b < 0x20:
		p.execute(b)
	case b >= 0x20 && b <= 0x2f:
		p.collect(b)
	case b >= 0x30 && b <= 0x3f:
		p.state = StateCsiIgnore
	case b >= 0x40 && b <= 0x7e:
		p.csiDispatch(b)
		p.state = StateGround
	case b == ansi.DEL:
	default:
		p.abort()
	}
}

func (p *Parser) csiIgnore(b byte) {
	switch {
	case b < 0x20:
		p.execute(b)
	case b >= 0x40 && b <= 0x7e:
		p.logf("vt: ignored malformed CSI ending in %q", b)
		p.state = StateGround
	case b >= 0x80:
		p.abort()
	}
}

// pushParam ends the current parameter. Parameters past MaxParams are dropped.
func (p *Parser) pushParam() {
	if p.nparams < MaxParams {
		p.params[p.nparams] = p.cur
		p.nparams++
	}
	p.cur = 0
}

func (p *Parser) finishParams() {
	if p.curSet {
		p.pushParam()
		p.curSet = false
	}
}

func (p *Parser) oscString(b byte) {
	switch {
	case b == ansi.BEL:
		p.oscDispatch()
		p.state = StateGround
	case b < 0x20:
		// Other C0 controls are ignored inside the string.
	case len(p.osc) < MaxOSCLength:
		p.osc = append(p.osc, b)
	}
}
