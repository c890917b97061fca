// Package input translates key events and pastes into the bytes a program
// running in a terminal expects on its input.
package input

import (
	"strconv"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// Key identifies a non-text key. Text keys use KeyRune with the text in
// KeyEvent.Text.
type Key uint8

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
)

// KeyEvent is one key transition delivered by the focus system.
type KeyEvent struct {
	Key     Key
	Text    string
	Mods    Modifiers
	Pressed bool
}

// csiKeys are keys encoded as CSI sequences. A final of '~' means the
// number goes in the first parameter.
var csiKeys = map[Key]struct {
	num   int
	final byte
}{
	KeyUp:       {1, 'A'},
	KeyDown:     {1, 'B'},
	KeyRight:    {1, 'C'},
	KeyLeft:     {1, 'D'},
	KeyHome:     {1, 'H'},
	KeyEnd:      {1, 'F'},
	KeyInsert:   {2, '~'},
	KeyDelete:   {3, '~'},
	KeyPageUp:   {5, '~'},
	KeyPageDown: {6, '~'},
	KeyF5:       {15, '~'},
	KeyF6:       {17, '~'},
	KeyF7:       {18, '~'},
	KeyF8:       {19, '~'},
	KeyF9:       {20, '~'},
	KeyF10:      {21, '~'},
	KeyF11:      {23, '~'},
	KeyF12:      {24, '~'},
}

// ss3Keys are keys sent as SS3 (ESC O) when unmodified.
var ss3Keys = map[Key]byte{
	KeyF1: 'P',
	KeyF2: 'Q',
	KeyF3: 'R',
	KeyF4: 'S',
}

// Encode returns the bytes for ev and whether the key was consumed. With
// appCursor set, unmodified arrow keys use the application (SS3) form.
// Key releases and unmapped keys are not consumed.
func Encode(ev KeyEvent, appCursor bool) ([]byte, bool) {
	if !ev.Pressed {
		return nil, false
	}

	switch ev.Key {
	case KeyRune:
		return encodeText(ev)
	case KeyEnter:
		return withAlt(ev.Mods, ansi.CR), true
	case KeyBackspace:
		if ev.Mods&ModCtrl != 0 {
			return withAlt(ev.Mods, ansi.BS), true
		}
		return withAlt(ev.Mods, ansi.DEL), true
	case KeyTab:
		if ev.Mods&ModShift != 0 {
			return []byte("\x1b[Z"), true
		}
		return withAlt(ev.Mods, ansi.HT), true
	case KeyEscape:
		return withAlt(ev.Mods, ansi.ESC), true
	}

	if final, ok := ss3Keys[ev.Key]; ok {
		if ev.Mods == 0 {
			return []byte{ansi.ESC, 'O', final}, true
		}
		return modifiedCSI(1, final, ev.Mods), true
	}

	k, ok := csiKeys[ev.Key]
	if !ok {
		return nil, false
	}
	if ev.Mods != 0 {
		return modifiedCSI(k.num, k.final, ev.Mods), true
	}
	if k.final == '~' {
		return []byte("\x1b[" + strconv.Itoa(k.num) + "~"), true
	}
	if appCursor && ev.Key >= KeyUp && ev.Key <= KeyLeft {
		return []byte{ansi.ESC, 'O', k.final}, true
	}
	return []byte{ansi.ESC, '[', k.final}, true
}

func encodeText(ev KeyEvent) ([]byte, bool) {
	if ev.Text == "" {
		return nil, false
	}
	if ev.Mods&ModCtrl != 0 {
		r, _ := utf8.DecodeRuneInString(ev.Text)
		b, ok := controlByte(r)
		if !ok {
			return nil, false
		}
		return withAlt(ev.Mods, b), true
	}
	if ev.Mods&ModAlt != 0 {
		return append([]byte{ansi.ESC}, ev.Text...), true
	}
	return []byte(ev.Text), true
}

// controlByte maps Ctrl+r to its C0 code.
func controlByte(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	case r == '@' || r == ' ' || r == '2':
		return ansi.NUL, true
	case r >= '[' && r <= '_':
		return byte(r-'[') + ansi.ESC, true
	case r == '?':
		return ansi.DEL, true
	}
	return 0, false
}

// withAlt returns b, prefixed with ESC when Alt is held.
func withAlt(mods Modifiers, b byte) []byte {
	if mods&ModAlt != 0 {
		return []byte{ansi.ESC, b}
	}
	return []byte{b}
}

// modifiedCSI encodes a key with xterm modifier parameters, for example
// Shift+Up as ESC [ 1 ; 2 A.
func modifiedCSI(num int, final byte, mods Modifiers) []byte {
	param := 1
	if mods&ModShift != 0 {
		param++
	}
	if mods&ModAlt != 0 {
		param += 2
	}
	if mods&ModCtrl != 0 {
		param += 4
	}
	return []byte("\x1b[" + strconv.Itoa(num) + ";" + strconv.Itoa(param) + string(final))
}

// EncodePaste returns the bytes for pasting text. The text is passed
// through unchanged; a bracketed paste only adds the start and end markers.
func EncodePaste(text string, bracketed bool) []byte {
	if !bracketed {
		return []byte(text)
	}
	out := make([]byte, 0, len(ansi.BracketedPasteStart)+len(text)+len(ansi.BracketedPasteEnd))
	out = append(out, ansi.BracketedPasteStart...)
	out = append(out, text...)
	return append(out, ansi.BracketedPasteEnd...)
}
