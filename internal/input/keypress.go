package input

import (
	"unicode"

	tea "charm.land/bubbletea/v2"
)

var teaKeys = map[rune]Key{
	tea.KeyEnter:     KeyEnter,
	tea.KeyKpEnter:   KeyEnter,
	tea.KeyBackspace: KeyBackspace,
	tea.KeyTab:       KeyTab,
	tea.KeyEscape:    KeyEscape,
	tea.KeyUp:        KeyUp,
	tea.KeyDown:      KeyDown,
	tea.KeyRight:     KeyRight,
	tea.KeyLeft:      KeyLeft,
	tea.KeyHome:      KeyHome,
	tea.KeyEnd:       KeyEnd,
	tea.KeyInsert:    KeyInsert,
	tea.KeyDelete:    KeyDelete,
	tea.KeyPgUp:      KeyPageUp,
	tea.KeyPgDown:    KeyPageDown,
	tea.KeyF1:        KeyF1,
	tea.KeyF2:        KeyF2,
	tea.KeyF3:        KeyF3,
	tea.KeyF4:        KeyF4,
	tea.KeyF5:        KeyF5,
	tea.KeyF6:        KeyF6,
	tea.KeyF7:        KeyF7,
	tea.KeyF8:        KeyF8,
	tea.KeyF9:        KeyF9,
	tea.KeyF10:       KeyF10,
	tea.KeyF11:       KeyF11,
	tea.KeyF12:       KeyF12,
}

// FromKeyMsg converts a bubbletea key press or release into a KeyEvent.
// Keys with no terminal encoding come back as KeyNone.
func FromKeyMsg(msg tea.KeyMsg) KeyEvent {
	k := msg.Key()
	_, pressed := msg.(tea.KeyPressMsg)
	ev := KeyEvent{Pressed: pressed, Mods: fromTeaMods(k.Mod)}

	if key, ok := teaKeys[k.Code]; ok {
		ev.Key = key
		return ev
	}

	switch {
	case k.Text != "":
		ev.Key = KeyRune
		ev.Text = k.Text
		// Shift is already reflected in the text.
		ev.Mods &^= ModShift
	case k.Code < tea.KeyExtended && unicode.IsPrint(k.Code):
		ev.Key = KeyRune
		r := k.Code
		if ev.Mods&ModShift != 0 && k.ShiftedCode != 0 {
			r = k.ShiftedCode
		}
		ev.Text = string(r)
	}
	return ev
}

func fromTeaMods(m tea.KeyMod) Modifiers {
	var mods Modifiers
	if m.Contains(tea.ModShift) {
		mods |= ModShift
	}
	if m.Contains(tea.ModAlt) {
		mods |= ModAlt
	}
	if m.Contains(tea.ModCtrl) {
		mods |= ModCtrl
	}
	return mods
}
