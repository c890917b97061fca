package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/termgrid/internal/input"
)

// quitKey leaves the viewer. It is never forwarded to the child.
const quitKey = "ctrl+q"

// Update handles bubbletea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		rows, cols := m.gridSize()
		if err := m.sess.Resize(rows, cols); err != nil {
			m.log.Debug("resize failed", "rows", rows, "cols", cols, "err", err)
		}
		m.clampScroll()
		return m, nil

	case redrawMsg:
		m.sess.TakeNewOutput()
		return m, m.waitForRedraw()

	case exitedMsg:
		m.exited = true
		m.log.Debug("child exited", "code", msg.code)
		if m.opts.ExitOnClose {
			return m, tea.Quit
		}
		return m, nil

	case statusTickMsg:
		if m.exited {
			return m, nil
		}
		return m, tea.Batch(m.refreshStatus(), statusTick())

	case statusMsg:
		m.status = statusInfo(msg)
		return m, nil

	case tea.PasteMsg:
		m.scrollOffset = 0
		if err := m.sess.Paste(msg.Content); err != nil {
			m.log.Debug("paste dropped", "err", err)
		}
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == quitKey {
			return m, tea.Quit
		}
		if m.handleScrollKey(msg) {
			return m, nil
		}
		m.scrollOffset = 0
		m.sendKey(msg)
		return m, nil

	case tea.KeyReleaseMsg:
		m.sendKey(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) sendKey(msg tea.KeyMsg) {
	if m.exited {
		return
	}
	if _, err := m.sess.SendKey(input.FromKeyMsg(msg)); err != nil {
		m.log.Debug("key dropped", "key", msg.String(), "err", err)
	}
}

// handleScrollKey pages through scrollback with shift+pgup and shift+pgdown.
func (m *Model) handleScrollKey(msg tea.KeyPressMsg) bool {
	rows, _ := m.gridSize()
	page := max(rows/2, 1)
	switch msg.String() {
	case "shift+pgup":
		m.scrollOffset += page
	case "shift+pgdown":
		m.scrollOffset -= page
	default:
		return false
	}
	m.clampScroll()
	return true
}

func (m *Model) clampScroll() {
	m.scrollOffset = min(max(m.scrollOffset, 0), m.sess.ScrollbackLen())
}
