package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/theme"
)

// View paints the grid, scrolled into scrollback when requested, with the
// status line underneath.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	snap := m.sess.Snapshot()
	pal := m.palette()
	content := renderRows(m.visibleRows(snap), snap.Cols, pal)
	if !m.opts.HideStatus {
		content += "\n" + m.statusLine(snap)
	}
	view.SetContent(content)

	view.WindowTitle = m.sess.Title()
	view.BackgroundColor = pal.Background
	view.Cursor = m.cursor(snap)
	return view
}

// palette applies colors the child set at runtime over the configured ones.
func (m *Model) palette() theme.Palette {
	dc := m.sess.DefaultColors()
	return m.opts.Palette.WithDefaults(dc.Foreground, dc.Background, dc.Cursor)
}

// visibleRows returns the rows in view. With a scroll offset the top of the
// view shows scrollback and the grid is shifted down.
func (m *Model) visibleRows(snap grid.Snapshot) [][]grid.Cell {
	rows := make([][]grid.Cell, 0, snap.Rows)
	sbLen := m.sess.ScrollbackLen()
	offset := min(m.scrollOffset, sbLen)
	for i := sbLen - offset; i < sbLen && len(rows) < snap.Rows; i++ {
		rows = append(rows, m.sess.ScrollbackLine(i))
	}
	for r := 0; len(rows) < snap.Rows; r++ {
		rows = append(rows, snap.Row(r))
	}
	return rows
}

// cursor returns the host cursor for the grid cursor, or nil to hide it.
func (m *Model) cursor(snap grid.Snapshot) *tea.Cursor {
	if !snap.CursorVisible || m.exited || m.scrollOffset > 0 {
		return nil
	}
	c := tea.NewCursor(snap.CursorCol, snap.CursorRow)
	c.Color = m.palette().Cursor
	return c
}
