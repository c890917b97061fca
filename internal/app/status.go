package app

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/terminal"
)

type statusInfo struct {
	proc terminal.ProcessInfo
	ok   bool
}

var statusStyle = lipgloss.NewStyle().Reverse(true)

// minTitleWidth is the least room a long title is cut down to.
const minTitleWidth = 12

// statusLine describes the session in one row: title or process, grid
// size, process stats, and exit or scroll state.
func (m *Model) statusLine(snap grid.Snapshot) string {
	var parts []string

	name := m.sess.Title()
	if name == "" && m.status.ok {
		name = m.status.proc.Name
	}
	if name != "" {
		parts = append(parts, runewidth.Truncate(name, max(m.width/3, minTitleWidth), "..."))
	}
	parts = append(parts, fmt.Sprintf("%dx%d", snap.Cols, snap.Rows))

	if m.status.ok && !m.exited {
		p := m.status.proc
		parts = append(parts, fmt.Sprintf("pid %d", p.PID), formatBytes(p.RSS), fmt.Sprintf("%.1f%%", p.CPUPercent))
		if p.Foreground != "" && p.Foreground != p.Name {
			parts = append(parts, "fg "+p.Foreground)
		}
	}
	if m.scrollOffset > 0 {
		parts = append(parts, fmt.Sprintf("scroll -%d", m.scrollOffset))
	}

	left := " " + strings.Join(parts, " | ")
	if m.exited {
		left += fmt.Sprintf(" [exited %d]", m.sess.ExitCode())
	}
	right := quitKey + " quit "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap > 0 {
		line += strings.Repeat(" ", gap) + right
	}
	return statusStyle.MaxWidth(max(m.width, 1)).Render(line)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
