// Package app is a full-screen viewer for a single terminal session. It
// paints the session's grid with bubbletea and forwards keys and pastes to
// the child process.
package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/termgrid/internal/config"
	"github.com/Gaurav-Gosain/termgrid/internal/terminal"
	"github.com/Gaurav-Gosain/termgrid/internal/theme"
)

// Logger is the subset of charmbracelet/log the viewer uses.
type Logger interface {
	Debug(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}

// Options configures a Model.
type Options struct {
	Palette theme.Palette
	// HideStatus removes the status line and gives its row to the grid.
	HideStatus bool
	// ExitOnClose quits the viewer as soon as the child exits. Otherwise the
	// final screen stays up until the quit key.
	ExitOnClose bool
	Logger      Logger
}

// Model is the bubbletea model of the viewer.
type Model struct {
	sess *terminal.Session
	opts Options
	log  Logger

	width, height int
	// scrollOffset is how many rows the view is scrolled into scrollback.
	scrollOffset int
	status       statusInfo
	exited       bool
}

type (
	redrawMsg     struct{}
	exitedMsg     struct{ code int }
	statusTickMsg time.Time
	statusMsg     statusInfo
)

// New returns a viewer for sess.
func New(sess *terminal.Session, opts Options) *Model {
	m := &Model{sess: sess, opts: opts, log: opts.Logger}
	if m.log == nil {
		m.log = nopLogger{}
	}
	m.height, m.width = sess.Size()
	if !opts.HideStatus {
		m.height += config.StatusBarHeight
	}
	return m
}

// Init starts listening for output and child exit.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForRedraw(), m.waitForExit()}
	if !m.opts.HideStatus {
		cmds = append(cmds, m.refreshStatus(), statusTick())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForRedraw() tea.Cmd {
	ch := m.sess.Redraw()
	done := m.sess.Done()
	return func() tea.Msg {
		select {
		case <-ch:
			return redrawMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) waitForExit() tea.Cmd {
	return func() tea.Msg {
		<-m.sess.Done()
		return exitedMsg{code: m.sess.ExitCode()}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(config.StatusRefreshInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// refreshStatus samples process stats in a command, off the update loop.
func (m *Model) refreshStatus() tea.Cmd {
	return func() tea.Msg {
		info, err := m.sess.ProcessInfo()
		if err != nil {
			return statusMsg{}
		}
		return statusMsg{proc: info, ok: true}
	}
}

// gridSize is the grid area for the current window size.
func (m *Model) gridSize() (rows, cols int) {
	rows = m.height
	if !m.opts.HideStatus {
		rows -= config.StatusBarHeight
	}
	return max(rows, 1), max(m.width, 1)
}

// Run shows sess full screen until the user quits or, with ExitOnClose,
// the child exits.
func Run(ctx context.Context, sess *terminal.Session, opts Options, progOpts ...tea.ProgramOption) error {
	progOpts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithFPS(config.NormalFPS),
	}, progOpts...)
	_, err := tea.NewProgram(New(sess, opts), progOpts...).Run()
	return err
}
