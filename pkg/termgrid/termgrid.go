// Package termgrid embeds a terminal emulator: a child process on a
// pseudo-terminal whose output is interpreted into a character grid.
//
// # Basic Usage
//
// Start the user's shell and read its screen:
//
//	sess, err := termgrid.Start(termgrid.WithSize(24, 80))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sess.Close()
//
//	sess.Write([]byte("ls\r"))
//	<-sess.Redraw()
//	fmt.Println(sess.Snapshot().Text())
//
// # Showing a Session
//
// A session can be shown in a Bubble Tea program with NewViewer:
//
//	viewer := termgrid.NewViewer(sess, termgrid.ViewerOptions{Palette: termgrid.DefaultPalette()})
//	p := tea.NewProgram(viewer, termgrid.ProgramOptions()...)
//
// # Parsing Without a Process
//
// The grid and parser also work on their own, for example to render
// captured output:
//
//	g := termgrid.NewGrid(24, 80)
//	termgrid.NewParser(g, termgrid.Callbacks{}).Write(captured)
package termgrid

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Gaurav-Gosain/termgrid/internal/app"
	"github.com/Gaurav-Gosain/termgrid/internal/config"
	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/input"
	"github.com/Gaurav-Gosain/termgrid/internal/terminal"
	"github.com/Gaurav-Gosain/termgrid/internal/theme"
	"github.com/Gaurav-Gosain/termgrid/internal/vt"
)

type (
	// Session is a running child process and the grid it draws on.
	Session = terminal.Session
	// PTY is the byte channel a Session reads and writes.
	PTY = terminal.PTY
	// Logger receives session diagnostics. *log.Logger from
	// charmbracelet/log satisfies it.
	Logger = terminal.Logger
	// ProcessInfo describes the child process.
	ProcessInfo = terminal.ProcessInfo
	// DefaultColors are the colors a program set with OSC 10, 11 and 12.
	DefaultColors = terminal.DefaultColors
	// SpawnError reports a failure to start the child.
	SpawnError = terminal.SpawnError

	Grid     = grid.Grid
	Snapshot = grid.Snapshot
	Cell     = grid.Cell
	Color    = grid.Color
	Position = grid.Position

	Parser    = vt.Parser
	Callbacks = vt.Callbacks

	KeyEvent  = input.KeyEvent
	Key       = input.Key
	Modifiers = input.Modifiers

	// Viewer is a Bubble Tea model that shows a Session full screen.
	Viewer        = app.Model
	ViewerOptions = app.Options
	Palette       = theme.Palette

	// Metrics maps between pixels and cells for renderers that draw the
	// grid onto a pixel surface.
	Metrics = config.FontMetrics
)

// Keys and modifiers for KeyEvent.
const (
	KeyNone      = input.KeyNone
	KeyRune      = input.KeyRune
	KeyEnter     = input.KeyEnter
	KeyBackspace = input.KeyBackspace
	KeyTab       = input.KeyTab
	KeyEscape    = input.KeyEscape
	KeyUp        = input.KeyUp
	KeyDown      = input.KeyDown
	KeyRight     = input.KeyRight
	KeyLeft      = input.KeyLeft
	KeyHome      = input.KeyHome
	KeyEnd       = input.KeyEnd
	KeyInsert    = input.KeyInsert
	KeyDelete    = input.KeyDelete
	KeyPageUp    = input.KeyPageUp
	KeyPageDown  = input.KeyPageDown
	KeyF1        = input.KeyF1
	KeyF2        = input.KeyF2
	KeyF3        = input.KeyF3
	KeyF4        = input.KeyF4
	KeyF5        = input.KeyF5
	KeyF6        = input.KeyF6
	KeyF7        = input.KeyF7
	KeyF8        = input.KeyF8
	KeyF9        = input.KeyF9
	KeyF10       = input.KeyF10
	KeyF11       = input.KeyF11
	KeyF12       = input.KeyF12

	ModShift = input.ModShift
	ModAlt   = input.ModAlt
	ModCtrl  = input.ModCtrl
)

// Errors returned by Session methods.
var (
	ErrSpawn         = terminal.ErrSpawn
	ErrSessionClosed = terminal.ErrSessionClosed
	ErrProcessExited = terminal.ErrProcessExited
	ErrShortWrite    = terminal.ErrShortWrite
	ErrNoProcess     = terminal.ErrNoProcess
)

// Option configures a Session.
type Option func(*terminal.Options)

// WithSize sets the initial grid size.
func WithSize(rows, cols int) Option {
	return func(o *terminal.Options) {
		o.Rows, o.Cols = rows, cols
	}
}

// WithPixelSize sizes the grid to the whole cells that fit in a pixel
// area and reports the cell size to the child.
func WithPixelSize(width, height float64, m Metrics) Option {
	return func(o *terminal.Options) {
		o.Rows, o.Cols = m.GridSize(width, height)
		o.Metrics = m
	}
}

// WithCommand runs name with args instead of the user's shell.
func WithCommand(name string, args ...string) Option {
	return func(o *terminal.Options) {
		o.Shell, o.Args = name, args
	}
}

// WithEnv adds KEY=VALUE entries to the child's environment.
func WithEnv(env ...string) Option {
	return func(o *terminal.Options) {
		o.Env = append(o.Env, env...)
	}
}

// WithDir sets the child's working directory.
func WithDir(dir string) Option {
	return func(o *terminal.Options) {
		o.Dir = dir
	}
}

// WithScrollback sets how many rows are kept after they scroll off the top.
// Negative disables scrollback.
func WithScrollback(lines int) Option {
	return func(o *terminal.Options) {
		o.ScrollbackLines = lines
	}
}

// WithLogger sets the session logger.
func WithLogger(l Logger) Option {
	return func(o *terminal.Options) {
		o.Logger = l
	}
}

// WithOnRedraw sets a callback run after each batch of output is applied.
func WithOnRedraw(fn func()) Option {
	return func(o *terminal.Options) {
		o.OnRedraw = fn
	}
}

// WithOnExit sets a callback run once with the child's exit code.
func WithOnExit(fn func(code int)) Option {
	return func(o *terminal.Options) {
		o.OnExit = fn
	}
}

// WithOnTitle sets a callback run when the program changes its title.
func WithOnTitle(fn func(title string)) Option {
	return func(o *terminal.Options) {
		o.OnTitle = fn
	}
}

func buildOptions(opts []Option) terminal.Options {
	var o terminal.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Start spawns the child on a new pseudo-terminal.
func Start(opts ...Option) (*Session, error) {
	return terminal.Start(buildOptions(opts))
}

// Attach runs a session over an existing PTY, with no child process to
// watch. The session ends when reads from p fail.
func Attach(p PTY, opts ...Option) *Session {
	return terminal.Attach(p, buildOptions(opts))
}

// NewGrid returns a blank grid.
func NewGrid(rows, cols int) *Grid {
	return grid.New(rows, cols)
}

// NewParser returns a parser that applies bytes to g.
func NewParser(g *Grid, cb Callbacks) *Parser {
	return vt.New(g, cb)
}

// Encode returns the bytes a key sends, and whether it sends any.
func Encode(ev KeyEvent, appCursor bool) ([]byte, bool) {
	return input.Encode(ev, appCursor)
}

// DefaultPalette is the built-in palette with the default config colors.
func DefaultPalette() Palette {
	return theme.NewPalette(config.DefaultConfig().Appearance)
}

// NewViewer returns a Bubble Tea model that shows sess.
func NewViewer(sess *Session, opts ViewerOptions) *Viewer {
	return app.New(sess, opts)
}

// ProgramOptions returns the recommended options for running a Viewer.
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithFPS(config.NormalFPS),
	}
}
