// Package terminal runs a child process on a pseudo-terminal and keeps a
// grid in sync with its output.
//
// A Session owns three things: the PTY, the grid with its parser, and one
// ingress bridge goroutine that reads the PTY and applies the bytes to the
// grid. The grid is guarded by a single mutex that the bridge holds only
// while applying one read's worth of bytes. Callers read the grid through
// Snapshot or Borrow and write input straight to the PTY.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/errgroup"

	"github.com/Gaurav-Gosain/termgrid/internal/config"
	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/input"
	"github.com/Gaurav-Gosain/termgrid/internal/vt"
)

// Options configures a session. Zero values select the defaults from the
// config package.
type Options struct {
	Rows  int
	Cols  int
	Shell string   // command to run; empty means detect the user's shell
	Args  []string // arguments passed to Shell
	Env   []string // extra KEY=VALUE entries for the child
	Dir   string   // working directory of the child

	// ScrollbackLines bounds the scrollback ring. Zero selects the default,
	// a negative value disables scrollback.
	ScrollbackLines int
	// TermProgram is exported to the child as TERM_PROGRAM.
	TermProgram string
	// Metrics is the cell size in pixels. It lets the child query the
	// window's pixel size; a zero cell size leaves it unreported.
	Metrics config.FontMetrics

	Logger Logger

	// OnRedraw is called after each batch of output is applied. It runs
	// on the bridge goroutine and must not block.
	OnRedraw func()
	// OnExit is called once when the session dies, with the child's exit
	// code or -1 when it is unknown.
	OnExit func(code int)
	// OnTitle is called when the child sets the window title.
	OnTitle func(title string)
}

func (o *Options) normalize() {
	if o.Rows <= 0 {
		o.Rows = config.DefaultRows
	}
	if o.Cols <= 0 {
		o.Cols = config.DefaultCols
	}
	o.Rows = min(o.Rows, config.MaxDimension)
	o.Cols = min(o.Cols, config.MaxDimension)
	if o.ScrollbackLines == 0 {
		o.ScrollbackLines = config.DefaultScrollbackLines
	}
	o.ScrollbackLines = min(o.ScrollbackLines, config.MaxScrollbackLines)
	if o.TermProgram == "" {
		o.TermProgram = config.DefaultTermProgram
	}
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
}

// DefaultColors are the colors the child set through OSC 10, 11 and 12. A
// nil field means the configured default applies.
type DefaultColors struct {
	Foreground color.Color
	Background color.Color
	Cursor     color.Color
}

// Session is a child process attached to a PTY and the grid mirroring its
// output. All methods are safe for concurrent use.
type Session struct {
	id   string
	opts Options
	log  Logger

	pty  PTY
	proc *childProcess

	// mu guards everything below it up to the next blank line.
	mu           sync.Mutex
	grid         *grid.Grid
	parser       *vt.Parser
	scrollback   *grid.Scrollback
	replies      []byte
	titleChanged bool
	colors       DefaultColors

	// modes mirrors the grid modes so input encoding never takes mu.
	modes atomic.Uint32

	// HasNewOutput is set when output is applied to the grid. Renderers
	// consume it with TakeNewOutput.
	HasNewOutput atomic.Bool
	redraw       chan struct{}

	writeMu  sync.Mutex
	resizeMu sync.Mutex

	alive      atomic.Bool
	closed     atomic.Bool
	exitCode   atomic.Int64
	bridgeDone chan struct{}
	done       chan struct{}
	exitOnce   sync.Once
	hangupOnce sync.Once
	closeOnce  sync.Once

	cancel    context.CancelFunc
	group     *errgroup.Group
	groupDone chan struct{}
}

// Start spawns the configured shell on a new PTY and starts mirroring its
// output. Failures to find the shell, allocate the PTY or start the child
// are returned as *SpawnError.
func Start(opts Options) (*Session, error) {
	opts.normalize()
	id := uuid.New().String()

	p, proc, shell, err := spawn(opts, childEnv(opts, id))
	if err != nil {
		opts.Logger.Warn("spawn failed", "shell", shell, "err", err)
		return nil, err
	}

	s := newSession(id, p, proc, opts)
	s.log.Debug("session started",
		"session", id, "shell", shell, "pid", proc.pid(),
		"rows", opts.Rows, "cols", opts.Cols)
	return s, nil
}

// Attach mirrors an existing PTY without spawning a process. The session
// dies when reads from p fail. It is meant for embedding and tests.
func Attach(p PTY, opts Options) *Session {
	opts.normalize()
	return newSession(uuid.New().String(), p, nil, opts)
}

func newSession(id string, p PTY, proc *childProcess, opts Options) *Session {
	s := &Session{
		id:         id,
		opts:       opts,
		log:        opts.Logger,
		pty:        p,
		proc:       proc,
		redraw:     make(chan struct{}, 1),
		bridgeDone: make(chan struct{}),
		done:       make(chan struct{}),
		groupDone:  make(chan struct{}),
	}
	s.alive.Store(true)
	s.exitCode.Store(-1)

	s.grid = grid.New(opts.Rows, opts.Cols)
	if opts.ScrollbackLines > 0 {
		s.scrollback = grid.NewScrollback(opts.ScrollbackLines)
		s.grid.AttachScrollback(s.scrollback)
	}
	s.parser = vt.New(s.grid, vt.Callbacks{
		Reply: func(b []byte) { s.replies = append(s.replies, b...) },
		Title: func(string) { s.titleChanged = true },
		DefaultForeground: func(c color.Color) {
			s.colors.Foreground = c
		},
		DefaultBackground: func(c color.Color) {
			s.colors.Background = c
		},
		CursorColor: func(c color.Color) {
			s.colors.Cursor = c
		},
	})
	if l, ok := opts.Logger.(vt.Logger); ok {
		s.parser.SetLogger(l)
	}
	s.modes.Store(uint32(s.grid.Modes()))

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group, ctx = errgroup.WithContext(ctx)

	s.group.Go(func() error { return s.runBridge(ctx) })
	if proc != nil {
		s.group.Go(func() error { return s.watchProcess(ctx) })
	}
	go func() {
		if err := s.group.Wait(); err != nil {
			s.log.Debug("session goroutines stopped", "session", s.id, "err", err)
		}
		close(s.groupDone)
	}()

	return s
}

// watchProcess reaps the child and hangs up the PTY once the bridge had a
// chance to drain the final output.
func (s *Session) watchProcess(ctx context.Context) error {
	code := s.proc.wait(ctx)
	s.alive.Store(false)
	s.log.Debug("process exited", "session", s.id, "code", code)

	select {
	case <-s.bridgeDone:
	case <-time.After(config.ProcessWaitDelay):
		s.hangup()
		<-s.bridgeDone
	}
	s.markExited(code)
	return nil
}

// hangup stops the bridge by closing the PTY.
func (s *Session) hangup() {
	s.hangupOnce.Do(func() {
		s.cancel()
		if err := s.pty.Close(); err != nil {
			s.log.Debug("closing PTY", "session", s.id, "err", err)
		}
	})
}

func (s *Session) markExited(code int) {
	s.exitOnce.Do(func() {
		s.exitCode.Store(int64(code))
		s.alive.Store(false)
		close(s.done)
		if s.opts.OnExit != nil {
			s.opts.OnExit(code)
		}
		s.notify()
	})
}

// ID returns the session's unique identifier, also exported to the child
// as TERMGRID_SESSION_ID.
func (s *Session) ID() string { return s.id }

// Alive reports whether the child is still running.
func (s *Session) Alive() bool { return s.alive.Load() }

// ExitCode returns the child's exit code, or -1 while it runs or when the
// code is unknown.
func (s *Session) ExitCode() int { return int(s.exitCode.Load()) }

// Done is closed once the session is dead and its bridge has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Redraw delivers a level-triggered hint that the grid changed. Several
// changes may coalesce into one hint.
func (s *Session) Redraw() <-chan struct{} { return s.redraw }

// TakeNewOutput reports whether output arrived since the last call and
// clears the flag.
func (s *Session) TakeNewOutput() bool { return s.HasNewOutput.Swap(false) }

// Write sends p to the child's input. It fails with ErrSessionClosed after
// Close and ErrProcessExited once the child is gone.
func (s *Session) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	if !s.alive.Load() {
		return 0, ErrProcessExited
	}
	if len(p) == 0 {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	n, err := s.pty.Write(p)
	if err != nil {
		return n, fmt.Errorf("failed to write to PTY: %w", err)
	}
	if n != len(p) {
		return n, fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(p))
	}
	return n, nil
}

// SendKey encodes ev and writes it to the child. It reports whether the
// key was consumed; unconsumed keys are left to the caller.
func (s *Session) SendKey(ev input.KeyEvent) (bool, error) {
	modes := grid.Mode(s.modes.Load())
	data, ok := input.Encode(ev, modes&grid.ModeAppCursorKeys != 0)
	if !ok {
		return false, nil
	}
	_, err := s.Write(data)
	return true, err
}

// Paste writes text as a paste, bracketed when the child asked for it.
func (s *Session) Paste(text string) error {
	modes := grid.Mode(s.modes.Load())
	_, err := s.Write(input.EncodePaste(text, modes&grid.ModeBracketedPaste != 0))
	return err
}

// Resize changes the grid and the PTY window size together. Dimensions are
// clamped to [1, config.MaxDimension].
func (s *Session) Resize(rows, cols int) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	rows = max(1, min(rows, config.MaxDimension))
	cols = max(1, min(cols, config.MaxDimension))

	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()

	s.mu.Lock()
	s.grid.Resize(rows, cols)
	s.mu.Unlock()
	s.notify()

	if err := s.pty.Resize(rows, cols); err != nil {
		if !s.alive.Load() {
			return nil
		}
		return fmt.Errorf("failed to resize PTY: %w", err)
	}
	if ps, ok := s.pty.(pixelSizer); ok && s.opts.Metrics.CellWidth > 0 && s.opts.Metrics.CellHeight > 0 {
		width, height := s.opts.Metrics.PixelSize(rows, cols)
		if err := ps.SetPixelSize(rows, cols, int(math.Round(width)), int(math.Round(height))); err != nil {
			s.log.Debug("pixel size not set", "session", s.id, "err", err)
		}
	}
	s.log.Debug("session resized", "session", s.id, "rows", rows, "cols", cols)
	return nil
}

// Size returns the grid dimensions.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Size()
}

// WindowSize reads the window size back from the OS. It returns
// errors.ErrUnsupported for PTYs without a file descriptor.
func (s *Session) WindowSize() (rows, cols int, err error) {
	c, ok := s.pty.(fdController)
	if !ok {
		return 0, 0, errors.ErrUnsupported
	}
	if cerr := c.Control(func(fd uintptr) {
		rows, cols, err = windowSize(fd)
	}); cerr != nil {
		return 0, 0, cerr
	}
	return rows, cols, err
}

// Snapshot returns a copy of the grid.
func (s *Session) Snapshot() grid.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Snapshot()
}

// Borrow calls fn with the grid locked. fn must only read the grid and
// must not call other Session methods.
func (s *Session) Borrow(fn func(g *grid.Grid)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.grid)
}

// ScrollbackLen returns the number of lines in the scrollback.
func (s *Session) ScrollbackLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scrollback == nil {
		return 0
	}
	return s.scrollback.Len()
}

// ScrollbackLine returns a copy of scrollback line i, 0 being the oldest.
func (s *Session) ScrollbackLine(i int) []grid.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scrollback == nil {
		return nil
	}
	line := s.scrollback.Line(i)
	if line == nil {
		return nil
	}
	return append([]grid.Cell(nil), line...)
}

// ScrollbackCapacity returns how many lines the scrollback keeps, or 0
// when it is disabled.
func (s *Session) ScrollbackCapacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scrollback == nil {
		return 0
	}
	return s.scrollback.MaxLines()
}

// SetScrollbackLines changes the scrollback capacity while the session
// runs, keeping the newest lines that fit. Zero selects the default and a
// negative value disables scrollback, dropping what it held.
func (s *Session) SetScrollbackLines(n int) {
	if n == 0 {
		n = config.DefaultScrollbackLines
	}
	n = min(n, config.MaxScrollbackLines)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case n < 0:
		s.scrollback = nil
		s.grid.AttachScrollback(nil)
	case s.scrollback == nil:
		s.scrollback = grid.NewScrollback(n)
		s.grid.AttachScrollback(s.scrollback)
	default:
		s.scrollback.SetMaxLines(n)
	}
	s.log.Debug("scrollback resized", "session", s.id, "lines", n)
}

// Title returns the last title the child set.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Title()
}

// WorkingDirectory returns the last directory the child reported via OSC 7.
func (s *Session) WorkingDirectory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.WorkingDirectory()
}

// DefaultColors returns the default colors the child overrode.
func (s *Session) DefaultColors() DefaultColors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colors
}

// ProcessInfo describes the child process for status displays.
type ProcessInfo struct {
	PID        int
	Name       string
	RSS        uint64
	CPUPercent float64
	Children   int
	// Foreground is the name of the job that owns the terminal when it is
	// not the child itself, such as an editor started from the shell.
	Foreground string
}

// ProcessInfo samples the child's resource usage.
func (s *Session) ProcessInfo() (ProcessInfo, error) {
	if s.proc == nil {
		return ProcessInfo{}, ErrNoProcess
	}
	pid := s.proc.pid()
	info := ProcessInfo{PID: pid}

	p, err := process.NewProcess(int32(pid)) // #nosec G115 - pids fit in int32
	if err != nil {
		return info, fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}
	info.Name, _ = p.Name()
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		info.RSS = mem.RSS
	}
	info.CPUPercent, _ = p.CPUPercent()
	if children, err := p.Children(); err == nil {
		info.Children = len(children)
	}

	if c, ok := s.pty.(fdController); ok && s.Alive() {
		pgid, err := -1, error(nil)
		_ = c.Control(func(fd uintptr) {
			pgid, err = foregroundProcessGroup(fd)
		})
		if err == nil && pgid > 0 && pgid != pid {
			if fg, err := process.NewProcess(int32(pgid)); err == nil { // #nosec G115
				info.Foreground, _ = fg.Name()
			}
		}
	}
	return info, nil
}

// Close hangs up the PTY, stops the bridge and reaps the child, killing it
// when it does not exit in time. After Close returns the grid no longer
// changes. Close is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		s.mu.Unlock()

		s.hangup()
		if s.waitStopped(config.ProcessShutdownTimeout) {
			return
		}
		if s.proc != nil {
			s.proc.kill()
		}
		if !s.waitStopped(config.ProcessShutdownTimeout) {
			s.log.Warn("session did not stop in time", "session", s.id)
		}
	})
	return nil
}

func (s *Session) waitStopped(timeout time.Duration) bool {
	select {
	case <-s.groupDone:
		return true
	case <-time.After(timeout):
		return false
	}
}
