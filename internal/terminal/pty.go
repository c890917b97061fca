package terminal

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"

	xpty "github.com/charmbracelet/x/xpty"
)

// PTY is the byte channel between a session and its child. Sizes are in
// cells, rows first.
type PTY interface {
	io.ReadWriteCloser
	Resize(rows, cols int) error
}

// fdController is implemented by PTYs backed by a real file descriptor.
// Control runs fn with the descriptor without switching it to blocking
// mode, which would stop Close from interrupting a pending Read.
type fdController interface {
	Control(fn func(fd uintptr)) error
}

// pixelSizer is implemented by PTYs that can report pixel dimensions to
// the child through TIOCGWINSZ.
type pixelSizer interface {
	SetPixelSize(rows, cols, width, height int) error
}

// xptyAdapter turns xpty's width-first sizes into PTY's rows-first ones.
type xptyAdapter struct {
	xpty.Pty
}

func (p xptyAdapter) Resize(rows, cols int) error {
	return p.Pty.Resize(cols, rows)
}

func (p xptyAdapter) Control(fn func(fd uintptr)) error {
	up, ok := p.Pty.(*xpty.UnixPty)
	if !ok {
		return errors.ErrUnsupported
	}
	return up.Control(fn)
}

func (p xptyAdapter) SetPixelSize(rows, cols, width, height int) error {
	up, ok := p.Pty.(*xpty.UnixPty)
	if !ok {
		return errors.ErrUnsupported
	}
	return up.SetWinsize(cols, rows, width, height)
}

// childProcess is the command running on the PTY. Wait is only ever called
// from the session's exit watcher.
type childProcess struct {
	cmd      *exec.Cmd
	killOnce sync.Once
}

func (c *childProcess) pid() int {
	if c.cmd.Process == nil {
		return 0
	}
	return c.cmd.Process.Pid
}

// wait blocks until the child exits and returns its exit code, or -1 when
// it was killed by a signal or the status is unknown.
func (c *childProcess) wait(ctx context.Context) int {
	err := xpty.WaitProcess(ctx, c.cmd)
	if c.cmd.ProcessState != nil {
		return c.cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (c *childProcess) kill() {
	c.killOnce.Do(func() {
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
		}
	})
}

// spawn allocates a PTY and starts the configured shell on it.
func spawn(opts Options, env []string) (PTY, *childProcess, string, error) {
	shell := detectShell(opts.Shell)
	path, err := exec.LookPath(shell)
	if err != nil {
		return nil, nil, shell, &SpawnError{Shell: shell, Err: err}
	}

	// #nosec G204 - the command is intentionally user-controlled
	cmd := exec.Command(path, opts.Args...)
	cmd.Env = env
	cmd.Dir = opts.Dir

	p, err := xpty.NewPty(opts.Cols, opts.Rows)
	if err != nil {
		return nil, nil, shell, &SpawnError{Shell: shell, Err: err}
	}

	setupPTYCommand(cmd)

	if err := p.Start(cmd); err != nil {
		_ = p.Close()
		return nil, nil, shell, &SpawnError{Shell: shell, Err: err}
	}
	releaseChildSide(p)

	// Some PTY implementations only honor the size once the child runs.
	_ = p.Resize(opts.Cols, opts.Rows)

	return xptyAdapter{p}, &childProcess{cmd: cmd}, shell, nil
}
