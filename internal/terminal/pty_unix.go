//go:build unix

package terminal

import (
	"os/exec"
	"syscall"

	xpty "github.com/charmbracelet/x/xpty"
	"golang.org/x/sys/unix"
)

// setupPTYCommand makes the PTY the child's controlling terminal so job
// control and SIGWINCH work.
func setupPTYCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}
}

// releaseChildSide closes the parent's copy of the slave so reads on the
// master fail once every process holding the terminal has exited.
func releaseChildSide(p xpty.Pty) {
	if up, ok := p.(*xpty.UnixPty); ok {
		_ = up.Slave().Close()
	}
}

func windowSize(fd uintptr) (rows, cols int, err error) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Row), int(ws.Col), nil
}

// foregroundProcessGroup returns the process group that owns the terminal.
func foregroundProcessGroup(fd uintptr) (int, error) {
	return unix.IoctlGetInt(int(fd), unix.TIOCGPGRP)
}
