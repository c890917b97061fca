//go:build !unix

package terminal

import (
	"errors"
	"os/exec"

	xpty "github.com/charmbracelet/x/xpty"
)

func setupPTYCommand(*exec.Cmd) {}

func releaseChildSide(xpty.Pty) {}

func windowSize(uintptr) (rows, cols int, err error) {
	return 0, 0, errors.ErrUnsupported
}

func foregroundProcessGroup(uintptr) (int, error) {
	return 0, errors.ErrUnsupported
}
