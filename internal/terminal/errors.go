package terminal

import (
	"errors"
	"fmt"
)

var (
	// ErrSpawn matches every *SpawnError.
	ErrSpawn = errors.New("failed to spawn child process")
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrProcessExited is returned when writing to a session whose child
	// has exited.
	ErrProcessExited = errors.New("process exited")
	// ErrShortWrite is returned when the PTY accepted only part of a write.
	ErrShortWrite = errors.New("short write to PTY")
	// ErrNoProcess is returned by ProcessInfo for sessions created with
	// Attach.
	ErrNoProcess = errors.New("session has no child process")
)

// SpawnError reports a failure to allocate the PTY or start the child.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %q: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSpawn.
func (e *SpawnError) Is(target error) bool {
	return target == ErrSpawn
}
