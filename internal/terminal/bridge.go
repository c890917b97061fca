package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/Gaurav-Gosain/termgrid/internal/config"
)

// runBridge is the ingress bridge: it reads the PTY and applies each chunk
// to the grid, in order, until the PTY fails or ctx is cancelled. The read
// itself never holds the grid lock.
func (s *Session) runBridge(ctx context.Context) error {
	defer s.stopBridge()

	buf := make([]byte, config.ReadBufferSize)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 && ctx.Err() == nil {
			s.apply(buf[:n])
		}
		if err != nil {
			if isHangup(err) || ctx.Err() != nil {
				s.log.Debug("bridge stopped", "session", s.id, "reason", err)
				return nil
			}
			s.log.Warn("bridge read failed", "session", s.id, "err", err)
			return fmt.Errorf("failed to read from PTY: %w", err)
		}
		if ctx.Err() != nil {
			s.log.Debug("bridge stopped", "session", s.id, "reason", ctx.Err())
			return nil
		}
	}
}

// stopBridge flips the liveness flag before the bridge goroutine returns.
// Without a child process there is nothing else to wait for.
func (s *Session) stopBridge() {
	s.alive.Store(false)
	close(s.bridgeDone)
	if s.proc == nil {
		s.markExited(-1)
	} else {
		s.notify()
	}
}

// apply feeds one chunk through the parser under the grid lock, then
// delivers replies and notifications with the lock released.
func (s *Session) apply(data []byte) {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return
	}
	_, _ = s.parser.Write(data)
	s.modes.Store(uint32(s.grid.Modes()))
	replies := s.replies
	s.replies = nil
	titleChanged := s.titleChanged
	s.titleChanged = false
	title := s.parser.Title()
	s.mu.Unlock()

	if len(replies) > 0 {
		s.writeReply(replies)
	}
	if titleChanged && s.opts.OnTitle != nil {
		s.opts.OnTitle(title)
	}
	s.HasNewOutput.Store(true)
	s.notify()
}

// writeReply sends terminal responses such as cursor position reports back
// to the child.
func (s *Session) writeReply(b []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.pty.Write(b); err != nil {
		s.log.Debug("failed to write reply", "session", s.id, "err", err)
	}
}

// notify posts a redraw hint without blocking. A pending hint already
// covers this change.
func (s *Session) notify() {
	select {
	case s.redraw <- struct{}{}:
	default:
	}
	if s.opts.OnRedraw != nil {
		s.opts.OnRedraw()
	}
}

// isHangup reports whether err means the other side of the PTY is gone.
func isHangup(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, syscall.EIO)
}
