// Package testutil provides an in-memory PTY and escape-sequence builders
// for tests that exercise the terminal without spawning a process.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// Size is a recorded resize request.
type Size struct {
	Rows, Cols int
}

// FakePTY is an in-memory PTY. Output queued with SendOutput is returned by
// Read; bytes passed to Write are recorded as input. It satisfies
// terminal.PTY.
type FakePTY struct {
	mu      sync.Mutex
	cond    *sync.Cond
	output  bytes.Buffer
	input   bytes.Buffer
	history []string
	sizes   []Size
	closed  bool
	hungUp  bool
}

// NewFakePTY returns an open fake PTY.
func NewFakePTY() *FakePTY {
	f := &FakePTY{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// SendOutput queues s as output from the "child". It is a no-op once the
// PTY is closed or hung up.
func (f *FakePTY) SendOutput(s string) {
	f.SendBytes([]byte(s))
}

// SendOutputf is SendOutput with formatting.
func (f *FakePTY) SendOutputf(format string, args ...any) {
	f.SendOutput(fmt.Sprintf(format, args...))
}

// SendBytes queues raw output.
func (f *FakePTY) SendBytes(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.hungUp {
		return
	}
	f.output.Write(b)
	f.cond.Broadcast()
}

// Hangup simulates the child exiting: queued output is still delivered,
// then Read returns io.EOF.
func (f *FakePTY) Hangup() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hungUp = true
	f.cond.Broadcast()
}

// Read blocks until output is available, the PTY is closed, or it hangs up.
func (f *FakePTY) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.output.Len() == 0 && !f.closed && !f.hungUp {
		f.cond.Wait()
	}
	if f.closed {
		return 0, io.EOF
	}
	if f.output.Len() == 0 {
		return 0, io.EOF
	}
	return f.output.Read(p)
}

// ReadWithTimeout is Read that gives up after d with no data.
func (f *FakePTY) ReadWithTimeout(p []byte, d time.Duration) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	buf := make([]byte, len(p))
	go func() {
		n, err := f.Read(buf)
		ch <- result{n, err}
	}()
	select {
	case r := <-ch:
		copy(p, buf[:r.n])
		return r.n, r.err
	case <-time.After(d):
		return 0, fmt.Errorf("read timed out after %s", d)
	}
}

// Write records p as input.
func (f *FakePTY) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, io.ErrClosedPipe
	}
	f.input.Write(p)
	f.history = append(f.history, string(p))
	return len(p), nil
}

// Resize records the requested size.
func (f *FakePTY) Resize(rows, cols int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return io.ErrClosedPipe
	}
	f.sizes = append(f.sizes, Size{Rows: rows, Cols: cols})
	return nil
}

// Close closes the PTY. It is safe to call more than once.
func (f *FakePTY) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
	return nil
}

// IsClosed reports whether Close was called.
func (f *FakePTY) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// GetInput returns everything written so far.
func (f *FakePTY) GetInput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input.String()
}

// GetInputHistory returns each Write as a separate entry.
func (f *FakePTY) GetInputHistory() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.history...)
}

// ClearInput forgets recorded input.
func (f *FakePTY) ClearInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input.Reset()
	f.history = nil
}

// Sizes returns every recorded resize in order.
func (f *FakePTY) Sizes() []Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Size(nil), f.sizes...)
}
