package terminal_test

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/termgrid/internal/config"
	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/input"
	"github.com/Gaurav-Gosain/termgrid/internal/terminal"
	"github.com/Gaurav-Gosain/termgrid/internal/testutil"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func attach(t *testing.T, rows, cols int) (*terminal.Session, *testutil.FakePTY) {
	t.Helper()
	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{Rows: rows, Cols: cols})
	t.Cleanup(func() { _ = s.Close() })
	return s, pty
}

func waitForText(t *testing.T, s *terminal.Session, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Snapshot().Text() == want
	}, waitFor, tick, "grid never showed %q, last %q", want, s.Snapshot().Text())
}

func TestSessionRoundTrip(t *testing.T) {
	s, pty := attach(t, 24, 80)

	pty.SendOutput("A\x1b[2J\x1b[HB")
	waitForText(t, s, "B")

	snap := s.Snapshot()
	for pos, c := range snap.Cells() {
		if pos.Row == 0 && pos.Col == 0 {
			assert.Equal(t, 'B', c.Char)
			continue
		}
		require.True(t, c.Empty(), "cell %v = %q", pos, c.Char)
	}
}

func TestSessionSGRReset(t *testing.T) {
	s, pty := attach(t, 24, 80)

	pty.SendOutput("\x1b[1mx\x1b[0my")
	waitForText(t, s, "xy")

	snap := s.Snapshot()
	assert.True(t, snap.At(0, 0).Bold())
	assert.False(t, snap.At(0, 1).Bold())
}

func TestSessionHasNewOutput(t *testing.T) {
	s, pty := attach(t, 5, 10)
	assert.False(t, s.TakeNewOutput(), "HasNewOutput should be false by default")

	pty.SendOutput("a")
	pty.SendOutput("b")
	pty.SendOutput("c")
	waitForText(t, s, "abc")

	assert.True(t, s.TakeNewOutput(), "first take should report output")
	assert.False(t, s.TakeNewOutput(), "second take should be cleared")
}

func TestSessionRedrawCoalesces(t *testing.T) {
	var redraws sync.WaitGroup
	redraws.Add(1)
	var once sync.Once

	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{
		Rows:     5,
		Cols:     10,
		OnRedraw: func() { once.Do(redraws.Done) },
	})
	defer func() { _ = s.Close() }()

	for range 50 {
		pty.SendOutput("x")
	}
	redraws.Wait()

	select {
	case <-s.Redraw():
	case <-time.After(waitFor):
		t.Fatal("no redraw hint delivered")
	}
	assert.LessOrEqual(t, len(s.Redraw()), 1, "hints must coalesce")
}

func TestSessionConcurrentIngress(t *testing.T) {
	const total = 10_000
	s, pty := attach(t, 200, 100)

	done := make(chan struct{})
	go func() {
		defer close(done)
		chunk := strings.Repeat("x", 100)
		for range total / len(chunk) {
			pty.SendOutput(chunk)
		}
	}()

	count := func(snap grid.Snapshot) int {
		n := 0
		for _, c := range snap.Cells() {
			switch c.Char {
			case 'x':
				n++
			case 0:
			default:
				t.Fatalf("unexpected cell %q", c.Char)
			}
		}
		return n
	}

	last := 0
	deadline := time.Now().Add(5 * time.Second)
	for last < total {
		require.True(t, time.Now().Before(deadline), "only %d of %d bytes applied", last, total)
		n := count(s.Snapshot())
		require.GreaterOrEqual(t, n, last, "snapshots went backwards")
		last = n
		time.Sleep(time.Millisecond)
	}
	<-done

	snap := s.Snapshot()
	assert.Equal(t, total, count(snap))
	assert.Equal(t, 99, snap.CursorRow)
	assert.Equal(t, 99, snap.CursorCol)
	assert.True(t, snap.PendingWrap)
}

func TestSessionRepliesReachChild(t *testing.T) {
	_, pty := attach(t, 24, 80)

	pty.SendOutput(testutil.NewANSIBuilder().CursorTo(3, 5).RequestCursorPosition().String())

	require.Eventually(t, func() bool {
		return pty.GetInput() == testutil.CursorPositionResponse(3, 5)
	}, waitFor, tick)
}

func TestSessionTitleCallback(t *testing.T) {
	titles := make(chan string, 1)
	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{OnTitle: func(title string) { titles <- title }})
	defer func() { _ = s.Close() }()

	pty.SendOutput(testutil.NewANSIBuilder().OSCTitle("vim").String())

	select {
	case title := <-titles:
		assert.Equal(t, "vim", title)
	case <-time.After(waitFor):
		t.Fatal("title callback not called")
	}
	assert.Equal(t, "vim", s.Title())

	pty.SendOutput("\x1bc")
	select {
	case title := <-titles:
		assert.Empty(t, title)
	case <-time.After(waitFor):
		t.Fatal("reset did not report the cleared title")
	}
	assert.Empty(t, s.Title())
}

func TestSessionDefaultColors(t *testing.T) {
	s, pty := attach(t, 5, 10)

	pty.SendOutput("\x1b]11;#102030\x07x")
	waitForText(t, s, "x")

	bg := s.DefaultColors().Background
	require.NotNil(t, bg)
	r, g, b, _ := bg.RGBA()
	assert.Equal(t, []uint32{0x10, 0x20, 0x30}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestSessionResize(t *testing.T) {
	s, pty := attach(t, 5, 10)

	pty.SendOutput("hello\r\nworld")
	waitForText(t, s, "hello\nworld")

	require.NoError(t, s.Resize(10, 20))
	require.NoError(t, s.Resize(5, 10))

	rows, cols := s.Size()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 10, cols)
	assert.Equal(t, "hello\nworld", s.Snapshot().Text())
	assert.Equal(t, []testutil.Size{{Rows: 10, Cols: 20}, {Rows: 5, Cols: 10}}, pty.Sizes())

	require.NoError(t, s.Resize(0, 99999))
	rows, cols = s.Size()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1000, cols)
}

func TestSessionResizeShrinkKeepsOverlap(t *testing.T) {
	s, pty := attach(t, 4, 8)

	pty.SendOutput("abcdefgh\r\n12345678")
	waitForText(t, s, "abcdefgh\n12345678")

	require.NoError(t, s.Resize(2, 4))
	require.NoError(t, s.Resize(4, 8))
	assert.Equal(t, "abcd\n1234", s.Snapshot().Text())
}

func TestSessionWindowSizeUnsupportedForFakes(t *testing.T) {
	s, _ := attach(t, 5, 10)
	_, _, err := s.WindowSize()
	assert.ErrorIs(t, err, errors.ErrUnsupported)

	_, err = s.ProcessInfo()
	assert.ErrorIs(t, err, terminal.ErrNoProcess)
}

func TestSessionWriteAfterExit(t *testing.T) {
	s, pty := attach(t, 5, 10)

	_, err := s.Write([]byte("ls\r"))
	require.NoError(t, err)
	assert.Equal(t, "ls\r", pty.GetInput())

	pty.SendOutput("bye")
	pty.Hangup()

	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("session did not die after hangup")
	}
	assert.False(t, s.Alive())
	assert.Equal(t, -1, s.ExitCode())
	assert.Equal(t, "bye", s.Snapshot().Text(), "exit must not clear the grid")

	_, err = s.Write([]byte("x"))
	assert.ErrorIs(t, err, terminal.ErrProcessExited)
}

func TestSessionWriteAfterClose(t *testing.T) {
	s, _ := attach(t, 5, 10)
	require.NoError(t, s.Close())

	_, err := s.Write([]byte("x"))
	assert.ErrorIs(t, err, terminal.ErrSessionClosed)
	assert.ErrorIs(t, s.Resize(10, 10), terminal.ErrSessionClosed)
}

func TestSessionOnExit(t *testing.T) {
	codes := make(chan int, 2)
	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{OnExit: func(code int) { codes <- code }})

	pty.Hangup()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, -1, <-codes)
	assert.Empty(t, codes, "OnExit must fire once")
}

func TestSessionSendKey(t *testing.T) {
	s, pty := attach(t, 5, 10)

	consumed, err := s.SendKey(input.KeyEvent{Key: input.KeyUp, Pressed: true})
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, "\x1b[A", pty.GetInput())

	pty.ClearInput()
	pty.SendOutput(testutil.NewANSIBuilder().AppCursorKeys(true).Text("x").String())
	waitForText(t, s, "x")

	_, err = s.SendKey(input.KeyEvent{Key: input.KeyUp, Pressed: true})
	require.NoError(t, err)
	assert.Equal(t, "\x1bOA", pty.GetInput())

	consumed, err = s.SendKey(input.KeyEvent{Key: input.KeyUp, Pressed: false})
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestSessionPaste(t *testing.T) {
	s, pty := attach(t, 5, 10)

	require.NoError(t, s.Paste("a\nb"))
	assert.Equal(t, "a\nb", pty.GetInput())

	pty.ClearInput()
	pty.SendOutput(testutil.NewANSIBuilder().BracketedPaste(true).Text("x").String())
	waitForText(t, s, "x")

	require.NoError(t, s.Paste("a\nb"))
	assert.Equal(t, "\x1b[200~a\nb\x1b[201~", pty.GetInput())
}

// TestSessionPasteUnchanged checks that pasted text reaches the child
// exactly as given, in both paste modes.
func TestSessionPasteUnchanged(t *testing.T) {
	const payload = "line1\nline2\r\nend\x1b[201~x é日本"

	t.Run("plain", func(t *testing.T) {
		s, pty := attach(t, 5, 10)
		require.NoError(t, s.Paste(payload))
		assert.Equal(t, payload, pty.GetInput())
	})

	t.Run("bracketed", func(t *testing.T) {
		s, pty := attach(t, 5, 10)
		pty.SendOutput(testutil.NewANSIBuilder().BracketedPaste(true).Text("x").String())
		waitForText(t, s, "x")

		require.NoError(t, s.Paste(payload))
		assert.Equal(t, "\x1b[200~"+payload+"\x1b[201~", pty.GetInput())
	})
}

func TestSessionScrollback(t *testing.T) {
	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{Rows: 2, Cols: 5, ScrollbackLines: 3})
	defer func() { _ = s.Close() }()

	pty.SendOutput("1\r\n2\r\n3\r\n4\r\n5\r\n6")
	waitForText(t, s, "5\n6")

	require.Equal(t, 3, s.ScrollbackLen())
	assert.Equal(t, '2', s.ScrollbackLine(0)[0].Char)
	assert.Equal(t, '4', s.ScrollbackLine(2)[0].Char)
	assert.Nil(t, s.ScrollbackLine(5))
}

func TestSessionScrollbackDisabled(t *testing.T) {
	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{Rows: 2, Cols: 5, ScrollbackLines: -1})
	defer func() { _ = s.Close() }()

	pty.SendOutput("1\r\n2\r\n3")
	waitForText(t, s, "2\n3")
	assert.Zero(t, s.ScrollbackLen())
}

// TestSessionTeardownBounded closes a session whose bridge is blocked in
// Read and checks that nothing changes afterwards.
func TestSessionTeardownBounded(t *testing.T) {
	s, pty := attach(t, 5, 10)

	pty.SendOutput("before")
	waitForText(t, s, "before")

	closed := make(chan struct{})
	go func() {
		_ = s.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(waitFor):
		t.Fatal("Close did not return in time")
	}

	pty.SendOutput("after")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, "before", s.Snapshot().Text())
	assert.True(t, pty.IsClosed())

	select {
	case <-s.Done():
	default:
		t.Error("Done should be closed after Close")
	}
}

func TestSessionCloseConcurrent(t *testing.T) {
	s, _ := attach(t, 5, 10)

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			_ = s.Close()
		})
	}
	wg.Wait()

	if err := s.Close(); err != nil {
		t.Errorf("Close() returned error on re-close: %v", err)
	}
}

func TestSpawnErrorMatchesSentinel(t *testing.T) {
	err := error(&terminal.SpawnError{Shell: "nope", Err: exec.ErrNotFound})
	assert.ErrorIs(t, err, terminal.ErrSpawn)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestStartMissingShell(t *testing.T) {
	_, err := terminal.Start(terminal.Options{Shell: "/definitely/not/a/shell"})
	require.Error(t, err)
	assert.ErrorIs(t, err, terminal.ErrSpawn)

	var spawnErr *terminal.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Contains(t, spawnErr.Shell, "/definitely/not/a/shell")
}

func startShell(t *testing.T, script string, opts terminal.Options) *terminal.Session {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	opts.Shell = "/bin/sh"
	opts.Args = []string{"-c", script}
	s, err := terminal.Start(opts)
	if errors.Is(err, terminal.ErrSpawn) {
		t.Skipf("cannot allocate a PTY here: %v", err)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStartRealProcess(t *testing.T) {
	s := startShell(t, `printf 'hello\n'; printf '%s' "$TERMGRID_SESSION_ID"; exit 3`, terminal.Options{Rows: 5, Cols: 60})

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}

	assert.False(t, s.Alive())
	assert.Equal(t, 3, s.ExitCode())
	assert.Equal(t, "hello\n"+s.ID(), s.Snapshot().Text())

	_, err := s.Write([]byte("x"))
	assert.Error(t, err)
}

func TestStartReportsWindowSize(t *testing.T) {
	s := startShell(t, "sleep 5", terminal.Options{Rows: 7, Cols: 33})

	rows, cols, err := s.WindowSize()
	require.NoError(t, err)
	assert.Equal(t, 7, rows)
	assert.Equal(t, 33, cols)

	require.NoError(t, s.Resize(12, 40))
	rows, cols, err = s.WindowSize()
	require.NoError(t, err)
	assert.Equal(t, 12, rows)
	assert.Equal(t, 40, cols)

	start := time.Now()
	require.NoError(t, s.Close())
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSessionSetScrollbackLines(t *testing.T) {
	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{Rows: 2, Cols: 5, ScrollbackLines: 5})
	defer func() { _ = s.Close() }()

	pty.SendOutput("1\r\n2\r\n3\r\n4\r\n5\r\n6")
	waitForText(t, s, "5\n6")
	require.Equal(t, 4, s.ScrollbackLen())
	require.Equal(t, 5, s.ScrollbackCapacity())

	s.SetScrollbackLines(2)
	assert.Equal(t, 2, s.ScrollbackCapacity())
	require.Equal(t, 2, s.ScrollbackLen())
	assert.Equal(t, '3', s.ScrollbackLine(0)[0].Char)
	assert.Equal(t, '4', s.ScrollbackLine(1)[0].Char)

	s.SetScrollbackLines(-1)
	assert.Zero(t, s.ScrollbackCapacity())
	assert.Zero(t, s.ScrollbackLen())

	s.SetScrollbackLines(0)
	assert.Equal(t, config.DefaultScrollbackLines, s.ScrollbackCapacity())
	pty.SendOutput("\r\n7")
	waitForText(t, s, "6\n7")
	require.Equal(t, 1, s.ScrollbackLen())
	assert.Equal(t, '5', s.ScrollbackLine(0)[0].Char)
}

func TestSessionEraseScrollback(t *testing.T) {
	pty := testutil.NewFakePTY()
	s := terminal.Attach(pty, terminal.Options{Rows: 2, Cols: 5, ScrollbackLines: 10})
	defer func() { _ = s.Close() }()

	pty.SendOutput("1\r\n2\r\n3")
	waitForText(t, s, "2\n3")
	require.Equal(t, 1, s.ScrollbackLen())

	pty.SendOutput("\x1b[H\x1b[2J\x1b[3Jz")
	waitForText(t, s, "z")
	assert.Zero(t, s.ScrollbackLen())
}

// pixelPTY is a FakePTY that also accepts pixel sizes.
type pixelPTY struct {
	*testutil.FakePTY

	mu    sync.Mutex
	sizes [][4]int
	err   error
}

func (p *pixelPTY) SetPixelSize(rows, cols, width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes = append(p.sizes, [4]int{rows, cols, width, height})
	return p.err
}

func (p *pixelPTY) recorded() [][4]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][4]int(nil), p.sizes...)
}

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Debug(msg any, _ ...any) { l.add(msg) }
func (l *recordingLogger) Warn(msg any, _ ...any)  { l.add(msg) }

func (l *recordingLogger) add(msg any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprint(msg))
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

func TestSessionResizeReportsPixels(t *testing.T) {
	metrics := config.FontMetrics{CellWidth: 8.4, CellHeight: 18}

	t.Run("sets pixel size from metrics", func(t *testing.T) {
		pty := &pixelPTY{FakePTY: testutil.NewFakePTY()}
		s := terminal.Attach(pty, terminal.Options{Rows: 2, Cols: 4, Metrics: metrics})
		defer func() { _ = s.Close() }()

		require.NoError(t, s.Resize(10, 20))
		assert.Equal(t, [][4]int{{10, 20, 168, 180}}, pty.recorded())
	})

	t.Run("no metrics", func(t *testing.T) {
		pty := &pixelPTY{FakePTY: testutil.NewFakePTY()}
		s := terminal.Attach(pty, terminal.Options{Rows: 2, Cols: 4})
		defer func() { _ = s.Close() }()

		require.NoError(t, s.Resize(10, 20))
		assert.Empty(t, pty.recorded())
	})

	t.Run("failure is logged", func(t *testing.T) {
		pty := &pixelPTY{FakePTY: testutil.NewFakePTY(), err: errors.New("unsupported")}
		logger := &recordingLogger{}
		s := terminal.Attach(pty, terminal.Options{Rows: 2, Cols: 4, Metrics: metrics, Logger: logger})
		defer func() { _ = s.Close() }()

		require.NoError(t, s.Resize(10, 20))
		assert.Contains(t, logger.messages(), "pixel size not set")
	})
}
