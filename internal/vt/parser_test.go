package vt_test

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/testutil"
	"github.com/Gaurav-Gosain/termgrid/internal/vt"
)

// feed writes s into a fresh rows x cols grid and returns the grid and parser.
func feed(t *testing.T, rows, cols int, s string) (*grid.Grid, *vt.Parser) {
	t.Helper()
	g := grid.New(rows, cols)
	p := vt.New(g, vt.Callbacks{})
	if _, err := p.WriteString(s); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	return g, p
}

func cursor(g *grid.Grid) [2]int {
	r, c := g.Cursor()
	return [2]int{r, c}
}

func TestPlainTextRoundTrip(t *testing.T) {
	g, _ := feed(t, 24, 80, "hello world")

	snap := g.Snapshot()
	if got := snap.Line(0); got != "hello world" {
		t.Errorf("row 0 = %q, want %q", got, "hello world")
	}
	if got := cursor(g); got != [2]int{0, 11} {
		t.Errorf("cursor = %v, want [0 11]", got)
	}
}

func TestNewlineImpliesCarriageReturn(t *testing.T) {
	g, _ := feed(t, 5, 10, "ab\ncd")

	snap := g.Snapshot()
	if snap.Line(0) != "ab" || snap.Line(1) != "cd" {
		t.Errorf("got %q", snap.Text())
	}
	if got := cursor(g); got != [2]int{1, 2} {
		t.Errorf("cursor = %v, want [1 2]", got)
	}
}

func TestCursorMovement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [2]int
	}{
		{"position", testutil.NewANSIBuilder().CursorTo(5, 10).String(), [2]int{4, 9}},
		{"home", testutil.NewANSIBuilder().CursorTo(5, 10).CursorHome().String(), [2]int{0, 0}},
		{"up saturates", testutil.NewANSIBuilder().CursorUp(3).String(), [2]int{0, 0}},
		{"down", testutil.NewANSIBuilder().CursorDown(3).String(), [2]int{3, 0}},
		{"forward clamps", testutil.NewANSIBuilder().CursorForward(500).String(), [2]int{0, 79}},
		{"backward", "abcdef" + testutil.NewANSIBuilder().CursorBackward(2).String(), [2]int{0, 4}},
		{"position clamps", "\x1b[999;999H", [2]int{23, 79}},
		{"zero means one", "\x1b[0;0H", [2]int{0, 0}},
		{"column absolute", "\x1b[3;3H\x1b[20G", [2]int{2, 19}},
		{"row absolute", "\x1b[3;3H\x1b[10d", [2]int{9, 2}},
		{"next line", "\x1b[3;3H\x1b[2E", [2]int{4, 0}},
		{"previous line", "\x1b[5;5H\x1b[F", [2]int{3, 0}},
		{"tab stops", "\t", [2]int{0, 8}},
		{"tab from mid stop", "abc\t", [2]int{0, 8}},
		{"backspace saturates", "\b\b", [2]int{0, 0}},
		{"carriage return", "hello\r", [2]int{0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := feed(t, 24, 80, tc.input)
			if got := cursor(g); got != tc.want {
				t.Errorf("cursor = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCursorPositionClampProperty(t *testing.T) {
	for r := 1; r <= 30; r += 7 {
		for c := 1; c <= 100; c += 13 {
			g, _ := feed(t, 24, 80, testutil.NewANSIBuilder().CursorTo(r, c).String())
			want := [2]int{min(r-1, 23), min(c-1, 79)}
			if got := cursor(g); got != want {
				t.Errorf("CUP %d;%d: cursor = %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestAutoWrap(t *testing.T) {
	g, _ := feed(t, 3, 5, "abcde")

	if !g.PendingWrap() {
		t.Fatal("expected pending wrap after filling the last column")
	}
	if got := cursor(g); got != [2]int{0, 4} {
		t.Errorf("cursor = %v, want [0 4]", got)
	}

	p := vt.New(g, vt.Callbacks{})
	_, _ = p.WriteString("f")

	snap := g.Snapshot()
	if snap.Line(0) != "abcde" || snap.Line(1) != "f" {
		t.Errorf("got %q", snap.Text())
	}
	if got := cursor(g); got != [2]int{1, 1} {
		t.Errorf("cursor = %v, want [1 1]", got)
	}
}

func TestAutoWrapDisabled(t *testing.T) {
	g, _ := feed(t, 3, 5, "\x1b[?7labcdefg")

	snap := g.Snapshot()
	if got := snap.Line(0); got != "abcdg" {
		t.Errorf("row 0 = %q, want %q", got, "abcdg")
	}
	if snap.Line(1) != "" {
		t.Errorf("row 1 = %q, want empty", snap.Line(1))
	}
}

func TestScrollAtBottom(t *testing.T) {
	g, _ := feed(t, 3, 10, "one\ntwo\nthree\nfour")

	snap := g.Snapshot()
	if got := snap.Text(); got != "two\nthree\nfour" {
		t.Errorf("text = %q", got)
	}
}

func TestScrollbackReceivesScrolledRows(t *testing.T) {
	g := grid.New(2, 10)
	sb := grid.NewScrollback(10)
	g.AttachScrollback(sb)
	p := vt.New(g, vt.Callbacks{})
	_, _ = p.WriteString("a\nb\nc\nd")

	if sb.Len() != 2 {
		t.Fatalf("scrollback len = %d, want 2", sb.Len())
	}
	if sb.Line(0)[0].Char != 'a' || sb.Line(1)[0].Char != 'b' {
		t.Errorf("unexpected scrollback contents")
	}
}

func TestEraseSequences(t *testing.T) {
	t.Run("clear screen keeps cursor", func(t *testing.T) {
		g, _ := feed(t, 3, 10, "abc\ndef\x1b[2J")
		if g.Snapshot().Text() != "" {
			t.Error("expected an empty screen")
		}
		if got := cursor(g); got != [2]int{1, 3} {
			t.Errorf("cursor = %v, want [1 3]", got)
		}
	})

	t.Run("erase line to end", func(t *testing.T) {
		g, _ := feed(t, 3, 10, "abcdef\x1b[4G\x1b[K")
		if got := g.Snapshot().Line(0); got != "abc" {
			t.Errorf("row 0 = %q, want %q", got, "abc")
		}
	})

	t.Run("erase line to start", func(t *testing.T) {
		g, _ := feed(t, 3, 10, "abcdef\x1b[3G\x1b[1K")
		if got := g.Snapshot().Line(0); got != "   def" {
			t.Errorf("row 0 = %q, want %q", got, "   def")
		}
	})

	t.Run("erase whole line", func(t *testing.T) {
		g, _ := feed(t, 3, 10, "abcdef\x1b[2K")
		if got := g.Snapshot().Line(0); got != "" {
			t.Errorf("row 0 = %q, want empty", got)
		}
	})

	t.Run("erase below", func(t *testing.T) {
		g, _ := feed(t, 3, 10, "abc\ndef\nghi\x1b[2;2H\x1b[J")
		if got := g.Snapshot().Text(); got != "abc\nd" {
			t.Errorf("text = %q, want %q", got, "abc\nd")
		}
	})
}

func TestInsertDeleteChars(t *testing.T) {
	g, _ := feed(t, 1, 10, "abcdef\x1b[2G\x1b[2@")
	if got := g.Snapshot().Line(0); got != "a  bcdef" {
		t.Errorf("after ICH = %q", got)
	}

	g, _ = feed(t, 1, 10, "abcdef\x1b[2G\x1b[2P")
	if got := g.Snapshot().Line(0); got != "adef" {
		t.Errorf("after DCH = %q", got)
	}

	g, _ = feed(t, 1, 10, "abcdef\x1b[2G\x1b[2X")
	if got := g.Snapshot().Line(0); got != "a  def" {
		t.Errorf("after ECH = %q", got)
	}
}

func TestScrollRegion(t *testing.T) {
	b := testutil.NewANSIBuilder()
	b.Text("1\n2\n3\n4\n5")
	b.ScrollRegion(2, 4)
	b.CursorTo(4, 1).Text("\nx")

	g, _ := feed(t, 5, 5, b.String())

	if got := g.Snapshot().Text(); got != "1\n3\n4\nx\n5" {
		t.Errorf("text = %q", got)
	}
	top, bottom := g.ScrollRegion()
	if top != 1 || bottom != 3 {
		t.Errorf("region = %d..%d, want 1..3", top, bottom)
	}
}

func TestInvalidScrollRegionResets(t *testing.T) {
	g, _ := feed(t, 5, 5, "\x1b[2;4r\x1b[4;2r")
	top, bottom := g.ScrollRegion()
	if top != 0 || bottom != 4 {
		t.Errorf("region = %d..%d, want 0..4", top, bottom)
	}
}

func TestInsertDeleteLines(t *testing.T) {
	g, _ := feed(t, 4, 5, "a\nb\nc\nd\x1b[2;1H\x1b[L")
	if got := g.Snapshot().Text(); got != "a\n\nb\nc" {
		t.Errorf("after IL = %q", got)
	}

	g, _ = feed(t, 4, 5, "a\nb\nc\nd\x1b[2;1H\x1b[M")
	if got := g.Snapshot().Text(); got != "a\nc\nd" {
		t.Errorf("after DL = %q", got)
	}
}

func TestReverseIndexAtTop(t *testing.T) {
	g, _ := feed(t, 3, 5, "a\nb\x1b[H\x1bM")
	if got := g.Snapshot().Text(); got != "\na\nb" {
		t.Errorf("text = %q", got)
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	for _, seq := range []struct{ save, restore string }{
		{"\x1b7", "\x1b8"},
		{"\x1b[s", "\x1b[u"},
	} {
		g, _ := feed(t, 10, 10, "\x1b[3;4H\x1b[1m"+seq.save+"\x1b[H\x1b[0m"+seq.restore)
		if got := cursor(g); got != [2]int{2, 3} {
			t.Errorf("%q: cursor = %v, want [2 3]", seq.save, got)
		}
		if !g.Pen().Attrs.Has(grid.AttrBold) {
			t.Errorf("%q: expected saved pen restored", seq.save)
		}
	}
}

func TestPrivateModes(t *testing.T) {
	g, _ := feed(t, 5, 5, "\x1b[?25l\x1b[?1h\x1b[?2004h")
	if g.HasMode(grid.ModeCursorVisible) {
		t.Error("cursor should be hidden")
	}
	if !g.HasMode(grid.ModeAppCursorKeys | grid.ModeBracketedPaste) {
		t.Error("expected app cursor keys and bracketed paste")
	}

	p := vt.New(g, vt.Callbacks{})
	_, _ = p.WriteString("\x1b[?25;1;2004l")
	if !g.HasMode(grid.ModeCursorVisible) || g.HasMode(grid.ModeAppCursorKeys) || g.HasMode(grid.ModeBracketedPaste) {
		t.Errorf("modes = %b after reset", g.Modes())
	}
}

func TestFullReset(t *testing.T) {
	g, p := feed(t, 5, 5, "\x1b]0;title\x07\x1b[1mab\x1b[?25l\x1bc")

	if g.Snapshot().Text() != "" {
		t.Error("expected empty screen after RIS")
	}
	if g.Pen() != (grid.Pen{}) {
		t.Error("expected default pen after RIS")
	}
	if !g.HasMode(grid.ModeCursorVisible) {
		t.Error("expected visible cursor after RIS")
	}
	if p.Title() != "" {
		t.Errorf("title = %q, want empty", p.Title())
	}
}

func TestFullResetNotifiesTitle(t *testing.T) {
	var titles []string
	g := grid.New(3, 5)
	p := vt.New(g, vt.Callbacks{Title: func(s string) { titles = append(titles, s) }})

	p.WriteString("\x1bc")
	if len(titles) != 0 {
		t.Fatalf("reset without a title reported %q", titles)
	}

	p.WriteString("\x1b]2;build\x07\x1bc")
	if len(titles) != 2 || titles[0] != "build" || titles[1] != "" {
		t.Errorf("titles = %q, want [build \"\"]", titles)
	}
}

func TestReplies(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cursor position report", "\x1b[5;7H\x1b[6n", testutil.CursorPositionResponse(5, 7)},
		{"status ok", "\x1b[5n", "\x1b[0n"},
		{"device attributes", "\x1b[c", "\x1b[?1;2c"},
		{"text area size", "\x1b[18t", testutil.TerminalSizeResponse(24, 80)},
		{"secondary attributes ignored", "\x1b[>c", ""},
		{"unknown status ignored", "\x1b[99n", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			g := grid.New(24, 80)
			p := vt.New(g, vt.Callbacks{Reply: func(b []byte) { out.Write(b) }})
			_, _ = p.WriteString(tc.input)
			if got := out.String(); got != tc.want {
				t.Errorf("reply = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMalformedSequencesRecover(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"cancel mid CSI", "\x1b[12\x18ok", "ok"},
		{"substitute mid escape", "\x1b\x1aok", "ok"},
		{"marker after params", "\x1b[1?hok", "ok"},
		{"too many intermediates", "\x1b[1 !\"mok", "ok"},
		{"unknown final", "\x1b[5zok", "ok"},
		{"charset designation", "\x1b(Bok", "ok"},
		{"dcs payload", "\x1bPq#0;1;1\x1b\\ok", "ok"},
		{"apc payload", "\x1b_hidden\x1b\\ok", "ok"},
		{"escape restarts", "\x1b[1;\x1b[2Jok", "ok"},
		{"del inside csi", "\x1b[3\x7fCok", "   ok"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, p := feed(t, 5, 20, tc.input)
			if got := g.Snapshot().Line(0); got != tc.want {
				t.Errorf("row 0 = %q, want %q", got, tc.want)
			}
			if p.State() != vt.StateGround {
				t.Errorf("state = %v, want Ground", p.State())
			}
		})
	}
}

func TestControlsInsideCSIExecute(t *testing.T) {
	g, _ := feed(t, 5, 20, "abcd\x1b[\r2Cx")
	if got := g.Snapshot().Line(0); got != "abxd" {
		t.Errorf("row 0 = %q, want %q", got, "abxd")
	}
}

func TestParameterLimits(t *testing.T) {
	g, _ := feed(t, 24, 80, "\x1b[99999999999;99999999999H")
	if got := cursor(g); got != [2]int{23, 79} {
		t.Errorf("cursor = %v, want [23 79]", got)
	}

	many := "\x1b[" + strings.Repeat("1;", 100) + "5H"
	g, p := feed(t, 24, 80, many+"ok")
	if p.State() != vt.StateGround {
		t.Errorf("state = %v, want Ground", p.State())
	}
	if got := g.Snapshot().Line(0); got != "ok" {
		t.Errorf("row 0 = %q, want %q", got, "ok")
	}
}

func TestUTF8Decoding(t *testing.T) {
	g, _ := feed(t, 2, 10, "héllo ✓")
	if got := g.Snapshot().Line(0); got != "héllo ✓" {
		t.Errorf("row 0 = %q", got)
	}

	g, _ = feed(t, 2, 10, "a\xffb")
	if got := g.Snapshot().Line(0); got != "a�b" {
		t.Errorf("row 0 = %q, want replacement char", got)
	}

	g, _ = feed(t, 2, 10, "a\xe2\x9c\nb")
	snap := g.Snapshot()
	if snap.Line(0) != "a�" || snap.Line(1) != "b" {
		t.Errorf("truncated sequence: %q", snap.Text())
	}
}

func TestUTF8SplitAcrossWrites(t *testing.T) {
	g := grid.New(2, 10)
	p := vt.New(g, vt.Callbacks{})
	check := []byte("✓")
	for _, b := range check {
		_, _ = p.Write([]byte{b})
	}
	if got := g.Snapshot().Line(0); got != "✓" {
		t.Errorf("row 0 = %q", got)
	}
}

func TestBell(t *testing.T) {
	rang := 0
	g := grid.New(2, 10)
	p := vt.New(g, vt.Callbacks{Bell: func() { rang++ }})
	_, _ = p.WriteString("a\ab")
	if rang != 1 {
		t.Errorf("bell rang %d times, want 1", rang)
	}
	if got := g.Snapshot().Line(0); got != "ab" {
		t.Errorf("row 0 = %q", got)
	}
}

func TestStateString(t *testing.T) {
	if vt.StateCsiParam.String() != "CsiParam" {
		t.Errorf("got %q", vt.StateCsiParam.String())
	}
	if vt.State(200).String() != "Unknown" {
		t.Errorf("got %q", vt.State(200).String())
	}
}

// TestRandomInputStaysInBounds throws random bytes at the parser and checks
// that the cursor never leaves the grid.
func TestRandomInputStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	alphabet := []byte("\x1b[];?0123456789;:mHJKABCDrlhsu\x07\x18\x1a\n\r\t\b abc\xc3\xa9\xff")

	for i := range 200 {
		rows, cols := 1+rng.IntN(10), 1+rng.IntN(20)
		g := grid.New(rows, cols)
		p := vt.New(g, vt.Callbacks{Reply: func([]byte) {}})

		buf := make([]byte, 512)
		for j := range buf {
			buf[j] = alphabet[rng.IntN(len(alphabet))]
		}
		_, _ = p.Write(buf)

		r, c := g.Cursor()
		if r < 0 || r >= rows || c < 0 || c >= cols {
			t.Fatalf("iteration %d: cursor (%d,%d) outside %dx%d", i, r, c, rows, cols)
		}
		top, bottom := g.ScrollRegion()
		if top < 0 || bottom >= rows || top > bottom {
			t.Fatalf("iteration %d: region %d..%d outside %d rows", i, top, bottom, rows)
		}
	}
}
