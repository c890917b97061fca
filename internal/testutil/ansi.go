package testutil

import (
	"fmt"
	"strings"
)

// ANSIBuilder builds escape sequences fluently.
type ANSIBuilder struct {
	sb strings.Builder
}

// NewANSIBuilder returns an empty builder.
func NewANSIBuilder() *ANSIBuilder {
	return &ANSIBuilder{}
}

func (b *ANSIBuilder) csi(format string, args ...any) *ANSIBuilder {
	b.sb.WriteString("\x1b[")
	fmt.Fprintf(&b.sb, format, args...)
	return b
}

// countArg renders n, leaving it out when it is the default of 1.
func countArg(n int) string {
	if n == 1 {
		return ""
	}
	return fmt.Sprint(n)
}

// Text appends plain text.
func (b *ANSIBuilder) Text(s string) *ANSIBuilder {
	b.sb.WriteString(s)
	return b
}

// Newline appends CR LF.
func (b *ANSIBuilder) Newline() *ANSIBuilder {
	b.sb.WriteString("\r\n")
	return b
}

func (b *ANSIBuilder) CursorHome() *ANSIBuilder { return b.csi("H") }
func (b *ANSIBuilder) CursorTo(row, col int) *ANSIBuilder { return b.csi("%d;%dH", row, col) }
func (b *ANSIBuilder) CursorUp(n int) *ANSIBuilder { return b.csi("%sA", countArg(n)) }
func (b *ANSIBuilder) CursorDown(n int) *ANSIBuilder { return b.csi("%sB", countArg(n)) }
func (b *ANSIBuilder) CursorForward(n int) *ANSIBuilder { return b.csi("%sC", countArg(n)) }
func (b *ANSIBuilder) CursorBackward(n int) *ANSIBuilder { return b.csi("%sD", countArg(n)) }
func (b *ANSIBuilder) SaveCursor() *ANSIBuilder { return b.Text("\x1b7") }
func (b *ANSIBuilder) RestoreCursor() *ANSIBuilder { return b.Text("\x1b8") }

func (b *ANSIBuilder) ClearScreen() *ANSIBuilder { return b.csi("2J") }
func (b *ANSIBuilder) ClearLine() *ANSIBuilder { return b.csi("2K") }
func (b *ANSIBuilder) ClearToEndOfLine() *ANSIBuilder { return b.csi("K") }
func (b *ANSIBuilder) ClearToEndOfScreen() *ANSIBuilder { return b.csi("J") }

func (b *ANSIBuilder) Reset() *ANSIBuilder { return b.csi("0m") }
func (b *ANSIBuilder) Bold() *ANSIBuilder { return b.csi("1m") }
func (b *ANSIBuilder) Underline() *ANSIBuilder { return b.csi("4m") }
func (b *ANSIBuilder) Inverse() *ANSIBuilder { return b.csi("7m") }
func (b *ANSIBuilder) FgColor(n int) *ANSIBuilder { return b.csi("%dm", n) }
func (b *ANSIBuilder) BgColor(n int) *ANSIBuilder { return b.csi("%dm", n) }
func (b *ANSIBuilder) Fg256(n int) *ANSIBuilder { return b.csi("38;5;%dm", n) }
func (b *ANSIBuilder) Bg256(n int) *ANSIBuilder { return b.csi("48;5;%dm", n) }
func (b *ANSIBuilder) FgRGB(r, g, bl int) *ANSIBuilder {
	return b.csi("38;2;%d;%d;%dm", r, g, bl)
}
func (b *ANSIBuilder) BgRGB(r, g, bl int) *ANSIBuilder {
	return b.csi("48;2;%d;%d;%dm", r, g, bl)
}

func (b *ANSIBuilder) ScrollRegion(top, bottom int) *ANSIBuilder { return b.csi("%d;%dr", top, bottom) }
func (b *ANSIBuilder) ScrollUp(n int) *ANSIBuilder { return b.csi("%sS", countArg(n)) }
func (b *ANSIBuilder) ScrollDown(n int) *ANSIBuilder { return b.csi("%sT", countArg(n)) }

func (b *ANSIBuilder) BracketedPaste(on bool) *ANSIBuilder { return b.privateMode(2004, on) }
func (b *ANSIBuilder) AppCursorKeys(on bool) *ANSIBuilder { return b.privateMode(1, on) }
func (b *ANSIBuilder) ShowCursor(on bool) *ANSIBuilder { return b.privateMode(25, on) }

func (b *ANSIBuilder) privateMode(n int, on bool) *ANSIBuilder {
	if on {
		return b.csi("?%dh", n)
	}
	return b.csi("?%dl", n)
}

// OSCTitle sets the window title, BEL terminated.
func (b *ANSIBuilder) OSCTitle(title string) *ANSIBuilder {
	return b.Text("\x1b]0;" + title + "\x07")
}

// RequestCursorPosition appends DSR 6.
func (b *ANSIBuilder) RequestCursorPosition() *ANSIBuilder { return b.csi("6n") }

// Clear empties the builder.
func (b *ANSIBuilder) Clear() *ANSIBuilder {
	b.sb.Reset()
	return b
}

// String returns the built sequence.
func (b *ANSIBuilder) String() string { return b.sb.String() }

// Bytes returns the built sequence as bytes.
func (b *ANSIBuilder) Bytes() []byte { return []byte(b.sb.String()) }

// CursorPositionResponse is the reply a terminal sends for DSR 6, 1-indexed.
func CursorPositionResponse(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dR", row, col)
}

// TerminalSizeResponse is the reply to CSI 18 t.
func TerminalSizeResponse(rows, cols int) string {
	return fmt.Sprintf("\x1b[8;%d;%dt", rows, cols)
}
