// Package grid implements the character grid a terminal paints into: a
// rows×cols matrix of cells plus cursor, pen, scroll region and mode state.
//
// Every mutation is infallible. Out-of-range arguments are clamped, never
// reported, so a misbehaving program can not push the cursor outside the
// grid. Grid is not safe for concurrent use; callers serialize access.
package grid

// TabWidth is the distance between default tab stops.
const TabWidth = 8

type savedCursor struct {
	row, col    int
	pen         Pen
	pendingWrap bool
}

// Grid is the screen model.
type Grid struct {
	rows, cols  int
	cells       [][]Cell
	row, col    int
	pendingWrap bool
	pen         Pen
	top, bottom int
	saved       savedCursor
	modes       Mode
	scrollback  *Scrollback
}

// New returns a blank grid. Dimensions below 1 are raised to 1.
func New(rows, cols int) *Grid {
	rows, cols = max(rows, 1), max(cols, 1)
	g := &Grid{
		rows:   rows,
		cols:   cols,
		cells:  makeCells(rows, cols),
		bottom: rows - 1,
		modes:  defaultModes,
	}
	return g
}

func makeCells(rows, cols int) [][]Cell {
	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
	}
	return cells
}

// AttachScrollback makes rows scrolled off the top of the grid land in sb.
// A nil sb discards them.
func (g *Grid) AttachScrollback(sb *Scrollback) {
	g.scrollback = sb
}

// Size returns the grid dimensions.
func (g *Grid) Size() (rows, cols int) {
	return g.rows, g.cols
}

// Cursor returns the 0-indexed cursor position.
func (g *Grid) Cursor() (row, col int) {
	return g.row, g.col
}

// PendingWrap reports whether the next printed character wraps first.
func (g *Grid) PendingWrap() bool {
	return g.pendingWrap
}

// Pen returns the current SGR state.
func (g *Grid) Pen() Pen {
	return g.pen
}

// SetPen replaces the current SGR state.
func (g *Grid) SetPen(p Pen) {
	g.pen = p
}

// Cell returns the cell at (row, col), or an empty cell when out of range.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return Cell{}
	}
	return g.cells[row][col]
}

// ScrollRegion returns the inclusive top and bottom rows of the scroll region.
func (g *Grid) ScrollRegion() (top, bottom int) {
	return g.top, g.bottom
}

// Modes returns the active mode set.
func (g *Grid) Modes() Mode {
	return g.modes
}

// HasMode reports whether every mode in m is set.
func (g *Grid) HasMode(m Mode) bool {
	return g.modes&m == m
}

// SetMode turns the modes in m on or off.
func (g *Grid) SetMode(m Mode, on bool) {
	if on {
		g.modes |= m
	} else {
		g.modes &^= m
	}
	if m&ModeAutoWrap != 0 && !on {
		g.pendingWrap = false
	}
}

// Print writes r at the cursor with the current pen and advances. Writing
// the last column arms the pending wrap instead of moving; the wrap is
// performed by the next Print. Control characters are dropped.
func (g *Grid) Print(r rune) {
	if r < 0x20 || (r >= 0x7f && r < 0xa0) {
		return
	}
	if g.pendingWrap {
		g.pendingWrap = false
		g.col = 0
		g.Index()
	}
	g.cells[g.row][g.col] = g.pen.cell(r)
	if g.col == g.cols-1 {
		g.pendingWrap = g.HasMode(ModeAutoWrap)
		return
	}
	g.col++
}

// Newline moves to column 0 of the next row, scrolling the region when the
// cursor sits on its bottom row.
func (g *Grid) Newline() {
	g.CarriageReturn()
	g.Index()
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() {
	g.col = 0
	g.pendingWrap = false
}

// Index moves the cursor down one row, scrolling the region up when the
// cursor is on the region's bottom row. Below the region it stops at the
// last grid row.
func (g *Grid) Index() {
	g.pendingWrap = false
	switch {
	case g.row == g.bottom:
		g.ScrollUp(1)
	case g.row < g.rows-1:
		g.row++
	}
}

// ReverseIndex moves the cursor up one row, scrolling the region down when
// the cursor is on the region's top row.
func (g *Grid) ReverseIndex() {
	g.pendingWrap = false
	switch {
	case g.row == g.top:
		g.ScrollDown(1)
	case g.row > 0:
		g.row--
	}
}

// Backspace moves the cursor left one column, saturating at 0.
func (g *Grid) Backspace() {
	g.pendingWrap = false
	if g.col > 0 {
		g.col--
	}
}

// Tab advances to the next multiple of TabWidth, clamped to the last column.
func (g *Grid) Tab() {
	g.pendingWrap = false
	g.col = min((g.col/TabWidth+1)*TabWidth, g.cols-1)
}

// Erase clears part of the screen without moving the cursor.
// Mode 0 clears from the cursor to the end, 1 from the start to the cursor,
// 2 the whole screen. Mode 3 clears the whole screen and drops the attached
// scrollback. Other modes are ignored.
func (g *Grid) Erase(mode int) {
	switch mode {
	case 0:
		g.clearRange(g.row, g.col, g.cols)
		for r := g.row + 1; r < g.rows; r++ {
			g.clearRange(r, 0, g.cols)
		}
	case 1:
		for r := 0; r < g.row; r++ {
			g.clearRange(r, 0, g.cols)
		}
		g.clearRange(g.row, 0, g.col+1)
	case 2, 3:
		for r := range g.rows {
			g.clearRange(r, 0, g.cols)
		}
		if mode == 3 && g.scrollback != nil {
			g.scrollback.Clear()
		}
	}
}

// EraseLine clears part of the cursor row: 0 cursor to end, 1 start to
// cursor, 2 whole line.
func (g *Grid) EraseLine(mode int) {
	switch mode {
	case 0:
		g.clearRange(g.row, g.col, g.cols)
	case 1:
		g.clearRange(g.row, 0, g.col+1)
	case 2:
		g.clearRange(g.row, 0, g.cols)
	}
}

// EraseChars clears n cells starting at the cursor without shifting.
func (g *Grid) EraseChars(n int) {
	n = max(n, 1)
	g.pendingWrap = false
	g.clearRange(g.row, g.col, g.col+n)
}

func (g *Grid) clearRange(row, from, to int) {
	from, to = max(from, 0), min(to, g.cols)
	blank := g.pen.blank()
	line := g.cells[row]
	for c := from; c < to; c++ {
		line[c] = blank
	}
}

// MoveCursor moves the cursor relative to its position. Vertical moves that
// start inside the scroll region stop at its margins; everything else stops
// at the grid edges.
func (g *Grid) MoveCursor(rowDelta, colDelta int) {
	g.pendingWrap = false
	top, bottom := 0, g.rows-1
	if g.row >= g.top && g.row <= g.bottom {
		top, bottom = g.top, g.bottom
	}
	g.row = clamp(g.row+rowDelta, top, bottom)
	g.col = clamp(g.col+colDelta, 0, g.cols-1)
}

// SetCursor moves the cursor to an absolute 0-indexed position, clamped.
func (g *Grid) SetCursor(row, col int) {
	g.pendingWrap = false
	g.row = clamp(row, 0, g.rows-1)
	g.col = clamp(col, 0, g.cols-1)
}

// SetScrollRegion sets the inclusive 0-indexed scroll region and homes the
// cursor. A region smaller than two rows resets it to the full grid.
func (g *Grid) SetScrollRegion(top, bottom int) {
	top = clamp(top, 0, g.rows-1)
	bottom = clamp(bottom, 0, g.rows-1)
	if top >= bottom {
		top, bottom = 0, g.rows-1
	}
	g.top, g.bottom = top, bottom
	g.SetCursor(0, 0)
}

// ScrollUp shifts the scroll region up n rows, blanking the bottom rows.
// Rows leaving the top of the whole grid go to the scrollback, if any.
func (g *Grid) ScrollUp(n int) {
	height := g.bottom - g.top + 1
	n = clamp(n, 1, height)
	if g.top == 0 && g.scrollback != nil {
		for r := range n {
			g.scrollback.Push(g.cells[r])
		}
	}
	g.shiftUp(g.top, g.bottom, n)
}

// ScrollDown shifts the scroll region down n rows, blanking the top rows.
func (g *Grid) ScrollDown(n int) {
	height := g.bottom - g.top + 1
	n = clamp(n, 1, height)
	g.shiftDown(g.top, g.bottom, n)
}

// shiftUp moves rows [top+n, bottom] to [top, bottom-n] and clears the rest.
// Row slices are rotated rather than copied.
func (g *Grid) shiftUp(top, bottom, n int) {
	rotated := append([][]Cell(nil), g.cells[top:top+n]...)
	copy(g.cells[top:], g.cells[top+n:bottom+1])
	copy(g.cells[bottom-n+1:], rotated)
	for r := bottom - n + 1; r <= bottom; r++ {
		g.clearRange(r, 0, g.cols)
	}
}

func (g *Grid) shiftDown(top, bottom, n int) {
	rotated := append([][]Cell(nil), g.cells[bottom-n+1:bottom+1]...)
	copy(g.cells[top+n:bottom+1], g.cells[top:bottom-n+1])
	copy(g.cells[top:], rotated)
	for r := top; r < top+n; r++ {
		g.clearRange(r, 0, g.cols)
	}
}

// InsertLines inserts n blank rows at the cursor, pushing rows below it
// toward the region bottom. No-op outside the scroll region.
func (g *Grid) InsertLines(n int) {
	if g.row < g.top || g.row > g.bottom {
		return
	}
	g.shiftDown(g.row, g.bottom, clamp(n, 1, g.bottom-g.row+1))
	g.CarriageReturn()
}

// DeleteLines removes n rows at the cursor, pulling rows below it up.
// No-op outside the scroll region.
func (g *Grid) DeleteLines(n int) {
	if g.row < g.top || g.row > g.bottom {
		return
	}
	g.shiftUp(g.row, g.bottom, clamp(n, 1, g.bottom-g.row+1))
	g.CarriageReturn()
}

// InsertChars inserts n blank cells at the cursor, shifting the rest of the
// row right. Cells pushed past the last column are lost.
func (g *Grid) InsertChars(n int) {
	g.pendingWrap = false
	n = clamp(n, 1, g.cols-g.col)
	line := g.cells[g.row]
	copy(line[g.col+n:], line[g.col:g.cols-n])
	g.clearRange(g.row, g.col, g.col+n)
}

// DeleteChars removes n cells at the cursor, shifting the rest of the row
// left and blanking the vacated cells at the end.
func (g *Grid) DeleteChars(n int) {
	g.pendingWrap = false
	n = clamp(n, 1, g.cols-g.col)
	line := g.cells[g.row]
	copy(line[g.col:], line[g.col+n:])
	g.clearRange(g.row, g.cols-n, g.cols)
}

// SaveCursor stores the cursor position and pen.
func (g *Grid) SaveCursor() {
	g.saved = savedCursor{row: g.row, col: g.col, pen: g.pen, pendingWrap: g.pendingWrap}
}

// RestoreCursor restores what SaveCursor stored, clamped to the current size.
func (g *Grid) RestoreCursor() {
	s := g.saved
	g.SetCursor(s.row, s.col)
	g.pen = s.pen
	g.pendingWrap = s.pendingWrap && g.col == g.cols-1
}

// Reset returns the grid to its initial state, keeping the dimensions and
// the attached scrollback.
func (g *Grid) Reset() {
	g.pen = Pen{}
	for r := range g.rows {
		g.clearRange(r, 0, g.cols)
	}
	g.top, g.bottom = 0, g.rows-1
	g.row, g.col, g.pendingWrap = 0, 0, false
	g.saved = savedCursor{}
	g.modes = defaultModes
}

// Resize reallocates the grid, keeping the overlapping cells. Lines are not
// reflowed. The scroll region resets to the full grid and the cursor is
// clamped.
func (g *Grid) Resize(rows, cols int) {
	rows, cols = max(rows, 1), max(cols, 1)
	if rows == g.rows && cols == g.cols {
		return
	}
	cells := makeCells(rows, cols)
	for r := range min(rows, g.rows) {
		copy(cells[r], g.cells[r])
	}
	g.cells = cells
	g.rows, g.cols = rows, cols
	g.top, g.bottom = 0, rows-1
	g.pendingWrap = false
	g.row = clamp(g.row, 0, rows-1)
	g.col = clamp(g.col, 0, cols-1)
	g.saved.row = clamp(g.saved.row, 0, rows-1)
	g.saved.col = clamp(g.saved.col, 0, cols-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
