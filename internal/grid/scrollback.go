package grid

// DefaultScrollbackLines is used when a non-positive capacity is requested.
const DefaultScrollbackLines = 1000

// Scrollback is a bounded ring of rows that scrolled off the top of a grid.
// It is fed by the grid's scroll operation and never read by it. Like Grid
// it relies on the caller for synchronization.
type Scrollback struct {
	lines    [][]Cell
	maxLines int
	head     int
	tail     int
	full     bool
}

// NewScrollback returns an empty ring holding up to maxLines rows.
func NewScrollback(maxLines int) *Scrollback {
	if maxLines <= 0 {
		maxLines = DefaultScrollbackLines
	}
	return &Scrollback{
		lines:    make([][]Cell, maxLines),
		maxLines: maxLines,
	}
}

// Push appends a copy of line, overwriting the oldest row when full.
func (sb *Scrollback) Push(line []Cell) {
	sb.lines[sb.tail] = append([]Cell(nil), line...)
	sb.tail = (sb.tail + 1) % sb.maxLines
	if sb.full {
		sb.head = (sb.head + 1) % sb.maxLines
	}
	if sb.tail == sb.head {
		sb.full = true
	}
}

// Len returns the number of stored rows.
func (sb *Scrollback) Len() int {
	if sb.full {
		return sb.maxLines
	}
	if sb.tail >= sb.head {
		return sb.tail - sb.head
	}
	return sb.maxLines - sb.head + sb.tail
}

// Line returns row i, 0 being the oldest. It returns nil when out of range.
// The returned slice must not be modified.
func (sb *Scrollback) Line(i int) []Cell {
	if i < 0 || i >= sb.Len() {
		return nil
	}
	return sb.lines[(sb.head+i)%sb.maxLines]
}

// MaxLines returns the capacity.
func (sb *Scrollback) MaxLines() int {
	return sb.maxLines
}

// Clear drops every stored row.
func (sb *Scrollback) Clear() {
	clear(sb.lines)
	sb.head, sb.tail, sb.full = 0, 0, false
}

// SetMaxLines changes the capacity, keeping the newest rows that fit.
func (sb *Scrollback) SetMaxLines(maxLines int) {
	if maxLines <= 0 {
		maxLines = DefaultScrollbackLines
	}
	if maxLines == sb.maxLines {
		return
	}
	n := sb.Len()
	keep := min(n, maxLines)
	lines := make([][]Cell, maxLines)
	for i := range keep {
		lines[i] = sb.Line(n - keep + i)
	}
	sb.lines = lines
	sb.maxLines = maxLines
	sb.head = 0
	sb.tail = keep % maxLines
	sb.full = keep == maxLines
}
