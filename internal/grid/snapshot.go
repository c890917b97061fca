package grid

import (
	"iter"
	"strings"
)

// Snapshot is a point-in-time copy of a grid, safe to read without the
// lock that guards the live grid.
type Snapshot struct {
	Rows, Cols    int
	CursorRow     int
	CursorCol     int
	CursorVisible bool
	PendingWrap   bool
	Modes         Mode
	cells         []Cell
}

// Snapshot copies the visible state of g.
func (g *Grid) Snapshot() Snapshot {
	s := Snapshot{
		Rows:          g.rows,
		Cols:          g.cols,
		CursorRow:     g.row,
		CursorCol:     g.col,
		CursorVisible: g.HasMode(ModeCursorVisible),
		PendingWrap:   g.pendingWrap,
		Modes:         g.modes,
		cells:         make([]Cell, 0, g.rows*g.cols),
	}
	for _, line := range g.cells {
		s.cells = append(s.cells, line...)
	}
	return s
}

// At returns the cell at (row, col), or an empty cell when out of range.
func (s Snapshot) At(row, col int) Cell {
	if row < 0 || row >= s.Rows || col < 0 || col >= s.Cols {
		return Cell{}
	}
	return s.cells[row*s.Cols+col]
}

// Row returns the cells of one row. The slice aliases the snapshot.
func (s Snapshot) Row(row int) []Cell {
	if row < 0 || row >= s.Rows {
		return nil
	}
	return s.cells[row*s.Cols : (row+1)*s.Cols]
}

// Position is a 0-indexed grid coordinate.
type Position struct {
	Row, Col int
}

// Cells iterates over every cell in row-major order.
func (s Snapshot) Cells() iter.Seq2[Position, Cell] {
	return func(yield func(Position, Cell) bool) {
		for i, c := range s.cells {
			if !yield(Position{Row: i / s.Cols, Col: i % s.Cols}, c) {
				return
			}
		}
	}
}

// Line returns row as text with trailing blanks trimmed.
func (s Snapshot) Line(row int) string {
	var b strings.Builder
	for _, c := range s.Row(row) {
		b.WriteRune(c.Rune())
	}
	return strings.TrimRight(b.String(), " ")
}

// Text returns every row joined by newlines, trailing blank rows dropped.
func (s Snapshot) Text() string {
	lines := make([]string, s.Rows)
	for r := range s.Rows {
		lines[r] = s.Line(r)
	}
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
