package app

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/termgrid/internal/grid"
	"github.com/Gaurav-Gosain/termgrid/internal/theme"
)

// RenderSnapshot paints a snapshot as styled text, one line per row and
// no trailing newline.
func RenderSnapshot(snap grid.Snapshot, pal theme.Palette) string {
	rows := make([][]grid.Cell, snap.Rows)
	for r := range rows {
		rows[r] = snap.Row(r)
	}
	return renderRows(rows, snap.Cols, pal)
}

// RenderLine paints a single row of cells, such as a scrollback line.
func RenderLine(cells []grid.Cell, pal theme.Palette) string {
	return renderRows([][]grid.Cell{cells}, len(cells), pal)
}

// renderRows paints rows of cells as styled text, one line per row.
// Neighbouring cells with the same colors and attributes share one SGR
// sequence.
func renderRows(rows [][]grid.Cell, cols int, pal theme.Palette) string {
	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		renderRow(&sb, row, cols, pal)
	}
	return sb.String()
}

func renderRow(sb *strings.Builder, row []grid.Cell, cols int, pal theme.Palette) {
	var run strings.Builder
	var pen grid.Pen
	flush := func() {
		if run.Len() == 0 {
			return
		}
		sb.WriteString(cellStyle(pen, pal).Styled(run.String()))
		run.Reset()
	}

	for col := range cols {
		c := grid.Cell{}
		if col < len(row) {
			c = row[col]
		}
		p := grid.Pen{Fg: c.Fg, Bg: c.Bg, Attrs: c.Attrs}
		if p != pen {
			flush()
			pen = p
		}
		run.WriteRune(c.Rune())
	}
	flush()
}

// cellStyle builds the SGR style for a pen. Inverse swaps the resolved
// colors, using black on white where a side has no color.
func cellStyle(p grid.Pen, pal theme.Palette) ansi.Style {
	var st ansi.Style
	fg, bg := pal.Fg(p.Fg), pal.Bg(p.Bg)
	if p.Attrs.Has(grid.AttrInverse) {
		fg, bg = orDefault(bg, color.Black), orDefault(fg, color.White)
	}
	if fg != nil {
		st = st.ForegroundColor(fg)
	}
	if bg != nil {
		st = st.BackgroundColor(bg)
	}
	if p.Attrs.Has(grid.AttrBold) {
		st = st.Bold()
	}
	if p.Attrs.Has(grid.AttrUnderline) {
		st = st.Underline(true)
	}
	return st
}

func orDefault(cs ...color.Color) color.Color {
	for _, c := range cs {
		if c != nil {
			return c
		}
	}
	return nil
}
