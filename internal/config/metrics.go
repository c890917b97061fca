package config

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// FontMetrics maps between pixels and cells for renderers that draw the
// grid onto a pixel surface.
type FontMetrics struct {
	CellWidth  float64
	CellHeight float64
}

// Metrics returns the font metrics from the config.
func (f FontConfig) Metrics() FontMetrics {
	return FontMetrics{CellWidth: f.CellWidth, CellHeight: f.CellHeight}
}

// GridSize returns how many whole cells fit in a pixel area, at least 1x1.
func (m FontMetrics) GridSize(width, height float64) (rows, cols int) {
	if m.CellWidth <= 0 || m.CellHeight <= 0 {
		return 1, 1
	}
	rows = int(math.Floor(height / m.CellHeight))
	cols = int(math.Floor(width / m.CellWidth))
	return max(rows, 1), max(cols, 1)
}

// PixelSize returns the pixel area covered by a rows×cols grid.
func (m FontMetrics) PixelSize(rows, cols int) (width, height float64) {
	return float64(cols) * m.CellWidth, float64(rows) * m.CellHeight
}

// TextWidth measures s with the monospace heuristic: display columns times
// the cell width. East Asian wide runes count as two columns here even
// though the grid stores one rune per cell.
func (m FontMetrics) TextWidth(s string) float64 {
	return float64(runewidth.StringWidth(s)) * m.CellWidth
}
