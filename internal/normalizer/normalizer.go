// Package normalizer fits filename segments into the fixed columns of the
// working table.
package normalizer

import (
	"strings"

	"misterlister/internal/dateparser"
)

// Layout describes how segments map onto table columns.
type Layout struct {
	Columns     int   // number of columns a row holds
	DateColumns []int // 0-based columns passed through the short-date rewrite
}

// DefaultLayout is five columns with short dates in the third and fifth.
func DefaultLayout() Layout {
	return Layout{
		Columns:     5,
		DateColumns: []int{2, 4},
	}
}

// IsDateColumn reports whether col holds a short date.
func (l Layout) IsDateColumn(col int) bool {
	for _, c := range l.DateColumns {
		if c == col {
			return true
		}
	}
	return false
}

// Fit truncates segments to the first l.Columns, pads short input with empty
// cells and trims surrounding whitespace from each cell. The input slice is
// not modified.
func Fit(segments []string, l Layout) []string {
	cells := make([]string, max(l.Columns, 0))
	for i := 0; i < len(cells) && i < len(segments); i++ {
		cells[i] = strings.TrimSpace(segments[i])
	}
	return cells
}

// Cells is Fit followed by the short-date rewrite of every date column.
// Cells that are not valid short dates are left as they are.
func Cells(segments []string, l Layout, referenceYear int) []string {
	cells := Fit(segments, l)
	for _, col := range l.DateColumns {
		if col >= 0 && col < len(cells) {
			cells[col] = dateparser.NormalizeShortDate(cells[col], referenceYear)
		}
	}
	return cells
}
