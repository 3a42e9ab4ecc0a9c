package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a rectangular block of cells, inclusive on all sides, 0-based.
type Range struct {
	Top, Bottom int
	Left, Right int
}

// FullRange covers every row and column of t.
func (t *Table) FullRange() Range {
	return Range{Top: 0, Bottom: t.Len() - 1, Left: 0, Right: t.Columns() - 1}
}

func (t *Table) clamp(r Range) Range {
	r.Top = max(r.Top, 0)
	r.Left = max(r.Left, 0)
	r.Bottom = min(r.Bottom, t.Len()-1)
	r.Right = min(r.Right, t.Columns()-1)
	return r
}

// CopySelection renders the selected cells as tab-separated lines, one line
// per selected row, ranges in the order given. Hidden columns are skipped.
// When a single range covers the whole table the visible headers come first.
func (t *Table) CopySelection(ranges ...Range) string {
	if len(ranges) == 0 || t.Len() == 0 {
		return ""
	}

	var lines []string
	if len(ranges) == 1 && ranges[0] == t.FullRange() {
		lines = append(lines, strings.Join(t.VisibleHeaders(), "\t"))
	}

	for _, r := range ranges {
		r = t.clamp(r)
		for row := r.Top; row <= r.Bottom; row++ {
			var cells []string
			for col := r.Left; col <= r.Right; col++ {
				if t.hidden[col] {
					continue
				}
				cells = append(cells, t.Rows[row].Cells[col])
			}
			lines = append(lines, strings.Join(cells, "\t"))
		}
	}

	return strings.Join(lines, "\n")
}

// ParseRange reads a selection written as "all", "ROW" , "ROW-ROW" or
// "ROW:COL-ROW:COL". Numbers are 1-based; a bare row selects every column.
func (t *Table) ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return t.FullRange(), nil
	}

	from, to, isSpan := strings.Cut(s, "-")
	if !isSpan {
		to = from
	}

	r1, c1, err := parseCellRef(from, 1)
	if err != nil {
		return Range{}, err
	}
	r2, c2, err := parseCellRef(to, t.Columns())
	if err != nil {
		return Range{}, err
	}
	if !strings.Contains(s, ":") {
		c1, c2 = 1, t.Columns()
	}

	if r1 > r2 || c1 > c2 {
		return Range{}, &TableError{Type: BadRange, Message: fmt.Sprintf("range %q is reversed", s)}
	}
	return Range{Top: r1 - 1, Bottom: r2 - 1, Left: c1 - 1, Right: c2 - 1}, nil
}

func parseCellRef(s string, defaultCol int) (row, col int, err error) {
	rowPart, colPart, hasCol := strings.Cut(strings.TrimSpace(s), ":")
	row, err = strconv.Atoi(rowPart)
	if err != nil || row < 1 {
		return 0, 0, &TableError{Type: BadRange, Message: fmt.Sprintf("bad row %q", rowPart)}
	}
	col = defaultCol
	if hasCol {
		col, err = strconv.Atoi(colPart)
		if err != nil || col < 1 {
			return 0, 0, &TableError{Type: BadRange, Message: fmt.Sprintf("bad column %q", colPart)}
		}
	}
	return row, col, nil
}
