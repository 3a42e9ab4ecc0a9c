package output

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"misterlister/internal/normalizer"
	"misterlister/internal/table"
)

// RenderOptions controls RenderTable.
type RenderOptions struct {
	RowNumbers bool // prefix a 1-based "#" column
	Source     bool // append the path each row came from
	// Layout marks the date columns; they are drawn in dateStyle.
	Layout normalizer.Layout
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	reviewStyle = cellStyle.Foreground(lipgloss.Color("3"))
	dateStyle   = cellStyle.Foreground(lipgloss.Color("6"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ReviewMarker follows the row number of rows needing review.
const ReviewMarker = "!"

// RenderTable draws the visible columns of t. Rows flagged for review are
// highlighted and, with row numbers on, marked with ReviewMarker.
func RenderTable(t *table.Table, opts RenderOptions) string {
	var headers []string
	if opts.RowNumbers {
		headers = append(headers, "#")
	}
	headers = append(headers, t.VisibleHeaders()...)
	if opts.Source {
		headers = append(headers, "source")
	}

	rows := make([][]string, 0, t.Len())
	for i, r := range t.Rows {
		var line []string
		if opts.RowNumbers {
			n := strconv.Itoa(i + 1)
			if r.Review {
				n += ReviewMarker
			}
			line = append(line, n)
		}
		line = append(line, t.VisibleCells(i)...)
		if opts.Source {
			line = append(line, r.Source)
		}
		rows = append(rows, line)
	}

	visible := t.VisibleColumns()
	lt := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return styleFor(t, opts, visible, row, col)
		})
	return lt.String()
}

// styleFor picks the style of one rendered cell. col counts rendered
// columns, so the row number column shifts table columns by one.
func styleFor(t *table.Table, opts RenderOptions, visible []int, row, col int) lipgloss.Style {
	if row == ltable.HeaderRow {
		return headerStyle
	}
	if row >= 0 && row < len(t.Rows) && t.Rows[row].Review {
		return reviewStyle
	}
	if opts.RowNumbers {
		col--
	}
	if col >= 0 && col < len(visible) && opts.Layout.IsDateColumn(visible[col]) {
		return dateStyle
	}
	return cellStyle
}
