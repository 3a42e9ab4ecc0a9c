package orchestrator

import (
	"misterlister/internal/dateparser"
	"misterlister/internal/normalizer"
	"misterlister/internal/table"
)

// StatusResult describes the working table.
type StatusResult struct {
	Rows    int
	Review  int // rows flagged for review
	Hidden  []string
	Columns []DateColumnStatus // one per date column in layout order
}

// DateColumnStatus counts how the cells of one date column look.
type DateColumnStatus struct {
	Column     int // 0-based
	Header     string
	Resolved   int // canonical MM-DD-YYYY dates
	Unresolved int // non-empty cells that are not dates
	Empty      int
	Earliest   string // empty when no cell resolved
	Latest     string
}

// Status analyzes t without modifying it. Date columns outside the table are
// ignored.
func Status(t *table.Table, layout normalizer.Layout) *StatusResult {
	result := &StatusResult{Rows: t.Len()}

	for _, r := range t.Rows {
		if r.Review {
			result.Review++
		}
	}
	for _, col := range t.HiddenColumns() {
		result.Hidden = append(result.Hidden, t.Headers[col])
	}

	for _, col := range layout.DateColumns {
		if col < 0 || col >= t.Columns() {
			continue
		}
		cs := DateColumnStatus{Column: col, Header: t.Headers[col]}
		var earliest, latest *dateparser.ShortDate
		for _, r := range t.Rows {
			var cell string
			if col < len(r.Cells) {
				cell = r.Cells[col]
			}
			if cell == "" {
				cs.Empty++
				continue
			}
			d, err := dateparser.ParseCanonical(cell)
			if err != nil {
				cs.Unresolved++
				continue
			}
			cs.Resolved++
			if earliest == nil || d.Before(*earliest) {
				earliest = d
			}
			if latest == nil || latest.Before(*d) {
				latest = d
			}
		}
		if earliest != nil {
			cs.Earliest = earliest.String()
			cs.Latest = latest.String()
		}
		result.Columns = append(result.Columns, cs)
	}

	return result
}
