// Package table holds the working table that filenames are dropped into:
// rows of cells under fixed headers, with sorting, editing, hidden columns,
// copying and export.
package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"misterlister/internal/classifier"
	"misterlister/internal/dateparser"
)

// DefaultHeaders are the column titles of a fresh table.
var DefaultHeaders = []string{"lastname", "firstname", "dob", "item", "date"}

// TableErrorType represents the type of table error.
type TableErrorType string

const (
	OutOfRange    TableErrorType = "OUT_OF_RANGE"
	UnknownFormat TableErrorType = "UNKNOWN_FORMAT"
	BadRange      TableErrorType = "BAD_RANGE"
)

// TableError represents an invalid table operation.
type TableError struct {
	Type    TableErrorType
	Message string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Row is one filename laid out as cells.
type Row struct {
	ID      string
	Source  string // path the row was created from
	Cells   []string
	Review  bool
	AddedAt time.Time
}

// Table is the working table. It is not safe for concurrent use.
type Table struct {
	Headers []string
	Rows    []Row
	hidden  map[int]bool
}

// New creates an empty table. Nil headers select DefaultHeaders.
func New(headers []string) *Table {
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	h := make([]string, len(headers))
	copy(h, headers)
	return &Table{
		Headers: h,
		hidden:  make(map[int]bool),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Columns returns the number of columns.
func (t *Table) Columns() int {
	return len(t.Headers)
}

// NewRow builds a row from a classified record. Cells are padded or cut to
// the table's column count.
func (t *Table) NewRow(rec *classifier.Record, source string) Row {
	cells := make([]string, t.Columns())
	copy(cells, rec.Cells)
	return Row{
		ID:      uuid.NewString(),
		Source:  source,
		Cells:   cells,
		Review:  rec.NeedsReview(),
		AddedAt: time.Now().UTC(),
	}
}

// Append adds rows at the bottom of the table.
func (t *Table) Append(rows ...Row) {
	for _, r := range rows {
		if len(r.Cells) != t.Columns() {
			cells := make([]string, t.Columns())
			copy(cells, r.Cells)
			r.Cells = cells
		}
		t.Rows = append(t.Rows, r)
	}
}

// Edit replaces the text of one cell.
func (t *Table) Edit(row, col int, value string) error {
	if err := t.checkCell(row, col); err != nil {
		return err
	}
	t.Rows[row].Cells[col] = value
	return nil
}

// Delete removes the given rows (0-based). Duplicates and out-of-range
// indices are ignored. It returns the number of rows removed.
func (t *Table) Delete(rows ...int) int {
	uniq := make(map[int]bool)
	for _, r := range rows {
		if r >= 0 && r < t.Len() {
			uniq[r] = true
		}
	}
	idx := make([]int, 0, len(uniq))
	for r := range uniq {
		idx = append(idx, r)
	}
	// highest first so earlier indices stay valid
	slices.Sort(idx)
	slices.Reverse(idx)
	for _, r := range idx {
		t.Rows = slices.Delete(t.Rows, r, r+1)
	}
	return len(idx)
}

// Clear removes every row. Headers and hidden columns are kept.
func (t *Table) Clear() {
	t.Rows = nil
}

// Hide hides one column from display, copy and export.
func (t *Table) Hide(col int) error {
	if col < 0 || col >= t.Columns() {
		return &TableError{Type: OutOfRange, Message: fmt.Sprintf("column %d does not exist", col+1)}
	}
	t.hidden[col] = true
	return nil
}

// Show makes one hidden column visible again.
func (t *Table) Show(col int) {
	delete(t.hidden, col)
}

// ShowAll makes every column visible.
func (t *Table) ShowAll() {
	t.hidden = make(map[int]bool)
}

// IsHidden reports whether col is hidden.
func (t *Table) IsHidden(col int) bool {
	return t.hidden[col]
}

// HiddenColumns lists hidden columns in ascending order.
func (t *Table) HiddenColumns() []int {
	out := make([]int, 0, len(t.hidden))
	for c := range t.hidden {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// VisibleColumns lists the columns that are not hidden, in order.
func (t *Table) VisibleColumns() []int {
	out := make([]int, 0, t.Columns())
	for c := 0; c < t.Columns(); c++ {
		if !t.IsHidden(c) {
			out = append(out, c)
		}
	}
	return out
}

// VisibleHeaders returns the headers of the visible columns.
func (t *Table) VisibleHeaders() []string {
	var out []string
	for _, c := range t.VisibleColumns() {
		out = append(out, t.Headers[c])
	}
	return out
}

// VisibleCells returns the cells of row restricted to visible columns.
func (t *Table) VisibleCells(row int) []string {
	var out []string
	for _, c := range t.VisibleColumns() {
		out = append(out, t.Rows[row].Cells[c])
	}
	return out
}

// SortBy orders rows by one column. The sort is stable. Dates in MM-DD-YYYY
// form compare chronologically and whole numbers numerically; everything else
// compares as case-insensitive text. Empty cells sort first.
func (t *Table) SortBy(col int, descending bool) error {
	if col < 0 || col >= t.Columns() {
		return &TableError{Type: OutOfRange, Message: fmt.Sprintf("column %d does not exist", col+1)}
	}
	slices.SortStableFunc(t.Rows, func(a, b Row) int {
		c := compareCells(a.Cells[col], b.Cells[col])
		if descending {
			return -c
		}
		return c
	})
	return nil
}

type cellKind int

const (
	kindEmpty cellKind = iota
	kindDate
	kindNumber
	kindText
)

type sortKey struct {
	kind cellKind
	date dateparser.ShortDate
	num  int64
	text string
}

func keyOf(s string) sortKey {
	s = strings.TrimSpace(s)
	if s == "" {
		return sortKey{kind: kindEmpty}
	}
	if d, err := dateparser.ParseCanonical(s); err == nil {
		return sortKey{kind: kindDate, date: *d}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return sortKey{kind: kindNumber, num: n}
	}
	return sortKey{kind: kindText, text: strings.ToLower(s)}
}

func compareCells(a, b string) int {
	ka, kb := keyOf(a), keyOf(b)
	if ka.kind != kb.kind {
		return int(ka.kind) - int(kb.kind)
	}
	switch ka.kind {
	case kindDate:
		switch {
		case ka.date.Before(kb.date):
			return -1
		case kb.date.Before(ka.date):
			return 1
		}
		return 0
	case kindNumber:
		switch {
		case ka.num < kb.num:
			return -1
		case ka.num > kb.num:
			return 1
		}
		return 0
	case kindText:
		if c := strings.Compare(ka.text, kb.text); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	}
	return 0
}

func (t *Table) checkCell(row, col int) error {
	if row < 0 || row >= t.Len() {
		return &TableError{Type: OutOfRange, Message: fmt.Sprintf("row %d does not exist", row+1)}
	}
	if col < 0 || col >= t.Columns() {
		return &TableError{Type: OutOfRange, Message: fmt.Sprintf("column %d does not exist", col+1)}
	}
	return nil
}
