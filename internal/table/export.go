package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format is an export format.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTSV, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatTSV, nil
	default:
		return "", &TableError{Type: UnknownFormat, Message: fmt.Sprintf("unknown export format %q (want tsv, csv or json)", s)}
	}
}

// Export writes the visible columns of every row, headers first.
func (t *Table) Export(w io.Writer, format Format) error {
	switch format {
	case FormatTSV:
		return t.exportTSV(w)
	case FormatCSV:
		return t.exportCSV(w)
	case FormatJSON:
		return t.exportJSON(w)
	default:
		return &TableError{Type: UnknownFormat, Message: fmt.Sprintf("unknown export format %q", format)}
	}
}

func (t *Table) exportTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, strings.Join(t.VisibleHeaders(), "\t")); err != nil {
		return err
	}
	for i := range t.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(t.VisibleCells(i), "\t")); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) exportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.VisibleHeaders()); err != nil {
		return err
	}
	for i := range t.Rows {
		if err := cw.Write(t.VisibleCells(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportedRow keeps header order in JSON output.
type exportedRow struct {
	headers []string
	cells   []string
}

func (r exportedRow) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, h := range r.headers {
		if i > 0 {
			sb.WriteByte(',')
		}
		k, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.cells[i])
		if err != nil {
			return nil, err
		}
		sb.Write(k)
		sb.WriteByte(':')
		sb.Write(v)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

func (t *Table) exportJSON(w io.Writer) error {
	headers := t.VisibleHeaders()
	rows := make([]exportedRow, 0, t.Len())
	for i := range t.Rows {
		rows = append(rows, exportedRow{headers: headers, cells: t.VisibleCells(i)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
