// Package classifier turns a filename into a table record.
package classifier

import (
	"misterlister/internal/dateparser"
	"misterlister/internal/normalizer"
	"misterlister/internal/segmenter"
)

// ReviewReason represents why a record needs a second look.
type ReviewReason string

const (
	MissingSegments ReviewReason = "MISSING_SEGMENTS"
	UnresolvedDate  ReviewReason = "UNRESOLVED_DATE"
)

// Record status values.
const (
	StatusComplete = "COMPLETE"
	StatusReview   = "REVIEW"
)

// Options control how filenames are split and laid out.
type Options struct {
	SplitChars    []rune // nil selects segmenter.DefaultSplitChars
	Layout        normalizer.Layout
	ReferenceYear int
}

// DefaultOptions uses the default split characters and layout with the given
// reference year.
func DefaultOptions(referenceYear int) Options {
	return Options{
		Layout:        normalizer.DefaultLayout(),
		ReferenceYear: referenceYear,
	}
}

// DateCell reports how one date column of a record was resolved.
type DateCell struct {
	Column   int
	Raw      string // trimmed segment before rewriting
	Resolved bool
}

// Record is the outcome of classifying one filename. It is either COMPLETE
// (every column filled, every date column resolved) or REVIEW with a reason.
// Either way Cells holds the row exactly as it should be displayed.
type Record struct {
	Filename string
	Segments int
	Cells    []string
	Dates    []DateCell
	Status   string
	Reason   ReviewReason
}

// Classify segments filename and lays the segments out as table cells. The
// filename is used as given; callers decide whether to strip directories.
// Extensions are kept, so a trailing ".pdf" becomes its own segment.
func Classify(filename string, opts Options) *Record {
	segments := segmenter.Segment(filename, opts.SplitChars...)
	fitted := normalizer.Fit(segments, opts.Layout)
	cells := normalizer.Cells(segments, opts.Layout, opts.ReferenceYear)

	rec := &Record{
		Filename: filename,
		Segments: len(segments),
		Cells:    cells,
		Status:   StatusComplete,
	}

	for _, col := range opts.Layout.DateColumns {
		if col < 0 || col >= len(cells) {
			continue
		}
		_, err := dateparser.ParseCanonical(cells[col])
		rec.Dates = append(rec.Dates, DateCell{
			Column:   col,
			Raw:      fitted[col],
			Resolved: err == nil && cells[col] != fitted[col],
		})
	}

	if len(segments) < opts.Layout.Columns {
		rec.Status = StatusReview
		rec.Reason = MissingSegments
		return rec
	}

	for _, d := range rec.Dates {
		if !d.Resolved {
			rec.Status = StatusReview
			rec.Reason = UnresolvedDate
			break
		}
	}

	return rec
}

// NeedsReview returns true if the record is not COMPLETE.
func (r *Record) NeedsReview() bool {
	return r.Status != StatusComplete
}

// ResolvedDates counts the date columns that were rewritten.
func (r *Record) ResolvedDates() int {
	n := 0
	for _, d := range r.Dates {
		if d.Resolved {
			n++
		}
	}
	return n
}
