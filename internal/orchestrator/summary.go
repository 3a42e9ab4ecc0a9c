package orchestrator

import (
	"fmt"
	"time"

	"misterlister/internal/classifier"
)

// Summary contains statistics from an Ingest or DryRun.
type Summary struct {
	Total    int // files found
	Complete int // rows whose every column and date resolved
	Review   int // rows flagged for review
	Failed   int // files that could not be added
	ByReason map[classifier.ReviewReason]int
	Results  []FileResult
	ScanErr  error // paths that could not be read
	Duration time.Duration
}

// GenerateSummary tallies results.
func GenerateSummary(results []FileResult, scanErr error, duration time.Duration) *Summary {
	s := &Summary{
		Total:    len(results),
		ByReason: make(map[classifier.ReviewReason]int),
		Results:  results,
		ScanErr:  scanErr,
		Duration: duration,
	}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Record.NeedsReview():
			s.Review++
			s.ByReason[r.Record.Reason]++
		default:
			s.Complete++
		}
	}
	return s
}

// Added returns the number of rows added.
func (s *Summary) Added() int {
	return s.Complete + s.Review
}

// HasErrors returns true if any file or path failed.
func (s *Summary) HasErrors() bool {
	return s.Failed > 0 || s.ScanErr != nil
}

// Errors returns the per-file errors in input order.
func (s *Summary) Errors() []error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

func (s *Summary) String() string {
	return fmt.Sprintf("Added %d of %d files: %d complete, %d for review, %d failed",
		s.Added(), s.Total, s.Complete, s.Review, s.Failed)
}
