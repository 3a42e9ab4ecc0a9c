package orchestrator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"misterlister/internal/classifier"
)

func result(status string, reason classifier.ReviewReason, err error) FileResult {
	return FileResult{
		Record: &classifier.Record{Status: status, Reason: reason},
		Err:    err,
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	s := GenerateSummary(nil, nil, time.Second)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.Added())
	assert.False(t, s.HasErrors())
	assert.Empty(t, s.Errors())
	assert.Equal(t, time.Second, s.Duration)
	assert.Equal(t, "Added 0 of 0 files: 0 complete, 0 for review, 0 failed", s.String())
}

func TestGenerateSummary_Mixed(t *testing.T) {
	boom := errors.New("boom")
	s := GenerateSummary([]FileResult{
		result(classifier.StatusComplete, "", nil),
		result(classifier.StatusReview, classifier.MissingSegments, nil),
		result(classifier.StatusReview, classifier.UnresolvedDate, nil),
		result(classifier.StatusReview, classifier.UnresolvedDate, nil),
		result(classifier.StatusComplete, "", boom),
	}, nil, 0)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Complete)
	assert.Equal(t, 3, s.Review)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 4, s.Added())
	assert.Equal(t, map[classifier.ReviewReason]int{
		classifier.MissingSegments: 1,
		classifier.UnresolvedDate:  2,
	}, s.ByReason)
	assert.True(t, s.HasErrors())
	assert.Equal(t, []error{boom}, s.Errors())
	assert.Equal(t, "Added 4 of 5 files: 1 complete, 3 for review, 1 failed", s.String())
}

func TestGenerateSummary_ScanErrorOnly(t *testing.T) {
	s := GenerateSummary(nil, errors.New("missing dir"), 0)
	assert.True(t, s.HasErrors())
	assert.Empty(t, s.Errors())
}
