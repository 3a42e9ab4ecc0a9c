package watcher

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrFileNotFound is returned when the file disappears while waiting.
var ErrFileNotFound = errors.New("file not found")

// ErrFileUnstable is returned when the file keeps changing past the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// StabilityChecker waits for a dropped file to stop growing. Scanners and
// browsers create the file first and fill it afterwards.
type StabilityChecker struct {
	threshold time.Duration // how long size and mtime must stay unchanged
	timeout   time.Duration
	interval  time.Duration
}

// NewStabilityCheckerWithOptions creates a StabilityChecker with custom timeout and interval.
func NewStabilityCheckerWithOptions(threshold, timeout, interval time.Duration) *StabilityChecker {
	return &StabilityChecker{
		threshold: threshold,
		timeout:   timeout,
		interval:  interval,
	}
}

type fileState struct {
	size    int64
	modTime time.Time
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileState{}, ErrFileNotFound
		}
		return fileState{}, err
	}
	return fileState{size: info.Size(), modTime: info.ModTime()}, nil
}

// Wait blocks until path has kept the same size and modification time for
// the threshold. A zero threshold only checks that the file exists.
func (s *StabilityChecker) Wait(ctx context.Context, path string) error {
	last, err := stat(path)
	if err != nil {
		return err
	}
	if s.threshold <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	changed := time.Now()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			cur, err := stat(path)
			if err != nil {
				return err
			}
			if cur != last {
				last = cur
				changed = time.Now()
			} else if time.Since(changed) >= s.threshold {
				return nil
			}
		}
	}
}

// Threshold returns the configured stability threshold.
func (s *StabilityChecker) Threshold() time.Duration {
	return s.threshold
}
