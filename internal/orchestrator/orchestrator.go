// Package orchestrator coordinates adding dropped files to the table: expand
// paths, classify names, back up sources, append rows, persist and journal.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"misterlister/internal/classifier"
	"misterlister/internal/organizer"
	"misterlister/internal/scanner"
	"misterlister/internal/store"
	"misterlister/internal/table"
	"misterlister/internal/watcher"
)

// Store persists the table and journals changes. *store.Store implements it.
type Store interface {
	Save(ctx context.Context, t *table.Table) error
	Record(ctx context.Context, action store.Action, detail string) (*store.Event, error)
}

// IngestOptions control one Ingest or DryRun.
type IngestOptions struct {
	Classify  classifier.Options
	Scan      scanner.ScanOptions
	BackupDir string // empty disables backups
	Workers   int    // classification goroutines, <= 0 means 1

	// Progress is called after each file is handled in input order.
	Progress func(done, total int)
}

// FileResult is the outcome of one file.
type FileResult struct {
	Entry  scanner.FileEntry
	Record *classifier.Record
	RowID  string // empty when the file was not added
	Backup *organizer.BackupResult
	Err    error
}

// Orchestrator owns the working table while files are added to it.
type Orchestrator struct {
	mu     sync.Mutex
	table  *table.Table
	store  Store
	logger *zap.Logger
}

// New creates an Orchestrator for t. A nil store keeps changes in memory and
// a nil logger discards log output.
func New(t *table.Table, st Store, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{table: t, store: st, logger: logger}
}

// Table returns the working table.
func (o *Orchestrator) Table() *table.Table {
	return o.table
}

// Ingest adds every file under paths to the table in the order given. Files
// that cannot be read or backed up are reported in the summary and skipped.
// The returned error is non-nil only when ctx ends or the table cannot be
// saved.
func (o *Orchestrator) Ingest(ctx context.Context, paths []string, opts IngestOptions) (*Summary, error) {
	start := time.Now()

	entries, scanErr := scanner.Expand(paths, opts.Scan)
	if scanErr != nil {
		o.logger.Warn("some paths could not be read", zap.Error(scanErr))
	}

	results, err := o.classifyAll(ctx, entries, opts)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rows := make([]table.Row, 0, len(results))
	for i := range results {
		res := &results[i]
		if opts.BackupDir != "" {
			br, err := organizer.Backup(res.Entry, opts.BackupDir)
			if err != nil {
				res.Err = err
				o.logger.Warn("backup failed", zap.String("path", res.Entry.FullPath), zap.Error(err))
				o.progress(opts, i+1, len(results))
				continue
			}
			res.Backup = br
			o.logger.Debug("backed up", zap.String("path", br.SourcePath), zap.String("backup", br.DestinationPath))
		}

		row := o.table.NewRow(res.Record, res.Entry.FullPath)
		res.RowID = row.ID
		rows = append(rows, row)
		o.logger.Debug("classified",
			zap.String("file", res.Entry.Name),
			zap.String("status", res.Record.Status),
			zap.String("reason", string(res.Record.Reason)),
			zap.Int("segments", res.Record.Segments))
		o.progress(opts, i+1, len(results))
	}

	summary := GenerateSummary(results, scanErr, time.Since(start))
	if len(rows) == 0 {
		return summary, nil
	}

	o.table.Append(rows...)
	if err := o.persist(ctx, store.ActionAdd, summary.String()); err != nil {
		return summary, err
	}
	return summary, nil
}

// DryRun classifies every file under paths without touching the table, the
// store or the backup directory.
func (o *Orchestrator) DryRun(ctx context.Context, paths []string, opts IngestOptions) (*Summary, error) {
	start := time.Now()
	entries, scanErr := scanner.Expand(paths, opts.Scan)
	results, err := o.classifyAll(ctx, entries, opts)
	if err != nil {
		return nil, err
	}
	for i := range results {
		o.progress(opts, i+1, len(results))
	}
	return GenerateSummary(results, scanErr, time.Since(start)), nil
}

func (o *Orchestrator) classifyAll(ctx context.Context, entries []scanner.FileEntry, opts IngestOptions) ([]FileResult, error) {
	results := make([]FileResult, len(entries))
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = FileResult{Entry: e, Record: classifier.Classify(e.Name, opts.Classify)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup's context is only cancelled on error; catch a parent cancel
	// that landed after the last goroutine started.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) progress(opts IngestOptions, done, total int) {
	if opts.Progress != nil {
		opts.Progress(done, total)
	}
}

// Apply runs fn against the table, then saves it and journals action with
// detail. fn's error aborts without saving.
func (o *Orchestrator) Apply(ctx context.Context, action store.Action, detail string, fn func(t *table.Table) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := fn(o.table); err != nil {
		return err
	}
	return o.persist(ctx, action, detail)
}

// persist is called with o.mu held.
func (o *Orchestrator) persist(ctx context.Context, action store.Action, detail string) error {
	if o.store == nil {
		return nil
	}
	if err := o.store.Save(ctx, o.table); err != nil {
		return fmt.Errorf("failed to save table: %w", err)
	}
	if _, err := o.store.Record(ctx, action, detail); err != nil {
		// the table is saved; journal failures only warn
		o.logger.Warn("failed to journal change", zap.String("action", string(action)), zap.Error(err))
	}
	return nil
}

// WatchHandler adapts Ingest to the watcher, one dropped file at a time.
func (o *Orchestrator) WatchHandler(opts IngestOptions) watcher.FileHandler {
	return func(ctx context.Context, path string) (watcher.Outcome, error) {
		summary, err := o.Ingest(ctx, []string{path}, opts)
		if err != nil {
			return watcher.OutcomeSkipped, err
		}
		switch {
		case summary.Total == 0 && summary.ScanErr != nil:
			return watcher.OutcomeSkipped, fmt.Errorf("%w: %v", watcher.ErrFileNotFound, summary.ScanErr)
		case summary.HasErrors():
			errs := summary.Errors()
			if summary.ScanErr != nil {
				errs = append(errs, summary.ScanErr)
			}
			return watcher.OutcomeSkipped, errors.Join(errs...)
		case summary.Review > 0:
			return watcher.OutcomeReview, nil
		case summary.Complete > 0:
			return watcher.OutcomeAdded, nil
		}
		return watcher.OutcomeSkipped, nil
	}
}
