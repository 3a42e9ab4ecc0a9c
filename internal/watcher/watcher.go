// Package watcher turns a drop folder into a stream of files for the table.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"misterlister/internal/scanner"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	Debounce        time.Duration       // quiet period before a file is handled (default: 2s)
	StableThreshold time.Duration       // size must hold this long (default: 1s, 0 disables)
	StableTimeout   time.Duration       // give up on files that keep growing (default: 30s)
	Filter          *scanner.FileFilter // nil uses the default ignore patterns
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		Debounce:        2 * time.Second,
		StableThreshold: time.Second,
		StableTimeout:   30 * time.Second,
		Filter:          scanner.NewFileFilter(nil),
	}
}

// Outcome is what a handler did with a file.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeAdded
	OutcomeReview // added, but the row needs a look
)

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	FilesAdded    int
	FilesReviewed int
	FilesSkipped  int
	FilesFailed   int
	Duration      time.Duration
}

// Total returns the number of files seen.
func (s *WatchSummary) Total() int {
	return s.FilesAdded + s.FilesReviewed + s.FilesSkipped + s.FilesFailed
}

// FileHandler processes one settled file. Calls are serialized.
type FileHandler func(ctx context.Context, path string) (Outcome, error)

// Watcher monitors directories for dropped files.
type Watcher struct {
	config    *WatchConfig
	handler   FileHandler
	logger    *zap.Logger
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	stability *StabilityChecker

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	handlerMu sync.Mutex
	startTime time.Time

	mu      sync.Mutex
	running bool
	summary WatchSummary
}

// New creates a new Watcher. A nil config uses DefaultWatchConfig and a nil
// logger discards log output.
func New(config *WatchConfig, handler FileHandler, logger *zap.Logger) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	if config.Filter == nil {
		config.Filter = scanner.NewFileFilter(nil)
	}
	if config.StableTimeout <= 0 {
		config.StableTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		config:  config,
		handler: handler,
		logger:  logger,
	}
}

// Start begins watching dirs. Watching ends when Stop is called or ctx is
// cancelled; Stop must be called in both cases to collect the summary.
func (w *Watcher) Start(ctx context.Context, dirs []string) error {
	if len(dirs) == 0 {
		return errors.New("no directories to watch")
	}
	if w.IsRunning() {
		return errors.New("watcher is already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			fsw.Close()
			return err
		}
		if err := fsw.Add(absDir); err != nil {
			fsw.Close()
			return &scanner.ScanError{Type: scanner.DirectoryNotFound, Path: absDir, Err: err}
		}
		w.logger.Debug("watching directory", zap.String("dir", absDir))
	}

	w.fsWatcher = fsw
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.stability = NewStabilityCheckerWithOptions(
		w.config.StableThreshold,
		w.config.StableTimeout,
		max(w.config.StableThreshold/4, 50*time.Millisecond),
	)
	w.debouncer = NewDebouncer(w.config.Debounce, w.settle)
	w.startTime = time.Now()
	w.logger.Debug("watcher started",
		zap.Duration("debounce", w.config.Debounce),
		zap.Duration("stability", w.stability.Threshold()))

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop shuts the watcher down, waits for in-flight files and returns a
// summary of the session.
func (w *Watcher) Stop() *WatchSummary {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		if n := w.debouncer.Pending(); n > 0 {
			w.logger.Info("dropping files that had not settled", zap.Int("pending", n))
		}
		w.debouncer.Stop()
		w.cancel()
		w.wg.Wait()
		w.fsWatcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.summary
	if !w.startTime.IsZero() {
		s.Duration = time.Since(w.startTime)
	}
	return &s
}

// IsRunning reports whether Start succeeded and Stop has not been called.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// processEvents handles file system events from fsnotify.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create):
		if w.config.Filter.ShouldIgnore(event.Name) {
			w.logger.Debug("ignored file", zap.String("path", event.Name))
			w.count(OutcomeSkipped, nil)
			return
		}
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return
		}
		w.debouncer.Add(event.Name)
	case event.Has(fsnotify.Write):
		// writes only extend files already waiting
		w.debouncer.Touch(event.Name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.debouncer.IsPending(event.Name) {
			w.logger.Debug("file gone before settling", zap.String("path", event.Name))
			w.debouncer.Cancel(event.Name)
		}
	}
}

// settle runs on the debouncer's timer goroutine once a path is quiet.
func (w *Watcher) settle(path string) {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	if err := w.stability.Wait(w.ctx, path); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Warn("file not ready", zap.String("path", path), zap.Error(err))
		w.count(OutcomeSkipped, err)
		return
	}

	if w.handler == nil {
		w.count(OutcomeAdded, nil)
		return
	}

	w.handlerMu.Lock()
	outcome, err := w.handler(w.ctx, path)
	w.handlerMu.Unlock()

	if err != nil {
		w.logger.Error("handling dropped file", zap.String("path", path), zap.Error(err))
	} else {
		w.logger.Info("handled dropped file", zap.String("path", path), zap.Int("outcome", int(outcome)))
	}
	w.count(outcome, err)
}

func (w *Watcher) count(outcome Outcome, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case err != nil && !errors.Is(err, ErrFileNotFound) && !errors.Is(err, ErrFileUnstable):
		w.summary.FilesFailed++
	case err != nil:
		w.summary.FilesSkipped++
	case outcome == OutcomeAdded:
		w.summary.FilesAdded++
	case outcome == OutcomeReview:
		w.summary.FilesReviewed++
	default:
		w.summary.FilesSkipped++
	}
}
