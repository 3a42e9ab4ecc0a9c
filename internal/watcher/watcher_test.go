package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"misterlister/internal/scanner"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fastConfig keeps tests quick: short debounce, no stability wait.
func fastConfig() *WatchConfig {
	return &WatchConfig{
		Debounce:        20 * time.Millisecond,
		StableThreshold: 0,
		StableTimeout:   time.Second,
		Filter:          scanner.NewFileFilter(nil),
	}
}

type handled struct {
	mu    sync.Mutex
	paths []string
	calls atomic.Int32
}

func (h *handled) handler(outcome Outcome, err error) FileHandler {
	return func(ctx context.Context, path string) (Outcome, error) {
		h.mu.Lock()
		h.paths = append(h.paths, path)
		h.mu.Unlock()
		h.calls.Add(1)
		return outcome, err
	}
}

func (h *handled) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

func startWatcher(t *testing.T, cfg *WatchConfig, handler FileHandler, dirs ...string) *Watcher {
	t.Helper()
	w := New(cfg, handler, zap.NewNop())
	require.NoError(t, w.Start(context.Background(), dirs))
	require.True(t, w.IsRunning())
	return w
}

func TestWatcher_NewFileIsHandled(t *testing.T) {
	dir := t.TempDir()
	var h handled
	w := startWatcher(t, fastConfig(), h.handler(OutcomeAdded, nil), dir)

	file := filepath.Join(dir, "SMITH JOHN 010223 MRI 030524.pdf")
	require.NoError(t, os.WriteFile(file, []byte("scan"), 0644))

	require.Eventually(t, func() bool { return h.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	summary := w.Stop()

	assert.False(t, w.IsRunning())
	assert.Equal(t, []string{file}, h.seen())
	assert.Equal(t, 1, summary.FilesAdded)
	assert.Equal(t, 1, summary.Total())
	assert.Greater(t, summary.Duration, time.Duration(0))
}

func TestWatcher_IgnoredFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	var h handled
	w := startWatcher(t, fastConfig(), h.handler(OutcomeAdded, nil), dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "download.part"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DOE JANE 123199.pdf"), []byte("x"), 0644))

	require.Eventually(t, func() bool { return h.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	summary := w.Stop()

	assert.Equal(t, []string{filepath.Join(dir, "DOE JANE 123199.pdf")}, h.seen())
	assert.Equal(t, 1, summary.FilesSkipped)
	assert.Equal(t, 1, summary.FilesAdded)
}

func TestWatcher_BurstOfWritesHandledOnce(t *testing.T) {
	dir := t.TempDir()
	var h handled
	cfg := fastConfig()
	cfg.Debounce = 80 * time.Millisecond
	w := startWatcher(t, cfg, h.handler(OutcomeAdded, nil), dir)

	file := filepath.Join(dir, "BIG 010101.pdf")
	f, err := os.Create(file)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.Write([]byte("chunk"))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool { return h.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	w.Stop()

	assert.Equal(t, int32(1), h.calls.Load())
}

func TestWatcher_ReviewAndFailureCounts(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	handler := func(ctx context.Context, path string) (Outcome, error) {
		switch calls.Add(1) {
		case 1:
			return OutcomeReview, nil
		default:
			return OutcomeSkipped, errors.New("store unavailable")
		}
	}
	w := startWatcher(t, fastConfig(), handler, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("x"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)

	summary := w.Stop()
	assert.Equal(t, 1, summary.FilesReviewed)
	assert.Equal(t, 1, summary.FilesFailed)
}

func TestWatcher_SubdirectoriesAreNotFiles(t *testing.T) {
	dir := t.TempDir()
	var h handled
	w := startWatcher(t, fastConfig(), h.handler(OutcomeAdded, nil), dir)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	time.Sleep(100 * time.Millisecond)
	w.Stop()

	assert.Equal(t, int32(0), h.calls.Load())
}

func TestWatcher_HandlerCallsAreSerialized(t *testing.T) {
	dir := t.TempDir()
	var active, maxActive, calls atomic.Int32
	handler := func(ctx context.Context, path string) (Outcome, error) {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		calls.Add(1)
		return OutcomeAdded, nil
	}
	w := startWatcher(t, fastConfig(), handler, dir)

	for _, n := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}
	require.Eventually(t, func() bool { return calls.Load() == 4 }, 2*time.Second, 10*time.Millisecond)
	w.Stop()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestWatcher_StopBeforeDebounceDropsPending(t *testing.T) {
	dir := t.TempDir()
	var h handled
	cfg := fastConfig()
	cfg.Debounce = time.Hour
	core, logs := observer.New(zap.InfoLevel)
	w := New(cfg, h.handler(OutcomeAdded, nil), zap.New(core))
	require.NoError(t, w.Start(context.Background(), []string{dir}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.pdf"), []byte("x"), 0644))
	require.Eventually(t, func() bool { return w.debouncer.Pending() == 1 }, time.Second, 10*time.Millisecond)

	summary := w.Stop()
	assert.Equal(t, int32(0), h.calls.Load())
	assert.Equal(t, 0, summary.Total())

	dropped := logs.FilterMessage("dropping files that had not settled").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, int64(1), dropped[0].ContextMap()["pending"])
}

func TestWatcher_SecondStartFails(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, fastConfig(), nil, dir)
	defer w.Stop()

	assert.ErrorContains(t, w.Start(context.Background(), []string{dir}), "already running")
	assert.True(t, w.IsRunning())
}

func TestWatcher_ContextCancelStopsEventLoop(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	w := New(fastConfig(), nil, nil)
	require.NoError(t, w.Start(ctx, []string{dir}))

	cancel()
	summary := w.Stop()
	assert.Equal(t, 0, summary.Total())
}

func TestWatcher_StartErrors(t *testing.T) {
	w := New(nil, nil, nil)
	assert.Error(t, w.Start(context.Background(), nil))

	err := w.Start(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	var se *scanner.ScanError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, scanner.DirectoryNotFound, se.Type)
	assert.False(t, w.IsRunning())

	// Stop on a watcher that never started is harmless
	assert.Equal(t, 0, w.Stop().Total())
}

func TestWatcher_DefaultConfig(t *testing.T) {
	cfg := DefaultWatchConfig()
	assert.Equal(t, 2*time.Second, cfg.Debounce)
	assert.Equal(t, time.Second, cfg.StableThreshold)
	assert.True(t, cfg.Filter.ShouldIgnore("x.tmp"))
}
