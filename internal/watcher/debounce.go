package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path. The callback runs once per
// path, delay after the last event for it.
type Debouncer struct {
	delay    time.Duration
	callback func(path string)

	mu      sync.Mutex
	pending map[string]*entry
	stopped bool
}

// entry identifies one scheduling of a path; a timer that fires after being
// replaced finds a different entry and does nothing.
type entry struct {
	timer *time.Timer
}

// NewDebouncer creates a Debouncer that calls callback on its own goroutine
// once a path has been quiet for delay.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]*entry),
	}
}

// Add schedules path, restarting its timer if it is already pending.
// It reports whether path was newly scheduled. After Stop, Add does nothing.
func (d *Debouncer) Add(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	_, existed := d.pending[path]
	d.schedule(path)
	return !existed
}

// schedule replaces any timer for path. d.mu must be held.
func (d *Debouncer) schedule(path string) {
	if old, ok := d.pending[path]; ok {
		old.timer.Stop()
	}
	e := &entry{}
	d.pending[path] = e
	e.timer = time.AfterFunc(d.delay, func() { d.fire(path, e) })
}

// Touch restarts the timer of a pending path and reports whether it was
// pending. Paths that are not pending are left alone.
func (d *Debouncer) Touch(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pending[path]; !ok || d.stopped {
		return false
	}
	d.schedule(path)
	return true
}

func (d *Debouncer) fire(path string, e *entry) {
	d.mu.Lock()
	if d.stopped || d.pending[path] != e {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()

	if d.callback != nil {
		d.callback(path)
	}
}

// Cancel drops a pending path.
func (d *Debouncer) Cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.pending[path]; ok {
		e.timer.Stop()
		delete(d.pending, path)
	}
}

// Stop cancels everything pending and refuses new paths. Callbacks already
// running are not waited for.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, path)
	}
}

// Pending returns the number of scheduled paths.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending reports whether path is scheduled.
func (d *Debouncer) IsPending(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[path]
	return ok
}
