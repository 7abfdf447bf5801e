// Package watch emits batched source file-change events from filesystem
// notifications, in the form the recompilation engine consumes.
package watch

import (
	"sync"
	"time"

	"taskdelta/pkg/recompile"
)

// MaxPendingChanges is the maximum number of changes that can be pending.
// If this limit is reached, a flush is triggered immediately to prevent
// unbounded memory growth from rapid file creation.
const MaxPendingChanges = 1000

// Debouncer coalesces rapid file events into batched change sets. Events
// within a time window are grouped to avoid re-planning a compilation for
// every save an IDE or formatter makes.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]recompile.FileChange // keyed by relative path
	timer   *time.Timer
	window  time.Duration
	onFlush func(changes []recompile.FileChange)
	stopped bool
}

// NewDebouncer creates a debouncer with the given window duration. The
// onFlush callback receives the coalesced changes after the window expires
// with no new events.
func NewDebouncer(window time.Duration, onFlush func(changes []recompile.FileChange)) *Debouncer {
	return &Debouncer{
		pending: make(map[string]recompile.FileChange),
		window:  window,
		onFlush: onFlush,
	}
}

// Add records a change event. Multiple events for the same path within the
// window are merged: a file created and then edited is still one addition,
// a file created and then deleted cancels out.
func (d *Debouncer) Add(change recompile.FileChange) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.merge(change)

	// Force an immediate flush at the pending limit.
	if len(d.pending) >= MaxPendingChanges {
		if d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
		d.flushLocked()
		return
	}

	// Reset or start the timer.
	// Note: timer.Stop() may return false if the timer already fired and
	// flush() is queued. That is safe because flush() exits early when
	// nothing is pending.
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// merge folds a new event into the pending set. Caller must hold d.mu.
func (d *Debouncer) merge(change recompile.FileChange) {
	prev, ok := d.pending[change.RelativePath]
	if !ok {
		d.pending[change.RelativePath] = change
		return
	}
	switch {
	case prev.Kind == recompile.ChangeAdded && change.Kind == recompile.ChangeModified:
		// Still new relative to the last build.
	case prev.Kind == recompile.ChangeAdded && change.Kind == recompile.ChangeRemoved:
		delete(d.pending, change.RelativePath)
	default:
		d.pending[change.RelativePath] = change
	}
}

// flush is called when the timer expires.
func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
}

// flushLocked performs the flush while holding the lock. Caller must hold
// d.mu.
func (d *Debouncer) flushLocked() {
	if d.stopped || len(d.pending) == 0 {
		return
	}

	changes := d.takeLocked()

	// Release the lock around the handler to prevent deadlocks.
	d.mu.Unlock()
	if d.onFlush != nil {
		d.onFlush(changes)
	}
	d.mu.Lock()
}

// takeLocked drains the pending set. Caller must hold d.mu.
func (d *Debouncer) takeLocked() []recompile.FileChange {
	changes := make([]recompile.FileChange, 0, len(d.pending))
	for _, c := range d.pending {
		changes = append(changes, c)
	}
	d.pending = make(map[string]recompile.FileChange)
	return changes
}

// FlushNow immediately flushes pending changes without waiting for the
// timer. Useful for graceful shutdown.
func (d *Debouncer) FlushNow() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	changes := d.takeLocked()
	d.mu.Unlock()

	if d.onFlush != nil {
		d.onFlush(changes)
	}
}

// Stop stops the debouncer. Any pending changes are flushed.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	changes := d.takeLocked()
	d.mu.Unlock()

	if len(changes) > 0 && d.onFlush != nil {
		d.onFlush(changes)
	}
}

// PendingCount returns the number of changes waiting to be flushed.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
