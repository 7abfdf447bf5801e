package watch

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdelta/pkg/recompile"
)

// collector gathers flushed batches behind a lock.
type collector struct {
	mu      sync.Mutex
	batches [][]recompile.FileChange
}

func (c *collector) flush(changes []recompile.FileChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, changes)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *collector) last() []recompile.FileChange {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) == 0 {
		return nil
	}
	batch := slices.Clone(c.batches[len(c.batches)-1])
	slices.SortFunc(batch, func(a, b recompile.FileChange) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	return batch
}

func change(rel string, kind recompile.ChangeKind) recompile.FileChange {
	return recompile.FileChange{AbsolutePath: "/ws/" + rel, RelativePath: rel, Kind: kind}
}

func TestDebouncerCoalesces(t *testing.T) {
	c := &collector{}
	d := NewDebouncer(20*time.Millisecond, c.flush)
	defer d.Stop()

	d.Add(change("a.java", recompile.ChangeModified))
	d.Add(change("a.java", recompile.ChangeModified))
	d.Add(change("b.java", recompile.ChangeAdded))

	if got := d.PendingCount(); got != 2 {
		t.Errorf("PendingCount() = %d, want 2", got)
	}

	deadline := time.After(2 * time.Second)
	for c.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for flush")
		case <-time.After(5 * time.Millisecond):
		}
	}

	want := []recompile.FileChange{
		change("a.java", recompile.ChangeModified),
		change("b.java", recompile.ChangeAdded),
	}
	if got := c.last(); !slices.Equal(got, want) {
		t.Errorf("flushed batch = %v, want %v", got, want)
	}
}

func TestDebouncerMergeRules(t *testing.T) {
	tests := []struct {
		name   string
		events []recompile.ChangeKind
		want   recompile.ChangeKind
		gone   bool
	}{
		{"added then modified stays added", []recompile.ChangeKind{recompile.ChangeAdded, recompile.ChangeModified}, recompile.ChangeAdded, false},
		{"added then removed cancels", []recompile.ChangeKind{recompile.ChangeAdded, recompile.ChangeRemoved}, 0, true},
		{"modified then removed is removed", []recompile.ChangeKind{recompile.ChangeModified, recompile.ChangeRemoved}, recompile.ChangeRemoved, false},
		{"removed then added is added", []recompile.ChangeKind{recompile.ChangeRemoved, recompile.ChangeAdded}, recompile.ChangeAdded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &collector{}
			d := NewDebouncer(time.Hour, c.flush)

			for _, kind := range tt.events {
				d.Add(change("x.java", kind))
			}

			if tt.gone {
				if got := d.PendingCount(); got != 0 {
					t.Errorf("PendingCount() = %d, want 0", got)
				}
				d.Stop()
				return
			}

			d.FlushNow()
			got := c.last()
			if len(got) != 1 || got[0].Kind != tt.want {
				t.Errorf("flushed = %v, want single %v event", got, tt.want)
			}
			d.Stop()
		})
	}
}

func TestDebouncerForceFlushAtLimit(t *testing.T) {
	c := &collector{}
	d := NewDebouncer(time.Hour, c.flush)
	defer d.Stop()

	for i := 0; i < MaxPendingChanges; i++ {
		d.Add(change(fmt.Sprintf("f%04d.java", i), recompile.ChangeAdded))
	}

	if c.count() == 0 {
		t.Error("reaching the pending limit should force a flush")
	}
}

func TestDebouncerFlushNowEmpty(t *testing.T) {
	c := &collector{}
	d := NewDebouncer(time.Hour, c.flush)
	defer d.Stop()

	d.FlushNow()
	if c.count() != 0 {
		t.Error("FlushNow with nothing pending should not call the handler")
	}
}

func TestDebouncerStopFlushesAndRejects(t *testing.T) {
	c := &collector{}
	d := NewDebouncer(time.Hour, c.flush)

	d.Add(change("a.java", recompile.ChangeModified))
	d.Stop()

	if c.count() != 1 {
		t.Fatalf("Stop should flush pending changes, got %d batches", c.count())
	}

	d.Add(change("b.java", recompile.ChangeModified))
	if got := d.PendingCount(); got != 0 {
		t.Errorf("PendingCount() = %d after Stop, want 0", got)
	}
}
