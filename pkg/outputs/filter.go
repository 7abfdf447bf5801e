// Package outputs classifies filesystem entries observed around a task
// execution as task outputs or pre-existing/foreign content. Entries that
// count as outputs are:
//
//   - an entry that did not exist before the execution but exists after it
//   - an entry that existed before and was changed during the execution
//   - an entry that was not changed but was already recorded as an output
//     after the previous execution
//
// Filtering reconstructs snapshot trees containing exactly the accepted
// entries, with directory digests recomputed bottom-up so results remain
// valid merkle trees.
package outputs

import (
	"taskdelta/pkg/fingerprint"
	"taskdelta/pkg/snapshot"
)

// FilterBefore restricts the before-execution snapshots to entries that are
// not missing and were recorded as outputs after the previous execution.
// This establishes which prior entries are known outputs versus incidental
// content before the task runs.
func FilterBefore(afterLastExecution fingerprint.Collection, before ...snapshot.Snapshot) []snapshot.Snapshot {
	fv := newFilteringVisitor(func(s snapshot.Snapshot) bool {
		return s.Kind() != snapshot.KindMissing && afterLastExecution.ContainsPath(s.Path())
	})
	snapshot.Walk(fv, before...)
	return fv.newRoots
}

// FilterAfter classifies every entry present after execution and returns the
// output roots. afterLastExecution may be nil when no previous execution is
// recorded.
//
// When the before-execution snapshots are structurally empty, everything
// after execution is an output and the after roots are returned unchanged.
// Likewise, when no entry anywhere was filtered out, the original after
// roots are returned as-is so callers can rely on identity-level caching.
func FilterAfter(afterLastExecution fingerprint.Collection, before, after []snapshot.Snapshot) []snapshot.Snapshot {
	beforeIndex := snapshot.Index(before...)
	if len(beforeIndex) == 0 {
		return after
	}

	fv := newFilteringVisitor(func(s snapshot.Snapshot) bool {
		return isOutputEntry(afterLastExecution, beforeIndex, s)
	})
	snapshot.Walk(fv, after...)

	if fv.hasBeenFiltered {
		return fv.newRoots
	}
	return after
}

// isOutputEntry decides whether an after-execution entry is part of the
// output. See the package comment for the classification rules.
func isOutputEntry(afterLastExecution fingerprint.Collection, beforeIndex map[string]snapshot.Snapshot, after snapshot.Snapshot) bool {
	if after.Kind() == snapshot.KindMissing {
		return false
	}
	beforeSnapshot, existed := beforeIndex[after.Path()]
	// Was it created during execution?
	if !existed {
		return true
	}
	// Was it updated during execution?
	if !snapshot.ContentAndMetadataUpToDate(after, beforeSnapshot) {
		return true
	}
	// Did we already consider it an output after the previous execution?
	return afterLastExecution.ContainsPath(after.Path())
}

// filteringVisitor streams a DFS traversal into a MerkleBuilder, dropping
// entries rejected by the predicate. Each root gets its own builder; a root
// whose subtree was untouched is emitted as the original snapshot object.
type filteringVisitor struct {
	pred func(snapshot.Snapshot) bool

	newRoots        []snapshot.Snapshot
	hasBeenFiltered bool

	builder             *snapshot.MerkleBuilder
	currentRoot         *snapshot.DirSnapshot
	currentRootFiltered bool
}

func newFilteringVisitor(pred func(snapshot.Snapshot) bool) *filteringVisitor {
	return &filteringVisitor{pred: pred}
}

func (fv *filteringVisitor) PreVisitDirectory(dir *snapshot.DirSnapshot) bool {
	if fv.builder == nil {
		fv.builder = snapshot.NewMerkleBuilder()
		fv.currentRoot = dir
		fv.currentRootFiltered = false
	}
	fv.builder.PreVisitDirectory(dir)
	return true
}

func (fv *filteringVisitor) VisitFile(s snapshot.Snapshot) {
	if !fv.pred(s) {
		fv.hasBeenFiltered = true
		fv.currentRootFiltered = true
		return
	}
	if fv.builder == nil {
		// Leaf at root level, accepted as its own root.
		fv.newRoots = append(fv.newRoots, s)
		return
	}
	fv.builder.VisitFile(s)
}

func (fv *filteringVisitor) PostVisitDirectory(dir *snapshot.DirSnapshot) {
	// A directory excluded as an entry in its own right may still survive
	// as a structural container for accepted children.
	isOutputDir := fv.pred(dir)
	included := fv.builder.PostVisitDirectory(isOutputDir)
	if !included {
		fv.currentRootFiltered = true
		fv.hasBeenFiltered = true
	}
	if fv.builder.IsRoot() {
		if result := fv.builder.Result(); result != nil {
			if fv.currentRootFiltered {
				fv.newRoots = append(fv.newRoots, result)
			} else {
				fv.newRoots = append(fv.newRoots, fv.currentRoot)
			}
		}
		fv.builder = nil
		fv.currentRoot = nil
	}
}
