// Package recompile decides the minimal set of sources and classes to
// recompile for one task execution, based on the previous compilation's
// source/class mapping and the current execution's file changes. When change
// impact cannot be bounded it escalates to a full rebuild; that escalation
// is a deliberate conservative decision, not an error.
package recompile

import (
	"taskdelta/pkg/util"
)

// Spec accumulates the recompilation decision for one task execution. It is
// built by exactly one accumulation pass and never shared across goroutines.
//
// Once a full-rebuild cause is set the spec is in a terminal state: further
// refinement of the source and compile sets is skipped.
type Spec struct {
	sourcePaths      map[string]struct{}
	classesToCompile map[string]struct{}
	classesToProcess map[string]struct{}

	fullRebuildCause string
	fullRebuildErr   error
}

// NewSpec creates an empty recompilation spec.
func NewSpec() *Spec {
	return &Spec{
		sourcePaths:      make(map[string]struct{}),
		classesToCompile: make(map[string]struct{}),
		classesToProcess: make(map[string]struct{}),
	}
}

// AddSourcePath schedules a build-relative source path for recompilation.
// No-op once the spec is terminal.
func (s *Spec) AddSourcePath(relativePath string) {
	if s.FullRebuildNeeded() {
		return
	}
	s.sourcePaths[relativePath] = struct{}{}
}

// AddClassesToCompile marks fully-qualified class names as impacted.
// No-op once the spec is terminal.
func (s *Spec) AddClassesToCompile(classNames ...string) {
	if s.FullRebuildNeeded() {
		return
	}
	for _, name := range classNames {
		s.classesToCompile[name] = struct{}{}
	}
}

// AddClassesToProcess records pending reprocessing obligations. These are
// merged unconditionally, even in the terminal state.
func (s *Spec) AddClassesToProcess(classNames ...string) {
	for _, name := range classNames {
		s.classesToProcess[name] = struct{}{}
	}
}

// SetFullRebuildCause moves the spec into the terminal full-rebuild state.
// The transition is one-way; the first cause wins and is preserved for
// diagnostics.
func (s *Spec) SetFullRebuildCause(cause string, err error) {
	if s.fullRebuildCause != "" {
		return
	}
	s.fullRebuildCause = cause
	s.fullRebuildErr = err
}

// FullRebuildNeeded reports whether the spec is in the terminal state.
func (s *Spec) FullRebuildNeeded() bool { return s.fullRebuildCause != "" }

// FullRebuildCause returns the recorded cause and whether one is set.
func (s *Spec) FullRebuildCause() (string, bool) {
	return s.fullRebuildCause, s.fullRebuildCause != ""
}

// FullRebuildErr returns the originating error of the full-rebuild cause,
// if any.
func (s *Spec) FullRebuildErr() error { return s.fullRebuildErr }

// BuildNeeded reports whether any compilation work is required: either a
// full rebuild or a non-empty incremental set.
func (s *Spec) BuildNeeded() bool {
	return s.FullRebuildNeeded() ||
		len(s.sourcePaths) > 0 ||
		len(s.classesToCompile) > 0 ||
		len(s.classesToProcess) > 0
}

// SourcePathsToCompile returns the scheduled source paths in sorted order.
func (s *Spec) SourcePathsToCompile() []string {
	return util.SortedKeys(s.sourcePaths)
}

// ClassesToCompile returns the impacted class names in sorted order.
func (s *Spec) ClassesToCompile() []string {
	return util.SortedKeys(s.classesToCompile)
}

// ClassesToProcess returns the pending reprocessing set in sorted order.
func (s *Spec) ClassesToProcess() []string {
	return util.SortedKeys(s.classesToProcess)
}
