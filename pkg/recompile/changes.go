package recompile

// ChangeKind labels a declared file-change event.
type ChangeKind int

const (
	// ChangeAdded marks a file created since the previous execution.
	ChangeAdded ChangeKind = iota
	// ChangeModified marks a file whose content changed.
	ChangeModified
	// ChangeRemoved marks a file that no longer exists.
	ChangeRemoved
)

// String returns the kind name for logs.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// FileChange is one declared change to a source file.
type FileChange struct {
	AbsolutePath string
	RelativePath string
	Kind         ChangeKind
}

// ChangeProcessor applies language-specific impact rules for one changed
// source file. Implementations may widen the compile set (for example a file
// declaring several classes forces its siblings along) or set a full-rebuild
// cause when the impact cannot be bounded.
type ChangeProcessor interface {
	ProcessChange(change FileChange, classNames []string, spec *Spec)
}

// ClasspathProcessor analyzes upstream classpath changes and merges their
// impact into the spec. It is a binary-compatibility oracle: the rules for
// what constitutes an ABI-relevant change live behind this interface.
type ClasspathProcessor interface {
	ProcessClasspathChanges(current CurrentCompilation, previous *PreviousCompilation, spec *Spec)
}

// ClassSetChangeProcessor is the default ChangeProcessor: every class
// declared by a changed file is recompiled and reprocessed. A removed file
// whose classes are unknown to the mapping cannot have its stale outputs
// located, so it escalates to a full rebuild.
type ClassSetChangeProcessor struct{}

// ProcessChange implements ChangeProcessor.
func (ClassSetChangeProcessor) ProcessChange(change FileChange, classNames []string, spec *Spec) {
	if len(classNames) == 0 && change.Kind == ChangeRemoved {
		spec.SetFullRebuildCause("unable to determine classes of removed file "+change.RelativePath, nil)
		return
	}
	spec.AddClassesToCompile(classNames...)
	spec.AddClassesToProcess(classNames...)
}
