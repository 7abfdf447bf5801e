package recompile

import (
	"taskdelta/pkg/fingerprint"
)

// PreviousCompilation holds what the previous execution left behind: the
// recorded output fingerprints, the source/class mapping built from its
// metadata, pending reprocessing obligations, and where its outputs live.
type PreviousCompilation struct {
	Fingerprints     fingerprint.Collection
	Mapping          Mapping
	TypesToReprocess []string
	OutputDir        string
}

// CurrentCompilation describes the execution being planned: the declared
// source changes and an opaque digest of the compile classpath for the
// classpath-change oracle.
type CurrentCompilation struct {
	Changes         []FileChange
	ClasspathDigest string
}

// Provider computes recompilation specs. The classpath processor may be nil
// when no classpath analysis is available; the change processor defaults to
// ClassSetChangeProcessor.
type Provider struct {
	classpath ClasspathProcessor
	changes   ChangeProcessor
}

// NewProvider creates a provider with the given collaborators.
func NewProvider(classpath ClasspathProcessor, changes ChangeProcessor) *Provider {
	if changes == nil {
		changes = ClassSetChangeProcessor{}
	}
	return &Provider{classpath: classpath, changes: changes}
}

// Provide computes the recompilation spec for the current execution.
//
// Without a source/class mapping no incremental reasoning is possible and
// the spec goes terminal immediately. Otherwise classpath changes are
// processed first, then source changes, then the compile set is closed over
// the mapping so every impacted class has its declaring source scheduled.
// Reprocessing obligations carried over from the previous compilation are
// merged in unconditionally.
func (p *Provider) Provide(current CurrentCompilation, previous *PreviousCompilation) *Spec {
	spec := NewSpec()
	if previous.Mapping == nil || previous.Mapping.IsEmpty() {
		spec.SetFullRebuildCause("no source class mapping file found", nil)
		return spec
	}

	if p.classpath != nil {
		p.classpath.ProcessClasspathChanges(current, previous, spec)
	}
	p.processSourceChanges(current, previous, spec)

	spec.AddClassesToProcess(previous.TypesToReprocess...)
	return spec
}

// processSourceChanges folds the declared file changes into the spec and
// closes the compile set over the mapping. The terminal guard is re-checked
// before every step so no work continues after a full-rebuild escalation.
func (p *Provider) processSourceChanges(current CurrentCompilation, previous *PreviousCompilation, spec *Spec) {
	if spec.FullRebuildNeeded() {
		return
	}

	for _, change := range current.Changes {
		if spec.FullRebuildNeeded() {
			return
		}

		classNames := previous.Mapping.ClassNamesFor(change.RelativePath)
		spec.AddSourcePath(change.RelativePath)
		p.changes.ProcessChange(change, classNames, spec)
	}

	for _, className := range spec.ClassesToCompile() {
		if spec.FullRebuildNeeded() {
			return
		}

		if sourcePath, ok := previous.Mapping.SourcePathFor(className); ok {
			spec.AddSourcePath(sourcePath)
		} else {
			spec.SetFullRebuildCause("can't find source file of class "+className, nil)
		}
	}
}
