package recompile

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"taskdelta/pkg/pattern"
)

// CompileSpec is the compiler invocation input assembled from a
// recompilation spec. The compiler itself is an external collaborator; this
// type only carries its configuration.
type CompileSpec struct {
	// SourceDir is the root of the source tree.
	SourceDir string
	// DestinationDir receives compiled artifacts.
	DestinationDir string
	// ArtifactSuffix is the compiled-artifact file suffix, e.g. ".class".
	ArtifactSuffix string

	// SourceFiles are the absolute paths to feed to the compiler.
	SourceFiles []string
	// Classes are the class names to compile or reprocess.
	Classes []string
	// Classpath entries for symbol resolution of unchanged classes.
	Classpath []string
}

// InitializeCompilation prepares the compile spec from a recompilation
// decision. When no build is needed the source and class sets are emptied so
// compilation is skipped entirely. Otherwise the scheduled source paths
// become an include pattern over the source tree, the previous output
// directory joins the classpath, and stale compiled artifacts derived from
// the mapping are purged from the destination directory.
//
// Stale artifacts are deleted by class name with dots replaced by path
// separators plus the artifact suffix: recompiling a source file does not
// guarantee it regenerates outputs for classes that no longer exist, such as
// removed inner classes.
func (p *Provider) InitializeCompilation(cs *CompileSpec, spec *Spec, previous *PreviousCompilation, deleter StaleDeleter) error {
	if !spec.BuildNeeded() {
		cs.SourceFiles = nil
		cs.Classes = nil
		return nil
	}

	filesToRecompile, classesToDelete := preparePatterns(spec, previous.Mapping, cs.ArtifactSuffix)

	sources, err := matchSources(cs.SourceDir, filesToRecompile)
	if err != nil {
		return err
	}
	cs.SourceFiles = sources

	if previous.OutputDir != "" {
		cs.Classpath = append(cs.Classpath, previous.OutputDir)
	}

	classes := append(spec.ClassesToCompile(), spec.ClassesToProcess()...)
	slices.Sort(classes)
	cs.Classes = slices.Compact(classes)

	return deleter.DeleteStale(cs.DestinationDir, classesToDelete)
}

// preparePatterns builds the include pattern for sources to recompile and
// the parallel delete pattern for their stale compiled artifacts.
func preparePatterns(spec *Spec, mapping Mapping, artifactSuffix string) (filesToRecompile, classesToDelete pattern.Matcher) {
	filesToRecompile = pattern.MatchNone
	classesToDelete = pattern.MatchNone

	for _, relativeSourcePath := range spec.SourcePathsToCompile() {
		filesToRecompile = filesToRecompile.Or(pattern.RelativePath(relativeSourcePath))

		for _, staleClass := range mapping.ClassNamesFor(relativeSourcePath) {
			artifact := strings.ReplaceAll(staleClass, ".", "/") + artifactSuffix
			classesToDelete = classesToDelete.Or(pattern.RelativePath(artifact))
		}
	}
	return filesToRecompile, classesToDelete
}

// matchSources walks the source tree and returns the absolute paths of files
// accepted by the matcher.
func matchSources(sourceDir string, m pattern.Matcher) ([]string, error) {
	var matched []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if m.Test(pattern.Split(filepath.ToSlash(rel)), true) {
			matched = append(matched, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}
