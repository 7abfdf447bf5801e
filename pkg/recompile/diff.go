package recompile

import (
	"path/filepath"
	"slices"
	"strings"

	"taskdelta/pkg/fingerprint"
	"taskdelta/pkg/snapshot"
)

// ChangesBetween derives file-change events by comparing the source tree
// fingerprints recorded after the previous execution against a freshly
// probed source snapshot. Directories are structural and produce no events.
// Results are sorted by relative path for deterministic processing order.
func ChangesBetween(previous fingerprint.Collection, sourceRoot string, current ...snapshot.Snapshot) []FileChange {
	currentIndex := snapshot.Index(current...)

	var changes []FileChange
	for path, s := range currentIndex {
		if s.Kind() != snapshot.KindRegularFile {
			continue
		}
		prev, existed := previous[path]
		if !existed {
			changes = append(changes, newChange(sourceRoot, path, ChangeAdded))
			continue
		}
		if prev.Digest != s.Digest() {
			changes = append(changes, newChange(sourceRoot, path, ChangeModified))
		}
	}

	for path, prev := range previous {
		if prev.Kind != snapshot.KindRegularFile {
			continue
		}
		if _, exists := currentIndex[path]; !exists {
			changes = append(changes, newChange(sourceRoot, path, ChangeRemoved))
		}
	}

	slices.SortFunc(changes, func(a, b FileChange) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	return changes
}

func newChange(sourceRoot, absPath string, kind ChangeKind) FileChange {
	rel, err := filepath.Rel(sourceRoot, absPath)
	if err != nil {
		rel = absPath
	}
	return FileChange{
		AbsolutePath: absPath,
		RelativePath: filepath.ToSlash(rel),
		Kind:         kind,
	}
}
