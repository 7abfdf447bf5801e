package recompile

import (
	"io/fs"
	"os"
	"path/filepath"

	"taskdelta/pkg/pattern"
)

// StaleDeleter removes stale compiled artifacts from a destination
// directory before recompilation. Implementations must only touch files
// matched by the matcher and leave directories otherwise untouched, so the
// purge is safe to repeat if interrupted.
type StaleDeleter interface {
	DeleteStale(destinationDir string, m pattern.Matcher) error
}

// FSDeleter deletes matching files from the local filesystem.
type FSDeleter struct{}

// DeleteStale implements StaleDeleter. A missing destination directory is
// not an error: there is nothing stale to remove.
func (FSDeleter) DeleteStale(destinationDir string, m pattern.Matcher) error {
	return filepath.WalkDir(destinationDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == destinationDir && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(destinationDir, path)
		if err != nil {
			return err
		}
		if m.Test(pattern.Split(filepath.ToSlash(rel)), true) {
			return os.Remove(path)
		}
		return nil
	})
}

// NopDeleter discards deletion requests. Useful for dry runs.
type NopDeleter struct{}

// DeleteStale implements StaleDeleter.
func (NopDeleter) DeleteStale(string, pattern.Matcher) error { return nil }
