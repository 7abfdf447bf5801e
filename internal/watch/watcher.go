package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"taskdelta/internal/log"
	"taskdelta/pkg/recompile"
)

// Config configures the watcher.
type Config struct {
	// Root is the source tree to watch.
	Root string
	// Extensions restricts events to files with these extensions.
	Extensions []string
	// IgnoreDirs are directory name prefixes not descended into.
	IgnoreDirs []string
	// Debounce is the coalescing window in milliseconds (default 500).
	Debounce int
	// OnChanges receives each coalesced batch, sorted by relative path.
	OnChanges func(changes []recompile.FileChange)
}

// Watcher turns filesystem notifications under a source root into batched
// FileChange events.
type Watcher struct {
	config     Config
	fsWatcher  *fsnotify.Watcher
	debouncer  *Debouncer
	extensions map[string]bool
	logger     interface {
		Error(msg string, args ...any)
		Debug(msg string, args ...any)
	}
}

// New creates a watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[ext] = true
	}

	return &Watcher{
		config:     cfg,
		fsWatcher:  fsWatcher,
		extensions: extensions,
		logger:     log.Component("watch"),
	}, nil
}

// Run starts the watch loop. It blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	window := time.Duration(w.config.Debounce) * time.Millisecond
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	w.debouncer = NewDebouncer(window, w.handleBatch)
	defer w.debouncer.Stop()

	if err := w.addRecursive(w.config.Root); err != nil {
		return fmt.Errorf("failed to watch source tree: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
		}
	}
}

// addRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				w.logger.Debug("permission denied", "path", path)
				return nil
			}
			w.logger.Error("walk error", "path", path, "err", err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if w.ignored(d.Name()) {
			return filepath.SkipDir
		}

		if err := w.fsWatcher.Add(path); err != nil {
			if isWatchLimitError(err) {
				return fmt.Errorf("inotify watch limit reached for %s: %w\n"+
					"Increase limit with: sudo sysctl fs.inotify.max_user_watches=524288", path, err)
			}
			w.logger.Debug("failed to watch", "path", path, "err", err)
			return nil
		}
		return nil
	})
}

func (w *Watcher) ignored(name string) bool {
	for _, prefix := range w.config.IgnoreDirs {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// isWatchLimitError checks if an error is due to inotify watch limits.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "too many open files")
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A new directory needs its own watches.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.ignored(filepath.Base(path)) {
				return
			}
			if err := w.addRecursive(path); err != nil {
				w.logger.Error("failed to watch new directory", "path", path, "err", err)
			}
			return
		}
	}

	if len(w.extensions) > 0 && !w.extensions[filepath.Ext(path)] {
		return
	}

	var kind recompile.ChangeKind
	switch {
	case event.Has(fsnotify.Create):
		kind = recompile.ChangeAdded
	case event.Has(fsnotify.Write):
		kind = recompile.ChangeModified
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		kind = recompile.ChangeRemoved
	default:
		return // Ignore chmod events
	}

	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return
	}

	w.debouncer.Add(recompile.FileChange{
		AbsolutePath: path,
		RelativePath: filepath.ToSlash(rel),
		Kind:         kind,
	})
}

// handleBatch is called when the debouncer flushes.
func (w *Watcher) handleBatch(changes []recompile.FileChange) {
	if len(changes) == 0 {
		return
	}
	slices.SortFunc(changes, func(a, b recompile.FileChange) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	if w.config.OnChanges != nil {
		w.config.OnChanges(changes)
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}
