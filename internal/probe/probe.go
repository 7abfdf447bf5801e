// Package probe produces snapshot trees from the local filesystem: files
// are content-hashed, directories get merkle digests computed over their
// children in name order, so repeated probes of identical content yield
// identical digests.
package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taskdelta/pkg/snapshot"
)

// Config configures a Prober.
type Config struct {
	// IgnoreDirs are directory name prefixes to skip while descending.
	IgnoreDirs []string
}

// Prober walks directory trees and builds snapshots.
type Prober struct {
	ignoreDirs []string
}

// New creates a prober with the given config.
func New(cfg Config) *Prober {
	return &Prober{ignoreDirs: cfg.IgnoreDirs}
}

// Probe snapshots the filesystem entry at the given path. A nonexistent
// path yields a missing snapshot, not an error.
func (p *Prober) Probe(ctx context.Context, path string) (snapshot.Snapshot, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Lstat(abs)
	if os.IsNotExist(err) {
		return snapshot.NewMissingSnapshot(abs), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	}

	if info.IsDir() {
		return p.probeDir(ctx, abs)
	}
	return p.probeFile(abs, info)
}

func (p *Prober) probeFile(abs string, info os.FileInfo) (snapshot.Snapshot, error) {
	digest, err := snapshot.HashFile(abs)
	if err != nil {
		return nil, err
	}
	return snapshot.NewFileSnapshot(abs, digest, info.Size(), info.ModTime().UnixNano()), nil
}

func (p *Prober) probeDir(ctx context.Context, abs string) (snapshot.Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", abs, err)
	}

	// ReadDir returns entries sorted by name; child order is therefore
	// stable across probes.
	var children []snapshot.Snapshot
	for _, entry := range entries {
		name := entry.Name()
		childPath := filepath.Join(abs, name)

		if entry.IsDir() {
			if p.ignored(name) {
				continue
			}
			child, err := p.probeDir(ctx, childPath)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		child, err := p.probeFile(childPath, info)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return snapshot.NewDirSnapshot(abs, children), nil
}

func (p *Prober) ignored(name string) bool {
	for _, prefix := range p.ignoreDirs {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
