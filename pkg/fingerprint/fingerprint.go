// Package fingerprint projects snapshot trees into a normalized,
// order-insensitive mapping from absolute path to a per-entry fingerprint.
// Fingerprints recorded after one execution are compared against snapshots
// observed before and after the next one.
package fingerprint

import (
	"slices"

	"taskdelta/pkg/snapshot"
)

// Fingerprint is the comparison-ready form of a single snapshot entry.
type Fingerprint struct {
	Kind   snapshot.Kind `json:"kind"`
	Digest string        `json:"digest"`
}

// Collection maps absolute paths to fingerprints. A nil Collection behaves
// like an empty one.
type Collection map[string]Fingerprint

// Empty returns an empty collection.
func Empty() Collection {
	return Collection{}
}

// FromSnapshots flattens the given snapshot trees into a collection.
// Missing entries carry no content and are not recorded.
func FromSnapshots(roots ...snapshot.Snapshot) Collection {
	c := Collection{}
	for path, s := range snapshot.Index(roots...) {
		if s.Kind() == snapshot.KindMissing {
			continue
		}
		c[path] = Fingerprint{Kind: s.Kind(), Digest: s.Digest()}
	}
	return c
}

// ContainsPath reports whether the collection records the given path.
func (c Collection) ContainsPath(path string) bool {
	_, ok := c[path]
	return ok
}

// Len returns the number of recorded entries.
func (c Collection) Len() int { return len(c) }

// Paths returns the recorded paths in sorted order.
func (c Collection) Paths() []string {
	paths := make([]string, 0, len(c))
	for p := range c {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
