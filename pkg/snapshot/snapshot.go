// Package snapshot models the state of a file or directory subtree at a
// point in time as an immutable, hash-addressed tree. Directory digests are
// merkle digests: a pure function of the children's (name, digest) pairs, so
// any content change propagates to the root digest.
package snapshot

import "path/filepath"

// Kind tags the variant of a snapshot entry.
type Kind int

const (
	// KindMissing marks a path that did not exist when probed.
	KindMissing Kind = iota
	// KindRegularFile marks a regular file.
	KindRegularFile
	// KindDirectory marks a directory.
	KindDirectory
)

// String returns the kind name for logs and state files.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindRegularFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Snapshot is one node of a snapshot tree. Snapshots are immutable after
// construction; transformations always build new trees.
type Snapshot interface {
	// Path returns the absolute path of the entry.
	Path() string
	// Name returns the base name of the entry.
	Name() string
	// Kind returns the variant tag.
	Kind() Kind
	// Digest returns the content identity: a hash over file bytes for
	// files, a merkle digest for directories, empty for missing entries.
	Digest() string
	// Accept walks this subtree depth-first with the given visitor.
	Accept(v Visitor)
}

// FileSnapshot is a regular file entry. Size and mtime-nanos form a cheap
// pre-check identity usable before comparing digests.
type FileSnapshot struct {
	path    string
	name    string
	digest  string
	size    int64
	modTime int64
}

// NewFileSnapshot creates a file snapshot.
func NewFileSnapshot(path, digest string, size, modTimeNanos int64) *FileSnapshot {
	return &FileSnapshot{
		path:    path,
		name:    filepath.Base(path),
		digest:  digest,
		size:    size,
		modTime: modTimeNanos,
	}
}

func (s *FileSnapshot) Path() string   { return s.path }
func (s *FileSnapshot) Name() string   { return s.name }
func (s *FileSnapshot) Kind() Kind     { return KindRegularFile }
func (s *FileSnapshot) Digest() string { return s.digest }

// Size returns the file size in bytes.
func (s *FileSnapshot) Size() int64 { return s.size }

// ModTime returns the modification time in Unix nanoseconds.
func (s *FileSnapshot) ModTime() int64 { return s.modTime }

// Accept visits the file leaf.
func (s *FileSnapshot) Accept(v Visitor) { v.VisitFile(s) }

// MissingSnapshot records a path that did not exist when probed.
type MissingSnapshot struct {
	path string
	name string
}

// NewMissingSnapshot creates a missing-entry snapshot.
func NewMissingSnapshot(path string) *MissingSnapshot {
	return &MissingSnapshot{path: path, name: filepath.Base(path)}
}

func (s *MissingSnapshot) Path() string   { return s.path }
func (s *MissingSnapshot) Name() string   { return s.name }
func (s *MissingSnapshot) Kind() Kind     { return KindMissing }
func (s *MissingSnapshot) Digest() string { return "" }

// Accept visits the missing entry as a leaf.
func (s *MissingSnapshot) Accept(v Visitor) { v.VisitFile(s) }

// DirSnapshot is a directory entry owning an ordered sequence of children.
// Child order is filesystem-traversal order and is stable for a given probe.
type DirSnapshot struct {
	path     string
	name     string
	digest   string
	children []Snapshot
}

// NewDirSnapshot creates a directory snapshot, computing its merkle digest
// from the children's (name, digest) pairs in order.
func NewDirSnapshot(path string, children []Snapshot) *DirSnapshot {
	return &DirSnapshot{
		path:     path,
		name:     filepath.Base(path),
		digest:   dirDigest(children),
		children: children,
	}
}

func (s *DirSnapshot) Path() string   { return s.path }
func (s *DirSnapshot) Name() string   { return s.name }
func (s *DirSnapshot) Kind() Kind     { return KindDirectory }
func (s *DirSnapshot) Digest() string { return s.digest }

// Children returns the ordered child snapshots. Callers must not mutate the
// returned slice.
func (s *DirSnapshot) Children() []Snapshot { return s.children }

// Accept walks the subtree depth-first: pre-order directory callback (which
// may refuse descent), file leaves, then the post-order directory callback.
func (s *DirSnapshot) Accept(v Visitor) {
	if !v.PreVisitDirectory(s) {
		return
	}
	for _, c := range s.children {
		c.Accept(v)
	}
	v.PostVisitDirectory(s)
}

// ContentAndMetadataUpToDate reports whether after carries the same content
// and metadata as before. For files this compares size, mtime and digest;
// for directories the merkle digest; missing entries only need matching
// kinds.
func ContentAndMetadataUpToDate(after, before Snapshot) bool {
	if after.Kind() != before.Kind() {
		return false
	}
	switch a := after.(type) {
	case *FileSnapshot:
		b, ok := before.(*FileSnapshot)
		if !ok {
			return false
		}
		return a.size == b.size && a.modTime == b.modTime && a.digest == b.digest
	case *MissingSnapshot:
		return true
	default:
		return after.Digest() == before.Digest()
	}
}
