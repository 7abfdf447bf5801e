package snapshot

// MerkleBuilder rebuilds a snapshot tree while mirroring a depth-first
// traversal. Each stack frame owns the accumulated children of one directory
// level: push a frame on entering a directory, fold the surviving children
// into a fresh directory snapshot (with recomputed digest) on exit.
//
// The builder is local to one traversal and must not be shared. Mismatched
// enter/exit calls are programming-contract violations and panic.
type MerkleBuilder struct {
	frames []*builderFrame
	result Snapshot
}

type builderFrame struct {
	path     string
	children []Snapshot
}

// NewMerkleBuilder creates an empty builder.
func NewMerkleBuilder() *MerkleBuilder {
	return &MerkleBuilder{}
}

// PreVisitDirectory opens a frame for the given directory.
func (b *MerkleBuilder) PreVisitDirectory(dir *DirSnapshot) {
	b.frames = append(b.frames, &builderFrame{path: dir.Path()})
}

// VisitFile forwards a leaf snapshot into the current directory frame.
func (b *MerkleBuilder) VisitFile(s Snapshot) {
	if len(b.frames) == 0 {
		panic("snapshot: MerkleBuilder.VisitFile without an open directory frame")
	}
	top := b.frames[len(b.frames)-1]
	top.children = append(top.children, s)
}

// PostVisitDirectory closes the current frame. The directory survives if it
// kept any children or if keepEmpty is true (the directory is an entry in
// its own right). A surviving directory is folded into its parent frame, or
// becomes the builder result when it closes the root frame. Returns whether
// the directory survived.
func (b *MerkleBuilder) PostVisitDirectory(keepEmpty bool) bool {
	if len(b.frames) == 0 {
		panic("snapshot: MerkleBuilder.PostVisitDirectory without an open directory frame")
	}
	top := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]

	included := keepEmpty || len(top.children) > 0
	if !included {
		if len(b.frames) == 0 {
			b.result = nil
		}
		return false
	}

	dir := NewDirSnapshot(top.path, top.children)
	if len(b.frames) == 0 {
		b.result = dir
	} else {
		parent := b.frames[len(b.frames)-1]
		parent.children = append(parent.children, dir)
	}
	return true
}

// IsRoot reports whether no directory frame is open, i.e. the last
// PostVisitDirectory closed a root.
func (b *MerkleBuilder) IsRoot() bool { return len(b.frames) == 0 }

// Result returns the rebuilt root snapshot of the most recently closed root
// frame, or nil if that root was dropped entirely.
func (b *MerkleBuilder) Result() Snapshot { return b.result }
