package snapshot

import (
	"slices"
	"testing"
)

func file(path, content string) *FileSnapshot {
	return NewFileSnapshot(path, HashBytes([]byte(content)), int64(len(content)), 1000)
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindMissing, "missing"},
		{KindRegularFile, "file"},
		{KindDirectory, "directory"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestFileSnapshot(t *testing.T) {
	s := file("/out/A.class", "bytecode")

	if s.Path() != "/out/A.class" {
		t.Errorf("Path() = %q, want /out/A.class", s.Path())
	}
	if s.Name() != "A.class" {
		t.Errorf("Name() = %q, want A.class", s.Name())
	}
	if s.Kind() != KindRegularFile {
		t.Errorf("Kind() = %v, want KindRegularFile", s.Kind())
	}
	if s.Digest() != HashBytes([]byte("bytecode")) {
		t.Errorf("Digest() = %q, want content hash", s.Digest())
	}
}

func TestMissingSnapshot(t *testing.T) {
	s := NewMissingSnapshot("/out/gone")
	if s.Kind() != KindMissing {
		t.Errorf("Kind() = %v, want KindMissing", s.Kind())
	}
	if s.Digest() != "" {
		t.Errorf("Digest() = %q, want empty", s.Digest())
	}
}

func TestDirDigestIsPureFunctionOfChildren(t *testing.T) {
	a := file("/out/a", "one")
	b := file("/out/b", "two")

	d1 := NewDirSnapshot("/out", []Snapshot{a, b})
	d2 := NewDirSnapshot("/out", []Snapshot{file("/out/a", "one"), file("/out/b", "two")})

	if d1.Digest() != d2.Digest() {
		t.Error("directories with identical children should have identical digests")
	}

	// Changed content propagates to the directory digest.
	d3 := NewDirSnapshot("/out", []Snapshot{file("/out/a", "changed"), b})
	if d3.Digest() == d1.Digest() {
		t.Error("changed child content should change the directory digest")
	}

	// Changed name propagates too, even with identical content.
	d4 := NewDirSnapshot("/out", []Snapshot{file("/out/c", "one"), b})
	if d4.Digest() == d1.Digest() {
		t.Error("changed child name should change the directory digest")
	}

	// Traversal order matters without a sorting discipline.
	d5 := NewDirSnapshot("/out", []Snapshot{b, a})
	if d5.Digest() == d1.Digest() {
		t.Error("reordered children should change the directory digest")
	}
}

func TestDirDigestPropagatesUpward(t *testing.T) {
	inner := NewDirSnapshot("/root/sub", []Snapshot{file("/root/sub/x", "v1")})
	root := NewDirSnapshot("/root", []Snapshot{inner})

	inner2 := NewDirSnapshot("/root/sub", []Snapshot{file("/root/sub/x", "v2")})
	root2 := NewDirSnapshot("/root", []Snapshot{inner2})

	if root.Digest() == root2.Digest() {
		t.Error("nested change should propagate to the root digest")
	}
}

func TestContentAndMetadataUpToDate(t *testing.T) {
	base := NewFileSnapshot("/out/a", "d1", 10, 1000)

	tests := []struct {
		name   string
		after  Snapshot
		before Snapshot
		want   bool
	}{
		{"identical file", NewFileSnapshot("/out/a", "d1", 10, 1000), base, true},
		{"different digest", NewFileSnapshot("/out/a", "d2", 10, 1000), base, false},
		{"different size", NewFileSnapshot("/out/a", "d1", 11, 1000), base, false},
		{"different mtime", NewFileSnapshot("/out/a", "d1", 10, 2000), base, false},
		{"kind mismatch", NewMissingSnapshot("/out/a"), base, false},
		{"missing pair", NewMissingSnapshot("/out/a"), NewMissingSnapshot("/out/a"), true},
		{
			"identical dirs",
			NewDirSnapshot("/out", []Snapshot{base}),
			NewDirSnapshot("/out", []Snapshot{NewFileSnapshot("/out/a", "d1", 10, 1000)}),
			true,
		},
		{
			"different dirs",
			NewDirSnapshot("/out", []Snapshot{base}),
			NewDirSnapshot("/out", nil),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentAndMetadataUpToDate(tt.after, tt.before); got != tt.want {
				t.Errorf("ContentAndMetadataUpToDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// recordingVisitor records traversal callbacks in order.
type recordingVisitor struct {
	events []string
}

func (rv *recordingVisitor) PreVisitDirectory(dir *DirSnapshot) bool {
	rv.events = append(rv.events, "pre:"+dir.Path())
	return true
}

func (rv *recordingVisitor) VisitFile(s Snapshot) {
	rv.events = append(rv.events, "file:"+s.Path())
}

func (rv *recordingVisitor) PostVisitDirectory(dir *DirSnapshot) {
	rv.events = append(rv.events, "post:"+dir.Path())
}

func TestWalkOrder(t *testing.T) {
	tree := NewDirSnapshot("/r", []Snapshot{
		file("/r/a", "a"),
		NewDirSnapshot("/r/sub", []Snapshot{file("/r/sub/b", "b")}),
		file("/r/c", "c"),
	})

	rv := &recordingVisitor{}
	Walk(rv, tree)

	want := []string{
		"pre:/r",
		"file:/r/a",
		"pre:/r/sub",
		"file:/r/sub/b",
		"post:/r/sub",
		"file:/r/c",
		"post:/r",
	}
	if !slices.Equal(rv.events, want) {
		t.Errorf("Walk order = %v, want %v", rv.events, want)
	}
}

// refusingVisitor refuses to descend into directories.
type refusingVisitor struct {
	recordingVisitor
}

func (rv *refusingVisitor) PreVisitDirectory(dir *DirSnapshot) bool {
	rv.events = append(rv.events, "pre:"+dir.Path())
	return false
}

func TestWalkRefusedDescent(t *testing.T) {
	tree := NewDirSnapshot("/r", []Snapshot{file("/r/a", "a")})

	rv := &refusingVisitor{}
	Walk(rv, tree)

	want := []string{"pre:/r"}
	if !slices.Equal(rv.events, want) {
		t.Errorf("Walk with refused descent = %v, want %v", rv.events, want)
	}
}

func TestIndex(t *testing.T) {
	sub := NewDirSnapshot("/r/sub", []Snapshot{file("/r/sub/b", "b")})
	tree := NewDirSnapshot("/r", []Snapshot{file("/r/a", "a"), sub})
	missing := NewMissingSnapshot("/m")

	idx := Index(tree, missing)

	wantPaths := []string{"/m", "/r", "/r/a", "/r/sub", "/r/sub/b"}
	if len(idx) != len(wantPaths) {
		t.Fatalf("Index() has %d entries, want %d", len(idx), len(wantPaths))
	}
	for _, p := range wantPaths {
		if _, ok := idx[p]; !ok {
			t.Errorf("Index() missing path %q", p)
		}
	}
	if idx["/r/sub"] != Snapshot(sub) {
		t.Error("Index() should record the directory snapshot itself")
	}
}

func TestIndexEmpty(t *testing.T) {
	if idx := Index(); len(idx) != 0 {
		t.Errorf("Index() of no roots = %v, want empty", idx)
	}
}
