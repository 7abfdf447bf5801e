package recompile

import (
	"slices"
	"testing"
)

func TestMemoryMapping(t *testing.T) {
	m := NewMemoryMapping(map[string][]string{
		"pkg/A.java": {"pkg.A", "pkg.A$Inner"},
		"pkg/B.java": {"pkg.B"},
	})

	if m.IsEmpty() {
		t.Error("IsEmpty() = true for a populated mapping")
	}

	if got, want := m.ClassNamesFor("pkg/A.java"), []string{"pkg.A", "pkg.A$Inner"}; !slices.Equal(got, want) {
		t.Errorf("ClassNamesFor(pkg/A.java) = %v, want %v", got, want)
	}
	if got := m.ClassNamesFor("pkg/Unknown.java"); got != nil {
		t.Errorf("ClassNamesFor(unknown) = %v, want nil", got)
	}

	path, ok := m.SourcePathFor("pkg.A$Inner")
	if !ok || path != "pkg/A.java" {
		t.Errorf("SourcePathFor(pkg.A$Inner) = %q, %v; want pkg/A.java", path, ok)
	}
	if _, ok := m.SourcePathFor("pkg.Unknown"); ok {
		t.Error("SourcePathFor(unknown) should report not found")
	}
}

func TestMemoryMappingDuplicateClassResolvesDeterministically(t *testing.T) {
	m := NewMemoryMapping(map[string][]string{
		"z/Later.java":   {"pkg.Dup"},
		"a/Earlier.java": {"pkg.Dup"},
	})

	path, ok := m.SourcePathFor("pkg.Dup")
	if !ok || path != "a/Earlier.java" {
		t.Errorf("SourcePathFor(pkg.Dup) = %q, want first path in sorted order", path)
	}
}

func TestMemoryMappingEmpty(t *testing.T) {
	if !NewMemoryMapping(nil).IsEmpty() {
		t.Error("IsEmpty() = false for a nil table")
	}
	if !NewMemoryMapping(map[string][]string{}).IsEmpty() {
		t.Error("IsEmpty() = false for an empty table")
	}
}

func TestMemoryMappingCopiesInput(t *testing.T) {
	source := map[string][]string{"A.java": {"A"}}
	m := NewMemoryMapping(source)

	source["A.java"][0] = "mutated"

	if got := m.ClassNamesFor("A.java"); got[0] != "A" {
		t.Errorf("ClassNamesFor(A.java) = %v, want defensive copy unaffected by caller mutation", got)
	}
}
