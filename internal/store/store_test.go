package store

import (
	"os"
	"path/filepath"
	"testing"

	"taskdelta/pkg/fingerprint"
	"taskdelta/pkg/snapshot"
)

func TestJSONStoreLoadMissingFile(t *testing.T) {
	st := NewJSONStore(t.TempDir())

	state, err := st.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state.Version != StateVersion {
		t.Errorf("Version = %d, want %d", state.Version, StateVersion)
	}
	if len(state.Executions) != 0 {
		t.Errorf("Executions = %v, want empty", state.Executions)
	}
	if st.Exists() {
		t.Error("Exists() = true before any save")
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	st := NewJSONStore(root)

	state := NewState()
	state.Put(&Execution{
		TaskID: "compile",
		OutputFingerprints: fingerprint.Collection{
			"/out/A.class": {Kind: snapshot.KindRegularFile, Digest: "abc"},
		},
		SourceFingerprints: fingerprint.Collection{
			"/src/A.java": {Kind: snapshot.KindRegularFile, Digest: "def"},
		},
		SourceClasses:    map[string][]string{"A.java": {"A"}},
		TypesToReprocess: []string{"Gen"},
	})

	if err := st.Save(state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !st.Exists() {
		t.Error("Exists() = false after save")
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	exec, ok := loaded.Execution("compile")
	if !ok {
		t.Fatal("execution record lost in round trip")
	}
	if !exec.OutputFingerprints.ContainsPath("/out/A.class") {
		t.Error("output fingerprints lost")
	}
	if !exec.SourceFingerprints.ContainsPath("/src/A.java") {
		t.Error("source fingerprints lost")
	}
	if got, _ := exec.Mapping().SourcePathFor("A"); got != "A.java" {
		t.Errorf("Mapping().SourcePathFor(A) = %q, want A.java", got)
	}
	if len(exec.TypesToReprocess) != 1 || exec.TypesToReprocess[0] != "Gen" {
		t.Errorf("TypesToReprocess = %v, want [Gen]", exec.TypesToReprocess)
	}
	if exec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set by Put")
	}
}

func TestJSONStoreRejectsNewerVersion(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".taskdelta")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := []byte(`{"version": 99, "executions": {}}`)
	if err := os.WriteFile(filepath.Join(dir, "state.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONStore(root).Load(); err == nil {
		t.Error("Load() should reject a state file from a newer version")
	}
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".taskdelta")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONStore(root).Load(); err == nil {
		t.Error("Load() should fail on corrupt JSON")
	}
}

func TestJSONStoreSaveNil(t *testing.T) {
	if err := NewJSONStore(t.TempDir()).Save(nil); err == nil {
		t.Error("Save(nil) should fail")
	}
}

func TestJSONStoreClear(t *testing.T) {
	st := NewJSONStore(t.TempDir())
	if err := st.Save(NewState()); err != nil {
		t.Fatal(err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if st.Exists() {
		t.Error("Exists() = true after Clear")
	}
}

func TestStateNilSafety(t *testing.T) {
	var s *State
	if _, ok := s.Execution("x"); ok {
		t.Error("nil state should report no executions")
	}
	s.Put(&Execution{TaskID: "x"})

	state := NewState()
	state.Put(nil)
	if len(state.Executions) != 0 {
		t.Error("Put(nil) should be a no-op")
	}
}
