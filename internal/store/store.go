// Package store persists per-task execution metadata between build runs:
// the fingerprints recorded for a task's outputs, the source/class mapping
// produced by its last compilation, and pending reprocessing obligations.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskdelta/pkg/fingerprint"
	"taskdelta/pkg/recompile"
)

const (
	// stateDir is the directory name for taskdelta state files.
	stateDir = ".taskdelta"

	// stateFile is the name of the state file.
	stateFile = "state.json"
)

// StateVersion is the current version of the state format.
const StateVersion = 1

// Execution is the recorded metadata of one task execution.
type Execution struct {
	TaskID string `json:"task_id"`

	// OutputFingerprints are the fingerprints of the entries classified
	// as outputs after the execution.
	OutputFingerprints fingerprint.Collection `json:"output_fingerprints"`

	// SourceFingerprints are the fingerprints of the source tree as
	// recorded after the execution, used to derive change events for the
	// next one.
	SourceFingerprints fingerprint.Collection `json:"source_fingerprints,omitempty"`

	// SourceClasses maps build-relative source paths to the class names
	// they declared during the last compilation.
	SourceClasses map[string][]string `json:"source_classes,omitempty"`

	// TypesToReprocess are annotation-processing obligations carried over
	// to the next compilation.
	TypesToReprocess []string `json:"types_to_reprocess,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Mapping builds the source/class mapping recorded for this execution.
func (e *Execution) Mapping() *recompile.MemoryMapping {
	return recompile.NewMemoryMapping(e.SourceClasses)
}

// State is the persisted collection of execution records.
type State struct {
	Version    int                   `json:"version"`
	UpdatedAt  time.Time             `json:"updated_at"`
	Executions map[string]*Execution `json:"executions"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Version:    StateVersion,
		UpdatedAt:  time.Now(),
		Executions: make(map[string]*Execution),
	}
}

// Execution returns the record for a task, if present.
func (s *State) Execution(taskID string) (*Execution, bool) {
	if s == nil || s.Executions == nil {
		return nil, false
	}
	e, ok := s.Executions[taskID]
	return e, ok
}

// Put adds or replaces a task's record.
func (s *State) Put(e *Execution) {
	if s == nil || e == nil {
		return
	}
	if s.Executions == nil {
		s.Executions = make(map[string]*Execution)
	}
	e.UpdatedAt = time.Now()
	s.Executions[e.TaskID] = e
}

// Store defines the interface for state persistence.
type Store interface {
	Load() (*State, error)
	Save(s *State) error
	Exists() bool
	Clear() error
}

// JSONStore implements Store using a JSON file under the workspace.
type JSONStore struct {
	dir  string
	path string
}

// NewJSONStore creates a store at the given workspace directory. State
// lives in .taskdelta/state.json within it.
func NewJSONStore(workspaceRoot string) *JSONStore {
	dir := filepath.Join(workspaceRoot, stateDir)
	return &JSONStore{
		dir:  dir,
		path: filepath.Join(dir, stateFile),
	}
}

// Load reads the state from disk. A missing state file yields an empty
// state.
func (s *JSONStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Version > StateVersion {
		return nil, fmt.Errorf("state file version %d is newer than supported version %d", state.Version, StateVersion)
	}

	if state.Executions == nil {
		state.Executions = make(map[string]*Execution)
	}
	return &state, nil
}

// Save writes the state to disk atomically.
func (s *JSONStore) Save(state *State) error {
	if state == nil {
		return fmt.Errorf("cannot save nil state")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	state.UpdatedAt = time.Now()
	state.Version = StateVersion

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to a temp file first, then rename (atomic on POSIX).
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename state file: %w", err)
	}
	return nil
}

// Exists returns true if the state file exists.
func (s *JSONStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Clear removes the state file and directory.
func (s *JSONStore) Clear() error {
	return os.RemoveAll(s.dir)
}
