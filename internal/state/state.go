// Package state persists the mapping from git branches to database
// branches, plus the current pointer, between invocations.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// TemplateMarker is the current-pointer sentinel meaning "the template/main
// database". The template database is never represented as a record.
const TemplateMarker = "_main"

// FileName is the state file name, stored inside the git directory so it
// never gets committed.
const FileName = ".pgbranch_state"

// DatabaseBranch is the persisted mapping from a git branch to a physical
// database plus its metadata.
type DatabaseBranch struct {
	Name           string    `json:"name"`
	Database       string    `json:"database"`
	GitBranch      string    `json:"gitBranch,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	LastSwitchedAt time.Time `json:"lastSwitchedAt"`
}

// EngineState is the current pointer plus the set of known database
// branches. It is owned by the branch manager for the duration of one
// invocation and persisted by the Store between invocations.
type EngineState struct {
	Current  string           `json:"current,omitempty"`
	Branches []DatabaseBranch `json:"branches,omitempty"`
}

// Get returns the record for a branch name, or nil.
func (s *EngineState) Get(name string) *DatabaseBranch {
	for i := range s.Branches {
		if s.Branches[i].Name == name {
			return &s.Branches[i]
		}
	}
	return nil
}

// GetByDatabase returns the record owning a physical database name, or nil.
func (s *EngineState) GetByDatabase(database string) *DatabaseBranch {
	for i := range s.Branches {
		if s.Branches[i].Database == database {
			return &s.Branches[i]
		}
	}
	return nil
}

// Upsert inserts or replaces the record for b.Name.
func (s *EngineState) Upsert(b DatabaseBranch) {
	for i := range s.Branches {
		if s.Branches[i].Name == b.Name {
			s.Branches[i] = b
			return
		}
	}
	s.Branches = append(s.Branches, b)
}

// Remove deletes the record for a branch name. Removing an unknown name
// is a no-op.
func (s *EngineState) Remove(name string) {
	for i := range s.Branches {
		if s.Branches[i].Name == name {
			s.Branches = append(s.Branches[:i], s.Branches[i+1:]...)
			return
		}
	}
}

// List returns the records ordered by creation time, oldest first.
func (s *EngineState) List() []DatabaseBranch {
	out := make([]DatabaseBranch, len(s.Branches))
	copy(out, s.Branches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// OnTemplate reports whether the current pointer is the template sentinel.
// An unset pointer counts as the template.
func (s *EngineState) OnTemplate() bool {
	return s.Current == "" || s.Current == TemplateMarker
}

// CurrentBranch returns the record the current pointer refers to, or nil
// when on the template database.
func (s *EngineState) CurrentBranch() *DatabaseBranch {
	if s.OnTemplate() {
		return nil
	}
	return s.Get(s.Current)
}

// Store reads and writes the engine state file.
type Store struct {
	path string
}

// NewStore creates a Store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file location inside a git directory.
func Path(gitDir string) string {
	return filepath.Join(gitDir, FileName)
}

// Load reads the persisted state. A missing file is not an error: it
// denotes first run and yields an empty state. Unknown fields in the file
// are ignored for forward compatibility.
func (s *Store) Load() (*EngineState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &EngineState{}, nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}

	var st EngineState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	return &st, nil
}

// Save writes the state atomically: the new content goes to a staging file
// in the same directory, which then replaces the prior file in one rename.
// A crash never leaves a half-written state file.
func (s *Store) Save(st *EngineState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set staging file permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
