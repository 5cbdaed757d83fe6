package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the persisted roster: one JSON blob written wholesale by the
// builder and read wholesale by the server at startup.
type Snapshot struct {
	SnapshotID string    `json:"snapshot_id"`
	BuiltAt    time.Time `json:"built_at"`
	Persons    []Person  `json:"persons"`
}

// Store reads and writes roster snapshots at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot and returns the roster it contains. Any failure
// (missing file, bad JSON, invariant violation) is returned as an error; the
// caller decides whether to degrade to an empty roster.
func (s *Store) Load() (*Roster, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if err := validate(snap.Persons); err != nil {
		return nil, fmt.Errorf("snapshot invalid: %w", err)
	}

	return NewRoster(snap.Persons), nil
}

// Save writes all records as a fresh snapshot, unconditionally replacing any
// prior one. The write goes through a temp file and rename so a crash never
// leaves a truncated snapshot behind.
func (s *Store) Save(persons []Person) error {
	if err := validate(persons); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	snap := Snapshot{
		SnapshotID: uuid.NewString(),
		BuiltAt:    time.Now().UTC(),
		Persons:    persons,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".roster-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// validate enforces the roster invariants: every record has an embedding and
// dimensionality is uniform across records.
func validate(persons []Person) error {
	var dim int
	for i := range persons {
		enc := persons[i].Encoding
		if len(enc) == 0 {
			return fmt.Errorf("record %d (%s) has no embedding", i, persons[i].Name)
		}
		if dim == 0 {
			dim = len(enc)
			continue
		}
		if len(enc) != dim {
			return fmt.Errorf("record %d (%s) has embedding dim %d, expected %d",
				i, persons[i].Name, len(enc), dim)
		}
	}
	return nil
}

// IsNotExist reports whether a Load error means the snapshot file is simply
// absent, as opposed to unreadable or corrupt.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
