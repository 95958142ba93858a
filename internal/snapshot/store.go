package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
)

// StoreError describes a failed snapshot file operation.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store reads and writes the snapshot file.
type Store struct {
	path   string
	logger *log.Logger
}

// NewStore creates a Store for the snapshot at path.
func NewStore(path string, logger *log.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a snapshot file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns the persisted snapshot.
//
// The returned snapshot is never nil. A missing file is a first run and yields an empty snapshot
// with a nil error. An unreadable or corrupt file also yields an empty snapshot, together with an
// error wrapping [shared.ErrSnapshotCorrupt] that callers report and otherwise ignore.
func (s *Store) Load() (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no snapshot yet", "path", s.path)
		return models.EmptySnapshot(), nil
	}
	if err != nil {
		return s.recover(err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return s.recover(err)
	}
	snap.Normalize()
	return &snap, nil
}

func (s *Store) recover(cause error) (*models.Snapshot, error) {
	err := &StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("%w: %v", shared.ErrSnapshotCorrupt, cause)}
	s.logger.Warn("snapshot unusable, starting from empty state", "path", s.path, "err", cause)
	return models.EmptySnapshot(), err
}

// Commit atomically replaces the snapshot file with snap.
func (s *Store) Commit(snap *models.Snapshot) error {
	if snap == nil {
		snap = models.EmptySnapshot()
	}
	snap.Normalize()

	data, err := shared.MarshalJSON(snap)
	if err != nil {
		return &StoreError{Op: "commit", Path: s.path, Err: fmt.Errorf("%w: %v", shared.ErrSnapshotWrite, err)}
	}

	if err := WriteFileAtomic(s.path, data); err != nil {
		return &StoreError{Op: "commit", Path: s.path, Err: fmt.Errorf("%w: %v", shared.ErrSnapshotWrite, err)}
	}

	s.logger.Debug("snapshot committed", "path", s.path,
		"history", len(snap.WatchHistory), "subscriptions", len(snap.Subscriptions), "playlists", len(snap.Playlists))
	return nil
}

// Reset removes the snapshot so the next run pushes the full local state.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StoreError{Op: "reset", Path: s.path, Err: err}
	}
	return nil
}
