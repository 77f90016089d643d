package registry

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/azero-id/azns-toolkit/internal/infra/filesystem"
	"github.com/azero-id/azns-toolkit/internal/logger"
)

const stateFile = "registry.json"

// StateStore persists registry snapshots under a directory.
type StateStore struct {
	stateDir string
	reader   filesystem.Reader
	writer   filesystem.Writer
	logger   *slog.Logger
}

func NewStateStore(stateDir string, reader filesystem.Reader, writer filesystem.Writer) *StateStore {
	return &StateStore{
		stateDir: stateDir,
		reader:   reader,
		writer:   writer,
		logger:   logger.Named("state_store"),
	}
}

func (s *StateStore) Path() string {
	return filepath.Join(s.stateDir, stateFile)
}

// Load reads the stored state. It returns nil when nothing has been saved yet.
func (s *StateStore) Load() (*State, error) {
	path := s.Path()

	exists, err := s.reader.Exists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.logger.Debug("no stored registry state", "path", path)
		return nil, nil
	}

	var state State
	if err := s.reader.ReadJSON(path, &state); err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", stateFile, err)
	}

	return &state, nil
}

// Save snapshots r and writes it to disk.
func (s *StateStore) Save(r *Registry) error {
	state := r.Snapshot()
	if err := s.writer.WriteJSON(s.Path(), state); err != nil {
		return fmt.Errorf("failed to write '%s': %w", stateFile, err)
	}

	s.logger.Info("registry state saved", "path", s.Path(), "names", len(state.Names))
	return nil
}

// LoadInto restores r from disk if a state exists and reports whether it did.
func (s *StateStore) LoadInto(r *Registry) (bool, error) {
	state, err := s.Load()
	if err != nil || state == nil {
		return false, err
	}
	if err := r.Restore(*state); err != nil {
		return false, fmt.Errorf("failed to restore registry: %w", err)
	}
	return true, nil
}
