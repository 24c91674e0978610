// Package history persists accepted lines between sessions.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kobzarvs/qline/internal/logger"
)

// File is the on-disk layout.
type File struct {
	Entries   []string  `json:"entries"`
	LastSaved time.Time `json:"last_saved"`
}

// Store loads and saves history for one file. It keeps at most limit entries.
type Store struct {
	mu    sync.Mutex
	path  string
	limit int
}

// NewStore returns a store for path; an empty path means DefaultPath.
func NewStore(path string, limit int) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return &Store{path: path, limit: limit}, nil
}

// DefaultPath is $XDG_STATE_HOME/qline/history.json.
func DefaultPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "qline", "history.json"), nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the saved entries, oldest first. A missing file is an empty
// history; a corrupt one is reported and treated as empty.
func (s *Store) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Warn("history file is corrupt", "path", s.path, "error", err)
		return nil, fmt.Errorf("decode history %s: %w", s.path, err)
	}
	return s.trim(f.Entries), nil
}

// Save writes entries, keeping the newest limit of them.
func (s *Store) Save(entries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f := File{Entries: s.trim(entries), LastSaved: time.Now()}
	if f.Entries == nil {
		f.Entries = []string{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	logger.Debug("history saved", "path", s.path, "entries", len(f.Entries))
	return nil
}

func (s *Store) trim(entries []string) []string {
	if s.limit > 0 && len(entries) > s.limit {
		entries = entries[len(entries)-s.limit:]
	}
	return entries
}
