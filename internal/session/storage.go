package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage persists session state across process restarts.
type Storage interface {
	Load() (State, bool, error)
	Save(State) error
	Clear() error
}

// FileStorage keeps the session as a JSON document at a fixed path, the
// durable-storage analog of the browser's local storage keys.
type FileStorage struct {
	path string
}

// NewFileStorage constructs storage rooted at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file location.
func (f *FileStorage) Path() string {
	return f.path
}

// Load reads the persisted state. The second return is false when no session
// has ever been saved.
func (f *FileStorage) Load() (State, bool, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("read session file: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, false, fmt.Errorf("decode session file: %w", err)
	}
	return state, true, nil
}

// Save writes the state atomically (temp file + rename) so a concurrent
// reader never observes a torn session.
func (f *FileStorage) Save(state State) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session but keeps UI preferences.
func (f *FileStorage) Clear() error {
	state, ok, err := f.Load()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return f.Save(state.cleared())
}
