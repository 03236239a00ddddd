package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the session as a JSON object with fixed keys in a single file
// (mode 0600, parent directory 0700).
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.
func (f *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return Session{}, fmt.Errorf("invalid session file: %w", err)
	}
	return Session{
		Access:  values[KeyAccess],
		Refresh: values[KeyRefresh],
	}, nil
}

// Save implements Store.
func (f *FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(map[string]string{
		KeyAccess:  s.Access,
		KeyRefresh: s.Refresh,
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear implements Store.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string

	// SaveErr, if set, is returned by Save.
	SaveErr error
	// ClearErr, if set, is returned by Clear and the values are kept.
	ClearErr error
}

// NewMemoryStore creates a store holding s.
func NewMemoryStore(s Session) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string)}
	if s.Present() {
		m.values[KeyAccess] = s.Access
		m.values[KeyRefresh] = s.Refresh
	}
	return m
}

// Load implements Store.
func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{Access: m.values[KeyAccess], Refresh: m.values[KeyRefresh]}, nil
}

// Save implements Store.
func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values[KeyAccess] = s.Access
	m.values[KeyRefresh] = s.Refresh
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	delete(m.values, KeyAccess)
	delete(m.values, KeyRefresh)
	return nil
}

// Value returns the raw stored value for key.
func (m *MemoryStore) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}
