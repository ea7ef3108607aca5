package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SessionStore persists a session between runs.
type SessionStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// FileStore keeps the session as JSON in a single owner-only file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The parent directory is
// created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file the store writes to.
func (f *FileStore) Path() string {
	return f.path
}

// Load returns the stored session, or nil when none has been saved.
func (f *FileStore) Load() (*Session, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

// Save writes the session with 0600 permissions.
func (f *FileStore) Save(session *Session) error {
	if session == nil {
		return f.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Clear removes the stored session. A missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// MemoryStore is a SessionStore that keeps the session in memory.
type MemoryStore struct {
	session *Session
}

// Load implements SessionStore.
func (m *MemoryStore) Load() (*Session, error) { return m.session.Clone(), nil }

// Save implements SessionStore.
func (m *MemoryStore) Save(session *Session) error {
	m.session = session.Clone()
	return nil
}

// Clear implements SessionStore.
func (m *MemoryStore) Clear() error {
	m.session = nil
	return nil
}
