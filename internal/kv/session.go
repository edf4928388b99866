package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Memory is an in-process Store. Its contents vanish with the process, which
// makes it the session store for long-running processes.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store.Get.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.Set.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Clear ends the session.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}

// Session is a file-backed session Store shared by the CLI invocations of one
// terminal session. The file lives in a temporary directory and is removed by
// Clear.
type Session struct {
	mu   sync.Mutex
	path string
}

// NewSession returns the session store identified by id inside dir.
// An empty dir means os.TempDir().
func NewSession(dir, id string) *Session {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Session{path: filepath.Join(dir, fmt.Sprintf("quotesync-session-%s.json", id))}
}

// Path returns the backing file location.
func (s *Session) Path() string {
	return s.path
}

// Get implements Store.Get. A missing or unreadable session file is an empty session.
func (s *Session) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.readLocked()
	v, ok := values[key]
	return v, ok, nil
}

// Set implements Store.Set.
func (s *Session) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.readLocked()
	values[key] = value

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear ends the session by removing its file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *Session) readLocked() map[string]string {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil || values == nil {
		return make(map[string]string)
	}
	return values
}
