package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SessionStorage persists serialized store snapshots by name
type SessionStorage interface {
	GetItem(name string) ([]byte, bool, error)
	SetItem(name string, value []byte) error
	RemoveItem(name string) error
}

// MemorySession keeps snapshots for the life of the process
type MemorySession struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemorySession() *MemorySession {
	return &MemorySession{items: make(map[string][]byte)}
}

func (s *MemorySession) GetItem(name string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemorySession) SetItem(name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = append([]byte(nil), value...)
	return nil
}

func (s *MemorySession) RemoveItem(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, name)
	return nil
}

// FileSession keeps one JSON file per store under a directory, so cached
// state survives a restart.
type FileSession struct {
	dir string
	mu  sync.Mutex
}

// NewFileSession creates dir when needed
func NewFileSession(dir string) (*FileSession, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileSession{dir: dir}, nil
}

func (s *FileSession) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name)+".json")
}

func (s *FileSession) GetItem(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read session %s: %w", name, err)
	}
	return data, true, nil
}

func (s *FileSession) SetItem(name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write session %s: %w", name, err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session %s: %w", name, err)
	}
	return nil
}

func (s *FileSession) RemoveItem(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session %s: %w", name, err)
	}
	return nil
}
