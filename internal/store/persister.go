package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Persister loads and saves serialized snapshots by key.
// Load returns nil data and no error when nothing was saved yet.
type Persister interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FilePersister keeps one JSON file per key inside a directory
type FilePersister struct {
	dir string
}

// NewFilePersister creates the directory if needed
func NewFilePersister(dir string) (*FilePersister, error) {
	if dir == "" {
		return nil, errors.New("state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (p *FilePersister) path(key string) string {
	return filepath.Join(p.dir, key+".json")
}

// Load reads the snapshot for key
func (p *FilePersister) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(p.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Save writes through a temp file so readers never see a partial snapshot
func (p *FilePersister) Save(key string, data []byte) error {
	tmp, err := os.CreateTemp(p.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path(key)); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Keys lists the saved keys in lexical order
func (p *FilePersister) Keys() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list state directory: %w", err)
	}
	keys := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), ".json"))
	}
	return keys, nil
}

// MemoryPersister keeps snapshots in memory
type MemoryPersister struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

// NewMemoryPersister creates an empty in-memory persister
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: make(map[string][]byte)}
}

// Load returns the stored bytes for key
func (p *MemoryPersister) Load(key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data[key], nil
}

// Save stores a copy of data under key
func (p *MemoryPersister) Save(key string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = append([]byte(nil), data...)
	p.saves++
	return nil
}

// Keys lists the saved keys in lexical order
func (p *MemoryPersister) Keys() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.data))
	for k := range p.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// SaveCount returns how many snapshots were saved
func (p *MemoryPersister) SaveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
