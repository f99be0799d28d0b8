package blobstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in a map. It serves embedded content and tests.
// Stored slices are private copies and never change after Put, so readers
// share them without copying.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	bytes int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// NewMemoryStoreFrom returns a MemoryStore seeded with a copy of blobs.
func NewMemoryStoreFrom(blobs map[string][]byte) *MemoryStore {
	m := NewMemoryStore()
	for name, data := range blobs {
		m.put(name, data)
	}
	return m
}

func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return NewBytesBlob(data), nil
}

func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.put(name, data)
	return nil
}

func (m *MemoryStore) put(name string, data []byte) {
	data = slices.Clone(data)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.bytes += int64(len(data)) - int64(len(m.blobs[name]))
	m.blobs[name] = data
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bytes -= int64(len(m.blobs[name]))
	delete(m.blobs, name)
	return nil
}

// List returns the sorted names starting with prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	names := slices.Collect(maps.Keys(m.blobs))
	m.mu.RUnlock()

	names = slices.DeleteFunc(names, func(name string) bool {
		return !strings.HasPrefix(name, prefix)
	})
	slices.Sort(names)
	return names, nil
}

// Len returns the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Bytes returns the total size of all stored blobs.
func (m *MemoryStore) Bytes() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bytes
}
