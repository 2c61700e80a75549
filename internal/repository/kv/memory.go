package kv

import (
	"context"
	"sync"

	"aurabags-storefront/internal/domain"
)

type memoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory returns a process-local Store.
func NewMemory() Store {
	return &memoryStore{values: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.values[key] = v
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.values, key)
	return nil
}
