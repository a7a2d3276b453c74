package storage

import (
	"context"
	"sync"

	"github.com/paranovaq/game-shop/internal/port"
)

var _ port.BlobStore = (*MemoryAdapter)(nil)

// MemoryAdapter keeps blobs in process memory. State does not survive a
// restart.
type MemoryAdapter struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{blobs: make(map[string][]byte)}
}

func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, port.ErrNoSnapshot
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryAdapter) Put(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make([]byte, len(payload))
	copy(data, payload)
	m.blobs[key] = data
	return nil
}

func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryAdapter) Close() error { return nil }
