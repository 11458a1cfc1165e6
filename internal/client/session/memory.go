package session

import (
	"context"
	"sync"
)

// MemoryBackend keeps the record in process memory. It is used when
// persistence is disabled and in tests.
type MemoryBackend struct {
	mu  sync.Mutex
	rec Record
}

// NewMemoryBackend returns a MemoryBackend preloaded with rec.
func NewMemoryBackend(rec Record) *MemoryBackend {
	return &MemoryBackend{rec: rec}
}

func (m *MemoryBackend) Load(_ context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

func (m *MemoryBackend) Save(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = r
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = Record{}
	return nil
}
