package state

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/sigmaguard/risk"
)

// MemoryStore keeps priors for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemory() *MemoryStore {
	return &MemoryStore{entries: map[string]Entry{}}
}

func (m *MemoryStore) Load(_ context.Context, ticker string, before time.Time) (risk.Prior, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.entries[ticker].Before(before); ok {
		return p, nil
	}
	return risk.Prior{}, ErrNotFound
}

func (m *MemoryStore) Save(_ context.Context, ticker string, p risk.Prior) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[ticker] = m.entries[ticker].Push(p)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
