package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps ledgers in process memory, in insertion order.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]string
	index   map[string]Set
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]string),
		index:   make(map[string]Set),
	}
}

func (m *MemoryStore) Load(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.entries[userID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.index[userID]
	if !ok {
		set = make(Set)
		m.index[userID] = set
	}
	for _, id := range dedupe(ids) {
		if set.Contains(id) {
			continue
		}
		set.Add(id)
		m.entries[userID] = append(m.entries[userID], id)
	}
	return nil
}
