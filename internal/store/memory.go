package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/session"
)

// MemoryStore keeps encoded sessions in a map. Get always returns a fresh
// copy, so callers never share Character pointers through the store.
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

var (
	_ Store         = (*MemoryStore)(nil)
	_ StatusCounter = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

// Get returns a copy of the session stored under id.
func (m *MemoryStore) Get(_ context.Context, id string) (*session.GameSession, error) {
	m.mu.RLock()
	data, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return Decode(data)
}

// Put stores a snapshot of s, replacing any previous value.
func (m *MemoryStore) Put(_ context.Context, s *session.GameSession) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	return nil
}

// Delete removes id. Deleting an unknown id is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CountByStatus decodes every stored session and tallies them by status.
func (m *MemoryStore) CountByStatus(_ context.Context) (map[session.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[session.Status]int)
	for id, data := range m.sessions {
		s, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("counting session %s: %w", id, err)
		}
		out[s.Status]++
	}
	return out, nil
}
