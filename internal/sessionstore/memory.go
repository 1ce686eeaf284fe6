// Package sessionstore provides the injectable backends for per-chat
// session state: an in-process map for tests and single-instance deploys,
// and a Redis store whose TTL doubles as the idle eviction.
package sessionstore

import (
	"context"
	"sync"

	"github.com/retail-receipt-ingest/internal/domain/session"
)

// MemoryStore keeps sessions in a process-local map. State is lost on
// restart by design. The mutex only protects map integrity; same-chat
// last-write-wins races are accepted.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*session.Session
}

// NewMemoryStore creates an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*session.Session),
	}
}

// Get implements session.Store.
func (m *MemoryStore) Get(_ context.Context, chatID int64) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[chatID]
	if !ok {
		return nil, session.ErrNotFound
	}
	return s.Clone(), nil
}

// Put implements session.Store.
func (m *MemoryStore) Put(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ChatID] = s.Clone()
	return nil
}

// Delete implements session.Store.
func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, chatID)
	return nil
}
