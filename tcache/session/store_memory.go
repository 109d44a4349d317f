package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory. This is the
// browser-tab analog: the session lives exactly as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Persist replaces the stored session.
func (s *MemoryStore) Persist(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &sess
	return nil
}

// Retrieve returns the stored session, if any.
func (s *MemoryStore) Retrieve(ctx context.Context) (Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false, nil
	}
	return *s.session, true, nil
}

// Clear forgets the stored session.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

// Ensure MemoryStore implements the Store interface.
var _ Store = (*MemoryStore)(nil)
