package memory

import (
	"context"
	"sync"
	"time"
)

// SessionStore keeps session expiry times in memory. Expired entries are
// dropped lazily on lookup.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]time.Time), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, sessionID, _ string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = s.now().Add(ttl)
	return nil
}

func (s *SessionStore) Exists(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
