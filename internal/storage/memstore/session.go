package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/solodko/storefront/internal/domain/auth"
)

var _ auth.SessionStore = (*SessionStore)(nil)

// SessionStore keeps admin sessions in a mutex-guarded map. Sessions carry
// their own expiry, so the store only needs to drop what auth reports stale.
type SessionStore struct {
	mu sync.RWMutex
	m  map[string]auth.Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{m: make(map[string]auth.Session)}
}

// Get returns the session for the token, or auth.ErrSessionNotFound.
func (s *SessionStore) Get(_ context.Context, token string) (*auth.Session, error) {
	s.mu.RLock()
	session, ok := s.m[token]
	s.mu.RUnlock()

	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return &session, nil
}

// Put saves the session under its token.
func (s *SessionStore) Put(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	s.m[session.Token] = *session
	s.mu.Unlock()
	return nil
}

// Delete revokes the session for the token.
func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()
	return nil
}

// StartJanitor launches a goroutine that sweeps expired sessions at the given
// interval until ctx is cancelled.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.sweep(now)
			}
		}
	}()
}

func (s *SessionStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.m {
		if now.After(session.ExpiresAt) {
			delete(s.m, token)
		}
	}
}
