// Package memstore provides in-memory implementations of the cart and admin
// session stores. It is the default when no Redis URL is configured; entries
// expire after a TTL and a janitor goroutine sweeps them out.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/solodko/storefront/internal/domain/cart"
)

type cartEntry struct {
	cart      *cart.Cart
	expiresAt time.Time
}

var _ cart.Store = (*CartStore)(nil)

// CartStore keeps session carts in a mutex-guarded map.
type CartStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]cartEntry
}

// NewCartStore creates a CartStore whose entries live for ttl after their
// last write.
func NewCartStore(ttl time.Duration) *CartStore {
	return &CartStore{
		ttl: ttl,
		m:   make(map[string]cartEntry),
	}
}

// Get returns the cart for the session, or cart.ErrCartNotFound.
func (s *CartStore) Get(_ context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.RLock()
	e, ok := s.m[sessionID]
	s.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, cart.ErrCartNotFound
	}
	return cloneCart(e.cart), nil
}

// Put saves the cart, refreshing its TTL.
func (s *CartStore) Put(_ context.Context, sessionID string, c *cart.Cart) error {
	s.mu.Lock()
	s.m[sessionID] = cartEntry{cart: cloneCart(c), expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes the cart for the session.
func (s *CartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.m, sessionID)
	s.mu.Unlock()
	return nil
}

// StartJanitor launches a goroutine that sweeps expired entries at the given
// interval until ctx is cancelled.
func (s *CartStore) StartJanitor(ctx context.Context, interval time.Duration) {
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

func (s *CartStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.m {
		if now.After(e.expiresAt) {
			delete(s.m, id)
		}
	}
}

// cloneCart copies the cart so callers cannot mutate stored state through
// retained pointers.
func cloneCart(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Items = make([]cart.Item, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
