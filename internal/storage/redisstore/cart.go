// Package redisstore provides Redis-backed implementations of the cart and
// admin session stores for deployments with more than one API instance.
// Values are stored as JSON with a TTL; cart TTLs get a random jitter so a
// burst of sessions does not expire in one spike.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/solodko/storefront/internal/domain/cart"
)

const cartTTLJitter = 5 * time.Minute

var _ cart.Store = (*CartStore)(nil)

// CartStore keeps session carts in Redis under "cart:<session>" keys.
type CartStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewCartStore creates a CartStore with the given base TTL.
func NewCartStore(client *redis.Client, baseTTL time.Duration) *CartStore {
	return &CartStore{client: client, baseTTL: baseTTL}
}

// Get returns the cart for the session, or cart.ErrCartNotFound.
func (s *CartStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

// Put saves the cart, refreshing its TTL.
func (s *CartStore) Put(ctx context.Context, sessionID string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	ttl := s.baseTTL + time.Duration(rand.Int63n(int64(cartTTLJitter)))
	if err := s.client.Set(ctx, cartKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Delete removes the cart for the session.
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}
