package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/greenbasket/pos/internal/domain"
	apperrors "github.com/greenbasket/pos/pkg/errors"
)

const (
	cartKeyPrefix = "pos:cart:"
	lockKeyPrefix = "pos:checkout:lock:"
)

// CartRepository stores session carts in Redis with a TTL, and doubles as the
// checkout submission guard via SETNX locks.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

// Get retrieves the cart for a terminal session.
func (r *CartRepository) Get(ctx context.Context, terminalID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+terminalID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", terminalID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

// Save stores the cart with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKeyPrefix+cart.TerminalID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Delete removes the session's cart.
func (r *CartRepository) Delete(ctx context.Context, terminalID string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+terminalID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

// Acquire takes the session's checkout lock. The TTL bounds how long a
// crashed submission can block the till.
func (r *CartRepository) Acquire(ctx context.Context, terminalID string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKeyPrefix+terminalID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis acquire checkout lock: %w", err)
	}
	return ok, nil
}

// Release frees the session's checkout lock.
func (r *CartRepository) Release(ctx context.Context, terminalID string) error {
	if err := r.client.Del(ctx, lockKeyPrefix+terminalID).Err(); err != nil {
		return fmt.Errorf("redis release checkout lock: %w", err)
	}
	return nil
}
