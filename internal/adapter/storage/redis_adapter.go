package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

const (
	cartKeyPrefix        = "cart:"
	idempotencyKeyPrefix = "idempotency:"

	DefaultCartTTL        = 7 * 24 * time.Hour
	DefaultIdempotencyTTL = 24 * time.Hour
)

// RedisAdapter keeps carts as JSON values keyed by session. Every write
// refreshes the TTL, so a cart lives as long as its session is active.
type RedisAdapter struct {
	client         *redis.Client
	cartTTL        time.Duration
	idempotencyTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, cartTTL, idempotencyTTL time.Duration) *RedisAdapter {
	if cartTTL <= 0 {
		cartTTL = DefaultCartTTL
	}
	if idempotencyTTL <= 0 {
		idempotencyTTL = DefaultIdempotencyTTL
	}
	return &RedisAdapter{
		client:         client,
		cartTTL:        cartTTL,
		idempotencyTTL: idempotencyTTL,
	}
}

func (r *RedisAdapter) Get(ctx context.Context, sessionKey string) (domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return cart, nil
}

func (r *RedisAdapter) Put(ctx context.Context, sessionKey string, cart domain.Cart) error {
	key := cartKeyPrefix + sessionKey

	if cart.IsEmpty() {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, key, data, r.cartTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, r.idempotencyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
