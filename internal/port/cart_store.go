package port

import (
	"context"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

type CartStore interface {
	// Get returns the cart for a session key, or an empty cart if none exists
	Get(ctx context.Context, sessionKey string) (domain.Cart, error)

	// Put replaces the stored cart; an empty cart removes the session's entry
	Put(ctx context.Context, sessionKey string, cart domain.Cart) error
}

type IdempotencyStore interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes a key so a failed attempt can be retried
	ReleaseIdempotency(ctx context.Context, key string) error
}
