package storage

import (
	"context"
	"sync"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

// MemoryCartStore is a process-local CartStore for development and tests.
// Carts are copied on the way in and out so callers never share line storage.
type MemoryCartStore struct {
	carts map[string]domain.Cart
	mu    sync.RWMutex
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]domain.Cart)}
}

func (m *MemoryCartStore) Get(ctx context.Context, sessionKey string) (domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.carts[sessionKey].Clone(), nil
}

func (m *MemoryCartStore) Put(ctx context.Context, sessionKey string, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cart.IsEmpty() {
		delete(m.carts, sessionKey)
		return nil
	}
	m.carts[sessionKey] = cart.Clone()
	return nil
}
