package service

import (
	"context"
	"fmt"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/port"
)

type CartService struct {
	store   port.CartStore
	catalog port.Catalog
}

func NewCartService(store port.CartStore, catalog port.Catalog) *CartService {
	return &CartService{
		store:   store,
		catalog: catalog,
	}
}

func (s *CartService) Add(ctx context.Context, sessionKey string, itemID int64, quantity int) error {
	if itemID <= 0 {
		return validationError("item_id must be positive")
	}
	if quantity < domain.MinLineQuantity || quantity > domain.MaxLineQuantity {
		return validationError("quantity must be between %d and %d", domain.MinLineQuantity, domain.MaxLineQuantity)
	}

	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("catalog lookup failed: %w", err)
	}
	if item == nil {
		return ErrNotFound
	}
	if !item.IsAvailable {
		return fmt.Errorf("%w: %s", ErrUnavailable, item.Name)
	}

	cart, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	cart.Add(domain.NewCartLine(*item, quantity))

	if err := s.store.Put(ctx, sessionKey, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Zero removes the line.
// Unknown items are left alone.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionKey string, itemID int64, quantity int) (domain.CartProjection, error) {
	if itemID <= 0 {
		return domain.CartProjection{}, validationError("item_id must be positive")
	}
	if quantity < 0 || quantity > domain.MaxLineQuantity {
		return domain.CartProjection{}, validationError("quantity must be between 0 and %d", domain.MaxLineQuantity)
	}

	cart, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return domain.CartProjection{}, fmt.Errorf("load cart: %w", err)
	}

	var changed bool
	if quantity == 0 {
		changed = cart.Remove(itemID)
	} else {
		changed = cart.SetQuantity(itemID, quantity)
	}

	if changed {
		if err := s.store.Put(ctx, sessionKey, cart); err != nil {
			return domain.CartProjection{}, fmt.Errorf("save cart: %w", err)
		}
	}
	return domain.Project(cart), nil
}

func (s *CartService) Remove(ctx context.Context, sessionKey string, itemID int64) (domain.CartProjection, error) {
	cart, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return domain.CartProjection{}, fmt.Errorf("load cart: %w", err)
	}

	if cart.Remove(itemID) {
		if err := s.store.Put(ctx, sessionKey, cart); err != nil {
			return domain.CartProjection{}, fmt.Errorf("save cart: %w", err)
		}
	}
	return domain.Project(cart), nil
}

func (s *CartService) Clear(ctx context.Context, sessionKey string) error {
	if err := s.store.Put(ctx, sessionKey, domain.Cart{}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) Get(ctx context.Context, sessionKey string) (domain.CartProjection, error) {
	cart, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return domain.CartProjection{}, fmt.Errorf("load cart: %w", err)
	}
	return domain.Project(cart), nil
}
