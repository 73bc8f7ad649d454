package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/port"
)

type CheckoutService struct {
	store   port.CartStore
	catalog port.Catalog
	orders  port.OrderRepository
	idem    port.IdempotencyStore
	can     CanFunc
	now     func() time.Time
}

// NewCheckoutService wires the orchestrator. idem may be nil, in which case
// idempotency keys are ignored.
func NewCheckoutService(store port.CartStore, catalog port.Catalog, orders port.OrderRepository, idem port.IdempotencyStore, can CanFunc) *CheckoutService {
	if can == nil {
		can = RolePolicy
	}
	return &CheckoutService{
		store:   store,
		catalog: catalog,
		orders:  orders,
		idem:    idem,
		can:     can,
		now:     time.Now,
	}
}

// Checkout turns the session's cart into a pending order. On any failure the
// cart is left inspectable; a line that failed revalidation is evicted.
func (s *CheckoutService) Checkout(ctx context.Context, sessionKey string, actor *domain.Actor, idempotencyKey string) (*domain.Order, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !s.can(actor, domain.ActionCheckout) {
		return nil, ErrForbidden
	}

	cart, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if idempotencyKey != "" && s.idem != nil {
		key := fmt.Sprintf("checkout:%d:%s", actor.UserID, idempotencyKey)
		ok, err := s.idem.SetIdempotency(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}

		order, err := s.place(ctx, sessionKey, actor, cart)
		if err != nil {
			if releaseErr := s.idem.ReleaseIdempotency(context.WithoutCancel(ctx), key); releaseErr != nil {
				log.Printf("checkout: failed to release idempotency key %s: %v", key, releaseErr)
			}
			return nil, err
		}
		return order, nil
	}

	return s.place(ctx, sessionKey, actor, cart)
}

func (s *CheckoutService) place(ctx context.Context, sessionKey string, actor *domain.Actor, cart domain.Cart) (*domain.Order, error) {
	if err := s.revalidate(ctx, sessionKey, cart); err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		UserID:      actor.UserID,
		TotalAmount: cart.Total(),
		Status:      domain.OrderStatusPending,
		Items:       make([]domain.OrderItem, 0, len(cart.Lines)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, l := range cart.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ItemID:    l.ItemID,
			ItemName:  l.Name,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	// The order is committed at this point; a failed clear must not fail the checkout.
	if err := s.store.Put(ctx, sessionKey, domain.Cart{}); err != nil {
		log.Printf("checkout: order %d placed but cart %s not cleared: %v", order.ID, sessionKey, err)
	}

	return order, nil
}

// revalidate checks each line against the live catalog in cart order and
// stops at the first item that is gone or unavailable, evicting it from the
// stored cart. Lookup errors count as the item being gone.
func (s *CheckoutService) revalidate(ctx context.Context, sessionKey string, cart domain.Cart) error {
	for _, line := range cart.Lines {
		item, err := s.catalog.GetItem(ctx, line.ItemID)
		if err != nil {
			log.Printf("checkout: catalog lookup for item %d failed: %v", line.ItemID, err)
		}
		if err == nil && item != nil && item.IsAvailable {
			continue
		}

		remaining := cart.Clone()
		remaining.Remove(line.ItemID)
		if err := s.store.Put(ctx, sessionKey, remaining); err != nil {
			return fmt.Errorf("evict item %d: %w", line.ItemID, err)
		}
		return &ItemNoLongerAvailableError{ItemID: line.ItemID, Name: line.Name}
	}
	return nil
}
