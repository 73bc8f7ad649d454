package service

import (
	"context"
	"fmt"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/port"
)

const OrdersPageSize = 10

type OrderService struct {
	orders port.OrderRepository
	can    CanFunc
}

func NewOrderService(orders port.OrderRepository, can CanFunc) *OrderService {
	if can == nil {
		can = RolePolicy
	}
	return &OrderService{
		orders: orders,
		can:    can,
	}
}

func (s *OrderService) ListForUser(ctx context.Context, actor *domain.Actor, page int) ([]domain.Order, error) {
	if err := s.authorize(actor, domain.ActionViewOrders); err != nil {
		return nil, err
	}

	limit, offset := pageBounds(page)
	orders, err := s.orders.ListOrdersByUser(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns an order owned by the actor. Admins may read any order.
func (s *OrderService) Get(ctx context.Context, actor *domain.Actor, orderID int64) (*domain.Order, error) {
	if err := s.authorize(actor, domain.ActionViewOrders); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.UserID != actor.UserID && !s.can(actor, domain.ActionManageOrders) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) AdminList(ctx context.Context, actor *domain.Actor, page int) ([]domain.Order, error) {
	if err := s.authorize(actor, domain.ActionManageOrders); err != nil {
		return nil, err
	}

	limit, offset := pageBounds(page)
	orders, err := s.orders.ListOrders(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, actor *domain.Actor, orderID int64, status domain.OrderStatus) error {
	if err := s.authorize(actor, domain.ActionManageOrders); err != nil {
		return err
	}
	if !status.Valid() {
		return validationError("unknown order status %q", status)
	}

	ok, err := s.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *OrderService) authorize(actor *domain.Actor, action domain.Action) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !s.can(actor, action) {
		return ErrForbidden
	}
	return nil
}

func pageBounds(page int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return OrdersPageSize, (page - 1) * OrdersPageSize
}
