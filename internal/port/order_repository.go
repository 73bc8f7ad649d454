package port

import (
	"context"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists the order and its items in one transaction and
	// assigns the generated ids
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder retrieves an order with its items, or nil if it does not exist
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)

	// ListOrdersByUser returns a user's orders, newest first
	ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)

	// ListOrders returns all orders, newest first
	ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error)

	// UpdateOrderStatus changes the status, returns false if the order does not exist
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (bool, error)
}
