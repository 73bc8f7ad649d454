package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

const itemColumns = `
	i.id, i.name, i.description, i.price, i.image, i.category_id, i.is_available,
	i.created_at, i.updated_at, c.id, c.name`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var (
		it           domain.Item
		image        sql.NullString
		categoryID   sql.NullInt64
		categoryName sql.NullString
	)
	err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.Price, &image, &it.CategoryID, &it.IsAvailable,
		&it.CreatedAt, &it.UpdatedAt, &categoryID, &categoryName,
	)
	if err != nil {
		return domain.Item{}, err
	}
	if image.Valid {
		it.Image = &image.String
	}
	if categoryID.Valid {
		it.Category = &domain.Category{ID: categoryID.Int64, Name: categoryName.String}
	}
	return it, nil
}

func (m *MySQLAdapter) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT`+itemColumns+`
		FROM items i LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.id = ?`, itemID,
	)

	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &it, nil
}

func (m *MySQLAdapter) ListAvailableItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT`+itemColumns+`
		FROM items i LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.is_available = TRUE
		ORDER BY i.created_at DESC, i.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// CreateOrder writes the order row and all item rows in one transaction.
// Nothing is committed unless every insert succeeds.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, total_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.TotalAmount, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}

	for i := range order.Items {
		it := &order.Items[i]
		result, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, quantity, price, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			orderID, it.ItemID, it.Quantity, it.Price, it.CreatedAt, it.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", it.ItemID, err)
		}
		if it.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("order item id: %w", err)
		}
		it.OrderID = orderID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	order.ID = orderID
	return nil
}

const orderColumns = `id, user_id, total_amount, status, created_at, updated_at`

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	orders := []domain.Order{order}
	if err := m.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (m *MySQLAdapter) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	return m.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, userID, limit, offset,
	)
}

func (m *MySQLAdapter) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return m.listOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset,
	)
}

func (m *MySQLAdapter) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if err := m.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of all given orders with a single query.
func (m *MySQLAdapter) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	index := make(map[int64]int, len(orders))
	args := make([]any, 0, len(orders))
	for i, o := range orders {
		index[o.ID] = i
		args = append(args, o.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(orders)), ",")

	rows, err := m.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.item_id, COALESCE(i.name, ''), oi.quantity, oi.price,
		       oi.created_at, oi.updated_at
		FROM order_items oi LEFT JOIN items i ON i.id = oi.item_id
		WHERE oi.order_id IN (`+placeholders+`)
		ORDER BY oi.order_id, oi.id`, args...,
	)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ItemID, &it.ItemName, &it.Quantity, &it.Price,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), orderID,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return true, nil
	}

	// MySQL reports zero affected rows when nothing changed
	var exists bool
	err = m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, orderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order: %w", err)
	}
	return exists, nil
}
