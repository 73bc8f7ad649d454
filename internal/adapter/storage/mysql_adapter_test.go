package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/foodorder?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	require.NoError(t, RunMigrations(db))
	t.Cleanup(func() { db.Close() })
	return db
}

// seedItem inserts a category and an item and returns the item id.
func seedItem(t *testing.T, db *sql.DB, name, price string, available bool) int64 {
	t.Helper()
	ctx := context.Background()

	res, err := db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`,
		name+"-cat-"+time.Now().Format("150405.000000000"))
	require.NoError(t, err)
	categoryID, _ := res.LastInsertId()

	res, err = db.ExecContext(ctx, `
		INSERT INTO items (name, description, price, image, category_id, is_available)
		VALUES (?, 'test item', ?, NULL, ?, ?)`, name, price, categoryID, available)
	require.NoError(t, err)
	itemID, _ := res.LastInsertId()

	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
		db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, categoryID)
	})
	return itemID
}

func TestGetItem(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	itemID := seedItem(t, db, "Pad Thai", "120.50", true)

	it, err := adapter.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	require.NotNil(t, it)

	assert.Equal(t, "Pad Thai", it.Name)
	assert.True(t, it.Price.Equal(decimal.RequireFromString("120.50")))
	assert.True(t, it.IsAvailable)
	assert.Nil(t, it.Image)
	require.NotNil(t, it.Category)
	assert.Equal(t, it.CategoryID, it.Category.ID)
}

func TestGetItem_NotFound(t *testing.T) {
	adapter := NewMySQLAdapter(getMySQLDB(t))

	it, err := adapter.GetItem(context.Background(), 1<<40)
	require.NoError(t, err)
	assert.Nil(t, it)
}

func TestListAvailableItems(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	available := seedItem(t, db, "Som Tam", "60.00", true)
	hidden := seedItem(t, db, "Sold Out", "10.00", false)

	items, err := adapter.ListAvailableItems(context.Background())
	require.NoError(t, err)

	ids := make(map[int64]bool)
	for _, it := range items {
		assert.True(t, it.IsAvailable)
		ids[it.ID] = true
	}
	assert.True(t, ids[available])
	assert.False(t, ids[hidden])
}

func TestCreateOrder_Success(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()
	first := seedItem(t, db, "Khao Soi", "100.00", true)
	second := seedItem(t, db, "Mango Rice", "50.00", true)

	now := time.Now().Truncate(time.Second)
	order := &domain.Order{
		UserID:      424242,
		TotalAmount: decimal.RequireFromString("350.00"),
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items: []domain.OrderItem{
			{ItemID: first, Quantity: 3, Price: decimal.RequireFromString("100.00"), CreatedAt: now, UpdatedAt: now},
			{ItemID: second, Quantity: 1, Price: decimal.RequireFromString("50.00"), CreatedAt: now, UpdatedAt: now},
		},
	}
	require.NoError(t, adapter.CreateOrder(ctx, order))
	t.Cleanup(func() { db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID) })

	assert.NotZero(t, order.ID)
	for _, it := range order.Items {
		assert.NotZero(t, it.ID)
		assert.Equal(t, order.ID, it.OrderID)
	}

	stored, err := adapter.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.TotalAmount.Equal(order.TotalAmount))
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Khao Soi", stored.Items[0].ItemName)

	sum := decimal.Zero
	for _, it := range stored.Items {
		sum = sum.Add(it.Subtotal())
	}
	assert.True(t, sum.Equal(stored.TotalAmount))
}

func TestCreateOrder_RollsBackOnItemFailure(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()
	itemID := seedItem(t, db, "Tom Yum", "80.00", true)
	userID := int64(time.Now().UnixNano() % 1_000_000_000)

	now := time.Now()
	order := &domain.Order{
		UserID:      userID,
		TotalAmount: decimal.RequireFromString("80.00"),
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items: []domain.OrderItem{
			{ItemID: itemID, Quantity: 1, Price: decimal.RequireFromString("80.00"), CreatedAt: now, UpdatedAt: now},
			// exceeds DECIMAL(10,2)
			{ItemID: itemID, Quantity: 1, Price: decimal.RequireFromString("999999999999.00"), CreatedAt: now, UpdatedAt: now},
		},
	}

	err := adapter.CreateOrder(ctx, order)
	require.Error(t, err)
	assert.Zero(t, order.ID)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&count))
	assert.Zero(t, count)
}

func TestListOrdersByUser_NewestFirst(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()
	userID := int64(time.Now().UnixNano()%1_000_000_000) + 1

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	var ids []int64
	for i := 0; i < 3; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		order := &domain.Order{
			UserID:      userID,
			TotalAmount: decimal.NewFromInt(int64(i + 1)),
			Status:      domain.OrderStatusPending,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		require.NoError(t, adapter.CreateOrder(ctx, order))
		ids = append(ids, order.ID)
	}
	t.Cleanup(func() { db.ExecContext(ctx, `DELETE FROM orders WHERE user_id = ?`, userID) })

	orders, err := adapter.ListOrdersByUser(ctx, userID, 2, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, ids[2], orders[0].ID)
	assert.Equal(t, ids[1], orders[1].ID)

	orders, err = adapter.ListOrdersByUser(ctx, userID, 2, 2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ids[0], orders[0].ID)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := getMySQLDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()

	now := time.Now()
	order := &domain.Order{
		UserID:      7,
		TotalAmount: decimal.NewFromInt(10),
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, adapter.CreateOrder(ctx, order))
	t.Cleanup(func() { db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID) })

	ok, err := adapter.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	// same status again still reports the order as found
	ok, err = adapter.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.UpdateOrderStatus(ctx, 1<<40, domain.OrderStatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := adapter.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, stored.Status)
}
