package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
)

var errStoreDown = errors.New("store down")

// Mock CartStore
type mockCartStore struct {
	carts   map[string]domain.Cart
	puts    int
	failPut bool
	mu      sync.Mutex
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]domain.Cart)}
}

func (m *mockCartStore) Get(ctx context.Context, sessionKey string) (domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts[sessionKey].Clone(), nil
}

func (m *mockCartStore) Put(ctx context.Context, sessionKey string, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPut {
		return errStoreDown
	}
	m.puts++
	if cart.IsEmpty() {
		delete(m.carts, sessionKey)
		return nil
	}
	m.carts[sessionKey] = cart.Clone()
	return nil
}

func (m *mockCartStore) cart(sessionKey string) *domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.carts[sessionKey].Clone()
	return &c
}

// Mock Catalog
type mockCatalog struct {
	items   map[int64]domain.Item
	failing map[int64]bool
	mu      sync.Mutex
}

func newMockCatalog(items ...domain.Item) *mockCatalog {
	c := &mockCatalog{
		items:   make(map[int64]domain.Item),
		failing: make(map[int64]bool),
	}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (m *mockCatalog) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing[itemID] {
		return nil, errStoreDown
	}
	it, ok := m.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *mockCatalog) ListAvailableItems(ctx context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []domain.Item
	for _, it := range m.items {
		if it.IsAvailable {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (m *mockCatalog) setAvailable(itemID int64, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := m.items[itemID]
	it.IsAvailable = available
	m.items[itemID] = it
}

func (m *mockCatalog) remove(itemID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, itemID)
}

// Mock OrderRepository. CreateOrder is all-or-nothing like the SQL adapter.
type mockOrderRepo struct {
	orders     map[int64]domain.Order
	nextID     int64
	failCreate bool
	mu         sync.Mutex
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[int64]domain.Order)}
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreate {
		return errStoreDown
	}
	m.nextID++
	order.ID = m.nextID
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.ID] = stored
	return nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *mockOrderRepo) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	var owned []domain.Order
	for _, o := range m.sorted() {
		if o.UserID == userID {
			owned = append(owned, o)
		}
	}
	return paginate(owned, limit, offset), nil
}

func (m *mockOrderRepo) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return paginate(m.sorted(), limit, offset), nil
}

func (m *mockOrderRepo) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return false, nil
	}
	o.Status = status
	m.orders[orderID] = o
	return true, nil
}

func (m *mockOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *mockOrderRepo) sorted() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders
}

func paginate(orders []domain.Order, limit, offset int) []domain.Order {
	if offset >= len(orders) {
		return nil
	}
	end := min(offset+limit, len(orders))
	return orders[offset:end]
}

// Mock IdempotencyStore
type mockIdempotency struct {
	keys map[string]bool
	mu   sync.Mutex
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{keys: make(map[string]bool)}
}

func (m *mockIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockIdempotency) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func item(id int64, name, price string) domain.Item {
	return domain.Item{
		ID:          id,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
	}
}
