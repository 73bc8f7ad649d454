package handler

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/metrics"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/adapter/storage"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"
	"github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/service"
)

type fakeCatalog struct {
	items map[int64]domain.Item
	mu    sync.Mutex
}

func (f *fakeCatalog) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (f *fakeCatalog) ListAvailableItems(ctx context.Context) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.Item
	for id := int64(1); id <= int64(len(f.items)); id++ {
		if it, ok := f.items[id]; ok && it.IsAvailable {
			items = append(items, it)
		}
	}
	return items, nil
}

func (f *fakeCatalog) setAvailable(itemID int64, available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := f.items[itemID]
	it.IsAvailable = available
	f.items[itemID] = it
}

type fakeOrders struct {
	orders []domain.Order
	mu     sync.Mutex
}

func (f *fakeOrders) CreateOrder(ctx context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = int64(len(f.orders) + 1)
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrders) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if orderID < 1 || orderID > int64(len(f.orders)) {
		return nil, nil
	}
	o := f.orders[orderID-1]
	return &o, nil
}

func (f *fakeOrders) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].UserID == userID {
			out = append(out, f.orders[i])
		}
	}
	return out, nil
}

func (f *fakeOrders) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Order, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		out = append(out, f.orders[i])
	}
	return out, nil
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if orderID < 1 || orderID > int64(len(f.orders)) {
		return false, nil
	}
	f.orders[orderID-1].Status = status
	return true, nil
}

type testApp struct {
	catalog  *fakeCatalog
	orders   *fakeOrders
	store    *storage.MemoryCartStore
	metrics  *metrics.Metrics
	cart     *service.CartService
	checkout *service.CheckoutService
	order    *service.OrderService
	menu     *service.CatalogService
}

func newTestApp() *testApp {
	image := "items/pizza.jpg"
	catalog := &fakeCatalog{items: map[int64]domain.Item{
		1: {ID: 1, Name: "Pizza", Price: decimal.RequireFromString("100.00"), Image: &image,
			Category: &domain.Category{ID: 1, Name: "Mains"}, CategoryID: 1, IsAvailable: true},
		2: {ID: 2, Name: "Salad", Price: decimal.RequireFromString("50.00"), CategoryID: 1, IsAvailable: true},
		3: {ID: 3, Name: "Soup", Price: decimal.RequireFromString("30.00"), CategoryID: 1, IsAvailable: false},
	}}
	app := &testApp{
		catalog: catalog,
		orders:  &fakeOrders{},
		store:   storage.NewMemoryCartStore(),
		metrics: metrics.New(),
	}
	app.cart = service.NewCartService(app.store, app.catalog)
	app.checkout = service.NewCheckoutService(app.store, app.catalog, app.orders, nil, service.RolePolicy)
	app.order = service.NewOrderService(app.orders, service.RolePolicy)
	app.menu = service.NewCatalogService(app.catalog)
	return app
}
