package session

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/domain"
)

var errBackendDown = errors.New("backend down")

// mockBackend implements every backend provider the terminal reads from.
type mockBackend struct {
	mu      sync.Mutex
	down    bool
	menu    domain.Menu
	methods []domain.PaymentMethod
	latest  string
	orders  []domain.Order
	tickets []domain.KitchenTicket
}

func (m *mockBackend) fail() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errBackendDown
	}
	return nil
}

func (m *mockBackend) setDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

func (m *mockBackend) update(fn func(m *mockBackend)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

func (m *mockBackend) GetMenuCategories(context.Context) ([]domain.Category, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	return m.menu.Categories, nil
}

func (m *mockBackend) GetMenuItems(context.Context) ([]domain.MenuItem, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	return m.menu.Items, nil
}

func (m *mockBackend) GetPaymentMethods(context.Context) ([]domain.PaymentMethod, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.methods, nil
}

func (m *mockBackend) GetLatestOrderNo(context.Context) (string, error) {
	if err := m.fail(); err != nil {
		return "", err
	}
	return m.latest, nil
}

func (m *mockBackend) GetOrdersPage(context.Context, backend.PageQuery) ([]domain.Order, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders, nil
}

func (m *mockBackend) GetOrderItems(context.Context, string) ([]domain.OrderItem, error) {
	return nil, nil
}

func (m *mockBackend) GetKitchenTickets(context.Context, int) ([]domain.KitchenTicket, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets, nil
}

// recordingRefresher counts refreshes per kind.
type recordingRefresher struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *recordingRefresher) record(kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[kind]++
	return nil
}

func (r *recordingRefresher) RefreshPaymentMethods(context.Context) error { return r.record("methods") }
func (r *recordingRefresher) RefreshRecentOrders(context.Context) error   { return r.record("orders") }
func (r *recordingRefresher) RefreshKitchenTickets(context.Context) error { return r.record("tickets") }
