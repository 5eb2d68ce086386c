package http

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/receipt"
	"github.com/fjod/go_pos/internal/report"
)

// fakeBackend stands in for every backend API the till talks to.
type fakeBackend struct {
	mu        sync.Mutex
	menu      domain.Menu
	methods   []domain.PaymentMethod
	createErr error
	orders    []*domain.Order
	items     []*domain.OrderItem
	updates   map[string]map[string]any
	uploads   []string
}

func (f *fakeBackend) GetMenuCategories(context.Context) ([]domain.Category, error) {
	return f.menu.Categories, nil
}

func (f *fakeBackend) GetMenuItems(context.Context) ([]domain.MenuItem, error) {
	return f.menu.Items, nil
}

func (f *fakeBackend) GetPaymentMethods(context.Context) ([]domain.PaymentMethod, error) {
	return f.methods, nil
}

func (f *fakeBackend) GetLatestOrderNo(context.Context) (string, error) {
	return "", nil
}

func (f *fakeBackend) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *order
	stored.ID = fmt.Sprintf("srv-%d", len(f.orders)+1)
	f.orders = append(f.orders, &stored)
	return &stored, nil
}

func (f *fakeBackend) CreateOrderItem(_ context.Context, item *domain.OrderItem) (*domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeBackend) UpdateOrder(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = map[string]map[string]any{}
	}
	f.updates[id] = fields
	return nil
}

func (f *fakeBackend) Upload(_ context.Context, fileName, _ string, _ []byte, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, fileName)
	return "https://cdn.example/" + folder + "/" + fileName, nil
}

// GetOrdersPage returns the created orders newest first.
func (f *fakeBackend) GetOrdersPage(context.Context, backend.PageQuery) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Order, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		out = append(out, *f.orders[i])
	}
	return out, nil
}

func (f *fakeBackend) GetOrderItems(context.Context, string) ([]domain.OrderItem, error) {
	return nil, nil
}

func (f *fakeBackend) GetKitchenTickets(context.Context, int) ([]domain.KitchenTicket, error) {
	return nil, nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderPNG(_ context.Context, s receipt.Snapshot) ([]byte, error) {
	return []byte("png:" + s.OrderNo), nil
}

// mockReports records the last query it was asked.
type mockReports struct {
	dashboard report.Dashboard
	orders    []domain.Order
	stats     []report.MenuStat
	err       error

	lastQuery report.Query
	lastRange report.Range
	entries   []report.EntryInput
}

var errInvalidAmount = fmt.Errorf("%w: amount must be greater than 0", report.ErrInvalidEntry)

func (m *mockReports) Dashboard(_ context.Context, q report.Query) (report.Dashboard, error) {
	m.lastQuery = q
	return m.dashboard, m.err
}

func (m *mockReports) Orders(_ context.Context, r report.Range) ([]domain.Order, error) {
	m.lastRange = r
	return m.orders, m.err
}

func (m *mockReports) MenuSales(_ context.Context, r report.Range) ([]report.MenuStat, error) {
	m.lastRange = r
	return m.stats, m.err
}

func (m *mockReports) RecordExpense(_ context.Context, in report.EntryInput) (*domain.Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, errInvalidAmount
	}
	m.entries = append(m.entries, in)
	return &domain.Expense{ID: "exp-1", Description: in.Description, Amount: in.Amount}, nil
}

func (m *mockReports) RecordIncome(_ context.Context, in report.EntryInput) (*domain.Income, error) {
	if !in.Amount.IsPositive() {
		return nil, errInvalidAmount
	}
	m.entries = append(m.entries, in)
	return &domain.Income{ID: "inc-1", Description: in.Description, Amount: in.Amount}, nil
}

func (m *mockReports) Location() *time.Location { return time.UTC }

var errUnreachable = errors.New("dial tcp: connection refused")
