package report

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/domain"
)

type MockSales struct {
	mu       sync.Mutex
	Orders   []domain.Order
	OrderErr error
	Items    map[string][]domain.OrderItem
	ItemErr  map[string]bool
	Queries  []backend.PageQuery
}

func (m *MockSales) GetOrdersPage(_ context.Context, q backend.PageQuery) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, q)
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	if q.Offset >= len(m.Orders) {
		return []domain.Order{}, nil
	}
	end := min(q.Offset+q.Limit, len(m.Orders))
	return m.Orders[q.Offset:end], nil
}

func (m *MockSales) GetOrderItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	if m.ItemErr[orderID] {
		return nil, errors.New("items unavailable")
	}
	return m.Items[orderID], nil
}

type MockFinance struct {
	Expenses   []domain.Expense
	Income     []domain.Income
	ExpenseErr error
	Created    []any
}

func (m *MockFinance) GetExpenses(context.Context, int) ([]domain.Expense, error) {
	return m.Expenses, m.ExpenseErr
}

func (m *MockFinance) GetIncome(context.Context, int) ([]domain.Income, error) {
	return m.Income, nil
}

func (m *MockFinance) CreateExpense(_ context.Context, e *domain.Expense) (*domain.Expense, error) {
	m.Created = append(m.Created, e)
	out := *e
	out.ID = "exp-1"
	return &out, nil
}

func (m *MockFinance) CreateIncome(_ context.Context, i *domain.Income) (*domain.Income, error) {
	m.Created = append(m.Created, i)
	out := *i
	out.ID = "inc-1"
	return &out, nil
}
