// Package backend talks to the POS REST API that owns menus, orders,
// payments, finance records and file storage.
package backend

import (
	"context"
	"time"

	"github.com/fjod/go_pos/internal/domain"
)

type CatalogProvider interface {
	GetMenuCategories(ctx context.Context) ([]domain.Category, error)
	GetMenuItems(ctx context.Context) ([]domain.MenuItem, error)
}

type PaymentMethodProvider interface {
	GetPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
}

// OrderAPI persists orders. CreateOrder returns the record as stored, whose
// ID is the one order items must reference.
type OrderAPI interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	CreateOrderItem(ctx context.Context, item *domain.OrderItem) (*domain.OrderItem, error)
	UpdateOrder(ctx context.Context, id string, fields map[string]any) error
	GetLatestOrderNo(ctx context.Context) (string, error)
}

// Storage uploads a file and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, fileName, contentType string, body []byte, folder string) (string, error)
}

type KitchenProvider interface {
	GetKitchenTickets(ctx context.Context, limit int) ([]domain.KitchenTicket, error)
}

type PageQuery struct {
	Limit  int
	Offset int
	From   time.Time
	To     time.Time
}

type SalesProvider interface {
	GetOrdersPage(ctx context.Context, q PageQuery) ([]domain.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
}

type FinanceAPI interface {
	GetExpenses(ctx context.Context, limit int) ([]domain.Expense, error)
	GetIncome(ctx context.Context, limit int) ([]domain.Income, error)
	CreateExpense(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	CreateIncome(ctx context.Context, i *domain.Income) (*domain.Income, error)
}

var (
	_ CatalogProvider       = (*Client)(nil)
	_ PaymentMethodProvider = (*Client)(nil)
	_ OrderAPI              = (*Client)(nil)
	_ Storage               = (*Client)(nil)
	_ KitchenProvider       = (*Client)(nil)
	_ SalesProvider         = (*Client)(nil)
	_ FinanceAPI            = (*Client)(nil)
)
