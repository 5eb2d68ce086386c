package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/receipt"
	"github.com/fjod/go_pos/internal/repository"
)

// mockOrderAPI implements backend.OrderAPI for testing
type mockOrderAPI struct {
	mu sync.Mutex

	CreateErr   error
	ItemErr     error
	ItemErrAt   int // 1-based index of the failing item, 0 for none
	UpdateErr   error
	Latest      string
	LatestErr   error
	CreateGate  chan struct{} // when set, CreateOrder waits for it
	CreateEnter chan struct{} // when set, signalled as CreateOrder starts

	Orders  []*domain.Order
	Items   []*domain.OrderItem
	Updates map[string]map[string]any
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if m.CreateEnter != nil {
		m.CreateEnter <- struct{}{}
	}
	if m.CreateGate != nil {
		select {
		case <-m.CreateGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	cp := *order
	m.Orders = append(m.Orders, &cp)
	return &domain.Order{ID: fmt.Sprintf("srv-%d", len(m.Orders)), OrderNo: order.OrderNo}, nil
}

func (m *mockOrderAPI) CreateOrderItem(_ context.Context, item *domain.OrderItem) (*domain.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ItemErrAt > 0 && len(m.Items)+1 == m.ItemErrAt {
		return nil, m.ItemErr
	}
	cp := *item
	m.Items = append(m.Items, &cp)
	return &cp, nil
}

func (m *mockOrderAPI) UpdateOrder(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if m.Updates == nil {
		m.Updates = map[string]map[string]any{}
	}
	m.Updates[id] = fields
	return nil
}

func (m *mockOrderAPI) GetLatestOrderNo(context.Context) (string, error) {
	return m.Latest, m.LatestErr
}

func (m *mockOrderAPI) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}

// mockStorage implements backend.Storage for testing
type mockStorage struct {
	mu      sync.Mutex
	Err     error
	Uploads []upload
}

type upload struct {
	FileName, ContentType, Folder string
	Body                          []byte
}

func (m *mockStorage) Upload(_ context.Context, fileName, contentType string, body []byte, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Uploads = append(m.Uploads, upload{fileName, contentType, folder, body})
	return "https://cdn.example/" + folder + "/" + fileName, nil
}

// mockRenderer implements ReceiptRenderer for testing
type mockRenderer struct {
	Err       error
	Snapshots []receipt.Snapshot
}

func (m *mockRenderer) RenderPNG(_ context.Context, s receipt.Snapshot) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Snapshots = append(m.Snapshots, s)
	return []byte("png:" + s.OrderNo), nil
}

// mockJournal implements repository.Journal for testing
type mockJournal struct {
	mu       sync.Mutex
	Err      error
	Recorded []*repository.PendingReceipt
}

func (m *mockJournal) RecordPending(_ context.Context, p *repository.PendingReceipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Recorded = append(m.Recorded, p)
	return nil
}

func (m *mockJournal) ListPending(context.Context, int) ([]*repository.PendingReceipt, error) {
	return nil, errors.New("not used")
}

func (m *mockJournal) MarkAttempt(context.Context, string, error) error { return nil }

func (m *mockJournal) MarkResolved(context.Context, string, string) error { return nil }

func (m *mockJournal) Close() error { return nil }

func (m *mockJournal) RunMigrations() error { return nil }
