package publisher

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/receipt"
	"github.com/fjod/go_pos/internal/repository"
)

type MockJournal struct {
	Pending     []*repository.PendingReceipt
	ListErr     error
	ResolveErr  error
	ListLimit   int
	ListCalls   atomic.Int32
	Attempts    map[string]string
	ResolvedURL map[string]string
}

func (m *MockJournal) RecordPending(_ context.Context, p *repository.PendingReceipt) error {
	m.Pending = append(m.Pending, p)
	return nil
}

func (m *MockJournal) ListPending(_ context.Context, limit int) ([]*repository.PendingReceipt, error) {
	m.ListLimit = limit
	m.ListCalls.Add(1)
	return m.Pending, m.ListErr
}

func (m *MockJournal) MarkAttempt(_ context.Context, id string, cause error) error {
	if m.Attempts == nil {
		m.Attempts = map[string]string{}
	}
	m.Attempts[id] = cause.Error()
	return nil
}

func (m *MockJournal) MarkResolved(_ context.Context, id, url string) error {
	if m.ResolveErr != nil {
		return m.ResolveErr
	}
	if m.ResolvedURL == nil {
		m.ResolvedURL = map[string]string{}
	}
	m.ResolvedURL[id] = url
	return nil
}

func (m *MockJournal) Close() error         { return nil }
func (m *MockJournal) RunMigrations() error { return nil }

// MockIssuer fails for order ids listed in FailFor.
type MockIssuer struct {
	FailFor map[string]bool
	Issued  []receipt.Snapshot
}

func (m *MockIssuer) Issue(_ context.Context, orderID string, s receipt.Snapshot) (checkout.Issued, error) {
	if m.FailFor[orderID] {
		return checkout.Issued{}, errors.New("storage unavailable")
	}
	m.Issued = append(m.Issued, s)
	return checkout.Issued{PNG: []byte("png"), URL: "https://cdn.example/receipts/" + s.FileName()}, nil
}
