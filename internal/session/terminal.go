// Package session ties one register together: catalog, payment methods,
// order numbering, the checkout flow and the realtime feed.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/realtime"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentOrdersLimit   = 20
	kitchenTicketsLimit = 100
)

var ErrAlreadyStarted = errors.New("terminal already started")

type Deps struct {
	Catalog  *catalog.Service
	Methods  backend.PaymentMethodProvider
	Orders   checkout.LatestOrderNoSource
	Sales    backend.SalesProvider
	Kitchen  backend.KitchenProvider
	Realtime realtime.Channel
	Checkout *checkout.Orchestrator
	Counter  *checkout.OrderCounter
}

// Terminal is the state shared by every screen of one register.
type Terminal struct {
	deps     Deps
	log      *zap.Logger
	listener *Listener

	mu      sync.RWMutex
	recent  []domain.Order
	tickets []domain.KitchenTicket
	sub     *realtime.Subscription
	done    chan struct{}
}

func NewTerminal(deps Deps, log *zap.Logger) *Terminal {
	if deps.Realtime == nil {
		deps.Realtime = realtime.Nop{}
	}
	t := &Terminal{deps: deps, log: log}
	t.listener = NewListener(t, log)
	return t
}

// Start loads the catalog, the payment methods and the latest order number
// in parallel. Each one falls back on its own when the backend fails: an
// empty menu, no payment methods, numbering from 1. Start then subscribes
// to the realtime feed; without it the terminal keeps working on what it
// loaded.
func (t *Terminal) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.sub != nil {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := t.deps.Catalog.Load(gctx); err != nil {
			t.log.Warn("menu unavailable, starting with an empty catalog", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := t.RefreshPaymentMethods(gctx); err != nil {
			t.deps.Checkout.SetPaymentMethods(nil)
		}
		return nil
	})
	g.Go(func() error {
		latest, err := t.deps.Orders.GetLatestOrderNo(gctx)
		if err != nil {
			t.log.Warn("latest order number unavailable, numbering starts at 1", zap.Error(err))
			return nil
		}
		t.deps.Counter.AdvanceTo(checkout.NextAfter(latest))
		return nil
	})
	// Failures leave these lists empty until the next refresh.
	g.Go(func() error {
		_ = t.RefreshRecentOrders(gctx)
		return nil
	})
	g.Go(func() error {
		_ = t.RefreshKitchenTickets(gctx)
		return nil
	})
	_ = g.Wait()

	t.log.Info("terminal ready",
		zap.Int("menu_items", len(t.deps.Catalog.Current().Menu().Items)),
		zap.Int("payment_methods", len(t.deps.Checkout.PaymentMethods())),
		zap.String("next_order_no", t.deps.Counter.Next()),
		zap.Int("recent_orders", len(t.RecentOrders())),
		zap.Int("kitchen_tickets", len(t.KitchenTickets())))

	sub, err := t.deps.Realtime.Subscribe(context.WithoutCancel(ctx), domain.AllEvents...)
	if err != nil {
		t.log.Warn("realtime feed unavailable", zap.Error(err))
		sub, _ = realtime.Nop{}.Subscribe(context.WithoutCancel(ctx))
	}

	done := make(chan struct{})
	t.mu.Lock()
	t.sub = sub
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)
		for e := range sub.Events() {
			t.listener.Handle(context.Background(), e)
		}
	}()
	return nil
}

// Stop unsubscribes from the realtime feed and waits for the listener.
func (t *Terminal) Stop() error {
	t.mu.Lock()
	sub, done := t.sub, t.done
	t.sub, t.done = nil, nil
	t.mu.Unlock()

	if sub == nil {
		return nil
	}
	err := sub.Close()
	<-done
	return err
}

func (t *Terminal) Catalog() *catalog.Catalog { return t.deps.Catalog.Current() }

func (t *Terminal) CatalogService() *catalog.Service { return t.deps.Catalog }

func (t *Terminal) Checkout() *checkout.Orchestrator { return t.deps.Checkout }

// Confirm settles the open checkout and then reloads the recent orders so
// the new order shows up without waiting for a realtime event.
func (t *Terminal) Confirm(ctx context.Context) (*checkout.Result, error) {
	result, err := t.deps.Checkout.Confirm(ctx)
	if err != nil {
		return nil, err
	}
	_ = t.RefreshRecentOrders(ctx)
	return result, nil
}

// RefreshPaymentMethods replaces the known methods. On failure the
// previous ones stay.
func (t *Terminal) RefreshPaymentMethods(ctx context.Context) error {
	methods, err := t.deps.Methods.GetPaymentMethods(ctx)
	if err != nil {
		t.log.Warn("payment methods unavailable", zap.Error(err))
		return err
	}
	t.deps.Checkout.SetPaymentMethods(methods)
	return nil
}

func (t *Terminal) RefreshRecentOrders(ctx context.Context) error {
	if t.deps.Sales == nil {
		return nil
	}
	orders, err := t.deps.Sales.GetOrdersPage(ctx, backend.PageQuery{Limit: recentOrdersLimit})
	if err != nil {
		t.log.Warn("recent orders unavailable", zap.Error(err))
		return err
	}
	t.mu.Lock()
	t.recent = orders
	t.mu.Unlock()
	return nil
}

func (t *Terminal) RefreshKitchenTickets(ctx context.Context) error {
	if t.deps.Kitchen == nil {
		return nil
	}
	tickets, err := t.deps.Kitchen.GetKitchenTickets(ctx, kitchenTicketsLimit)
	if err != nil {
		t.log.Warn("kitchen tickets unavailable", zap.Error(err))
		return err
	}
	t.mu.Lock()
	t.tickets = tickets
	t.mu.Unlock()
	return nil
}

func (t *Terminal) RecentOrders() []domain.Order {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.Order(nil), t.recent...)
}

func (t *Terminal) KitchenTickets() []domain.KitchenTicket {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.KitchenTicket(nil), t.tickets...)
}
