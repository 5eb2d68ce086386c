package session

import (
	"context"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/realtime"
	"go.uber.org/zap"
)

const refreshTimeout = 10 * time.Second

type refresher interface {
	RefreshPaymentMethods(ctx context.Context) error
	RefreshRecentOrders(ctx context.Context) error
	RefreshKitchenTickets(ctx context.Context) error
}

// Listener maps pushed events to the state they invalidate. It never
// touches the cart.
type Listener struct {
	target refresher
	log    *zap.Logger
}

func NewListener(target refresher, log *zap.Logger) *Listener {
	return &Listener{target: target, log: log}
}

// Handle refreshes what e affects. Refresh failures are logged by the
// target and the previous state is kept.
func (l *Listener) Handle(ctx context.Context, e realtime.Event) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	l.log.Debug("realtime event", zap.String("event", e.Name))
	switch e.Name {
	case domain.EventOrderUpdated:
		_ = l.target.RefreshPaymentMethods(ctx)
	case domain.EventOrderCreated:
		_ = l.target.RefreshRecentOrders(ctx)
	case domain.EventKitchenTicketCreated, domain.EventKitchenTicketUpdated:
		_ = l.target.RefreshKitchenTickets(ctx)
	default:
		l.log.Debug("ignoring realtime event", zap.String("event", e.Name))
	}
}
