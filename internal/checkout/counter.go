package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_pos/internal/domain"
	"go.uber.org/zap"
)

type LatestOrderNoSource interface {
	GetLatestOrderNo(ctx context.Context) (string, error)
}

// OrderCounter holds the number the next order will get. It only moves
// forward, once per persisted order.
type OrderCounter struct {
	mu sync.Mutex
	n  int
}

func NewOrderCounter(start int) *OrderCounter {
	if start < 1 {
		start = 1
	}
	return &OrderCounter{n: start}
}

// SeedOrderCounter starts the counter after the most recent order known to
// the backend. Any failure starts it at 1.
func SeedOrderCounter(ctx context.Context, src LatestOrderNoSource, log *zap.Logger) *OrderCounter {
	latest, err := src.GetLatestOrderNo(ctx)
	if err != nil {
		log.Warn("latest order number unavailable, numbering starts at 1", zap.Error(err))
		return NewOrderCounter(1)
	}
	return NewOrderCounter(NextAfter(latest))
}

// NextAfter returns the counter value following an existing order number:
// its numeric suffix plus one, or 1 when it is not an ORD number.
func NextAfter(latest string) int {
	n, ok := domain.ParseOrderNo(latest)
	if !ok {
		return 1
	}
	return n + 1
}

func (c *OrderCounter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Next is the formatted number of the order being prepared.
func (c *OrderCounter) Next() string {
	return domain.FormatOrderNo(c.Current())
}

func (c *OrderCounter) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

// AdvanceTo moves the counter forward to n. Smaller values are ignored.
func (c *OrderCounter) AdvanceTo(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.n {
		c.n = n
	}
}
