// Package publisher retries the receipt uploads that failed at checkout.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/receipt"
	"github.com/fjod/go_pos/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize   = 50
	DefaultMaxAttempts = 10
)

type ReceiptIssuer interface {
	Issue(ctx context.Context, orderID string, s receipt.Snapshot) (checkout.Issued, error)
}

// ReceiptBackfiller walks the pending-receipt journal and issues what is
// missing. Entries that failed MaxAttempts times are left for an operator.
type ReceiptBackfiller struct {
	journal     repository.Journal
	issuer      ReceiptIssuer
	tick        time.Duration
	batchSize   int
	maxAttempts int
	log         *zap.Logger
}

func NewReceiptBackfiller(journal repository.Journal, issuer ReceiptIssuer, tick time.Duration, log *zap.Logger) *ReceiptBackfiller {
	return &ReceiptBackfiller{
		journal:     journal,
		issuer:      issuer,
		tick:        tick,
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultMaxAttempts,
		log:         log,
	}
}

// Run processes the journal every tick until ctx is done.
func (b *ReceiptBackfiller) Run(ctx context.Context) {
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := b.RunOnce(ctx); err != nil {
				b.log.Error("receipt backfill failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

type Stats struct {
	Resolved int
	Failed   int
	Skipped  int
}

// RunOnce handles one batch of pending receipts.
func (b *ReceiptBackfiller) RunOnce(ctx context.Context) (Stats, error) {
	var st Stats

	pending, err := b.journal.ListPending(ctx, b.batchSize)
	if err != nil {
		return st, fmt.Errorf("list pending receipts: %w", err)
	}

	for _, p := range pending {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		log := b.log.With(zap.String("order_no", p.OrderNo), zap.String("order_id", p.OrderID))

		if b.maxAttempts > 0 && p.Attempts >= b.maxAttempts {
			st.Skipped++
			continue
		}

		var s receipt.Snapshot
		if err := json.Unmarshal(p.Snapshot, &s); err != nil {
			st.Failed++
			log.Error("pending receipt has an unreadable snapshot", zap.Error(err))
			b.markAttempt(ctx, log, p, fmt.Errorf("decode snapshot: %w", err))
			continue
		}

		issued, err := b.issuer.Issue(ctx, p.OrderID, s)
		if err != nil {
			st.Failed++
			log.Warn("receipt still not issued", zap.Int("attempts", p.Attempts+1), zap.Error(err))
			b.markAttempt(ctx, log, p, err)
			continue
		}

		if err := b.journal.MarkResolved(ctx, p.ID, issued.URL); err != nil {
			// The receipt is attached; the next run re-issues it to the same URL.
			log.Error("failed to mark receipt as resolved", zap.Error(err))
			continue
		}
		st.Resolved++
		log.Info("receipt backfilled", zap.String("receipt_url", issued.URL))
	}
	return st, nil
}

func (b *ReceiptBackfiller) markAttempt(ctx context.Context, log *zap.Logger, p *repository.PendingReceipt, cause error) {
	if err := b.journal.MarkAttempt(ctx, p.ID, cause); err != nil {
		log.Error("failed to record receipt attempt", zap.Error(err))
	}
}
