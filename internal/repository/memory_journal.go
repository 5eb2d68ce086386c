package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// ResolvedRetention is how long resolved entries stay in memory.
	ResolvedRetention = time.Hour

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = 5 * time.Minute
)

// MemoryJournal keeps pending receipts for the lifetime of the process.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries map[string]*PendingReceipt
	order   []string // insertion order

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewMemoryJournal() *MemoryJournal {
	j := &MemoryJournal{
		entries:     make(map[string]*PendingReceipt),
		stopCleanup: make(chan struct{}),
	}

	j.wg.Add(1)
	go j.cleanupLoop()

	return j
}

func (j *MemoryJournal) cleanupLoop() {
	defer j.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.purgeResolved(time.Now().Add(-ResolvedRetention))
		case <-j.stopCleanup:
			return
		}
	}
}

// purgeResolved drops entries resolved before the cutoff.
func (j *MemoryJournal) purgeResolved(cutoff time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	kept := j.order[:0]
	for _, id := range j.order {
		p := j.entries[id]
		if p.ResolvedAt != nil && p.ResolvedAt.Before(cutoff) {
			delete(j.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	j.order = kept
}

func (j *MemoryJournal) RecordPending(_ context.Context, p *PendingReceipt) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	stored := *p
	stored.Snapshot = append([]byte(nil), p.Snapshot...)
	if _, exists := j.entries[p.ID]; !exists {
		j.order = append(j.order, p.ID)
	}
	j.entries[p.ID] = &stored
	return nil
}

func (j *MemoryJournal) ListPending(_ context.Context, limit int) ([]*PendingReceipt, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	out := make([]*PendingReceipt, 0)
	for _, id := range j.order {
		p := j.entries[id]
		if p.ResolvedAt != nil {
			continue
		}
		cp := *p
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (j *MemoryJournal) MarkAttempt(_ context.Context, id string, cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	p, ok := j.entries[id]
	if !ok || p.ResolvedAt != nil {
		return ErrPendingReceiptNotFound
	}
	p.Attempts++
	p.LastError = errorText(cause)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (j *MemoryJournal) MarkResolved(_ context.Context, id, receiptURL string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	p, ok := j.entries[id]
	if !ok || p.ResolvedAt != nil {
		return ErrPendingReceiptNotFound
	}
	now := time.Now().UTC()
	p.ReceiptURL = receiptURL
	p.ResolvedAt = &now
	p.UpdatedAt = now
	return nil
}

// Close stops the cleanup goroutine.
func (j *MemoryJournal) Close() error {
	j.stopOnce.Do(func() { close(j.stopCleanup) })
	j.wg.Wait()
	return nil
}

func (j *MemoryJournal) RunMigrations() error { return nil }
