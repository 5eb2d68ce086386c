// Package repository keeps the local journal of orders whose receipt could
// not be rendered or uploaded at checkout time.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrPendingReceiptNotFound = errors.New("pending receipt not found")

// PendingReceipt is a paid order still waiting for its receipt image.
// Snapshot holds the serialized receipt data so the image can be rebuilt
// without asking the backend.
type PendingReceipt struct {
	ID         string
	OrderID    string
	OrderNo    string
	Snapshot   json.RawMessage
	LastError  string
	Attempts   int
	ReceiptURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

type Journal interface {
	RecordPending(ctx context.Context, p *PendingReceipt) error
	ListPending(ctx context.Context, limit int) ([]*PendingReceipt, error)
	MarkAttempt(ctx context.Context, id string, cause error) error
	MarkResolved(ctx context.Context, id, receiptURL string) error
	Close() error
	RunMigrations() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Options struct {
	Driver          string
	DSN             string
	MigrationsTable string
}

// Open connects the journal for the configured driver and applies the
// schema.
func Open(opts Options) (Journal, error) {
	var (
		j   Journal
		err error
	)
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryJournal(), nil
	case DriverSQLite, "":
		j, err = NewSQLiteJournal(opts.DSN, opts.MigrationsTable)
	case DriverPostgres:
		j, err = NewPostgresJournal(opts.DSN, opts.MigrationsTable)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := j.RunMigrations(); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
