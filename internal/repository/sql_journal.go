package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// SQLJournal stores pending receipts in SQLite or Postgres. Both dialects
// accept the same $n placeholders.
type SQLJournal struct {
	db              *sql.DB
	dialect         string
	migrationsTable string
}

func NewSQLiteJournal(dsn, migrationsTable string) (*SQLJournal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLJournal{db: db, dialect: DriverSQLite, migrationsTable: migrationsTable}, nil
}

func NewPostgresJournal(dsn, migrationsTable string) (*SQLJournal, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	return &SQLJournal{db: db, dialect: DriverPostgres, migrationsTable: migrationsTable}, nil
}

func (r *SQLJournal) RunMigrations() error {
	var (
		driver database.Driver
		err    error
	)
	switch r.dialect {
	case DriverPostgres:
		driver, err = postgres.WithInstance(r.db, &postgres.Config{MigrationsTable: r.migrationsTable})
	default:
		driver, err = sqlite.WithInstance(r.db, &sqlite.Config{MigrationsTable: r.migrationsTable})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+r.dialect)
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, r.dialect, driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (r *SQLJournal) RecordPending(ctx context.Context, p *PendingReceipt) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `
		INSERT INTO pending_receipts (id, order_id, order_no, snapshot, last_error, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OrderID,
		p.OrderNo,
		string(p.Snapshot),
		p.LastError,
		p.Attempts,
		p.CreatedAt.UTC(),
		p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pending receipt: %w", err)
	}
	return nil
}

func (r *SQLJournal) ListPending(ctx context.Context, limit int) ([]*PendingReceipt, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, order_id, order_no, snapshot, last_error, attempts, created_at, updated_at
		FROM pending_receipts
		WHERE resolved_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending receipts: %w", err)
	}
	defer rows.Close()

	var pending []*PendingReceipt
	for rows.Next() {
		p := &PendingReceipt{}
		var snapshot []byte
		err := rows.Scan(
			&p.ID,
			&p.OrderID,
			&p.OrderNo,
			&snapshot,
			&p.LastError,
			&p.Attempts,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending receipt: %w", err)
		}
		p.Snapshot = snapshot
		pending = append(pending, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return pending, nil
}

func (r *SQLJournal) MarkAttempt(ctx context.Context, id string, cause error) error {
	query := `
		UPDATE pending_receipts
		SET attempts = attempts + 1, last_error = $2, updated_at = $3
		WHERE id = $1 AND resolved_at IS NULL
	`
	return r.update(ctx, query, id, errorText(cause), time.Now().UTC())
}

func (r *SQLJournal) MarkResolved(ctx context.Context, id, receiptURL string) error {
	query := `
		UPDATE pending_receipts
		SET receipt_url = $2, resolved_at = $3, updated_at = $3
		WHERE id = $1 AND resolved_at IS NULL
	`
	return r.update(ctx, query, id, receiptURL, time.Now().UTC())
}

func (r *SQLJournal) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pending receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrPendingReceiptNotFound
	}
	return nil
}

func (r *SQLJournal) Close() error {
	return r.db.Close()
}
