package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Journal records which payment events were written to the ledger so each
// event is exported exactly once.
type Journal struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// NewJournal opens (creating if needed) the sqlite journal at dbPath and
// applies pending migrations.
func NewJournal(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Exported returns the ledger reference recorded for eventID and whether the
// event was exported already.
func (j *Journal) Exported(ctx context.Context, eventID string) (string, bool, error) {
	e, err := j.queries.GetExport(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get export %s: %w", eventID, err)
	}
	return e.LedgerRef, true, nil
}

// Record journals an exported event. It reports false when the event was
// already present.
func (j *Journal) Record(ctx context.Context, eventID string, paymentID int64, ledgerRef string) (bool, error) {
	n, err := j.queries.CreateExport(ctx, CreateExportParams{
		EventID:    eventID,
		PaymentID:  paymentID,
		LedgerRef:  ledgerRef,
		ExportedAt: j.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return false, fmt.Errorf("record export %s: %w", eventID, err)
	}
	return n > 0, nil
}

// Count returns the number of journaled exports.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	n, err := j.queries.CountExports(ctx)
	if err != nil {
		return 0, fmt.Errorf("count exports: %w", err)
	}
	return n, nil
}

// ExportsForPayment lists the journal entries of one payment.
func (j *Journal) ExportsForPayment(ctx context.Context, paymentID int64) ([]PaymentExport, error) {
	items, err := j.queries.ListExportsByPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list exports for payment %d: %w", paymentID, err)
	}
	return items, nil
}

// Ping checks that the database is reachable.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}
