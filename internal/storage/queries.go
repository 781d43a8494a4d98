package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type PaymentExport struct {
	EventID    string
	PaymentID  int64
	LedgerRef  string
	ExportedAt string
}

const getExport = `
SELECT event_id, payment_id, ledger_ref, exported_at
FROM payment_exports
WHERE event_id = ?
`

func (q *Queries) GetExport(ctx context.Context, eventID string) (PaymentExport, error) {
	row := q.db.QueryRowContext(ctx, getExport, eventID)
	var e PaymentExport
	err := row.Scan(&e.EventID, &e.PaymentID, &e.LedgerRef, &e.ExportedAt)
	return e, err
}

type CreateExportParams struct {
	EventID    string
	PaymentID  int64
	LedgerRef  string
	ExportedAt string
}

const createExport = `
INSERT INTO payment_exports (event_id, payment_id, ledger_ref, exported_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (event_id) DO NOTHING
`

// CreateExport inserts the row unless the event is already journaled and
// returns the number of rows written.
func (q *Queries) CreateExport(ctx context.Context, arg CreateExportParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createExport, arg.EventID, arg.PaymentID, arg.LedgerRef, arg.ExportedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countExports = `SELECT COUNT(*) FROM payment_exports`

func (q *Queries) CountExports(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countExports).Scan(&n)
	return n, err
}

const listExportsByPayment = `
SELECT event_id, payment_id, ledger_ref, exported_at
FROM payment_exports
WHERE payment_id = ?
ORDER BY exported_at, event_id
`

func (q *Queries) ListExportsByPayment(ctx context.Context, paymentID int64) ([]PaymentExport, error) {
	rows, err := q.db.QueryContext(ctx, listExportsByPayment, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PaymentExport
	for rows.Next() {
		var e PaymentExport
		if err := rows.Scan(&e.EventID, &e.PaymentID, &e.LedgerRef, &e.ExportedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
