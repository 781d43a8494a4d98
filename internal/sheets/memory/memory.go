package memory

import (
	"context"
	"fmt"
	"sync"

	ports "gastos/internal/sheets"
)

// Store is an in-process ledger used when no spreadsheet is configured.
type Store struct {
	mu   sync.Mutex
	rows []ports.PaymentRow
}

var _ ports.LedgerWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendPayment stores the row and returns a synthetic row reference.
func (s *Store) AppendPayment(_ context.Context, row ports.PaymentRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns the rows appended so far, oldest first.
func (s *Store) Rows() []ports.PaymentRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.PaymentRow(nil), s.rows...)
}
