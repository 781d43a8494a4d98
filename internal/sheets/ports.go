// Package sheets defines the ledger the export worker writes recorded
// payments to. Adapters live in the memory and google subpackages.
package sheets

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// Header lists the ledger columns in the order Values emits them.
var Header = []any{
	"Fecha", "Pago", "Tipo", "Método", "Integrante", "Identificador", "Equipo",
	"Categoría", "Descripción", "Monto", "Total", "Estado", "Evento",
}

// PaymentRow is one ledger line describing a recorded payment.
type PaymentRow struct {
	EventID     string
	PaymentID   int64
	Date        core.Date
	Kind        string
	Method      string
	Member      string
	MemberName  string
	Team        string
	Category    string
	Description string
	Amount      decimal.Decimal
	Total       decimal.Decimal
	Status      string
}

func (r PaymentRow) Validate() error {
	if r.EventID == "" {
		return errors.New("ledger row: missing event id")
	}
	if r.PaymentID <= 0 {
		return errors.New("ledger row: missing payment id")
	}
	if r.Date.IsEmpty() {
		return errors.New("ledger row: missing date")
	}
	return nil
}

// Values renders the row as spreadsheet cells, matching Header.
func (r PaymentRow) Values() []any {
	return []any{
		r.Date.String(),
		r.PaymentID,
		r.Kind,
		r.Method,
		r.MemberName,
		r.Member,
		r.Team,
		r.Category,
		r.Description,
		core.FormatAmount(r.Amount),
		core.FormatAmount(r.Total),
		r.Status,
		r.EventID,
	}
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		// AppendPayment adds one row and returns a reference to where it
		// was written.
		AppendPayment(ctx context.Context, row PaymentRow) (rowRef string, err error)
	}
)
