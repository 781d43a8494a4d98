package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/sheets"
)

// ExportJournal remembers which events already reached the ledger.
type ExportJournal interface {
	Exported(ctx context.Context, eventID string) (ledgerRef string, done bool, err error)
	Record(ctx context.Context, eventID string, paymentID int64, ledgerRef string) (inserted bool, err error)
}

// ExportProcessor writes payment events to the ledger exactly once per event
// id. Redelivered events that were already journaled are acknowledged
// without touching the ledger.
type ExportProcessor struct {
	journal ExportJournal
	ledger  sheets.LedgerWriter
	logger  *log.Logger

	// serialises check-append-record so concurrent deliveries of one event
	// cannot both append
	mu sync.Mutex
}

func NewExportProcessor(journal ExportJournal, ledger sheets.LedgerWriter, logger *log.Logger) *ExportProcessor {
	return &ExportProcessor{
		journal: journal,
		ledger:  ledger,
		logger:  logger,
	}
}

// Handle processes one event. Malformed events are wrapped in
// amqp.ErrDiscard so the consumer drops them; other errors are retried.
func (p *ExportProcessor) Handle(ctx context.Context, msg *amqp.PaymentRecordedMessage) error {
	row, err := RowFromMessage(msg)
	if err != nil {
		return fmt.Errorf("%w: event %s: %v", amqp.ErrDiscard, msg.EventID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ref, done, err := p.journal.Exported(ctx, msg.EventID)
	if err != nil {
		return fmt.Errorf("check journal: %w", err)
	}
	if done {
		metrics.PaymentsExported.WithLabelValues(metrics.ResultSkipped).Inc()
		p.logger.InfoContext(ctx, "Event already exported, skipping",
			log.FieldEventID, msg.EventID,
			log.FieldPaymentID, msg.PaymentID,
			log.FieldLedgerRef, ref)
		return nil
	}

	start := time.Now()
	ref, err = p.ledger.AppendPayment(ctx, row)
	metrics.ObserveExport(start, err)
	if err != nil {
		return fmt.Errorf("append payment %d to ledger: %w", msg.PaymentID, err)
	}

	if _, err := p.journal.Record(ctx, msg.EventID, msg.PaymentID, ref); err != nil {
		// The row exists in the ledger; a retry would append it again.
		p.logger.ErrorContext(ctx, "Ledger row written but journal update failed",
			log.FieldEventID, msg.EventID,
			log.FieldPaymentID, msg.PaymentID,
			log.FieldLedgerRef, ref,
			log.FieldError, err)
		return fmt.Errorf("%w: journal export %s: %v", amqp.ErrDiscard, msg.EventID, err)
	}

	p.logger.InfoContext(ctx, "Payment exported",
		log.FieldEventID, msg.EventID,
		log.FieldPaymentID, msg.PaymentID,
		log.FieldLedgerRef, ref)
	return nil
}

// RowFromMessage converts an event into a ledger row.
func RowFromMessage(msg *amqp.PaymentRecordedMessage) (sheets.PaymentRow, error) {
	if err := msg.Validate(); err != nil {
		return sheets.PaymentRow{}, err
	}
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return sheets.PaymentRow{}, err
	}
	return sheets.PaymentRow{
		EventID:     msg.EventID,
		PaymentID:   msg.PaymentID,
		Date:        date,
		Kind:        msg.Kind,
		Method:      msg.Method,
		Member:      msg.Member,
		MemberName:  msg.MemberName,
		Team:        msg.Team,
		Category:    msg.Category,
		Description: msg.Description,
		Amount:      msg.Amount,
		Total:       msg.Total,
		Status:      msg.Status,
	}, nil
}
