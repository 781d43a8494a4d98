// Package worker runs the background consumer that copies recorded payments
// to the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/log"
)

// Consumer delivers payment events until its context ends.
type Consumer interface {
	ConsumePaymentRecorded(ctx context.Context, handler amqp.Handler) error
}

// Processor exports one payment event.
type Processor interface {
	Handle(ctx context.Context, msg *amqp.PaymentRecordedMessage) error
}

// Journal is the part of the export journal the worker reports on.
type Journal interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// ExportWorker consumes payment events and hands them to the processor.
type ExportWorker struct {
	consumer      Consumer
	processor     Processor
	journal       Journal
	logger        *log.Logger
	statsInterval time.Duration
}

// NewExportWorker builds a worker. A zero statsInterval disables the
// periodic journal report.
func NewExportWorker(consumer Consumer, processor Processor, journal Journal, logger *log.Logger, statsInterval time.Duration) *ExportWorker {
	return &ExportWorker{
		consumer:      consumer,
		processor:     processor,
		journal:       journal,
		logger:        logger,
		statsInterval: statsInterval,
	}
}

// StartupCheck verifies the journal is reachable and logs how many events
// were exported by previous runs.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	if err := w.journal.Ping(ctx); err != nil {
		return fmt.Errorf("export journal unavailable: %w", err)
	}
	count, err := w.journal.Count(ctx)
	if err != nil {
		return fmt.Errorf("count exported events: %w", err)
	}
	w.logger.InfoContext(ctx, "Export journal ready", "exported", count)
	return nil
}

// Run consumes until ctx is cancelled. Cancellation is a clean stop and
// returns nil.
func (w *ExportWorker) Run(ctx context.Context) error {
	if err := w.StartupCheck(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.consumer.ConsumePaymentRecorded(gctx, w.processor.Handle)
	})
	if w.statsInterval > 0 {
		g.Go(func() error {
			w.reportStats(gctx)
			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		w.logger.Info("Export worker stopped")
		return nil
	}
	return err
}

func (w *ExportWorker) reportStats(ctx context.Context) {
	ticker := time.NewTicker(w.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.journal.Count(ctx)
			if err != nil {
				if ctx.Err() == nil {
					w.logger.WarnContext(ctx, "Failed to read export journal", log.FieldError, err)
				}
				continue
			}
			w.logger.DebugContext(ctx, "Export journal stats", "exported", count)
		}
	}
}
