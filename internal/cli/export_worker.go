package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gastos/internal/amqp"
	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/storage"
	"gastos/internal/worker"
)

func newExportWorkerCommand() *cobra.Command {
	var statsInterval time.Duration

	cmd := &cobra.Command{
		Use:   "export-worker",
		Short: "Copy recorded payments from the event queue to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(nil)
			if err != nil {
				return err
			}
			return runExportWorker(cmd.Context(), cfg, statsInterval)
		},
	}
	cmd.Flags().DurationVar(&statsInterval, "stats-interval", 5*time.Minute, "how often to log journal statistics (0 disables)")
	return cmd
}

func runExportWorker(parent context.Context, cfg *config.Config, statsInterval time.Duration) error {
	if !cfg.ExportEnabled() {
		return errors.New("export-worker requires AMQP_URL")
	}

	logger, err := SetupLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("Starting gastos export worker", "ledger", cfg.LedgerBackend)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureJournalDir(); err != nil {
		return err
	}
	journal, err := storage.NewJournal(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open export journal %s: %w", cfg.SQLiteDBPath, err)
	}
	defer journal.Close()

	ledger, err := NewLedger(ctx, cfg, logger.WithComponent(log.ComponentLedger))
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		return fmt.Errorf("init AMQP client: %w", err)
	}
	defer client.Close()

	processor := services.NewExportProcessor(journal, ledger, logger.WithComponent(log.ComponentWorker))
	w := worker.NewExportWorker(client, processor, journal, logger.WithComponent(log.ComponentWorker), statsInterval)
	return w.Run(ctx)
}
