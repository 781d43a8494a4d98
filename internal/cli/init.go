// Package cli implements the gastos command tree and the initialisation
// shared by its commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/registry"
	"gastos/internal/sheets"
	"gastos/internal/sheets/google"
	"gastos/internal/sheets/memory"
)

// LoadEnvFile loads a dotenv file for local development. A missing file is
// not an error; variables already set in the environment win.
func LoadEnvFile(path string) {
	if path == "" {
		return
	}
	_ = godotenv.Load(path)
}

// LoadConfig reads the configuration, lets apply adjust it (flag overrides)
// and validates the result.
func LoadConfig(apply func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger from cfg, writing to w, and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lc := log.DefaultConfig()
	lc.Level = level
	lc.Format = cfg.LogFormat
	lc.Output = w
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger, nil
}

// BuildRegistry creates the registry and, when seeding is enabled, preloads
// it from SEED_FILE or the built-in data.
func BuildRegistry(cfg *config.Config, logger *log.Logger) (*registry.Registry, error) {
	reg := registry.New()
	if !cfg.SeedData {
		logger.Info("Starting with an empty registry")
		return reg, nil
	}

	data, source, err := loadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	if err := reg.Preload(data); err != nil {
		return nil, fmt.Errorf("preload %s seed: %w", source, err)
	}
	logger.Info("Registry seeded",
		log.FieldOperation, log.OpSeed,
		"source", source,
		"teams", len(reg.Teams()),
		"members", len(reg.Members()),
		"categories", len(reg.Categories()),
		"payments", len(reg.Payments()))
	return reg, nil
}

func loadSeed(path string) (*registry.SeedData, string, error) {
	if path == "" {
		data, err := registry.DefaultSeed()
		return data, "built-in", err
	}
	data, err := registry.LoadSeedFile(path)
	return data, path, err
}

// NewLedger returns the ledger the export worker writes to.
func NewLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.LedgerWriter, error) {
	switch cfg.LedgerBackend {
	case config.LedgerSheets:
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init Google Sheets ledger: %w", err)
		}
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return client, nil
	default:
		logger.Info("Using in-memory ledger")
		return memory.New(), nil
	}
}
