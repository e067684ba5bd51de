package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/crimedesk/ingest/internal/cli"
	"github.com/crimedesk/ingest/internal/config"
	"github.com/crimedesk/ingest/internal/logging"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Debug("configuration loaded",
		"max_file_size", cfg.Validation.MaxFileSize,
		"max_rows", cfg.Validation.MaxRows,
		"batch_size", cfg.Validation.BatchSize,
	)

	if err := cli.Execute(cfg); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
