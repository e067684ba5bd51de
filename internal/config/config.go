// Package config provides centralized configuration management for the
// ingestion tool. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Validation ValidationConfig
	Logging    LoggingConfig
}

// ValidationConfig holds file validation settings.
type ValidationConfig struct {
	// MaxFileSize is the maximum admitted file size in bytes (default: 50MB)
	MaxFileSize int64 `env:"INGEST_MAX_FILE_SIZE" default:"52428800"`

	// MaxRows is the hard row ceiling per file (default: 100000)
	MaxRows int `env:"INGEST_MAX_ROWS" default:"100000"`

	// BatchSize is the number of rows processed between progress reports (default: 1000)
	BatchSize int `env:"INGEST_BATCH_SIZE" default:"1000"`

	// AcceptedTypes is the advisory media-type allow-list, comma-separated
	AcceptedTypes []string `env:"INGEST_ACCEPTED_TYPES" default:"text/csv,application/csv,application/vnd.ms-excel"`

	// StrictHeaders aborts validation when required columns are missing
	// instead of falling back to field defaults (default: false)
	StrictHeaders bool `env:"INGEST_STRICT_HEADERS" default:"false"`

	// SkipEmptyRows drops rows whose cells are all blank (default: true)
	SkipEmptyRows bool `env:"INGEST_SKIP_EMPTY_ROWS" default:"true"`

	// TrimStrings cleans cell artifacts (whitespace, Excel prefixes, stray
	// quotes) before coercion (default: true)
	TrimStrings bool `env:"INGEST_TRIM_STRINGS" default:"true"`

	// ColumnsFile is an optional YAML file overriding the built-in
	// column-variant table
	ColumnsFile string `env:"INGEST_COLUMNS_FILE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"INGEST_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"INGEST_LOG_FORMAT" default:"text"`
}
