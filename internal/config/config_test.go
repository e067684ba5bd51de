package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Validation.MaxFileSize != 52428800 {
		t.Errorf("Validation.MaxFileSize = %d, want %d", cfg.Validation.MaxFileSize, 52428800)
	}
	if cfg.Validation.MaxRows != 100000 {
		t.Errorf("Validation.MaxRows = %d, want %d", cfg.Validation.MaxRows, 100000)
	}
	if cfg.Validation.BatchSize != 1000 {
		t.Errorf("Validation.BatchSize = %d, want %d", cfg.Validation.BatchSize, 1000)
	}
	if cfg.Validation.StrictHeaders {
		t.Error("Validation.StrictHeaders = true, want false")
	}
	if !cfg.Validation.SkipEmptyRows {
		t.Error("Validation.SkipEmptyRows = false, want true")
	}
	if len(cfg.Validation.AcceptedTypes) != 3 {
		t.Errorf("Validation.AcceptedTypes = %v, want 3 entries", cfg.Validation.AcceptedTypes)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("INGEST_MAX_ROWS", "500")
	os.Setenv("INGEST_BATCH_SIZE", "50")
	os.Setenv("INGEST_STRICT_HEADERS", "true")
	os.Setenv("INGEST_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("INGEST_MAX_ROWS")
		os.Unsetenv("INGEST_BATCH_SIZE")
		os.Unsetenv("INGEST_STRICT_HEADERS")
		os.Unsetenv("INGEST_LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Validation.MaxRows != 500 {
		t.Errorf("Validation.MaxRows = %d, want %d", cfg.Validation.MaxRows, 500)
	}
	if cfg.Validation.BatchSize != 50 {
		t.Errorf("Validation.BatchSize = %d, want %d", cfg.Validation.BatchSize, 50)
	}
	if !cfg.Validation.StrictHeaders {
		t.Error("Validation.StrictHeaders = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	os.Setenv("INGEST_ACCEPTED_TYPES", "text/csv, application/csv , text/plain")
	defer os.Unsetenv("INGEST_ACCEPTED_TYPES")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"text/csv", "application/csv", "text/plain"}
	if len(cfg.Validation.AcceptedTypes) != len(want) {
		t.Fatalf("AcceptedTypes = %v, want %v", cfg.Validation.AcceptedTypes, want)
	}
	for i, w := range want {
		if cfg.Validation.AcceptedTypes[i] != w {
			t.Errorf("AcceptedTypes[%d] = %q, want %q", i, cfg.Validation.AcceptedTypes[i], w)
		}
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	os.Setenv("INGEST_MAX_ROWS", "lots")
	defer os.Unsetenv("INGEST_MAX_ROWS")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for non-numeric INGEST_MAX_ROWS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(c *Config) {}},
		{name: "zero max file size", mutate: func(c *Config) { c.Validation.MaxFileSize = 0 }, wantErr: true},
		{name: "zero max rows", mutate: func(c *Config) { c.Validation.MaxRows = 0 }, wantErr: true},
		{name: "batch larger than ceiling", mutate: func(c *Config) { c.Validation.BatchSize = c.Validation.MaxRows + 1 }, wantErr: true},
		{name: "no accepted types", mutate: func(c *Config) { c.Validation.AcceptedTypes = nil }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}
