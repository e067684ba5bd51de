// Package core provides the ingestion-and-validation pipeline for
// crime-incident files. This package has no UI dependencies and can be used
// by any frontend.
package core

import (
	"time"

	"github.com/crimedesk/ingest/internal/schema"
)

// FileMeta describes a candidate file as declared by the caller: the bytes
// have not been read yet when admission runs.
type FileMeta struct {
	Name      string
	Size      int64
	MediaType string // best-effort hint; extension is authoritative
}

// Options configures one pipeline invocation. The zero value is unusable;
// start from DefaultOptions.
type Options struct {
	MaxFileSize   int64    // admission ceiling in bytes
	MaxRows       int      // hard row ceiling; crossing it aborts the run
	BatchSize     int      // rows per batch between progress reports
	AcceptedTypes []string // media-type allow-list (advisory)
	StrictHeaders bool     // missing required columns abort instead of warn
	SkipEmptyRows bool
	TrimStrings   bool
	Variants      []schema.FieldVariants // column-variant table
	Progress      ProgressFunc           // optional, fire-and-forget
}

// DefaultOptions returns the documented defaults: 50 MiB files, 100k rows,
// batches of 1000, lenient headers, empty rows skipped, strings trimmed.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:   50 * 1024 * 1024,
		MaxRows:       100_000,
		BatchSize:     1000,
		AcceptedTypes: []string{"text/csv", "application/csv", "application/vnd.ms-excel"},
		StrictHeaders: false,
		SkipEmptyRows: true,
		TrimStrings:   true,
		Variants:      schema.DefaultVariants,
	}
}

// Progress is reported after every batch. Percent is monotonically
// non-decreasing and clamped to [0,100].
type Progress struct {
	Percent float64
	Stage   string
}

// ProgressFunc receives progress events. No backpressure: a slow callback
// slows the pipeline, it cannot reorder or drop batches.
type ProgressFunc func(Progress)

// RawRow is one loosely-typed input row keyed by observed header. CSV cells
// arrive as string; decoded spreadsheet rows may carry bool, float64 or
// time.Time values.
type RawRow map[string]any

// RowFailure is a rejected row: its 0-indexed position, every field error,
// and the original raw row for reporting.
type RowFailure struct {
	Row    int
	Errors []schema.FieldError
	Raw    RawRow
}

// Summary holds the aggregate counts for one run.
type Summary struct {
	TotalRows   int
	ValidRows   int
	InvalidRows int
	ErrorRate   float64 // percent, two-decimal rounding, 0 when TotalRows is 0
}

// Aggregate is the complete result of validating one file: accepted records
// and failures both preserve input row order.
type Aggregate struct {
	Records  []schema.Record
	Failures []RowFailure
	Summary  Summary
	Duration time.Duration
}
