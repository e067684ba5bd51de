package core

// pipeline.go orchestrates the chunked validation of one file: stream the
// rows, reconcile headers once, drive the row coercion engine over
// fixed-size batches, and aggregate results in input order.
//
// Batches exist for progress granularity and cooperative scheduling, not
// parallelism: rows are processed strictly sequentially, the context is
// checked between batches, and batch N's results always precede batch
// N+1's in the aggregate.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/crimedesk/ingest/internal/schema"
)

// Pipeline validates files against the canonical incident schema.
type Pipeline struct {
	opts Options
}

// NewPipeline creates a pipeline with the given options. Zero-valued limits
// fall back to the documented defaults.
func NewPipeline(opts Options) *Pipeline {
	def := DefaultOptions()
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = def.MaxFileSize
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = def.MaxRows
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if len(opts.AcceptedTypes) == 0 {
		opts.AcceptedTypes = def.AcceptedTypes
	}
	if len(opts.Variants) == 0 {
		opts.Variants = def.Variants
	}
	return &Pipeline{opts: opts}
}

// Options returns the effective options after defaulting.
func (p *Pipeline) Options() Options { return p.opts }

// ValidateCSV stream-parses a delimited-text file whose first record names
// the columns and validates every data row. totalSize (0 when unknown)
// feeds byte-based progress. Returns a *StructuralError when the stream is
// unreadable or crosses the row ceiling, a *HeaderError under strict
// configuration when required columns are missing, and never an error for
// row-level failures.
func (p *Pipeline) ValidateCSV(ctx context.Context, r io.Reader, totalSize int64) (*Aggregate, error) {
	counting := wrapForStreaming(r, totalSize)
	cr := csv.NewReader(counting)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	p.report(0, "reading headers")

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &StructuralError{Reason: "empty file"}
	}
	if err != nil {
		return nil, &StructuralError{Reason: "parse csv header", Cause: err}
	}

	mapping := BuildColumnMapping(header, p.opts.Variants)
	if err := p.checkHeaders(mapping); err != nil {
		return nil, err
	}

	start := time.Now()
	acc := newAccumulator(p, mapping)

	batch := make([]RawRow, 0, p.opts.BatchSize)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &StructuralError{Reason: "parse csv row", Cause: err}
		}

		if p.opts.SkipEmptyRows && isEmptyRow(rec) {
			continue
		}

		batch = append(batch, rowFromRecord(header, rec))
		if len(batch) == p.opts.BatchSize {
			if err := acc.processBatch(ctx, batch, counting.progress()); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := acc.processBatch(ctx, batch, counting.progress()); err != nil {
			return nil, err
		}
	}

	return acc.finish(start), nil
}

// ValidateRows validates an already-decoded sequence of loosely-typed row
// objects, the entry point used by the spreadsheet-decoder collaborator.
// The observed headers are the union of keys in the first row.
func (p *Pipeline) ValidateRows(ctx context.Context, rows []RawRow) (*Aggregate, error) {
	if len(rows) == 0 {
		return nil, &StructuralError{Reason: "empty file"}
	}
	if len(rows) > p.opts.MaxRows {
		return nil, &StructuralError{
			Reason: fmt.Sprintf("row count exceeds maximum of %d rows", p.opts.MaxRows),
		}
	}

	headers := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		headers = append(headers, k)
	}
	mapping := BuildColumnMapping(headers, p.opts.Variants)
	if err := p.checkHeaders(mapping); err != nil {
		return nil, err
	}

	start := time.Now()
	acc := newAccumulator(p, mapping)

	total := len(rows)
	for offset := 0; offset < total; offset += p.opts.BatchSize {
		end := offset + p.opts.BatchSize
		if end > total {
			end = total
		}
		if err := acc.processBatch(ctx, rows[offset:end], float64(end)/float64(total)); err != nil {
			return nil, err
		}
	}

	return acc.finish(start), nil
}

func (p *Pipeline) checkHeaders(mapping schema.ColumnMapping) error {
	hdrErr := CheckRequiredColumns(mapping)
	if hdrErr == nil {
		return nil
	}
	if p.opts.StrictHeaders {
		return hdrErr
	}
	slog.Warn("required columns missing, defaults will apply",
		"missing", strings.Join(hdrErr.Missing, ","))
	return nil
}

// accumulator carries per-run state across batches.
type accumulator struct {
	p       *Pipeline
	mapping schema.ColumnMapping
	records []schema.Record
	fails   []RowFailure
	rowIdx  int
	lastPct float64
}

func newAccumulator(p *Pipeline, mapping schema.ColumnMapping) *accumulator {
	return &accumulator{p: p, mapping: mapping}
}

// processBatch runs the row coercion engine over one batch, enforcing the
// row ceiling and the inter-batch context check. fraction is the best
// estimate of overall completion in [0,1].
func (a *accumulator) processBatch(ctx context.Context, batch []RawRow, fraction float64) error {
	if err := ctx.Err(); err != nil {
		return &StructuralError{Reason: "validation cancelled", Cause: err}
	}
	if a.rowIdx+len(batch) > a.p.opts.MaxRows {
		return &StructuralError{
			Reason: fmt.Sprintf("row count exceeds maximum of %d rows", a.p.opts.MaxRows),
		}
	}

	for _, raw := range batch {
		rec, errs := CoerceRow(raw, a.mapping, a.rowIdx, a.p.opts)
		if len(errs) > 0 {
			a.fails = append(a.fails, RowFailure{Row: a.rowIdx, Errors: errs, Raw: raw})
		} else {
			a.records = append(a.records, rec)
		}
		a.rowIdx++
	}

	pct := math.Max(0, math.Min(100, fraction*100))
	if pct < a.lastPct {
		pct = a.lastPct // progress never moves backwards
	}
	a.lastPct = pct
	a.p.report(pct, fmt.Sprintf("validated %d rows", a.rowIdx))

	return nil
}

func (a *accumulator) finish(start time.Time) *Aggregate {
	a.p.report(100, "validation complete")

	total := a.rowIdx
	invalid := len(a.fails)
	agg := &Aggregate{
		Records:  a.records,
		Failures: a.fails,
		Summary: Summary{
			TotalRows:   total,
			ValidRows:   total - invalid,
			InvalidRows: invalid,
			ErrorRate:   errorRate(invalid, total),
		},
		Duration: time.Since(start),
	}

	slog.Info("validation finished",
		"total", agg.Summary.TotalRows,
		"valid", agg.Summary.ValidRows,
		"invalid", agg.Summary.InvalidRows,
		"error_rate", agg.Summary.ErrorRate,
		"duration", agg.Duration,
	)
	return agg
}

func (p *Pipeline) report(pct float64, stage string) {
	if p.opts.Progress != nil {
		p.opts.Progress(Progress{Percent: pct, Stage: stage})
	}
}

// errorRate is invalid/total as a percentage with two-decimal rounding, 0
// when total is 0.
func errorRate(invalid, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(invalid)/float64(total)*100*100) / 100
}

// rowFromRecord pairs one CSV record with the header row. Short records
// leave trailing columns absent; extra cells beyond the header are dropped.
func rowFromRecord(header []string, rec []string) RawRow {
	row := make(RawRow, len(header))
	for i, h := range header {
		if i < len(rec) {
			row[h] = rec[i]
		}
	}
	return row
}

func isEmptyRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
