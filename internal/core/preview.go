package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Preview limits.
const (
	previewPrefixBytes = 10 * 1024
	previewSampleRows  = 5

	// Observed throughput of the row coercion engine on commodity hardware,
	// used for the duration estimate only.
	rowsPerSecondEstimate = 50_000
)

// Preview is a quick, non-authoritative look at a file before validation:
// the observed headers, a handful of raw sample rows, and size-based
// estimates of the total row count and processing time. None of its numbers
// are guarantees; the pipeline alone decides what the file contains.
type Preview struct {
	Headers           []string
	SampleRows        []RawRow
	EstimatedRows     int
	EstimatedDuration time.Duration
	Truncated         bool // prefix window ended before the file did
}

// SamplePreview reads at most a 10 KiB prefix of the file, parses the
// header row plus up to five data rows, and extrapolates the total row
// count from the byte/row ratio of the sample. totalSize is the declared
// file size (0 when unknown, which disables extrapolation).
func SamplePreview(r io.Reader, totalSize int64, opts Options) (*Preview, error) {
	prefix := make([]byte, previewPrefixBytes)
	n, err := io.ReadFull(r, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, &StructuralError{Reason: "parse csv preview", Cause: err}
	}
	if n == 0 {
		return nil, &StructuralError{Reason: "empty file"}
	}
	prefix = prefix[:n]

	truncated := int64(n) < totalSize

	cr := csv.NewReader(wrapForStreaming(bytes.NewReader(prefix), 0))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &StructuralError{Reason: "empty file"}
	}
	if err != nil {
		return nil, &StructuralError{Reason: "parse csv header", Cause: err}
	}

	p := &Preview{Headers: header, Truncated: truncated}

	sampled := 0
	var sampledBytes int64
	for sampled < previewSampleRows {
		offset := cr.InputOffset()
		rec, err := cr.Read()
		if err != nil {
			// A prefix cut mid-row surfaces as a parse error; both mean
			// "no more complete rows in the window".
			break
		}
		if opts.SkipEmptyRows && isEmptyRow(rec) {
			continue
		}
		p.SampleRows = append(p.SampleRows, rowFromRecord(header, rec))
		sampledBytes += cr.InputOffset() - offset
		sampled++
	}

	if sampled > 0 {
		if truncated && sampledBytes > 0 {
			avgRowBytes := sampledBytes / int64(sampled)
			dataBytes := totalSize - cr.InputOffset() + sampledBytes
			p.EstimatedRows = int(dataBytes / avgRowBytes)
		} else if !truncated {
			p.EstimatedRows = countRemaining(cr, sampled, opts)
		}
	}
	p.EstimatedDuration = estimateDuration(p.EstimatedRows)

	return p, nil
}

// countRemaining finishes counting rows when the whole file fit in the
// prefix window, so the "estimate" is exact for small files.
func countRemaining(cr *csv.Reader, sampled int, opts Options) int {
	total := sampled
	for {
		rec, err := cr.Read()
		if err != nil {
			return total
		}
		if opts.SkipEmptyRows && isEmptyRow(rec) {
			continue
		}
		total++
	}
}

func estimateDuration(rows int) time.Duration {
	if rows <= 0 {
		return 0
	}
	return time.Duration(float64(rows) / rowsPerSecondEstimate * float64(time.Second))
}

// FormatPreview renders a preview for terminal display.
func FormatPreview(p *Preview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Columns (%d):\n", len(p.Headers))
	for _, h := range p.Headers {
		b.WriteString("  " + h + "\n")
	}
	fmt.Fprintf(&b, "Sample rows: %d\n", len(p.SampleRows))
	if p.EstimatedRows > 0 {
		approx := ""
		if p.Truncated {
			approx = "~"
		}
		fmt.Fprintf(&b, "Estimated rows: %s%d\n", approx, p.EstimatedRows)
		fmt.Fprintf(&b, "Estimated processing time: %s\n", p.EstimatedDuration.Round(time.Millisecond))
	}
	return b.String()
}
