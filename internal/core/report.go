package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// maxReportedFailures caps the itemized failure section; the remainder is
// summarized in a single trailing line so huge failure sets stay readable.
const maxReportedFailures = 100

// RenderReport produces the plain-text validation report: a title with
// generation timestamp, the summary counts, and the first hundred failed
// rows with their field errors and original values. Row numbers are
// 1-indexed for human readers.
func RenderReport(agg *Aggregate, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("Validation Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "Total rows:   %d\n", agg.Summary.TotalRows)
	fmt.Fprintf(&b, "Valid rows:   %d\n", agg.Summary.ValidRows)
	fmt.Fprintf(&b, "Invalid rows: %d\n", agg.Summary.InvalidRows)
	fmt.Fprintf(&b, "Error rate:   %.2f%%\n", agg.Summary.ErrorRate)
	if agg.Duration > 0 {
		fmt.Fprintf(&b, "Duration:     %s\n", agg.Duration.Round(time.Millisecond))
	}

	if len(agg.Failures) == 0 {
		return b.String()
	}

	b.WriteString("\nInvalid records:\n")
	for i, f := range agg.Failures {
		if i == maxReportedFailures {
			fmt.Fprintf(&b, "\n... and %d more invalid records\n", len(agg.Failures)-maxReportedFailures)
			break
		}
		fmt.Fprintf(&b, "\nRow %d:\n", f.Row+1)
		for _, fe := range f.Errors {
			fmt.Fprintf(&b, "  - %s: %s\n", fe.Field, fe.Message)
		}
		fmt.Fprintf(&b, "  values: %s\n", compactRow(f.Raw))
	}

	return b.String()
}

// compactRow serializes the original row as single-line JSON so a failed
// record can be located in the source file.
func compactRow(raw RawRow) string {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("%v", raw)
	}
	return string(data)
}

// ReportFileName names a downloaded report after its generation time, e.g.
// "validation-report-20260823-142501.txt".
func ReportFileName(now time.Time) string {
	return "validation-report-" + now.Format("20060102-150405") + ".txt"
}
