package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimedesk/ingest/internal/core"
	"github.com/crimedesk/ingest/internal/logging"
)

var (
	reportPath    string
	strictHeaders bool
	noProgress    bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a CSV file and produce a report",
	Long: `Validate runs the full pipeline on one file:
- Admission checks (size ceiling, .csv extension)
- Header reconciliation against the column-variant table
- Per-row coercion and schema validation in batches
- A plain-text report of every invalid record

Example:
  ingest validate incidents.csv
  ingest validate incidents.csv --report report.txt
  ingest validate incidents.csv --strict-headers`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&reportPath, "report", "", "write the report to a file instead of stdout")
	validateCmd.Flags().BoolVar(&strictHeaders, "strict-headers", false, "abort when required columns are missing")
	validateCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress line")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	meta := core.FileMeta{
		Name:      filepath.Base(path),
		Size:      info.Size(),
		MediaType: mime.TypeByExtension(filepath.Ext(path)),
	}

	opts, err := pipelineOptions()
	if err != nil {
		return err
	}

	if res := core.CheckAdmission(meta, opts); !res.Valid {
		admErr := res.Err()
		fmt.Fprintln(os.Stderr, core.FormatUserError(admErr))
		return admErr
	}

	if !noProgress {
		opts.Progress = func(p core.Progress) {
			fmt.Fprintf(os.Stderr, "\r%-50s %5.1f%%", p.Stage, p.Percent)
			if p.Percent >= 100 {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	runLog := logging.WithFields("file", meta.Name, "size", meta.Size)
	runLog.Debug("validation started")

	agg, err := core.NewPipeline(opts).ValidateCSV(context.Background(), f, info.Size())
	if err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		return err
	}
	runLog.Debug("validation completed", "rows", agg.Summary.TotalRows)

	report := core.RenderReport(agg, time.Now())
	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", reportPath)
		}
		return nil
	}

	fmt.Print(report)
	return nil
}

// pipelineOptions builds the effective options from configuration, the
// variant table (possibly overridden), and command flags.
func pipelineOptions() (core.Options, error) {
	opts := core.DefaultOptions()
	if cfg != nil {
		opts.MaxFileSize = cfg.Validation.MaxFileSize
		opts.MaxRows = cfg.Validation.MaxRows
		opts.BatchSize = cfg.Validation.BatchSize
		opts.AcceptedTypes = cfg.Validation.AcceptedTypes
		opts.StrictHeaders = cfg.Validation.StrictHeaders
		opts.SkipEmptyRows = cfg.Validation.SkipEmptyRows
		opts.TrimStrings = cfg.Validation.TrimStrings
	}
	if strictHeaders {
		opts.StrictHeaders = true
	}

	variants, err := loadVariants()
	if err != nil {
		return core.Options{}, err
	}
	opts.Variants = variants
	return opts, nil
}
