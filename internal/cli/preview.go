package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimedesk/ingest/internal/core"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show a quick sample of a file before validating it",
	Long: `Preview reads a small prefix of the file and prints the observed
columns, a few sample rows, and size-based estimates of the total row count
and processing time. Estimates are not authoritative; run validate for the
real numbers.

Example:
  ingest preview incidents.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	opts, err := pipelineOptions()
	if err != nil {
		return err
	}

	p, err := core.SamplePreview(f, info.Size(), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		return err
	}

	fmt.Print(core.FormatPreview(p))
	return nil
}
