package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimedesk/ingest/internal/schema"
)

// columnsCmd represents the columns command
var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Print the accepted column spellings",
	Long: `Columns prints the column-variant table: for every canonical field,
the header spellings the pipeline recognizes. Required fields are marked.

The table is the contract surface for file producers; with --columns-file
the built-in table can be replaced by a YAML document.

Example:
  ingest columns
  ingest columns --columns-file variants.yaml`,
	RunE: runColumns,
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, args []string) error {
	variants, err := loadVariants()
	if err != nil {
		return err
	}

	required := make(map[string]bool, len(schema.RequiredFields))
	for _, f := range schema.RequiredFields {
		required[f] = true
	}

	for _, fv := range variants {
		marker := ""
		if required[fv.Canonical] {
			marker = " (required)"
		}
		fmt.Printf("%s%s:\n", fv.Canonical, marker)
		fmt.Printf("  %s\n", strings.Join(fv.Variants, ", "))
	}
	return nil
}
