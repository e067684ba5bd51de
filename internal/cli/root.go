// Package cli implements the ingest command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crimedesk/ingest/internal/config"
	"github.com/crimedesk/ingest/internal/schema"
)

var (
	cfg     *config.Config
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Validate crime-incident data files against the canonical schema",
	Long: `Ingest validates tabular crime-incident exports (CSV and decoded
spreadsheet data) against a canonical incident schema.

It reconciles real-world header spellings onto canonical columns, coerces
messy field values (mixed date formats, day-fraction times, free-text
booleans) into typed records, and produces a plain-text validation report.

Coercion is total: unparseable values degrade to documented defaults and
never abort a file. Only admission failures, unreadable streams, and the
row ceiling stop a run.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command against the loaded configuration.
func Execute(c *config.Config) error {
	cfg = c
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ingest v0.3.1")
	},
}

func init() {
	cobra.OnInitialize(initEnv)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("columns-file", "", "YAML file overriding the built-in column-variant table")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("columns_file", rootCmd.PersistentFlags().Lookup("columns-file"))

	rootCmd.AddCommand(versionCmd)
}

// initEnv reads in environment variables that match INGEST_*
func initEnv() {
	viper.SetEnvPrefix("INGEST")
	viper.AutomaticEnv()
}

// loadVariants resolves the column-variant table: the --columns-file flag
// (or INGEST_COLUMNS_FILE) overrides the built-in table when set.
func loadVariants() ([]schema.FieldVariants, error) {
	path := viper.GetString("columns_file")
	if path == "" && cfg != nil {
		path = cfg.Validation.ColumnsFile
	}
	if path == "" {
		return schema.DefaultVariants, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read columns file: %w", err)
	}
	variants, err := schema.VariantsFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parse columns file %s: %w", path, err)
	}
	return variants, nil
}
