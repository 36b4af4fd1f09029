// Package main provides the checklist-import CLI: it turns an exported
// checklist page into a SQL import script and a review report.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/config"
	"github.com/codyseavey/card-checklist/internal/logging"
	"github.com/codyseavey/card-checklist/internal/metrics"
)

var (
	// Global flags
	cfgFile      string
	referenceDir string
	outputJSON   bool
	verbose      bool

	// Configuration and logger
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "checklist-import",
	Short: "Resolve trading card checklists into collection SQL",
	Long: `checklist-import reads a player's exported checklist page, resolves every
card label against the manufacturer, brand, theme and variant reference dumps,
and writes a SQL import script for the confidently resolved cards together with
a review report for the rest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if referenceDir != "" {
			cfg.Reference.Dir = referenceDir
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		format := cfg.Logging.Format
		if outputJSON {
			format = "json"
		}

		logger = logging.New(logging.Config{
			Level:       level,
			Format:      format,
			ServiceName: "checklist-import",
		})
		log.Logger = logger
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().StringVar(&referenceDir, "reference-dir", "", "directory holding the reference table dumps")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newCatalogCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadCatalog loads the reference dumps named by the configuration and logs
// every build warning.
func loadCatalog() (*catalog.Catalog, []string, error) {
	cat, warnings, err := catalog.Load(cfg.ReferenceFiles())
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	metrics.RecordCatalog(cat.Counts())
	return cat, warnings, nil
}
