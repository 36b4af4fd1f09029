package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/database"
	"github.com/codyseavey/card-checklist/internal/metrics"
	"github.com/codyseavey/card-checklist/internal/services"
)

type generateOptions struct {
	input           string // "-" reads stdin
	output          string // "-" writes stdout
	review          string
	dbPath          string // empty skips persistence
	upsert          bool
	playerID        int
	metricsTextfile string
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the SQL import script and review report for a checklist",
		Long: `Generate scrapes the checklist page, resolves every row and writes:

  - the SQL import script with one INSERT per confidently resolved card
  - the review report listing rows that need a human decision and every
    issue raised while processing

With --db the run, its cards and its review entries are also stored in the
sqlite database, upserting cards that were imported before.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			if !cmd.Flags().Changed("upsert") {
				opts.upsert = cfg.Import.Upsert
			}
			if !cmd.Flags().Changed("player-id") {
				opts.playerID = cfg.Import.PlayerID
			}

			cat, warnings, err := loadCatalog()
			if err != nil {
				return err
			}
			return runGenerate(ctx, cat, warnings, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "output/index.html", "checklist page to read (- for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "collection_import.sql", "SQL script to write (- for stdout)")
	cmd.Flags().StringVar(&opts.review, "review", "review_log.txt", "review report to write")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "sqlite database to record the run in")
	cmd.Flags().BoolVar(&opts.upsert, "upsert", false, "emit ON DUPLICATE KEY UPDATE statements")
	cmd.Flags().IntVar(&opts.playerID, "player-id", services.DefaultPlayerID, "player id written on every card")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write run metrics in node exporter textfile format")

	return cmd
}

func runGenerate(ctx context.Context, cat *catalog.Catalog, warnings []string, opts generateOptions, stdout io.Writer) error {
	var db *gorm.DB
	if opts.dbPath != "" {
		var err error
		if db, err = database.Open(opts.dbPath, gormlogger.Warn); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
	}

	svc := services.NewImportService(db, cat, services.ImportConfig{
		PlayerID:        opts.playerID,
		CatalogWarnings: warnings,
	}, logger)

	in, source, err := openInput(opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	run, result, runErr := svc.ImportChecklist(ctx, source, in)
	if run == nil {
		return runErr
	}

	// The review report is written even for an aborted run so the critical
	// issue is on record.
	if err := writeFile(opts.review, stdout, func(w io.Writer) error {
		return services.WriteReviewReport(w, result.NeedsReview, result.Issues, time.Now())
	}); err != nil {
		return err
	}

	if opts.metricsTextfile != "" {
		if err := metrics.WriteTextfile(opts.metricsTextfile); err != nil {
			logger.Error().Err(err).Str("path", opts.metricsTextfile).Msg("Failed to write metrics textfile")
		}
	}

	if errors.Is(runErr, services.ErrCatalogNotBuilt) {
		return fmt.Errorf("import aborted, see %s: %w", opts.review, runErr)
	}
	if runErr != nil {
		return runErr
	}

	script := services.ScriptOptions{
		Database:    cfg.Import.DatabaseName,
		Collection:  cfg.Import.Collection,
		GeneratedAt: run.StartedAt,
		Upsert:      opts.upsert,
	}
	if err := writeFile(opts.output, stdout, func(w io.Writer) error {
		return services.WriteScript(w, result.Accepted, script)
	}); err != nil {
		return err
	}

	logger.Info().
		Str("import_run", run.ID).
		Str("script", opts.output).
		Str("review", opts.review).
		Int("rows", result.Total()).
		Int("statements", len(result.Accepted)).
		Int("needs_review", len(result.NeedsReview)).
		Msg("Generated SQL import script")
	return nil
}

func openInput(path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open checklist: %w", err)
	}
	return f, path, nil
}

// writeFile runs write against path, or against stdout when path is "-".
func writeFile(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
