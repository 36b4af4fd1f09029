package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/codyseavey/card-checklist/internal/api"
	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/config"
	"github.com/codyseavey/card-checklist/internal/database"
	"github.com/codyseavey/card-checklist/internal/logging"
	"github.com/codyseavey/card-checklist/internal/metrics"
	"github.com/codyseavey/card-checklist/internal/services"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "card-checklist",
	})
	log.Logger = logger

	// Initialize database; an empty path runs without persistence
	var db *gorm.DB
	if cfg.Database.Path != "" {
		if err := database.Initialize(cfg.Database.Path); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize database")
		}
		db = database.GetDB()
	} else {
		logger.Warn().Msg("DB_PATH is empty, import runs will not be persisted")
	}

	// Load the reference catalog
	cat, warnings, err := catalog.Load(cfg.ReferenceFiles())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load reference dumps")
	}
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	counts := cat.Counts()
	metrics.RecordCatalog(counts)
	logger.Info().
		Int("manufacturers", counts.Manufacturers).
		Int("brands", counts.Brands).
		Int("themes", counts.Themes).
		Int("variants", counts.Variants).
		Msg("Loaded reference catalog")

	importService := services.NewImportService(db, cat, services.ImportConfig{
		PlayerID:        cfg.Import.PlayerID,
		CatalogWarnings: warnings,
	}, logger)

	// Setup router
	router, err := api.SetupRouter(importService, cfg.Server, services.ScriptOptions{
		Database:   cfg.Import.DatabaseName,
		Collection: cfg.Import.Collection,
		Upsert:     cfg.Import.Upsert,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up router")
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
