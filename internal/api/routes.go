package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/codyseavey/card-checklist/internal/api/handlers"
	"github.com/codyseavey/card-checklist/internal/config"
	"github.com/codyseavey/card-checklist/internal/metrics"
	"github.com/codyseavey/card-checklist/internal/services"
)

func SetupRouter(importService *services.ImportService, serverCfg config.ServerConfig, script services.ScriptOptions, logger zerolog.Logger) (*gin.Engine, error) {
	router := gin.Default()

	// CORS configuration - allow origins from config or use defaults
	corsConfig := cors.DefaultConfig()
	if len(serverCfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = serverCfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = false // Explicitly set
	router.Use(cors.New(corsConfig))
	router.Use(metrics.HTTPMetrics())

	// Initialize handlers
	resolveHandler, err := handlers.NewResolveHandler(importService.Catalog(), serverCfg.ResolveCacheSize, logger)
	if err != nil {
		return nil, err
	}
	importHandler := handlers.NewImportHandler(importService, script)

	// API routes
	api := router.Group("/api")
	api.Use(RateLimit(serverCfg.RateLimit, serverCfg.RateBurst))
	{
		api.POST("/resolve", resolveHandler.Resolve)
		api.GET("/catalog/stats", resolveHandler.GetCatalogStats)

		// Import routes
		imports := api.Group("/imports")
		{
			imports.GET("", importHandler.ListImports)
			imports.POST("", importHandler.CreateImport)
			imports.GET("/:id", importHandler.GetImport)
			imports.GET("/:id/review", importHandler.GetReview)
			imports.GET("/:id/sql", importHandler.GetScript)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router, nil
}
