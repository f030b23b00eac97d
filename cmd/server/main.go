// Package main is the entry point for the pump selection service.
//
// Startup sequence:
// 1. Load configuration from environment variables (.env supported)
// 2. Initialize structured logging
// 3. Open the catalog and cache databases, ensure schemas
// 4. Wire repositories and services
// 5. Register the history retention job with the scheduler
// 6. Start the HTTP server and wait for a shutdown signal
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pumplab/pumpselect/internal/config"
	"github.com/pumplab/pumpselect/internal/database"
	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/cleanup"
	"github.com/pumplab/pumpselect/internal/modules/selection"
	"github.com/pumplab/pumpselect/internal/scheduler"
	"github.com/pumplab/pumpselect/internal/server"
	"github.com/pumplab/pumpselect/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting pump selection service")

	// Catalog database: pump models, curves, points
	catalogDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "catalog.db"),
		Profile: database.ProfileCatalog,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open catalog database")
	}
	defer catalogDB.Close()

	// Cache database: selection history, ephemeral
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	if err := catalog.InitSchema(catalogDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize catalog schema")
	}
	if err := selection.InitHistorySchema(cacheDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	catalogRepo := catalog.NewRepository(catalogDB.Conn(), log)
	catalogService := catalog.NewService(catalogRepo, log)
	if err := catalogService.Refresh(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load pump catalog")
	}

	var solveCache *selection.SolveCache
	if cfg.CacheEnabled {
		solveCache = selection.NewSolveCache()
	}

	selectionService := selection.NewService(
		catalogService,
		cfg.Workers,
		time.Duration(cfg.RequestTimeoutMS)*time.Millisecond,
		solveCache,
		log,
	)
	historyRepo := selection.NewHistoryRepository(cacheDB.Conn())

	// Background maintenance: purge aged selection history daily.
	// Retention 0 means keep forever.
	sched := scheduler.New(log)
	if cfg.HistoryRetention > 0 {
		retention := time.Duration(cfg.HistoryRetention) * 24 * time.Hour
		historyJob, err := cleanup.NewHistoryJob(historyRepo, retention, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create history cleanup job")
		}
		if err := sched.AddJob("@daily", historyJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule history cleanup")
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:              log,
		Config:           cfg,
		CatalogService:   catalogService,
		SelectionService: selectionService,
		HistoryRepo:      historyRepo,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// WAL checkpoints flush on close
	if err := catalogDB.Checkpoint(); err != nil {
		log.Warn().Err(err).Msg("Failed to checkpoint catalog database")
	}
	if err := cacheDB.Checkpoint(); err != nil {
		log.Warn().Err(err).Msg("Failed to checkpoint cache database")
	}

	log.Info().Msg("Server stopped")
}
