// Package main is the entry point for the AgriMandi price suggestion service.
// The service computes deterministic crop price suggestions from the
// transaction ledger, live mandi prices, and weather conditions, and exposes
// them over a REST API.
//
// The application follows clean architecture principles:
// - Domain layer is pure (no infrastructure dependencies)
// - Repository pattern for data access
// - Engine layer for pricing logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/agrimandi/pricer/internal/clients/agmark"
	"github.com/agrimandi/pricer/internal/clients/openweather"
	"github.com/agrimandi/pricer/internal/config"
	"github.com/agrimandi/pricer/internal/database"
	"github.com/agrimandi/pricer/internal/jobs"
	"github.com/agrimandi/pricer/internal/marketdata"
	"github.com/agrimandi/pricer/internal/modules/ledger"
	ledgerhandlers "github.com/agrimandi/pricer/internal/modules/ledger/handlers"
	"github.com/agrimandi/pricer/internal/modules/pricing"
	pricinghandlers "github.com/agrimandi/pricer/internal/modules/pricing/handlers"
	"github.com/agrimandi/pricer/internal/scheduler"
	"github.com/agrimandi/pricer/internal/server"
	"github.com/agrimandi/pricer/pkg/logger"
)

const (
	// Market data cache sweep runs at the top of every hour.
	cleanupSchedule = "0 0 * * * *"
	// Prediction cache flushes at midnight so date-scoped entries never
	// survive into the next day.
	flushSchedule = "0 0 0 * * *"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables
// 2. Initializes logging
// 3. Opens the ledger and market data databases and applies migrations
// 4. Wires repositories, API clients, the pricing engine, and handlers
// 5. Starts the HTTP server and the background scheduler
// 6. Waits for a shutdown signal and performs graceful shutdown
//
// The application uses a 2-database architecture:
// - ledger.db: Immutable transaction audit trail (durability first)
// - marketdata.db: Ephemeral cache of mandi prices and weather (speed first)
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
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

	log.Info().Msg("Starting price suggestion service")

	// Ledger gets the full-durability profile: every completed transaction
	// feeds future suggestions and must survive power loss.
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	// Market data is a rebuildable cache; it trades durability for speed.
	marketDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "marketdata.db"),
		Profile: database.ProfileCache,
		Name:    "marketdata",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market data database")
	}
	defer marketDataDB.Close()

	for _, db := range []*database.DB{ledgerDB, marketDataDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("db", db.Name()).Msg("Failed to run migrations")
		}
	}

	// The ledger feeds every price suggestion; refuse to serve from a
	// corrupted audit trail.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ledgerDB.HealthCheck(startupCtx); err != nil {
		startupCancel()
		log.Fatal().Err(err).Msg("Ledger integrity check failed")
	}
	startupCancel()
	log.Info().Msg("Databases initialized")

	// Repositories
	ledgerRepo := ledger.NewRepository(ledgerDB.Conn(), log)
	marketDataRepo := marketdata.NewRepository(marketDataDB.Conn())

	// External data clients. Missing API keys are allowed: the clients
	// report no snapshot and the engine treats those factors as neutral.
	agmarkClient := agmark.NewClient(cfg.AgmarkAPIURL, cfg.AgmarkAPIKey, marketDataRepo, log)
	weatherClient := openweather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey, marketDataRepo, log)
	if cfg.AgmarkAPIKey == "" {
		log.Warn().Msg("Market data API key not configured - market factor will stay neutral")
	}
	if cfg.WeatherAPIKey == "" {
		log.Warn().Msg("Weather API key not configured - weather factor will use defaults")
	}

	// Pricing engine and HTTP handlers
	engine := pricing.NewEngine(ledgerRepo, log)
	pricingHandlers := pricinghandlers.NewHandler(engine, agmarkClient, weatherClient, log)
	ledgerHandlers := ledgerhandlers.NewHandler(ledgerRepo, log)

	// Background jobs
	sched := scheduler.New(log)
	cleanupJob := marketdata.NewCleanupJob(marketDataRepo, log)
	if err := sched.AddJob(cleanupSchedule, cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule market data cleanup")
	}
	if err := sched.AddJob(flushSchedule, jobs.NewPredictionFlushJob(engine, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule prediction flush")
	}
	sched.Start()
	defer sched.Stop()

	// Sweep entries that expired while the service was down.
	if err := sched.RunNow(cleanupJob); err != nil {
		log.Warn().Err(err).Msg("Startup cache cleanup failed")
	}
	log.Info().Msg("Scheduler started")

	srv := server.New(server.Config{
		Port:            cfg.Port,
		Log:             log,
		LedgerDB:        ledgerDB,
		MarketDataDB:    marketDataDB,
		DevMode:         cfg.DevMode,
		PricingHandlers: pricingHandlers,
		LedgerHandlers:  ledgerHandlers,
	})

	// Start server in goroutine so the main thread can wait on signals.
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// In-flight requests get up to 10 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
