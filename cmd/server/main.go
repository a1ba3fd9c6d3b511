// Package main is the entry point for the Beacon financial analysis service.
// Beacon pulls fundamentals and prices from the market data provider,
// derives ratios, growth rates, valuations and letter ratings, and serves
// the results over a REST API with live batch progress over WebSocket.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/beacon/internal/clientdata"
	"github.com/aristath/beacon/internal/clients/yahoo"
	"github.com/aristath/beacon/internal/config"
	"github.com/aristath/beacon/internal/database"
	"github.com/aristath/beacon/internal/modules/analysis"
	analysishandlers "github.com/aristath/beacon/internal/modules/analysis/handlers"
	"github.com/aristath/beacon/internal/modules/charts"
	chartshandlers "github.com/aristath/beacon/internal/modules/charts/handlers"
	"github.com/aristath/beacon/internal/modules/watchlist"
	watchlisthandlers "github.com/aristath/beacon/internal/modules/watchlist/handlers"
	"github.com/aristath/beacon/internal/reliability"
	"github.com/aristath/beacon/internal/scheduler"
	"github.com/aristath/beacon/internal/server"
	"github.com/aristath/beacon/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting Beacon")

	// Three-database layout:
	// - config.db: user data (watchlist, settings)
	// - client_data.db: provider response cache with TTLs
	// - history.db: daily price history
	configDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "config.db"),
		Name: "config",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open config database")
	}
	defer configDB.Close()

	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open client_data database")
	}
	defer clientDataDB.Close()

	historyDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "history.db"),
		Name: "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	databases := map[string]*database.DB{
		"config":      configDB,
		"client_data": clientDataDB,
		"history":     historyDB,
	}

	for name, db := range databases {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", name).Msg("Failed to run migrations")
		}
	}

	// Provider client with cache-first reads and stale fallback
	cacheRepo := clientdata.NewRepository(clientDataDB.Conn())
	yahooClient := yahoo.NewClient(cfg.ProviderBaseURL, cacheRepo, log)

	// Services
	historyStore := charts.NewHistoryDB(historyDB.Conn(), log)
	chartsService := charts.NewService(historyStore, yahooClient, log)
	watchlistRepo := watchlist.NewRepository(configDB.Conn(), log)
	analysisService := analysis.NewService(yahooClient, log)
	progressHub := analysis.NewProgressHub()

	// Background jobs
	sched := scheduler.New(log)
	jobs := []scheduler.Job{
		watchlist.NewRefreshJob(watchlistRepo, yahooClient, chartsService, log),
		clientdata.NewCleanupJob(cacheRepo, log),
		reliability.NewMaintenanceJob(databases, log),
	}
	schedules := []string{
		cfg.RefreshSchedule,
		cfg.CleanupSchedule,
		cfg.MaintenanceSchedule,
	}

	// R2 backups are optional: enabled only when credentials are configured
	if cfg.BackupsConfigured() {
		r2Client, err := reliability.NewR2Client(
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2SecretAccessKey,
			cfg.R2BucketName,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 client")
		}

		backupService := reliability.NewBackupService(databases, log)
		r2BackupService := reliability.NewR2BackupService(r2Client, backupService, cfg.DataDir, log)

		jobs = append(jobs, reliability.NewBackupJob(r2BackupService, cfg.BackupRetentionDays, log))
		schedules = append(schedules, cfg.BackupSchedule)

		log.Info().Str("bucket", cfg.R2BucketName).Msg("R2 backups enabled")
	} else {
		log.Warn().Msg("R2 credentials not configured, cloud backups disabled")
	}

	for i, job := range jobs {
		if err := sched.AddJob(schedules[i], job); err != nil {
			log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
		}
	}

	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		DataDir:   cfg.DataDir,
		Databases: databases,
		Analysis:  analysishandlers.NewHandler(analysisService, progressHub, log),
		Charts:    chartshandlers.NewHandler(chartsService, log),
		Watchlist: watchlisthandlers.NewHandler(watchlistRepo, log),
		Scheduler: sched,
		Jobs:      jobs,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Give in-flight requests up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
