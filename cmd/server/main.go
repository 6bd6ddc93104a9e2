package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vytor/enemresultados/internal/api"
	"github.com/vytor/enemresultados/internal/backend"
	"github.com/vytor/enemresultados/internal/config"
	"github.com/vytor/enemresultados/internal/db"
	"github.com/vytor/enemresultados/internal/jobs"
	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/metrics"
	"github.com/vytor/enemresultados/internal/repository"
	"github.com/vytor/enemresultados/internal/repository/sqlite"
	"github.com/vytor/enemresultados/internal/services"
	"github.com/vytor/enemresultados/internal/session"
	"github.com/vytor/enemresultados/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Resultados Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("backend_urls=%v", cfg.BackendURLs)
	log.Debug("default_period=%d", cfg.DefaultPeriod)
	log.Debug("chart_size=%dx%d", cfg.ChartWidth, cfg.ChartHeight)
	log.Debug("redraw_delay=%v", cfg.RedrawDelay)
	log.Debug("reload_worker_count=%d", cfg.ReloadWorkerCount)
	log.Debug("reload_queue_size=%d", cfg.ReloadQueueSize)
	log.Debug("render_cache_max_cost=%d", cfg.RenderCacheMaxCost)
	log.Debug("session_idle_ttl=%v", cfg.SessionIdleTTL)

	metrics.Init()
	loc := cfg.Location()

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	repo := sqlite.NewRecordRepository(database.DB, loc)

	// Records come from the upstream backend when one is configured, and
	// from the local store otherwise.
	var source repository.RecordSource = repo
	if len(cfg.BackendURLs) > 0 {
		log.Info("reading records from backend (%d base URLs)", len(cfg.BackendURLs))
		source = backend.New(cfg.BackendURLs, cfg.BackendToken, loc)
	} else {
		log.Info("reading records from the local database")
	}

	cache, err := services.NewImageCache(cfg.RenderCacheMaxCost)
	if err != nil {
		log.Error("failed to create image cache: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	// Initialize services
	sessions := session.NewStore(session.WithIdleTTL(cfg.SessionIdleTTL))
	resultsService := services.NewResultsService(source, repo, sessions, loc)
	chartService := services.NewChartService(sessions, cache, services.ChartConfig{
		Width:       cfg.ChartWidth,
		Height:      cfg.ChartHeight,
		RedrawDelay: cfg.RedrawDelay,
	})

	// Initialize worker pool
	reloadPool := worker.NewPool(cfg.ReloadWorkerCount, cfg.ReloadQueueSize)

	srv := &api.Server{
		Results:       resultsService,
		Charts:        chartService,
		Queue:         jobs.NewWorkerQueue(reloadPool, resultsService),
		DB:            database,
		DefaultPeriod: cfg.DefaultPeriod,
		CORSOrigins:   cfg.CORSOrigins,
	}

	ctx, cancel := context.WithCancel(context.Background())
	reloadPool.Start(ctx)
	go sessions.Run(logger.NewContext(ctx, log), time.Minute)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping reload pool")
	cancel()
	reloadPool.Stop()

	log.Info("===========================================")
	log.Info("Resultados Server Stopped")
	log.Info("===========================================")
}
