package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitewatch/config"
	"sitewatch/db"
	"sitewatch/geo"
	"sitewatch/ipecho"
	"sitewatch/logs"
	"sitewatch/metrics"
	"sitewatch/recorder"
	"sitewatch/server"
)

func main() {
	// Load config
	cfg := config.Load()

	// Initialize logger
	logger := logs.NewLogger(cfg)
	logger.Info("starting sitewatch")

	// Initialize storage
	storage := db.NewStorage(cfg.Store.LogFile, logger)

	// Pick the geolocation backend
	var resolver geo.Resolver
	if cfg.Geo.Provider == "mmdb" {
		mmdb, err := geo.NewMMDBResolver(cfg.Geo.MMDBPath)
		if err != nil {
			logger.Error("failed to open geo database", "error", err)
			os.Exit(1)
		}
		defer mmdb.Close()
		resolver = mmdb
		logger.Info("using local geo database", "path", cfg.Geo.MMDBPath)
	} else {
		resolver = geo.NewHTTPResolver(cfg.Geo.URL, cfg.Geo.Timeout)
		logger.Info("using geo lookup service", "url", cfg.Geo.URL)
	}

	echo := ipecho.NewClient(cfg.IPEcho.URL, cfg.IPEcho.Timeout)
	rec := recorder.New(storage.VisitorLog(), resolver, echo, logger)

	// Initialize HTTP server
	httpServer := server.NewServer(storage.VisitorLog(), rec, logger, cfg)

	// Start metrics server
	metrics.StartMetricsServer(cfg.Server.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("starting http server")
		if err := httpServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("sitewatch started successfully")
	<-sigChan
	logger.Info("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("sitewatch stopped")
}
