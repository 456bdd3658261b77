package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spcgrid/spcgrid/internal/cache"
	"github.com/spcgrid/spcgrid/internal/config"
	"github.com/spcgrid/spcgrid/internal/logging"
	"github.com/spcgrid/spcgrid/internal/queue"
	"github.com/spcgrid/spcgrid/internal/router"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Chart server starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Chart result cache (optional)
	resultCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to initialize result cache", "error", err)
	}
	if resultCache != nil {
		defer func() { _ = resultCache.Close() }()
		logger.Info("Result cache initialized", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL)
	} else {
		logger.Info("Result cache disabled")
	}

	// Violation event publisher
	logger.Info("Connecting to event broker", "type", cfg.Events.Type, "url", cfg.Events.URL)
	queueClient, err := queue.NewQueue(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to connect to event broker", "error", err)
	}
	notifier := queue.NewNotifier(queueClient, cfg.Events.Subject)
	defer func() { _ = notifier.Close() }()
	logger.Info("Event broker connection established", "subject", cfg.Events.Subject)

	// In-process alert log fed by the same subject the notifier publishes to
	alerts := queue.NewAlertListener(logger, queueClient, cfg.Events.Subject)
	if err := alerts.Start(); err != nil {
		logger.Fatal("Failed to start violation alert listener", "error", err)
	}
	defer func() { _ = alerts.Stop() }()

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, resultCache, notifier, *cfg)

	go func() {
		addr := cfg.Server.ListenAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
