package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/config"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/logger"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/metrics"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/repository"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/server"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Stop the scheduler and close the storage backend
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}
	loc, _ := cfg.Location()

	log.Info("Starting "+domain.AppName,
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("timezone", loc.String()),
	)

	// Connect the storage backend, retrying while it comes up
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	repo, err := repository.Open(ctx, cfg, logger.Named(log, "repository"))
	cancel()
	if err != nil {
		log.Fatal("Failed to open storage backend", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Every store mutation is written through the sync service
	syncService := service.NewSyncService(repo, m, cfg.Sync, logger.Named(log, "sync"))
	st := store.New(
		store.WithNotifier(syncService),
		store.WithLogger(logger.Named(log, "store")),
	)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = syncService.Restore(ctx, st)
	cancel()
	if err != nil {
		log.Fatal("Failed to restore saved state", zap.Error(err))
	}

	// Create server
	srv, err := server.NewServer(cfg, log, server.Dependencies{
		Store:      st,
		Repository: repo,
		Sync:       syncService,
		Metrics:    m,
		Registry:   registry,
		Location:   loc,
	})
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
