package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/config"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/logger"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/metrics"
	custommiddleware "github.com/jjsuplementos77-arch/FINANCAS/internal/middleware"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/repository"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/scheduler"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the long-lived components built by main before the
// server
type Dependencies struct {
	Store      *store.Store
	Repository repository.SnapshotRepository
	Sync       *service.SyncService
	Metrics    *metrics.Metrics
	Registry   *prometheus.Registry
	Location   *time.Location
}

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	deps      Dependencies
	scheduler *scheduler.Scheduler
	limiter   *redis.Client
}

func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) (*Server, error) {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(logger.Named(log, "http")))
	router.Use(custommiddleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(log))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	var limiter *redis.Client
	if cfg.RateLimit.Requests > 0 {
		limiter = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(limiter, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "financas_rate_limit",
		}, logger.Named(log, "ratelimit")))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"storage": cfg.Storage.Driver,
			"sync":    string(deps.Sync.State().Status),
		})
	})
	router.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	// Initialize services
	handlerLog := logger.Named(log, "api")
	productService := service.NewProductService(deps.Store, deps.Metrics)
	saleService := service.NewSaleService(deps.Store, deps.Metrics, deps.Location, logger.Named(log, "sales"))
	reportService := service.NewReportService(deps.Store, deps.Location)
	backupService := service.NewBackupService(deps.Store, deps.Metrics, logger.Named(log, "backup"))

	// Register routes
	transport.NewProductHandler(productService, saleService, handlerLog).RegisterRoutes(router)
	transport.NewSaleHandler(saleService, reportService, handlerLog).RegisterRoutes(router)
	transport.NewReportHandler(reportService, handlerLog).RegisterRoutes(router)
	transport.NewBackupHandler(backupService, handlerLog).RegisterRoutes(router)
	transport.NewSystemHandler(deps.Sync, handlerLog).RegisterRoutes(router)

	backups := scheduler.NewScheduler(cfg.Backup, backupService, deps.Location, logger.Named(log, "scheduler"))
	if err := backups.Start(); err != nil {
		if limiter != nil {
			limiter.Close()
		}
		return nil, fmt.Errorf("failed to start backup scheduler: %w", err)
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    log,
		deps:      deps,
		scheduler: backups,
		limiter:   limiter,
	}

	return server, nil
}

// Close stops background work and releases the storage backend. Call it
// after Shutdown so no request is still writing.
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.scheduler.Stop()
	if s.deps.Sync != nil {
		s.deps.Sync.Stop()
	}

	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			s.logger.Error("Failed to close rate limit client", zap.Error(err))
		}
	}

	if s.deps.Repository != nil {
		if err := s.deps.Repository.Close(); err != nil {
			s.logger.Error("Failed to close storage backend", zap.Error(err))
			return err
		}
	}

	s.logger.Sync()
	return nil
}
