package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simregistry-backend/config"
	"simregistry-backend/handlers"
	"simregistry-backend/metrics"
	"simregistry-backend/repository"
	"simregistry-backend/service"
	"simregistry-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer stores.Close()
	if cfg.DatabaseDriver == config.DriverSQLite {
		// The embedded database has no separate provisioning step
		if err := stores.ApplySchema(ctx); err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("database initialized", "driver", cfg.DatabaseDriver)

	// Initialize storage
	backend, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.StorageType),
		LocalPath:    cfg.LocalPath,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		AWSAccessKey: cfg.AWSAccessKey,
		AWSSecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		logger.Error("failed to initialize storage", "type", cfg.StorageType, "error", err)
		os.Exit(1)
	}
	backend = storage.NewBreakerStorage(backend, storage.DefaultBreakerSettings("photo-storage"), logger)
	photos := storage.NewPhotoStore(backend, storage.WithMaxPhotoBytes(cfg.PhotoMaxBytes))
	logger.Info("storage initialized", "type", cfg.StorageType)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	simMetrics := metrics.New(registry)

	// Initialize services
	simService := service.NewSIMService(
		service.WithOwnerRepository(stores.Owners),
		service.WithLicenseRepository(stores.Licenses),
		service.WithPhotoStore(photos),
		service.WithLogger(logger),
		service.WithMetrics(simMetrics),
	)

	// Initialize handlers
	simHandler := handlers.NewSIMHandler(simService, photos, handlers.GenderNormalizer{Strict: cfg.StrictGender}, logger)
	healthHandler := handlers.NewHealthHandler(stores.Ping, logger)

	// Setup Gin router
	tmpl, err := handlers.LoadTemplates()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}
	r := gin.Default()
	r.MaxMultipartMemory = cfg.PhotoMaxBytes + 1<<20
	r.SetHTMLTemplate(tmpl)
	handlers.RegisterRoutes(r, simHandler, healthHandler, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
