package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ressKim-io/prompt-guard/internal/adapter/cache"
	"github.com/ressKim-io/prompt-guard/internal/adapter/client"
	"github.com/ressKim-io/prompt-guard/internal/adapter/http/router"
	"github.com/ressKim-io/prompt-guard/internal/adapter/inference"
	"github.com/ressKim-io/prompt-guard/internal/domain/service"
	rediscache "github.com/ressKim-io/prompt-guard/internal/infrastructure/cache"
	"github.com/ressKim-io/prompt-guard/internal/infrastructure/config"
	"github.com/ressKim-io/prompt-guard/internal/infrastructure/logger"
	"github.com/ressKim-io/prompt-guard/internal/infrastructure/metrics"
	"github.com/ressKim-io/prompt-guard/internal/usecase"
)

func main() {
	var err error
	switch {
	case len(os.Args) > 1 && os.Args[1] == "healthcheck":
		err = healthcheck(os.Args[2:])
	case len(os.Args) > 1 && os.Args[1] == "classify":
		err = classify(os.Args[2:])
	default:
		err = run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize Redis result cache (optional, continue without it)
	var resultCache service.ResultCache
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
		} else {
			log.Info("Connected to Redis", zap.String("address", cfg.Redis.Addr()))
			defer func() { _ = redisClient.Close() }()
			resultCache = cache.NewRedisResultCache(redisClient, cfg.Redis.TTL, log)
		}
	}

	// Model lifecycle
	gate := usecase.NewReadinessGate()
	store := usecase.NewModelStore(
		usecase.ModelStoreConfig{
			ModelID:    cfg.Model.ID,
			CacheDir:   cfg.Model.CacheDir,
			Token:      cfg.Model.Token,
			RemoteONNX: cfg.Model.OnnxFile,
		},
		client.NewHubClient(cfg.Model.HubURL, cfg.Model.Token, cfg.Model.Revision, cfg.Model.DownloadTimeout),
		inference.Opener{
			RuntimeLibrary: cfg.Model.RuntimeLibrary,
			MaxLength:      cfg.Model.MaxLength,
		},
		gate,
		log,
		m,
	)

	loadCtx, cancelLoad := context.WithCancel(context.Background())
	defer cancelLoad()
	loaded := store.Start(loadCtx)

	// Setup router
	r := router.Setup(router.Dependencies{
		Gate:       gate,
		ClassifyUC: usecase.NewClassifyUsecase(gate, resultCache, cfg.Model.ID, log, m),
		ModelID:    cfg.Model.ID,
		Gatherer:   reg,
		Logger:     log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("address", srv.Addr), zap.String("model", cfg.Model.ID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Stop an in-flight download and wait for the loader to settle
	cancelLoad()
	select {
	case <-loaded:
		releaseInference(gate, inference.ShutdownRuntime, log)
	case <-ctx.Done():
		log.Warn("Model loader still running at exit")
	}

	log.Info("Server exited")
	return nil
}

// releaseInference closes the loaded model, if any, and then tears down the
// inference runtime. The runtime may be up even when the load failed.
func releaseInference(gate *usecase.ReadinessGate, shutdownRuntime func() error, log *zap.Logger) {
	if model, err := gate.Model(); err == nil {
		if err := model.Close(); err != nil {
			log.Warn("Failed to close model", zap.Error(err))
		}
	}
	if err := shutdownRuntime(); err != nil {
		log.Warn("Failed to shut down inference runtime", zap.Error(err))
	}
}
