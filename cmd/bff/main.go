package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/splitkaro/bff-go/internal/config"
	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/handler"
	"github.com/splitkaro/bff-go/internal/infra/cache"
	"github.com/splitkaro/bff-go/internal/infra/client"
	"github.com/splitkaro/bff-go/internal/infra/observability"
	"github.com/splitkaro/bff-go/internal/infra/prefs"
	"github.com/splitkaro/bff-go/internal/infra/resilience"
	"github.com/splitkaro/bff-go/internal/service"
	"github.com/splitkaro/bff-go/internal/state"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("upstream_api_url", cfg.UpstreamAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.String("prefs_path", cfg.PrefsPath),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint, "splitkaro-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	groupCache := cache.New[[]domain.Group](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("expense-api")

	// --- Upstream client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	upstream := client.New(httpClient, cfg.UpstreamAPIURL, cb, resilienceCfg)

	// --- Preferences store ---
	prefStore, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		logger.Fatal("failed to open prefs store", zap.Error(err))
	}
	defer prefStore.Close()

	// --- State ---
	store := state.NewStore(upstream, prefStore, logger)

	// --- Services ---
	svcs := handler.Services{
		Auth:     service.NewAuthService(upstream, store, logger),
		Groups:   service.NewGroupService(upstream, store, groupCache, metrics, logger),
		Expenses: service.NewExpenseService(upstream, store, groupCache, metrics, logger),
		Devices:  service.NewDeviceService(upstream, store, prefStore, logger),
		Prefs:    prefStore,
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, logger, cfg.AllowedOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
