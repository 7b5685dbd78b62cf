package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/order-orchestrator/internal/bootstrap"
	"github.com/jcmexdev/order-orchestrator/internal/clients"
	"github.com/jcmexdev/order-orchestrator/internal/config"
	"github.com/jcmexdev/order-orchestrator/internal/httpx"
	"github.com/jcmexdev/order-orchestrator/internal/orchestrator"
	"github.com/jcmexdev/order-orchestrator/internal/pkg/cache"
	"github.com/jcmexdev/order-orchestrator/internal/pkg/telemetry"
	"github.com/jcmexdev/order-orchestrator/internal/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.OTelServiceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		slog.Error("failed to create database directory", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	repo, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	userURL, err := url.Parse(cfg.UserServiceURL)
	if err != nil {
		slog.Error("invalid user service URL", "url", cfg.UserServiceURL, "error", err)
		os.Exit(1)
	}
	productURL, err := url.Parse(cfg.ProductServiceURL)
	if err != nil {
		slog.Error("invalid product service URL", "url", cfg.ProductServiceURL, "error", err)
		os.Exit(1)
	}

	identity := clients.NewIdentity(cfg.UserServiceURL, cfg.ClientTimeout)
	inventory := clients.NewInventory(cfg.ProductServiceURL, cfg.ClientTimeout)
	saga := orchestrator.New(identity, inventory, repo, repo)
	gate := bootstrap.NewGate(repo)

	var orderCache cache.Cache
	if cfg.RedisAddr != "" {
		orderCache = cache.NewRedisCache(cfg.RedisAddr, "order")
	}

	handler := httpx.NewHandler(saga, repo, orderCache)
	router := httpx.NewRouter(handler, gate,
		httpx.NewProxy(userURL),
		httpx.NewProxy(productURL),
		cfg.MaxWorkers,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: otelhttp.NewHandler(router, "order-service"),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("order service running", "addr", srv.Addr,
		"user_service", cfg.UserServiceURL, "product_service", cfg.ProductServiceURL)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("order service stopped")
}
