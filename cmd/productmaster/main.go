package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/productmaster/internal/app"
	"github.com/odyssey-erp/productmaster/internal/observability"
	"github.com/odyssey-erp/productmaster/internal/overlay"
	"github.com/odyssey-erp/productmaster/internal/platform/cache"
	"github.com/odyssey-erp/productmaster/internal/product"
	"github.com/odyssey-erp/productmaster/internal/rpc"
	"github.com/odyssey-erp/productmaster/internal/shared"
	"github.com/odyssey-erp/productmaster/internal/shell"
	"github.com/odyssey-erp/productmaster/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "productmaster")

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "productmaster_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	invoker := rpc.NewHTTPClient(cfg.CatalogURL, cfg.RPCTimeout,
		rpc.WithObserver(metrics),
		rpc.WithLogger(logger),
	)
	overlays := overlay.NewRenderer(templates, "partials/overlay.html")
	productHandler := product.NewHandler(logger, product.NewAPI(invoker, product.WithFindTimeout(cfg.RPCTimeout)), templates, csrfManager, overlays)

	shells := shell.NewRegistry(cfg.ShellIdleTTL, metrics.OverlayListener(), logger)
	go shells.RunSweeper(ctx, time.Minute)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Shells:         shells,
		Overlays:       overlays,
		ProductHandler: productHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("catalog", cfg.CatalogURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
