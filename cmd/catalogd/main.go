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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/productmaster/internal/app"
	"github.com/odyssey-erp/productmaster/internal/catalog"
	"github.com/odyssey-erp/productmaster/internal/observability"
	"github.com/odyssey-erp/productmaster/internal/platform/cache"
	"github.com/odyssey-erp/productmaster/internal/platform/db"
	"github.com/odyssey-erp/productmaster/internal/rpc"
	"github.com/odyssey-erp/productmaster/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping catalog startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "catalogd")

	shape, err := catalog.ParseWireShape(cfg.CatalogWireShape)
	if err != nil {
		logger.Error("wire shape", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConnIdleTime: 5 * time.Minute})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}

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

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	productCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	service := catalog.NewService(catalog.NewRepository(pool), productCache, jobClient, logger)

	rpcServer := rpc.NewServer(logger)
	catalog.NewCommands(service, shape).Register(rpcServer)

	router := app.NewCatalogRouter(app.CatalogRouterParams{
		Logger:     logger,
		Config:     cfg,
		RPC:        rpcServer,
		JobHandler: jobs.NewHandler(inspector, logger),
		Metrics:    observability.NewMetrics(),
	})

	server := &http.Server{
		Addr:         cfg.CatalogAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting catalog server", slog.String("addr", cfg.CatalogAddr), slog.String("wire_shape", cfg.CatalogWireShape))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return productCache.ListenForInvalidation(gctx, func(version int64) {
			logger.Debug("catalog cache version applied", slog.Int64("version", version))
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("catalog server", slog.Any("error", err))
		os.Exit(1)
	}
}
