package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/productmaster/internal/jobs"
)

// Warmer loads the hot catalog entries into the cache.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// CatalogWarmupJob handles TaskCatalogCacheWarmup.
type CatalogWarmupJob struct {
	Catalog Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCatalogWarmupJob wires dependencies for the warmup handler.
func NewCatalogWarmupJob(catalog Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogWarmupJob {
	return &CatalogWarmupJob{Catalog: catalog, Logger: logger, Metrics: metrics}
}

// Handle processes catalog warmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Catalog == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload CatalogWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Reason == "" {
		payload.Reason = "unspecified"
	}

	tracker := j.Metrics.Track(TaskCatalogCacheWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	warmed, err := j.Catalog.Warm(ctx)
	if err != nil {
		logger.Error("catalog warmup failed", slog.Any("error", err))
		return err
	}
	j.Metrics.AddItems(TaskCatalogCacheWarmup, warmed)
	logger.Info("catalog warmup complete", slog.Int("products", warmed))
	return nil
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
