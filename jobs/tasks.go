package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogCacheWarmup re-populates the first catalog search page.
	TaskCatalogCacheWarmup = "catalog:cache_warmup"
	// CatalogWarmupCronSpec runs the warmup every fifteen minutes.
	CatalogWarmupCronSpec = "*/15 * * * *"
)

// CatalogWarmupPayload records why a warmup was requested.
type CatalogWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewCatalogWarmupTask constructs an Asynq task.
func NewCatalogWarmupTask(payload CatalogWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogCacheWarmup, data, asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}

// CatalogWarmupCron schedules the periodic warmup.
func CatalogWarmupCron() (CronRegistration, error) {
	task, err := NewCatalogWarmupTask(CatalogWarmupPayload{Reason: "cron"})
	if err != nil {
		return CronRegistration{}, err
	}
	return CronRegistration{
		Spec:    CatalogWarmupCronSpec,
		Task:    task,
		Options: []asynq.Option{asynq.Queue(QueueDefault)},
	}, nil
}
