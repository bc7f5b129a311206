package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/repdesk/repdesk/internal/jobs"
)

// Bumper invalidates the report cache.
type Bumper interface {
	Bump(ctx context.Context) error
}

// CacheBumpJob bumps the report cache version on demand.
type CacheBumpJob struct {
	Cache   Bumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes cache bump tasks.
func (j *CacheBumpJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("cache bump: handler not configured")
	}
	run := j.Metrics.Start(TaskReportsCacheBump)
	if err := j.Cache.Bump(ctx); err != nil {
		jobLogger(j.Logger, TaskReportsCacheBump).Error("bump report cache", slog.Any("error", err))
		return run.Finish(err)
	}
	jobLogger(j.Logger, TaskReportsCacheBump).Info("report cache bumped")
	return run.Finish(nil)
}

// Cleaner deletes idempotency keys older than a retention window.
type Cleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob prunes expired idempotency keys.
type IdempotencyCleanupJob struct {
	Store   Cleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes cleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload CleanupPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	retention := defaultRetention
	if payload.RetentionHours > 0 {
		retention = time.Duration(payload.RetentionHours) * time.Hour
	}
	run := j.Metrics.Start(TaskIdempotencyCleanup)
	logger := jobLogger(j.Logger, TaskIdempotencyCleanup)
	removed, err := j.Store.Cleanup(ctx, retention)
	if err != nil {
		logger.Error("cleanup idempotency keys", slog.Any("error", err))
		return run.Finish(err)
	}
	j.Metrics.AddPruned(removed)
	logger.Info("idempotency keys pruned", slog.Int64("removed", removed), slog.Duration("retention", retention))
	return run.Finish(nil)
}
