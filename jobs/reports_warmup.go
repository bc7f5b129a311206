package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/repdesk/repdesk/internal/jobs"
	"github.com/repdesk/repdesk/internal/reporting"
)

// Warmer loads report datasets into the cache.
type Warmer interface {
	Warm(ctx context.Context, perScope time.Duration, onError func(reporting.Scope, error)) (int, error)
}

// ReportsWarmupJob pre-populates the report cache for active representatives.
type ReportsWarmupJob struct {
	Reports Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(reports Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: reports, Logger: logger, Metrics: metrics}
}

// Handle processes warmup tasks. Failing scopes are logged and counted; the
// run only fails when the scope list cannot be loaded.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := decodePayload(t, &payload); err != nil {
		return err
	}
	perScope := defaultScopeTimeout
	if payload.ScopeTimeoutSeconds > 0 {
		perScope = time.Duration(payload.ScopeTimeoutSeconds) * time.Second
	}

	run := j.Metrics.Start(TaskReportsWarmup)
	logger := jobLogger(j.Logger, TaskReportsWarmup)
	start := time.Now()
	logger.Info("starting reports warmup", slog.Duration("scope_timeout", perScope))

	failed := 0
	warmed, err := j.Reports.Warm(ctx, perScope, func(scope reporting.Scope, err error) {
		failed++
		logger.Warn("warm scope", slog.Int64("tenant_id", scope.TenantID), slog.String("representative_id", scope.ActorID), slog.Any("error", err))
	})
	j.Metrics.AddWarmed(warmed, failed)
	if err != nil {
		logger.Error("reports warmup", slog.Any("error", err))
		return run.Finish(err)
	}
	logger.Info("completed reports warmup", slog.Int("scopes", warmed), slog.Int("failed", failed), slog.Duration("duration", time.Since(start)))
	return run.Finish(nil)
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}
