package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueCritical carries cache invalidation, which readers wait on.
	QueueCritical = "critical"
	// QueueDefault carries warmup and maintenance work.
	QueueDefault = "default"
	// TaskReportsWarmup preloads report datasets into the cache.
	TaskReportsWarmup = "reports:warmup"
	// TaskReportsCacheBump invalidates every cached report dataset.
	TaskReportsCacheBump = "reports:cache_bump"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"

	// WarmupCron runs the warmup every night at 01:15 UTC.
	WarmupCron = "15 1 * * *"
	// CleanupCron prunes idempotency keys every night at 03:30 UTC.
	CleanupCron = "30 3 * * *"

	defaultScopeTimeout = 20 * time.Second
	defaultRetention    = 72 * time.Hour
)

// QueueWeights is the priority split of the worker queues.
func QueueWeights() map[string]int {
	return map[string]int{QueueCritical: 6, QueueDefault: 3}
}

// QueueNames lists the worker queues, most urgent first.
func QueueNames() []string {
	return []string{QueueCritical, QueueDefault}
}

// TaskOptions returns the queue and retry policy of a task type.
func TaskOptions(taskType string) []asynq.Option {
	switch taskType {
	case TaskReportsCacheBump:
		return []asynq.Option{asynq.Queue(QueueCritical), asynq.MaxRetry(5), asynq.Timeout(10 * time.Second)}
	case TaskReportsWarmup:
		return []asynq.Option{asynq.Queue(QueueDefault), asynq.MaxRetry(2), asynq.Timeout(30 * time.Minute)}
	default:
		return []asynq.Option{asynq.Queue(QueueDefault), asynq.MaxRetry(1)}
	}
}

// ReportsWarmupPayload tunes one warmup run.
type ReportsWarmupPayload struct {
	ScopeTimeoutSeconds int `json:"scope_timeout_seconds,omitempty"`
}

// CleanupPayload tunes one idempotency cleanup run.
type CleanupPayload struct {
	RetentionHours int `json:"retention_hours,omitempty"`
}

// NewReportsWarmupTask constructs a warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// NewReportsCacheBumpTask constructs a cache bump task.
func NewReportsCacheBumpTask() *asynq.Task {
	return asynq.NewTask(TaskReportsCacheBump, nil)
}

// NewIdempotencyCleanupTask constructs a cleanup task.
func NewIdempotencyCleanupTask(payload CleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// NewTask builds a task by type name with its default payload, as used by the CLI.
func NewTask(taskType string) (*asynq.Task, error) {
	switch taskType {
	case TaskReportsWarmup:
		return NewReportsWarmupTask(ReportsWarmupPayload{})
	case TaskReportsCacheBump:
		return NewReportsCacheBumpTask(), nil
	case TaskIdempotencyCleanup:
		return NewIdempotencyCleanupTask(CleanupPayload{})
	default:
		return nil, fmt.Errorf("jobs: unknown task %q", taskType)
	}
}

// DefaultCron returns the nightly schedule of the worker.
func DefaultCron() ([]CronRegistration, error) {
	warmup, err := NewReportsWarmupTask(ReportsWarmupPayload{})
	if err != nil {
		return nil, err
	}
	cleanup, err := NewIdempotencyCleanupTask(CleanupPayload{})
	if err != nil {
		return nil, err
	}
	return []CronRegistration{
		{Spec: WarmupCron, Task: warmup, Options: append(TaskOptions(TaskReportsWarmup), asynq.Unique(time.Hour))},
		{Spec: CleanupCron, Task: cleanup, Options: TaskOptions(TaskIdempotencyCleanup)},
	}, nil
}

func decodePayload(t *asynq.Task, dest any) error {
	if len(t.Payload()) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return nil
}
