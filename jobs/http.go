package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/repdesk/repdesk/internal/platform/httpx"
)

// QueueInspector reads queue statistics.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Handler serves queue health for operators.
type Handler struct {
	inspector QueueInspector
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(inspector QueueInspector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

// QueueHealth is the snapshot of one queue.
type QueueHealth struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Paused    bool   `json:"paused"`
}

// Snapshot reads every worker queue. A queue that never received a task
// reports zero counts.
func Snapshot(inspector QueueInspector) ([]QueueHealth, error) {
	names := QueueNames()
	out := make([]QueueHealth, 0, len(names))
	for _, name := range names {
		health := QueueHealth{Queue: name}
		if inspector != nil {
			info, err := inspector.GetQueueInfo(name)
			switch {
			case errors.Is(err, asynq.ErrQueueNotFound):
			case err != nil:
				return nil, fmt.Errorf("jobs: inspect %s: %w", name, err)
			case info != nil:
				health.Pending = info.Pending
				health.Active = info.Active
				health.Scheduled = info.Scheduled
				health.Retry = info.Retry
				health.Archived = info.Archived
				health.Paused = info.Paused
			}
		}
		out = append(out, health)
	}
	return out, nil
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	queues, err := Snapshot(h.inspector)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: queue unavailable", httpx.ErrUnavailable))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"queues": queues})
}
