// Package jobmetrics instruments the asynq task handlers.
package jobmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the job collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	warmed      *prometheus.CounterVec
	pruned      prometheus.Counter
}

// NewMetrics builds the collectors and registers them on reg when it is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repdesk",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Job executions by task type and outcome.",
		}, []string{"job", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "repdesk",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Job execution time.",
			Buckets:   []float64{.05, .1, .5, 1, 5, 15, 30, 60, 120},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "repdesk",
			Subsystem: "jobs",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per task type.",
		}, []string{"job"}),
		warmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repdesk",
			Subsystem: "reports",
			Name:      "datasets_warmed_total",
			Help:      "Representative datasets loaded into the report cache by the warmup job.",
		}, []string{"status"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "repdesk",
			Subsystem: "jobs",
			Name:      "idempotency_keys_pruned_total",
			Help:      "Idempotency keys removed by the cleanup job.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration, m.lastSuccess, m.warmed, m.pruned)
	}
	return m
}

// Run times one execution of a task.
type Run struct {
	metrics *Metrics
	job     string
	start   time.Time
	now     func() time.Time
}

// Start begins timing job.
func (m *Metrics) Start(job string) *Run {
	return &Run{metrics: m, job: job, start: time.Now(), now: time.Now}
}

// Finish records the outcome and returns err unchanged.
func (r *Run) Finish(err error) error {
	if r == nil || r.metrics == nil {
		return err
	}
	end := r.now()
	status := "success"
	if err != nil {
		status = "failure"
	} else {
		r.metrics.lastSuccess.WithLabelValues(r.job).Set(float64(end.Unix()))
	}
	r.metrics.runs.WithLabelValues(r.job, status).Inc()
	r.metrics.duration.WithLabelValues(r.job).Observe(end.Sub(r.start).Seconds())
	return err
}

// AddWarmed counts datasets preloaded by one warmup run.
func (m *Metrics) AddWarmed(warmed, failed int) {
	if m == nil {
		return
	}
	if warmed > 0 {
		m.warmed.WithLabelValues("success").Add(float64(warmed))
	}
	if failed > 0 {
		m.warmed.WithLabelValues("failure").Add(float64(failed))
	}
}

// AddPruned counts removed idempotency keys.
func (m *Metrics) AddPruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.pruned.Add(float64(n))
}
