package jobmetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	fixed := time.Unix(1_700_000_000, 0)

	run := m.Start("reports:warmup")
	run.now = func() time.Time { return fixed }
	assert.NoError(t, run.Finish(nil))

	boom := errors.New("boom")
	assert.Equal(t, boom, m.Start("reports:warmup").Finish(boom))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("reports:warmup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("reports:warmup", "failure")))
	assert.Equal(t, float64(fixed.Unix()), testutil.ToFloat64(m.lastSuccess.WithLabelValues("reports:warmup")))
}

func TestCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddWarmed(3, 1)
	m.AddWarmed(0, 0)
	m.AddPruned(4)
	m.AddPruned(-1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.warmed.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.warmed.WithLabelValues("failure")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.pruned))
}

func TestRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.AddPruned(1)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "repdesk_jobs_idempotency_keys_pruned_total")

	assert.NotPanics(t, func() { NewMetrics(nil).AddPruned(1) })
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddWarmed(1, 1)
	m.AddPruned(2)
	assert.NoError(t, m.Start("x").Finish(nil))
}
