package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsSplitsRunsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveRun("notification_cleanup", 250*time.Millisecond, nil)
	m.ObserveRun("notification_cleanup", 10*time.Millisecond, errors.New("db down"))
	m.ObserveRun("", time.Millisecond, nil)
	m.IncSkippedCycle()

	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("notification_cleanup", OutcomeSuccess)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("notification_cleanup", OutcomeFailure)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("unknown", OutcomeSuccess)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.skipped))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	hist := findMetricFamily(mfs, "backoffice_cron_job_duration_seconds")
	require.NotNil(t, hist)
	for _, metric := range hist.GetMetric() {
		if matchesLabel(metric.GetLabel(), "job", "notification_cleanup") {
			require.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
			require.InDelta(t, 0.26, metric.GetHistogram().GetSampleSum(), 0.0001)
		}
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("job", time.Second, nil)
	m.IncSkippedCycle()

	NewCronJobMetrics(nil).ObserveRun("job", time.Second, errors.New("x"))
}
