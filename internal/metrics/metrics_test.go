package metrics_test

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/formrelay/internal/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(func() int { return 3 })
	require.NotNil(t, m.Registry())

	m.SubmissionAccepted()
	m.SubmissionAccepted()
	m.ConnectorResult("webhook", "sent")
	m.ConnectorResult("webhook", "failed")
	m.ObserveDispatch(250 * time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, "formrelay_submissions_accepted_total")
	assert.Equal(t, float64(2),
		byName["formrelay_submissions_accepted_total"].GetMetric()[0].GetCounter().GetValue())

	require.Contains(t, byName, "formrelay_connector_results_total")
	assert.Len(t, byName["formrelay_connector_results_total"].GetMetric(), 2)

	require.Contains(t, byName, "formrelay_dispatch_duration_seconds")

	require.Contains(t, byName, "formrelay_queue_depth")
	assert.Equal(t, float64(3),
		byName["formrelay_queue_depth"].GetMetric()[0].GetGauge().GetValue(),
		"queue depth gauge samples the provided func")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.Nil(t, m.Registry())
	assert.NotPanics(t, func() {
		m.SubmissionAccepted()
		m.ObserveDispatch(time.Second)
		m.ConnectorResult("webhook", "sent")
	})
}
