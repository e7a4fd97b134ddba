// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles the collectors used across the service. A nil *Metrics is
// valid and turns every observation into a no-op, which keeps tests and
// optional wiring simple.
type Metrics struct {
	registry *prometheus.Registry

	submissionsAccepted prometheus.Counter
	dispatchDuration    prometheus.Histogram
	connectorResults    *prometheus.CounterVec
}

// New creates the metrics set. queueLen, when non-nil, is sampled for the
// queue depth gauge on every scrape.
func New(queueLen func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: reg,
		submissionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formrelay_submissions_accepted_total",
			Help: "Form submissions accepted and enqueued for dispatch.",
		}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "formrelay_dispatch_duration_seconds",
			Help:    "Wall time of one full connector fan-out for a submission.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		connectorResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formrelay_connector_results_total",
			Help: "Connector execution results by connector type and status.",
		}, []string{"connector_type", "status"}),
	}
	reg.MustRegister(m.submissionsAccepted, m.dispatchDuration, m.connectorResults)

	if queueLen != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "formrelay_queue_depth",
			Help: "Number of work items waiting in the dispatch queue.",
		}, func() float64 { return float64(queueLen()) }))
	}
	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SubmissionAccepted counts one accepted submission.
func (m *Metrics) SubmissionAccepted() {
	if m == nil {
		return
	}
	m.submissionsAccepted.Inc()
}

// ObserveDispatch records the duration of one dispatch fan-out.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDuration.Observe(d.Seconds())
}

// ConnectorResult counts one connector outcome.
func (m *Metrics) ConnectorResult(connectorType, status string) {
	if m == nil {
		return
	}
	m.connectorResults.WithLabelValues(connectorType, status).Inc()
}
