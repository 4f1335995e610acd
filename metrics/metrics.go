// Package metrics records per-stage pipeline statistics with prometheus:
// elements produced, per-element self time and failures. Wrap any stream
// stage with Instrument to time it; instrumentation is transparent to
// checkpoints.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline collectors, labeled by stage name.
type Metrics struct {
	Produced *prometheus.CounterVec
	SelfTime *prometheus.HistogramVec
	Failures *prometheus.CounterVec
}

// New creates the collectors and registers them with reg (pass
// prometheus.DefaultRegisterer for the default registry).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Produced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedbowl",
			Name:      "elements_produced_total",
			Help:      "Elements produced by each pipeline stage.",
		}, []string{"stage"}),
		SelfTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "feedbowl",
			Name:      "self_time_seconds",
			Help:      "Time spent producing one element in each stage.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 2, 24),
		}, []string{"stage"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedbowl",
			Name:      "failures_total",
			Help:      "Terminal failures observed by each pipeline stage.",
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.Produced, m.SelfTime, m.Failures)
	}
	return m
}

// observe records one produced element and its production time.
func (m *Metrics) observe(stage string, d time.Duration) {
	m.Produced.WithLabelValues(stage).Inc()
	m.SelfTime.WithLabelValues(stage).Observe(d.Seconds())
}
