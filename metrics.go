package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// panelMetrics records invocation counts and latencies.
type panelMetrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    prometheus.Gauge
}

func newPanelMetrics() *panelMetrics {
	m := &panelMetrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudpanel_invocations_total",
				Help: "Total number of action invocations by outcome",
			},
			[]string{"action", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudpanel_invocation_duration_seconds",
				Help:    "Time from request issue to outcome",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"action"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cloudpanel_invocations_in_flight",
			Help: "Invocations currently waiting on their endpoint",
		}),
	}
	m.registry.MustRegister(m.invocations, m.duration, m.inFlight)
	return m
}

func (m *panelMetrics) begin() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *panelMetrics) observe(label string, o outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.invocations.WithLabelValues(label, o.String()).Inc()
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}
