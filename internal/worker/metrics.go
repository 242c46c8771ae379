package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the worker's Prometheus collectors
type Metrics struct {
	Decisions *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	Latency   *prometheus.HistogramVec
}

// NewMetrics registers the worker collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "router_decisions_total",
				Help: "Total number of routed requests by decision",
			},
			[]string{"decision", "path"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "router_failures_total",
				Help: "Total number of routing requests that failed",
			},
			[]string{"stage"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "router_route_duration_seconds",
				Help:    "Duration of routing in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}
}
