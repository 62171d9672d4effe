// Package metrics records API client telemetry on a dedicated Prometheus
// registry. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeRejected     = "rejected"
	OutcomeMalformed    = "malformed"
	OutcomeNetwork      = "network"
)

type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hiredesk",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of recruitment API calls by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	c.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hiredesk",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of recruitment API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"operation"},
	)

	c.registry.MustRegister(c.requests, c.duration)
	return c
}

// ObserveRequest counts one API call and its latency.
func (c *Collector) ObserveRequest(operation, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(operation, outcome).Inc()
	c.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
