package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments outbound API calls.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	unauthorized prometheus.Counter
}

// NewMetrics registers the client collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apexclient",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Outbound API requests by operation and status code.",
		}, []string{"operation", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apexclient",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Outbound API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		unauthorized: f.NewCounter(prometheus.CounterOpts{
			Namespace: "apexclient",
			Name:      "unauthorized_total",
			Help:      "Responses classified unauthorized; each one cleared the stored session.",
		}),
	}
}
