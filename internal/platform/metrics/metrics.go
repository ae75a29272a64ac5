package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-wide Prometheus metrics. Domain packages keep
// their own metric structs; this covers the HTTP layer and shared counters.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	PanicsRecovered prometheus.Counter
}

// New creates and registers all shared Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roost_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roost_http_requests_total",
			Help: "HTTP requests by route, method, and status class",
		}, []string{"route", "method", "status"}),
		PanicsRecovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_http_panics_recovered_total",
			Help: "Panics caught by the recovery middleware",
		}),
	}
}
