package geocode

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks provider call outcomes. Every lookup is billed upstream, so
// cache hits are counted separately to watch spend.
type Metrics struct {
	Lookups   prometheus.Counter
	Failures  prometheus.Counter
	NoMatch   prometheus.Counter
	CacheHits prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_geocode_lookups_total",
			Help: "Forward geocoding requests sent to the provider",
		}),
		Failures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_geocode_failures_total",
			Help: "Forward geocoding requests that failed (transport or provider error)",
		}),
		NoMatch: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_geocode_no_match_total",
			Help: "Forward geocoding requests that returned zero features",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_geocode_cache_hits_total",
			Help: "Lookups served from the cache instead of the provider",
		}),
	}
}
