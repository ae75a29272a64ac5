// Package metrics tracks listing pipeline outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Created         prometheus.Counter
	Updated         prometheus.Counter
	Deleted         prometheus.Counter
	CreateFailures  *prometheus.CounterVec
	OwnershipDenied prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_listings_created_total",
			Help: "Listings successfully created",
		}),
		Updated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_listings_updated_total",
			Help: "Listings successfully updated",
		}),
		Deleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_listings_deleted_total",
			Help: "Listings successfully deleted",
		}),
		CreateFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roost_listing_create_failures_total",
			Help: "Create pipeline aborts by failing step",
		}, []string{"step"}),
		OwnershipDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "roost_listing_ownership_denied_total",
			Help: "Mutations rejected because the requester does not own the listing",
		}),
	}
}
