package geocode

import (
	"context"
	"fmt"
	"time"

	"roost/pkg/platform/sentinel"
)

// StaticGeocoder serves deterministic coordinates with a configurable latency
// to mimic real-world calls. Used in tests and token-less local runs.
type StaticGeocoder struct {
	Latency time.Duration
	// Points maps exact queries to results; queries not present miss.
	Points map[string]Point
}

func (g StaticGeocoder) Forward(_ context.Context, query string) (Point, error) {
	time.Sleep(g.Latency)
	point, ok := g.Points[query]
	if !ok {
		return Point{}, fmt.Errorf("geocode %q: %w", query, sentinel.ErrNoMatch)
	}
	return point, nil
}
