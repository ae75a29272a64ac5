// Package geocode converts free-text addresses into geographic coordinates
// via an external forward-geocoding provider.
package geocode

import (
	"context"
)

// Point is a GeoJSON point. Coordinates are [longitude, latitude].
type Point struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

// NewPoint builds a well-formed GeoJSON point.
func NewPoint(lng, lat float64) Point {
	return Point{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Geocoder resolves an address to its best-match coordinate. Implementations
// return sentinel.ErrNoMatch when the provider has zero results and
// sentinel.ErrUnavailable when it cannot be reached.
type Geocoder interface {
	Forward(ctx context.Context, query string) (Point, error)
}
