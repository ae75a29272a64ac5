// Package listing defines the rentable-property resource and its validation
// schema. Orchestration lives in listing/service, persistence in
// listing/store.
package listing

import (
	"time"

	"roost/internal/auth"
	"roost/internal/geocode"
	"roost/internal/media"
)

// Listing is the central entity. Image and Geometry are pointers because they
// are either absent or well-formed composites, never half-filled.
type Listing struct {
	ID          string         `json:"id" bson:"-"`
	Title       string         `json:"title" bson:"title"`
	Description string         `json:"description" bson:"description"`
	Price       float64        `json:"price" bson:"price"`
	Location    string         `json:"location" bson:"location"`
	Country     string         `json:"country" bson:"country"`
	Image       *media.Object  `json:"image,omitempty" bson:"image,omitempty"`
	Geometry    *geocode.Point `json:"geometry,omitempty" bson:"geometry,omitempty"`
	OwnerID     string         `json:"owner_id" bson:"owner_id"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// WithOwner is a listing whose owner reference has been expanded to the
// owner's public profile for display.
type WithOwner struct {
	Listing
	Owner auth.PublicProfile `json:"owner"`
}

// Form carries the client-supplied scalar fields of a create or update
// request, before validation.
type Form struct {
	Title       string
	Description string
	Price       float64
	PriceRaw    string
	Location    string
	Country     string
}

// Patch is the complete replacement state for an update, assembled in memory
// so persistence is a single write.
type Patch struct {
	Title       string         `bson:"title"`
	Description string         `bson:"description"`
	Price       float64        `bson:"price"`
	Location    string         `bson:"location"`
	Country     string         `bson:"country"`
	Image       *media.Object  `bson:"image,omitempty"`
	Geometry    *geocode.Point `bson:"geometry,omitempty"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}
