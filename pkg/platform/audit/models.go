// Package audit captures structured events emitted from domain logic. Events
// flow through an in-process inbox to a background worker that publishes them
// to the Kafka topic; a consumer archives the topic into Postgres.
package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose, enabling
// distinct retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: account
	// creation, listing ownership changes, deletions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// auth failures, rejected ownership checks.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine events useful for debugging with
	// shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Kept
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Subject   string
	Action    Action
	Reason    string
	RequestID string
	ClientIP  string
}

// Action names the thing that happened.
type Action string

const (
	ActionListingCreated  Action = "listing_created"
	ActionListingUpdated  Action = "listing_updated"
	ActionListingDeleted  Action = "listing_deleted"
	ActionUserRegistered  Action = "user_registered"
	ActionLoginSucceeded  Action = "login_succeeded"
	ActionLoginFailed     Action = "login_failed"
	ActionOwnershipDenied Action = "ownership_denied"
)

var actionCategories = map[Action]EventCategory{
	ActionListingCreated:  CategoryCompliance,
	ActionListingUpdated:  CategoryCompliance,
	ActionListingDeleted:  CategoryCompliance,
	ActionUserRegistered:  CategoryCompliance,
	ActionLoginSucceeded:  CategoryOperations,
	ActionLoginFailed:     CategorySecurity,
	ActionOwnershipDenied: CategorySecurity,
}

// Category derives the category for an action. Unknown actions default to
// operations so nothing is dropped.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Store is the archival sink behind the consumer.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}

// Publisher sends events to the durable transport.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
