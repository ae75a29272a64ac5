// Package postgres archives audit events for long-term retention queries.
// The Kafka topic remains the source of truth; this table is the queryable
// copy maintained by the consumer.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "roost/pkg/platform/audit"
)

// Schema expected by this store:
//
//	CREATE TABLE IF NOT EXISTS audit_events (
//	    id         BIGSERIAL PRIMARY KEY,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    category   TEXT NOT NULL,
//	    user_id    TEXT NOT NULL DEFAULT '',
//	    subject    TEXT NOT NULL DEFAULT '',
//	    action     TEXT NOT NULL,
//	    reason     TEXT NOT NULL DEFAULT '',
//	    request_id TEXT NOT NULL DEFAULT '',
//	    client_ip  TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX IF NOT EXISTS audit_events_user_idx ON audit_events (user_id, occurred_at);
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	const q = `
		INSERT INTO audit_events (occurred_at, category, user_id, subject, action, reason, request_id, client_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, q,
		event.Timestamp,
		string(event.Action.Category()),
		event.UserID,
		event.Subject,
		string(event.Action),
		event.Reason,
		event.RequestID,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Event, error) {
	const q = `
		SELECT occurred_at, user_id, subject, action, reason, request_id, client_ip
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var action string
		if err := rows.Scan(&event.Timestamp, &event.UserID, &event.Subject, &action, &event.Reason, &event.RequestID, &event.ClientIP); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = audit.Action(action)
		events = append(events, event)
	}
	return events, rows.Err()
}
