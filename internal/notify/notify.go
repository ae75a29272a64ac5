// Package notify queues user-visible notices to surface on the next rendered
// page. Delivery is fire-and-forget: a failed enqueue is logged, never
// propagated, and never fails the operation that produced it.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Severity classifies a notice for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notice is one message queued for a session.
type Notice struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	QueuedAt time.Time `json:"queued_at"`
}

// Store holds queued notices per session until the next page drains them.
type Store interface {
	Push(ctx context.Context, sessionID string, notice Notice) error
	// Pop drains and returns all queued notices for the session.
	Pop(ctx context.Context, sessionID string) ([]Notice, error)
}

// Notifier is the collaborator handed to services.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, severity Severity, message string)
}

// Service implements Notifier over a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Notify queues a notice. Errors are swallowed after logging; there is no
// delivery guarantee by contract.
func (s *Service) Notify(ctx context.Context, sessionID string, severity Severity, message string) {
	if sessionID == "" {
		return
	}
	notice := Notice{Severity: severity, Message: message, QueuedAt: time.Now()}
	if err := s.store.Push(ctx, sessionID, notice); err != nil {
		s.logger.WarnContext(ctx, "failed to queue notice",
			"session_id", sessionID, "severity", string(severity), "error", err)
	}
}

// Drain returns and clears the pending notices for a session.
func (s *Service) Drain(ctx context.Context, sessionID string) []Notice {
	if sessionID == "" {
		return nil
	}
	notices, err := s.store.Pop(ctx, sessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to drain notices", "session_id", sessionID, "error", err)
		return nil
	}
	return notices
}
