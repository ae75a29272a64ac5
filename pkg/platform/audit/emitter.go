package audit

import (
	"context"
	"log/slog"
	"time"

	"roost/pkg/requestcontext"
)

// Emitter is what domain services hold. Emission never blocks a request:
// events go into a bounded inbox and are dropped (and counted in logs) when
// the worker falls behind.
type Emitter struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewEmitter builds an emitter and the inbox the worker drains.
func NewEmitter(buffer int, logger *slog.Logger) *Emitter {
	return &Emitter{inbox: make(chan Event, buffer), logger: logger}
}

// Inbox exposes the channel for the worker.
func (e *Emitter) Inbox() <-chan Event {
	return e.inbox
}

// Emit enriches the event from the request context and enqueues it.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	select {
	case e.inbox <- event:
	default:
		e.logger.Warn("audit inbox full, dropping event",
			"action", string(event.Action), "subject", event.Subject)
	}
}
