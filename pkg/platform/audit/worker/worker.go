// Package worker drains the audit inbox into the publisher in the background.
package worker

import (
	"context"
	"log/slog"

	audit "roost/pkg/platform/audit"
)

// Worker consumes audit events from a channel and publishes them. Publish
// failures are logged and the event is dropped; auditing never takes the
// process down.
type Worker struct {
	publisher audit.Publisher
	inbox     <-chan audit.Event
	logger    *slog.Logger
}

func New(publisher audit.Publisher, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.publisher.Publish(ctx, event); err != nil {
				w.logger.Error("failed to publish audit event",
					"action", string(event.Action), "error", err)
			}
		}
	}
}
