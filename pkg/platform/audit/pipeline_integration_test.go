//go:build integration

package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	audit "roost/pkg/platform/audit"
	"roost/pkg/platform/audit/consumer"
	"roost/pkg/platform/audit/publisher"
	auditmem "roost/pkg/platform/audit/store/memory"
	auditworker "roost/pkg/platform/audit/worker"
	"roost/pkg/testutil/containers"
)

// Drives the full audit path against a real broker: emitter inbox, worker,
// Kafka topic, consumer group, archive store.
func TestAuditPipelineEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	broker := containers.NewRedpandaContainer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pub, err := publisher.NewKafkaPublisher(ctx, []string{broker.Broker}, "roost.audit.test")
	require.NoError(t, err)
	defer pub.Close()

	emitter := audit.NewEmitter(16, logger)
	worker := auditworker.New(pub, emitter.Inbox(), logger)

	archive := auditmem.New()
	arc, err := consumer.New([]string{broker.Broker}, "roost.audit.test", archive, logger)
	require.NoError(t, err)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = worker.Run(runCtx) }()
	go func() { _ = arc.Run(runCtx) }()

	emitted := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	emitter.Emit(ctx, audit.Event{
		Timestamp: emitted,
		UserID:    "user-1",
		Subject:   "l-1",
		Action:    audit.ActionListingCreated,
		RequestID: "req-1",
		ClientIP:  "203.0.113.7",
	})
	emitter.Emit(ctx, audit.Event{
		Timestamp: emitted.Add(time.Second),
		UserID:    "user-2",
		Subject:   "l-2",
		Action:    audit.ActionOwnershipDenied,
	})

	require.Eventually(t, func() bool {
		return len(archive.All()) == 2
	}, time.Minute, 250*time.Millisecond, "events never reached the archive")

	byUser, err := archive.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	event := byUser[0]
	require.Equal(t, audit.ActionListingCreated, event.Action)
	require.Equal(t, "l-1", event.Subject)
	require.Equal(t, "req-1", event.RequestID)
	require.Equal(t, "203.0.113.7", event.ClientIP)
	require.True(t, event.Timestamp.Equal(emitted))
}
