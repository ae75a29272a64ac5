//go:build integration

package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roost/pkg/testutil/containers"
)

func TestRedisStoreQueue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := NewRedisStore(rc.Client, time.Hour)

	queuedAt := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Push(ctx, "sess-1", Notice{Severity: SeveritySuccess, Message: "New listing created", QueuedAt: queuedAt}))
	require.NoError(t, store.Push(ctx, "sess-1", Notice{Severity: SeverityError, Message: "we could not save your changes, please try again", QueuedAt: queuedAt}))

	notices, err := store.Pop(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, notices, 2)
	assert.Equal(t, SeveritySuccess, notices[0].Severity)
	assert.Equal(t, "New listing created", notices[0].Message)
	assert.True(t, notices[0].QueuedAt.Equal(queuedAt))

	// Pop drained the queue.
	drained, err := store.Pop(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestRedisStoreIsolatesSessions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := NewRedisStore(rc.Client, time.Hour)

	require.NoError(t, store.Push(ctx, "sess-1", Notice{Severity: SeveritySuccess, Message: "mine"}))
	require.NoError(t, store.Push(ctx, "sess-2", Notice{Severity: SeveritySuccess, Message: "theirs"}))

	notices, err := store.Pop(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "mine", notices[0].Message)
}
