package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServiceQueuesAndDrains(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemoryStore(), discardLogger())

	svc.Notify(ctx, "sess-1", SeveritySuccess, "New listing created")
	svc.Notify(ctx, "sess-1", SeverityError, "we could not locate that address, please check it and try again")
	svc.Notify(ctx, "sess-2", SeveritySuccess, "Listing deleted")

	notices := svc.Drain(ctx, "sess-1")
	require.Len(t, notices, 2)
	assert.Equal(t, SeveritySuccess, notices[0].Severity)
	assert.Equal(t, "New listing created", notices[0].Message)
	assert.False(t, notices[0].QueuedAt.IsZero())
	assert.Equal(t, SeverityError, notices[1].Severity)

	// Draining consumed the queue; other sessions are untouched.
	assert.Empty(t, svc.Drain(ctx, "sess-1"))
	assert.Len(t, svc.Drain(ctx, "sess-2"), 1)
}

func TestServiceIgnoresAnonymousSessions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewService(store, discardLogger())

	svc.Notify(ctx, "", SeveritySuccess, "never stored")
	assert.Nil(t, svc.Drain(ctx, ""))
}

type failingStore struct{}

func (failingStore) Push(context.Context, string, Notice) error {
	return errors.New("redis down")
}

func (failingStore) Pop(context.Context, string) ([]Notice, error) {
	return nil, errors.New("redis down")
}

// A broken store must never surface an error to the caller; notices are
// best-effort by contract.
func TestServiceSwallowsStoreFailures(t *testing.T) {
	ctx := context.Background()
	svc := NewService(failingStore{}, discardLogger())

	svc.Notify(ctx, "sess-1", SeveritySuccess, "lost")
	assert.Nil(t, svc.Drain(ctx, "sess-1"))
}
