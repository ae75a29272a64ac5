// Package testutil provides common helpers for handler and integration tests.
package testutil

import (
	"net/http"

	"roost/pkg/requestcontext"
)

// WithAuth attaches user and session IDs to the request context, simulating
// what the auth guard does for an authenticated request.
func WithAuth(req *http.Request, userID, sessionID string) *http.Request {
	ctx := req.Context()
	if userID != "" {
		ctx = requestcontext.WithUserID(ctx, userID)
	}
	if sessionID != "" {
		ctx = requestcontext.WithSessionID(ctx, sessionID)
	}
	return req.WithContext(ctx)
}

// WithRequestID attaches a request ID to the request context.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
