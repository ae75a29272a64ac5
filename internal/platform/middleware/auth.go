package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"roost/pkg/requestcontext"
)

// TokenValidator validates bearer tokens for the auth guard.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims is what the guard needs from a validated token.
type TokenClaims struct {
	UserID    string
	SessionID string
}

// ReturnToRecorder preserves the originally intended destination for an
// unauthenticated caller so the login flow can send them back afterwards.
// Recording is best-effort; a failure never blocks the 401.
type ReturnToRecorder interface {
	SaveReturnTo(ctx context.Context, deviceID, path string) error
}

// DeviceCookie identifies an anonymous browser across the login redirect.
const DeviceCookie = "roost_device"

// RequireAuth rejects requests without a valid bearer token. On rejection it
// records the intended destination against the device cookie and points the
// caller at the login URL. On success the user and session IDs land in the
// request context for handlers and services.
func RequireAuth(validator TokenValidator, returnTo ReturnToRecorder, loginURL string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				deny(w, r, returnTo, loginURL, logger, "missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				deny(w, r, returnTo, loginURL, logger, "invalid or expired token")
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), claims.UserID)
			ctx = requestcontext.WithSessionID(ctx, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, returnTo ReturnToRecorder, loginURL string, logger *slog.Logger, reason string) {
	deviceID := ensureDeviceCookie(w, r)
	if returnTo != nil {
		// Only remember safe-to-replay destinations.
		if r.Method == http.MethodGet {
			if err := returnTo.SaveReturnTo(r.Context(), deviceID, r.URL.RequestURI()); err != nil {
				logger.WarnContext(r.Context(), "failed to record return-to destination",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":     "unauthorized",
		"message":   reason,
		"login_url": loginURL,
	})
}

func ensureDeviceCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(DeviceCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
