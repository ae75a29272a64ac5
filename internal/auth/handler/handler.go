// Package handler exposes registration, login, logout, and the notice drain
// over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"roost/internal/auth/service"
	"roost/internal/notify"
	"roost/internal/platform/middleware"
	"roost/internal/transport/http/shared"
	dErrors "roost/pkg/domain-errors"
	"roost/pkg/requestcontext"
)

// Service defines the identity operations the transport needs.
type Service interface {
	Register(ctx context.Context, email, username, password, deviceID string) (service.LoginResult, error)
	Login(ctx context.Context, email, password, deviceID string) (service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// NoticeStore drains the queued flash notices for a session.
type NoticeStore interface {
	Drain(ctx context.Context, sessionID string) []notify.Notice
}

type Handler struct {
	logger  *slog.Logger
	auth    Service
	notices NoticeStore
	tokens  middleware.TokenValidator
}

func New(auth Service, notices NoticeStore, tokens middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		auth:    auth,
		notices: notices,
		tokens:  tokens,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/notices", h.handleNotices)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type loginResponse struct {
	User     any    `json:"user"`
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := validateCredentials(req, true); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.auth.Register(ctx, req.Email, req.Username, req.Password, deviceID(w, r))
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"error", err, "request_id", requestcontext.RequestID(ctx))
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toLoginResponse(result))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := validateCredentials(req, false); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password, deviceID(w, r))
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx))
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toLoginResponse(result))
}

// handleLogout ends the session carried by the bearer token. An absent or
// invalid token still returns success so logout is always safe to call.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if claims := h.claimsFromRequest(r); claims != nil {
		if err := h.auth.Logout(ctx, claims.SessionID); err != nil {
			h.logger.WarnContext(ctx, "logout failed",
				"error", err, "request_id", requestcontext.RequestID(ctx))
		}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"redirect": "/listings"})
}

// handleNotices drains and returns the caller's queued notices. Reading
// empties the queue, matching flash semantics.
func (h *Handler) handleNotices(w http.ResponseWriter, r *http.Request) {
	claims := h.claimsFromRequest(r)
	if claims == nil {
		shared.WriteJSON(w, http.StatusOK, map[string]any{"notices": []notify.Notice{}})
		return
	}
	notices := h.notices.Drain(r.Context(), claims.SessionID)
	if notices == nil {
		notices = []notify.Notice{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"notices": notices})
}

func (h *Handler) claimsFromRequest(r *http.Request) *middleware.TokenClaims {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}
	return claims
}

func validateCredentials(req credentialsRequest, needUsername bool) error {
	var violations []string
	if strings.TrimSpace(req.Email) == "" {
		violations = append(violations, "email is required")
	}
	if needUsername && strings.TrimSpace(req.Username) == "" {
		violations = append(violations, "username is required")
	}
	if req.Password == "" {
		violations = append(violations, "password is required")
	} else if needUsername && len(req.Password) < 8 {
		violations = append(violations, "password must be at least 8 characters")
	}
	if len(violations) > 0 {
		return dErrors.New(dErrors.CodeInvalidInput, strings.Join(violations, ", "))
	}
	return nil
}

func toLoginResponse(result service.LoginResult) loginResponse {
	redirect := result.ReturnTo
	if redirect == "" {
		redirect = "/listings"
	}
	return loginResponse{User: result.User, Token: result.Token, Redirect: redirect}
}

// deviceID reuses the anonymous device cookie set by the auth guard, minting
// one when the client arrives without it so the login can still consume a
// recorded destination later.
func deviceID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(middleware.DeviceCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.DeviceCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
