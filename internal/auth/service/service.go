// Package service implements registration, login, and session resolution for
// the listing pipeline's identity collaborator.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"roost/internal/auth"
	"roost/internal/auth/device"
	dErrors "roost/pkg/domain-errors"
	audit "roost/pkg/platform/audit"
	"roost/pkg/platform/sentinel"
	"roost/pkg/requestcontext"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user auth.User) (auth.User, error)
	FindByID(ctx context.Context, id string) (auth.User, error)
	FindByEmail(ctx context.Context, email string) (auth.User, error)
}

// SessionStore persists sessions and the return-to destinations recorded for
// unauthenticated callers.
type SessionStore interface {
	Create(ctx context.Context, session auth.Session) error
	FindByID(ctx context.Context, id string) (auth.Session, error)
	Delete(ctx context.Context, id string) error
	SaveReturnTo(ctx context.Context, deviceID, path string) error
	ConsumeReturnTo(ctx context.Context, deviceID string) (string, error)
}

// TokenIssuer mints access tokens for a user/session pair.
type TokenIssuer interface {
	Generate(userID, sessionID string) (string, error)
}

// AuditSink receives fire-and-forget audit events.
type AuditSink interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service wires the stores together.
type Service struct {
	users      UserStore
	sessions   SessionStore
	tokens     TokenIssuer
	auditor    AuditSink
	logger     *slog.Logger
	sessionTTL time.Duration
}

func New(users UserStore, sessions SessionStore, tokens TokenIssuer, auditor AuditSink, logger *slog.Logger, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		auditor:    auditor,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

// LoginResult is what a successful register or login returns.
type LoginResult struct {
	User     auth.PublicProfile
	Token    string
	ReturnTo string
}

// Register creates an account and logs it in immediately.
func (s *Service) Register(ctx context.Context, email, username, password, deviceID string) (LoginResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "could not create account", err)
	}

	user, err := s.users.Create(ctx, auth.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    requestcontext.Now(ctx),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return LoginResult{}, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "could not create account", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		UserID:  user.ID,
		Subject: user.ID,
		Action:  audit.ActionUserRegistered,
	})
	return s.startSession(ctx, user, deviceID)
}

// Login verifies credentials and opens a session. Wrong email and wrong
// password collapse into one message so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, email, password, deviceID string) (LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.auditor.Emit(ctx, audit.Event{Action: audit.ActionLoginFailed, Reason: "unknown email"})
			return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.auditor.Emit(ctx, audit.Event{
			UserID: user.ID,
			Action: audit.ActionLoginFailed,
			Reason: "wrong password",
		})
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	return s.startSession(ctx, user, deviceID)
}

func (s *Service) startSession(ctx context.Context, user auth.User, deviceID string) (LoginResult, error) {
	now := requestcontext.Now(ctx)
	session := auth.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Device:    device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "could not open session", err)
	}

	token, err := s.tokens.Generate(user.ID, session.ID)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "could not issue token", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		UserID:  user.ID,
		Subject: session.ID,
		Action:  audit.ActionLoginSucceeded,
	})

	result := LoginResult{User: user.Public(), Token: token}
	if deviceID != "" {
		// Best-effort: a recorded destination sends the user back where they
		// were headed before the login redirect.
		if path, err := s.sessions.ConsumeReturnTo(ctx, deviceID); err == nil {
			result.ReturnTo = path
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to consume return-to", "error", err)
		}
	}
	return result, nil
}

// Logout removes the session; unknown sessions succeed as a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "logout failed", err)
	}
	return nil
}

// Profile resolves a user's public profile, used when a listing's owner
// reference is expanded for display.
func (s *Service) Profile(ctx context.Context, userID string) (auth.PublicProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return auth.PublicProfile{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return auth.PublicProfile{}, dErrors.Wrap(dErrors.CodeInternal, "could not load user", err)
	}
	return user.Public(), nil
}
