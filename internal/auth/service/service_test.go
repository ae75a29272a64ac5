package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	sessionStore "roost/internal/auth/store/session"
	userStore "roost/internal/auth/store/user"
	"roost/internal/auth/token"
	dErrors "roost/pkg/domain-errors"
	audit "roost/pkg/platform/audit"
	"roost/pkg/requestcontext"
)

// =============================================================================
// Auth Service Test Suite
// =============================================================================
// Runs against the in-memory stores and the real token service so password
// hashing, session creation, and return-to consumption behave as in
// production.

type AuthServiceSuite struct {
	suite.Suite
	sessions *sessionStore.InMemorySessionStore
	events   *capturingAudit
	service  *Service
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.sessions = sessionStore.NewInMemorySessionStore()
	s.events = &capturingAudit{}
	s.service = New(
		userStore.NewInMemoryStore(),
		s.sessions,
		token.NewService("test-signing-key", time.Hour),
		s.events,
		logger,
		24*time.Hour,
	)
}

func (s *AuthServiceSuite) ctx() context.Context {
	ctx := requestcontext.WithUserAgent(context.Background(),
		"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0")
	ctx = requestcontext.WithClientIP(ctx, "203.0.113.7")
	return requestcontext.WithTime(ctx, time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))
}

func (s *AuthServiceSuite) TestRegister() {
	s.Run("opens a session and issues a token", func() {
		result, err := s.service.Register(s.ctx(), "marta@example.com", "marta", "correct horse", "")
		s.Require().NoError(err)
		s.Equal("marta", result.User.Username)
		s.NotEmpty(result.Token)
		s.Contains(s.events.actions(), audit.ActionUserRegistered)
		s.Contains(s.events.actions(), audit.ActionLoginSucceeded)
	})

	s.Run("duplicate email conflicts", func() {
		s.SetupTest()
		_, err := s.service.Register(s.ctx(), "marta@example.com", "marta", "correct horse", "")
		s.Require().NoError(err)
		_, err = s.service.Register(s.ctx(), "marta@example.com", "other", "correct horse", "")
		s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	})
}

func (s *AuthServiceSuite) TestLogin() {
	_, err := s.service.Register(s.ctx(), "marta@example.com", "marta", "correct horse", "")
	s.Require().NoError(err)

	s.Run("valid credentials", func() {
		result, err := s.service.Login(s.ctx(), "marta@example.com", "correct horse", "")
		s.Require().NoError(err)
		s.NotEmpty(result.Token)
	})

	s.Run("unknown email and wrong password share one message", func() {
		_, unknownErr := s.service.Login(s.ctx(), "nobody@example.com", "correct horse", "")
		_, wrongErr := s.service.Login(s.ctx(), "marta@example.com", "wrong", "")
		s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(unknownErr))
		s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(wrongErr))
		s.Equal(dErrors.MessageOf(unknownErr), dErrors.MessageOf(wrongErr))
	})

	s.Run("failed attempts are audited with reasons", func() {
		s.events.clear()
		_, _ = s.service.Login(s.ctx(), "nobody@example.com", "x", "")
		_, _ = s.service.Login(s.ctx(), "marta@example.com", "wrong", "")

		events := s.events.all()
		s.Require().Len(events, 2)
		s.Equal("unknown email", events[0].Reason)
		s.Equal("wrong password", events[1].Reason)
	})
}

func (s *AuthServiceSuite) TestReturnToConsumedOnLogin() {
	_, err := s.service.Register(s.ctx(), "marta@example.com", "marta", "correct horse", "")
	s.Require().NoError(err)
	s.Require().NoError(s.sessions.SaveReturnTo(s.ctx(), "device-1", "/listings/l-1"))

	result, err := s.service.Login(s.ctx(), "marta@example.com", "correct horse", "device-1")
	s.Require().NoError(err)
	s.Equal("/listings/l-1", result.ReturnTo)

	// Consumed: the next login from the same device has no destination.
	again, err := s.service.Login(s.ctx(), "marta@example.com", "correct horse", "device-1")
	s.Require().NoError(err)
	s.Empty(again.ReturnTo)
}

func (s *AuthServiceSuite) TestSessionRecordsDeviceAndIP() {
	result, err := s.service.Register(s.ctx(), "marta@example.com", "marta", "correct horse", "")
	s.Require().NoError(err)

	claims, err := token.NewService("test-signing-key", time.Hour).ValidateToken(result.Token)
	s.Require().NoError(err)

	session, err := s.sessions.FindByID(s.ctx(), claims.SessionID)
	s.Require().NoError(err)
	s.Contains(session.Device, "Firefox on ")
	s.Equal("203.0.113.7", session.ClientIP)
}

func (s *AuthServiceSuite) TestLogout() {
	s.NoError(s.service.Logout(s.ctx(), "never-existed"))
	s.NoError(s.service.Logout(s.ctx(), ""))
}

func (s *AuthServiceSuite) TestProfile() {
	result, err := s.service.Register(s.ctx(), "marta@example.com", "marta", "correct horse", "")
	s.Require().NoError(err)

	profile, err := s.service.Profile(s.ctx(), result.User.ID)
	s.Require().NoError(err)
	s.Equal("marta", profile.Username)

	_, err = s.service.Profile(s.ctx(), "ghost")
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

type capturingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *capturingAudit) Emit(_ context.Context, event audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *capturingAudit) all() []audit.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]audit.Event{}, c.events...)
}

func (c *capturingAudit) actions() []audit.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]audit.Action, 0, len(c.events))
	for _, event := range c.events {
		out = append(out, event.Action)
	}
	return out
}

func (c *capturingAudit) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
