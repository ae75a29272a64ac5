package session

import (
	"context"
	"sync"

	"roost/internal/auth"
	"roost/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions and return-to destinations in process
// memory for tests and local runs.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
	returnTo map[string]string
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]auth.Session),
		returnTo: make(map[string]string),
	}
}

func (s *InMemorySessionStore) Create(_ context.Context, session auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, id string) (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return auth.Session{}, sentinel.ErrNotFound
	}
	return session, nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *InMemorySessionStore) SaveReturnTo(_ context.Context, deviceID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returnTo[deviceID] = path
	return nil
}

func (s *InMemorySessionStore) ConsumeReturnTo(_ context.Context, deviceID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.returnTo[deviceID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	delete(s.returnTo, deviceID)
	return path, nil
}
