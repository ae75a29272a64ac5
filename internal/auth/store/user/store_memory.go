package user

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"roost/internal/auth"
	"roost/pkg/platform/sentinel"
)

// InMemoryStore keeps users in process memory. Test double and local-dev
// fallback; production uses the Mongo store.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]auth.User
	byEmail map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]auth.User),
		byEmail: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user auth.User) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return auth.User{}, sentinel.ErrConflict
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.byID[user.ID] = user
	s.byEmail[email] = user.ID
	return user, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return auth.User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return auth.User{}, sentinel.ErrNotFound
	}
	return s.byID[id], nil
}
