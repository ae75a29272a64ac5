package notify

import (
	"context"
	"sync"
)

// InMemoryStore keeps notices per session in process memory. Test double and
// single-node fallback.
type InMemoryStore struct {
	mu      sync.Mutex
	notices map[string][]Notice
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notices: make(map[string][]Notice)}
}

func (s *InMemoryStore) Push(_ context.Context, sessionID string, notice Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[sessionID] = append(s.notices[sessionID], notice)
	return nil
}

func (s *InMemoryStore) Pop(_ context.Context, sessionID string) ([]Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queued := s.notices[sessionID]
	delete(s.notices, sessionID)
	return queued, nil
}
