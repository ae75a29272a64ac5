// Package store persists listings. The Mongo implementation is production;
// the in-memory one backs unit tests and local runs.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"roost/internal/listing"
	"roost/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	listings map[string]listing.Listing
	order    []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{listings: make(map[string]listing.Listing)}
}

func (s *InMemoryStore) Create(_ context.Context, l listing.Listing) (listing.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.listings[l.ID] = l
	s.order = append(s.order, l.ID)
	return l, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return listing.Listing{}, sentinel.ErrNotFound
	}
	return l, nil
}

// FindAll returns listings newest first, matching the Mongo sort on
// created_at. Ties keep the later insertion first.
func (s *InMemoryStore) FindAll(_ context.Context) ([]listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]listing.Listing, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if l, ok := s.listings[s.order[i]]; ok {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) UpdateByID(_ context.Context, id string, patch listing.Patch) (listing.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return listing.Listing{}, sentinel.ErrNotFound
	}
	l.Title = patch.Title
	l.Description = patch.Description
	l.Price = patch.Price
	l.Location = patch.Location
	l.Country = patch.Country
	if patch.Image != nil {
		l.Image = patch.Image
	}
	if patch.Geometry != nil {
		l.Geometry = patch.Geometry
	}
	l.UpdatedAt = patch.UpdatedAt
	s.listings[id] = l
	return l, nil
}

func (s *InMemoryStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listings, id)
	return nil
}

// Len reports how many listings are stored; used by tests asserting
// no-side-effect properties.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}
