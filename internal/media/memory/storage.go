// Package memory is an in-process media.Storage for tests and local runs
// without an object store.
package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"roost/internal/media"
)

type Storage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func New() *Storage {
	return &Storage{objects: make(map[string][]byte)}
}

func (s *Storage) Put(_ context.Context, upload media.Upload) (media.Object, error) {
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return media.Object{}, fmt.Errorf("read upload: %w", err)
	}
	key := "listings/" + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return media.Object{URL: "memory://" + key, Key: key}, nil
}

func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len reports how many objects are held; used by tests asserting orphan
// behavior.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
