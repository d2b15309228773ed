package accumulator

import (
	"context"
	"sync"

	"github.com/anoncred/anoncred/pkg/backend"
)

// MemoryStore is an in-process Store, suitable for tests and single-node
// deployments. Safe for concurrent use; callers must still serialize their
// own accumulator value mutations per spec.md §5 ("an accumulator state
// object is not safe for concurrent mutation").
type MemoryStore struct {
	mu      sync.RWMutex
	members map[string]backend.Scalar
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{members: map[string]backend.Scalar{}}
}

func (s *MemoryStore) Has(_ context.Context, e backend.Scalar) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[scalarKey(e)]
	return ok, nil
}

func (s *MemoryStore) Add(_ context.Context, e backend.Scalar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scalarKey(e)
	if _, ok := s.members[key]; ok {
		return ErrAlreadyMember
	}
	s.members[key] = e
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, e backend.Scalar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scalarKey(e)
	if _, ok := s.members[key]; !ok {
		return ErrNotMember
	}
	delete(s.members, key)
	return nil
}

func (s *MemoryStore) Members(_ context.Context) ([]backend.Scalar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]backend.Scalar, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	return out, nil
}
