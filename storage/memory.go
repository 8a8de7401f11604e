package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/innovagov/policyhub/policy"
)

// MemoryStore is an in-process Store used by tests and offline commands.
// Records are deep-copied on the way in and out so callers can never
// mutate stored state by accident.
type MemoryStore struct {
	mu       sync.RWMutex
	policies map[string]*policy.Policy
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{policies: make(map[string]*policy.Policy)}
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, clone(p))
	}
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, p *policy.Policy) error {
	StampNew(p, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.ID]; exists {
		return fmt.Errorf("policy %s already exists", p.ID)
	}
	s.policies[p.ID] = clone(p)
	return nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.policies[p.ID] = clone(p)
	return nil
}

// UpdateEmbedding implements Store.
func (s *MemoryStore) UpdateEmbedding(_ context.Context, id string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.policies[id]
	if !ok {
		return ErrNotFound
	}
	p.Embedding = append([]float32(nil), vector...)
	p.UpdatedAt = time.Now()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[id]; !ok {
		return ErrNotFound
	}
	delete(s.policies, id)
	return nil
}

// clone deep-copies a record through JSON. Policy is a plain data struct;
// marshaling cannot fail.
func clone(p *policy.Policy) *policy.Policy {
	data, _ := json.Marshal(p)
	var out policy.Policy
	_ = json.Unmarshal(data, &out)
	return &out
}
