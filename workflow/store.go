package workflow

import (
	"context"
	"fmt"
	"sync"
)

// InstanceStore persists instances on every state-changing operation.
//
// Implementations must tolerate at-least-once writes: saving the same
// instance state twice must leave the store as if it were saved once.
type InstanceStore interface {
	Save(ctx context.Context, in *Instance) error
	Load(ctx context.Context, id string) (*Instance, error)
	List(ctx context.Context) ([]*Instance, error)
}

// MemoryStore is an in-memory InstanceStore. It keys by instance id, so
// re-saving the same state is naturally idempotent.
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[string]*Instance
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{instances: make(map[string]*Instance)}
}

// Save stores a snapshot of the instance.
func (s *MemoryStore) Save(ctx context.Context, in *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[in.ID] = in.Clone()
	return nil
}

// Load returns a snapshot of the instance, or ErrInstanceNotFound.
func (s *MemoryStore) Load(ctx context.Context, id string) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	return in.Clone(), nil
}

// List returns snapshots of all stored instances.
func (s *MemoryStore) List(ctx context.Context) ([]*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Instance, 0, len(s.instances))
	for _, in := range s.instances {
		out = append(out, in.Clone())
	}
	return out, nil
}
