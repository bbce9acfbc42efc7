// Package registry provides the mutex-guarded, insertion-ordered in-memory
// collection that backs every entity repository.
package registry

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("registry: not found")
	ErrExists   = errors.New("registry: already exists")
)

// Store holds entities of type T keyed by id. Values are copied on the way
// in and out with the clone func, so callers never share memory with the
// store.
type Store[T any] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	clone func(T) T
}

// New creates an empty store. A nil clone means T is safe to copy by value.
func New[T any](clone func(T) T) *Store[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Store[T]{items: make(map[string]T), clone: clone}
}

func (s *Store[T]) Insert(id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		return ErrExists
	}
	s.items[id] = s.clone(v)
	s.order = append(s.order, id)
	return nil
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.clone(v), true
}

// List returns every entity in insertion order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.clone(s.items[id]))
	}
	return out
}

// Filter returns the entities matching keep, in insertion order.
func (s *Store[T]) Filter(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0)
	for _, id := range s.order {
		if v := s.items[id]; keep(v) {
			out = append(out, s.clone(v))
		}
	}
	return out
}

// Update applies mutate to the stored entity under the write lock. If
// mutate returns an error the entity is left unchanged.
func (s *Store[T]) Update(id string, mutate func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	cur, ok := s.items[id]
	if !ok {
		return zero, ErrNotFound
	}
	next := s.clone(cur)
	if err := mutate(&next); err != nil {
		return zero, err
	}
	s.items[id] = next
	return s.clone(next), nil
}

// Delete reports whether an entity existed and was removed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
