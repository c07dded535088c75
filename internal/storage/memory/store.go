// internal/storage/memory/store.go
package memory

import (
	"context"
	"sync"

	"dressrental/internal/shared"
	"dressrental/internal/storage"
)

// Store is a generic in-memory implementation of storage.Repository. Entities are cloned
// on the way in and out so callers never share state with the store.
type Store[T storage.Entity] struct {
	mu     sync.RWMutex
	entity string
	clone  func(T) T
	items  map[shared.ID]T
	order  []shared.ID
}

func NewStore[T storage.Entity](entity string, clone func(T) T) *Store[T] {
	return &Store[T]{
		entity: entity,
		clone:  clone,
		items:  map[shared.ID]T{},
	}
}

func (s *Store[T]) Save(_ context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(entity)
}

// SaveMany stores all entities or none. An id already stored or repeated within the
// batch fails the whole call.
func (s *Store[T]) SaveMany(_ context.Context, entities []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[shared.ID]struct{}, len(entities))
	for _, e := range entities {
		id := e.ID()
		if _, ok := s.items[id]; ok {
			return storage.ErrAlreadyExists
		}
		if _, ok := seen[id]; ok {
			return storage.ErrAlreadyExists
		}
		seen[id] = struct{}{}
	}
	for _, e := range entities {
		if err := s.insert(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store[T]) insert(entity T) error {
	id := entity.ID()
	if _, ok := s.items[id]; ok {
		return storage.ErrAlreadyExists
	}
	s.items[id] = s.clone(entity)
	s.order = append(s.order, id)
	return nil
}

func (s *Store[T]) FindByID(_ context.Context, id shared.ID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		var zero T
		return zero, shared.NewNotFoundError(s.entity, id)
	}
	return s.clone(e), nil
}

// FindMany returns every entity in insertion order.
func (s *Store[T]) FindMany(_ context.Context) ([]T, error) {
	return s.filter(func(T) bool { return true }), nil
}

// FindManyByIDs returns the entities found, in insertion order. Unknown ids are skipped.
func (s *Store[T]) FindManyByIDs(_ context.Context, ids []shared.ID) ([]T, error) {
	wanted := make(map[shared.ID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	return s.filter(func(e T) bool {
		_, ok := wanted[e.ID()]
		return ok
	}), nil
}

func (s *Store[T]) Update(_ context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := entity.ID()
	if _, ok := s.items[id]; !ok {
		return shared.NewNotFoundError(s.entity, id)
	}
	s.items[id] = s.clone(entity)
	return nil
}

func (s *Store[T]) Delete(ctx context.Context, id shared.ID) error {
	return s.DeleteManyByIDs(ctx, []shared.ID{id})
}

func (s *Store[T]) DeleteManyByIDs(_ context.Context, ids []shared.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []shared.ID
	for _, id := range ids {
		if _, ok := s.items[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return shared.NewNotFoundError(s.entity, missing...)
	}

	for _, id := range ids {
		delete(s.items, id)
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.items[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
	return nil
}

func (s *Store[T]) ExistsByID(_ context.Context, id shared.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok, nil
}

func (s *Store[T]) filter(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		e := s.items[id]
		if keep(e) {
			out = append(out, s.clone(e))
		}
	}
	return out
}
