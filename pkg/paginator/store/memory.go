package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// FieldFunc reads a named field from a record for filter evaluation.
type FieldFunc[T any] func(record T, field string) (any, bool)

// Memory is an in-process store of records grouped by entity name.
// It only supports full fetches; filtering needs a FieldFunc.
type Memory[T any] struct {
	mu       sync.RWMutex
	entities map[string][]T
	field    FieldFunc[T]
}

// NewMemory creates an empty in-memory store. field may be nil when no
// filtered queries will be run.
func NewMemory[T any](field FieldFunc[T]) *Memory[T] {
	return &Memory[T]{
		entities: make(map[string][]T),
		field:    field,
	}
}

// NewMapMemory creates an in-memory store of map records filtered by dotted
// field paths.
func NewMapMemory() *Memory[map[string]any] {
	return NewMemory(func(r map[string]any, field string) (any, bool) {
		return MapField(r, field)
	})
}

// Put appends records to an entity, creating it if needed.
func (m *Memory[T]) Put(entity string, records ...T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity] = append(m.entities[entity], records...)
}

// Drop removes an entity and its records.
func (m *Memory[T]) Drop(entity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities, entity)
}

// Supports implements Store.
func (m *Memory[T]) Supports(entity string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entities[entity]
	return ok
}

// FetchAll implements Store.
func (m *Memory[T]) FetchAll(ctx context.Context, q Query) ([]T, error) {
	if q.Entity == "" {
		return nil, ErrEntityRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	records, ok := m.entities[q.Entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, q.Entity)
	}
	if q.Filter.Empty() {
		return slices.Clone(records), nil
	}
	if m.field == nil {
		return nil, ErrFilterUnsupported
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if q.Filter.Match(func(field string) (any, bool) { return m.field(r, field) }) {
			out = append(out, r)
		}
	}
	return out, nil
}
