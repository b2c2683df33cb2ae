package paginator

import (
	"context"
	"sync"
)

// SliceSource serves pages out of a pre-loaded ordered slice.
// The slice is held by reference; Replace swaps it for a new one.
type SliceSource[T any] struct {
	mu    sync.RWMutex
	items []T
}

// NewSliceSource creates an in-memory source over items.
func NewSliceSource[T any](items []T) *SliceSource[T] {
	return &SliceSource[T]{items: items}
}

// Kind implements Source.
func (s *SliceSource[T]) Kind() Kind {
	return KindInMemory
}

// Resolve implements Source. An empty slice yields an empty page with total 0.
func (s *SliceSource[T]) Resolve(_ context.Context, w Window) (Page[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return Page[T]{Records: []T{}, Total: 0}, nil
	}
	return Page[T]{
		Records: SliceWindow(s.items, w),
		Total:   len(s.items),
	}, nil
}

// Replace swaps the backing slice. Later fetches report the new length as the
// total count.
func (s *SliceSource[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// Len returns the current number of items.
func (s *SliceSource[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
