package paginator

import (
	"context"
	"fmt"

	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

// StoreSource pages through one entity of a record store.
//
// Stores that implement store.WindowedStore get the count and the window
// pushed down to them. Other stores are fetched in full on every page and
// sliced here; the returned slice and total are the same either way.
type StoreSource[T any] struct {
	store store.Store[T]
	query store.Query
}

// NewStoreSource creates a source over entity in s. filter may be nil.
func NewStoreSource[T any](s store.Store[T], entity string, filter *store.Filter) *StoreSource[T] {
	return &StoreSource[T]{
		store: s,
		query: store.Query{Entity: entity, Filter: filter},
	}
}

// NewStore is a shorthand for New over a StoreSource.
func NewStore[T any](
	s store.Store[T],
	entity string,
	filter *store.Filter,
	sink Sink[T],
	opts ...Option,
) (*Paginator[T], error) {
	return New[T](NewStoreSource(s, entity, filter), sink, opts...)
}

// Kind implements Source.
func (s *StoreSource[T]) Kind() Kind {
	return KindStore
}

// Query returns the query the source runs.
func (s *StoreSource[T]) Query() store.Query {
	return s.query
}

// Resolve implements Source. An entity the store does not hold resolves to
// an empty page with a zero total, the same as an entity with no records.
func (s *StoreSource[T]) Resolve(ctx context.Context, w Window) (Page[T], error) {
	if !s.store.Supports(s.query.Entity) {
		return Page[T]{Records: []T{}, Total: 0}, nil
	}

	if ws, ok := s.store.(store.WindowedStore[T]); ok {
		return s.resolveWindowed(ctx, ws, w)
	}

	all, err := s.store.FetchAll(ctx, s.query)
	if err != nil {
		return Page[T]{}, fmt.Errorf("fetching %s: %w", s.query.Entity, err)
	}
	if len(all) == 0 {
		return Page[T]{Records: []T{}, Total: 0}, nil
	}
	return Page[T]{Records: SliceWindow(all, w), Total: len(all)}, nil
}

func (s *StoreSource[T]) resolveWindowed(ctx context.Context, ws store.WindowedStore[T], w Window) (Page[T], error) {
	total, err := ws.Count(ctx, s.query)
	if err != nil {
		return Page[T]{}, fmt.Errorf("counting %s: %w", s.query.Entity, err)
	}
	if total == 0 {
		return Page[T]{Records: []T{}, Total: 0}, nil
	}

	start, end := w.Clamp(total)
	if start == end {
		return Page[T]{Records: []T{}, Total: total}, nil
	}
	records, err := ws.FetchWindow(ctx, s.query, start, end-start)
	if err != nil {
		return Page[T]{}, fmt.Errorf("fetching %s window [%d,%d): %w", s.query.Entity, start, end, err)
	}
	return Page[T]{Records: records, Total: total}, nil
}
