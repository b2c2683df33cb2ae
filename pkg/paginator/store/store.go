// Package store defines the record store capability used by store-backed
// paginator sources, a small predicate model for filtering, and an in-memory
// store implementation.
package store

import (
	"context"
	"errors"
)

// Common store errors.
var (
	ErrEntityRequired    = errors.New("entity name cannot be empty")
	ErrUnknownEntity     = errors.New("unknown entity")
	ErrFilterUnsupported = errors.New("store cannot evaluate filters")
	ErrInvalidFilter     = errors.New("invalid filter")
)

// Query selects the records of one entity, optionally narrowed by a filter.
type Query struct {
	Entity string
	Filter *Filter
}

// Store is the minimum capability a store-backed source needs: it can tell
// whether it holds an entity and fetch every record matching a query.
type Store[T any] interface {
	// Supports reports whether entity is a record type this store holds.
	Supports(entity string) bool

	// FetchAll returns every record matching q in a stable order.
	FetchAll(ctx context.Context, q Query) ([]T, error)
}

// WindowedStore is an optional capability for stores that can count and
// window on their side. Sources prefer it over FetchAll.
type WindowedStore[T any] interface {
	Store[T]

	// Count returns the number of records matching q.
	Count(ctx context.Context, q Query) (int, error)

	// FetchWindow returns at most limit records matching q starting at offset,
	// in the same order FetchAll uses.
	FetchWindow(ctx context.Context, q Query, offset, limit int) ([]T, error)
}
