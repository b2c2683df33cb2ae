package paginator

import "context"

// Page is what a source returns for one window: the records in the window and
// the authoritative total number of records the source currently holds.
type Page[T any] struct {
	Records []T
	Total   int
}

// Source resolves page windows for a Paginator.
//
// Resolve must return at most w.Length records starting at w.Offset together
// with the source's total count, or an error. It must honor ctx cancellation
// when it blocks.
type Source[T any] interface {
	Kind() Kind
	Resolve(ctx context.Context, w Window) (Page[T], error)
}

// SliceWindow cuts w out of records, clamping to the available records, and
// returns a copy so callers never alias the backing array.
func SliceWindow[T any](records []T, w Window) []T {
	start, end := w.Clamp(len(records))
	out := make([]T, end-start)
	copy(out, records[start:end])
	return out
}
