package paginator

// Sink receives the cumulative results after every successful page fetch.
// The slice is a copy owned by the sink.
type Sink[T any] interface {
	OnResults(p *Paginator[T], results []T)
}

// FailureHandler is an optional Sink capability. When the sink does not
// implement it, fetch failures are dropped after the status is cleared.
type FailureHandler[T any] interface {
	OnFailure(p *Paginator[T], err error)
}

// ResetHandler is an optional Sink capability notified after every Reset.
type ResetHandler[T any] interface {
	OnReset(p *Paginator[T])
}

// SinkFuncs adapts plain functions to the sink contract. Nil fields are skipped.
type SinkFuncs[T any] struct {
	Results func(p *Paginator[T], results []T)
	Failure func(p *Paginator[T], err error)
	Reset   func(p *Paginator[T])
}

// OnResults implements Sink.
func (s SinkFuncs[T]) OnResults(p *Paginator[T], results []T) {
	if s.Results != nil {
		s.Results(p, results)
	}
}

// OnFailure implements FailureHandler.
func (s SinkFuncs[T]) OnFailure(p *Paginator[T], err error) {
	if s.Failure != nil {
		s.Failure(p, err)
	}
}

// OnReset implements ResetHandler.
func (s SinkFuncs[T]) OnReset(p *Paginator[T]) {
	if s.Reset != nil {
		s.Reset(p)
	}
}
