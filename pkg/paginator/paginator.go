package paginator

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Option configures a Paginator.
type Option func(*options)

type options struct {
	pageSize int
	logger   zerolog.Logger
}

// WithPageSize sets the page size. Zero keeps DefaultPageSize; negative values
// make New fail with ErrInvalidPageSize.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Paginator drives the fetch, accumulate and notify cycle over one Source.
// All methods are safe for concurrent use.
type Paginator[T any] struct {
	source   Source[T]
	sink     Sink[T]
	kind     Kind
	pageSize int
	logger   zerolog.Logger

	// mu guards everything below.
	mu             sync.Mutex
	status         Status
	currentPage    int
	totalCount     int
	totalPageCount int
	results        []T
	sessionID      ulid.ULID

	// inflight is the outstanding fetch, nil when status != StatusInProgress.
	inflight *fetchCall
}

// fetchCall tracks one outstanding fetch.
type fetchCall struct {
	ctx      context.Context
	cancel   context.CancelFunc
	window   Window
	session  ulid.ULID
	canceled bool
}

// New binds a Paginator to src and sink. The source kind is captured once and
// never changes.
func New[T any](src Source[T], sink Sink[T], opts ...Option) (*Paginator[T], error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if sink == nil {
		return nil, ErrNilSink
	}

	o := options{
		pageSize: DefaultPageSize,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case o.pageSize < 0:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, o.pageSize)
	case o.pageSize == 0:
		o.pageSize = DefaultPageSize
	}

	p := &Paginator[T]{
		source:   src,
		sink:     sink,
		kind:     src.Kind(),
		pageSize: o.pageSize,
		logger:   o.logger.With().Str("component", "paginator").Str("kind", src.Kind().String()).Logger(),
	}
	p.setDefaultsLocked()
	return p, nil
}

// NewInMemory is a shorthand for New over a SliceSource.
func NewInMemory[T any](items []T, sink Sink[T], opts ...Option) (*Paginator[T], error) {
	return New[T](NewSliceSource(items), sink, opts...)
}

// setDefaultsLocked zeroes the session state. Must be called with mu held
// (or before p is shared).
func (p *Paginator[T]) setDefaultsLocked() {
	if p.inflight != nil {
		p.inflight.cancel()
		p.inflight = nil
	}
	p.totalCount = 0
	p.totalPageCount = 0
	p.currentPage = 0
	p.results = make([]T, 0)
	p.status = StatusNone
	p.sessionID = ulid.Make()
}

// Load resets the session and fetches the first page.
func (p *Paginator[T]) Load(ctx context.Context) Outcome[T] {
	p.Reset()
	return p.FetchNextPage(ctx)
}

// FetchFirstPage is an alias for Load.
func (p *Paginator[T]) FetchFirstPage(ctx context.Context) Outcome[T] {
	return p.Load(ctx)
}

// Reset clears all counters and accumulated results and returns to StatusNone.
// A fetch still in flight is canceled and its result discarded. The sink's
// ResetHandler, if any, is notified.
func (p *Paginator[T]) Reset() {
	p.mu.Lock()
	p.setDefaultsLocked()
	session := p.sessionID
	p.mu.Unlock()

	p.logger.Debug().Str("session_id", session.String()).Msg("session reset")

	if h, ok := p.sink.(ResetHandler[T]); ok {
		h.OnReset(p)
	}
}

// IsLastPage reports whether every page has been fetched. It is false until
// the first fetch of the session has started.
func (p *Paginator[T]) IsLastPage() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isLastPageLocked()
}

func (p *Paginator[T]) isLastPageLocked() bool {
	if p.status == StatusNone {
		return false
	}
	return p.currentPage >= p.totalPageCount
}

// FetchNextPage fetches page currentPage+1 and blocks until it completes.
// It does nothing when a fetch is already outstanding or the last page has
// been reached.
func (p *Paginator[T]) FetchNextPage(ctx context.Context) Outcome[T] {
	call, skipped, ok := p.begin(ctx)
	if !ok {
		return skipped
	}
	return p.run(call)
}

// FetchNextPageAsync is FetchNextPage on a goroutine. The in-progress guard is
// taken before it returns, so a second call made right after is skipped.
// The channel receives exactly one Outcome and is then closed.
func (p *Paginator[T]) FetchNextPageAsync(ctx context.Context) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	call, skipped, ok := p.begin(ctx)
	if !ok {
		ch <- skipped
		close(ch)
		return ch
	}
	go func() {
		defer close(ch)
		ch <- p.run(call)
	}()
	return ch
}

// Cancel aborts the outstanding fetch. The status goes back to StatusNone,
// no sink callback runs and the accumulated results are kept, so the session
// can continue with another FetchNextPage. It reports whether a fetch was
// outstanding.
func (p *Paginator[T]) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inflight == nil {
		return false
	}
	p.inflight.canceled = true
	p.inflight.cancel()
	p.inflight = nil
	p.status = StatusNone
	return true
}

// Drain fetches pages until the last page, a failure, or cancellation.
// maxPages > 0 bounds the number of pages fetched by this call. It returns the
// number of pages fetched and the first failure. A fetch already outstanding
// when Drain reaches it yields ErrFetchInProgress; a session reset under it
// ends the drain without error.
func (p *Paginator[T]) Drain(ctx context.Context, maxPages int) (int, error) {
	fetched := 0
	for maxPages <= 0 || fetched < maxPages {
		if err := ctx.Err(); err != nil {
			return fetched, err
		}
		out := p.FetchNextPage(ctx)
		switch out.Kind {
		case OutcomeFetched:
			fetched++
		case OutcomeSkippedLastPage:
			return fetched, nil
		case OutcomeFailed, OutcomeCanceled:
			return fetched, out.Err
		case OutcomeSkippedInProgress:
			return fetched, ErrFetchInProgress
		case OutcomeDiscarded:
			return fetched, nil
		}
		if p.IsLastPage() {
			return fetched, nil
		}
	}
	return fetched, nil
}

// begin applies the guard and marks the paginator in progress.
func (p *Paginator[T]) begin(ctx context.Context) (*fetchCall, Outcome[T], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status == StatusInProgress {
		return nil, Outcome[T]{Kind: OutcomeSkippedInProgress}, false
	}
	if p.isLastPageLocked() {
		return nil, Outcome[T]{Kind: OutcomeSkippedLastPage}, false
	}

	fctx, cancel := context.WithCancel(ctx)
	call := &fetchCall{
		ctx:     fctx,
		cancel:  cancel,
		window:  NewWindow(p.currentPage+1, p.pageSize, p.totalCount),
		session: p.sessionID,
	}
	p.inflight = call
	p.status = StatusInProgress
	return call, Outcome[T]{}, true
}

// run resolves the window outside the lock and applies the result.
func (p *Paginator[T]) run(call *fetchCall) Outcome[T] {
	defer call.cancel()

	p.logger.Debug().
		Str("session_id", call.session.String()).
		Int("page", call.window.Page).
		Int("page_size", call.window.PageSize).
		Int("offset", call.window.Offset).
		Int("length", call.window.Length).
		Msg("fetching page")

	page, err := p.resolve(call.ctx, call.window)
	return p.complete(call, page, err)
}

// resolve dispatches on the kind captured at construction.
func (p *Paginator[T]) resolve(ctx context.Context, w Window) (Page[T], error) {
	if !p.kind.Valid() {
		return Page[T]{}, wrongKindError(p.kind)
	}
	return p.source.Resolve(ctx, w)
}

// complete applies a finished fetch and notifies the sink outside the lock.
func (p *Paginator[T]) complete(call *fetchCall, page Page[T], err error) Outcome[T] {
	p.mu.Lock()

	if p.inflight != call {
		p.mu.Unlock()
		kind := OutcomeDiscarded
		if call.canceled {
			kind = OutcomeCanceled
		}
		p.logger.Debug().
			Str("session_id", call.session.String()).
			Int("page", call.window.Page).
			Str("outcome", kind.String()).
			Msg("fetch result dropped")
		return Outcome[T]{Kind: kind, Window: call.window, Err: context.Canceled}
	}
	p.inflight = nil

	if ctxErr := call.ctx.Err(); ctxErr != nil {
		p.status = StatusNone
		p.mu.Unlock()
		p.logger.Debug().
			Str("session_id", call.session.String()).
			Int("page", call.window.Page).
			Err(ctxErr).
			Msg("fetch canceled")
		return Outcome[T]{Kind: OutcomeCanceled, Window: call.window, Err: ctxErr}
	}

	if err != nil {
		p.status = StatusDone
		p.mu.Unlock()

		perr := asError(p.kind, err)
		p.logger.Warn().
			Str("session_id", call.session.String()).
			Int("page", call.window.Page).
			Str("domain", perr.Domain).
			Int("code", perr.Code).
			Err(err).
			Msg("page fetch failed")

		if h, ok := p.sink.(FailureHandler[T]); ok {
			h.OnFailure(p, perr)
		}
		return Outcome[T]{Kind: OutcomeFailed, Window: call.window, Err: perr}
	}

	p.results = append(p.results, page.Records...)
	p.currentPage++
	p.totalCount = page.Total
	p.totalPageCount = totalPages(p.totalCount, p.pageSize)
	if p.currentPage > p.totalPageCount {
		// An empty or shrunken source reports fewer pages than already walked.
		p.currentPage = p.totalPageCount
	}
	p.status = StatusDone
	snapshot := slices.Clone(p.results)
	currentPage, totalPageCount := p.currentPage, p.totalPageCount
	p.mu.Unlock()

	p.logger.Debug().
		Str("session_id", call.session.String()).
		Int("page", call.window.Page).
		Int("received", len(page.Records)).
		Int("accumulated", len(snapshot)).
		Int("total_count", page.Total).
		Int("current_page", currentPage).
		Int("total_pages", totalPageCount).
		Msg("page fetched")

	p.sink.OnResults(p, snapshot)

	return Outcome[T]{
		Kind:    OutcomeFetched,
		Window:  call.window,
		Records: slices.Clone(page.Records),
		Total:   page.Total,
	}
}
