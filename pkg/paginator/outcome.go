package paginator

// OutcomeKind discriminates the result of a fetch call.
type OutcomeKind int

// Fetch outcomes.
const (
	// OutcomeFetched means a page was appended and the sink was notified.
	OutcomeFetched OutcomeKind = iota

	// OutcomeFailed means the source failed; nothing was appended.
	OutcomeFailed

	// OutcomeSkippedInProgress means another fetch was already outstanding.
	OutcomeSkippedInProgress

	// OutcomeSkippedLastPage means the last page had already been fetched.
	OutcomeSkippedLastPage

	// OutcomeCanceled means the fetch was canceled; status went back to None.
	OutcomeCanceled

	// OutcomeDiscarded means the session was reset while the fetch was in flight.
	OutcomeDiscarded
)

// String returns a lower-case outcome name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFetched:
		return "fetched"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkippedInProgress:
		return "skipped_in_progress"
	case OutcomeSkippedLastPage:
		return "skipped_last_page"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Outcome reports what a single FetchNextPage call did.
type Outcome[T any] struct {
	Kind OutcomeKind

	// Window is the page window that was requested. Zero for skipped calls.
	Window Window

	// Records holds only the records of this page (the delta).
	Records []T

	// Total is the total count reported by the source.
	Total int

	// Err is set for OutcomeFailed and OutcomeCanceled.
	Err error
}

// OK reports whether a page was fetched.
func (o Outcome[T]) OK() bool {
	return o.Kind == OutcomeFetched
}

// Skipped reports whether the call did not start a fetch.
func (o Outcome[T]) Skipped() bool {
	return o.Kind == OutcomeSkippedInProgress || o.Kind == OutcomeSkippedLastPage
}
