// Package paginator provides a generic pagination controller that walks a data
// source page by page, accumulates what it has fetched and reports progress to a
// caller-supplied sink.
//
// A Paginator is bound to exactly one Source for its lifetime. The source kind
// decides where records come from:
//   - KindInMemory: a pre-loaded slice (SliceSource)
//   - KindStore: an entity in a record store, optionally filtered (StoreSource)
//   - KindRemoteURL, KindRemoteJSON: HTTP endpoints (see package remote)
//
// # Basic Usage
//
//	src := paginator.NewSliceSource(items)
//	p, err := paginator.New[string](src, paginator.SinkFuncs[string]{
//	    Results: func(_ *paginator.Paginator[string], all []string) {
//	        fmt.Println(len(all), "records so far")
//	    },
//	}, paginator.WithPageSize(15))
//	if err != nil {
//	    return err
//	}
//
//	p.Load(ctx)
//	for !p.IsLastPage() {
//	    p.FetchNextPage(ctx)
//	}
//
// # State Machine
//
// The controller moves None -> InProgress -> Done for every page. Done is
// quiescent: the next FetchNextPage starts another fetch unless the last page
// has been reached. Reset returns to None from any state and clears the
// accumulated results. Only one fetch may be outstanding at a time; a call made
// while a fetch is in flight is skipped.
//
// The sink always receives the cumulative result set, never just the new page.
// Callers that want the delta read it from the returned Outcome.
package paginator
