package paginator

// Window is the slice of the full record set requested for one page.
type Window struct {
	// Page is the 1-based page number.
	Page int `json:"page"`

	// PageSize is the configured page size.
	PageSize int `json:"page_size"`

	// Offset is the index of the first record of the page.
	Offset int `json:"offset"`

	// Length is the number of records requested. It is shorter than PageSize
	// only for the final page of a source whose total is already known.
	Length int `json:"length"`
}

// NewWindow computes the window for page given pageSize and the total count
// the controller currently knows (0 when nothing has been fetched yet).
func NewWindow(page, pageSize, knownTotal int) Window {
	offset := (page * pageSize) - pageSize
	length := pageSize
	if knownTotal > 0 && knownTotal-offset < pageSize {
		length = knownTotal - offset
	}
	if length < 0 {
		length = 0
	}
	return Window{
		Page:     page,
		PageSize: pageSize,
		Offset:   offset,
		Length:   length,
	}
}

// End returns the exclusive end index of the window.
func (w Window) End() int {
	return w.Offset + w.Length
}

// Clamp bounds the window to a record set of size n and returns the
// [start, end) indices that are safe to slice with.
//
//nolint:nonamedreturns // Named returns document the pair.
func (w Window) Clamp(n int) (start, end int) {
	start = min(max(w.Offset, 0), n)
	end = min(max(w.End(), start), n)
	return start, end
}

// totalPages returns ceil(total / pageSize).
func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}
