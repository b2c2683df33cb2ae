package paginator

import "slices"

// Snapshot is a consistent view of the controller state.
type Snapshot struct {
	SessionID      string `json:"session_id"       yaml:"session_id"`
	Kind           Kind   `json:"kind"             yaml:"kind"`
	Status         Status `json:"status"           yaml:"status"`
	PageSize       int    `json:"page_size"        yaml:"page_size"`
	CurrentPage    int    `json:"current_page"     yaml:"current_page"`
	TotalCount     int    `json:"total_count"      yaml:"total_count"`
	TotalPageCount int    `json:"total_page_count" yaml:"total_page_count"`
	Accumulated    int    `json:"accumulated"      yaml:"accumulated"`
	LastPage       bool   `json:"last_page"        yaml:"last_page"`
}

// Snapshot returns the current state in one consistent read.
func (p *Paginator[T]) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		SessionID:      p.sessionID.String(),
		Kind:           p.kind,
		Status:         p.status,
		PageSize:       p.pageSize,
		CurrentPage:    p.currentPage,
		TotalCount:     p.totalCount,
		TotalPageCount: p.totalPageCount,
		Accumulated:    len(p.results),
		LastPage:       p.isLastPageLocked(),
	}
}

// Results returns a copy of the records accumulated in this session.
func (p *Paginator[T]) Results() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.results)
}

// Status returns the controller status.
func (p *Paginator[T]) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// CurrentPage returns the number of pages fetched in this session.
func (p *Paginator[T]) CurrentPage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPage
}

// TotalCount returns the total reported by the last successful fetch.
func (p *Paginator[T]) TotalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalCount
}

// TotalPageCount returns ceil(TotalCount / PageSize).
func (p *Paginator[T]) TotalPageCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPageCount
}

// PageSize returns the configured page size.
func (p *Paginator[T]) PageSize() int {
	return p.pageSize
}

// Kind returns the kind of the bound source.
func (p *Paginator[T]) Kind() Kind {
	return p.kind
}
