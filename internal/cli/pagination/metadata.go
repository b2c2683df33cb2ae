package pagination

import (
	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

// PaginationMeta describes how far a paging session got.
//
//nolint:revive // PaginationMeta is the canonical name for this exported type.
type PaginationMeta struct {
	Source      string `json:"source"       yaml:"source"`
	Kind        string `json:"kind"         yaml:"kind"`
	CurrentPage int    `json:"current_page" yaml:"current_page"`
	PageSize    int    `json:"page_size"    yaml:"page_size"`
	TotalPages  int    `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int    `json:"total_items"  yaml:"total_items"`
	Fetched     int    `json:"fetched"      yaml:"fetched"`
	HasNext     bool   `json:"has_next"     yaml:"has_next"`
}

// NewPaginationMeta builds metadata from a paginator snapshot.
func NewPaginationMeta(source string, s paginator.Snapshot) PaginationMeta {
	return PaginationMeta{
		Source:      source,
		Kind:        s.Kind.String(),
		CurrentPage: s.CurrentPage,
		PageSize:    s.PageSize,
		TotalPages:  s.TotalPageCount,
		TotalItems:  s.TotalCount,
		Fetched:     s.Accumulated,
		HasNext:     s.Status != paginator.StatusNone && !s.LastPage,
	}
}
