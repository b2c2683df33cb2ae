package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults and accepted values.
const (
	DefaultOutput    = "table"
	DefaultSortOrder = "asc"
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
	MaxPageSize      = 10000
)

// Common validation errors.
var (
	ErrInvalidPageSize   = errors.New("page-size must be between 0 and 10000")
	ErrInvalidPages      = errors.New("pages must be non-negative")
	ErrInvalidOutput     = errors.New("output must be one of table, json, yaml")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'age:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
)

// PaginationParams holds the paging flags of the page and browse commands.
//
//nolint:revive // PaginationParams is the canonical name for this exported type.
type PaginationParams struct {
	// PageSize is the number of records per page; 0 uses the configured default.
	PageSize int

	// Pages is how many pages to fetch; 0 fetches until the last page.
	Pages int

	// Output is the output format: table, json or yaml.
	Output string

	// Sort is a "field" or "field:order" expression applied to displayed records.
	Sort string
}

// NewPaginationParams creates a PaginationParams with default values.
func NewPaginationParams() *PaginationParams {
	return &PaginationParams{Output: DefaultOutput}
}

// Validate checks the flag values (value receiver).
func (p PaginationParams) Validate() error {
	if p.PageSize < 0 || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.PageSize)
	}
	if p.Pages < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPages, p.Pages)
	}
	switch p.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidOutput, p.Output)
	}
	if p.Sort != "" {
		if _, _, err := ParseSort(p.Sort); err != nil {
			return err
		}
	}
	return nil
}

// EffectivePageSize returns PageSize, or fallback when PageSize is unset.
func (p PaginationParams) EffectivePageSize(fallback int) int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return fallback
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses a sort string in the format "field" or "field:order".
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}

	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}

	return field, order, nil
}
