package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

// Envelope defaults for URLSource.
const (
	DefaultPageParam  = "page"
	DefaultSizeParam  = "per_page"
	DefaultItemsField = "items"
	DefaultTotalField = "total"
)

// URLSource resolves each window with one request to a server that pages on
// its side:
//
//	GET <url>?page=N&per_page=M  ->  {"items": [...], "total": 123}
type URLSource[T any] struct {
	client     *Client
	base       *url.URL
	pageParam  string
	sizeParam  string
	itemsField string
	totalField string
}

// URLOption configures a URLSource.
type URLOption func(*urlOptions)

type urlOptions struct {
	pageParam  string
	sizeParam  string
	itemsField string
	totalField string
}

// WithPageParam names the query parameter carrying the 1-based page number.
func WithPageParam(name string) URLOption {
	return func(o *urlOptions) { o.pageParam = name }
}

// WithSizeParam names the query parameter carrying the page size.
func WithSizeParam(name string) URLOption {
	return func(o *urlOptions) { o.sizeParam = name }
}

// WithItemsField names the envelope field holding the page's records.
func WithItemsField(name string) URLOption {
	return func(o *urlOptions) { o.itemsField = name }
}

// WithTotalField names the envelope field holding the total record count.
func WithTotalField(name string) URLOption {
	return func(o *urlOptions) { o.totalField = name }
}

// NewURLSource creates a source for rawURL. Query parameters already present
// in rawURL are kept.
func NewURLSource[T any](c *Client, rawURL string, opts ...URLOption) (*URLSource[T], error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}

	o := urlOptions{
		pageParam:  DefaultPageParam,
		sizeParam:  DefaultSizeParam,
		itemsField: DefaultItemsField,
		totalField: DefaultTotalField,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if c == nil {
		c = NewClient()
	}

	return &URLSource[T]{
		client:     c,
		base:       u,
		pageParam:  o.pageParam,
		sizeParam:  o.sizeParam,
		itemsField: o.itemsField,
		totalField: o.totalField,
	}, nil
}

// Kind implements paginator.Source.
func (s *URLSource[T]) Kind() paginator.Kind {
	return paginator.KindRemoteURL
}

// PageURL returns the request URL for w.
func (s *URLSource[T]) PageURL(w paginator.Window) *url.URL {
	u := *s.base
	q := u.Query()
	q.Set(s.pageParam, strconv.Itoa(w.Page))
	q.Set(s.sizeParam, strconv.Itoa(w.PageSize))
	u.RawQuery = q.Encode()
	return &u
}

// Resolve implements paginator.Source. The server is trusted to apply the
// window; records beyond the page size are dropped.
func (s *URLSource[T]) Resolve(ctx context.Context, w paginator.Window) (paginator.Page[T], error) {
	body, err := s.client.Get(ctx, s.PageURL(w))
	if err != nil {
		return paginator.Page[T]{}, err
	}

	var envelope map[string]json.RawMessage
	if err = json.Unmarshal(body, &envelope); err != nil {
		return paginator.Page[T]{}, fmt.Errorf("decoding page %d: %w", w.Page, err)
	}

	rawTotal, ok := envelope[s.totalField]
	if !ok || isNull(rawTotal) {
		return paginator.Page[T]{}, fmt.Errorf("%w: field %q", ErrMissingTotal, s.totalField)
	}
	var total int
	if err = json.Unmarshal(rawTotal, &total); err != nil {
		return paginator.Page[T]{}, fmt.Errorf("decoding %q: %w", s.totalField, err)
	}

	rawItems, ok := envelope[s.itemsField]
	if !ok {
		return paginator.Page[T]{}, fmt.Errorf("%w: field %q", ErrMissingItems, s.itemsField)
	}
	records := make([]T, 0, w.PageSize)
	if !isNull(rawItems) {
		if err = json.Unmarshal(rawItems, &records); err != nil {
			return paginator.Page[T]{}, fmt.Errorf("decoding %q: %w", s.itemsField, err)
		}
	}
	if len(records) > w.PageSize {
		records = records[:w.PageSize]
	}

	return paginator.Page[T]{Records: records, Total: max(total, 0)}, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
