package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

// JSONSource pages through an array inside a JSON document. The whole
// document is downloaded for every window and sliced here, so the total
// always reflects the document as it is now.
type JSONSource[T any] struct {
	client    *Client
	url       *url.URL
	itemsPath []string
}

// NewJSONSource creates a source for the document at rawURL. itemsPath is a
// dot separated path to the array ("data.items", "results.0.rows"); empty
// means the document itself is the array.
func NewJSONSource[T any](c *Client, rawURL, itemsPath string) (*JSONSource[T], error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = NewClient()
	}
	return &JSONSource[T]{client: c, url: u, itemsPath: splitPath(itemsPath)}, nil
}

// Kind implements paginator.Source.
func (s *JSONSource[T]) Kind() paginator.Kind {
	return paginator.KindRemoteJSON
}

// Resolve implements paginator.Source.
func (s *JSONSource[T]) Resolve(ctx context.Context, w paginator.Window) (paginator.Page[T], error) {
	body, err := s.client.Get(ctx, s.url)
	if err != nil {
		return paginator.Page[T]{}, err
	}

	items, err := extractArray(body, s.itemsPath)
	if err != nil {
		return paginator.Page[T]{}, err
	}
	if len(items) == 0 {
		return paginator.Page[T]{Records: []T{}, Total: 0}, nil
	}

	start, end := w.Clamp(len(items))
	records := make([]T, 0, end-start)
	for i := start; i < end; i++ {
		var rec T
		if err = json.Unmarshal(items[i], &rec); err != nil {
			return paginator.Page[T]{}, fmt.Errorf("decoding item %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return paginator.Page[T]{Records: records, Total: len(items)}, nil
}

// extractArray walks path through doc and returns the elements of the array
// found there, still encoded.
func extractArray(doc []byte, path []string) ([]json.RawMessage, error) {
	cur := json.RawMessage(bytes.TrimSpace(doc))
	for depth, seg := range path {
		next, err := step(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("items path %q: %w", strings.Join(path[:depth+1], "."), err)
		}
		cur = next
	}

	if len(cur) == 0 || cur[0] != '[' {
		return nil, fmt.Errorf("%w: %q", ErrNotArray, strings.Join(path, "."))
	}
	var items []json.RawMessage
	if err := json.Unmarshal(cur, &items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	return items, nil
}

func step(cur json.RawMessage, seg string) (json.RawMessage, error) {
	cur = bytes.TrimSpace(cur)
	if len(cur) == 0 {
		return nil, ErrMissingItems
	}

	switch cur[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, err
		}
		next, ok := obj[seg]
		if !ok {
			return nil, fmt.Errorf("%w: no field %q", ErrMissingItems, seg)
		}
		return next, nil
	case '[':
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an index", ErrMissingItems, seg)
		}
		var arr []json.RawMessage
		if err = json.Unmarshal(cur, &arr); err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(arr) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrMissingItems, idx)
		}
		return arr[idx], nil
	default:
		return nil, fmt.Errorf("%w: cannot descend into scalar", ErrMissingItems)
	}
}

func splitPath(p string) []string {
	p = strings.Trim(strings.TrimSpace(p), ".")
	if p == "" {
		return nil
	}
	return strings.Split(p, ".")
}
