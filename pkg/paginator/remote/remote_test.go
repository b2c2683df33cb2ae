package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

type item struct {
	ID int `json:"id"`
}

func items(n int) []item {
	out := make([]item, n)
	for i := 0; i < n; i++ {
		out[i] = item{ID: i}
	}
	return out
}

// pagedServer serves n items with page/per_page parameters and records the
// queries it saw.
type pagedServer struct {
	*httptest.Server
	mu      sync.Mutex
	queries []string
}

func newPagedServer(t *testing.T, n int) *pagedServer {
	t.Helper()
	ps := &pagedServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.queries = append(ps.queries, r.URL.RawQuery)
		ps.mu.Unlock()

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		all := items(n)
		start := min((page-1)*size, n)
		end := min(start+size, n)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": all[start:end], "total": n})
	}))
	t.Cleanup(ps.Close)
	return ps
}

func TestURLSource_Drain(t *testing.T) {
	srv := newPagedServer(t, 23)
	src, err := NewURLSource[item](nil, srv.URL+"/items?team=core")
	require.NoError(t, err)

	p, err := paginator.New[item](src, paginator.SinkFuncs[item]{}, paginator.WithPageSize(10))
	require.NoError(t, err)
	assert.Equal(t, paginator.KindRemoteURL, p.Kind())

	n, err := p.Drain(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, items(23), p.Results())
	assert.Equal(t, 23, p.TotalCount())
	assert.Equal(t, []string{
		"page=1&per_page=10&team=core",
		"page=2&per_page=10&team=core",
		"page=3&per_page=10&team=core",
	}, srv.queries)
}

func TestURLSource_CustomEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("p"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"data":[{"id":3},{"id":4},{"id":5},{"id":6}],"count":9}`)
	}))
	t.Cleanup(srv.Close)

	src, err := NewURLSource[item](NewClient(), srv.URL,
		WithPageParam("p"), WithSizeParam("limit"),
		WithItemsField("data"), WithTotalField("count"))
	require.NoError(t, err)

	page, err := src.Resolve(context.Background(), paginator.NewWindow(2, 3, 9))
	require.NoError(t, err)
	assert.Equal(t, 9, page.Total)
	assert.Equal(t, []item{{3}, {4}, {5}}, page.Records, "records beyond the page size are dropped")
}

func TestURLSource_EnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "missing total", body: `{"items":[]}`, want: ErrMissingTotal},
		{name: "null total", body: `{"items":[],"total":null}`, want: ErrMissingTotal},
		{name: "missing items", body: `{"total":4}`, want: ErrMissingItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			src, err := NewURLSource[item](nil, srv.URL)
			require.NoError(t, err)

			p, err := paginator.New[item](src, paginator.SinkFuncs[item]{})
			require.NoError(t, err)

			out := p.Load(context.Background())
			require.Equal(t, paginator.OutcomeFailed, out.Kind)
			require.ErrorIs(t, out.Err, tt.want)

			var perr *paginator.Error
			require.ErrorAs(t, out.Err, &perr)
			assert.Equal(t, "paginator.remote_url", perr.Domain)
			assert.Equal(t, paginator.StatusDone, p.Status())
		})
	}
}

func TestURLSource_NullItemsIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items":null,"total":0}`)
	}))
	t.Cleanup(srv.Close)

	src, err := NewURLSource[item](nil, srv.URL)
	require.NoError(t, err)
	p, err := paginator.New[item](src, paginator.SinkFuncs[item]{})
	require.NoError(t, err)

	out := p.Load(context.Background())
	require.True(t, out.OK())
	assert.True(t, p.IsLastPage())
	assert.Empty(t, p.Results())
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	src, err := NewURLSource[item](nil, srv.URL)
	require.NoError(t, err)

	_, err = src.Resolve(context.Background(), paginator.NewWindow(1, 10, 0))
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.StatusCode)
	assert.Contains(t, he.Body, "boom")
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Headers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithHeader("Authorization", "Bearer token"))
	src, err := NewJSONSource[item](c, srv.URL, "")
	require.NoError(t, err)

	page, err := src.Resolve(context.Background(), paginator.NewWindow(1, 10, 0))
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestClient_CircuitBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithCircuitBreaker("test", 2))
	u, err := parseURL(srv.URL)
	require.NoError(t, err)

	for range_i := 0; range_i < 2; range_i++ {
		_, err = c.Get(context.Background(), u)
		var he *HTTPError
		require.ErrorAs(t, err, &he)
	}
	assert.Equal(t, gobreaker.StateOpen, c.BreakerState())

	_, err = c.Get(context.Background(), u)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_ClientErrorsDoNotTrip(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithCircuitBreaker("test", 1))
	u, err := parseURL(srv.URL)
	require.NoError(t, err)

	for range_i := 0; range_i < 3; range_i++ {
		_, err = c.Get(context.Background(), u)
		require.Error(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, gobreaker.StateClosed, c.BreakerState())
	assert.Equal(t, gobreaker.StateClosed, NewClient().BreakerState())
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithRateLimit(0.001, 1))
	u, err := parseURL(srv.URL)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), u)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Get(ctx, u)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"id":1},{"id":2}]`)
	}))
	t.Cleanup(srv.Close)

	src, err := NewJSONSource[item](NewClient(WithMaxBodyBytes(8)), srv.URL, "")
	require.NoError(t, err)

	_, err = src.Resolve(context.Background(), paginator.NewWindow(1, 10, 0))
	require.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestParseURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/x", "example.com/items", "http://", "http://[::1"} {
		_, err := NewURLSource[item](nil, raw)
		require.ErrorIs(t, err, ErrInvalidURL, raw)
	}

	_, err := NewJSONSource[item](nil, "https://example.com/data.json", "data")
	require.NoError(t, err)
}

func TestJSONSource_Drain(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"items": items(25)},
		})
	}))
	t.Cleanup(srv.Close)

	src, err := NewJSONSource[item](nil, srv.URL, "data.items")
	require.NoError(t, err)

	var pages []int
	sink := paginator.SinkFuncs[item]{
		Results: func(p *paginator.Paginator[item], _ []item) { pages = append(pages, p.CurrentPage()) },
	}
	p, err := paginator.New[item](src, sink, paginator.WithPageSize(10))
	require.NoError(t, err)
	assert.Equal(t, paginator.KindRemoteJSON, p.Kind())

	_, err = p.Drain(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, items(25), p.Results())
	assert.Equal(t, []int{1, 2, 3}, pages)
	assert.Equal(t, int32(3), hits.Load(), "the document is fetched once per page")
}

func TestExtractArray(t *testing.T) {
	doc := []byte(`{"results":[{"rows":[1,2,3]}],"name":"x","empty":[]}`)

	tests := []struct {
		name    string
		path    string
		want    int
		wantErr error
	}{
		{name: "index into array", path: "results.0.rows", want: 3},
		{name: "empty array", path: "empty", want: 0},
		{name: "leading and trailing dots", path: ".results.0.rows.", want: 3},
		{name: "missing field", path: "results.0.cols", wantErr: ErrMissingItems},
		{name: "index out of range", path: "results.4", wantErr: ErrMissingItems},
		{name: "non numeric index", path: "results.first", wantErr: ErrMissingItems},
		{name: "scalar", path: "name.x", wantErr: ErrMissingItems},
		{name: "object is not array", path: "results.0", wantErr: ErrNotArray},
		{name: "root is object", path: "", wantErr: ErrNotArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractArray(doc, splitPath(tt.path))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
