package paginator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

type person struct {
	Name string
	Age  int
}

func personField(p person, field string) (any, bool) {
	switch field {
	case "name":
		return p.Name, true
	case "age":
		return p.Age, true
	}
	return nil, false
}

func people(n int) []person {
	out := make([]person, n)
	for i := 0; i < n; i++ {
		out[i] = person{Name: string(rune('a' + i%26)), Age: i}
	}
	return out
}

// windowedStore wraps a Memory store and records pushed-down calls.
type windowedStore struct {
	*store.Memory[person]
	counts  int
	windows [][2]int
	fetches int
}

func (s *windowedStore) FetchAll(ctx context.Context, q store.Query) ([]person, error) {
	s.fetches++
	return s.Memory.FetchAll(ctx, q)
}

func (s *windowedStore) Count(ctx context.Context, q store.Query) (int, error) {
	s.counts++
	all, err := s.Memory.FetchAll(ctx, q)
	return len(all), err
}

func (s *windowedStore) FetchWindow(ctx context.Context, q store.Query, offset, limit int) ([]person, error) {
	s.windows = append(s.windows, [2]int{offset, limit})
	all, err := s.Memory.FetchAll(ctx, q)
	if err != nil {
		return nil, err
	}
	return all[offset : offset+limit], nil
}

type failingStore struct{}

func (failingStore) Supports(string) bool { return true }

func (failingStore) FetchAll(context.Context, store.Query) ([]person, error) {
	return nil, errors.New("connection reset")
}

func TestStoreSource_FullFetch(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(personField)
	mem.Put("person", people(23)...)

	p, err := NewStore[person](mem, "person", nil, &recordingSink[person]{}, WithPageSize(10))
	require.NoError(t, err)
	assert.Equal(t, KindStore, p.Kind())

	n, err := p.Drain(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, people(23), p.Results())
	assert.Equal(t, 23, p.TotalCount())
}

func TestStoreSource_Filter(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(personField)
	mem.Put("person", people(30)...)

	filter := store.Where("age", store.OpGe, 20)
	p, err := NewStore[person](mem, "person", filter, &recordingSink[person]{}, WithPageSize(4))
	require.NoError(t, err)

	_, err = p.Drain(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, p.TotalCount())
	assert.Equal(t, 3, p.TotalPageCount())
	assert.Equal(t, people(30)[20:], p.Results())
}

func TestStoreSource_UnsupportedEntity(t *testing.T) {
	mem := store.NewMemory(personField)
	mem.Put("person", people(3)...)

	sink := &recordingSink[person]{}
	p, err := NewStore[person](mem, "invoice", nil, sink)
	require.NoError(t, err)

	out := p.Load(context.Background())
	require.Equal(t, OutcomeFetched, out.Kind)
	require.NoError(t, out.Err)
	assert.Empty(t, out.Records)
	assert.Equal(t, 0, out.Total)

	results, failures, _ := sink.calls()
	assert.Equal(t, 1, results, "the results callback fires with an empty collection")
	assert.Equal(t, 0, failures)
	assert.Empty(t, sink.results[0])

	assert.Empty(t, p.Results())
	assert.Equal(t, StatusDone, p.Status())
	assert.True(t, p.IsLastPage())
	assert.Equal(t, OutcomeSkippedLastPage, p.FetchNextPage(context.Background()).Kind)
}

func TestStoreSource_WindowPushdown(t *testing.T) {
	ctx := context.Background()
	ws := &windowedStore{Memory: store.NewMemory(personField)}
	ws.Put("person", people(23)...)

	p, err := NewStore[person](ws, "person", nil, &recordingSink[person]{}, WithPageSize(10))
	require.NoError(t, err)

	_, err = p.Drain(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, people(23), p.Results())
	assert.Equal(t, 0, ws.fetches)
	assert.Equal(t, 3, ws.counts)
	assert.Equal(t, [][2]int{{0, 10}, {10, 10}, {20, 3}}, ws.windows)
}

func TestStoreSource_EmptyEntity(t *testing.T) {
	mem := store.NewMemory(personField)
	mem.Put("person")

	p, err := NewStore[person](mem, "person", nil, &recordingSink[person]{})
	require.NoError(t, err)

	out := p.Load(context.Background())
	require.True(t, out.OK())
	assert.True(t, p.IsLastPage())
	assert.Equal(t, 0, p.TotalCount())
}

func TestStoreSource_StoreError(t *testing.T) {
	p, err := NewStore[person](failingStore{}, "person", nil, &recordingSink[person]{})
	require.NoError(t, err)

	out := p.Load(context.Background())
	require.Equal(t, OutcomeFailed, out.Kind)
	assert.Contains(t, out.Err.Error(), "connection reset")
	assert.Contains(t, out.Err.Error(), "fetching person")
}
