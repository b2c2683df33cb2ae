package paginator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		knownTotal int
		wantOffset int
		wantLength int
	}{
		{name: "first page, total unknown", page: 1, pageSize: 10, knownTotal: 0, wantOffset: 0, wantLength: 10},
		{name: "second page", page: 2, pageSize: 10, knownTotal: 23, wantOffset: 10, wantLength: 10},
		{name: "short last page", page: 3, pageSize: 10, knownTotal: 23, wantOffset: 20, wantLength: 3},
		{name: "exact last page", page: 2, pageSize: 5, knownTotal: 10, wantOffset: 5, wantLength: 5},
		{name: "page past total", page: 4, pageSize: 10, knownTotal: 23, wantOffset: 30, wantLength: 0},
		{name: "page size one", page: 7, pageSize: 1, knownTotal: 51, wantOffset: 6, wantLength: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.page, tt.pageSize, tt.knownTotal)
			assert.Equal(t, tt.page, w.Page)
			assert.Equal(t, tt.pageSize, w.PageSize)
			assert.Equal(t, tt.wantOffset, w.Offset)
			assert.Equal(t, tt.wantLength, w.Length)
			assert.Equal(t, tt.wantOffset+tt.wantLength, w.End())
		})
	}
}

func TestWindow_Clamp(t *testing.T) {
	w := NewWindow(1, 10, 0)

	start, end := w.Clamp(4)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)

	start, end = NewWindow(3, 10, 0).Clamp(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = NewWindow(5, 10, 0).Clamp(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}

func TestSliceWindow_Copies(t *testing.T) {
	items := []int{1, 2, 3, 4}
	out := SliceWindow(items, NewWindow(1, 2, 0))
	require.Equal(t, []int{1, 2}, out)

	out[0] = 99
	assert.Equal(t, 1, items[0])
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(1, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
	assert.Equal(t, 4, totalPages(51, 15))
	assert.Equal(t, 0, totalPages(5, 0))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"in_memory", KindInMemory},
		{"memory", KindInMemory},
		{"STORE", KindStore},
		{"remote-url", KindRemoteURL},
		{"url", KindRemoteURL},
		{"remote_json", KindRemoteJSON},
		{" json ", KindRemoteJSON},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	_, err := ParseKind("carrier-pigeon")
	require.ErrorIs(t, err, ErrUnsupportedSourceKind)
	assert.False(t, KindDefault.Valid())
	assert.False(t, Kind(42).Valid())
	assert.Equal(t, "kind(42)", Kind(42).String())
	assert.Equal(t, "remote_json", KindRemoteJSON.String())
	assert.Equal(t, "in_progress", StatusInProgress.String())
}
