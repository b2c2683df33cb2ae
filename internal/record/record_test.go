package record

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		file    string
		content string
		want    int
		wantErr error
	}{
		{name: "json array", file: "a.json", content: `[{"id":1},{"id":2}]`, want: 2},
		{name: "json envelope", file: "a.json", content: `{"items":[{"id":1}],"total":1}`, want: 1},
		{name: "yaml array", file: "a.yaml", content: "- id: 1\n- id: 2\n- id: 3\n", want: 3},
		{name: "yml envelope", file: "a.yml", content: "items:\n  - name: x\n", want: 1},
		{name: "null items", file: "a.json", content: `{"items":null}`, want: 0},
		{name: "no items key", file: "a.json", content: `{"rows":[]}`, wantErr: ErrNotRecords},
		{name: "scalar items", file: "a.json", content: `[1,2]`, wantErr: ErrNotRecords},
		{name: "bad extension", file: "a.csv", content: "id\n1\n", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := LoadFile(ctx, write(t, tt.file, tt.content))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, recs, tt.want)
		})
	}

	_, err := LoadFile(ctx, filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(ctx, write(t, "bad.json", "{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestNewFileStore(t *testing.T) {
	ctx := context.Background()
	path := write(t, "db.yaml", `
users:
  - {id: 1, team: core}
  - {id: 2, team: infra}
  - {id: 3, team: core}
orders: []
`)

	mem, err := NewFileStore(ctx, path)
	require.NoError(t, err)
	assert.True(t, mem.Supports("users"))
	assert.True(t, mem.Supports("orders"))
	assert.False(t, mem.Supports("invoices"))

	core, err := mem.FetchAll(ctx, store.Query{Entity: "users", Filter: store.Where("team", store.OpEq, "core")})
	require.NoError(t, err)
	assert.Len(t, core, 2)

	_, err = NewFileStore(ctx, write(t, "list.json", `[{"id":1}]`))
	require.ErrorIs(t, err, ErrNotRecords)

	_, err = NewFileStore(ctx, write(t, "bad.json", `{"users": 3}`))
	require.ErrorIs(t, err, ErrNotRecords)
}

func TestColumnsAndField(t *testing.T) {
	recs := []Record{
		{"name": "ann", "id": 1, "owner": map[string]any{"team": "core"}},
		{"id": 2, "age": 30.5, "tags": []any{"a", "b"}},
	}

	assert.Equal(t, []string{"id", "age", "name", "owner", "tags"}, Columns(recs))
	assert.Equal(t, []string{"b"}, Columns([]Record{{"b": 1}}))
	assert.Empty(t, Columns(nil))

	assert.Equal(t, "ann", Field(recs[0], "name"))
	assert.Equal(t, "1", Field(recs[0], "id"))
	assert.Equal(t, "core", Field(recs[0], "owner.team"))
	assert.JSONEq(t, `{"team":"core"}`, Field(recs[0], "owner"))
	assert.Equal(t, "30.5", Field(recs[1], "age"))
	assert.Equal(t, `["a","b"]`, Field(recs[1], "tags"))
	assert.Empty(t, Field(recs[1], "name"))
}
