package sqlstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvu812/mvpaginator/pkg/paginator"
	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

type user struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Team string `db:"team"`
}

// newMock returns a mock database that sqlx treats as driver.
func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, driver), mock
}

func TestNew_Validation(t *testing.T) {
	db, _ := newMock(t, DriverSQLite)

	_, err := New[user](db, WithOrderBy("id; DROP TABLE users"))
	require.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = New[user](db, WithEntities("users", "bad name"))
	require.ErrorIs(t, err, ErrInvalidIdentifier)

	s, err := New[user](db, WithEntities("users"))
	require.NoError(t, err)
	assert.True(t, s.Supports("users"))
	assert.False(t, s.Supports("orders"))

	open, err := New[user](db)
	require.NoError(t, err)
	assert.True(t, open.Supports("public.orders"))
	assert.False(t, open.Supports("orders--"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestStore_CountAndWindow(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t, DriverSQLite)
	s, err := New[user](db, WithOrderBy("id"))
	require.NoError(t, err)

	filter := store.Where("team", store.OpEq, "core")
	q := store.Query{Entity: "users", Filter: filter}

	mock.ExpectQuery("SELECT COUNT(*) FROM users WHERE team = ?").
		WithArgs("core").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := s.Count(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	mock.ExpectQuery("SELECT * FROM users WHERE team = ? ORDER BY id LIMIT ? OFFSET ?").
		WithArgs("core", int64(5), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "team"}).
			AddRow(int64(11), "kim", "core").
			AddRow(int64(12), "lee", "core"))

	recs, err := s.FetchWindow(ctx, q, 10, 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, user{ID: 11, Name: "kim", Team: "core"}, recs[0])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FetchAllMaps(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t, DriverSQLite)
	s, err := NewMap(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT * FROM notes WHERE body LIKE ? AND id <> ? ORDER BY rowid").
		WithArgs("%go%", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "body"}).
			AddRow(int64(1), []byte("go is fun")))

	f := store.Where("body", store.OpContains, "go").And("id", store.OpNe, int64(3))
	recs, err := s.FetchAll(ctx, store.Query{Entity: "notes", Filter: f})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.EqualValues(t, 1, recs[0]["id"])
	assert.Equal(t, "go is fun", recs[0]["body"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RejectsBadFilterField(t *testing.T) {
	db, _ := newMock(t, DriverSQLite)
	s, err := NewMap(db)
	require.NoError(t, err)

	_, err = s.FetchAll(context.Background(), store.Query{
		Entity: "notes",
		Filter: store.Where("1=1 OR x", store.OpEq, 1),
	})
	require.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = s.Count(context.Background(), store.Query{Entity: "no such table"})
	require.ErrorIs(t, err, store.ErrUnknownEntity)
}

func TestStore_PaginatorPushdown(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t, DriverSQLite)
	s, err := New[user](db, WithEntities("users"), WithOrderBy("id"))
	require.NoError(t, err)

	rows := func(from, to int64) *sqlmock.Rows {
		r := sqlmock.NewRows([]string{"id", "name", "team"})
		for i := from; i < to; i++ {
			r.AddRow(i, "u", "core")
		}
		return r
	}

	for _, w := range []struct{ limit, offset int64 }{{10, 0}, {10, 10}, {3, 20}} {
		mock.ExpectQuery("SELECT COUNT(*) FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(23)))
		mock.ExpectQuery("SELECT * FROM users ORDER BY id LIMIT ? OFFSET ?").
			WithArgs(w.limit, w.offset).
			WillReturnRows(rows(w.offset, w.offset+w.limit))
	}

	var last []user
	sink := paginator.SinkFuncs[user]{
		Results: func(_ *paginator.Paginator[user], all []user) { last = all },
	}
	p, err := paginator.NewStore[user](s, "users", nil, sink, paginator.WithPageSize(10))
	require.NoError(t, err)

	n, err := p.Drain(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, last, 23)
	assert.Equal(t, int64(22), last[22].ID)
	assert.Equal(t, 3, p.TotalPageCount())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_OrderColumn(t *testing.T) {
	sqlite, _ := newMock(t, DriverSQLite)
	s, err := NewMap(sqlite)
	require.NoError(t, err)
	assert.Equal(t, "rowid", s.orderBy)

	pg, _ := newMock(t, DriverPostgres)
	_, err = NewMap(pg)
	require.ErrorIs(t, err, ErrOrderRequired)

	s, err = NewMap(pg, WithOrderBy("created_at"))
	require.NoError(t, err)
	assert.Equal(t, "created_at", s.orderBy)
}

func TestStore_WindowsAreOrdered(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		opts   []Option
		want   string
	}{
		{
			name:   "sqlite default",
			driver: DriverSQLite,
			want:   "SELECT * FROM people ORDER BY rowid LIMIT ? OFFSET ?",
		},
		{
			name:   "sqlite column",
			driver: DriverSQLite,
			opts:   []Option{WithOrderBy("id")},
			want:   "SELECT * FROM people ORDER BY id LIMIT ? OFFSET ?",
		},
		{
			name:   "postgres",
			driver: DriverPostgres,
			opts:   []Option{WithOrderBy("id")},
			want:   "SELECT * FROM people ORDER BY id LIMIT $1 OFFSET $2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t, tt.driver)
			s, err := NewMap(db, tt.opts...)
			require.NoError(t, err)

			mock.ExpectQuery(tt.want).
				WithArgs(int64(10), int64(10)).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

			recs, err := s.FetchWindow(context.Background(), store.Query{Entity: "people"}, 10, 10)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
