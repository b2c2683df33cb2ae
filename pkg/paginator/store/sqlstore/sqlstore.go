// Package sqlstore is a SQL-backed record store for store-backed paginator
// sources. Tables play the role of entities; counts and windows are pushed
// down to the database with COUNT(*) and LIMIT/OFFSET.
//
// Every SELECT carries an ORDER BY so that separate window queries see rows
// in one order. sqlite tables fall back to rowid; other drivers need
// WithOrderBy.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Common SQL store errors.
var (
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
	ErrUnsupportedDriver = errors.New("unsupported SQL driver")
	ErrOrderRequired     = errors.New("an order by column is required")
)

// sqliteOrderColumn orders sqlite rows when no column is configured.
const sqliteOrderColumn = "rowid"

// identifierPattern allows plain and schema-qualified names only.
//
//nolint:gochecknoglobals // Compiled once.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ScanFunc decodes the current row of rows into a record.
type ScanFunc[T any] func(rows *sqlx.Rows) (T, error)

// Store pages through SQL tables with sqlx.
type Store[T any] struct {
	db       *sqlx.DB
	entities map[string]bool
	orderBy  string
	scan     ScanFunc[T]
	logger   zerolog.Logger
}

// Option configures a Store.
type Option func(*config)

type config struct {
	entities []string
	orderBy  string
	logger   zerolog.Logger
}

// WithEntities restricts the store to the listed tables. Without it any valid
// identifier is accepted.
func WithEntities(names ...string) Option {
	return func(c *config) {
		c.entities = append(c.entities, names...)
	}
}

// WithOrderBy sets the column used to give pages a stable order. It should be
// unique, or ties may move between pages.
func WithOrderBy(column string) Option {
	return func(c *config) {
		c.orderBy = column
	}
}

// WithLogger sets the logger for query diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Open connects to a database with one of the supported drivers and pings it.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	return db, nil
}

// New creates a store whose records are structs scanned by column name
// (`db` struct tags).
func New[T any](db *sqlx.DB, opts ...Option) (*Store[T], error) {
	return newStore[T](db, scanStruct[T], opts...)
}

// NewMap creates a store whose records are column-name maps.
func NewMap(db *sqlx.DB, opts ...Option) (*Store[map[string]any], error) {
	return newStore[map[string]any](db, scanMap, opts...)
}

func newStore[T any](db *sqlx.DB, scan ScanFunc[T], opts ...Option) (*Store[T], error) {
	c := config{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&c)
	}

	switch {
	case c.orderBy != "":
		if !identifierPattern.MatchString(c.orderBy) {
			return nil, fmt.Errorf("%w: order by %q", ErrInvalidIdentifier, c.orderBy)
		}
	case db.DriverName() == DriverSQLite:
		c.orderBy = sqliteOrderColumn
	default:
		return nil, fmt.Errorf("%w for driver %q", ErrOrderRequired, db.DriverName())
	}

	s := &Store[T]{
		db:      db,
		orderBy: c.orderBy,
		scan:    scan,
		logger:  c.logger.With().Str("component", "sqlstore").Logger(),
	}
	if len(c.entities) > 0 {
		s.entities = make(map[string]bool, len(c.entities))
		for _, name := range c.entities {
			if !identifierPattern.MatchString(name) {
				return nil, fmt.Errorf("%w: entity %q", ErrInvalidIdentifier, name)
			}
			s.entities[name] = true
		}
	}
	return s, nil
}

// Supports implements store.Store.
func (s *Store[T]) Supports(entity string) bool {
	if !identifierPattern.MatchString(entity) {
		return false
	}
	if s.entities == nil {
		return true
	}
	return s.entities[entity]
}

// FetchAll implements store.Store.
func (s *Store[T]) FetchAll(ctx context.Context, q store.Query) ([]T, error) {
	query, args, err := s.selectQuery(q, -1, 0)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

// Count implements store.WindowedStore.
func (s *Store[T]) Count(ctx context.Context, q store.Query) (int, error) {
	where, args, err := whereClause(q.Filter)
	if err != nil {
		return 0, err
	}
	if !s.Supports(q.Entity) {
		return 0, fmt.Errorf("%w: %q", store.ErrUnknownEntity, q.Entity)
	}

	query := s.db.Rebind("SELECT COUNT(*) FROM " + q.Entity + where)
	s.logger.Debug().Str("query", query).Msg("count")

	var n int
	if err = s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("counting %s: %w", q.Entity, err)
	}
	return n, nil
}

// FetchWindow implements store.WindowedStore.
func (s *Store[T]) FetchWindow(ctx context.Context, q store.Query, offset, limit int) ([]T, error) {
	query, args, err := s.selectQuery(q, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

// selectQuery builds the SELECT for q. limit < 0 means no LIMIT clause.
func (s *Store[T]) selectQuery(q store.Query, limit, offset int) (string, []any, error) {
	if q.Entity == "" {
		return "", nil, store.ErrEntityRequired
	}
	if !s.Supports(q.Entity) {
		return "", nil, fmt.Errorf("%w: %q", store.ErrUnknownEntity, q.Entity)
	}

	where, args, err := whereClause(q.Filter)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(q.Entity)
	b.WriteString(where)
	b.WriteString(" ORDER BY ")
	b.WriteString(s.orderBy)
	if limit >= 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, offset)
	}
	return s.db.Rebind(b.String()), args, nil
}

func (s *Store[T]) query(ctx context.Context, query string, args []any) ([]T, error) {
	s.logger.Debug().Str("query", query).Int("args", len(args)).Msg("select")

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, scanErr := s.scan(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning row: %w", scanErr)
		}
		out = append(out, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// whereClause translates a filter into " WHERE ..." with '?' bind parameters.
func whereClause(f *store.Filter) (string, []any, error) {
	if f.Empty() {
		return "", nil, nil
	}

	parts := make([]string, 0, len(f.Conditions))
	args := make([]any, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		if !identifierPattern.MatchString(c.Field) {
			return "", nil, fmt.Errorf("%w: filter field %q", ErrInvalidIdentifier, c.Field)
		}
		switch c.Op {
		case store.OpEq, store.OpNe, store.OpLt, store.OpLe, store.OpGt, store.OpGe:
			op := string(c.Op)
			if c.Op == store.OpNe {
				op = "<>"
			}
			parts = append(parts, c.Field+" "+op+" ?")
			args = append(args, c.Value)
		case store.OpContains:
			parts = append(parts, c.Field+" LIKE ?")
			args = append(args, fmt.Sprintf("%%%v%%", c.Value))
		default:
			return "", nil, fmt.Errorf("%w: operator %q", store.ErrInvalidFilter, c.Op)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func scanStruct[T any](rows *sqlx.Rows) (T, error) {
	var rec T
	err := rows.StructScan(&rec)
	return rec, err
}

func scanMap(rows *sqlx.Rows) (map[string]any, error) {
	rec := make(map[string]any)
	if err := rows.MapScan(rec); err != nil {
		return nil, err
	}
	for k, v := range rec {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
		}
	}
	return rec, nil
}
