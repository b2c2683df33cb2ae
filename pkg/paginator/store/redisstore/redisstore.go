// Package redisstore keeps records as JSON documents in Redis lists, one list
// per entity, and serves them to store-backed paginator sources.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

// DefaultPrefix is prepended to entity names to build list keys.
const DefaultPrefix = "paginator"

// Store reads JSON records from Redis lists.
// Unfiltered windows map to LRANGE; filtered queries are evaluated in process.
type Store[T any] struct {
	client   redis.UniversalClient
	prefix   string
	entities map[string]bool
	logger   zerolog.Logger
}

// Option configures a Store.
type Option func(*config)

type config struct {
	prefix   string
	entities []string
	logger   zerolog.Logger
}

// WithPrefix sets the key prefix (default DefaultPrefix).
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// WithEntities restricts the store to the listed entities.
func WithEntities(names ...string) Option {
	return func(c *config) {
		c.entities = append(c.entities, names...)
	}
}

// WithLogger sets the logger for command diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// New creates a store over client.
func New[T any](client redis.UniversalClient, opts ...Option) *Store[T] {
	c := config{prefix: DefaultPrefix, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&c)
	}

	s := &Store[T]{
		client: client,
		prefix: c.prefix,
		logger: c.logger.With().Str("component", "redisstore").Logger(),
	}
	if len(c.entities) > 0 {
		s.entities = make(map[string]bool, len(c.entities))
		for _, name := range c.entities {
			s.entities[name] = true
		}
	}
	return s
}

// Key returns the list key holding entity.
func (s *Store[T]) Key(entity string) string {
	if s.prefix == "" {
		return entity
	}
	return s.prefix + ":" + entity
}

// Supports implements store.Store.
func (s *Store[T]) Supports(entity string) bool {
	if entity == "" {
		return false
	}
	if s.entities == nil {
		return true
	}
	return s.entities[entity]
}

// Append pushes records onto the tail of the entity's list.
func (s *Store[T]) Append(ctx context.Context, entity string, records ...T) error {
	if entity == "" {
		return store.ErrEntityRequired
	}
	if len(records) == 0 {
		return nil
	}

	values := make([]any, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
		values = append(values, b)
	}
	if err := s.client.RPush(ctx, s.Key(entity), values...).Err(); err != nil {
		return fmt.Errorf("appending to %s: %w", s.Key(entity), err)
	}
	return nil
}

// FetchAll implements store.Store.
func (s *Store[T]) FetchAll(ctx context.Context, q store.Query) ([]T, error) {
	raw, err := s.matching(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](raw)
}

// Count implements store.WindowedStore.
func (s *Store[T]) Count(ctx context.Context, q store.Query) (int, error) {
	if q.Filter.Empty() {
		if err := s.check(q); err != nil {
			return 0, err
		}
		n, err := s.client.LLen(ctx, s.Key(q.Entity)).Result()
		if err != nil {
			return 0, fmt.Errorf("counting %s: %w", s.Key(q.Entity), err)
		}
		return int(n), nil
	}
	raw, err := s.matching(ctx, q)
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// FetchWindow implements store.WindowedStore.
func (s *Store[T]) FetchWindow(ctx context.Context, q store.Query, offset, limit int) ([]T, error) {
	if limit <= 0 {
		return []T{}, nil
	}
	if q.Filter.Empty() {
		if err := s.check(q); err != nil {
			return nil, err
		}
		key := s.Key(q.Entity)
		s.logger.Debug().Str("key", key).Int("offset", offset).Int("limit", limit).Msg("lrange")
		raw, err := s.client.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		return decodeAll[T](raw)
	}

	raw, err := s.matching(ctx, q)
	if err != nil {
		return nil, err
	}
	start := min(offset, len(raw))
	end := min(offset+limit, len(raw))
	return decodeAll[T](raw[start:end])
}

func (s *Store[T]) check(q store.Query) error {
	if q.Entity == "" {
		return store.ErrEntityRequired
	}
	if !s.Supports(q.Entity) {
		return fmt.Errorf("%w: %q", store.ErrUnknownEntity, q.Entity)
	}
	return nil
}

// matching returns the raw JSON of every record in the entity that passes
// the filter, in list order.
func (s *Store[T]) matching(ctx context.Context, q store.Query) ([]string, error) {
	if err := s.check(q); err != nil {
		return nil, err
	}

	key := s.Key(q.Entity)
	s.logger.Debug().Str("key", key).Str("filter", q.Filter.String()).Msg("lrange all")
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if q.Filter.Empty() {
		return raw, nil
	}

	out := make([]string, 0, len(raw))
	for i, doc := range raw {
		var m map[string]any
		if err = json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("decoding %s[%d]: %w", key, i, err)
		}
		if q.Filter.MatchMap(m) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func decodeAll[T any](raw []string) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, doc := range raw {
		var rec T
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
