// Package sources turns source definitions from the config file or the
// command line into paginator sources over record.Record.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/michaelvu812/mvpaginator/internal/config"
	"github.com/michaelvu812/mvpaginator/internal/logging"
	"github.com/michaelvu812/mvpaginator/internal/record"
	"github.com/michaelvu812/mvpaginator/pkg/paginator"
	"github.com/michaelvu812/mvpaginator/pkg/paginator/remote"
	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
	"github.com/michaelvu812/mvpaginator/pkg/paginator/store/redisstore"
	"github.com/michaelvu812/mvpaginator/pkg/paginator/store/sqlstore"
)

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendFile     = "file"
)

// ErrNoSource is returned when neither a name nor ad-hoc flags select a source.
var ErrNoSource = errors.New("no source selected")

// Opened is a built source together with the resources it holds.
type Opened struct {
	Name   string
	Source paginator.Source[record.Record]
	closer io.Closer
}

// Close releases database connections or clients held by the source.
func (o *Opened) Close() error {
	if o == nil || o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// Open validates sc and builds its source. The logger in ctx is passed to the
// stores and HTTP clients it creates.
func Open(ctx context.Context, name string, sc config.SourceConfig) (*Opened, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("source %q: %w", name, err)
	}
	kind, err := paginator.ParseKind(sc.Kind)
	if err != nil {
		return nil, err
	}

	log := logging.ComponentLogger(*logging.FromContext(ctx), "sources")
	log.Debug().Str("source", name).Str("kind", kind.String()).Str("backend", sc.Backend).Msg("opening source")

	opened := &Opened{Name: name}
	switch kind {
	case paginator.KindInMemory:
		recs, loadErr := record.LoadFile(ctx, sc.Path)
		if loadErr != nil {
			return nil, loadErr
		}
		opened.Source = paginator.NewSliceSource(recs)
	case paginator.KindStore:
		err = openStore(ctx, log, sc, opened)
	case paginator.KindRemoteURL:
		opened.Source, err = remote.NewURLSource[record.Record](newClient(name, sc, log), sc.URL, urlOptions(sc)...)
	case paginator.KindRemoteJSON:
		opened.Source, err = remote.NewJSONSource[record.Record](newClient(name, sc, log), sc.URL, sc.ItemsPath)
	default:
		err = fmt.Errorf("%w: %s", paginator.ErrUnsupportedSourceKind, kind)
	}
	if err != nil {
		_ = opened.Close()
		return nil, err
	}
	return opened, nil
}

func openStore(ctx context.Context, log zerolog.Logger, sc config.SourceConfig, opened *Opened) error {
	filter, err := store.ParseFilter(sc.Where)
	if err != nil {
		return err
	}

	var s store.Store[record.Record]
	switch sc.Backend {
	case BackendSQLite, BackendPostgres:
		driver := sqlstore.DriverSQLite
		if sc.Backend == BackendPostgres {
			driver = sqlstore.DriverPostgres
		}
		db, openErr := sqlstore.Open(ctx, driver, sc.DSN)
		if openErr != nil {
			return openErr
		}
		opened.closer = db
		s, err = sqlstore.NewMap(db, sqlstore.WithOrderBy(sc.OrderBy), sqlstore.WithLogger(log))
		if err != nil {
			return err
		}
	case BackendRedis:
		opts, parseErr := redis.ParseURL(sc.DSN)
		if parseErr != nil {
			return fmt.Errorf("parsing redis dsn: %w", parseErr)
		}
		client := redis.NewClient(opts)
		opened.closer = client
		ropts := []redisstore.Option{redisstore.WithLogger(log)}
		if sc.Prefix != "" {
			ropts = append(ropts, redisstore.WithPrefix(sc.Prefix))
		}
		s = redisstore.New[record.Record](client, ropts...)
	case BackendFile:
		mem, loadErr := record.NewFileStore(ctx, sc.Path)
		if loadErr != nil {
			return loadErr
		}
		s = mem
	default:
		return fmt.Errorf("%w: unknown backend %q", config.ErrInvalidSource, sc.Backend)
	}

	opened.Source = paginator.NewStoreSource(s, sc.Entity, filter)
	return nil
}

func newClient(name string, sc config.SourceConfig, log zerolog.Logger) *remote.Client {
	opts := []remote.ClientOption{remote.WithLogger(log)}
	for k, v := range sc.Headers {
		opts = append(opts, remote.WithHeader(k, v))
	}
	if sc.RateLimit > 0 {
		opts = append(opts, remote.WithRateLimit(sc.RateLimit, sc.Burst))
	}
	if sc.MaxFails > 0 {
		opts = append(opts, remote.WithCircuitBreaker(name, sc.MaxFails))
	}
	return remote.NewClient(opts...)
}

func urlOptions(sc config.SourceConfig) []remote.URLOption {
	var opts []remote.URLOption
	if sc.PageParam != "" {
		opts = append(opts, remote.WithPageParam(sc.PageParam))
	}
	if sc.SizeParam != "" {
		opts = append(opts, remote.WithSizeParam(sc.SizeParam))
	}
	if sc.ItemsField != "" {
		opts = append(opts, remote.WithItemsField(sc.ItemsField))
	}
	if sc.TotalField != "" {
		opts = append(opts, remote.WithTotalField(sc.TotalField))
	}
	return opts
}

// Flags is the ad-hoc source selection shared by the page and browse commands.
type Flags struct {
	File      string
	SQLite    string
	Postgres  string
	Redis     string
	URL       string
	JSONURL   string
	Entity    string
	Where     string
	OrderBy   string
	ItemsPath string
}

// FromFlags builds a source definition from ad-hoc flags. ok is false when no
// source flag was set. A --file with --entity is a file store; without it the
// file is an in-memory record list.
func (f Flags) FromFlags() (config.SourceConfig, bool, error) {
	set := 0
	for _, v := range []string{f.File, f.SQLite, f.Postgres, f.Redis, f.URL, f.JSONURL} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return config.SourceConfig{}, false, nil
	case set > 1:
		return config.SourceConfig{}, false, errors.New(
			"--file, --sqlite, --postgres, --redis, --url and --json-url are mutually exclusive")
	}

	sc := config.SourceConfig{Entity: f.Entity, Where: f.Where, OrderBy: f.OrderBy}
	switch {
	case f.File != "" && f.Entity == "":
		sc.Kind, sc.Path = paginator.KindInMemory.String(), f.File
	case f.File != "":
		sc.Kind, sc.Backend, sc.Path = paginator.KindStore.String(), BackendFile, f.File
	case f.SQLite != "":
		sc.Kind, sc.Backend, sc.DSN = paginator.KindStore.String(), BackendSQLite, f.SQLite
	case f.Postgres != "":
		sc.Kind, sc.Backend, sc.DSN = paginator.KindStore.String(), BackendPostgres, f.Postgres
	case f.Redis != "":
		sc.Kind, sc.Backend, sc.DSN = paginator.KindStore.String(), BackendRedis, f.Redis
	case f.URL != "":
		sc.Kind, sc.URL = paginator.KindRemoteURL.String(), f.URL
	default:
		sc.Kind, sc.URL, sc.ItemsPath = paginator.KindRemoteJSON.String(), f.JSONURL, f.ItemsPath
	}
	return sc, true, nil
}

// Resolve picks the source definition for a command: the named config source
// when name is set, else the ad-hoc flags.
func Resolve(cfg *config.Config, name string, f Flags) (string, config.SourceConfig, error) {
	adhoc, ok, err := f.FromFlags()
	if err != nil {
		return "", config.SourceConfig{}, err
	}
	if name != "" {
		if ok {
			return "", config.SourceConfig{}, fmt.Errorf("source %q given together with ad-hoc source flags", name)
		}
		sc, srcErr := cfg.Source(name)
		return name, sc, srcErr
	}
	if !ok {
		names := cfg.SourceNames()
		hint := "use --file, --sqlite, --postgres, --redis, --url or --json-url"
		if len(names) > 0 {
			hint = "configured sources: " + strings.Join(names, ", ")
		}
		return "", config.SourceConfig{}, fmt.Errorf("%w: %s", ErrNoSource, hint)
	}
	return "adhoc", adhoc, nil
}
