// Package config loads and saves the paginator CLI configuration: paging
// defaults, output and logging preferences, and named source definitions.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/michaelvu812/mvpaginator/pkg/paginator"
)

// Schema versions.
const (
	// CurrentSchemaVersion is written by Save and config init.
	CurrentSchemaVersion = "1.0.0"

	// supportedSchema is the range of schema versions this build can read.
	supportedSchema = ">= 1.0.0, < 2.0.0"

	configFileName = "config.yaml"
	outputTypeFile = "file"
)

// Defaults.
const (
	DefaultPageSize     = 10
	DefaultOutputFormat = "table"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// Environment variable names.
const (
	EnvHome       = "PAGINATOR_HOME"
	EnvProjectDir = "PAGINATOR_PROJECT_DIR"
	EnvLogLevel   = "PAGINATOR_LOG_LEVEL"
	EnvLogFormat  = "PAGINATOR_LOG_FORMAT"
	EnvPageSize   = "PAGINATOR_PAGE_SIZE"
)

// Configuration errors.
var (
	ErrUnsupportedSchema = errors.New("unsupported config schema version")
	ErrInvalidPageSize   = errors.New("page size must be >= 0")
	ErrInvalidMaxPages   = errors.New("max pages must be >= 0")
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidSource     = errors.New("invalid source definition")
	ErrUnknownSource     = errors.New("unknown source")
)

// validFormats lists the accepted output formats.
//
//nolint:gochecknoglobals // Lookup table.
var validFormats = map[string]bool{"table": true, "json": true, "yaml": true}

// validLevels lists the accepted log levels.
//
//nolint:gochecknoglobals // Lookup table.
var validLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "disabled": true,
}

// Config is the root of config.yaml.
type Config struct {
	SchemaVersion string                  `yaml:"schema_version" json:"schema_version"`
	Paging        PagingConfig            `yaml:"paging"         json:"paging"`
	Output        OutputConfig            `yaml:"output"         json:"output"`
	Logging       LoggingConfig           `yaml:"logging"        json:"logging"`
	Sources       map[string]SourceConfig `yaml:"sources"        json:"sources,omitempty"`

	configPath string
}

// PagingConfig holds paging defaults.
type PagingConfig struct {
	PageSize int `yaml:"page_size" json:"page_size"`
	MaxPages int `yaml:"max_pages" json:"max_pages"`
}

// OutputConfig holds output preferences.
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
}

// LoggingConfig holds logging preferences.
type LoggingConfig struct {
	Level  string `yaml:"level"          json:"level"`
	Format string `yaml:"format"         json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// SourceConfig defines a named record source.
//
// Kind selects the source: in_memory reads Path; store uses Backend
// (sqlite, postgres, redis or file) with DSN/Path, Entity and Where;
// remote_url and remote_json fetch URL.
type SourceConfig struct {
	Kind     string `yaml:"kind"                json:"kind"`
	PageSize int    `yaml:"page_size,omitempty" json:"page_size,omitempty"`

	Path    string `yaml:"path,omitempty"     json:"path,omitempty"`
	Backend string `yaml:"backend,omitempty"  json:"backend,omitempty"`
	DSN     string `yaml:"dsn,omitempty"      json:"dsn,omitempty"`
	Entity  string `yaml:"entity,omitempty"   json:"entity,omitempty"`
	Where   string `yaml:"where,omitempty"    json:"where,omitempty"`
	OrderBy string `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	Prefix  string `yaml:"prefix,omitempty"   json:"prefix,omitempty"`

	URL        string            `yaml:"url,omitempty"         json:"url,omitempty"`
	ItemsPath  string            `yaml:"items_path,omitempty"  json:"items_path,omitempty"`
	PageParam  string            `yaml:"page_param,omitempty"  json:"page_param,omitempty"`
	SizeParam  string            `yaml:"size_param,omitempty"  json:"size_param,omitempty"`
	ItemsField string            `yaml:"items_field,omitempty" json:"items_field,omitempty"`
	TotalField string            `yaml:"total_field,omitempty" json:"total_field,omitempty"`
	Headers    map[string]string `yaml:"headers,omitempty"     json:"headers,omitempty"`
	RateLimit  float64           `yaml:"rate_limit,omitempty"  json:"rate_limit,omitempty"`
	Burst      int               `yaml:"burst,omitempty"       json:"burst,omitempty"`
	MaxFails   uint32            `yaml:"max_failures,omitempty" json:"max_failures,omitempty"`
}

// Defaults returns a Config holding only default values.
func Defaults() *Config {
	return &Config{
		SchemaVersion: CurrentSchemaVersion,
		Paging:        PagingConfig{PageSize: DefaultPageSize},
		Output:        OutputConfig{Format: DefaultOutputFormat},
		Logging:       LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Sources:       map[string]SourceConfig{},
	}
}

// New returns the configuration at the default path (~/.paginator/config.yaml)
// with environment overrides applied. A missing file yields the defaults; an
// unreadable or malformed one is logged and also yields the defaults.
func New() *Config {
	cfg := Defaults()
	dir, err := GetConfigDir()
	if err != nil {
		cfg.applyEnv()
		return cfg
	}

	path := filepath.Join(dir, configFileName)
	cfg.configPath = path
	if err = cfg.loadFile(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().
				Str("component", "config").
				Str("operation", "load_global_config").
				Err(err).
				Str("config_path", path).
				Msg("ignoring invalid config file, using defaults")
		}
		// A failed decode may have filled part of cfg.
		cfg = Defaults()
		cfg.configPath = path
	}
	cfg.applyEnv()
	return cfg
}

// Load reads the configuration at path and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	cfg.configPath = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if c.Sources == nil {
		c.Sources = map[string]SourceConfig{}
	}
	return nil
}

// applyEnv applies PAGINATOR_* overrides. Malformed values are ignored.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Paging.PageSize = n
		}
	}
}

// ConfigPath returns the file the config was loaded from or will be saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the config as YAML to ConfigPath.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path not set")
	}
	if c.SchemaVersion == "" {
		c.SchemaVersion = CurrentSchemaVersion
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// Validate checks the schema version and every section.
func (c *Config) Validate() error {
	if err := CheckSchemaVersion(c.SchemaVersion); err != nil {
		return err
	}
	if c.Paging.PageSize < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.Paging.PageSize)
	}
	if c.Paging.MaxPages < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxPages, c.Paging.MaxPages)
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("%w: %q (want table, json or yaml)", ErrInvalidFormat, c.Output.Format)
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	for _, name := range c.SourceNames() {
		if err := c.Sources[name].Validate(); err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
	}
	return nil
}

// CheckSchemaVersion reports whether v can be read by this build. An empty
// version is treated as CurrentSchemaVersion.
func CheckSchemaVersion(v string) error {
	if v == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedSchema, v, err)
	}
	constraint, err := semver.NewConstraint(supportedSchema)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}
	if !constraint.Check(ver) {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedSchema, ver, supportedSchema)
	}
	return nil
}

// SourceNames returns the configured source names in sorted order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the named source definition.
func (c *Config) Source(name string) (SourceConfig, error) {
	sc, ok := c.Sources[name]
	if !ok {
		return SourceConfig{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return sc, nil
}

// EffectivePageSize returns the page size for sc: its own, else the
// configured default, else DefaultPageSize.
func (c *Config) EffectivePageSize(sc SourceConfig) int {
	switch {
	case sc.PageSize > 0:
		return sc.PageSize
	case c.Paging.PageSize > 0:
		return c.Paging.PageSize
	default:
		return DefaultPageSize
	}
}

// Validate checks that sc has the fields its kind needs.
func (sc SourceConfig) Validate() error {
	if sc.PageSize < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, sc.PageSize)
	}
	kind, err := paginator.ParseKind(sc.Kind)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	switch kind {
	case paginator.KindInMemory:
		if sc.Path == "" {
			return fmt.Errorf("%w: %s needs path", ErrInvalidSource, kind)
		}
	case paginator.KindStore:
		return sc.validateStore()
	case paginator.KindRemoteURL, paginator.KindRemoteJSON:
		if sc.URL == "" {
			return fmt.Errorf("%w: %s needs url", ErrInvalidSource, kind)
		}
	default:
		return fmt.Errorf("%w: unsupported kind %q", ErrInvalidSource, sc.Kind)
	}
	return nil
}

func (sc SourceConfig) validateStore() error {
	if sc.Entity == "" {
		return fmt.Errorf("%w: store needs entity", ErrInvalidSource)
	}
	switch sc.Backend {
	case "sqlite", "postgres", "redis":
		if sc.DSN == "" {
			return fmt.Errorf("%w: %s backend needs dsn", ErrInvalidSource, sc.Backend)
		}
		// Postgres has no implicit row order to page by.
		if sc.Backend == "postgres" && sc.OrderBy == "" {
			return fmt.Errorf("%w: postgres backend needs order_by", ErrInvalidSource)
		}
	case "file":
		if sc.Path == "" {
			return fmt.Errorf("%w: file backend needs path", ErrInvalidSource)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidSource, sc.Backend)
	}
	return nil
}
