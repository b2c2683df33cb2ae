// Package record defines the schemaless record type the CLI pages through and
// loads record collections from JSON and YAML files.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/michaelvu812/mvpaginator/internal/logging"
	"github.com/michaelvu812/mvpaginator/pkg/paginator/store"
)

// Record is one row of any source, keyed by field name.
type Record = map[string]any

// ItemsKey is the key looked up when a document is an object rather than an
// array of records.
const ItemsKey = "items"

// Record loading errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNotRecords        = errors.New("document does not hold a list of records")
)

// Format is a record file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads a list of records from path. The document is either an
// array of objects or an object whose "items" key holds one.
func LoadFile(ctx context.Context, path string) ([]Record, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "record").
		Str("operation", "load_file").
		Str("path", path).
		Msg("loading records")

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	if m, ok := doc.(map[string]any); ok {
		inner, found := m[ItemsKey]
		if !found {
			return nil, fmt.Errorf("%w: %s has no %q key", ErrNotRecords, path, ItemsKey)
		}
		doc = inner
	}

	records, err := toRecords(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "record").
		Int("record_count", len(records)).
		Msg("records loaded")
	return records, nil
}

// LoadEntities reads a document mapping entity names to record lists, as
// used by the file store backend.
func LoadEntities(ctx context.Context, path string) (map[string][]Record, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must map entity names to record lists", ErrNotRecords, path)
	}

	out := make(map[string][]Record, len(m))
	for entity, v := range m {
		records, convErr := toRecords(v)
		if convErr != nil {
			return nil, fmt.Errorf("%s: entity %q: %w", path, entity, convErr)
		}
		out[entity] = records
	}

	logging.FromContext(ctx).Debug().
		Ctx(ctx).
		Str("component", "record").
		Str("path", path).
		Int("entity_count", len(out)).
		Msg("entities loaded")
	return out, nil
}

// NewFileStore loads path with LoadEntities into an in-memory store.
func NewFileStore(ctx context.Context, path string) (*store.Memory[Record], error) {
	entities, err := LoadEntities(ctx, path)
	if err != nil {
		return nil, err
	}
	mem := store.NewMapMemory()
	for entity, records := range entities {
		mem.Put(entity, records...)
	}
	return mem, nil
}

func readDocument(path string) (any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record file: %w", err)
	}

	var doc any
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func toRecords(v any) ([]Record, error) {
	if v == nil {
		return []Record{}, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotRecords, v)
	}
	out := make([]Record, 0, len(list))
	for i, item := range list {
		rec, isMap := item.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: item %d is %T", ErrNotRecords, i, item)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Columns returns the union of top-level keys in records, sorted, with "id"
// first when present.
func Columns(records []Record) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		if k != "id" {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	if seen["id"] {
		cols = append([]string{"id"}, cols...)
	}
	return cols
}

// Field formats the value at the dotted path for display. Missing values
// render as "".
func Field(r Record, path string) string {
	v, ok := store.MapField(r, path)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
