package paginator

import (
	"fmt"
	"strings"
)

// Kind identifies how and where a source fetches its records.
type Kind int

// Source kinds. KindDefault is the zero value and is never resolvable.
const (
	KindDefault Kind = iota
	KindInMemory
	KindStore
	KindRemoteURL
	KindRemoteJSON
)

//nolint:gochecknoglobals // Lookup table for Kind names.
var kindNames = map[Kind]string{
	KindDefault:    "default",
	KindInMemory:   "in_memory",
	KindStore:      "store",
	KindRemoteURL:  "remote_url",
	KindRemoteJSON: "remote_json",
}

// String returns the config/log name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether the kind is one the controller can dispatch.
func (k Kind) Valid() bool {
	switch k {
	case KindInMemory, KindStore, KindRemoteURL, KindRemoteJSON:
		return true
	case KindDefault:
		return false
	default:
		return false
	}
}

// ParseKind converts a kind name such as "store" or "remote-url" into a Kind.
// Dashes and underscores are interchangeable and matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch norm {
	case "in_memory", "memory", "array":
		return KindInMemory, nil
	case "store":
		return KindStore, nil
	case "remote_url", "url":
		return KindRemoteURL, nil
	case "remote_json", "json":
		return KindRemoteJSON, nil
	}
	return KindDefault, fmt.Errorf("%w: %q", ErrUnsupportedSourceKind, s)
}

// Status is the controller's position in the per-page state machine.
type Status int

// Controller statuses.
const (
	StatusNone Status = iota
	StatusInProgress
	StatusDone
)

// String returns a lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusInProgress:
		return "in_progress"
	case StatusDone:
		return "done"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so snapshots render readable names.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
