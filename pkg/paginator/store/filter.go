package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Op is a comparison operator in a filter condition.
type Op string

// Supported operators.
const (
	OpEq       Op = "="
	OpNe       Op = "!="
	OpLt       Op = "<"
	OpLe       Op = "<="
	OpGt       Op = ">"
	OpGe       Op = ">="
	OpContains Op = "~"
)

// Condition compares one field against a literal value.
type Condition struct {
	Field string `json:"field" yaml:"field"`
	Op    Op     `json:"op"    yaml:"op"`
	Value any    `json:"value" yaml:"value"`
}

// Filter is a conjunction of conditions. A nil or empty filter matches everything.
type Filter struct {
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// Where builds a single-condition filter.
func Where(field string, op Op, value any) *Filter {
	return &Filter{Conditions: []Condition{{Field: field, Op: op, Value: value}}}
}

// And returns a copy of f with another condition appended.
func (f *Filter) And(field string, op Op, value any) *Filter {
	out := &Filter{}
	if f != nil {
		out.Conditions = append(out.Conditions, f.Conditions...)
	}
	out.Conditions = append(out.Conditions, Condition{Field: field, Op: op, Value: value})
	return out
}

// Empty reports whether the filter has no conditions.
func (f *Filter) Empty() bool {
	return f == nil || len(f.Conditions) == 0
}

// String renders the filter in the syntax ParseFilter accepts.
func (f *Filter) String() string {
	if f.Empty() {
		return ""
	}
	parts := make([]string, 0, len(f.Conditions))
	for _, c := range f.Conditions {
		parts = append(parts, fmt.Sprintf("%s%s%v", c.Field, c.Op, c.Value))
	}
	return strings.Join(parts, ",")
}

// ParseFilter parses a comma-separated list of conditions such as
// "status=active,age>=21,name~ann". Values that look like integers, floats or
// booleans are typed accordingly; quoted values are always strings.
// An empty expression yields a nil filter.
func ParseFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil //nolint:nilnil // No filter is a valid result.
	}

	f := &Filter{}
	for _, raw := range strings.Split(expr, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		cond, err := parseCondition(raw)
		if err != nil {
			return nil, err
		}
		f.Conditions = append(f.Conditions, cond)
	}
	if len(f.Conditions) == 0 {
		return nil, nil //nolint:nilnil // Only separators: no filter.
	}
	return f, nil
}

func parseCondition(raw string) (Condition, error) {
	idx := strings.IndexAny(raw, "=!<>~")
	if idx <= 0 {
		return Condition{}, fmt.Errorf("%w: missing field or operator in %q", ErrInvalidFilter, raw)
	}

	op := Op(raw[idx : idx+1])
	if idx+1 < len(raw) {
		if two := Op(raw[idx : idx+2]); two == OpNe || two == OpLe || two == OpGe {
			op = two
		}
	}
	if op == "!" {
		return Condition{}, fmt.Errorf("%w: bare '!' in %q", ErrInvalidFilter, raw)
	}

	field := strings.TrimSpace(raw[:idx])
	value := strings.TrimSpace(raw[idx+len(op):])
	if field == "" {
		return Condition{}, fmt.Errorf("%w: empty field in %q", ErrInvalidFilter, raw)
	}
	return Condition{Field: field, Op: op, Value: parseLiteral(value)}, nil
}

func parseLiteral(s string) any {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		return fl
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// FieldGetter reads a named field from a record.
type FieldGetter func(field string) (any, bool)

// Match reports whether a record, read through get, satisfies every condition.
// A missing field only satisfies OpNe.
func (f *Filter) Match(get FieldGetter) bool {
	if f.Empty() {
		return true
	}
	for _, c := range f.Conditions {
		v, ok := get(c.Field)
		if !ok {
			if c.Op == OpNe {
				continue
			}
			return false
		}
		if !c.matches(v) {
			return false
		}
	}
	return true
}

// MatchMap is Match over a map record using dotted field paths.
func (f *Filter) MatchMap(m map[string]any) bool {
	return f.Match(func(field string) (any, bool) {
		return MapField(m, field)
	})
}

func (c Condition) matches(v any) bool {
	if c.Op == OpContains {
		return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(c.Value)))
	}
	cmp := compare(v, c.Value)
	switch c.Op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	case OpContains:
		return false
	}
	return false
}

// compare orders two loosely typed values: numerically when both read as
// numbers, false < true for booleans, and by string form otherwise.
func compare(a, b any) int {
	af, aok := number(a)
	bf, bok := number(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	ab, aIsBool := a.(bool)
	bb, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

//nolint:gocyclo // One branch per numeric kind.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// MapField reads a dotted path such as "owner.name" out of nested maps.
func MapField(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
