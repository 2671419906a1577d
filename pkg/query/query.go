// Package query defines the backend-neutral description of a single data operation.
// Descriptor is built by the caller per request, validated with Validate and normalized with Split
// before the dispatcher hands it over to a storage handler.
package query

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is an operation kind
type Kind string

// enum of supported operation kinds
const (
	KindSelect Kind = "select"
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// ParseKind converts string to Kind, case-insensitive. Unknown kinds are returned as is,
// the dispatcher rejects them as unsupported.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// Descriptor describes one requested operation. Immutable by convention, consumed once.
type Descriptor struct {
	Table       string   `yaml:"table"`
	Kind        Kind     `yaml:"kind"`
	Filters     Filters  `yaml:"where"`
	ReadColumns []string `yaml:"columns"`  // empty means all columns
	Extension   string   `yaml:"extension"` // raw trailing sql fragment, appended verbatim
}

// String returns short description, used in logs
func (d Descriptor) String() string {
	return fmt.Sprintf("%s %s, filters: %d, columns: %v", d.Kind, d.Table, len(d.Filters), d.ReadColumns)
}

// Field is a single key/value filter entry
type Field struct {
	Key   string
	Value any
}

// Filters is an ordered mapping of column names to values. Order is the insertion order.
type Filters []Field

// F makes Filters from alternating key/value arguments, i.e. F("name", "a", "age", 3).
// Non-string keys are formatted with %v, a trailing key without value gets nil.
func F(kv ...any) Filters {
	res := make(Filters, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		var val any
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		res = append(res, Field{Key: key, Value: val})
	}
	return res
}

// Get returns the value of the first entry with the given key
func (f Filters) Get(key string) (any, bool) {
	for _, fld := range f {
		if fld.Key == key {
			return fld.Value, true
		}
	}
	return nil, false
}

// Keys returns keys in order
func (f Filters) Keys() []string {
	res := make([]string, 0, len(f))
	for _, fld := range f {
		res = append(res, fld.Key)
	}
	return res
}

// Values returns values in order
func (f Filters) Values() []any {
	res := make([]any, 0, len(f))
	for _, fld := range f {
		res = append(res, fld.Value)
	}
	return res
}

// Map returns filters as a regular map, order is lost
func (f Filters) Map() map[string]any {
	res := make(map[string]any, len(f))
	for _, fld := range f {
		if _, ok := res[fld.Key]; !ok {
			res[fld.Key] = fld.Value
		}
	}
	return res
}

// UnmarshalYAML decodes a yaml mapping keeping the order of keys
func (f *Filters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*f = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: filters should be a mapping", node.Line)
	}
	res := make(Filters, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var val any
		if err := node.Content[i+1].Decode(&val); err != nil {
			return fmt.Errorf("can't decode value of %q: %w", node.Content[i].Value, err)
		}
		res = append(res, Field{Key: node.Content[i].Value, Value: val})
	}
	*f = res
	return nil
}

// ErrMissingTable and ErrMissingKind are validation failures
var (
	ErrMissingTable = errors.New("table is required")
	ErrMissingKind  = errors.New("operation kind is required")
)

// ValidationError reports descriptor which can't be dispatched
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string { return "invalid query: " + e.Reason.Error() }

// Unwrap returns the reason, one of ErrMissingTable or ErrMissingKind
func (e *ValidationError) Unwrap() error { return e.Reason }

// Validate checks descriptor has a table and an operation kind. It doesn't check the table exists,
// this is the handler's concern.
func Validate(d Descriptor) error {
	if d.Table == "" {
		return &ValidationError{Reason: ErrMissingTable}
	}
	if d.Kind == "" {
		return &ValidationError{Reason: ErrMissingKind}
	}
	return nil
}
