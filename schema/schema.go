// Package schema describes the settings of a Control-M/Agent: their types,
// defaults, constraints and where each one is persisted.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the value type of a configuration key.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Location is the abstract handle of a persisted value: a path relative to
// the agent's configuration root and a value name.
type Location struct {
	Path string
	Name string
}

// String returns the location as `path\name`, or just the name when the
// value lives at the product root.
func (l Location) String() string {
	if l.Path == "" {
		return l.Name
	}
	return l.Path + `\` + l.Name
}

// Key is one schema entry.
type Key struct {
	Name        string
	Kind        Kind
	Description string
	Location    Location

	// Default is the documented default. DefaultFunc, when set, takes
	// precedence for defaults that depend on the host.
	Default     interface{}
	DefaultFunc func() interface{}

	// Min and Max bound KindInt values, inclusive.
	Min, Max int
	// Choices lists the canonical spellings accepted by KindEnum.
	Choices []string
	// MaxLength bounds KindString values in characters, zero meaning unbounded.
	MaxLength int
	// ListSeparator lets a KindString key accept a list, joined with it.
	ListSeparator string

	// ReadOnly keys describe the installation and cannot be applied.
	ReadOnly bool
	// RequiresRestart keys only take effect after the agent service restarts.
	RequiresRestart bool
}

// DefaultValue returns the key's default.
func (k Key) DefaultValue() interface{} {
	if k.DefaultFunc != nil {
		return k.DefaultFunc()
	}
	return k.Default
}

// Constraint describes the accepted values of the key in words.
func (k Key) Constraint() string {
	switch k.Kind {
	case KindInt:
		return fmt.Sprintf("integer in range %d-%d", k.Min, k.Max)
	case KindBool:
		return "boolean (yes/no, true/false)"
	case KindEnum:
		quoted := make([]string, len(k.Choices))
		for i, c := range k.Choices {
			quoted[i] = strconv.Quote(c)
		}
		return "one of " + strings.Join(quoted, ", ")
	default:
		if k.MaxLength > 0 {
			return fmt.Sprintf("string of at most %d characters", k.MaxLength)
		}
		return "string"
	}
}

// Schema is the set of recognized configuration keys.
type Schema struct {
	keys  []Key
	index map[string]int
}

// New builds a schema from keys. Names must be unique and every static
// default must satisfy its own key's constraints.
func New(keys []Key) (*Schema, error) {
	s := &Schema{
		keys:  make([]Key, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	copy(s.keys, keys)
	for i, k := range s.keys {
		if k.Name == "" {
			return nil, fmt.Errorf("key %d has no name", i)
		}
		if _, dup := s.index[k.Name]; dup {
			return nil, fmt.Errorf("duplicate key %q", k.Name)
		}
		if k.Location.Name == "" {
			return nil, fmt.Errorf("key %q has no storage location", k.Name)
		}
		if k.DefaultFunc == nil {
			if _, err := k.convert(k.Default); err != nil {
				return nil, fmt.Errorf("key %q has an invalid default: %w", k.Name, err)
			}
		}
		s.index[k.Name] = i
	}
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(keys []Key) *Schema {
	s, err := New(keys)
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns every key in table order.
func (s *Schema) Keys() []Key {
	out := make([]Key, len(s.keys))
	copy(out, s.keys)
	return out
}

// Settable returns the keys that can be applied.
func (s *Schema) Settable() []Key {
	out := make([]Key, 0, len(s.keys))
	for _, k := range s.keys {
		if !k.ReadOnly {
			out = append(out, k)
		}
	}
	return out
}

// Lookup returns the key with the given name.
func (s *Schema) Lookup(name string) (Key, bool) {
	i, ok := s.index[name]
	if !ok {
		return Key{}, false
	}
	return s.keys[i], true
}

// Has reports whether name is a schema key.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Validate converts raw into the typed value of the named key and checks its
// constraints. Booleans accept Yes/No style strings and come back as bool.
func (s *Schema) Validate(name string, raw interface{}) (interface{}, error) {
	k, ok := s.Lookup(name)
	if !ok {
		return nil, &ValidationError{Key: name, Value: raw, Constraint: "unknown configuration key"}
	}
	if k.ReadOnly {
		return nil, &ValidationError{Key: name, Value: raw, Constraint: "read-only key"}
	}
	return k.convert(raw)
}

// DefaultFor returns the documented default of the named key.
func (s *Schema) DefaultFor(name string) (interface{}, error) {
	k, ok := s.Lookup(name)
	if !ok {
		return nil, &ValidationError{Key: name, Constraint: "unknown configuration key"}
	}
	return k.DefaultValue(), nil
}

// Encode renders a typed value in its stored string form.
func (s *Schema) Encode(name string, value interface{}) (string, error) {
	k, ok := s.Lookup(name)
	if !ok {
		return "", &ValidationError{Key: name, Value: value, Constraint: "unknown configuration key"}
	}
	typed, err := k.convert(value)
	if err != nil {
		return "", err
	}
	switch v := typed.(type) {
	case int:
		return strconv.Itoa(v), nil
	case bool:
		if v {
			return "Y", nil
		}
		return "N", nil
	default:
		return typed.(string), nil
	}
}

// Decode parses a stored string into the typed value of the named key.
// Read-only keys are decoded too.
func (s *Schema) Decode(name, stored string) (interface{}, error) {
	k, ok := s.Lookup(name)
	if !ok {
		return nil, &ValidationError{Key: name, Value: stored, Constraint: "unknown configuration key"}
	}
	return k.convert(stored)
}
