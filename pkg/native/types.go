package native

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
)

// TypeMap maps element tags to node factories. It is immutable once built.
type TypeMap struct {
	factories map[string]Factory
}

// NewTypeMap validates entries and returns a TypeMap.
// Tags must be non-empty and free of whitespace and dots; factories must be non-nil.
func NewTypeMap(entries map[string]Factory) (*TypeMap, error) {
	m := &TypeMap{factories: make(map[string]Factory, len(entries))}
	for tag, f := range entries {
		if err := validateTag(tag); err != nil {
			return nil, verrors.New("E011").
				WithNode("", tag).
				WithDetail(err.Error()).
				Wrap(ErrInvalidTypeMap)
		}
		if f == nil {
			return nil, verrors.New("E011").
				WithNode("", tag).
				WithDetail(fmt.Sprintf("tag %q has a nil factory", tag)).
				Wrap(ErrInvalidTypeMap)
		}
		m.factories[tag] = f
	}
	return m, nil
}

// MustTypeMap is like NewTypeMap but panics on invalid entries.
func MustTypeMap(entries map[string]Factory) *TypeMap {
	m, err := NewTypeMap(entries)
	if err != nil {
		panic(err)
	}
	return m
}

func validateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("empty tag")
	}
	if strings.ContainsRune(tag, '.') {
		return fmt.Errorf("tag %q contains a dot", tag)
	}
	for _, r := range tag {
		if unicode.IsSpace(r) {
			return fmt.Errorf("tag %q contains whitespace", tag)
		}
	}
	return nil
}

// Lookup returns the factory registered for tag. A nil TypeMap has no entries.
func (m *TypeMap) Lookup(tag string) (Factory, bool) {
	if m == nil {
		return nil, false
	}
	f, ok := m.factories[tag]
	return f, ok
}

// Tags returns the registered tags, sorted.
func (m *TypeMap) Tags() []string {
	if m == nil {
		return nil
	}
	tags := make([]string, 0, len(m.factories))
	for tag := range m.factories {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered tags.
func (m *TypeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.factories)
}
