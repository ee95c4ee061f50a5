package domain

import (
	"fmt"
	"reflect"
	"strings"

	"go.trai.ch/zerr"
)

// enumSet is the closed value set of a string enumeration together with its
// reverse lookup table. It is built once at package initialization.
type enumSet[T ~string] struct {
	name   string
	values []T
	lookup map[string]T
}

func newEnumSet[T ~string](name string, values ...T) *enumSet[T] {
	lookup := make(map[string]T, len(values))
	for _, v := range values {
		if _, dup := lookup[string(v)]; dup {
			panic(fmt.Sprintf("enum %s: duplicate value %q", name, v))
		}
		lookup[string(v)] = v
	}
	return &enumSet[T]{name: name, values: values, lookup: lookup}
}

// parse resolves a wire value to its variant.
func (s *enumSet[T]) parse(value string) (T, error) {
	if v, ok := s.lookup[value]; ok {
		return v, nil
	}
	var zero T
	err := zerr.With(zerr.Wrap(ErrInvalidEnumValue, s.name), "value", value)
	return zero, zerr.With(err, "allowed", s.String())
}

// String lists the allowed values, e.g. "error, warning, ignore".
func (s *enumSet[T]) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// SameEnum reports whether a and b are the same variant of the same
// enumeration. Comparing variants of different enumerations panics; statically
// typed code gets the same guarantee from the compiler.
func SameEnum(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		panic(fmt.Sprintf("domain: comparing enum %v with %v", ta, tb))
	}
	return a == b
}
