package domain

import (
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/zerr"
)

// Node is a normalized configuration mapping as declared in an element file.
type Node map[string]any

// Keys returns the keys of the node in sorted order.
func (n Node) Keys() []string {
	return slices.Sorted(maps.Keys(n))
}

// ValidateKeys fails with ErrInvalidConfig if the node holds a key outside allowed.
func (n Node) ValidateKeys(allowed ...string) error {
	for _, k := range n.Keys() {
		if !slices.Contains(allowed, k) {
			err := zerr.With(zerr.Wrap(ErrInvalidConfig, "unexpected key"), "key", k)
			return zerr.With(err, "allowed", allowed)
		}
	}
	return nil
}

// String returns the string at key, or def if absent.
func (n Node) String(key, def string) (string, error) {
	v, ok := n[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(key, "string", v)
	}
	return s, nil
}

// Bool returns the boolean at key, or def if absent.
func (n Node) Bool(key string, def bool) (bool, error) {
	v, ok := n[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeError(key, "boolean", v)
	}
	return b, nil
}

// StringList returns the list of strings at key, or nil if absent.
func (n Node) StringList(key string) ([]string, error) {
	v, ok := n[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		if s, isStrings := v.([]string); isStrings {
			return slices.Clone(s), nil
		}
		return nil, typeError(key, "list", v)
	}
	res := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, typeError(key, "list of strings", v)
		}
		res = append(res, s)
	}
	return res, nil
}

// NodeList returns the list of mappings at key, or nil if absent.
func (n Node) NodeList(key string) ([]Node, error) {
	v, ok := n[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, typeError(key, "list", v)
	}
	res := make([]Node, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, typeError(key, "list of mappings", v)
		}
		res = append(res, Node(m))
	}
	return res, nil
}

func typeError(key, want string, got any) error {
	err := zerr.With(zerr.Wrap(ErrInvalidConfig, "expected "+want), "key", key)
	return zerr.With(err, "got", fmt.Sprintf("%T", got))
}
