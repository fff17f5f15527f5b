// Package reading parses loader content into an agnostic raw tree plus a
// locator that maps every node back to (source, line, column).
//
// A raw value is one of: nil, bool, int, float64, string, []any, or
// *collections.OrderedMap with string keys. Mappings preserve the insertion
// order of the source document.
package reading

import (
	"github.com/duyamin/aria-ng/internal/collections"
)

// Document is the output of a reader: the raw tree and its locator.
type Document struct {
	Raw     any
	Locator *Locator
}

// AsMap returns v as an ordered map, or nil when it is not a mapping.
func AsMap(v any) *collections.OrderedMap {
	m, _ := v.(*collections.OrderedMap)
	return m
}

// AsList returns v as a sequence, or nil when it is not one.
func AsList(v any) []any {
	l, _ := v.([]any)
	return l
}

// AsString returns v as a string, with ok reporting success.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// CloneRaw deep-copies a raw tree. Scalars are shared; containers are
// duplicated so the clone can be mutated independently.
func CloneRaw(v any) any {
	switch t := v.(type) {
	case *collections.OrderedMap:
		c := collections.NewOrderedMap()
		t.Each(func(key string, value any) bool {
			c.Set(key, CloneRaw(value))
			return true
		})
		return c
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = CloneRaw(e)
		}
		return c
	default:
		return v
	}
}

// EqualRaw compares two raw trees for structural equality by content.
// Mappings match when they hold the same keys with equal values; key
// order is not compared. Sequences compare element by element.
func EqualRaw(a, b any) bool {
	switch x := a.(type) {
	case *collections.OrderedMap:
		y := AsMap(b)
		if y == nil || x.Len() != y.Len() {
			return false
		}
		equal := true
		x.Each(func(key string, value any) bool {
			other, ok := y.Get(key)
			if !ok || !EqualRaw(value, other) {
				equal = false
				return false
			}
			return true
		})
		return equal
	case []any:
		y := AsList(b)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !EqualRaw(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Agnostic converts a raw tree into plain Go containers (map[string]any,
// []any) for JSON encoding and for consumers that do not care about order.
func Agnostic(v any) any {
	switch t := v.(type) {
	case *collections.OrderedMap:
		m := make(map[string]any, t.Len())
		t.Each(func(key string, value any) bool {
			m[key] = Agnostic(value)
			return true
		})
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = Agnostic(e)
		}
		return l
	default:
		return v
	}
}
