// Package datatypes implements the primitive and complex data type system:
// parsing, coercion, and constraint evaluation. Complex types deriving from
// a primitive inherit its parse rules; record types are mappings of named
// properties and may not declare constraints.
package datatypes

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/reading"
)

// Primitive type names.
const (
	TypeString    = "string"
	TypeInteger   = "integer"
	TypeFloat     = "float"
	TypeBoolean   = "boolean"
	TypeTimestamp = "timestamp"
	TypeNull      = "null"
	TypeVersion   = "version"
	TypeRange     = "range"
	TypeList      = "list"
	TypeMap       = "map"
	TypeScalarSize      = "scalar-unit.size"
	TypeScalarTime      = "scalar-unit.time"
	TypeScalarFrequency = "scalar-unit.frequency"
)

// IsPrimitive reports whether name is a built-in primitive type.
func IsPrimitive(name string) bool {
	switch name {
	case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeTimestamp,
		TypeNull, TypeVersion, TypeRange, TypeList, TypeMap,
		TypeScalarSize, TypeScalarTime, TypeScalarFrequency:
		return true
	}
	return false
}

// Coerce parses value as the named primitive type. The returned value is
// the canonical Go representation: string, int, float64, bool, time.Time,
// *Version, *Range, []any, *collections.OrderedMap, or float64 (scalar
// units, normalized to the base unit).
func Coerce(typeName string, value any) (any, error) {
	if value == nil {
		if typeName == TypeNull {
			return nil, nil
		}
		return nil, nil
	}
	switch typeName {
	case TypeString:
		switch v := value.(type) {
		case string:
			return v, nil
		case int:
			return strconv.Itoa(v), nil
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
		return nil, typeError(typeName, value)
	case TypeInteger:
		switch v := value.(type) {
		case int:
			return v, nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, typeError(typeName, value)
			}
			return n, nil
		}
		return nil, typeError(typeName, value)
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, typeError(typeName, value)
			}
			return f, nil
		}
		return nil, typeError(typeName, value)
	case TypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
			if err != nil {
				return nil, typeError(typeName, value)
			}
			return b, nil
		}
		return nil, typeError(typeName, value)
	case TypeTimestamp:
		s, ok := value.(string)
		if !ok {
			return nil, typeError(typeName, value)
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return ts, nil
			}
		}
		return nil, typeError(typeName, value)
	case TypeNull:
		return nil, typeError(typeName, value)
	case TypeVersion:
		return ParseVersion(value)
	case TypeRange:
		return ParseRange(value)
	case TypeList:
		if l := reading.AsList(value); l != nil {
			return l, nil
		}
		return nil, typeError(typeName, value)
	case TypeMap:
		if m := reading.AsMap(value); m != nil {
			return m, nil
		}
		return nil, typeError(typeName, value)
	case TypeScalarSize:
		return parseScalarUnit(value, sizeUnits, typeName)
	case TypeScalarTime:
		return parseScalarUnit(value, timeUnits, typeName)
	case TypeScalarFrequency:
		return parseScalarUnit(value, frequencyUnits, typeName)
	}
	return nil, fmt.Errorf("unknown primitive type %q", typeName)
}

func typeError(typeName string, value any) error {
	return fmt.Errorf("cannot coerce %v to %s", value, typeName)
}

// Compare orders two coerced values of the same primitive type. Returns a
// negative, zero, or positive number, or an error when the type is not
// comparable.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case int:
		switch y := b.(type) {
		case int:
			return x - y, nil
		case float64:
			return cmpFloat(float64(x), y), nil
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmpFloat(x, y), nil
		case int:
			return cmpFloat(x, float64(y)), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case *Version:
		if y, ok := b.(*Version); ok {
			return x.Compare(y), nil
		}
	}
	return 0, fmt.Errorf("values %v and %v are not comparable", a, b)
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal tests coerced values for equality, falling back to deep raw
// comparison for containers.
func Equal(a, b any) bool {
	if c, err := Compare(a, b); err == nil {
		return c == 0
	}
	if am, bm := reading.AsMap(a), reading.AsMap(b); am != nil || bm != nil {
		return reading.EqualRaw(a, b)
	}
	if al, bl := reading.AsList(a), reading.AsList(b); al != nil || bl != nil {
		return reading.EqualRaw(a, b)
	}
	return a == b
}

// Length returns the element count of a string, list, or map value.
func Length(v any) (int, error) {
	switch t := v.(type) {
	case string:
		return len(t), nil
	case []any:
		return len(t), nil
	case *collections.OrderedMap:
		return t.Len(), nil
	}
	return 0, fmt.Errorf("value %v has no length", v)
}
