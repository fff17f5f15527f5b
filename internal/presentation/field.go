// Package presentation overlays typed, lazily-parsed views onto raw
// document trees. Each presenter class declares a static schema: a table of
// field descriptors plus class-level switches (short-form key, unknown
// field tolerance). Presenter instances carry only the raw mapping, its
// locator, and a per-field cache.
package presentation

import (
	"github.com/duyamin/aria-ng/internal/reading"
)

// Kind describes how a field interprets its raw value.
type Kind int

const (
	// Primitive coerces a scalar.
	Primitive Kind = iota
	// PrimitiveList coerces a sequence of scalars.
	PrimitiveList
	// Object instantiates a presenter on a mapping.
	Object
	// ObjectList instantiates presenters on a sequence of mappings.
	ObjectList
	// ObjectDict instantiates presenters on a mapping of mappings, keyed
	// by name.
	ObjectDict
	// ObjectSequencedList instantiates presenters on a sequence of
	// single-entry mappings, preserving order.
	ObjectSequencedList
	// UnknownFields captures every unreserved key as a presenter entry.
	UnknownFields
)

// PrimitiveType narrows a primitive field's accepted scalar type.
type PrimitiveType int

const (
	AnyPrimitive PrimitiveType = iota
	StringPrimitive
	IntPrimitive
	FloatPrimitive
	BoolPrimitive
)

// Factory instantiates a child presenter for object-kind fields.
type Factory func(name string, raw any, locator *reading.Locator) Presenter

// Validator runs a declared per-field check during validation.
type Validator func(ctx *Context, p Presenter, f *Field, value any, locator *reading.Locator)

// Field describes one declared field of a presenter class.
type Field struct {
	Name       string
	Kind       Kind
	Type       PrimitiveType
	Required   bool
	Default    any
	Validators []Validator
	New        Factory
}

// Schema is the static table a presenter class exposes.
type Schema struct {
	Fields []Field
	// ShortForm names the field a scalar raw value collapses into. Empty
	// means the class has no short form.
	ShortForm string
	// AllowUnknown accepts raw keys with no descriptor instead of
	// reporting them.
	AllowUnknown bool
}

func (s *Schema) field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

func (s *Schema) declares(name string) bool { return s.field(name) != nil }

// unknownField returns the UnknownFields descriptor if the class has one.
func (s *Schema) unknownField() *Field {
	for i := range s.Fields {
		if s.Fields[i].Kind == UnknownFields {
			return &s.Fields[i]
		}
	}
	return nil
}
