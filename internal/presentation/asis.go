package presentation

import "github.com/duyamin/aria-ng/internal/reading"

// AsIs is a presenter that accepts any raw value unchanged: property
// assignments, dsl_definitions, constraint arguments. It declares no
// fields and tolerates any shape.
type AsIs struct {
	Base
}

var asIsSchema = &Schema{AllowUnknown: true}

// NewAsIs wraps raw without interpretation.
func NewAsIs(name string, raw any, locator *reading.Locator) Presenter {
	p := &AsIs{}
	p.Init(name, raw, locator, asIsSchema)
	return p
}

// Value returns the underlying raw.
func (p *AsIs) Value() any { return p.Raw() }
