package presentation

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Validate runs the schema-driven validation pass over p and its children:
// structural kind checks, required fields, unknown-field rejection, declared
// per-field validators, then the class ValidateExtra hook. Validation never
// short-circuits; every failure lands in the context reporter.
func Validate(ctx *Context, p Presenter) {
	b := p.base()
	s := p.Schema()

	if p.Raw() != nil && b.RawMap() == nil && len(s.Fields) > 0 {
		reportAt(ctx, p.Locator(), validation.Field,
			"%q is not a mapping", p.Name())
		return
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		validateField(ctx, p, f)
	}

	if !s.AllowUnknown && s.unknownField() == nil {
		if m := b.RawMap(); m != nil {
			m.Each(func(key string, _ any) bool {
				if !s.declares(key) {
					reportAt(ctx, p.Locator().Key(key), validation.Field,
						"unknown field %q in %q", key, p.Name())
				}
				return true
			})
		}
	}

	walkChildren(p, func(child Presenter) {
		Validate(ctx, child)
	})

	if sv, ok := p.(SelfValidator); ok {
		sv.ValidateExtra(ctx)
	}
}

func validateField(ctx *Context, p Presenter, f *Field) {
	b := p.base()
	value, loc, ok := b.fieldRaw(p, f)
	if !ok {
		if f.Required {
			reportAt(ctx, p.Locator(), validation.Field,
				"required field %q missing in %q", f.Name, p.Name())
		}
		return
	}

	switch f.Kind {
	case Primitive:
		checkPrimitive(ctx, p, f, value, loc)
	case PrimitiveList:
		list := reading.AsList(value)
		if list == nil {
			reportAt(ctx, loc, validation.Field,
				"field %q in %q must be a sequence", f.Name, p.Name())
			return
		}
		for i, e := range list {
			checkPrimitive(ctx, p, f, e, loc.Index(i))
		}
	case Object:
		if value != nil && reading.AsMap(value) == nil && !shortFormable(f) {
			reportAt(ctx, loc, validation.Field,
				"field %q in %q must be a mapping", f.Name, p.Name())
			return
		}
	case ObjectList:
		if reading.AsList(value) == nil {
			reportAt(ctx, loc, validation.Field,
				"field %q in %q must be a sequence", f.Name, p.Name())
			return
		}
	case ObjectDict:
		if reading.AsMap(value) == nil {
			reportAt(ctx, loc, validation.Field,
				"field %q in %q must be a mapping", f.Name, p.Name())
			return
		}
	case ObjectSequencedList:
		list := reading.AsList(value)
		if list == nil {
			reportAt(ctx, loc, validation.Field,
				"field %q in %q must be a sequence", f.Name, p.Name())
			return
		}
		for i, e := range list {
			m := reading.AsMap(e)
			if m == nil || m.Len() != 1 {
				reportAt(ctx, loc.Index(i), validation.Field,
					"entry %d of field %q in %q must be a single-entry mapping", i, f.Name, p.Name())
			}
		}
	}

	for _, v := range f.Validators {
		v(ctx, p, f, value, loc)
	}
}

// shortFormable reports whether an object field's value may legally be a
// scalar because the target class declares a short form. The factory wraps
// it during instantiation.
func shortFormable(f *Field) bool {
	if f.New == nil {
		return false
	}
	probe := f.New(f.Name, nil, nil)
	return probe.Schema().ShortForm != ""
}

// intrinsicNames are the function keys a primitive field may carry in
// place of a literal; they resolve during plan coercion.
var intrinsicNames = map[string]bool{
	"get_input":     true,
	"get_property":  true,
	"get_attribute": true,
	"concat":        true,
}

func checkPrimitive(ctx *Context, p Presenter, f *Field, value any, loc *reading.Locator) {
	if value == nil {
		return
	}
	if m := reading.AsMap(value); m != nil && m.Len() == 1 {
		if key, _ := m.At(0); intrinsicNames[key] {
			return
		}
	}
	ok := true
	switch f.Type {
	case StringPrimitive:
		_, ok = value.(string)
	case IntPrimitive:
		_, ok = value.(int)
	case FloatPrimitive:
		switch value.(type) {
		case float64, int:
		default:
			ok = false
		}
	case BoolPrimitive:
		_, ok = value.(bool)
	default:
		// An untyped primitive field accepts any raw shape.
	}
	if !ok {
		reportAt(ctx, loc, validation.Field,
			"field %q in %q has wrong type: %v", f.Name, p.Name(), value)
	}
}

func reportAt(ctx *Context, loc *reading.Locator, level validation.Level, format string, args ...any) {
	issue := validation.Issue{Level: level, Message: fmt.Sprintf(format, args...)}
	if loc != nil {
		issue.Location = loc.Location
		issue.Line = loc.Line
		issue.Column = loc.Column
	}
	ctx.Reporter.Report(issue)
}

// ReportAt exposes located reporting to presenter packages implementing
// validators and hooks.
func ReportAt(ctx *Context, loc *reading.Locator, level validation.Level, format string, args ...any) {
	reportAt(ctx, loc, level, format, args...)
}
