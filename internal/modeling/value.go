package modeling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// FunctionKind enumerates the intrinsic functions. Resolution is a switch
// over this tag.
type FunctionKind int

const (
	GetInput FunctionKind = iota
	GetProperty
	GetAttribute
	Concat
)

var functionNames = map[string]FunctionKind{
	"get_input":     GetInput,
	"get_property":  GetProperty,
	"get_attribute": GetAttribute,
	"concat":        Concat,
}

func (k FunctionKind) String() string {
	switch k {
	case GetInput:
		return "get_input"
	case GetProperty:
		return "get_property"
	case GetAttribute:
		return "get_attribute"
	default:
		return "concat"
	}
}

// Function is an intrinsic call inside a value. Args are themselves values.
type Function struct {
	Kind    FunctionKind
	Args    []*Value
	Locator *reading.Locator
}

// Value is either a literal raw tree or an intrinsic function. Literal
// containers may hold nested *Value elements where functions occur inside
// maps and lists.
type Value struct {
	Literal  any
	Function *Function
}

// ParseValue converts a raw tree into a value, recognizing single-key
// mappings whose key names an intrinsic function.
func ParseValue(raw any, locator *reading.Locator) *Value {
	if m := reading.AsMap(raw); m != nil {
		if m.Len() == 1 {
			key, arg := m.At(0)
			if kind, ok := functionNames[key]; ok {
				return &Value{Function: parseFunction(kind, arg, locator)}
			}
		}
		lit := collections.NewOrderedMap()
		m.Each(func(key string, value any) bool {
			lit.Set(key, ParseValue(value, locator.Key(key)))
			return true
		})
		return &Value{Literal: lit}
	}
	if l := reading.AsList(raw); l != nil {
		lit := make([]any, len(l))
		for i, e := range l {
			lit[i] = ParseValue(e, locator.Index(i))
		}
		return &Value{Literal: lit}
	}
	return &Value{Literal: raw}
}

func parseFunction(kind FunctionKind, arg any, locator *reading.Locator) *Function {
	f := &Function{Kind: kind, Locator: locator}
	if l := reading.AsList(arg); l != nil {
		for i, e := range l {
			f.Args = append(f.Args, ParseValue(e, locator.Index(i)))
		}
	} else {
		f.Args = append(f.Args, ParseValue(arg, locator))
	}
	return f
}

// AsRaw reconstructs the uncoerced raw form of a value, functions rendered
// back into their {name: args} mappings.
func (v *Value) AsRaw() any {
	if v == nil {
		return nil
	}
	if v.Function != nil {
		m := collections.NewOrderedMap()
		args := make([]any, len(v.Function.Args))
		for i, a := range v.Function.Args {
			args[i] = a.AsRaw()
		}
		if len(args) == 1 {
			m.Set(v.Function.Kind.String(), args[0])
		} else {
			m.Set(v.Function.Kind.String(), args)
		}
		return m
	}
	return rawOf(v.Literal)
}

func rawOf(lit any) any {
	switch t := lit.(type) {
	case *collections.OrderedMap:
		m := collections.NewOrderedMap()
		t.Each(func(key string, value any) bool {
			if nested, ok := value.(*Value); ok {
				m.Set(key, nested.AsRaw())
			} else {
				m.Set(key, value)
			}
			return true
		})
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			if nested, ok := e.(*Value); ok {
				l[i] = nested.AsRaw()
			} else {
				l[i] = e
			}
		}
		return l
	default:
		return lit
	}
}

// Resolution is the scope an intrinsic function resolves against.
type Resolution struct {
	Plan *Plan
	// Self is the node instance owning the value, when there is one.
	Self *NodeInstance
}

// Coerce resolves v to a plain raw tree. Unresolvable functions coerce to
// nil, except concat, which keeps the parts that resolved. Most failures
// report an issue; a get_property or get_attribute whose target has no
// instance (or SELF without one) reports none. Coercion is idempotent:
// coercing an already literal value returns it unchanged.
func (v *Value) Coerce(ctx *Context, res Resolution) any {
	out, _ := v.CoerceChecked(ctx, res)
	return out
}

// CoerceChecked resolves v and additionally reports whether every function
// in it resolved. Callers that mutate stored values in place use the flag
// to keep unresolved functions for a later pass.
func (v *Value) CoerceChecked(ctx *Context, res Resolution) (any, bool) {
	if v == nil {
		return nil, true
	}
	if v.Function != nil {
		return v.Function.resolve(ctx, res)
	}
	return coerceLiteral(ctx, res, v.Literal)
}

func coerceLiteral(ctx *Context, res Resolution, lit any) (any, bool) {
	resolved := true
	switch t := lit.(type) {
	case *collections.OrderedMap:
		m := collections.NewOrderedMap()
		t.Each(func(key string, value any) bool {
			if nested, ok := value.(*Value); ok {
				out, ok := nested.CoerceChecked(ctx, res)
				resolved = resolved && ok
				m.Set(key, out)
			} else {
				m.Set(key, value)
			}
			return true
		})
		return m, resolved
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			if nested, ok := e.(*Value); ok {
				out, ok := nested.CoerceChecked(ctx, res)
				resolved = resolved && ok
				l[i] = out
			} else {
				l[i] = e
			}
		}
		return l, resolved
	default:
		return lit, true
	}
}

func (f *Function) resolve(ctx *Context, res Resolution) (any, bool) {
	switch f.Kind {
	case GetInput:
		return f.resolveInput(ctx, res)
	case GetProperty:
		return f.resolveProperty(ctx, res)
	case GetAttribute:
		return f.resolveAttribute(ctx, res)
	default:
		return f.resolveConcat(ctx, res)
	}
}

func (f *Function) report(ctx *Context, format string, args ...any) {
	issue := validation.Issue{Level: validation.BetweenTypes, Message: fmt.Sprintf(format, args...)}
	if f.Locator != nil {
		issue.Location = f.Locator.Location
		issue.Line = f.Locator.Line
		issue.Column = f.Locator.Column
	}
	ctx.Reporter.Report(issue)
}

func (f *Function) argString(ctx *Context, res Resolution, i int) (string, bool) {
	if i >= len(f.Args) {
		return "", false
	}
	s, ok := f.Args[i].Coerce(ctx, res).(string)
	return s, ok
}

func (f *Function) resolveInput(ctx *Context, res Resolution) (any, bool) {
	name, ok := f.argString(ctx, res, 0)
	if !ok {
		f.report(ctx, "get_input: argument must be a string")
		return nil, false
	}
	if v, ok := ctx.Inputs[name]; ok {
		return v, true
	}
	if res.Plan != nil {
		if p, ok := res.Plan.Inputs.Get(name); ok {
			if param, ok := p.(*Parameter); ok {
				return param.Value.CoerceChecked(ctx, res)
			}
		}
	}
	f.report(ctx, "get_input: unknown input %q", name)
	return nil, false
}

// resolveProperty walks [target, property, nested...]. The target is a node
// template/instance name or SELF.
func (f *Function) resolveProperty(ctx *Context, res Resolution) (any, bool) {
	if len(f.Args) < 2 {
		f.report(ctx, "get_property: requires [target, property]")
		return nil, false
	}
	target, ok := f.argString(ctx, res, 0)
	if !ok {
		f.report(ctx, "get_property: target must be a string")
		return nil, false
	}
	props := f.targetProperties(ctx, res, target)
	if props == nil {
		return nil, false
	}
	return f.walk(ctx, res, props, 1, "get_property")
}

func (f *Function) resolveAttribute(ctx *Context, res Resolution) (any, bool) {
	// Attributes resolve against the runtime instance; without an
	// orchestrator the instance properties stand in for them.
	if len(f.Args) < 2 {
		f.report(ctx, "get_attribute: requires [target, attribute]")
		return nil, false
	}
	target, ok := f.argString(ctx, res, 0)
	if !ok {
		f.report(ctx, "get_attribute: target must be a string")
		return nil, false
	}
	props := f.targetProperties(ctx, res, target)
	if props == nil {
		return nil, false
	}
	return f.walk(ctx, res, props, 1, "get_attribute")
}

func (f *Function) targetProperties(ctx *Context, res Resolution, target string) *collections.OrderedMap {
	if target == "SELF" || target == "" {
		if res.Self != nil {
			return res.Self.Properties
		}
		return nil
	}
	if res.Plan == nil {
		return nil
	}
	if inst := res.Plan.FirstInstanceOf(target); inst != nil {
		return inst.Properties
	}
	return nil
}

func (f *Function) walk(ctx *Context, res Resolution, props *collections.OrderedMap, from int, name string) (any, bool) {
	var current any = props
	for i := from; i < len(f.Args); i++ {
		key, ok := f.argString(ctx, res, i)
		if !ok {
			f.report(ctx, "%s: path element must be a string", name)
			return nil, false
		}
		m, ok := current.(*collections.OrderedMap)
		if !ok {
			f.report(ctx, "%s: %q is not a mapping", name, key)
			return nil, false
		}
		next, ok := m.Get(key)
		if !ok {
			f.report(ctx, "%s: unknown property %q", name, key)
			return nil, false
		}
		if v, isValue := next.(*Value); isValue {
			out, ok := v.CoerceChecked(ctx, res)
			if !ok {
				return nil, false
			}
			current = out
		} else {
			current = next
		}
	}
	return current, true
}

func (f *Function) resolveConcat(ctx *Context, res Resolution) (any, bool) {
	var b strings.Builder
	resolved := true
	for _, a := range f.Args {
		out, ok := a.CoerceChecked(ctx, res)
		resolved = resolved && ok
		b.WriteString(stringify(out))
	}
	return b.String(), resolved
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
