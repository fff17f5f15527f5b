package presentation

import (
	"go.uber.org/zap"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Presenter is a typed overlay on a raw value.
type Presenter interface {
	Name() string
	Raw() any
	Locator() *reading.Locator
	Schema() *Schema
	Container() Presenter

	base() *Base
}

// Context carries what field validators and extension hooks need: the issue
// sink, the logger, and the root presenter for cross-entity lookups.
type Context struct {
	Reporter *validation.Reporter
	Logger   *zap.Logger
	Root     Presenter
}

// NewContext returns a context with a fresh reporter and a no-op logger.
func NewContext() *Context {
	return &Context{Reporter: validation.NewReporter(), Logger: zap.NewNop()}
}

// Extension hooks. A presenter implements these to participate in linking,
// imports, and template copying.
type (
	// Linker runs after construction to populate back-references.
	Linker interface {
		Link(ctx *Context)
	}

	// Importer exposes the import locations a root presenter declares.
	Importer interface {
		ImportLocations() []loading.Location
	}

	// ImportMerger merges an imported root presenter into the receiver.
	ImportMerger interface {
		MergeImport(other Presenter)
	}

	// DefaultRawProvider supplies a fallback raw mapping consulted when a
	// field is absent from the presenter's own raw (the `copy:`
	// directive).
	DefaultRawProvider interface {
		DefaultRaw() *collections.OrderedMap
	}

	// SelfValidator adds class-specific checks after the schema-driven
	// pass.
	SelfValidator interface {
		ValidateExtra(ctx *Context)
	}
)

// Base carries the state every presenter shares. Concrete presenter types
// embed it and call Init from their factory.
type Base struct {
	name      string
	raw       any
	locator   *reading.Locator
	schema    *Schema
	container Presenter
	cache     map[string]any
}

// Init wires a presenter around raw. When the class declares a short form
// and raw is not a mapping, raw is wrapped into the canonical
// {shortForm: raw} shape.
func (b *Base) Init(name string, raw any, locator *reading.Locator, schema *Schema) {
	if schema.ShortForm != "" && reading.AsMap(raw) == nil && raw != nil {
		m := collections.NewOrderedMap()
		m.Set(schema.ShortForm, raw)
		raw = m
	}
	b.name = name
	b.raw = raw
	b.locator = locator
	b.schema = schema
	b.cache = make(map[string]any)
}

func (b *Base) Name() string              { return b.name }
func (b *Base) Raw() any                  { return b.raw }
func (b *Base) Locator() *reading.Locator { return b.locator }
func (b *Base) Schema() *Schema           { return b.schema }
func (b *Base) Container() Presenter      { return b.container }
func (b *Base) base() *Base               { return b }

// RawMap returns the presenter's raw as a mapping, or nil.
func (b *Base) RawMap() *collections.OrderedMap { return reading.AsMap(b.raw) }

// SetContainer records the owning presenter; called during linking.
func (b *Base) SetContainer(c Presenter) { b.container = c }

// Invalidate drops the field cache after the raw tree changed, e.g. when
// an import was merged in.
func (b *Base) Invalidate() { b.cache = make(map[string]any) }

// fieldRaw resolves the effective raw value of a field: the presenter's
// own raw entry, else the declared default, else the DefaultRaw hook
// (self is the outer presenter, which may implement it).
func (b *Base) fieldRaw(self Presenter, f *Field) (any, *reading.Locator, bool) {
	if m := b.RawMap(); m != nil {
		if v, ok := m.Get(f.Name); ok {
			return v, b.locator.Key(f.Name), true
		}
	}
	if f.Default != nil {
		return f.Default, b.locator, true
	}
	if dp, ok := self.(DefaultRawProvider); ok {
		if def := dp.DefaultRaw(); def != nil {
			if v, ok := def.Get(f.Name); ok {
				return reading.CloneRaw(v), b.locator, true
			}
		}
	}
	return nil, b.locator, false
}

func (b *Base) fieldOf(self Presenter, name string) *Field {
	f := b.schema.field(name)
	if f == nil {
		panic("presentation: undeclared field " + name + " on " + b.name)
	}
	_ = self
	return f
}

// Primitive returns the raw scalar of a primitive field, nil when unset.
func (b *Base) Primitive(self Presenter, name string) any {
	v, _, ok := b.fieldRaw(self, b.fieldOf(self, name))
	if !ok {
		return nil
	}
	return v
}

// GetString returns a string field, "" when unset or mistyped.
func (b *Base) GetString(self Presenter, name string) string {
	s, _ := b.Primitive(self, name).(string)
	return s
}

// GetStringPtr distinguishes unset from empty.
func (b *Base) GetStringPtr(self Presenter, name string) *string {
	v := b.Primitive(self, name)
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// GetBool returns a bool field; def when unset.
func (b *Base) GetBool(self Presenter, name string, def bool) bool {
	if v, ok := b.Primitive(self, name).(bool); ok {
		return v
	}
	return def
}

// GetInt returns an integer field; def when unset.
func (b *Base) GetInt(self Presenter, name string, def int) int {
	switch v := b.Primitive(self, name).(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// GetIntPtr distinguishes unset from zero.
func (b *Base) GetIntPtr(self Presenter, name string) *int {
	if v, ok := b.Primitive(self, name).(int); ok {
		return &v
	}
	return nil
}

// GetStringList returns a primitive-list field of strings.
func (b *Base) GetStringList(self Presenter, name string) []string {
	v, _, ok := b.fieldRaw(self, b.fieldOf(self, name))
	if !ok {
		return nil
	}
	list := reading.AsList(v)
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetObject returns the presenter of an object field, nil when unset.
func (b *Base) GetObject(self Presenter, name string) Presenter {
	if cached, ok := b.cache[name]; ok {
		p, _ := cached.(Presenter)
		return p
	}
	f := b.fieldOf(self, name)
	v, loc, ok := b.fieldRaw(self, f)
	if !ok || v == nil {
		b.cache[name] = nil
		return nil
	}
	p := f.New(name, v, loc)
	p.base().SetContainer(self)
	b.cache[name] = p
	return p
}

// GetObjectList returns the presenters of an object-list field in source
// order.
func (b *Base) GetObjectList(self Presenter, name string) []Presenter {
	if cached, ok := b.cache[name]; ok {
		l, _ := cached.([]Presenter)
		return l
	}
	f := b.fieldOf(self, name)
	v, loc, ok := b.fieldRaw(self, f)
	if !ok {
		b.cache[name] = []Presenter(nil)
		return nil
	}
	var out []Presenter
	for i, e := range reading.AsList(v) {
		p := f.New(name, e, loc.Index(i))
		p.base().SetContainer(self)
		out = append(out, p)
	}
	b.cache[name] = out
	return out
}

// GetObjectDict returns an ordered map of name to Presenter for an
// object-dict field, nil when unset.
func (b *Base) GetObjectDict(self Presenter, name string) *collections.OrderedMap {
	if cached, ok := b.cache[name]; ok {
		m, _ := cached.(*collections.OrderedMap)
		return m
	}
	f := b.fieldOf(self, name)
	v, loc, ok := b.fieldRaw(self, f)
	if !ok {
		b.cache[name] = (*collections.OrderedMap)(nil)
		return nil
	}
	out := collections.NewOrderedMap()
	if m := reading.AsMap(v); m != nil {
		m.Each(func(key string, value any) bool {
			p := f.New(key, value, loc.Key(key))
			p.base().SetContainer(self)
			out.Set(key, p)
			return true
		})
	}
	b.cache[name] = out
	return out
}

// NamedEntry is one (key, presenter) pair of a sequenced list.
type NamedEntry struct {
	Key   string
	Value Presenter
}

// GetObjectSequencedList returns the ordered (key, presenter) entries of
// an object-sequenced-list field.
func (b *Base) GetObjectSequencedList(self Presenter, name string) []NamedEntry {
	if cached, ok := b.cache[name]; ok {
		l, _ := cached.([]NamedEntry)
		return l
	}
	f := b.fieldOf(self, name)
	v, loc, ok := b.fieldRaw(self, f)
	if !ok {
		b.cache[name] = []NamedEntry(nil)
		return nil
	}
	var out []NamedEntry
	for i, e := range reading.AsList(v) {
		m := reading.AsMap(e)
		if m == nil || m.Len() != 1 {
			continue
		}
		key, value := m.At(0)
		p := f.New(key, value, loc.Index(i).Key(key))
		p.base().SetContainer(self)
		out = append(out, NamedEntry{Key: key, Value: p})
	}
	b.cache[name] = out
	return out
}

// GetUnknownFields returns every raw key not claimed by a declared field,
// presented through the UnknownFields descriptor's factory.
func (b *Base) GetUnknownFields(self Presenter, name string) *collections.OrderedMap {
	if cached, ok := b.cache[name]; ok {
		m, _ := cached.(*collections.OrderedMap)
		return m
	}
	f := b.fieldOf(self, name)
	out := collections.NewOrderedMap()
	if m := b.RawMap(); m != nil {
		m.Each(func(key string, value any) bool {
			if fld := b.schema.field(key); fld != nil && fld.Kind != UnknownFields {
				return true
			}
			p := f.New(key, value, b.locator.Key(key))
			p.base().SetContainer(self)
			out.Set(key, p)
			return true
		})
	}
	b.cache[name] = out
	return out
}

// Link walks the presentation graph setting container back-references and
// invoking class Link hooks, depth-first.
func Link(ctx *Context, p Presenter) {
	walkChildren(p, func(child Presenter) {
		Link(ctx, child)
	})
	if l, ok := p.(Linker); ok {
		l.Link(ctx)
	}
}

// walkChildren visits every object-kind child presenter of p.
func walkChildren(p Presenter, visit func(Presenter)) {
	b := p.base()
	for i := range p.Schema().Fields {
		f := &p.Schema().Fields[i]
		switch f.Kind {
		case Object:
			if c := b.GetObject(p, f.Name); c != nil {
				visit(c)
			}
		case ObjectList:
			for _, c := range b.GetObjectList(p, f.Name) {
				visit(c)
			}
		case ObjectDict:
			b.GetObjectDict(p, f.Name).Each(func(_ string, v any) bool {
				visit(v.(Presenter))
				return true
			})
		case ObjectSequencedList:
			for _, e := range b.GetObjectSequencedList(p, f.Name) {
				visit(e.Value)
			}
		case UnknownFields:
			b.GetUnknownFields(p, f.Name).Each(func(_ string, v any) bool {
				visit(v.(Presenter))
				return true
			})
		}
	}
}
