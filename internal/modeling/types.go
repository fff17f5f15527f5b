package modeling

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Type is one node of a type hierarchy. Parent is the derived_from name;
// empty means the type is a root. Payload points back at the declaring
// presentation for profile-specific derivation.
type Type struct {
	Name        string
	Parent      string
	Description string
	Payload     any
	Locator     *reading.Locator
}

// TypeIndex is a name-to-type index for one type category (node,
// relationship, capability, data, artifact, policy, group, interface).
// Iteration preserves declaration order.
type TypeIndex struct {
	Category string
	types    *collections.OrderedMap
}

// NewTypeIndex returns an empty index for a category.
func NewTypeIndex(category string) *TypeIndex {
	return &TypeIndex{Category: category, types: collections.NewOrderedMap()}
}

// Add registers a type.
func (x *TypeIndex) Add(t *Type) { x.types.Set(t.Name, t) }

// Get returns the named type, nil when absent.
func (x *TypeIndex) Get(name string) *Type {
	if x == nil {
		return nil
	}
	v, _ := x.types.Get(name)
	t, _ := v.(*Type)
	return t
}

// Has reports whether name is registered.
func (x *TypeIndex) Has(name string) bool { return x.Get(name) != nil }

// Len returns the number of registered types.
func (x *TypeIndex) Len() int {
	if x == nil {
		return 0
	}
	return x.types.Len()
}

// GetParent returns the parent of t, nil for roots and dangling parents.
func (x *TypeIndex) GetParent(t *Type) *Type {
	if t == nil || t.Parent == "" {
		return nil
	}
	return x.Get(t.Parent)
}

// Hierarchy returns the ancestry of name ordered root-to-leaf, ending with
// the named type itself. A dangling or cyclic parent chain truncates.
func (x *TypeIndex) Hierarchy(name string) []*Type {
	var chain []*Type
	seen := make(map[string]bool)
	for t := x.Get(name); t != nil && !seen[t.Name]; t = x.GetParent(t) {
		seen[t.Name] = true
		chain = append([]*Type{t}, chain...)
	}
	return chain
}

// IsDescendant reports whether name equals ancestor or derives from it,
// directly or transitively.
func (x *TypeIndex) IsDescendant(ancestor, name string) bool {
	seen := make(map[string]bool)
	for t := x.Get(name); t != nil && !seen[t.Name]; t = x.GetParent(t) {
		if t.Name == ancestor {
			return true
		}
		seen[t.Name] = true
	}
	return false
}

// GetDescendant returns the named type only if it descends from ancestor.
func (x *TypeIndex) GetDescendant(ancestor, name string) *Type {
	if x.IsDescendant(ancestor, name) {
		return x.Get(name)
	}
	return nil
}

// IterDescendants visits every registered type in a stable root-to-leaf
// order: parents always before children, declaration order otherwise.
func (x *TypeIndex) IterDescendants(visit func(t *Type)) {
	if x == nil {
		return
	}
	emitted := make(map[string]bool)
	var emit func(t *Type)
	emit = func(t *Type) {
		if t == nil || emitted[t.Name] {
			return
		}
		if p := x.GetParent(t); p != nil {
			emit(p)
		}
		if !emitted[t.Name] {
			emitted[t.Name] = true
			visit(t)
		}
	}
	x.types.Each(func(_ string, v any) bool {
		emit(v.(*Type))
		return true
	})
}

// ValidateAcyclic reports an issue for every derived_from cycle and for
// every dangling parent reference.
func (x *TypeIndex) ValidateAcyclic(ctx *Context) bool {
	ok := true
	x.types.Each(func(name string, v any) bool {
		t := v.(*Type)
		if t.Parent != "" && !x.Has(t.Parent) {
			reportType(ctx, t, "unknown parent type %q of %s type %q", t.Parent, x.Category, name)
			ok = false
			return true
		}
		seen := map[string]bool{name: true}
		for p := x.GetParent(t); p != nil; p = x.GetParent(p) {
			if seen[p.Name] {
				reportType(ctx, t, "derived_from cycle through %s type %q", x.Category, name)
				ok = false
				break
			}
			seen[p.Name] = true
		}
		return true
	})
	return ok
}

func reportType(ctx *Context, t *Type, format string, args ...any) {
	issue := validation.Issue{Level: validation.BetweenTypes}
	issue.Message = fmt.Sprintf(format, args...)
	if t.Locator != nil {
		issue.Location = t.Locator.Location
		issue.Line = t.Locator.Line
		issue.Column = t.Locator.Column
	}
	ctx.Reporter.Report(issue)
}
