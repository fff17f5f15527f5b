package cloudify

import (
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

func rootBlueprint(ctx *presentation.Context) *Blueprint {
	b, _ := ctx.Root.(*Blueprint)
	return b
}

// nodeTypeRefValidator checks a node template's type reference.
func nodeTypeRefValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	name, ok := value.(string)
	if !ok || name == "" {
		return
	}
	b := rootBlueprint(ctx)
	if b == nil {
		return
	}
	if !b.NodeTypes().Has(name) {
		if _, builtin := builtinNodeTypes[name]; !builtin {
			presentation.ReportAt(ctx, locator, validation.BetweenTypes,
				"unknown node type %q in node template %q", name, p.Name())
		}
	}
}

// relationshipTypeRefValidator checks a relationship assignment's type.
func relationshipTypeRefValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	name, ok := value.(string)
	if !ok || name == "" {
		return
	}
	b := rootBlueprint(ctx)
	if b == nil {
		return
	}
	if !b.RelationshipTypes().Has(name) {
		if _, builtin := builtinRelationshipTypes[name]; !builtin {
			presentation.ReportAt(ctx, locator, validation.BetweenTypes,
				"unknown relationship type %q in %q", name, p.Name())
		}
	}
}

// targetTemplateValidator checks a relationship assignment's target
// template reference.
func targetTemplateValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	name, ok := value.(string)
	if !ok || name == "" {
		return
	}
	b := rootBlueprint(ctx)
	if b == nil {
		return
	}
	if !b.NodeTemplates().Has(name) {
		presentation.ReportAt(ctx, locator, validation.BetweenTypes,
			"relationship in %q targets unknown node template %q", p.Name(), name)
	}
}

// derivedFromValidator checks node type derivation: existing parent,
// acyclic chain.
func derivedFromValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	parent, ok := value.(string)
	if !ok || parent == "" {
		return
	}
	b := rootBlueprint(ctx)
	if b == nil {
		return
	}
	if !b.NodeTypes().Has(parent) {
		if _, builtin := builtinNodeTypes[parent]; !builtin {
			presentation.ReportAt(ctx, locator, validation.BetweenTypes,
				"unknown parent type %q of node type %q", parent, p.Name())
		}
		return
	}
	seen := map[string]bool{p.Name(): true}
	for current := parent; current != ""; {
		if seen[current] {
			presentation.ReportAt(ctx, locator, validation.BetweenTypes,
				"derived_from cycle through node type %q", p.Name())
			return
		}
		seen[current] = true
		next, _ := b.NodeTypes().Lookup(current).(*NodeType)
		if next == nil {
			return
		}
		current = next.DerivedFrom()
	}
}

// derivedFromRelationshipValidator is the relationship-type counterpart.
func derivedFromRelationshipValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	parent, ok := value.(string)
	if !ok || parent == "" {
		return
	}
	b := rootBlueprint(ctx)
	if b == nil {
		return
	}
	if !b.RelationshipTypes().Has(parent) {
		if _, builtin := builtinRelationshipTypes[parent]; !builtin {
			presentation.ReportAt(ctx, locator, validation.BetweenTypes,
				"unknown parent type %q of relationship type %q", parent, p.Name())
		}
	}
}

// policyTargetsValidator checks that scaling policy targets name groups.
func policyTargetsValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	b := rootBlueprint(ctx)
	if b == nil {
		return
	}
	for i, entry := range reading.AsList(value) {
		name, ok := entry.(string)
		if !ok {
			continue
		}
		if !b.Groups().Has(name) {
			presentation.ReportAt(ctx, locator.Index(i), validation.BetweenTypes,
				"policy %q targets unknown group %q", p.Name(), name)
		}
	}
}

// copyValidator rejects copy: references that do not name a sibling
// template in the same blueprint.
func copyValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	name, ok := value.(string)
	if !ok || name == "" {
		return
	}
	template, _ := p.(*NodeTemplate)
	if template == nil {
		return
	}
	if template.DefaultRaw() == nil {
		presentation.ReportAt(ctx, locator, validation.BetweenTypes,
			"copy: %q in %q does not name a sibling template in this blueprint", name, p.Name())
	}
}
