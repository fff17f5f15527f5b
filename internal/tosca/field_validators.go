package tosca

import (
	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/datatypes"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

const betweenTypes = validation.BetweenTypes

// typeNames resolves the declared plus built-in names of one type
// category from the root service template.
type typeNames func(root *ServiceTemplate) map[string]bool

func declaredNames(section *collections.OrderedMap, builtins map[string]builtinType) map[string]bool {
	names := make(map[string]bool, len(builtins)+section.Len())
	for name := range builtins {
		names[name] = true
	}
	section.Each(func(name string, _ any) bool {
		names[name] = true
		return true
	})
	return names
}

func nodeTypeNames(root *ServiceTemplate) map[string]bool {
	return declaredNames(root.NodeTypes(), builtinNodeTypes)
}
func relationshipTypeNames(root *ServiceTemplate) map[string]bool {
	return declaredNames(root.RelationshipTypes(), builtinRelationshipTypes)
}
func capabilityTypeNames(root *ServiceTemplate) map[string]bool {
	return declaredNames(root.CapabilityTypes(), builtinCapabilityTypes)
}
func dataTypeNames(root *ServiceTemplate) map[string]bool {
	names := declaredNames(root.DataTypes(), nil)
	for _, prim := range []string{
		datatypes.TypeString, datatypes.TypeInteger, datatypes.TypeFloat,
		datatypes.TypeBoolean, datatypes.TypeTimestamp, datatypes.TypeNull,
		datatypes.TypeVersion, datatypes.TypeRange, datatypes.TypeList,
		datatypes.TypeMap, datatypes.TypeScalarSize, datatypes.TypeScalarTime,
		datatypes.TypeScalarFrequency,
	} {
		names[prim] = true
	}
	return names
}
func artifactTypeNames(root *ServiceTemplate) map[string]bool {
	return declaredNames(root.ArtifactTypes(), builtinArtifactTypes)
}
func groupTypeNames(root *ServiceTemplate) map[string]bool {
	return declaredNames(root.GroupTypes(), builtinGroupTypes)
}
func policyTypeNames(root *ServiceTemplate) map[string]bool {
	return declaredNames(root.PolicyTypes(), builtinPolicyTypes)
}

// typeValidator checks that a referenced type name exists in the named
// category's index.
func typeValidator(category string, names typeNames) presentation.Validator {
	return func(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
		name, ok := value.(string)
		if !ok || name == "" {
			return
		}
		root, _ := ctx.Root.(*ServiceTemplate)
		if root == nil {
			return
		}
		if !names(root)[name] {
			presentation.ReportAt(ctx, locator, betweenTypes,
				"unknown %s type %q in %q", category, name, p.Name())
		}
	}
}

// derivedFromValidator checks that the parent type exists and that the
// derivation chain is acyclic.
func derivedFromValidator(category string, names typeNames) presentation.Validator {
	return func(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
		parent, ok := value.(string)
		if !ok || parent == "" {
			return
		}
		root, _ := ctx.Root.(*ServiceTemplate)
		if root == nil {
			return
		}
		if !names(root)[parent] {
			presentation.ReportAt(ctx, locator, betweenTypes,
				"unknown parent %s type %q of %q", category, parent, p.Name())
			return
		}
		section := sectionFor(root, category)
		if section == nil {
			return
		}
		seen := map[string]bool{p.Name(): true}
		for current := parent; current != ""; {
			if seen[current] {
				presentation.ReportAt(ctx, locator, betweenTypes,
					"derived_from cycle through %s type %q", category, p.Name())
				return
			}
			seen[current] = true
			next, _ := section.Lookup(current).(presentation.Presenter)
			if next == nil {
				return
			}
			current = next.(derivable).DerivedFrom()
		}
	}
}

type derivable interface{ DerivedFrom() string }

func sectionFor(root *ServiceTemplate, category string) *collections.OrderedMap {
	switch category {
	case "node":
		return root.NodeTypes()
	case "relationship":
		return root.RelationshipTypes()
	case "capability":
		return root.CapabilityTypes()
	case "data":
		return root.DataTypes()
	case "artifact":
		return root.ArtifactTypes()
	case "group":
		return root.GroupTypes()
	case "policy":
		return root.PolicyTypes()
	}
	return nil
}

// constraintClauseValidator checks every clause of a constraint list:
// known operator, in_range arity and ordering, pattern compilation.
func constraintClauseValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	for i, entry := range reading.AsList(value) {
		m := reading.AsMap(entry)
		if m == nil || m.Len() != 1 {
			continue
		}
		op, arg := m.At(0)
		if !datatypes.KnownConstraint(op) {
			presentation.ReportAt(ctx, locator.Index(i), betweenTypes,
				"unknown constraint %q in %q", op, p.Name())
			continue
		}
		c := &datatypes.Constraint{Operator: datatypes.ConstraintOperator(op), Argument: arg}
		if err := c.Check(); err != nil {
			presentation.ReportAt(ctx, locator.Index(i), betweenTypes,
				"constraint %q in %q: %v", op, p.Name(), err)
		}
	}
}

// occurrencesValidator checks a [lower, upper] occurrence bound where
// upper may be UNBOUNDED.
func occurrencesValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	if value == nil {
		return
	}
	if _, err := parseOccurrences(value); err != nil {
		presentation.ReportAt(ctx, locator, validation.Field,
			"occurrences of %q: %v", p.Name(), err)
	}
}

// nodeFilterValidator checks that every property a requirement's node
// filter names exists on the target node type.
func nodeFilterValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	root, _ := ctx.Root.(*ServiceTemplate)
	template, _ := p.(*NodeTemplate)
	if root == nil || template == nil {
		return
	}
	for _, entry := range template.Requirements() {
		ra, _ := entry.Value.(*RequirementAssignment)
		if ra == nil {
			continue
		}
		nf := ra.NodeFilter()
		if nf == nil {
			continue
		}
		targetType := ra.Node()
		if targetType == "" {
			continue
		}
		props := typePropertyNames(root, targetType)
		if props == nil {
			continue
		}
		for _, pe := range nf.Properties() {
			if !props[pe.Key] {
				presentation.ReportAt(ctx, nf.Locator(), betweenTypes,
					"node filter of requirement %q in %q constrains unknown property %q of node type %q",
					entry.Key, template.Name(), pe.Key, targetType)
			}
		}
	}
}

// typePropertyNames collects the property names declared anywhere in a
// node type's hierarchy. A built-in node type yields an empty set; nil
// when the name is neither declared nor built in.
func typePropertyNames(root *ServiceTemplate, typeName string) map[string]bool {
	section := root.NodeTypes()
	nt, _ := section.Lookup(typeName).(*NodeType)
	if nt == nil {
		if _, builtin := builtinNodeTypes[typeName]; builtin {
			return map[string]bool{}
		}
		return nil
	}
	props := make(map[string]bool)
	seen := make(map[string]bool)
	for current := nt; current != nil && !seen[current.Name()]; {
		seen[current.Name()] = true
		current.Properties().Each(func(name string, _ any) bool {
			props[name] = true
			return true
		})
		parent, _ := section.Lookup(current.DerivedFrom()).(*NodeType)
		current = parent
	}
	return props
}

// copyValidator rejects copy: references that leave the declaring
// topology template or name a missing sibling.
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
		presentation.ReportAt(ctx, locator, betweenTypes,
			"copy: %q in %q does not name a sibling template in the same topology", name, p.Name())
	}
}

// ValidateExtra on requirement assignments: when capability names a
// capability type, node must not be set at the same time.
func (p *RequirementAssignment) ValidateExtra(ctx *presentation.Context) {
	root, _ := ctx.Root.(*ServiceTemplate)
	if root == nil {
		return
	}
	capability := p.Capability()
	if capability == "" || p.Node() == "" {
		return
	}
	if capabilityTypeNames(root)[capability] {
		presentation.ReportAt(ctx, p.Locator(), validation.BetweenFields,
			"requirement %q names capability type %q and a node at the same time",
			p.Name(), capability)
	}
}
