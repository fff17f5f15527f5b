// Package cloudify implements the Cloudify DSL presenter (1.x), its
// derivation into a deployment template, and the classic plan conversion.
package cloudify

import (
	"regexp"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
)

// versionRe matches the cloudify_dsl_1_<n> discriminator values.
var versionRe = regexp.MustCompile(`^cloudify_dsl_1_\d+$`)

// Blueprint is the root presenter for Cloudify DSL documents.
type Blueprint struct {
	presentation.Base
}

var blueprintSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "tosca_definitions_version", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "imports", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "dsl_definitions", Kind: presentation.Object, New: presentation.NewAsIs},
		{Name: "inputs", Kind: presentation.ObjectDict, New: newParameter},
		{Name: "node_types", Kind: presentation.ObjectDict, New: newNodeType},
		{Name: "node_templates", Kind: presentation.ObjectDict, New: newNodeTemplate},
		{Name: "relationships", Kind: presentation.ObjectDict, New: newRelationshipType},
		{Name: "plugins", Kind: presentation.ObjectDict, New: newPlugin},
		{Name: "workflows", Kind: presentation.ObjectDict, New: newWorkflow},
		{Name: "groups", Kind: presentation.ObjectDict, New: newGroup},
		{Name: "policies", Kind: presentation.ObjectDict, New: newPolicy},
		{Name: "policy_types", Kind: presentation.ObjectDict, New: newPolicyType},
		{Name: "policy_triggers", Kind: presentation.ObjectDict, New: newPolicyTrigger},
		{Name: "data_types", Kind: presentation.ObjectDict, New: newDataType},
		{Name: "outputs", Kind: presentation.ObjectDict, New: newParameter},
	},
}

// NewBlueprint wraps a read document in the root presenter.
func NewBlueprint(doc *reading.Document) presentation.Presenter {
	p := &Blueprint{}
	p.Init("blueprint", doc.Raw, doc.Locator, blueprintSchema)
	return p
}

// CanPresent matches any cloudify_dsl_1_<n> discriminator.
func CanPresent(raw any) bool {
	m := reading.AsMap(raw)
	if m == nil {
		return false
	}
	v, _ := m.Lookup("tosca_definitions_version").(string)
	return versionRe.MatchString(v)
}

// Class is the presenter registration for the source.
var Class = presentation.Class{
	Name:       "cloudify-dsl-1.x",
	CanPresent: CanPresent,
	New:        NewBlueprint,
}

func (p *Blueprint) DefinitionsVersion() string {
	return p.GetString(p, "tosca_definitions_version")
}
func (p *Blueprint) Description() string { return p.GetString(p, "description") }

func (p *Blueprint) Inputs() *collections.OrderedMap  { return p.GetObjectDict(p, "inputs") }
func (p *Blueprint) Outputs() *collections.OrderedMap { return p.GetObjectDict(p, "outputs") }
func (p *Blueprint) NodeTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "node_types")
}
func (p *Blueprint) NodeTemplates() *collections.OrderedMap {
	return p.GetObjectDict(p, "node_templates")
}
func (p *Blueprint) RelationshipTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "relationships")
}
func (p *Blueprint) Plugins() *collections.OrderedMap   { return p.GetObjectDict(p, "plugins") }
func (p *Blueprint) Workflows() *collections.OrderedMap { return p.GetObjectDict(p, "workflows") }
func (p *Blueprint) Groups() *collections.OrderedMap    { return p.GetObjectDict(p, "groups") }
func (p *Blueprint) Policies() *collections.OrderedMap  { return p.GetObjectDict(p, "policies") }
func (p *Blueprint) PolicyTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "policy_types")
}
func (p *Blueprint) PolicyTriggers() *collections.OrderedMap {
	return p.GetObjectDict(p, "policy_triggers")
}
func (p *Blueprint) DataTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "data_types")
}

// ImportLocations yields the declared imports.
func (p *Blueprint) ImportLocations() []loading.Location {
	m := p.RawMap()
	if m == nil {
		return nil
	}
	var out []loading.Location
	for _, entry := range reading.AsList(m.Lookup("imports")) {
		if s, ok := entry.(string); ok {
			out = append(out, loading.Parse(s))
		}
	}
	return out
}

// mergedSections lists the root sections that union-merge on import.
var mergedSections = []string{
	"inputs", "node_types", "node_templates", "relationships", "plugins",
	"workflows", "groups", "policies", "policy_types", "policy_triggers",
	"data_types", "outputs",
}

// MergeImport merges an imported blueprint into this one; this document's
// entries win.
func (p *Blueprint) MergeImport(other presentation.Presenter) {
	own := p.RawMap()
	imported := reading.AsMap(other.Raw())
	if own == nil || imported == nil {
		return
	}
	for _, section := range mergedSections {
		importedEntries := reading.AsMap(imported.Lookup(section))
		if importedEntries == nil {
			continue
		}
		ownEntries := reading.AsMap(own.Lookup(section))
		if ownEntries == nil {
			own.Set(section, reading.CloneRaw(importedEntries))
			continue
		}
		importedEntries.Each(func(key string, value any) bool {
			if !ownEntries.Has(key) {
				ownEntries.Set(key, reading.CloneRaw(value))
			}
			return true
		})
	}
	p.Invalidate()
}
