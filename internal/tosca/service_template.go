package tosca

import (
	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
)

// Version is the TOSCA Simple Profile version this presenter accepts.
const Version = "tosca_simple_yaml_1_0"

// ServiceTemplate is the root presenter for TOSCA Simple Profile 1.0
// documents.
type ServiceTemplate struct {
	presentation.Base
}

var serviceTemplateSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "tosca_definitions_version", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "metadata", Kind: presentation.Object, New: presentation.NewAsIs},
		{Name: "dsl_definitions", Kind: presentation.Object, New: presentation.NewAsIs},
		{Name: "imports", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "repositories", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "artifact_types", Kind: presentation.ObjectDict, New: newArtifactType},
		{Name: "data_types", Kind: presentation.ObjectDict, New: newDataType},
		{Name: "capability_types", Kind: presentation.ObjectDict, New: newCapabilityType},
		{Name: "interface_types", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "relationship_types", Kind: presentation.ObjectDict, New: newRelationshipType},
		{Name: "node_types", Kind: presentation.ObjectDict, New: newNodeType},
		{Name: "group_types", Kind: presentation.ObjectDict, New: newGroupType},
		{Name: "policy_types", Kind: presentation.ObjectDict, New: newPolicyType},
		{Name: "topology_template", Kind: presentation.Object, New: newTopologyTemplate},
	},
}

// NewServiceTemplate wraps a read document in the root presenter.
func NewServiceTemplate(doc *reading.Document) presentation.Presenter {
	p := &ServiceTemplate{}
	p.Init("service template", doc.Raw, doc.Locator, serviceTemplateSchema)
	return p
}

// CanPresent matches the TOSCA Simple Profile 1.0 discriminator.
func CanPresent(raw any) bool {
	m := reading.AsMap(raw)
	if m == nil {
		return false
	}
	v, _ := m.Lookup("tosca_definitions_version").(string)
	return v == Version
}

// Class is the presenter registration for the source.
var Class = presentation.Class{
	Name:       "tosca-simple-1.0",
	CanPresent: CanPresent,
	New:        NewServiceTemplate,
}

func (p *ServiceTemplate) DefinitionsVersion() string {
	return p.GetString(p, "tosca_definitions_version")
}
func (p *ServiceTemplate) Description() string { return p.GetString(p, "description") }

func (p *ServiceTemplate) NodeTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "node_types")
}
func (p *ServiceTemplate) RelationshipTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "relationship_types")
}
func (p *ServiceTemplate) CapabilityTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "capability_types")
}
func (p *ServiceTemplate) DataTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "data_types")
}
func (p *ServiceTemplate) ArtifactTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "artifact_types")
}
func (p *ServiceTemplate) GroupTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "group_types")
}
func (p *ServiceTemplate) PolicyTypes() *collections.OrderedMap {
	return p.GetObjectDict(p, "policy_types")
}

func (p *ServiceTemplate) TopologyTemplate() *TopologyTemplate {
	t, _ := p.GetObject(p, "topology_template").(*TopologyTemplate)
	return t
}

// ImportLocations yields the declared imports. Each entry is either a URI
// string or a mapping with a file key.
func (p *ServiceTemplate) ImportLocations() []loading.Location {
	m := p.RawMap()
	if m == nil {
		return nil
	}
	var out []loading.Location
	for _, entry := range reading.AsList(m.Lookup("imports")) {
		switch e := entry.(type) {
		case string:
			out = append(out, loading.Parse(e))
		default:
			if em := reading.AsMap(e); em != nil {
				if em.Len() == 1 {
					// {name: uri} form
					_, v := em.At(0)
					if im := reading.AsMap(v); im != nil {
						if file, ok := im.Lookup("file").(string); ok {
							out = append(out, loading.Parse(file))
						}
					} else if s, ok := v.(string); ok {
						out = append(out, loading.Parse(s))
					}
				} else if file, ok := em.Lookup("file").(string); ok {
					out = append(out, loading.Parse(file))
				}
			}
		}
	}
	return out
}

// mergedSections lists the root sections that union-merge on import.
var mergedSections = []string{
	"artifact_types", "data_types", "capability_types", "interface_types",
	"relationship_types", "node_types", "group_types", "policy_types",
}

// MergeImport merges an imported service template into this one: type
// sections union-merge with this document's entries winning; topology
// sections merge the same way.
func (p *ServiceTemplate) MergeImport(other presentation.Presenter) {
	own := p.RawMap()
	imported := reading.AsMap(other.Raw())
	if own == nil || imported == nil {
		return
	}
	for _, section := range mergedSections {
		mergeSection(own, imported, section)
	}
	if importedTopology := reading.AsMap(imported.Lookup("topology_template")); importedTopology != nil {
		ownTopology := reading.AsMap(own.Lookup("topology_template"))
		if ownTopology == nil {
			own.Set("topology_template", reading.CloneRaw(importedTopology))
		} else {
			for _, section := range []string{
				"inputs", "node_templates", "relationship_templates",
				"groups", "policies", "outputs",
			} {
				mergeSection(ownTopology, importedTopology, section)
			}
		}
	}
	p.Invalidate()
}

func mergeSection(own, imported *collections.OrderedMap, section string) {
	importedEntries := reading.AsMap(imported.Lookup(section))
	if importedEntries == nil {
		return
	}
	ownEntries := reading.AsMap(own.Lookup(section))
	if ownEntries == nil {
		own.Set(section, reading.CloneRaw(importedEntries))
		return
	}
	importedEntries.Each(func(key string, value any) bool {
		if !ownEntries.Has(key) {
			ownEntries.Set(key, reading.CloneRaw(value))
		}
		return true
	})
}
