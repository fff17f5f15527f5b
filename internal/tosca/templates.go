package tosca

import (
	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
)

// NodeTemplate instantiates a node type in the topology.
type NodeTemplate struct {
	presentation.Base
}

var nodeTemplateSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{typeValidator("node", nodeTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "directives", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "attributes", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "requirements", Kind: presentation.ObjectSequencedList, New: newRequirementAssignment,
			Validators: []presentation.Validator{nodeFilterValidator}},
		{Name: "capabilities", Kind: presentation.ObjectDict, New: newCapabilityAssignment},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterfaceAssignment},
		{Name: "artifacts", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "copy", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{copyValidator}},
	},
}

func newNodeTemplate(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &NodeTemplate{}
	p.Init(name, raw, locator, nodeTemplateSchema)
	return p
}

func (p *NodeTemplate) Type() string { return p.GetString(p, "type") }
func (p *NodeTemplate) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *NodeTemplate) Requirements() []presentation.NamedEntry {
	return p.GetObjectSequencedList(p, "requirements")
}
func (p *NodeTemplate) Capabilities() *collections.OrderedMap {
	return p.GetObjectDict(p, "capabilities")
}
func (p *NodeTemplate) Interfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "interfaces")
}
func (p *NodeTemplate) Copy() string { return p.GetString(p, "copy") }

// DefaultRaw clones the raw of the sibling template named by copy:.
// Resolution stays within the same topology template; a name it cannot
// resolve there is rejected by the copy validator. Imported node
// templates are merged into this topology's node_templates, so a copy:
// naming one resolves like any sibling. The copy key is read straight off
// the raw mapping so missing-field lookups cannot recurse through the
// hook.
func (p *NodeTemplate) DefaultRaw() *collections.OrderedMap {
	name, _ := p.RawMap().Lookup("copy").(string)
	if name == "" || name == p.Name() {
		return nil
	}
	topology, _ := p.Container().(*TopologyTemplate)
	if topology == nil {
		return nil
	}
	if m := topology.RawMap(); m != nil {
		if templates := reading.AsMap(m.Lookup("node_templates")); templates != nil {
			if raw := reading.AsMap(templates.Lookup(name)); raw != nil {
				return raw
			}
		}
	}
	return nil
}

// RelationshipTemplate is a standalone relationship declaration in the
// topology.
type RelationshipTemplate struct {
	presentation.Base
}

var relationshipTemplateSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{typeValidator("relationship", relationshipTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterfaceAssignment},
		{Name: "copy", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
	},
}

func newRelationshipTemplate(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &RelationshipTemplate{}
	p.Init(name, raw, locator, relationshipTemplateSchema)
	return p
}

func (p *RelationshipTemplate) Type() string { return p.GetString(p, "type") }

// GroupDefinition collects member node templates under a group type.
type GroupDefinition struct {
	presentation.Base
}

var groupDefinitionSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{typeValidator("group", groupTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "members", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterfaceAssignment},
	},
}

func newGroupDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &GroupDefinition{}
	p.Init(name, raw, locator, groupDefinitionSchema)
	return p
}

func (p *GroupDefinition) Type() string      { return p.GetString(p, "type") }
func (p *GroupDefinition) Members() []string { return p.GetStringList(p, "members") }
func (p *GroupDefinition) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}

// PolicyDefinition applies a policy type to targets.
type PolicyDefinition struct {
	presentation.Base
}

var policyDefinitionSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{typeValidator("policy", policyTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "targets", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
	},
}

func newPolicyDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &PolicyDefinition{}
	p.Init(name, raw, locator, policyDefinitionSchema)
	return p
}

func (p *PolicyDefinition) Type() string      { return p.GetString(p, "type") }
func (p *PolicyDefinition) Targets() []string { return p.GetStringList(p, "targets") }
func (p *PolicyDefinition) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}

// TopologyTemplate is the deployable topology: inputs, node templates,
// groups, policies, outputs.
type TopologyTemplate struct {
	presentation.Base
}

var topologyTemplateSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "inputs", Kind: presentation.ObjectDict, New: newParameterDefinition},
		{Name: "node_templates", Kind: presentation.ObjectDict, New: newNodeTemplate},
		{Name: "relationship_templates", Kind: presentation.ObjectDict, New: newRelationshipTemplate},
		{Name: "groups", Kind: presentation.ObjectDict, New: newGroupDefinition},
		{Name: "policies", Kind: presentation.ObjectDict, New: newPolicyDefinition},
		{Name: "outputs", Kind: presentation.ObjectDict, New: newParameterDefinition},
	},
}

func newTopologyTemplate(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &TopologyTemplate{}
	p.Init(name, raw, locator, topologyTemplateSchema)
	return p
}

func (p *TopologyTemplate) Description() string { return p.GetString(p, "description") }
func (p *TopologyTemplate) Inputs() *collections.OrderedMap {
	return p.GetObjectDict(p, "inputs")
}
func (p *TopologyTemplate) NodeTemplates() *collections.OrderedMap {
	return p.GetObjectDict(p, "node_templates")
}
func (p *TopologyTemplate) RelationshipTemplates() *collections.OrderedMap {
	return p.GetObjectDict(p, "relationship_templates")
}
func (p *TopologyTemplate) Groups() *collections.OrderedMap {
	return p.GetObjectDict(p, "groups")
}
func (p *TopologyTemplate) Policies() *collections.OrderedMap {
	return p.GetObjectDict(p, "policies")
}
func (p *TopologyTemplate) Outputs() *collections.OrderedMap {
	return p.GetObjectDict(p, "outputs")
}
