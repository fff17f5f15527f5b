package tosca

import (
	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
)

// NodeType declares a reusable node shape.
type NodeType struct {
	presentation.Base
}

var nodeTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator("node", nodeTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "version", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "attributes", Kind: presentation.ObjectDict, New: newAttributeDefinition},
		{Name: "requirements", Kind: presentation.ObjectSequencedList, New: newRequirementDefinition},
		{Name: "capabilities", Kind: presentation.ObjectDict, New: newCapabilityDefinition},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterfaceDefinition},
		{Name: "artifacts", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
	},
}

func newNodeType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &NodeType{}
	p.Init(name, raw, locator, nodeTypeSchema)
	return p
}

func (p *NodeType) DerivedFrom() string { return p.GetString(p, "derived_from") }
func (p *NodeType) Description() string { return p.GetString(p, "description") }
func (p *NodeType) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *NodeType) Requirements() []presentation.NamedEntry {
	return p.GetObjectSequencedList(p, "requirements")
}
func (p *NodeType) Capabilities() *collections.OrderedMap {
	return p.GetObjectDict(p, "capabilities")
}
func (p *NodeType) Interfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "interfaces")
}

// RelationshipType declares a reusable relationship shape.
type RelationshipType struct {
	presentation.Base
}

var relationshipTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator("relationship", relationshipTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "version", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "attributes", Kind: presentation.ObjectDict, New: newAttributeDefinition},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterfaceDefinition},
		{Name: "valid_target_types", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
	},
}

func newRelationshipType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &RelationshipType{}
	p.Init(name, raw, locator, relationshipTypeSchema)
	return p
}

func (p *RelationshipType) DerivedFrom() string { return p.GetString(p, "derived_from") }
func (p *RelationshipType) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *RelationshipType) Interfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "interfaces")
}

// CapabilityType declares a reusable capability shape.
type CapabilityType struct {
	presentation.Base
}

var capabilityTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator("capability", capabilityTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "version", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "attributes", Kind: presentation.ObjectDict, New: newAttributeDefinition},
		{Name: "valid_source_types", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
	},
}

func newCapabilityType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &CapabilityType{}
	p.Init(name, raw, locator, capabilityTypeSchema)
	return p
}

func (p *CapabilityType) DerivedFrom() string { return p.GetString(p, "derived_from") }

// DataType declares a complex data type: either a refinement of a
// primitive (constraints allowed) or a record of named properties.
type DataType struct {
	presentation.Base
}

var dataTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator("data", dataTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "version", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "constraints", Kind: presentation.ObjectSequencedList, New: newConstraintClause,
			Validators: []presentation.Validator{constraintClauseValidator}},
	},
}

func newDataType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &DataType{}
	p.Init(name, raw, locator, dataTypeSchema)
	return p
}

func (p *DataType) DerivedFrom() string { return p.GetString(p, "derived_from") }
func (p *DataType) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *DataType) Constraints() []presentation.NamedEntry {
	return p.GetObjectSequencedList(p, "constraints")
}

// ValidateExtra enforces that record data types do not declare
// constraints: only refinements of a primitive may constrain the value.
func (p *DataType) ValidateExtra(ctx *presentation.Context) {
	if len(p.Constraints()) == 0 {
		return
	}
	root, _ := ctx.Root.(*ServiceTemplate)
	if root == nil {
		return
	}
	if primitiveAncestor(root, p.Name()) == "" {
		presentation.ReportAt(ctx, p.Locator(), betweenTypes,
			"data type %q is not derived from a primitive and may not declare constraints", p.Name())
	}
}

// ArtifactType declares a deployable artifact shape.
type ArtifactType struct {
	presentation.Base
}

var artifactTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator("artifact", artifactTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "version", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "mime_type", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "file_ext", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
	},
}

func newArtifactType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &ArtifactType{}
	p.Init(name, raw, locator, artifactTypeSchema)
	return p
}

func (p *ArtifactType) DerivedFrom() string { return p.GetString(p, "derived_from") }

// GroupType declares a reusable group shape.
type GroupType struct {
	presentation.Base
}

var groupTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator("group", groupTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "version", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterfaceDefinition},
		{Name: "members", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
	},
}

func newGroupType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &GroupType{}
	p.Init(name, raw, locator, groupTypeSchema)
	return p
}

func (p *GroupType) DerivedFrom() string { return p.GetString(p, "derived_from") }

// PolicyType declares a reusable policy shape.
type PolicyType struct {
	presentation.Base
}

var policyTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator("policy", policyTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "version", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "targets", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
	},
}

func newPolicyType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &PolicyType{}
	p.Init(name, raw, locator, policyTypeSchema)
	return p
}

func (p *PolicyType) DerivedFrom() string { return p.GetString(p, "derived_from") }
func (p *PolicyType) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
