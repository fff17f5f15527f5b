// Package tosca implements the TOSCA Simple Profile 1.0 presenter: the
// typed schema over service templates, its field validators, and the
// derivation of deployment templates.
package tosca

import (
	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
)

// PropertyDefinition is a named, typed value declaration on a type.
type PropertyDefinition struct {
	presentation.Base
}

var propertyDefinitionSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "required", Kind: presentation.Primitive, Type: presentation.BoolPrimitive, Default: true},
		{Name: "default", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "status", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Default: "supported"},
		{Name: "constraints", Kind: presentation.ObjectSequencedList, New: newConstraintClause,
			Validators: []presentation.Validator{constraintClauseValidator}},
		{Name: "entry_schema", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
	},
}

func newPropertyDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &PropertyDefinition{}
	p.Init(name, raw, locator, propertyDefinitionSchema)
	return p
}

func (p *PropertyDefinition) Type() string     { return p.GetString(p, "type") }
func (p *PropertyDefinition) Required() bool   { return p.GetBool(p, "required", true) }
func (p *PropertyDefinition) Default() any     { return p.Primitive(p, "default") }
func (p *PropertyDefinition) Constraints() []presentation.NamedEntry {
	return p.GetObjectSequencedList(p, "constraints")
}

// AttributeDefinition exposes the runtime state of an entity.
type AttributeDefinition struct {
	presentation.Base
}

var attributeDefinitionSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "default", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "status", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Default: "supported"},
		{Name: "entry_schema", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
	},
}

func newAttributeDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &AttributeDefinition{}
	p.Init(name, raw, locator, attributeDefinitionSchema)
	return p
}

// ParameterDefinition is a property definition that additionally accepts a
// value; used for topology inputs and outputs.
type ParameterDefinition struct {
	presentation.Base
}

var parameterDefinitionSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "required", Kind: presentation.Primitive, Type: presentation.BoolPrimitive, Default: true},
		{Name: "default", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "value", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "constraints", Kind: presentation.ObjectSequencedList, New: newConstraintClause,
			Validators: []presentation.Validator{constraintClauseValidator}},
		{Name: "entry_schema", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
	},
}

func newParameterDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &ParameterDefinition{}
	p.Init(name, raw, locator, parameterDefinitionSchema)
	return p
}

func (p *ParameterDefinition) Type() string { return p.GetString(p, "type") }
func (p *ParameterDefinition) Default() any { return p.Primitive(p, "default") }
func (p *ParameterDefinition) Value() any   { return p.Primitive(p, "value") }

// newConstraintClause wraps one operator entry of a sequenced constraint
// list. The key names the operator; the argument is kept as-is.
func newConstraintClause(name string, raw any, locator *reading.Locator) presentation.Presenter {
	return presentation.NewAsIs(name, raw, locator)
}

// OperationDefinition declares one operation of an interface. A bare
// string collapses into the implementation.
type OperationDefinition struct {
	presentation.Base
}

var operationDefinitionSchema = &presentation.Schema{
	ShortForm: "implementation",
	Fields: []presentation.Field{
		{Name: "implementation", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "inputs", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "executor", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "max_retries", Kind: presentation.Primitive, Type: presentation.IntPrimitive},
		{Name: "retry_interval", Kind: presentation.Primitive, Type: presentation.IntPrimitive},
	},
}

func newOperationDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &OperationDefinition{}
	p.Init(name, raw, locator, operationDefinitionSchema)
	return p
}

func (p *OperationDefinition) Implementation() string { return p.GetString(p, "implementation") }
func (p *OperationDefinition) Executor() string       { return p.GetString(p, "executor") }
func (p *OperationDefinition) MaxRetries() *int       { return p.GetIntPtr(p, "max_retries") }
func (p *OperationDefinition) RetryInterval() *int    { return p.GetIntPtr(p, "retry_interval") }
func (p *OperationDefinition) Inputs() *collections.OrderedMap {
	return p.GetObjectDict(p, "inputs")
}

// InterfaceDefinition groups operations. Every unreserved key is an
// operation.
type InterfaceDefinition struct {
	presentation.Base
}

var interfaceDefinitionSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "inputs", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "operations", Kind: presentation.UnknownFields, New: newOperationDefinition},
	},
}

func newInterfaceDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &InterfaceDefinition{}
	p.Init(name, raw, locator, interfaceDefinitionSchema)
	return p
}

func (p *InterfaceDefinition) Operations() *collections.OrderedMap {
	return p.GetUnknownFields(p, "operations")
}

func (p *InterfaceDefinition) Inputs() *collections.OrderedMap {
	return p.GetObjectDict(p, "inputs")
}

// InterfaceAssignment is an interface on a template: operations may
// override the type's.
type InterfaceAssignment struct {
	presentation.Base
}

var interfaceAssignmentSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "inputs", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "operations", Kind: presentation.UnknownFields, New: newOperationDefinition},
	},
}

func newInterfaceAssignment(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &InterfaceAssignment{}
	p.Init(name, raw, locator, interfaceAssignmentSchema)
	return p
}

func (p *InterfaceAssignment) Operations() *collections.OrderedMap {
	return p.GetUnknownFields(p, "operations")
}

func (p *InterfaceAssignment) Inputs() *collections.OrderedMap {
	return p.GetObjectDict(p, "inputs")
}

// RequirementRelationship is the relationship half of a requirement; a
// bare string collapses into the type.
type RequirementRelationship struct {
	presentation.Base
}

var requirementRelationshipSchema = &presentation.Schema{
	ShortForm: "type",
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{typeValidator("relationship", relationshipTypeNames)}},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "source_interfaces", Kind: presentation.ObjectDict, New: newInterfaceAssignment},
		{Name: "target_interfaces", Kind: presentation.ObjectDict, New: newInterfaceAssignment},
	},
}

func newRequirementRelationship(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &RequirementRelationship{}
	p.Init(name, raw, locator, requirementRelationshipSchema)
	return p
}

func (p *RequirementRelationship) Type() string { return p.GetString(p, "type") }
func (p *RequirementRelationship) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *RequirementRelationship) SourceInterfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "source_interfaces")
}
func (p *RequirementRelationship) TargetInterfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "target_interfaces")
}

// RequirementDefinition declares a dependency on a node type: the target
// capability, node, and relationship. A bare string collapses into the
// capability.
type RequirementDefinition struct {
	presentation.Base
}

var requirementDefinitionSchema = &presentation.Schema{
	ShortForm: "capability",
	Fields: []presentation.Field{
		{Name: "capability", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{typeValidator("capability", capabilityTypeNames)}},
		{Name: "node", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{typeValidator("node", nodeTypeNames)}},
		{Name: "relationship", Kind: presentation.Object, New: newRequirementRelationship},
		{Name: "occurrences", Kind: presentation.Primitive, Type: presentation.AnyPrimitive,
			Validators: []presentation.Validator{occurrencesValidator}},
	},
}

func newRequirementDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &RequirementDefinition{}
	p.Init(name, raw, locator, requirementDefinitionSchema)
	return p
}

func (p *RequirementDefinition) Capability() string { return p.GetString(p, "capability") }
func (p *RequirementDefinition) Node() string       { return p.GetString(p, "node") }
func (p *RequirementDefinition) Relationship() *RequirementRelationship {
	rel, _ := p.GetObject(p, "relationship").(*RequirementRelationship)
	return rel
}

// RequirementAssignment fills a requirement on a node template. A bare
// string collapses into the target node.
type RequirementAssignment struct {
	presentation.Base
}

var requirementAssignmentSchema = &presentation.Schema{
	ShortForm: "node",
	Fields: []presentation.Field{
		{Name: "capability", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "node", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "relationship", Kind: presentation.Object, New: newRequirementRelationship},
		{Name: "node_filter", Kind: presentation.Object, New: newNodeFilter},
	},
}

func newRequirementAssignment(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &RequirementAssignment{}
	p.Init(name, raw, locator, requirementAssignmentSchema)
	return p
}

func (p *RequirementAssignment) Capability() string { return p.GetString(p, "capability") }
func (p *RequirementAssignment) Node() string       { return p.GetString(p, "node") }
func (p *RequirementAssignment) Relationship() *RequirementRelationship {
	rel, _ := p.GetObject(p, "relationship").(*RequirementRelationship)
	return rel
}
func (p *RequirementAssignment) NodeFilter() *NodeFilter {
	nf, _ := p.GetObject(p, "node_filter").(*NodeFilter)
	return nf
}

// NodeFilter narrows requirement targets by property constraints.
type NodeFilter struct {
	presentation.Base
}

var nodeFilterSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "properties", Kind: presentation.ObjectSequencedList, New: presentation.NewAsIs},
		{Name: "capabilities", Kind: presentation.ObjectSequencedList, New: presentation.NewAsIs},
	},
}

func newNodeFilter(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &NodeFilter{}
	p.Init(name, raw, locator, nodeFilterSchema)
	return p
}

func (p *NodeFilter) Properties() []presentation.NamedEntry {
	return p.GetObjectSequencedList(p, "properties")
}

// CapabilityDefinition declares a capability on a node type. A bare
// string collapses into the type.
type CapabilityDefinition struct {
	presentation.Base
}

var capabilityDefinitionSchema = &presentation.Schema{
	ShortForm: "type",
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{typeValidator("capability", capabilityTypeNames)}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertyDefinition},
		{Name: "attributes", Kind: presentation.ObjectDict, New: newAttributeDefinition},
		{Name: "valid_source_types", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive},
		{Name: "occurrences", Kind: presentation.Primitive, Type: presentation.AnyPrimitive,
			Validators: []presentation.Validator{occurrencesValidator}},
	},
}

func newCapabilityDefinition(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &CapabilityDefinition{}
	p.Init(name, raw, locator, capabilityDefinitionSchema)
	return p
}

func (p *CapabilityDefinition) Type() string { return p.GetString(p, "type") }
func (p *CapabilityDefinition) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *CapabilityDefinition) ValidSourceTypes() []string {
	return p.GetStringList(p, "valid_source_types")
}
func (p *CapabilityDefinition) Occurrences() any { return p.Primitive(p, "occurrences") }

// CapabilityAssignment refines a capability on a node template.
type CapabilityAssignment struct {
	presentation.Base
}

var capabilityAssignmentSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "attributes", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
	},
}

func newCapabilityAssignment(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &CapabilityAssignment{}
	p.Init(name, raw, locator, capabilityAssignmentSchema)
	return p
}

func (p *CapabilityAssignment) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
