package cloudify

import (
	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Parameter is an input/output declaration.
type Parameter struct {
	presentation.Base
}

var parameterSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "default", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "required", Kind: presentation.Primitive, Type: presentation.BoolPrimitive, Default: true},
		{Name: "value", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
	},
}

func newParameter(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &Parameter{}
	p.Init(name, raw, locator, parameterSchema)
	return p
}

func (p *Parameter) Type() string { return p.GetString(p, "type") }
func (p *Parameter) Default() any { return p.Primitive(p, "default") }
func (p *Parameter) Value() any   { return p.Primitive(p, "value") }

// PropertySchema declares one property of a node type or data type.
type PropertySchema struct {
	presentation.Base
}

var propertySchemaSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "default", Kind: presentation.Primitive, Type: presentation.AnyPrimitive},
		{Name: "required", Kind: presentation.Primitive, Type: presentation.BoolPrimitive, Default: true},
	},
}

func newPropertySchema(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &PropertySchema{}
	p.Init(name, raw, locator, propertySchemaSchema)
	return p
}

func (p *PropertySchema) Type() string   { return p.GetString(p, "type") }
func (p *PropertySchema) Default() any   { return p.Primitive(p, "default") }
func (p *PropertySchema) Required() bool { return p.GetBool(p, "required", true) }
func (p *PropertySchema) HasDefault() bool {
	m := p.RawMap()
	return m != nil && m.Has("default")
}

// Operation declares or assigns one interface operation. A bare string
// collapses into the implementation.
type Operation struct {
	presentation.Base
}

var operationSchema = &presentation.Schema{
	ShortForm: "implementation",
	Fields: []presentation.Field{
		{Name: "implementation", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "inputs", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "executor", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{executorValidator}},
		{Name: "max_retries", Kind: presentation.Primitive, Type: presentation.IntPrimitive},
		{Name: "retry_interval", Kind: presentation.Primitive, Type: presentation.IntPrimitive},
	},
}

func newOperation(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &Operation{}
	p.Init(name, raw, locator, operationSchema)
	return p
}

func (p *Operation) Implementation() string { return p.GetString(p, "implementation") }
func (p *Operation) Executor() string       { return p.GetString(p, "executor") }
func (p *Operation) MaxRetries() *int       { return p.GetIntPtr(p, "max_retries") }
func (p *Operation) RetryInterval() *int    { return p.GetIntPtr(p, "retry_interval") }
func (p *Operation) Inputs() *collections.OrderedMap {
	return p.GetObjectDict(p, "inputs")
}

// executorValidator accepts the two Cloudify executors.
func executorValidator(ctx *presentation.Context, p presentation.Presenter, f *presentation.Field, value any, locator *reading.Locator) {
	s, ok := value.(string)
	if !ok || s == "" {
		return
	}
	if s != CentralDeploymentAgent && s != HostAgent {
		presentation.ReportAt(ctx, locator, validation.Field,
			"executor of %q must be %q or %q", p.Name(), CentralDeploymentAgent, HostAgent)
	}
}

// Interface groups operations; every key is an operation.
type Interface struct {
	presentation.Base
}

var interfaceSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "operations", Kind: presentation.UnknownFields, New: newOperation},
	},
}

func newInterface(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &Interface{}
	p.Init(name, raw, locator, interfaceSchema)
	return p
}

func (p *Interface) Operations() *collections.OrderedMap {
	return p.GetUnknownFields(p, "operations")
}

// NodeType declares a node type: schema properties and interfaces.
type NodeType struct {
	presentation.Base
}

var nodeTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromValidator}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertySchema},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterface},
	},
}

func newNodeType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &NodeType{}
	p.Init(name, raw, locator, nodeTypeSchema)
	return p
}

func (p *NodeType) DerivedFrom() string { return p.GetString(p, "derived_from") }
func (p *NodeType) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *NodeType) Interfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "interfaces")
}

// RelationshipType declares a relationship type with source and target
// interfaces.
type RelationshipType struct {
	presentation.Base
}

var relationshipTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{derivedFromRelationshipValidator}},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertySchema},
		{Name: "source_interfaces", Kind: presentation.ObjectDict, New: newInterface},
		{Name: "target_interfaces", Kind: presentation.ObjectDict, New: newInterface},
	},
}

func newRelationshipType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &RelationshipType{}
	p.Init(name, raw, locator, relationshipTypeSchema)
	return p
}

func (p *RelationshipType) DerivedFrom() string { return p.GetString(p, "derived_from") }
func (p *RelationshipType) SourceInterfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "source_interfaces")
}
func (p *RelationshipType) TargetInterfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "target_interfaces")
}

// RelationshipAssignment is one entry of a node template's relationships
// list.
type RelationshipAssignment struct {
	presentation.Base
}

var relationshipAssignmentSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{relationshipTypeRefValidator}},
		{Name: "target", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{targetTemplateValidator}},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "source_interfaces", Kind: presentation.ObjectDict, New: newInterface},
		{Name: "target_interfaces", Kind: presentation.ObjectDict, New: newInterface},
	},
}

func newRelationshipAssignment(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &RelationshipAssignment{}
	p.Init(name, raw, locator, relationshipAssignmentSchema)
	return p
}

func (p *RelationshipAssignment) Type() string   { return p.GetString(p, "type") }
func (p *RelationshipAssignment) Target() string { return p.GetString(p, "target") }
func (p *RelationshipAssignment) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}
func (p *RelationshipAssignment) SourceInterfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "source_interfaces")
}
func (p *RelationshipAssignment) TargetInterfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "target_interfaces")
}

// NodeTemplate instantiates a node type.
type NodeTemplate struct {
	presentation.Base
}

var nodeTemplateSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{nodeTypeRefValidator}},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "interfaces", Kind: presentation.ObjectDict, New: newInterface},
		{Name: "relationships", Kind: presentation.ObjectList, New: newRelationshipAssignment},
		{Name: "instances", Kind: presentation.Object, New: presentation.NewAsIs},
		{Name: "capabilities", Kind: presentation.Object, New: presentation.NewAsIs},
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
func (p *NodeTemplate) Interfaces() *collections.OrderedMap {
	return p.GetObjectDict(p, "interfaces")
}
func (p *NodeTemplate) Relationships() []presentation.Presenter {
	return p.GetObjectList(p, "relationships")
}
func (p *NodeTemplate) Copy() string { return p.GetString(p, "copy") }

// DefaultRaw clones the raw of the sibling template named by copy:. The
// copy key is read straight off the raw mapping so missing-field lookups
// cannot recurse through the hook.
func (p *NodeTemplate) DefaultRaw() *collections.OrderedMap {
	name, _ := p.RawMap().Lookup("copy").(string)
	if name == "" || name == p.Name() {
		return nil
	}
	blueprint, _ := p.Container().(*Blueprint)
	if blueprint == nil {
		return nil
	}
	if m := blueprint.RawMap(); m != nil {
		if templates := reading.AsMap(m.Lookup("node_templates")); templates != nil {
			if raw := reading.AsMap(templates.Lookup(name)); raw != nil {
				return raw
			}
		}
	}
	return nil
}

// Plugin declares an executable plugin.
type Plugin struct {
	presentation.Base
}

var pluginSchema = &presentation.Schema{
	AllowUnknown: true,
	Fields: []presentation.Field{
		{Name: "executor", Kind: presentation.Primitive, Type: presentation.StringPrimitive,
			Validators: []presentation.Validator{executorValidator}},
		{Name: "source", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "install", Kind: presentation.Primitive, Type: presentation.BoolPrimitive, Default: true},
		{Name: "install_arguments", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
	},
}

func newPlugin(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &Plugin{}
	p.Init(name, raw, locator, pluginSchema)
	return p
}

func (p *Plugin) Executor() string { return p.GetString(p, "executor") }
func (p *Plugin) Source() string   { return p.GetString(p, "source") }
func (p *Plugin) Install() bool    { return p.GetBool(p, "install", true) }

// Workflow maps a workflow name to an implementation. A bare string
// collapses into the mapping.
type Workflow struct {
	presentation.Base
}

var workflowSchema = &presentation.Schema{
	ShortForm: "mapping",
	Fields: []presentation.Field{
		{Name: "mapping", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true},
		{Name: "parameters", Kind: presentation.ObjectDict, New: newPropertySchema},
	},
}

func newWorkflow(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &Workflow{}
	p.Init(name, raw, locator, workflowSchema)
	return p
}

func (p *Workflow) Mapping() string { return p.GetString(p, "mapping") }
func (p *Workflow) Parameters() *collections.OrderedMap {
	return p.GetObjectDict(p, "parameters")
}

// Group collects member node templates.
type Group struct {
	presentation.Base
}

var groupSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "members", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive, Required: true},
		{Name: "policies", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
	},
}

func newGroup(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &Group{}
	p.Init(name, raw, locator, groupSchema)
	return p
}

func (p *Group) Members() []string { return p.GetStringList(p, "members") }

// Policy applies a policy type to target groups.
type Policy struct {
	presentation.Base
}

var policySchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "type", Kind: presentation.Primitive, Type: presentation.StringPrimitive, Required: true},
		{Name: "properties", Kind: presentation.ObjectDict, New: presentation.NewAsIs},
		{Name: "targets", Kind: presentation.PrimitiveList, Type: presentation.StringPrimitive, Required: true,
			Validators: []presentation.Validator{policyTargetsValidator}},
	},
}

func newPolicy(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &Policy{}
	p.Init(name, raw, locator, policySchema)
	return p
}

func (p *Policy) Type() string      { return p.GetString(p, "type") }
func (p *Policy) Targets() []string { return p.GetStringList(p, "targets") }
func (p *Policy) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}

// PolicyType declares an executable policy source and its properties.
type PolicyType struct {
	presentation.Base
}

var policyTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "source", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertySchema},
	},
}

func newPolicyType(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &PolicyType{}
	p.Init(name, raw, locator, policyTypeSchema)
	return p
}

func (p *PolicyType) Source() string { return p.GetString(p, "source") }
func (p *PolicyType) Properties() *collections.OrderedMap {
	return p.GetObjectDict(p, "properties")
}

// PolicyTrigger declares an executable trigger source and its parameters.
type PolicyTrigger struct {
	presentation.Base
}

var policyTriggerSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "source", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "parameters", Kind: presentation.ObjectDict, New: newPropertySchema},
	},
}

func newPolicyTrigger(name string, raw any, locator *reading.Locator) presentation.Presenter {
	p := &PolicyTrigger{}
	p.Init(name, raw, locator, policyTriggerSchema)
	return p
}

func (p *PolicyTrigger) Source() string { return p.GetString(p, "source") }

// DataType declares a complex data type of named properties.
type DataType struct {
	presentation.Base
}

var dataTypeSchema = &presentation.Schema{
	Fields: []presentation.Field{
		{Name: "derived_from", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "description", Kind: presentation.Primitive, Type: presentation.StringPrimitive},
		{Name: "properties", Kind: presentation.ObjectDict, New: newPropertySchema},
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
