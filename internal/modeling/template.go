package modeling

import (
	"strings"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Unbounded marks an occurrence upper bound with no limit.
const Unbounded = -1

// Template is the type-resolved deployment template derived from a
// presentation. It is built once by derivation and immutable afterwards.
type Template struct {
	Description string
	Version     string

	Inputs  *collections.OrderedMap // name -> *Parameter
	Outputs *collections.OrderedMap // name -> *Parameter

	NodeTemplates   *collections.OrderedMap // name -> *NodeTemplate
	GroupTemplates  *collections.OrderedMap // name -> *GroupTemplate
	PolicyTemplates *collections.OrderedMap // name -> *PolicyTemplate

	// Operations are the top-level workflows.
	Operations *collections.OrderedMap // name -> *Operation

	NodeTypes          *TypeIndex
	RelationshipTypes  *TypeIndex
	CapabilityTypes    *TypeIndex
	DataTypes          *TypeIndex
	ArtifactTypes      *TypeIndex
	PolicyTypes        *TypeIndex
	PolicyTriggerTypes *TypeIndex
	GroupTypes         *TypeIndex
	InterfaceTypes     *TypeIndex

	// Profile constants driving containment, hosting, and scaling.
	ComputeTypeName       string
	ContainedInTypeName   string
	ScalingPolicyTypeName string
}

// NewTemplate returns an empty template with initialized containers.
func NewTemplate() *Template {
	return &Template{
		Inputs:             collections.NewOrderedMap(),
		Outputs:            collections.NewOrderedMap(),
		NodeTemplates:      collections.NewOrderedMap(),
		GroupTemplates:     collections.NewOrderedMap(),
		PolicyTemplates:    collections.NewOrderedMap(),
		Operations:         collections.NewOrderedMap(),
		NodeTypes:          NewTypeIndex("node"),
		RelationshipTypes:  NewTypeIndex("relationship"),
		CapabilityTypes:    NewTypeIndex("capability"),
		DataTypes:          NewTypeIndex("data"),
		ArtifactTypes:      NewTypeIndex("artifact"),
		PolicyTypes:        NewTypeIndex("policy"),
		PolicyTriggerTypes: NewTypeIndex("policy trigger"),
		GroupTypes:         NewTypeIndex("group"),
		InterfaceTypes:     NewTypeIndex("interface"),
	}
}

// Parameter is a named input/output/property holder.
type Parameter struct {
	Name        string
	TypeName    string
	Description string
	Value       *Value
}

// NodeTemplate is one fully-derived node template: its properties,
// interfaces, requirements, and capabilities reflect the whole type
// hierarchy with the template's own assignments overlaid.
type NodeTemplate struct {
	Name        string
	TypeName    string
	Description string

	Properties   *collections.OrderedMap // name -> *Value
	Interfaces   *collections.OrderedMap // name -> *Interface
	Requirements []*Requirement
	Capabilities *collections.OrderedMap // name -> *Capability

	DefaultInstances int
	MinInstances     int
	MaxInstances     int // Unbounded when no limit

	Locator *reading.Locator
}

// NewNodeTemplate returns a node template with initialized containers and
// scaling defaults of one instance.
func NewNodeTemplate(name, typeName string) *NodeTemplate {
	return &NodeTemplate{
		Name:             name,
		TypeName:         typeName,
		Properties:       collections.NewOrderedMap(),
		Interfaces:       collections.NewOrderedMap(),
		Capabilities:     collections.NewOrderedMap(),
		DefaultInstances: 1,
		MinInstances:     0,
		MaxInstances:     Unbounded,
	}
}

// Requirement is a declared dependency of a node template. At most one of
// TargetNodeTemplateName and TargetNodeTypeName is set; satisfaction
// resolves the latter to a concrete instance. A requirement with neither
// has no candidate targets.
type Requirement struct {
	Name                   string
	TargetNodeTemplateName string
	TargetNodeTypeName     string
	// TargetCapabilityName names a capability or a capability type on the
	// target.
	TargetCapabilityName string
	Relationship         *RelationshipTemplate
	Locator              *reading.Locator
}

// RelationshipTemplate describes the relationship a requirement
// establishes when satisfied.
type RelationshipTemplate struct {
	TypeName         string
	Properties       *collections.OrderedMap // name -> *Value
	SourceInterfaces *collections.OrderedMap // name -> *Interface
	TargetInterfaces *collections.OrderedMap // name -> *Interface
}

// NewRelationshipTemplate returns a relationship template with initialized
// containers.
func NewRelationshipTemplate(typeName string) *RelationshipTemplate {
	return &RelationshipTemplate{
		TypeName:         typeName,
		Properties:       collections.NewOrderedMap(),
		SourceInterfaces: collections.NewOrderedMap(),
		TargetInterfaces: collections.NewOrderedMap(),
	}
}

// Capability is a lifted capability definition: type, properties, and
// occurrence bounds on incoming relationships.
type Capability struct {
	Name             string
	TypeName         string
	Properties       *collections.OrderedMap // name -> *Value
	MinOccurrences   int
	MaxOccurrences   int // Unbounded when no limit
	ValidSourceTypes []string
}

// NewCapability returns a capability with open occurrence bounds.
func NewCapability(name, typeName string) *Capability {
	return &Capability{
		Name:           name,
		TypeName:       typeName,
		Properties:     collections.NewOrderedMap(),
		MinOccurrences: 0,
		MaxOccurrences: Unbounded,
	}
}

// Interface is a named group of operations.
type Interface struct {
	Name       string
	Inputs     *collections.OrderedMap // name -> *Value
	Operations *collections.OrderedMap // name -> *Operation
}

// NewInterface returns an interface with initialized containers.
func NewInterface(name string) *Interface {
	return &Interface{
		Name:       name,
		Inputs:     collections.NewOrderedMap(),
		Operations: collections.NewOrderedMap(),
	}
}

// Operation is one operation of an interface, or a top-level workflow.
type Operation struct {
	Name           string
	Implementation string
	Executor       string
	MaxRetries     *int
	RetryInterval  *int
	Inputs         *collections.OrderedMap // name -> *Value
}

// NewOperation returns an operation with initialized inputs.
func NewOperation(name string) *Operation {
	return &Operation{Name: name, Inputs: collections.NewOrderedMap()}
}

// Plugin returns the plugin prefix of the implementation: everything up to
// the first dot. Empty implementation yields "".
func (o *Operation) Plugin() string {
	if i := strings.IndexByte(o.Implementation, '.'); i >= 0 {
		return o.Implementation[:i]
	}
	return ""
}

// OperationName returns the implementation with the plugin prefix
// stripped.
func (o *Operation) OperationName() string {
	if i := strings.IndexByte(o.Implementation, '.'); i >= 0 {
		return o.Implementation[i+1:]
	}
	return o.Implementation
}

// GroupTemplate names member node templates and nested groups.
type GroupTemplate struct {
	Name        string
	TypeName    string
	Properties  *collections.OrderedMap // name -> *Value
	Interfaces  *collections.OrderedMap // name -> *Interface
	MemberNodeTemplateNames  []string
	MemberGroupTemplateNames []string
	Locator     *reading.Locator
}

// NewGroupTemplate returns a group template with initialized containers.
func NewGroupTemplate(name, typeName string) *GroupTemplate {
	return &GroupTemplate{
		Name:       name,
		TypeName:   typeName,
		Properties: collections.NewOrderedMap(),
		Interfaces: collections.NewOrderedMap(),
	}
}

// PolicyTemplate applies a policy type to target node templates or groups.
type PolicyTemplate struct {
	Name                     string
	TypeName                 string
	Properties               *collections.OrderedMap // name -> *Value
	TargetNodeTemplateNames  []string
	TargetGroupTemplateNames []string
	Locator                  *reading.Locator
}

// NewPolicyTemplate returns a policy template with initialized containers.
func NewPolicyTemplate(name, typeName string) *PolicyTemplate {
	return &PolicyTemplate{
		Name:       name,
		TypeName:   typeName,
		Properties: collections.NewOrderedMap(),
	}
}

// MergeOperation overlays a template-provided operation onto a type-defined
// one, field by field: set fields of the override win; unset fields
// inherit. Inputs union-merge with override entries winning.
func MergeOperation(base, override *Operation) *Operation {
	if base == nil && override == nil {
		return nil
	}
	merged := NewOperation("")
	if base != nil {
		merged.Name = base.Name
		merged.Implementation = base.Implementation
		merged.Executor = base.Executor
		merged.MaxRetries = base.MaxRetries
		merged.RetryInterval = base.RetryInterval
		merged.Inputs.Merge(base.Inputs, false)
	}
	if override != nil {
		if merged.Name == "" {
			merged.Name = override.Name
		}
		if override.Implementation != "" {
			merged.Implementation = override.Implementation
		}
		if override.Executor != "" {
			merged.Executor = override.Executor
		}
		if override.MaxRetries != nil {
			merged.MaxRetries = override.MaxRetries
		}
		if override.RetryInterval != nil {
			merged.RetryInterval = override.RetryInterval
		}
		merged.Inputs.Merge(override.Inputs, true)
	}
	return merged
}

// MergeInterface overlays a template-provided interface onto a type-defined
// one, merging every operation field by field. Operations only the type or
// only the template declares survive untouched.
func MergeInterface(base, override *Interface) *Interface {
	name := ""
	if base != nil {
		name = base.Name
	} else if override != nil {
		name = override.Name
	}
	merged := NewInterface(name)
	if base != nil {
		merged.Inputs.Merge(base.Inputs, false)
		base.Operations.Each(func(opName string, v any) bool {
			merged.Operations.Set(opName, v)
			return true
		})
	}
	if override != nil {
		merged.Inputs.Merge(override.Inputs, true)
		override.Operations.Each(func(opName string, v any) bool {
			baseOp, _ := merged.Operations.Lookup(opName).(*Operation)
			merged.Operations.Set(opName, MergeOperation(baseOp, v.(*Operation)))
			return true
		})
	}
	return merged
}

// Validate checks template-level invariants: referenced type names exist
// and no type hierarchy contains a cycle.
func (t *Template) Validate(ctx *Context) {
	for _, x := range []*TypeIndex{
		t.NodeTypes, t.RelationshipTypes, t.CapabilityTypes, t.DataTypes,
		t.ArtifactTypes, t.PolicyTypes, t.PolicyTriggerTypes, t.GroupTypes,
		t.InterfaceTypes,
	} {
		x.ValidateAcyclic(ctx)
	}
	t.NodeTemplates.Each(func(name string, v any) bool {
		nt := v.(*NodeTemplate)
		if nt.TypeName != "" && !t.NodeTypes.Has(nt.TypeName) {
			issue := validation.Issue{
				Level:   validation.BetweenTypes,
				Message: "unknown node type \"" + nt.TypeName + "\" in node template \"" + name + "\"",
			}
			if nt.Locator != nil {
				issue.Location = nt.Locator.Location
				issue.Line = nt.Locator.Line
				issue.Column = nt.Locator.Column
			}
			ctx.Reporter.Report(issue)
		}
		return true
	})
}
