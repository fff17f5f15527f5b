package modeling

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Plan is the instantiated deployment plan. It is mutated only by the
// satisfaction and value-coercion passes after instantiation.
type Plan struct {
	Description string
	Version     string

	Inputs  *collections.OrderedMap // name -> *Parameter
	Outputs *collections.OrderedMap // name -> *Parameter

	NodeInstances *collections.OrderedMap // id -> *NodeInstance, creation order
	Groups        *collections.OrderedMap // name -> *Group
	Policies      *collections.OrderedMap // name -> *PolicyTemplate
	ScalingGroups *collections.OrderedMap // name -> *ScalingGroup
	Operations    *collections.OrderedMap // workflows: name -> *Operation

	Template *Template

	// roundRobin tracks the next target instance per target template for
	// requirement satisfaction.
	roundRobin map[string]int
}

// NodeInstance is one instantiated node.
type NodeInstance struct {
	ID           string
	TemplateName string

	Properties    *collections.OrderedMap // name -> *Value
	Interfaces    *collections.OrderedMap // name -> *Interface
	Capabilities  *collections.OrderedMap // name -> *CapabilityInstance
	Relationships []*RelationshipInstance
}

// CapabilityInstance pairs a lifted capability with its runtime incoming
// relationship count.
type CapabilityInstance struct {
	Definition  *Capability
	Occurrences int
}

// RelationshipInstance connects a node instance to a target instance.
type RelationshipInstance struct {
	Name                 string // requirement name
	TypeName             string
	TargetID             string
	TargetName           string // target template name
	TargetCapabilityName string

	Properties       *collections.OrderedMap
	SourceInterfaces *collections.OrderedMap
	TargetInterfaces *collections.OrderedMap
}

// Group is an instantiated group: member node instance ids.
type Group struct {
	Name       string
	TypeName   string
	Properties *collections.OrderedMap
	MemberIDs  []string
}

// ScalingGroup is the expansion of a scaling policy over a group template.
type ScalingGroup struct {
	Name             string
	Members          []string // member template names
	Properties       *collections.OrderedMap
	CurrentInstances int
	MinInstances     int
	MaxInstances     int // Unbounded when no limit
	DefaultInstances int
}

// InstancesOf returns the instances of a node template in creation order.
func (p *Plan) InstancesOf(templateName string) []*NodeInstance {
	var out []*NodeInstance
	p.NodeInstances.Each(func(_ string, v any) bool {
		inst := v.(*NodeInstance)
		if inst.TemplateName == templateName {
			out = append(out, inst)
		}
		return true
	})
	return out
}

// FirstInstanceOf returns the first instance of a node template, nil when
// there is none.
func (p *Plan) FirstInstanceOf(templateName string) *NodeInstance {
	insts := p.InstancesOf(templateName)
	if len(insts) == 0 {
		return nil
	}
	return insts[0]
}

// Instance returns the instance with the given id.
func (p *Plan) Instance(id string) *NodeInstance {
	v, _ := p.NodeInstances.Get(id)
	inst, _ := v.(*NodeInstance)
	return inst
}

// HostID returns the id of the nearest ancestor instance whose template
// type derives from the profile's Compute type, following contained_in
// relationships. A Compute instance is its own host. Empty when unhosted.
func (p *Plan) HostID(inst *NodeInstance) string {
	seen := make(map[string]bool)
	for inst != nil && !seen[inst.ID] {
		seen[inst.ID] = true
		nt, _ := p.Template.NodeTemplates.Lookup(inst.TemplateName).(*NodeTemplate)
		if nt != nil && p.Template.ComputeTypeName != "" &&
			p.Template.NodeTypes.IsDescendant(p.Template.ComputeTypeName, nt.TypeName) {
			return inst.ID
		}
		var next *NodeInstance
		for _, rel := range inst.Relationships {
			if p.Template.ContainedInTypeName != "" &&
				p.Template.RelationshipTypes.IsDescendant(p.Template.ContainedInTypeName, rel.TypeName) {
				next = p.Instance(rel.TargetID)
				break
			}
		}
		inst = next
	}
	return ""
}

// Validate checks plan invariants: every relationship target id and every
// group member id denotes an existing node instance.
func (p *Plan) Validate(ctx *Context) {
	p.NodeInstances.Each(func(id string, v any) bool {
		for _, rel := range v.(*NodeInstance).Relationships {
			if rel.TargetID != "" && p.Instance(rel.TargetID) == nil {
				ctx.Reporter.Reportf(validation.BetweenTypes,
					"relationship of node instance %q targets unknown instance %q", id, rel.TargetID)
			}
		}
		return true
	})
	p.Groups.Each(func(name string, v any) bool {
		for _, member := range v.(*Group).MemberIDs {
			if p.Instance(member) == nil {
				ctx.Reporter.Reportf(validation.BetweenTypes,
					"group %q lists unknown node instance %q", name, member)
			}
		}
		return true
	})
}

// SatisfyRequirements creates a relationship instance for every
// requirement of every node instance, or records an issue when no target
// can satisfy it. Relationship instances appear in requirement declaration
// order. Target selection prefers an instance sharing the source's host,
// then falls back to round-robin across the target's instances.
func (p *Plan) SatisfyRequirements(ctx *Context) {
	if p.roundRobin == nil {
		p.roundRobin = make(map[string]int)
	}
	p.NodeInstances.Each(func(_ string, v any) bool {
		inst := v.(*NodeInstance)
		nt, _ := p.Template.NodeTemplates.Lookup(inst.TemplateName).(*NodeTemplate)
		if nt == nil {
			return true
		}
		for _, req := range nt.Requirements {
			if p.satisfied(inst, req) {
				continue
			}
			p.satisfyOne(ctx, inst, req)
		}
		return true
	})
}

// satisfied reports whether a relationship for this requirement already
// exists, keeping satisfaction idempotent across repeated passes.
func (p *Plan) satisfied(inst *NodeInstance, req *Requirement) bool {
	for _, rel := range inst.Relationships {
		if rel.Name == req.Name {
			return true
		}
	}
	return false
}

func (p *Plan) satisfyOne(ctx *Context, inst *NodeInstance, req *Requirement) {
	candidates := p.candidateTargets(req)
	if len(candidates) == 0 {
		issue := validation.Issue{
			Level: validation.BetweenTypes,
			Message: fmt.Sprintf("requirement %q of node instance %q cannot be satisfied",
				req.Name, inst.ID),
		}
		if req.Locator != nil {
			issue.Location = req.Locator.Location
			issue.Line = req.Locator.Line
			issue.Column = req.Locator.Column
		}
		ctx.Reporter.Report(issue)
		return
	}

	target := p.pickTarget(inst, candidates)

	rel := &RelationshipInstance{
		Name:                 req.Name,
		TargetID:             target.ID,
		TargetName:           target.TemplateName,
		TargetCapabilityName: p.capabilityOn(target, req),
		Properties:           collections.NewOrderedMap(),
		SourceInterfaces:     collections.NewOrderedMap(),
		TargetInterfaces:     collections.NewOrderedMap(),
	}
	if req.Relationship != nil {
		rel.TypeName = req.Relationship.TypeName
		rel.Properties = req.Relationship.Properties.Clone()
		rel.SourceInterfaces = cloneInterfaces(req.Relationship.SourceInterfaces)
		rel.TargetInterfaces = cloneInterfaces(req.Relationship.TargetInterfaces)
	}
	inst.Relationships = append(inst.Relationships, rel)
}

// candidateTargets lists target instances: instances of the named target
// template, or of every template whose type derives from the target node
// type.
func (p *Plan) candidateTargets(req *Requirement) []*NodeInstance {
	if req.TargetNodeTemplateName != "" {
		return p.InstancesOf(req.TargetNodeTemplateName)
	}
	if req.TargetNodeTypeName == "" {
		return nil
	}
	var out []*NodeInstance
	p.NodeInstances.Each(func(_ string, v any) bool {
		inst := v.(*NodeInstance)
		nt, _ := p.Template.NodeTemplates.Lookup(inst.TemplateName).(*NodeTemplate)
		if nt != nil && p.Template.NodeTypes.IsDescendant(req.TargetNodeTypeName, nt.TypeName) {
			out = append(out, inst)
		}
		return true
	})
	return out
}

// pickTarget prefers a candidate hosted on the same Compute as the source,
// then round-robins across the candidates.
func (p *Plan) pickTarget(source *NodeInstance, candidates []*NodeInstance) *NodeInstance {
	if host := p.HostID(source); host != "" {
		for _, c := range candidates {
			if p.HostID(c) == host {
				return c
			}
		}
	}
	key := candidates[0].TemplateName
	i := p.roundRobin[key] % len(candidates)
	p.roundRobin[key] = i + 1
	return candidates[i]
}

// capabilityOn resolves the capability the requirement targets on the
// chosen instance: by capability name first, then by capability type.
func (p *Plan) capabilityOn(target *NodeInstance, req *Requirement) string {
	if req.TargetCapabilityName == "" {
		return ""
	}
	if target.Capabilities.Has(req.TargetCapabilityName) {
		return req.TargetCapabilityName
	}
	name := ""
	target.Capabilities.Each(func(capName string, v any) bool {
		ci := v.(*CapabilityInstance)
		if p.Template.CapabilityTypes.IsDescendant(req.TargetCapabilityName, ci.Definition.TypeName) {
			name = capName
			return false
		}
		return true
	})
	return name
}

// ValidateCapabilities recounts incoming relationships per capability and
// checks every count against the capability's occurrence bounds.
func (p *Plan) ValidateCapabilities(ctx *Context) {
	p.NodeInstances.Each(func(_ string, v any) bool {
		v.(*NodeInstance).Capabilities.Each(func(_ string, cv any) bool {
			cv.(*CapabilityInstance).Occurrences = 0
			return true
		})
		return true
	})
	p.NodeInstances.Each(func(_ string, v any) bool {
		for _, rel := range v.(*NodeInstance).Relationships {
			if rel.TargetCapabilityName == "" {
				continue
			}
			target := p.Instance(rel.TargetID)
			if target == nil {
				continue
			}
			if cv, ok := target.Capabilities.Get(rel.TargetCapabilityName); ok {
				cv.(*CapabilityInstance).Occurrences++
			}
		}
		return true
	})
	p.NodeInstances.Each(func(id string, v any) bool {
		v.(*NodeInstance).Capabilities.Each(func(capName string, cv any) bool {
			ci := cv.(*CapabilityInstance)
			if ci.Occurrences < ci.Definition.MinOccurrences {
				ctx.Reporter.Reportf(validation.BetweenTypes,
					"capability %q of node instance %q has %d incoming relationships, requires at least %d",
					capName, id, ci.Occurrences, ci.Definition.MinOccurrences)
			}
			if ci.Definition.MaxOccurrences != Unbounded && ci.Occurrences > ci.Definition.MaxOccurrences {
				ctx.Reporter.Reportf(validation.BetweenTypes,
					"capability %q of node instance %q has %d incoming relationships, allows at most %d",
					capName, id, ci.Occurrences, ci.Definition.MaxOccurrences)
			}
			return true
		})
		return true
	})
}

// CoerceValues resolves every intrinsic function visible in the plan
// against (self instance, plan). Values that resolve are replaced with
// their literal results; unresolved functions stay for a later pass.
// The pass is idempotent.
func (p *Plan) CoerceValues(ctx *Context) {
	res := Resolution{Plan: p}
	coerceParams(ctx, res, p.Inputs)
	coerceParams(ctx, res, p.Outputs)
	coerceOperations(ctx, res, p.Operations)
	p.NodeInstances.Each(func(_ string, v any) bool {
		inst := v.(*NodeInstance)
		self := Resolution{Plan: p, Self: inst}
		coerceValueMap(ctx, self, inst.Properties)
		coerceInterfaces(ctx, self, inst.Interfaces)
		inst.Capabilities.Each(func(_ string, cv any) bool {
			coerceValueMap(ctx, self, cv.(*CapabilityInstance).Definition.Properties)
			return true
		})
		for _, rel := range inst.Relationships {
			coerceValueMap(ctx, self, rel.Properties)
			coerceInterfaces(ctx, self, rel.SourceInterfaces)
			coerceInterfaces(ctx, self, rel.TargetInterfaces)
		}
		return true
	})
}

func coerceParams(ctx *Context, res Resolution, params *collections.OrderedMap) {
	params.Each(func(_ string, v any) bool {
		param := v.(*Parameter)
		if out, ok := param.Value.CoerceChecked(ctx, res); ok {
			param.Value = &Value{Literal: out}
		}
		return true
	})
}

func coerceValueMap(ctx *Context, res Resolution, values *collections.OrderedMap) {
	values.Each(func(key string, v any) bool {
		if val, ok := v.(*Value); ok {
			if out, resolved := val.CoerceChecked(ctx, res); resolved {
				values.Set(key, &Value{Literal: out})
			}
		}
		return true
	})
}

func coerceInterfaces(ctx *Context, res Resolution, interfaces *collections.OrderedMap) {
	interfaces.Each(func(_ string, v any) bool {
		iface := v.(*Interface)
		coerceValueMap(ctx, res, iface.Inputs)
		coerceOperations(ctx, res, iface.Operations)
		return true
	})
}

func coerceOperations(ctx *Context, res Resolution, ops *collections.OrderedMap) {
	ops.Each(func(_ string, v any) bool {
		coerceValueMap(ctx, res, v.(*Operation).Inputs)
		return true
	})
}

func cloneInterfaces(interfaces *collections.OrderedMap) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	interfaces.Each(func(name string, v any) bool {
		iface := v.(*Interface)
		c := NewInterface(name)
		c.Inputs = iface.Inputs.Clone()
		iface.Operations.Each(func(opName string, ov any) bool {
			c.Operations.Set(opName, MergeOperation(ov.(*Operation), nil))
			return true
		})
		out.Set(name, c)
		return true
	})
	return out
}
