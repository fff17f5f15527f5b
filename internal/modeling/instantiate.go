package modeling

import (
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Instantiate expands the template into a deployment plan: node instances
// in containment order, scaling-group expansion, and group instances.
// Requirement satisfaction and value coercion run as separate passes on
// the returned plan. Returns nil when the containment graph is cyclic.
func (t *Template) Instantiate(ctx *Context) *Plan {
	order, ok := t.containmentOrder(ctx)
	if !ok {
		return nil
	}

	plan := &Plan{
		Description:   t.Description,
		Version:       t.Version,
		Inputs:        collections.NewOrderedMap(),
		Outputs:       collections.NewOrderedMap(),
		NodeInstances: collections.NewOrderedMap(),
		Groups:        collections.NewOrderedMap(),
		Policies:      collections.NewOrderedMap(),
		ScalingGroups: collections.NewOrderedMap(),
		Operations:    collections.NewOrderedMap(),
		Template:      t,
		roundRobin:    make(map[string]int),
	}

	t.Inputs.Each(func(name string, v any) bool {
		plan.Inputs.Set(name, cloneParameter(v.(*Parameter)))
		return true
	})
	t.Outputs.Each(func(name string, v any) bool {
		plan.Outputs.Set(name, cloneParameter(v.(*Parameter)))
		return true
	})
	t.Operations.Each(func(name string, v any) bool {
		plan.Operations.Set(name, MergeOperation(v.(*Operation), nil))
		return true
	})

	counts := t.expandScalingGroups(ctx, plan)

	suffixes := make(map[string]bool)
	for _, name := range order {
		nt := t.NodeTemplates.Lookup(name).(*NodeTemplate)
		count := nt.DefaultInstances
		if c, ok := counts[name]; ok {
			count = c
		}
		for i := 0; i < count; i++ {
			inst := t.newInstance(nt, suffixes)
			plan.NodeInstances.Set(inst.ID, inst)
		}
	}

	t.instantiateGroups(ctx, plan)

	t.PolicyTemplates.Each(func(name string, v any) bool {
		pt := v.(*PolicyTemplate)
		clone := NewPolicyTemplate(name, pt.TypeName)
		clone.Properties = pt.Properties.Clone()
		clone.TargetNodeTemplateNames = append([]string(nil), pt.TargetNodeTemplateNames...)
		clone.TargetGroupTemplateNames = append([]string(nil), pt.TargetGroupTemplateNames...)
		plan.Policies.Set(name, clone)
		return true
	})

	return plan
}

// containmentOrder topologically sorts node templates so that containment
// targets instantiate before the templates they host. A contained_in cycle
// records an issue and aborts.
func (t *Template) containmentOrder(ctx *Context) ([]string, bool) {
	g := simple.NewDirectedGraph()
	ids := make(map[string]int64)
	names := make(map[int64]string)

	var id int64
	t.NodeTemplates.Each(func(name string, _ any) bool {
		ids[name] = id
		names[id] = name
		g.AddNode(simple.Node(id))
		id++
		return true
	})

	t.NodeTemplates.Each(func(name string, v any) bool {
		nt := v.(*NodeTemplate)
		for _, req := range nt.Requirements {
			if req.Relationship == nil || req.TargetNodeTemplateName == "" {
				continue
			}
			if t.ContainedInTypeName == "" ||
				!t.RelationshipTypes.IsDescendant(t.ContainedInTypeName, req.Relationship.TypeName) {
				continue
			}
			target, ok := ids[req.TargetNodeTemplateName]
			if !ok || target == ids[name] {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(target), simple.Node(ids[name])))
		}
		return true
	})

	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		ctx.Reporter.Reportf(validation.BetweenTypes, "contained_in cycle among node templates")
		return nil, false
	}
	order := make([]string, 0, len(sorted))
	for _, n := range sorted {
		order = append(order, names[n.ID()])
	}
	return order, true
}

// newInstance materializes one instance of a node template, copying
// resolved properties, interfaces, and capabilities.
func (t *Template) newInstance(nt *NodeTemplate, suffixes map[string]bool) *NodeInstance {
	inst := &NodeInstance{
		ID:           nt.Name + "_" + newSuffix(suffixes),
		TemplateName: nt.Name,
		Properties:   cloneValues(nt.Properties),
		Interfaces:   cloneInterfaces(nt.Interfaces),
		Capabilities: collections.NewOrderedMap(),
	}
	nt.Capabilities.Each(func(name string, v any) bool {
		def := v.(*Capability)
		clone := NewCapability(def.Name, def.TypeName)
		clone.Properties = cloneValues(def.Properties)
		clone.MinOccurrences = def.MinOccurrences
		clone.MaxOccurrences = def.MaxOccurrences
		clone.ValidSourceTypes = append([]string(nil), def.ValidSourceTypes...)
		inst.Capabilities.Set(name, &CapabilityInstance{Definition: clone})
		return true
	})
	return inst
}

// newSuffix returns a short token unique within the plan.
func newSuffix(seen map[string]bool) string {
	for {
		s := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
		if !seen[s] {
			seen[s] = true
			return s
		}
	}
}

// expandScalingGroups materializes a scaling group for every group a
// scaling policy targets and returns the per-template instance counts the
// policies dictate.
func (t *Template) expandScalingGroups(ctx *Context, plan *Plan) map[string]int {
	counts := make(map[string]int)
	t.PolicyTemplates.Each(func(_ string, v any) bool {
		pt := v.(*PolicyTemplate)
		if t.ScalingPolicyTypeName == "" ||
			!t.PolicyTypes.IsDescendant(t.ScalingPolicyTypeName, pt.TypeName) {
			return true
		}
		def := intProperty(ctx, pt.Properties, "default_instances", 1)
		min := intProperty(ctx, pt.Properties, "min_instances", 0)
		max := intProperty(ctx, pt.Properties, "max_instances", Unbounded)
		for _, groupName := range pt.TargetGroupTemplateNames {
			gt, _ := t.GroupTemplates.Lookup(groupName).(*GroupTemplate)
			if gt == nil {
				ctx.Reporter.Reportf(validation.BetweenTypes,
					"scaling policy %q targets unknown group %q", pt.Name, groupName)
				continue
			}
			sg := &ScalingGroup{
				Name:             groupName,
				Members:          append([]string(nil), gt.MemberNodeTemplateNames...),
				Properties:       pt.Properties.Clone(),
				CurrentInstances: def,
				MinInstances:     min,
				MaxInstances:     max,
				DefaultInstances: def,
			}
			plan.ScalingGroups.Set(groupName, sg)
			for _, member := range gt.MemberNodeTemplateNames {
				counts[member] = def
			}
		}
		return true
	})
	return counts
}

func intProperty(ctx *Context, props *collections.OrderedMap, name string, def int) int {
	v, ok := props.Get(name)
	if !ok {
		return def
	}
	val, _ := v.(*Value)
	switch n := val.Coerce(ctx, Resolution{}).(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return def
	}
}

// instantiateGroups emits a group instance per group template. Members are
// the instance ids of member node templates; nested group members are
// flattened one level. Only members whose template declares no containment
// requirement are listed, unless the legacy switch is on.
func (t *Template) instantiateGroups(ctx *Context, plan *Plan) {
	t.GroupTemplates.Each(func(name string, v any) bool {
		gt := v.(*GroupTemplate)
		group := &Group{
			Name:       name,
			TypeName:   gt.TypeName,
			Properties: cloneValues(gt.Properties),
		}
		memberTemplates := append([]string(nil), gt.MemberNodeTemplateNames...)
		for _, nested := range gt.MemberGroupTemplateNames {
			ngt, _ := t.GroupTemplates.Lookup(nested).(*GroupTemplate)
			if ngt == nil {
				ctx.Reporter.Reportf(validation.BetweenTypes,
					"group %q lists unknown nested group %q", name, nested)
				continue
			}
			memberTemplates = append(memberTemplates, ngt.MemberNodeTemplateNames...)
		}
		for _, member := range memberTemplates {
			nt, _ := t.NodeTemplates.Lookup(member).(*NodeTemplate)
			if nt == nil {
				ctx.Reporter.Reportf(validation.BetweenTypes,
					"group %q lists unknown node template %q", name, member)
				continue
			}
			if !ctx.LegacyGroupMembers && t.isContained(nt) {
				continue
			}
			for _, inst := range plan.InstancesOf(member) {
				group.MemberIDs = append(group.MemberIDs, inst.ID)
			}
		}
		plan.Groups.Set(name, group)
		return true
	})
}

// isContained reports whether a node template declares a contained_in
// requirement.
func (t *Template) isContained(nt *NodeTemplate) bool {
	for _, req := range nt.Requirements {
		if req.Relationship != nil && t.ContainedInTypeName != "" &&
			t.RelationshipTypes.IsDescendant(t.ContainedInTypeName, req.Relationship.TypeName) {
			return true
		}
	}
	return false
}

func cloneParameter(p *Parameter) *Parameter {
	c := *p
	return &c
}

func cloneValues(values *collections.OrderedMap) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	values.Each(func(name string, v any) bool {
		out.Set(name, v)
		return true
	})
	return out
}
