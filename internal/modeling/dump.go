package modeling

import (
	"github.com/duyamin/aria-ng/internal/collections"
)

// AsRaw renders the derived template as an ordered raw tree.
func (t *Template) AsRaw() *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("description", t.Description)
	r.Set("inputs", paramsAsRaw(t.Inputs))
	r.Set("outputs", paramsAsRaw(t.Outputs))
	nodeTemplates := collections.NewOrderedMap()
	t.NodeTemplates.Each(func(name string, v any) bool {
		nodeTemplates.Set(name, nodeTemplateAsRaw(v.(*NodeTemplate)))
		return true
	})
	r.Set("node_templates", nodeTemplates)
	groups := collections.NewOrderedMap()
	t.GroupTemplates.Each(func(name string, v any) bool {
		gt := v.(*GroupTemplate)
		g := collections.NewOrderedMap()
		g.Set("type", gt.TypeName)
		g.Set("members", stringsAsRaw(append(append([]string(nil),
			gt.MemberNodeTemplateNames...), gt.MemberGroupTemplateNames...)))
		g.Set("properties", valuesAsRaw(gt.Properties))
		groups.Set(name, g)
		return true
	})
	r.Set("groups", groups)
	policies := collections.NewOrderedMap()
	t.PolicyTemplates.Each(func(name string, v any) bool {
		policies.Set(name, policyAsRaw(v.(*PolicyTemplate)))
		return true
	})
	r.Set("policies", policies)
	r.Set("workflows", operationsAsRaw(t.Operations))
	return r
}

// TypesAsRaw renders every type index root-to-leaf, for the --types dump.
func (t *Template) TypesAsRaw() *collections.OrderedMap {
	r := collections.NewOrderedMap()
	for _, x := range []*TypeIndex{
		t.NodeTypes, t.RelationshipTypes, t.CapabilityTypes, t.DataTypes,
		t.ArtifactTypes, t.PolicyTypes, t.PolicyTriggerTypes, t.GroupTypes,
		t.InterfaceTypes,
	} {
		if x.Len() == 0 {
			continue
		}
		section := collections.NewOrderedMap()
		x.IterDescendants(func(tp *Type) {
			entry := collections.NewOrderedMap()
			if tp.Parent != "" {
				entry.Set("derived_from", tp.Parent)
			}
			if tp.Description != "" {
				entry.Set("description", tp.Description)
			}
			section.Set(tp.Name, entry)
		})
		r.Set(x.Category+"_types", section)
	}
	return r
}

// AsRaw renders the plan in the canonical, profile-agnostic serialization:
// an ordered mapping with keys version, description, inputs, outputs,
// workflows, node_instances, nodes, groups, scaling_groups, policies,
// policy_types, policy_triggers, relationships.
func (p *Plan) AsRaw() *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("version", p.Version)
	r.Set("description", p.Description)
	r.Set("inputs", paramsAsRaw(p.Inputs))
	r.Set("outputs", paramsAsRaw(p.Outputs))
	r.Set("workflows", operationsAsRaw(p.Operations))

	instances := make([]any, 0, p.NodeInstances.Len())
	p.NodeInstances.Each(func(_ string, v any) bool {
		instances = append(instances, p.nodeInstanceAsRaw(v.(*NodeInstance)))
		return true
	})
	r.Set("node_instances", instances)

	nodes := make([]any, 0, p.Template.NodeTemplates.Len())
	p.Template.NodeTemplates.Each(func(_ string, v any) bool {
		nodes = append(nodes, nodeTemplateAsRaw(v.(*NodeTemplate)))
		return true
	})
	r.Set("nodes", nodes)

	groups := collections.NewOrderedMap()
	p.Groups.Each(func(name string, v any) bool {
		g := v.(*Group)
		entry := collections.NewOrderedMap()
		entry.Set("type", g.TypeName)
		entry.Set("members", stringsAsRaw(g.MemberIDs))
		entry.Set("properties", valuesAsRaw(g.Properties))
		groups.Set(name, entry)
		return true
	})
	r.Set("groups", groups)

	scalingGroups := collections.NewOrderedMap()
	p.ScalingGroups.Each(func(name string, v any) bool {
		sg := v.(*ScalingGroup)
		entry := collections.NewOrderedMap()
		entry.Set("members", stringsAsRaw(sg.Members))
		props := collections.NewOrderedMap()
		props.Set("current_instances", sg.CurrentInstances)
		props.Set("default_instances", sg.DefaultInstances)
		props.Set("min_instances", sg.MinInstances)
		props.Set("max_instances", sg.MaxInstances)
		entry.Set("properties", props)
		scalingGroups.Set(name, entry)
		return true
	})
	r.Set("scaling_groups", scalingGroups)

	policies := collections.NewOrderedMap()
	p.Policies.Each(func(name string, v any) bool {
		policies.Set(name, policyAsRaw(v.(*PolicyTemplate)))
		return true
	})
	r.Set("policies", policies)

	r.Set("policy_types", typeSectionAsRaw(p.Template.PolicyTypes))
	r.Set("policy_triggers", typeSectionAsRaw(p.Template.PolicyTriggerTypes))
	r.Set("relationships", typeSectionAsRaw(p.Template.RelationshipTypes))
	return r
}

func (p *Plan) nodeInstanceAsRaw(inst *NodeInstance) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("id", inst.ID)
	r.Set("name", inst.TemplateName)
	if host := p.HostID(inst); host != "" {
		r.Set("host_id", host)
	} else {
		r.Set("host_id", nil)
	}
	rels := make([]any, 0, len(inst.Relationships))
	for _, rel := range inst.Relationships {
		entry := collections.NewOrderedMap()
		entry.Set("type", rel.TypeName)
		entry.Set("target_id", rel.TargetID)
		entry.Set("target_name", rel.TargetName)
		rels = append(rels, entry)
	}
	r.Set("relationships", rels)
	sgs := make([]any, 0)
	p.ScalingGroups.Each(func(name string, v any) bool {
		for _, member := range v.(*ScalingGroup).Members {
			if member == inst.TemplateName {
				entry := collections.NewOrderedMap()
				entry.Set("name", name)
				sgs = append(sgs, entry)
				break
			}
		}
		return true
	})
	r.Set("scaling_groups", sgs)
	r.Set("properties", valuesAsRaw(inst.Properties))
	return r
}

func nodeTemplateAsRaw(nt *NodeTemplate) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("name", nt.Name)
	r.Set("type", nt.TypeName)
	r.Set("properties", valuesAsRaw(nt.Properties))
	interfaces := collections.NewOrderedMap()
	nt.Interfaces.Each(func(name string, v any) bool {
		interfaces.Set(name, interfaceAsRaw(v.(*Interface)))
		return true
	})
	r.Set("interfaces", interfaces)
	reqs := make([]any, 0, len(nt.Requirements))
	for _, req := range nt.Requirements {
		entry := collections.NewOrderedMap()
		entry.Set("name", req.Name)
		if req.TargetNodeTemplateName != "" {
			entry.Set("target", req.TargetNodeTemplateName)
		}
		if req.TargetNodeTypeName != "" {
			entry.Set("node_type", req.TargetNodeTypeName)
		}
		if req.TargetCapabilityName != "" {
			entry.Set("capability", req.TargetCapabilityName)
		}
		if req.Relationship != nil {
			entry.Set("relationship", req.Relationship.TypeName)
		}
		reqs = append(reqs, entry)
	}
	r.Set("requirements", reqs)
	capabilities := collections.NewOrderedMap()
	nt.Capabilities.Each(func(name string, v any) bool {
		cap := v.(*Capability)
		entry := collections.NewOrderedMap()
		entry.Set("type", cap.TypeName)
		entry.Set("properties", valuesAsRaw(cap.Properties))
		capabilities.Set(name, entry)
		return true
	})
	r.Set("capabilities", capabilities)
	instances := collections.NewOrderedMap()
	instances.Set("default", nt.DefaultInstances)
	instances.Set("min", nt.MinInstances)
	instances.Set("max", nt.MaxInstances)
	r.Set("instances", instances)
	return r
}

func policyAsRaw(pt *PolicyTemplate) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("type", pt.TypeName)
	r.Set("properties", valuesAsRaw(pt.Properties))
	targets := append(append([]string(nil), pt.TargetNodeTemplateNames...),
		pt.TargetGroupTemplateNames...)
	r.Set("targets", stringsAsRaw(targets))
	return r
}

func interfaceAsRaw(iface *Interface) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	if iface.Inputs.Len() > 0 {
		r.Set("inputs", valuesAsRaw(iface.Inputs))
	}
	iface.Operations.Each(func(name string, v any) bool {
		r.Set(name, operationAsRaw(v.(*Operation)))
		return true
	})
	return r
}

func operationAsRaw(op *Operation) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("implementation", op.Implementation)
	if op.Executor != "" {
		r.Set("executor", op.Executor)
	}
	if op.MaxRetries != nil {
		r.Set("max_retries", *op.MaxRetries)
	}
	if op.RetryInterval != nil {
		r.Set("retry_interval", *op.RetryInterval)
	}
	r.Set("inputs", valuesAsRaw(op.Inputs))
	return r
}

func operationsAsRaw(ops *collections.OrderedMap) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	ops.Each(func(name string, v any) bool {
		r.Set(name, operationAsRaw(v.(*Operation)))
		return true
	})
	return r
}

func paramsAsRaw(params *collections.OrderedMap) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	params.Each(func(name string, v any) bool {
		r.Set(name, v.(*Parameter).Value.AsRaw())
		return true
	})
	return r
}

func valuesAsRaw(values *collections.OrderedMap) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	values.Each(func(name string, v any) bool {
		if val, ok := v.(*Value); ok {
			r.Set(name, val.AsRaw())
		} else {
			r.Set(name, v)
		}
		return true
	})
	return r
}

func stringsAsRaw(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func typeSectionAsRaw(x *TypeIndex) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	x.IterDescendants(func(tp *Type) {
		entry := collections.NewOrderedMap()
		entry.Set("name", tp.Name)
		if tp.Parent != "" {
			entry.Set("derived_from", tp.Parent)
		}
		r.Set(tp.Name, entry)
	})
	return r
}
