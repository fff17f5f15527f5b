package cloudify

import (
	"strconv"
	"strings"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/consumption"
	"github.com/duyamin/aria-ng/internal/modeling"
	"github.com/duyamin/aria-ng/internal/validation"
)

// ClassicPlan converts the instantiated plan into the classic Cloudify
// deployment plan shape, the ordered mapping the orchestrator consumes.
type ClassicPlan struct{}

func (ClassicPlan) Name() string { return "classic plan" }

func (ClassicPlan) Consume(c *consumption.Context) {
	if c.Modeling.Plan == nil {
		c.Reporter.Reportf(validation.Platform, "classic plan consumer: missing deployment plan")
		return
	}
	blueprint, _ := c.Presentation.Presenter.(*Blueprint)
	if blueprint == nil {
		c.Reporter.Reportf(validation.Platform, "classic plan consumer: presenter is not a Cloudify blueprint")
		return
	}
	c.Modeling.ClassicPlan = ConvertPlan(blueprint, c.Modeling.Template, c.Modeling.Plan)
}

// ConvertPlan builds the classic plan mapping from the derived template
// and instantiated plan.
func ConvertPlan(blueprint *Blueprint, t *modeling.Template, plan *modeling.Plan) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("version", convertVersion(plan.Version))
	r.Set("description", plan.Description)
	r.Set("inputs", paramValues(plan.Inputs))
	r.Set("outputs", paramValues(plan.Outputs))

	workflows := collections.NewOrderedMap()
	plan.Operations.Each(func(name string, v any) bool {
		workflows.Set(name, convertWorkflow(v.(*modeling.Operation)))
		return true
	})
	r.Set("workflows", workflows)

	plugins := convertPlugins(blueprint)
	r.Set("deployment_plugins_to_install", []any{})
	r.Set("workflow_plugins_to_install", pluginsForOperations(plugins, plan.Operations, CentralDeploymentAgent))

	instances := make([]any, 0, plan.NodeInstances.Len())
	plan.NodeInstances.Each(func(_ string, v any) bool {
		instances = append(instances, convertNodeInstance(plan, v.(*modeling.NodeInstance)))
		return true
	})
	r.Set("node_instances", instances)

	nodes := make([]any, 0, t.NodeTemplates.Len())
	deploymentPlugins := make([]any, 0)
	seenPlugins := make(map[string]bool)
	t.NodeTemplates.Each(func(_ string, v any) bool {
		node, nodePlugins := convertNode(t, v.(*modeling.NodeTemplate), plugins)
		nodes = append(nodes, node)
		for _, pl := range nodePlugins {
			name, _ := pl.(*collections.OrderedMap).Lookup("name").(string)
			if !seenPlugins[name] {
				seenPlugins[name] = true
				deploymentPlugins = append(deploymentPlugins, pl)
			}
		}
		return true
	})
	r.Set("nodes", nodes)
	r.Set("deployment_plugins_to_install", deploymentPlugins)

	groups := collections.NewOrderedMap()
	plan.Groups.Each(func(name string, v any) bool {
		g := v.(*modeling.Group)
		entry := collections.NewOrderedMap()
		entry.Set("members", anyStrings(g.MemberIDs))
		groups.Set(name, entry)
		return true
	})
	r.Set("groups", groups)

	scalingGroups := collections.NewOrderedMap()
	plan.ScalingGroups.Each(func(name string, v any) bool {
		sg := v.(*modeling.ScalingGroup)
		entry := collections.NewOrderedMap()
		entry.Set("members", anyStrings(sg.Members))
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
	plan.Policies.Each(func(name string, v any) bool {
		pt := v.(*modeling.PolicyTemplate)
		entry := collections.NewOrderedMap()
		entry.Set("type", pt.TypeName)
		entry.Set("targets", anyStrings(pt.TargetGroupTemplateNames))
		props := collections.NewOrderedMap()
		pt.Properties.Each(func(pn string, pv any) bool {
			if value, ok := pv.(*modeling.Value); ok {
				props.Set(pn, value.AsRaw())
			}
			return true
		})
		entry.Set("properties", props)
		policies.Set(name, entry)
		return true
	})
	r.Set("policies", policies)

	policyTypes := collections.NewOrderedMap()
	blueprint.PolicyTypes().Each(func(name string, v any) bool {
		pt := v.(*PolicyType)
		entry := collections.NewOrderedMap()
		entry.Set("source", pt.Source())
		entry.Set("properties", schemaDefaults(pt.Properties()))
		policyTypes.Set(name, entry)
		return true
	})
	r.Set("policy_types", policyTypes)

	policyTriggers := collections.NewOrderedMap()
	blueprint.PolicyTriggers().Each(func(name string, v any) bool {
		tr := v.(*PolicyTrigger)
		entry := collections.NewOrderedMap()
		entry.Set("source", tr.Source())
		entry.Set("parameters", schemaDefaults(tr.GetObjectDict(tr, "parameters")))
		policyTriggers.Set(name, entry)
		return true
	})
	r.Set("policy_triggers", policyTriggers)

	relationships := collections.NewOrderedMap()
	t.RelationshipTypes.IterDescendants(func(tp *modeling.Type) {
		entry := collections.NewOrderedMap()
		entry.Set("name", tp.Name)
		if tp.Parent != "" {
			entry.Set("derived_from", tp.Parent)
		}
		relationships.Set(tp.Name, entry)
	})
	r.Set("relationships", relationships)

	return r
}

func convertVersion(raw string) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("definitions_name", "cloudify_dsl")
	version := collections.NewOrderedMap()
	// cloudify_dsl_1_3 carries its version as the trailing digits.
	var digits []any
	for _, part := range strings.Split(raw, "_") {
		if n, err := strconv.Atoi(part); err == nil {
			digits = append(digits, n)
		}
	}
	version.Set("number", digits)
	r.Set("definitions_version", version)
	return r
}

// convertWorkflow splits the mapping into plugin and operation halves and
// fills the default executor.
func convertWorkflow(op *modeling.Operation) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("plugin", op.Plugin())
	r.Set("operation", op.OperationName())
	executor := op.Executor
	if executor == "" {
		executor = CentralDeploymentAgent
	}
	r.Set("executor", executor)
	r.Set("parameters", valueMap(op.Inputs))
	r.Set("has_intrinsic_functions", false)
	return r
}

func convertNodeInstance(plan *modeling.Plan, inst *modeling.NodeInstance) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("id", inst.ID)
	r.Set("name", inst.TemplateName)
	if host := plan.HostID(inst); host != "" {
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
	plan.ScalingGroups.Each(func(name string, v any) bool {
		for _, member := range v.(*modeling.ScalingGroup).Members {
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
	return r
}

// convertNode renders a node template and collects the declared plugins
// its operations reference, whatever the operations' executor.
func convertNode(t *modeling.Template, nt *modeling.NodeTemplate, plugins *collections.OrderedMap) (*collections.OrderedMap, []any) {
	r := collections.NewOrderedMap()
	r.Set("id", nt.Name)
	r.Set("name", nt.Name)
	r.Set("type", nt.TypeName)
	hierarchy := make([]any, 0)
	for _, tp := range t.NodeTypes.Hierarchy(nt.TypeName) {
		hierarchy = append(hierarchy, tp.Name)
	}
	r.Set("type_hierarchy", hierarchy)
	r.Set("properties", valueMap(nt.Properties))

	operations := collections.NewOrderedMap()
	var nodePlugins []any
	seen := make(map[string]bool)
	nt.Interfaces.Each(func(ifaceName string, v any) bool {
		iface := v.(*modeling.Interface)
		iface.Operations.Each(func(opName string, ov any) bool {
			op := ov.(*modeling.Operation)
			entry := convertOperation(op)
			// Operations address as both "interface.op" and bare "op";
			// the qualified name wins on collision.
			if !operations.Has(opName) {
				operations.Set(opName, entry)
			}
			operations.Set(ifaceName+"."+opName, entry)
			if plugin := op.Plugin(); plugin != "" && plugins.Has(plugin) && !seen[plugin] {
				seen[plugin] = true
				nodePlugins = append(nodePlugins, plugins.Lookup(plugin))
			}
			return true
		})
		return true
	})
	r.Set("operations", operations)

	rels := make([]any, 0, len(nt.Requirements))
	for _, req := range nt.Requirements {
		if req.Relationship == nil {
			continue
		}
		entry := collections.NewOrderedMap()
		entry.Set("type", req.Relationship.TypeName)
		entry.Set("target_id", req.TargetNodeTemplateName)
		typeHierarchy := make([]any, 0)
		for _, tp := range t.RelationshipTypes.Hierarchy(req.Relationship.TypeName) {
			typeHierarchy = append(typeHierarchy, tp.Name)
		}
		entry.Set("type_hierarchy", typeHierarchy)
		entry.Set("properties", valueMap(req.Relationship.Properties))
		entry.Set("source_interfaces", interfaceMap(req.Relationship.SourceInterfaces))
		entry.Set("target_interfaces", interfaceMap(req.Relationship.TargetInterfaces))
		rels = append(rels, entry)
	}
	r.Set("relationships", rels)

	if len(nodePlugins) > 0 {
		r.Set("deployment_plugins_to_install", nodePlugins)
	}
	r.Set("plugins", nodePlugins)

	instances := collections.NewOrderedMap()
	instances.Set("deploy", nt.DefaultInstances)
	r.Set("instances", instances)
	return r, nodePlugins
}

func convertOperation(op *modeling.Operation) *collections.OrderedMap {
	r := collections.NewOrderedMap()
	r.Set("plugin", op.Plugin())
	r.Set("operation", op.OperationName())
	executor := op.Executor
	if executor == "" {
		executor = CentralDeploymentAgent
	}
	r.Set("executor", executor)
	r.Set("inputs", valueMap(op.Inputs))
	if op.MaxRetries != nil {
		r.Set("max_retries", *op.MaxRetries)
	}
	if op.RetryInterval != nil {
		r.Set("retry_interval", *op.RetryInterval)
	}
	r.Set("has_intrinsic_functions", hasFunctions(op.Inputs))
	return r
}

func convertPlugins(blueprint *Blueprint) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	blueprint.Plugins().Each(func(name string, v any) bool {
		pl := v.(*Plugin)
		entry := collections.NewOrderedMap()
		entry.Set("name", name)
		entry.Set("executor", pl.Executor())
		entry.Set("source", pl.Source())
		entry.Set("install", pl.Install())
		out.Set(name, entry)
		return true
	})
	return out
}

// pluginsForOperations collects the declared plugins that operations with
// the given executor reference.
func pluginsForOperations(plugins *collections.OrderedMap, ops *collections.OrderedMap, executor string) []any {
	out := make([]any, 0)
	seen := make(map[string]bool)
	ops.Each(func(_ string, v any) bool {
		op := v.(*modeling.Operation)
		opExecutor := op.Executor
		if opExecutor == "" {
			opExecutor = CentralDeploymentAgent
		}
		if opExecutor != executor {
			return true
		}
		plugin := op.Plugin()
		if plugin == "" || seen[plugin] || !plugins.Has(plugin) {
			return true
		}
		seen[plugin] = true
		out = append(out, plugins.Lookup(plugin))
		return true
	})
	return out
}

func paramValues(params *collections.OrderedMap) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	params.Each(func(name string, v any) bool {
		out.Set(name, v.(*modeling.Parameter).Value.AsRaw())
		return true
	})
	return out
}

func valueMap(values *collections.OrderedMap) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	values.Each(func(name string, v any) bool {
		if value, ok := v.(*modeling.Value); ok {
			out.Set(name, value.AsRaw())
		} else {
			out.Set(name, v)
		}
		return true
	})
	return out
}

func interfaceMap(interfaces *collections.OrderedMap) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	interfaces.Each(func(name string, v any) bool {
		iface := v.(*modeling.Interface)
		entry := collections.NewOrderedMap()
		iface.Operations.Each(func(opName string, ov any) bool {
			entry.Set(opName, convertOperation(ov.(*modeling.Operation)))
			return true
		})
		out.Set(name, entry)
		return true
	})
	return out
}

func schemaDefaults(props *collections.OrderedMap) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	props.Each(func(name string, v any) bool {
		if ps, ok := v.(*PropertySchema); ok {
			entry := collections.NewOrderedMap()
			if ps.HasDefault() {
				entry.Set("default", ps.Default())
			}
			out.Set(name, entry)
		}
		return true
	})
	return out
}

func hasFunctions(values *collections.OrderedMap) bool {
	found := false
	values.Each(func(_ string, v any) bool {
		if value, ok := v.(*modeling.Value); ok && containsFunction(value) {
			found = true
			return false
		}
		return true
	})
	return found
}

func containsFunction(v *modeling.Value) bool {
	if v == nil {
		return false
	}
	if v.Function != nil {
		return true
	}
	switch t := v.Literal.(type) {
	case *collections.OrderedMap:
		found := false
		t.Each(func(_ string, e any) bool {
			if nested, ok := e.(*modeling.Value); ok && containsFunction(nested) {
				found = true
				return false
			}
			return true
		})
		return found
	case []any:
		for _, e := range t {
			if nested, ok := e.(*modeling.Value); ok && containsFunction(nested) {
				return true
			}
		}
	}
	return false
}

func anyStrings(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
