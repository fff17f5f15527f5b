package cloudify

import (
	"fmt"
	"sort"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/modeling"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// Normative Cloudify names.
const (
	ComputeNodeName             = "cloudify.nodes.Compute"
	ContainedInRelationshipName = "cloudify.relationships.contained_in"
	ScalingPolicyName           = "cloudify.policies.scaling"
	CentralDeploymentAgent      = "central_deployment_agent"
	HostAgent                   = "host_agent"
)

// builtinNodeTypes is the minimal prelude every blueprint can rely on.
var builtinNodeTypes = map[string]string{
	"cloudify.nodes.Root":             "",
	"cloudify.nodes.Compute":          "cloudify.nodes.Root",
	"cloudify.nodes.SoftwareComponent": "cloudify.nodes.Root",
	"cloudify.nodes.WebServer":        "cloudify.nodes.SoftwareComponent",
	"cloudify.nodes.ApplicationModule": "cloudify.nodes.Root",
	"cloudify.nodes.DBMS":             "cloudify.nodes.SoftwareComponent",
}

var builtinRelationshipTypes = map[string]string{
	"cloudify.relationships.depends_on":   "",
	"cloudify.relationships.contained_in": "cloudify.relationships.depends_on",
	"cloudify.relationships.connected_to": "cloudify.relationships.depends_on",
}

var builtinPolicyTypes = map[string]string{
	"cloudify.policies.scaling": "",
}

// DeriveTemplate resolves the blueprint into a deployment template.
func (p *Blueprint) DeriveTemplate(mctx *modeling.Context) *modeling.Template {
	t := modeling.NewTemplate()
	t.Version = p.DefinitionsVersion()
	t.Description = p.Description()
	t.ComputeTypeName = ComputeNodeName
	t.ContainedInTypeName = ContainedInRelationshipName
	t.ScalingPolicyTypeName = ScalingPolicyName

	addBuiltins(t.NodeTypes, builtinNodeTypes)
	addBuiltins(t.RelationshipTypes, builtinRelationshipTypes)
	addBuiltins(t.PolicyTypes, builtinPolicyTypes)

	p.NodeTypes().Each(func(name string, v any) bool {
		nt := v.(*NodeType)
		t.NodeTypes.Add(&modeling.Type{
			Name: name, Parent: nt.DerivedFrom(), Payload: nt, Locator: nt.Locator(),
		})
		return true
	})
	p.RelationshipTypes().Each(func(name string, v any) bool {
		rt := v.(*RelationshipType)
		t.RelationshipTypes.Add(&modeling.Type{
			Name: name, Parent: rt.DerivedFrom(), Payload: rt, Locator: rt.Locator(),
		})
		return true
	})
	p.PolicyTypes().Each(func(name string, v any) bool {
		pt := v.(*PolicyType)
		t.PolicyTypes.Add(&modeling.Type{Name: name, Payload: pt, Locator: pt.Locator()})
		return true
	})
	p.PolicyTriggers().Each(func(name string, v any) bool {
		tr := v.(*PolicyTrigger)
		t.PolicyTriggerTypes.Add(&modeling.Type{Name: name, Payload: tr, Locator: tr.Locator()})
		return true
	})
	p.DataTypes().Each(func(name string, v any) bool {
		dt := v.(*DataType)
		t.DataTypes.Add(&modeling.Type{
			Name: name, Parent: dt.DerivedFrom(), Payload: dt, Locator: dt.Locator(),
		})
		return true
	})

	p.Inputs().Each(func(name string, v any) bool {
		t.Inputs.Set(name, deriveParameter(name, v.(*Parameter)))
		return true
	})
	p.Outputs().Each(func(name string, v any) bool {
		t.Outputs.Set(name, deriveParameter(name, v.(*Parameter)))
		return true
	})

	p.Workflows().Each(func(name string, v any) bool {
		wf := v.(*Workflow)
		op := modeling.NewOperation(name)
		op.Implementation = wf.Mapping()
		op.Executor = CentralDeploymentAgent
		wf.Parameters().Each(func(pn string, pv any) bool {
			ps := pv.(*PropertySchema)
			op.Inputs.Set(pn, modeling.ParseValue(ps.Default(), ps.Locator()))
			return true
		})
		t.Operations.Set(name, op)
		return true
	})

	p.NodeTemplates().Each(func(name string, v any) bool {
		t.NodeTemplates.Set(name, p.deriveNodeTemplate(mctx, t, name, v.(*NodeTemplate)))
		return true
	})

	p.Groups().Each(func(name string, v any) bool {
		g := v.(*Group)
		gt := modeling.NewGroupTemplate(name, "")
		gt.Locator = g.Locator()
		for _, member := range g.Members() {
			if p.Groups().Has(member) {
				gt.MemberGroupTemplateNames = append(gt.MemberGroupTemplateNames, member)
			} else {
				gt.MemberNodeTemplateNames = append(gt.MemberNodeTemplateNames, member)
			}
		}
		t.GroupTemplates.Set(name, gt)
		return true
	})

	p.Policies().Each(func(name string, v any) bool {
		pol := v.(*Policy)
		pt := modeling.NewPolicyTemplate(name, pol.Type())
		pt.Locator = pol.Locator()
		pt.TargetGroupTemplateNames = append([]string(nil), pol.Targets()...)
		pol.Properties().Each(func(pn string, pv any) bool {
			value := pv.(presentation.Presenter)
			pt.Properties.Set(pn, modeling.ParseValue(value.Raw(), value.Locator()))
			return true
		})
		t.PolicyTemplates.Set(name, pt)
		return true
	})

	return t
}

func addBuiltins(index *modeling.TypeIndex, builtins map[string]string) {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		index.Add(&modeling.Type{Name: name, Parent: builtins[name]})
	}
}

func deriveParameter(name string, param *Parameter) *modeling.Parameter {
	out := &modeling.Parameter{
		Name:        name,
		TypeName:    param.Type(),
		Description: param.GetString(param, "description"),
	}
	raw := param.Value()
	if raw == nil {
		raw = param.Default()
	}
	out.Value = modeling.ParseValue(raw, param.Locator())
	return out
}

// deriveNodeTemplate merges the type hierarchy's property schema and
// interfaces with the template's own assignments, then derives a
// requirement per relationship entry.
func (p *Blueprint) deriveNodeTemplate(mctx *modeling.Context, t *modeling.Template, name string, src *NodeTemplate) *modeling.NodeTemplate {
	nt := modeling.NewNodeTemplate(name, src.Type())
	nt.Locator = src.Locator()

	hierarchy := t.NodeTypes.Hierarchy(src.Type())

	// Property merge: schema defaults from the nearest ancestor, overlay
	// of the template's assignments, required check.
	schema := collections.NewOrderedMap()
	for _, tp := range hierarchy {
		typePres, ok := tp.Payload.(*NodeType)
		if !ok {
			continue
		}
		typePres.Properties().Each(func(pn string, pv any) bool {
			schema.Set(pn, pv)
			return true
		})
	}
	assignments := src.Properties()
	schema.Each(func(pn string, pv any) bool {
		ps := pv.(*PropertySchema)
		if a, ok := assignments.Get(pn); ok {
			value := a.(presentation.Presenter)
			nt.Properties.Set(pn, p.validatedProperty(mctx, ps, value.Raw(), value.Locator(), pn))
			return true
		}
		if ps.HasDefault() {
			nt.Properties.Set(pn, modeling.ParseValue(p.expandedDefault(ps), src.Locator()))
			return true
		}
		if ps.Required() {
			reportAt(mctx, src.Locator(),
				"required property %q of node template %q has no value", pn, name)
		}
		return true
	})
	assignments.Each(func(pn string, pv any) bool {
		if schema.Has(pn) {
			return true
		}
		value := pv.(presentation.Presenter)
		reportAt(mctx, value.Locator(), "node template %q assigns undeclared property %q", name, pn)
		nt.Properties.Set(pn, modeling.ParseValue(value.Raw(), value.Locator()))
		return true
	})

	// Interface merge, type hierarchy root-to-leaf then the template.
	merged := collections.NewOrderedMap()
	for _, tp := range hierarchy {
		typePres, ok := tp.Payload.(*NodeType)
		if !ok {
			continue
		}
		mergeInterfaceDict(merged, typePres.Interfaces())
	}
	mergeInterfaceDict(merged, src.Interfaces())
	nt.Interfaces = merged

	// One requirement per relationship entry, in declaration order.
	for i, rp := range src.Relationships() {
		ra := rp.(*RelationshipAssignment)
		req := &modeling.Requirement{
			Name:                   fmt.Sprintf("%s-%d", ra.Type(), i),
			TargetNodeTemplateName: ra.Target(),
			Locator:                ra.Locator(),
		}
		rt := modeling.NewRelationshipTemplate(ra.Type())
		ra.Properties().Each(func(pn string, pv any) bool {
			value := pv.(presentation.Presenter)
			rt.Properties.Set(pn, modeling.ParseValue(value.Raw(), value.Locator()))
			return true
		})
		// Relationship type interfaces merge beneath the assignment's.
		typeSource := collections.NewOrderedMap()
		typeTarget := collections.NewOrderedMap()
		for _, rel := range p.relationshipHierarchy(ra.Type()) {
			mergeInterfaceDict(typeSource, rel.SourceInterfaces())
			mergeInterfaceDict(typeTarget, rel.TargetInterfaces())
		}
		mergeInterfaceDict(typeSource, ra.SourceInterfaces())
		mergeInterfaceDict(typeTarget, ra.TargetInterfaces())
		rt.SourceInterfaces = typeSource
		rt.TargetInterfaces = typeTarget
		req.Relationship = rt
		nt.Requirements = append(nt.Requirements, req)
	}

	p.applyInstanceCounts(nt, src)
	return nt
}

// relationshipHierarchy walks declared relationship types root-to-leaf.
func (p *Blueprint) relationshipHierarchy(name string) []*RelationshipType {
	var chain []*RelationshipType
	seen := make(map[string]bool)
	for current := name; current != "" && !seen[current]; {
		seen[current] = true
		rt, _ := p.RelationshipTypes().Lookup(current).(*RelationshipType)
		if rt == nil {
			break
		}
		chain = append([]*RelationshipType{rt}, chain...)
		current = rt.DerivedFrom()
	}
	return chain
}

// mergeInterfaceDict merges a presenter interface dict into dst, operation
// fields merging individually.
func mergeInterfaceDict(dst *collections.OrderedMap, interfaces *collections.OrderedMap) {
	interfaces.Each(func(name string, v any) bool {
		iface := v.(*Interface)
		override := modeling.NewInterface(name)
		iface.Operations().Each(func(opName string, ov any) bool {
			override.Operations.Set(opName, operationFromPresenter(opName, ov.(*Operation)))
			return true
		})
		base, _ := dst.Lookup(name).(*modeling.Interface)
		dst.Set(name, modeling.MergeInterface(base, override))
		return true
	})
}

func operationFromPresenter(name string, src *Operation) *modeling.Operation {
	op := modeling.NewOperation(name)
	op.Implementation = src.Implementation()
	op.Executor = src.Executor()
	op.MaxRetries = src.MaxRetries()
	op.RetryInterval = src.RetryInterval()
	src.Inputs().Each(func(inputName string, v any) bool {
		value := v.(presentation.Presenter)
		op.Inputs.Set(inputName, modeling.ParseValue(value.Raw(), value.Locator()))
		return true
	})
	return op
}

// validatedProperty validates an assignment against the data type schema
// when the property's type names a declared data type.
func (p *Blueprint) validatedProperty(mctx *modeling.Context, ps *PropertySchema, raw any, locator *reading.Locator, path string) *modeling.Value {
	value := modeling.ParseValue(raw, locator)
	if value.Function != nil {
		return value
	}
	dt, _ := p.DataTypes().Lookup(ps.Type()).(*DataType)
	if dt != nil {
		p.validateDataValue(mctx, dt, raw, locator, path)
	}
	return value
}

// validateDataValue checks a data type assignment: unknown and missing
// required properties report; nested data types recurse; derived data
// types overlay parent schemas.
func (p *Blueprint) validateDataValue(mctx *modeling.Context, dt *DataType, raw any, locator *reading.Locator, path string) {
	m := reading.AsMap(raw)
	if m == nil {
		reportAt(mctx, locator, "property %q: value of data type %q must be a mapping", path, dt.Name())
		return
	}
	schema := collections.NewOrderedMap()
	seen := make(map[string]bool)
	var chain []*DataType
	for current := dt; current != nil && !seen[current.Name()]; {
		seen[current.Name()] = true
		chain = append([]*DataType{current}, chain...)
		parent, _ := p.DataTypes().Lookup(current.DerivedFrom()).(*DataType)
		current = parent
	}
	for _, ancestor := range chain {
		ancestor.Properties().Each(func(pn string, pv any) bool {
			schema.Set(pn, pv)
			return true
		})
	}
	m.Each(func(key string, value any) bool {
		pv, ok := schema.Get(key)
		if !ok {
			reportAt(mctx, locator.Key(key),
				"property %q: unknown property %q of data type %q", path, key, dt.Name())
			return true
		}
		ps := pv.(*PropertySchema)
		if nested, isData := p.DataTypes().Lookup(ps.Type()).(*DataType); isData {
			p.validateDataValue(mctx, nested, value, locator.Key(key), path+"."+key)
		}
		return true
	})
	schema.Each(func(key string, pv any) bool {
		ps := pv.(*PropertySchema)
		if ps.Required() && !ps.HasDefault() && !m.Has(key) {
			reportAt(mctx, locator,
				"property %q: required property %q of data type %q has no value", path, key, dt.Name())
		}
		return true
	})
}

// expandedDefault fills nested data type defaults beneath an explicit
// default mapping.
func (p *Blueprint) expandedDefault(ps *PropertySchema) any {
	def := ps.Default()
	dt, _ := p.DataTypes().Lookup(ps.Type()).(*DataType)
	if dt == nil {
		return def
	}
	m := reading.AsMap(def)
	out := collections.NewOrderedMap()
	if m != nil {
		m.Each(func(k string, v any) bool {
			out.Set(k, reading.CloneRaw(v))
			return true
		})
	}
	dt.Properties().Each(func(pn string, pv any) bool {
		nested := pv.(*PropertySchema)
		if !out.Has(pn) && nested.HasDefault() {
			out.Set(pn, reading.CloneRaw(nested.Default()))
		}
		return true
	})
	if out.Len() == 0 && m == nil {
		return def
	}
	return out
}

// applyInstanceCounts reads instances.deploy and the scalable capability
// into the template's scaling bounds.
func (p *Blueprint) applyInstanceCounts(nt *modeling.NodeTemplate, src *NodeTemplate) {
	if inst, ok := src.GetObject(src, "instances").(*presentation.AsIs); ok && inst != nil {
		if m := reading.AsMap(inst.Raw()); m != nil {
			if n, isInt := m.Lookup("deploy").(int); isInt {
				nt.DefaultInstances = n
			}
		}
	}
	if caps, ok := src.GetObject(src, "capabilities").(*presentation.AsIs); ok && caps != nil {
		if m := reading.AsMap(caps.Raw()); m != nil {
			if scalable := reading.AsMap(m.Lookup("scalable")); scalable != nil {
				if props := reading.AsMap(scalable.Lookup("properties")); props != nil {
					if n, isInt := props.Lookup("default_instances").(int); isInt {
						nt.DefaultInstances = n
					}
					if n, isInt := props.Lookup("min_instances").(int); isInt {
						nt.MinInstances = n
					}
					if n, isInt := props.Lookup("max_instances").(int); isInt {
						nt.MaxInstances = n
					}
				}
			}
		}
	}
}

func reportAt(mctx *modeling.Context, locator *reading.Locator, format string, args ...any) {
	issue := validation.Issue{Level: validation.BetweenTypes, Message: fmt.Sprintf(format, args...)}
	if locator != nil {
		issue.Location = locator.Location
		issue.Line = locator.Line
		issue.Column = locator.Column
	}
	mctx.Reporter.Report(issue)
}
