package tosca

import (
	"fmt"
	"sort"

	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/datatypes"
	"github.com/duyamin/aria-ng/internal/modeling"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/reading"
	"github.com/duyamin/aria-ng/internal/validation"
)

// DeriveTemplate resolves the presentation into a deployment template:
// type indices, fully-inherited node templates, groups, and policies.
func (p *ServiceTemplate) DeriveTemplate(mctx *modeling.Context) *modeling.Template {
	t := modeling.NewTemplate()
	t.Version = p.DefinitionsVersion()
	t.Description = p.Description()
	t.ComputeTypeName = computeTypeName
	t.ContainedInTypeName = containedInTypeName
	t.ScalingPolicyTypeName = scalingPolicyTypeName

	p.populateTypeIndex(t.NodeTypes, builtinNodeTypes, p.NodeTypes())
	p.populateTypeIndex(t.RelationshipTypes, builtinRelationshipTypes, p.RelationshipTypes())
	p.populateTypeIndex(t.CapabilityTypes, builtinCapabilityTypes, p.CapabilityTypes())
	p.populateTypeIndex(t.DataTypes, nil, p.DataTypes())
	p.populateTypeIndex(t.ArtifactTypes, builtinArtifactTypes, p.ArtifactTypes())
	p.populateTypeIndex(t.GroupTypes, builtinGroupTypes, p.GroupTypes())
	p.populateTypeIndex(t.PolicyTypes, builtinPolicyTypes, p.PolicyTypes())

	topology := p.TopologyTemplate()
	if topology == nil {
		return t
	}
	if t.Description == "" {
		t.Description = topology.Description()
	}

	topology.Inputs().Each(func(name string, v any) bool {
		t.Inputs.Set(name, p.deriveParameter(name, v.(*ParameterDefinition)))
		return true
	})
	topology.Outputs().Each(func(name string, v any) bool {
		t.Outputs.Set(name, p.deriveParameter(name, v.(*ParameterDefinition)))
		return true
	})

	topology.NodeTemplates().Each(func(name string, v any) bool {
		nt := p.deriveNodeTemplate(mctx, t, name, v.(*NodeTemplate))
		t.NodeTemplates.Set(name, nt)
		return true
	})

	topology.Groups().Each(func(name string, v any) bool {
		t.GroupTemplates.Set(name, p.deriveGroup(topology, name, v.(*GroupDefinition)))
		return true
	})

	topology.Policies().Each(func(name string, v any) bool {
		t.PolicyTemplates.Set(name, p.derivePolicy(topology, name, v.(*PolicyDefinition)))
		return true
	})

	return t
}

// populateTypeIndex registers the profile prelude (sorted for stability)
// and then the declared types in declaration order. Declared names shadow
// prelude entries.
func (p *ServiceTemplate) populateTypeIndex(index *modeling.TypeIndex, builtins map[string]builtinType, declared *collections.OrderedMap) {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		bt := builtins[name]
		index.Add(&modeling.Type{Name: name, Parent: bt.parent, Payload: bt})
	}
	declared.Each(func(name string, v any) bool {
		pres := v.(presentation.Presenter)
		parent := ""
		if d, ok := pres.(derivable); ok {
			parent = d.DerivedFrom()
		}
		index.Add(&modeling.Type{
			Name:    name,
			Parent:  parent,
			Payload: pres,
			Locator: pres.Locator(),
		})
		return true
	})
}

func (p *ServiceTemplate) deriveParameter(name string, pd *ParameterDefinition) *modeling.Parameter {
	param := &modeling.Parameter{
		Name:        name,
		TypeName:    pd.Type(),
		Description: pd.GetString(pd, "description"),
	}
	raw := pd.Value()
	if raw == nil {
		raw = pd.Default()
	}
	param.Value = modeling.ParseValue(raw, pd.Locator())
	return param
}

// deriveNodeTemplate walks the node type hierarchy root-to-leaf merging
// properties, interfaces, requirements, and capabilities, then overlays
// the template's own assignments.
func (p *ServiceTemplate) deriveNodeTemplate(mctx *modeling.Context, t *modeling.Template, name string, src *NodeTemplate) *modeling.NodeTemplate {
	nt := modeling.NewNodeTemplate(name, src.Type())
	nt.Description = src.GetString(src, "description")
	nt.Locator = src.Locator()

	hierarchy := t.NodeTypes.Hierarchy(src.Type())

	// Property merge: nearest-ancestor definition wins, template
	// assignment overlays, required without value reports.
	defs := p.mergedPropertyDefinitions(hierarchy)
	assignments := src.Properties()
	defs.Each(func(propName string, v any) bool {
		def := v.(*propDef)
		if a, ok := assignments.Get(propName); ok {
			value := a.(presentation.Presenter)
			nt.Properties.Set(propName, p.coerceProperty(mctx, def, value.Raw(), value.Locator()))
			return true
		}
		if def.hasDefault {
			nt.Properties.Set(propName, p.coerceProperty(mctx, def, def.def, src.Locator()))
			return true
		}
		if def.required {
			reportAt(mctx, src.Locator(), "required property %q of node template %q has no value", propName, name)
		}
		return true
	})
	assignments.Each(func(propName string, v any) bool {
		if defs.Has(propName) {
			return true
		}
		value := v.(presentation.Presenter)
		reportAt(mctx, value.Locator(), "node template %q assigns undeclared property %q", name, propName)
		nt.Properties.Set(propName, modeling.ParseValue(value.Raw(), value.Locator()))
		return true
	})

	// Interface merge.
	typeInterfaces := p.mergedInterfaces(hierarchy)
	templateInterfaces := interfacesFromAssignments(src.Interfaces())
	typeInterfaces.Each(func(ifaceName string, v any) bool {
		override, _ := templateInterfaces.Lookup(ifaceName).(*modeling.Interface)
		nt.Interfaces.Set(ifaceName, modeling.MergeInterface(v.(*modeling.Interface), override))
		return true
	})
	templateInterfaces.Each(func(ifaceName string, v any) bool {
		if !nt.Interfaces.Has(ifaceName) {
			nt.Interfaces.Set(ifaceName, v)
		}
		return true
	})

	// Requirements: template assignments overlay type definitions by
	// name; unassigned required definitions survive with their target
	// node type for satisfaction.
	defsByReq := p.mergedRequirementDefinitions(hierarchy)
	assigned := make(map[string]bool)
	for _, entry := range src.Requirements() {
		ra := entry.Value.(*RequirementAssignment)
		assigned[entry.Key] = true
		nt.Requirements = append(nt.Requirements, p.deriveRequirement(topologyOf(src), entry.Key, defsByReq.lookup(entry.Key), ra))
	}
	for _, def := range defsByReq.ordered {
		if assigned[def.name] {
			continue
		}
		nt.Requirements = append(nt.Requirements, p.requirementFromDefinition(def))
	}

	// Capability lifting.
	caps := p.mergedCapabilityDefinitions(hierarchy)
	capAssignments := src.Capabilities()
	caps.Each(func(capName string, v any) bool {
		def := v.(*capDef)
		capability := modeling.NewCapability(capName, def.typeName)
		capability.MinOccurrences = def.occ.lower
		capability.MaxOccurrences = def.occ.upper
		capability.ValidSourceTypes = append([]string(nil), def.validSources...)
		def.properties.Each(func(pn string, dv any) bool {
			capability.Properties.Set(pn, modeling.ParseValue(dv, src.Locator()))
			return true
		})
		if a, ok := capAssignments.Get(capName); ok {
			ca := a.(*CapabilityAssignment)
			ca.Properties().Each(func(pn string, av any) bool {
				value := av.(presentation.Presenter)
				capability.Properties.Set(pn, modeling.ParseValue(value.Raw(), value.Locator()))
				return true
			})
		}
		nt.Capabilities.Set(capName, capability)
		return true
	})

	p.applyScalingBounds(nt, src)
	return nt
}

func topologyOf(src *NodeTemplate) *TopologyTemplate {
	t, _ := src.Container().(*TopologyTemplate)
	return t
}

// propDef is a property definition resolved against the hierarchy.
type propDef struct {
	name        string
	typeName    string
	required    bool
	def         any
	hasDefault  bool
	constraints []*datatypes.Constraint
}

func (p *ServiceTemplate) mergedPropertyDefinitions(hierarchy []*modeling.Type) *collections.OrderedMap {
	defs := collections.NewOrderedMap()
	for _, tp := range hierarchy {
		nt, ok := tp.Payload.(*NodeType)
		if !ok {
			continue
		}
		nt.Properties().Each(func(name string, v any) bool {
			defs.Set(name, p.propDefOf(name, v.(*PropertyDefinition)))
			return true
		})
	}
	return defs
}

func (p *ServiceTemplate) propDefOf(name string, pd *PropertyDefinition) *propDef {
	def := &propDef{
		name:     name,
		typeName: pd.Type(),
		required: pd.Required(),
	}
	if m := pd.RawMap(); m != nil && m.Has("default") {
		def.def = pd.Default()
		def.hasDefault = true
	}
	primitive := def.typeName
	if !datatypes.IsPrimitive(primitive) {
		primitive = primitiveAncestor(p, primitive)
	}
	for _, entry := range pd.Constraints() {
		if !datatypes.KnownConstraint(entry.Key) {
			continue
		}
		def.constraints = append(def.constraints, &datatypes.Constraint{
			Operator: datatypes.ConstraintOperator(entry.Key),
			Argument: entry.Value.Raw(),
			TypeName: primitive,
		})
	}
	// Constraints declared on the data type itself apply too.
	if dt, ok := p.DataTypes().Lookup(def.typeName).(*DataType); ok {
		for _, entry := range dt.Constraints() {
			if !datatypes.KnownConstraint(entry.Key) {
				continue
			}
			def.constraints = append(def.constraints, &datatypes.Constraint{
				Operator: datatypes.ConstraintOperator(entry.Key),
				Argument: entry.Value.Raw(),
				TypeName: primitive,
			})
		}
	}
	return def
}

// coerceProperty validates a property assignment against its definition:
// primitive coercion, constraint checks, and record-type recursion.
// Intrinsic functions pass through for later plan coercion.
func (p *ServiceTemplate) coerceProperty(mctx *modeling.Context, def *propDef, raw any, locator *reading.Locator) *modeling.Value {
	value := modeling.ParseValue(raw, locator)
	if value.Function != nil {
		return value
	}
	primitive := def.typeName
	if !datatypes.IsPrimitive(primitive) {
		primitive = primitiveAncestor(p, primitive)
	}
	if primitive != "" {
		coerced, err := datatypes.Coerce(primitive, raw)
		if err != nil {
			reportAt(mctx, locator, "property %q: %v", def.name, err)
			return value
		}
		for _, c := range def.constraints {
			if err := c.Apply(coerced); err != nil {
				reportAt(mctx, locator, "property %q: %v", def.name, err)
			}
		}
		return value
	}
	if dt, ok := p.DataTypes().Lookup(def.typeName).(*DataType); ok {
		p.validateRecord(mctx, dt, raw, locator, def.name)
	}
	return value
}

// validateRecord checks a record data type assignment: unknown properties
// and missing required nested properties report issues; nested records
// recurse. Derived record types overlay parent property definitions.
func (p *ServiceTemplate) validateRecord(mctx *modeling.Context, dt *DataType, raw any, locator *reading.Locator, path string) {
	m := reading.AsMap(raw)
	if m == nil {
		reportAt(mctx, locator, "property %q: value of data type %q must be a mapping", path, dt.Name())
		return
	}
	defs := collections.NewOrderedMap()
	for _, ancestor := range p.dataTypeHierarchy(dt) {
		ancestor.Properties().Each(func(name string, v any) bool {
			defs.Set(name, v)
			return true
		})
	}
	m.Each(func(key string, value any) bool {
		v, ok := defs.Get(key)
		if !ok {
			reportAt(mctx, locator.Key(key), "property %q: unknown property %q of data type %q", path, key, dt.Name())
			return true
		}
		pd := v.(*PropertyDefinition)
		if nested, isRecord := p.DataTypes().Lookup(pd.Type()).(*DataType); isRecord && primitiveAncestor(p, pd.Type()) == "" {
			p.validateRecord(mctx, nested, value, locator.Key(key), path+"."+key)
		}
		return true
	})
	defs.Each(func(key string, v any) bool {
		pd := v.(*PropertyDefinition)
		if pd.Required() && !m.Has(key) {
			if pdm := pd.RawMap(); pdm != nil && pdm.Has("default") {
				return true
			}
			reportAt(mctx, locator, "property %q: required property %q of data type %q has no value", path, key, dt.Name())
		}
		return true
	})
}

func (p *ServiceTemplate) dataTypeHierarchy(dt *DataType) []*DataType {
	var chain []*DataType
	seen := make(map[string]bool)
	for current := dt; current != nil && !seen[current.Name()]; {
		seen[current.Name()] = true
		chain = append([]*DataType{current}, chain...)
		parent, _ := p.DataTypes().Lookup(current.DerivedFrom()).(*DataType)
		current = parent
	}
	return chain
}

// mergedInterfaces resolves type-level interfaces root-to-leaf.
func (p *ServiceTemplate) mergedInterfaces(hierarchy []*modeling.Type) *collections.OrderedMap {
	merged := collections.NewOrderedMap()
	for _, tp := range hierarchy {
		nt, ok := tp.Payload.(*NodeType)
		if !ok {
			continue
		}
		nt.Interfaces().Each(func(name string, v any) bool {
			iface := interfaceFromDefinition(name, v.(*InterfaceDefinition))
			base, _ := merged.Lookup(name).(*modeling.Interface)
			merged.Set(name, modeling.MergeInterface(base, iface))
			return true
		})
	}
	return merged
}

func interfaceFromDefinition(name string, def *InterfaceDefinition) *modeling.Interface {
	iface := modeling.NewInterface(name)
	def.Inputs().Each(func(inputName string, v any) bool {
		pd := v.(*PropertyDefinition)
		iface.Inputs.Set(inputName, modeling.ParseValue(pd.Default(), pd.Locator()))
		return true
	})
	def.Operations().Each(func(opName string, v any) bool {
		iface.Operations.Set(opName, operationFromDefinition(opName, v.(*OperationDefinition)))
		return true
	})
	return iface
}

func operationFromDefinition(name string, def *OperationDefinition) *modeling.Operation {
	op := modeling.NewOperation(name)
	op.Implementation = def.Implementation()
	op.Executor = def.Executor()
	op.MaxRetries = def.MaxRetries()
	op.RetryInterval = def.RetryInterval()
	def.Inputs().Each(func(inputName string, v any) bool {
		value := v.(presentation.Presenter)
		op.Inputs.Set(inputName, modeling.ParseValue(value.Raw(), value.Locator()))
		return true
	})
	return op
}

func interfacesFromAssignments(assignments *collections.OrderedMap) *collections.OrderedMap {
	out := collections.NewOrderedMap()
	assignments.Each(func(name string, v any) bool {
		ia := v.(*InterfaceAssignment)
		iface := modeling.NewInterface(name)
		ia.Inputs().Each(func(inputName string, iv any) bool {
			value := iv.(presentation.Presenter)
			iface.Inputs.Set(inputName, modeling.ParseValue(value.Raw(), value.Locator()))
			return true
		})
		ia.Operations().Each(func(opName string, ov any) bool {
			iface.Operations.Set(opName, operationFromDefinition(opName, ov.(*OperationDefinition)))
			return true
		})
		out.Set(name, iface)
		return true
	})
	return out
}

// reqDef is a requirement definition resolved against the hierarchy.
type reqDef struct {
	name         string
	capability   string
	node         string
	relationship string
	occ          occurrences
	locator      *reading.Locator
}

// reqDefs keeps requirement definitions addressable by name and ordered.
type reqDefs struct {
	byName  map[string]*reqDef
	ordered []*reqDef
}

func (r *reqDefs) add(def *reqDef) {
	if existing, ok := r.byName[def.name]; ok {
		*existing = *def
		return
	}
	r.byName[def.name] = def
	r.ordered = append(r.ordered, def)
}

func (p *ServiceTemplate) mergedRequirementDefinitions(hierarchy []*modeling.Type) reqDefs {
	defs := reqDefs{byName: make(map[string]*reqDef)}
	for _, tp := range hierarchy {
		switch payload := tp.Payload.(type) {
		case builtinType:
			for _, br := range payload.requirements {
				defs.add(&reqDef{
					name:         br.name,
					capability:   br.capability,
					node:         br.node,
					relationship: br.relationship,
					occ:          occurrences{lower: 1, upper: 1},
				})
			}
		case *NodeType:
			for _, entry := range payload.Requirements() {
				rd := entry.Value.(*RequirementDefinition)
				def := &reqDef{
					name:       entry.Key,
					capability: rd.Capability(),
					node:       rd.Node(),
					occ:        occurrences{lower: 1, upper: 1},
					locator:    rd.Locator(),
				}
				if rel := rd.Relationship(); rel != nil {
					def.relationship = rel.Type()
				}
				if raw := rd.Primitive(rd, "occurrences"); raw != nil {
					if o, err := parseOccurrences(raw); err == nil {
						def.occ = o
					}
				}
				defs.add(def)
			}
		}
	}
	return defs
}

func (r reqDefs) lookup(name string) *reqDef { return r.byName[name] }

// deriveRequirement builds a requirement from a template assignment,
// inheriting what the assignment leaves unset from the type definition.
func (p *ServiceTemplate) deriveRequirement(topology *TopologyTemplate, name string, def *reqDef, ra *RequirementAssignment) *modeling.Requirement {
	req := &modeling.Requirement{Name: name, Locator: ra.Locator()}

	target := ra.Node()
	if target == "" && def != nil {
		target = def.node
	}
	if target != "" {
		if topology != nil && topology.NodeTemplates().Has(target) {
			req.TargetNodeTemplateName = target
		} else {
			req.TargetNodeTypeName = target
		}
	}

	req.TargetCapabilityName = ra.Capability()
	if req.TargetCapabilityName == "" && def != nil {
		req.TargetCapabilityName = def.capability
	}

	relType := ""
	var relAssignment *RequirementRelationship
	if rel := ra.Relationship(); rel != nil {
		relType = rel.Type()
		relAssignment = rel
	}
	if relType == "" && def != nil {
		relType = def.relationship
	}
	if relType != "" || relAssignment != nil {
		rt := modeling.NewRelationshipTemplate(relType)
		if relAssignment != nil {
			relAssignment.Properties().Each(func(pn string, v any) bool {
				value := v.(presentation.Presenter)
				rt.Properties.Set(pn, modeling.ParseValue(value.Raw(), value.Locator()))
				return true
			})
			rt.SourceInterfaces = interfacesFromAssignments(relAssignment.SourceInterfaces())
			rt.TargetInterfaces = interfacesFromAssignments(relAssignment.TargetInterfaces())
		}
		req.Relationship = rt
	}
	return req
}

func (p *ServiceTemplate) requirementFromDefinition(def *reqDef) *modeling.Requirement {
	req := &modeling.Requirement{
		Name:                 def.name,
		TargetNodeTypeName:   def.node,
		TargetCapabilityName: def.capability,
		Locator:              def.locator,
	}
	if def.relationship != "" {
		req.Relationship = modeling.NewRelationshipTemplate(def.relationship)
	}
	return req
}

// capDef is a capability definition resolved against the hierarchy.
type capDef struct {
	name         string
	typeName     string
	properties   *collections.OrderedMap // name -> default raw
	occ          occurrences
	validSources []string
}

func (p *ServiceTemplate) mergedCapabilityDefinitions(hierarchy []*modeling.Type) *collections.OrderedMap {
	caps := collections.NewOrderedMap()
	for _, tp := range hierarchy {
		switch payload := tp.Payload.(type) {
		case builtinType:
			for _, bc := range payload.capabilities {
				caps.Set(bc.name, &capDef{
					name:       bc.name,
					typeName:   bc.typeName,
					properties: collections.NewOrderedMap(),
					occ:        occurrences{lower: 0, upper: -1},
				})
			}
		case *NodeType:
			payload.Capabilities().Each(func(name string, v any) bool {
				cd := v.(*CapabilityDefinition)
				def := &capDef{
					name:         name,
					typeName:     cd.Type(),
					properties:   collections.NewOrderedMap(),
					occ:          occurrences{lower: 0, upper: -1},
					validSources: cd.ValidSourceTypes(),
				}
				cd.Properties().Each(func(pn string, pv any) bool {
					pd := pv.(*PropertyDefinition)
					if m := pd.RawMap(); m != nil && m.Has("default") {
						def.properties.Set(pn, pd.Default())
					}
					return true
				})
				if raw := cd.Occurrences(); raw != nil {
					if o, err := parseOccurrences(raw); err == nil {
						def.occ = o
					}
				}
				caps.Set(name, def)
				return true
			})
		}
	}
	return caps
}

// applyScalingBounds reads the scalable capability assignment, when the
// template declares one, into the template's instance bounds.
func (p *ServiceTemplate) applyScalingBounds(nt *modeling.NodeTemplate, src *NodeTemplate) {
	a, ok := src.Capabilities().Get("scalable")
	if !ok {
		return
	}
	props := a.(*CapabilityAssignment).Properties()
	read := func(name string, into *int) {
		if v, ok := props.Get(name); ok {
			if n, isInt := v.(presentation.Presenter).Raw().(int); isInt {
				*into = n
			}
		}
	}
	read("default_instances", &nt.DefaultInstances)
	read("min_instances", &nt.MinInstances)
	read("max_instances", &nt.MaxInstances)
}

func (p *ServiceTemplate) deriveGroup(topology *TopologyTemplate, name string, src *GroupDefinition) *modeling.GroupTemplate {
	gt := modeling.NewGroupTemplate(name, src.Type())
	gt.Locator = src.Locator()
	for _, member := range src.Members() {
		if topology.Groups().Has(member) {
			gt.MemberGroupTemplateNames = append(gt.MemberGroupTemplateNames, member)
		} else {
			gt.MemberNodeTemplateNames = append(gt.MemberNodeTemplateNames, member)
		}
	}
	src.Properties().Each(func(pn string, v any) bool {
		value := v.(presentation.Presenter)
		gt.Properties.Set(pn, modeling.ParseValue(value.Raw(), value.Locator()))
		return true
	})
	return gt
}

func (p *ServiceTemplate) derivePolicy(topology *TopologyTemplate, name string, src *PolicyDefinition) *modeling.PolicyTemplate {
	pt := modeling.NewPolicyTemplate(name, src.Type())
	pt.Locator = src.Locator()
	for _, target := range src.Targets() {
		if topology.Groups().Has(target) {
			pt.TargetGroupTemplateNames = append(pt.TargetGroupTemplateNames, target)
		} else {
			pt.TargetNodeTemplateNames = append(pt.TargetNodeTemplateNames, target)
		}
	}
	src.Properties().Each(func(pn string, v any) bool {
		value := v.(presentation.Presenter)
		pt.Properties.Set(pn, modeling.ParseValue(value.Raw(), value.Locator()))
		return true
	})
	return pt
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
