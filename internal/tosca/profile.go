package tosca

import (
	"fmt"

	"github.com/duyamin/aria-ng/internal/datatypes"
	"github.com/duyamin/aria-ng/internal/reading"
)

// Normative type names the profile relies on for hosting and scaling.
const (
	computeTypeName       = "tosca.nodes.Compute"
	containedInTypeName   = "tosca.relationships.HostedOn"
	scalingPolicyTypeName = "tosca.policies.Scaling"
)

// builtinCapability is a capability a built-in node type offers.
type builtinCapability struct {
	name     string
	typeName string
}

// builtinRequirement is a requirement a built-in node type declares.
type builtinRequirement struct {
	name         string
	capability   string
	node         string
	relationship string
}

// builtinType is one entry of the normative TOSCA Simple Profile 1.0
// prelude. Only the shape the modeler needs is carried.
type builtinType struct {
	parent       string
	capabilities []builtinCapability
	requirements []builtinRequirement
}

var builtinNodeTypes = map[string]builtinType{
	"tosca.nodes.Root": {
		capabilities: []builtinCapability{{name: "feature", typeName: "tosca.capabilities.Node"}},
	},
	"tosca.nodes.Compute": {
		parent: "tosca.nodes.Root",
		capabilities: []builtinCapability{
			{name: "host", typeName: "tosca.capabilities.Container"},
			{name: "os", typeName: "tosca.capabilities.OperatingSystem"},
			{name: "scalable", typeName: "tosca.capabilities.Scalable"},
		},
	},
	"tosca.nodes.SoftwareComponent": {
		parent: "tosca.nodes.Root",
		requirements: []builtinRequirement{{
			name:         "host",
			capability:   "tosca.capabilities.Container",
			node:         "tosca.nodes.Compute",
			relationship: "tosca.relationships.HostedOn",
		}},
	},
	"tosca.nodes.WebServer": {
		parent: "tosca.nodes.SoftwareComponent",
		capabilities: []builtinCapability{
			{name: "data_endpoint", typeName: "tosca.capabilities.Endpoint"},
			{name: "admin_endpoint", typeName: "tosca.capabilities.Endpoint.Admin"},
			{name: "host", typeName: "tosca.capabilities.Container"},
		},
	},
	"tosca.nodes.WebApplication": {
		parent: "tosca.nodes.Root",
		capabilities: []builtinCapability{
			{name: "app_endpoint", typeName: "tosca.capabilities.Endpoint"},
		},
		requirements: []builtinRequirement{{
			name:         "host",
			capability:   "tosca.capabilities.Container",
			node:         "tosca.nodes.WebServer",
			relationship: "tosca.relationships.HostedOn",
		}},
	},
	"tosca.nodes.DBMS": {
		parent: "tosca.nodes.SoftwareComponent",
		capabilities: []builtinCapability{
			{name: "host", typeName: "tosca.capabilities.Container"},
		},
	},
	"tosca.nodes.Database": {
		parent: "tosca.nodes.Root",
		capabilities: []builtinCapability{
			{name: "database_endpoint", typeName: "tosca.capabilities.Endpoint.Database"},
		},
		requirements: []builtinRequirement{{
			name:         "host",
			capability:   "tosca.capabilities.Container",
			node:         "tosca.nodes.DBMS",
			relationship: "tosca.relationships.HostedOn",
		}},
	},
	"tosca.nodes.BlockStorage":   {parent: "tosca.nodes.Root"},
	"tosca.nodes.ObjectStorage":  {parent: "tosca.nodes.Root"},
	"tosca.nodes.LoadBalancer":   {parent: "tosca.nodes.Root"},
	"tosca.nodes.Container.Runtime": {parent: "tosca.nodes.SoftwareComponent"},
}

var builtinRelationshipTypes = map[string]builtinType{
	"tosca.relationships.Root":         {},
	"tosca.relationships.DependsOn":    {parent: "tosca.relationships.Root"},
	"tosca.relationships.HostedOn":     {parent: "tosca.relationships.Root"},
	"tosca.relationships.ConnectsTo":   {parent: "tosca.relationships.Root"},
	"tosca.relationships.AttachesTo":   {parent: "tosca.relationships.Root"},
	"tosca.relationships.RoutesTo":     {parent: "tosca.relationships.ConnectsTo"},
}

var builtinCapabilityTypes = map[string]builtinType{
	"tosca.capabilities.Root":              {},
	"tosca.capabilities.Node":              {parent: "tosca.capabilities.Root"},
	"tosca.capabilities.Container":         {parent: "tosca.capabilities.Root"},
	"tosca.capabilities.Endpoint":          {parent: "tosca.capabilities.Root"},
	"tosca.capabilities.Endpoint.Admin":    {parent: "tosca.capabilities.Endpoint"},
	"tosca.capabilities.Endpoint.Database": {parent: "tosca.capabilities.Endpoint"},
	"tosca.capabilities.Scalable":          {parent: "tosca.capabilities.Root"},
	"tosca.capabilities.OperatingSystem":   {parent: "tosca.capabilities.Root"},
	"tosca.capabilities.Attachment":        {parent: "tosca.capabilities.Root"},
}

var builtinArtifactTypes = map[string]builtinType{
	"tosca.artifacts.Root":                  {},
	"tosca.artifacts.File":                  {parent: "tosca.artifacts.Root"},
	"tosca.artifacts.Deployment":            {parent: "tosca.artifacts.Root"},
	"tosca.artifacts.Deployment.Image":      {parent: "tosca.artifacts.Deployment"},
	"tosca.artifacts.Implementation":        {parent: "tosca.artifacts.Root"},
	"tosca.artifacts.Implementation.Bash":   {parent: "tosca.artifacts.Implementation"},
	"tosca.artifacts.Implementation.Python": {parent: "tosca.artifacts.Implementation"},
}

var builtinGroupTypes = map[string]builtinType{
	"tosca.groups.Root": {},
}

var builtinPolicyTypes = map[string]builtinType{
	"tosca.policies.Root":        {},
	"tosca.policies.Placement":   {parent: "tosca.policies.Root"},
	"tosca.policies.Scaling":     {parent: "tosca.policies.Root"},
	"tosca.policies.Update":      {parent: "tosca.policies.Root"},
	"tosca.policies.Performance": {parent: "tosca.policies.Root"},
}

// occurrences is a parsed [lower, upper] bound; upper of -1 is unbounded.
type occurrences struct {
	lower int
	upper int
}

func parseOccurrences(value any) (occurrences, error) {
	o := occurrences{lower: 0, upper: -1}
	l := reading.AsList(value)
	if len(l) != 2 {
		return o, fmt.Errorf("must be a [lower, upper] pair")
	}
	lower, ok := l[0].(int)
	if !ok || lower < 0 {
		return o, fmt.Errorf("lower bound must be a non-negative integer")
	}
	o.lower = lower
	if s, ok := l[1].(string); ok && s == datatypes.UnboundedMarker {
		return o, nil
	}
	upper, ok := l[1].(int)
	if !ok || upper < lower {
		return o, fmt.Errorf("upper bound must be UNBOUNDED or an integer >= the lower bound")
	}
	o.upper = upper
	return o, nil
}

// primitiveAncestor walks a data type's derivation chain and returns the
// primitive it refines, or "" for record types.
func primitiveAncestor(root *ServiceTemplate, name string) string {
	seen := make(map[string]bool)
	for current := name; current != "" && !seen[current]; {
		if datatypes.IsPrimitive(current) {
			return current
		}
		seen[current] = true
		dt, _ := root.DataTypes().Lookup(current).(*DataType)
		if dt == nil {
			return ""
		}
		current = dt.DerivedFrom()
	}
	return ""
}
