package tosca_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duyamin/aria-ng/internal/consumption"
	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/modeling"
	"github.com/duyamin/aria-ng/internal/parsing"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/tosca"
	"github.com/duyamin/aria-ng/internal/validation"
)

// compile runs the full pipeline on a literal service template.
func compile(t *testing.T, src string, inputs map[string]any) *consumption.Context {
	t.Helper()
	c := consumption.NewContext()
	c.Inputs = inputs

	parser := parsing.NewParser(loading.NewSource(), presentation.NewSource(tosca.Class))
	pres, err := parser.Parse(context.Background(), c.PresentationContext(), loading.LiteralLocation{Content: src})
	require.NoError(t, err)
	c.Presentation.Presenter = pres

	consumption.ValidatePresentation{}.Consume(c)
	consumption.NewTemplateChain().Consume(c)
	consumption.NewPlanChain().Consume(c)
	return c
}

// validateOnly parses and validates without deriving.
func validateOnly(t *testing.T, src string) *consumption.Context {
	t.Helper()
	c := consumption.NewContext()
	parser := parsing.NewParser(loading.NewSource(), presentation.NewSource(tosca.Class))
	pres, err := parser.Parse(context.Background(), c.PresentationContext(), loading.LiteralLocation{Content: src})
	require.NoError(t, err)
	c.Presentation.Presenter = pres
	consumption.ValidatePresentation{}.Consume(c)
	return c
}

func TestTrivialTemplate(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    MyNode: {type: tosca.nodes.Compute}
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	plan := c.Modeling.Plan
	require.NotNil(t, plan)
	require.Equal(t, 1, plan.NodeInstances.Len())

	id, v := plan.NodeInstances.At(0)
	inst := v.(*modeling.NodeInstance)
	assert.True(t, strings.HasPrefix(id, "MyNode_"), "id %q", id)
	assert.Equal(t, "MyNode", inst.TemplateName)
	assert.Empty(t, inst.Relationships)
	assert.Equal(t, id, plan.HostID(inst), "a Compute hosts itself")
}

func TestUnknownNodeType(t *testing.T) {
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    bad:
      type: does.not.exist
`)
	issues := c.Reporter.Issues()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "does.not.exist")
	assert.Greater(t, issues[0].Line, 0, "issue must carry the template's location")
}

func TestUnknownFieldRejected(t *testing.T) {
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    n:
      type: tosca.nodes.Compute
      no_such_field: 1
`)
	issues := c.Reporter.Issues()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "no_such_field")
}

func TestValidateIdempotent(t *testing.T) {
	src := `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    bad: {type: nope}
    worse: {type: also.nope}
`
	c := validateOnly(t, src)
	first := c.Reporter.Len()
	presentation.Validate(c.PresentationContext(), c.Presentation.Presenter)
	assert.Equal(t, first, c.Reporter.Len(), "second validation adds nothing")
}

func TestPropertyInheritanceAndConstraints(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  base.type:
    derived_from: tosca.nodes.Root
    properties:
      port:
        type: integer
        constraints:
          - in_range: [1, 65535]
      protocol:
        type: string
        default: tcp
  child.type:
    derived_from: base.type
    properties:
      protocol:
        type: string
        default: udp
topology_template:
  node_templates:
    n:
      type: child.type
      properties:
        port: 8080
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	nt := c.Modeling.Template.NodeTemplates.Lookup("n").(*modeling.NodeTemplate)
	require.NotNil(t, nt)
	assert.Equal(t, 8080, nt.Properties.Lookup("port").(*modeling.Value).Literal)
	assert.Equal(t, "udp", nt.Properties.Lookup("protocol").(*modeling.Value).Literal,
		"nearest ancestor definition wins")
}

func TestPropertyConstraintViolation(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  base.type:
    derived_from: tosca.nodes.Root
    properties:
      port:
        type: integer
        constraints:
          - in_range: [1, 65535]
topology_template:
  node_templates:
    n:
      type: base.type
      properties:
        port: 99999
`, nil)

	found := false
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "out of range") {
			found = true
		}
	}
	assert.True(t, found, "issues: %v", c.Reporter.Issues())
}

func TestRequiredPropertyMissing(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  base.type:
    derived_from: tosca.nodes.Root
    properties:
      needed: {type: string}
topology_template:
  node_templates:
    n: {type: base.type}
`, nil)

	found := false
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "required property") {
			found = true
		}
	}
	assert.True(t, found, "issues: %v", c.Reporter.Issues())
}

func TestDerivedFromCycle(t *testing.T) {
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  a.type: {derived_from: b.type}
  b.type: {derived_from: a.type}
`)
	found := false
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "cycle") {
			found = true
		}
	}
	assert.True(t, found, "issues: %v", c.Reporter.Issues())
}

func TestRequirementCapabilityTypeAndNodeConflict(t *testing.T) {
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    server: {type: tosca.nodes.Compute}
    app:
      type: tosca.nodes.SoftwareComponent
      requirements:
        - host:
            capability: tosca.capabilities.Container
            node: server
`)
	issues := c.Reporter.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, validation.BetweenFields, issues[0].Level)
	assert.Contains(t, issues[0].Message, "at the same time")
}

func TestRequirementCapabilityNameWithNode(t *testing.T) {
	// A capability name (not a capability type) may be combined with a
	// node target.
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    server: {type: tosca.nodes.Compute}
    app:
      type: tosca.nodes.SoftwareComponent
      requirements:
        - host:
            capability: host
            node: server
`)
	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
}

func TestRequirementDefinitionUnknownCapabilityType(t *testing.T) {
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  my.type:
    derived_from: tosca.nodes.Root
    requirements:
      - stuff: no.such.capability
`)
	issues := c.Reporter.Issues()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "no.such.capability")
}

func TestContainmentAndSatisfaction(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  my.web: {derived_from: tosca.nodes.SoftwareComponent}
  my.db: {derived_from: tosca.nodes.SoftwareComponent}
topology_template:
  node_templates:
    web1:
      type: my.web
      requirements:
        - host: A
    A: {type: tosca.nodes.Compute}
    B: {type: tosca.nodes.Compute}
    web2:
      type: my.web
      requirements:
        - host: B
    db: {type: my.db}
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	plan := c.Modeling.Plan
	require.NotNil(t, plan)
	assert.Equal(t, 5, plan.NodeInstances.Len())

	web1 := plan.FirstInstanceOf("web1")
	require.NotNil(t, web1)
	require.Len(t, web1.Relationships, 1)
	a := plan.FirstInstanceOf("A")
	assert.Equal(t, a.ID, web1.Relationships[0].TargetID)
	assert.Equal(t, "tosca.relationships.HostedOn", web1.Relationships[0].TypeName)
	assert.Equal(t, a.ID, plan.HostID(web1), "web1 is hosted on A")

	// db's inherited host requirement satisfies against a Compute
	// deterministically: round-robin starts at the first candidate.
	db := plan.FirstInstanceOf("db")
	require.NotNil(t, db)
	require.Len(t, db.Relationships, 1)
	assert.Equal(t, a.ID, db.Relationships[0].TargetID)
}

func TestContainmentCycle(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  my.ouroboros:
    derived_from: tosca.nodes.Root
    requirements:
      - host:
          capability: tosca.capabilities.Container
          relationship: tosca.relationships.HostedOn
topology_template:
  node_templates:
    x:
      type: my.ouroboros
      requirements:
        - host: y
    y:
      type: my.ouroboros
      requirements:
        - host: x
`, nil)

	assert.Nil(t, c.Modeling.Plan, "cycle aborts instantiation")
	found := false
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "cycle") {
			found = true
		}
	}
	assert.True(t, found, "issues: %v", c.Reporter.Issues())
}

func TestScalingPolicy(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    server: {type: tosca.nodes.Compute}
  groups:
    g:
      type: tosca.groups.Root
      members: [server]
  policies:
    scale:
      type: tosca.policies.Scaling
      properties:
        default_instances: 3
        min_instances: 1
        max_instances: 5
      targets: [g]
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	plan := c.Modeling.Plan
	require.NotNil(t, plan)
	assert.Len(t, plan.InstancesOf("server"), 3)

	sg, ok := plan.ScalingGroups.Get("g")
	require.True(t, ok)
	group := sg.(*modeling.ScalingGroup)
	assert.Equal(t, 3, group.CurrentInstances)
	assert.Equal(t, 3, group.DefaultInstances)
	assert.Equal(t, 1, group.MinInstances)
	assert.Equal(t, 5, group.MaxInstances)

	g, ok := plan.Groups.Get("g")
	require.True(t, ok)
	assert.Len(t, g.(*modeling.Group).MemberIDs, 3)
}

func TestCopyDirective(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  base.type:
    derived_from: tosca.nodes.Root
    properties:
      color: {type: string}
topology_template:
  node_templates:
    original:
      type: base.type
      properties:
        color: red
    clone:
      copy: original
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	clone := c.Modeling.Template.NodeTemplates.Lookup("clone").(*modeling.NodeTemplate)
	assert.Equal(t, "base.type", clone.TypeName)
	assert.Equal(t, "red", clone.Properties.Lookup("color").(*modeling.Value).Literal)
}

func TestCopyUnknownSibling(t *testing.T) {
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
topology_template:
  node_templates:
    clone:
      type: tosca.nodes.Compute
      copy: nowhere
`)
	found := false
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "copy") {
			found = true
		}
	}
	assert.True(t, found, "issues: %v", c.Reporter.Issues())
}

func TestIntrinsicFunctions(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  base.type:
    derived_from: tosca.nodes.Root
    properties:
      name: {type: string}
      greeting: {type: string}
topology_template:
  inputs:
    who:
      type: string
      default: world
  node_templates:
    n:
      type: base.type
      properties:
        name: {get_input: who}
        greeting: {concat: ["hello, ", {get_input: who}]}
  outputs:
    result:
      value: {get_property: [n, greeting]}
`, map[string]any{"who": "tosca"})

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	plan := c.Modeling.Plan
	require.NotNil(t, plan)

	inst := plan.FirstInstanceOf("n")
	require.NotNil(t, inst)
	assert.Equal(t, "tosca", inst.Properties.Lookup("name").(*modeling.Value).Literal,
		"user inputs override defaults")
	assert.Equal(t, "hello, tosca", inst.Properties.Lookup("greeting").(*modeling.Value).Literal)

	result := plan.Outputs.Lookup("result").(*modeling.Parameter)
	assert.Equal(t, "hello, tosca", result.Value.Literal)
}

func TestRecordDataType(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
data_types:
  my.record:
    properties:
      host: {type: string}
      port: {type: integer, default: 80}
node_types:
  base.type:
    derived_from: tosca.nodes.Root
    properties:
      endpoint: {type: my.record}
topology_template:
  node_templates:
    good:
      type: base.type
      properties:
        endpoint: {host: example.org}
    bad:
      type: base.type
      properties:
        endpoint: {bogus: 1}
`, nil)

	var unknown, missing bool
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "unknown property \"bogus\"") {
			unknown = true
		}
		if strings.Contains(issue.Message, "required property \"host\"") {
			missing = true
		}
	}
	assert.True(t, unknown, "issues: %v", c.Reporter.Issues())
	assert.True(t, missing, "bad endpoint omits required host")
}

func TestRecordTypeConstraintsRejected(t *testing.T) {
	c := validateOnly(t, `
tosca_definitions_version: tosca_simple_yaml_1_0
data_types:
  my.record:
    properties:
      a: {type: string}
    constraints:
      - min_length: 1
`)
	found := false
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "may not declare constraints") {
			found = true
		}
	}
	assert.True(t, found, "issues: %v", c.Reporter.Issues())
}
