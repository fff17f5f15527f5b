package cloudify_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duyamin/aria-ng/internal/cloudify"
	"github.com/duyamin/aria-ng/internal/collections"
	"github.com/duyamin/aria-ng/internal/consumption"
	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/modeling"
	"github.com/duyamin/aria-ng/internal/parsing"
	"github.com/duyamin/aria-ng/internal/presentation"
)

// compile runs the full pipeline on a literal blueprint, including the
// classic plan conversion.
func compile(t *testing.T, src string, inputs map[string]any) *consumption.Context {
	t.Helper()
	c := consumption.NewContext()
	c.Inputs = inputs

	parser := parsing.NewParser(loading.NewSource(), presentation.NewSource(cloudify.Class))
	pres, err := parser.Parse(context.Background(), c.PresentationContext(), loading.LiteralLocation{Content: src})
	require.NoError(t, err)
	c.Presentation.Presenter = pres

	consumption.ValidatePresentation{}.Consume(c)
	consumption.NewTemplateChain().Consume(c)
	consumption.NewPlanChain().Consume(c)
	cloudify.ClassicPlan{}.Consume(c)
	return c
}

func TestInterfaceMergeOverride(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
plugins:
  mock:
    executor: central_deployment_agent
    install: false
node_types:
  my.type:
    interfaces:
      interface1:
        start:
          implementation: mock.tasks.start
          executor: central_deployment_agent
node_templates:
  node1:
    type: my.type
    interfaces:
      interface1:
        start: mock.tasks.start-overridden
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())

	nt := c.Modeling.Template.NodeTemplates.Lookup("node1").(*modeling.NodeTemplate)
	iface := nt.Interfaces.Lookup("interface1").(*modeling.Interface)
	op := iface.Operations.Lookup("start").(*modeling.Operation)
	assert.Equal(t, "mock.tasks.start-overridden", op.Implementation)
	assert.Equal(t, "mock", op.Plugin())
	assert.Equal(t, "tasks.start-overridden", op.OperationName())
	assert.Equal(t, cloudify.CentralDeploymentAgent, op.Executor,
		"executor inherits from the type operation")

	// The classic plan addresses the operation both ways.
	classic := c.Modeling.ClassicPlan
	require.NotNil(t, classic)
	nodes := classic.Lookup("nodes").([]any)
	require.Len(t, nodes, 1)
	operations := nodes[0].(*collections.OrderedMap).Lookup("operations").(*collections.OrderedMap)
	entry := operations.Lookup("interface1.start").(*collections.OrderedMap)
	assert.Equal(t, "mock", entry.Lookup("plugin"))
	assert.Equal(t, "tasks.start-overridden", entry.Lookup("operation"))
	assert.Equal(t, cloudify.CentralDeploymentAgent, entry.Lookup("executor"))
}

func TestInterfaceMergeInputs(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
node_types:
  my.type:
    interfaces:
      interface1:
        op:
          implementation: mock.tasks.op
          inputs:
            from_type: {default: kept}
            shared: {default: type-value}
node_templates:
  node1:
    type: my.type
    interfaces:
      interface1:
        op:
          inputs:
            shared: template-value
`, nil)

	nt := c.Modeling.Template.NodeTemplates.Lookup("node1").(*modeling.NodeTemplate)
	iface := nt.Interfaces.Lookup("interface1").(*modeling.Interface)
	op := iface.Operations.Lookup("op").(*modeling.Operation)

	assert.Equal(t, "mock.tasks.op", op.Implementation, "implementation survives input-only override")
	assert.True(t, op.Inputs.Has("from_type"), "type-level inputs survive")
	shared := op.Inputs.Lookup("shared").(*modeling.Value)
	assert.Equal(t, "template-value", shared.Literal, "template inputs win")
}

func TestRelationshipsAndContainment(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
node_templates:
  vm:
    type: cloudify.nodes.Compute
  app:
    type: cloudify.nodes.ApplicationModule
    relationships:
      - type: cloudify.relationships.contained_in
        target: vm
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	plan := c.Modeling.Plan
	require.NotNil(t, plan)

	app := plan.FirstInstanceOf("app")
	vm := plan.FirstInstanceOf("vm")
	require.NotNil(t, app)
	require.NotNil(t, vm)
	require.Len(t, app.Relationships, 1)
	assert.Equal(t, vm.ID, app.Relationships[0].TargetID)
	assert.Equal(t, vm.ID, plan.HostID(app))
	assert.Equal(t, vm.ID, plan.HostID(vm), "a Compute hosts itself")

	classic := c.Modeling.ClassicPlan
	require.NotNil(t, classic)
	instances := classic.Lookup("node_instances").([]any)
	require.Len(t, instances, 2)
	for _, raw := range instances {
		inst := raw.(*collections.OrderedMap)
		if inst.Lookup("name") == "app" {
			assert.Equal(t, vm.ID, inst.Lookup("host_id"))
			rels := inst.Lookup("relationships").([]any)
			require.Len(t, rels, 1)
			rel := rels[0].(*collections.OrderedMap)
			assert.Equal(t, "cloudify.relationships.contained_in", rel.Lookup("type"))
			assert.Equal(t, vm.ID, rel.Lookup("target_id"))
			assert.Equal(t, "vm", rel.Lookup("target_name"))
		}
	}
}

func TestScalingGroupExpansion(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
node_templates:
  worker:
    type: cloudify.nodes.Compute
groups:
  g:
    members: [worker]
policies:
  p:
    type: cloudify.policies.scaling
    properties:
      default_instances: 3
    targets: [g]
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	plan := c.Modeling.Plan
	require.NotNil(t, plan)
	assert.Len(t, plan.InstancesOf("worker"), 3)

	sg := plan.ScalingGroups.Lookup("g").(*modeling.ScalingGroup)
	assert.Equal(t, 3, sg.CurrentInstances)
	assert.Equal(t, 3, sg.DefaultInstances)

	// Every worker instance reports its scaling group membership.
	classic := c.Modeling.ClassicPlan
	instances := classic.Lookup("node_instances").([]any)
	require.Len(t, instances, 3)
	for _, raw := range instances {
		sgs := raw.(*collections.OrderedMap).Lookup("scaling_groups").([]any)
		require.Len(t, sgs, 1)
		assert.Equal(t, "g", sgs[0].(*collections.OrderedMap).Lookup("name"))
	}
}

func TestClassicPlanShape(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
inputs:
  port: {default: 8080}
node_templates:
  vm: {type: cloudify.nodes.Compute}
workflows:
  install: default_workflows.workflows.install
outputs:
  endpoint:
    value: {get_input: port}
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	classic := c.Modeling.ClassicPlan
	require.NotNil(t, classic)

	want := []string{
		"version", "description", "inputs", "outputs", "workflows",
		"deployment_plugins_to_install", "workflow_plugins_to_install",
		"node_instances", "nodes", "groups", "scaling_groups", "policies",
		"policy_types", "policy_triggers", "relationships",
	}
	assert.Equal(t, want, classic.Keys())

	version := classic.Lookup("version").(*collections.OrderedMap)
	assert.Equal(t, "cloudify_dsl", version.Lookup("definitions_name"))
	number := version.Lookup("definitions_version").(*collections.OrderedMap).Lookup("number").([]any)
	assert.Equal(t, []any{1, 3}, number)

	workflows := classic.Lookup("workflows").(*collections.OrderedMap)
	install := workflows.Lookup("install").(*collections.OrderedMap)
	assert.Equal(t, "default_workflows", install.Lookup("plugin"))
	assert.Equal(t, "workflows.install", install.Lookup("operation"))
	assert.Equal(t, cloudify.CentralDeploymentAgent, install.Lookup("executor"))

	outputs := classic.Lookup("outputs").(*collections.OrderedMap)
	assert.Equal(t, 8080, outputs.Lookup("endpoint"), "coerced before conversion")

	relationships := classic.Lookup("relationships").(*collections.OrderedMap)
	assert.True(t, relationships.Has("cloudify.relationships.contained_in"))
	depends := relationships.Lookup("cloudify.relationships.contained_in").(*collections.OrderedMap)
	assert.Equal(t, "cloudify.relationships.depends_on", depends.Lookup("derived_from"))
}

func TestDataTypes(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
data_types:
  my.datatype:
    properties:
      addr: {}
      port:
        type: integer
        default: 80
  my.derived:
    derived_from: my.datatype
    properties:
      protocol:
        default: http
node_types:
  my.type:
    properties:
      endpoint:
        type: my.derived
node_templates:
  good:
    type: my.type
    properties:
      endpoint:
        addr: example.org
  bad:
    type: my.type
    properties:
      endpoint:
        addr: example.org
        bogus: 1
`, nil)

	var unknown bool
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "bogus") {
			unknown = true
		}
	}
	assert.True(t, unknown, "issues: %v", c.Reporter.Issues())
}

func TestCopyDirective(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
node_types:
  my.type:
    properties:
      color: {default: blue}
node_templates:
  original:
    type: my.type
    properties:
      color: red
  clone:
    copy: original
`, nil)

	assert.Equal(t, 0, c.Reporter.Len(), "issues: %v", c.Reporter.Issues())
	clone := c.Modeling.Template.NodeTemplates.Lookup("clone").(*modeling.NodeTemplate)
	assert.Equal(t, "my.type", clone.TypeName)
	assert.Equal(t, "red", clone.Properties.Lookup("color").(*modeling.Value).Literal)
}

func TestUnknownRelationshipTarget(t *testing.T) {
	c := compile(t, `
tosca_definitions_version: cloudify_dsl_1_3
node_templates:
  app:
    type: cloudify.nodes.Root
    relationships:
      - type: cloudify.relationships.depends_on
        target: ghost
`, nil)

	found := false
	for _, issue := range c.Reporter.Issues() {
		if strings.Contains(issue.Message, "ghost") {
			found = true
		}
	}
	assert.True(t, found, "issues: %v", c.Reporter.Issues())
}
