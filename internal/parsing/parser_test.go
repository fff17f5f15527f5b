package parsing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/duyamin/aria-ng/internal/loading"
	"github.com/duyamin/aria-ng/internal/presentation"
	"github.com/duyamin/aria-ng/internal/tosca"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestParser() *Parser {
	return NewParser(loading.NewSource(), presentation.NewSource(tosca.Class))
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParser_Literal(t *testing.T) {
	pctx := presentation.NewContext()
	pres, err := newTestParser().Parse(context.Background(), pctx, loading.LiteralLocation{
		Content: "tosca_definitions_version: tosca_simple_yaml_1_0\n",
	})
	require.NoError(t, err)
	st, ok := pres.(*tosca.ServiceTemplate)
	require.True(t, ok)
	assert.Equal(t, "tosca_simple_yaml_1_0", st.DefinitionsVersion())
	assert.Equal(t, 0, pctx.Reporter.Len())
}

func TestParser_NoPresenter(t *testing.T) {
	pctx := presentation.NewContext()
	_, err := newTestParser().Parse(context.Background(), pctx, loading.LiteralLocation{
		Content: "not_a_service_template: true\n",
	})
	require.Error(t, err)
	var notFound *presentation.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestParser_ImportMerge(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "types.yaml", `
tosca_definitions_version: tosca_simple_yaml_1_0
node_types:
  imported.type:
    derived_from: tosca.nodes.Root
  shadowed.type:
    description: from import
`)
	main := write(t, dir, "main.yaml", `
tosca_definitions_version: tosca_simple_yaml_1_0
imports:
  - types.yaml
node_types:
  shadowed.type:
    description: from main
topology_template:
  node_templates:
    n:
      type: imported.type
`)

	pctx := presentation.NewContext()
	pres, err := newTestParser().Parse(context.Background(), pctx, loading.FileLocation{Path: main})
	require.NoError(t, err)
	st := pres.(*tosca.ServiceTemplate)

	require.True(t, st.NodeTypes().Has("imported.type"), "imported type must be merged")
	shadowed := st.NodeTypes().Lookup("shadowed.type").(*tosca.NodeType)
	assert.Equal(t, "from main", shadowed.Description(), "main document wins on collision")

	presentation.Validate(pctx, st)
	assert.Equal(t, 0, pctx.Reporter.Len(), "imported types resolve: %v", pctx.Reporter.Issues())
}

func TestParser_ImportCycle(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.yaml", `
tosca_definitions_version: tosca_simple_yaml_1_0
imports:
  - b.yaml
node_types:
  a.type: {}
`)
	write(t, dir, "b.yaml", `
tosca_definitions_version: tosca_simple_yaml_1_0
imports:
  - a.yaml
node_types:
  b.type: {}
`)

	pctx := presentation.NewContext()
	pres, err := newTestParser().Parse(context.Background(), pctx, loading.FileLocation{Path: filepath.Join(dir, "a.yaml")})
	require.NoError(t, err)
	st := pres.(*tosca.ServiceTemplate)

	assert.True(t, st.NodeTypes().Has("a.type"))
	assert.True(t, st.NodeTypes().Has("b.type"))
	assert.Equal(t, 0, pctx.Reporter.Len(), "cycle must not produce issues: %v", pctx.Reporter.Issues())
}

func TestParser_MissingImportReportsIssue(t *testing.T) {
	dir := t.TempDir()
	main := write(t, dir, "main.yaml", `
tosca_definitions_version: tosca_simple_yaml_1_0
imports:
  - nowhere.yaml
`)

	pctx := presentation.NewContext()
	_, err := newTestParser().Parse(context.Background(), pctx, loading.FileLocation{Path: main})
	require.NoError(t, err, "worker failures surface as issues, not errors")
	assert.Equal(t, 1, pctx.Reporter.Len())
}

func TestParser_ImportDeterminism(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "x.yaml", "tosca_definitions_version: tosca_simple_yaml_1_0\nnode_types:\n  x.type: {}\n")
	write(t, dir, "y.yaml", "tosca_definitions_version: tosca_simple_yaml_1_0\nnode_types:\n  y.type: {}\n")
	main := write(t, dir, "main.yaml", `
tosca_definitions_version: tosca_simple_yaml_1_0
imports:
  - x.yaml
  - y.yaml
`)

	for i := 0; i < 8; i++ {
		pctx := presentation.NewContext()
		pres, err := newTestParser().Parse(context.Background(), pctx, loading.FileLocation{Path: main})
		require.NoError(t, err)
		st := pres.(*tosca.ServiceTemplate)
		assert.True(t, st.NodeTypes().Has("x.type"))
		assert.True(t, st.NodeTypes().Has("y.type"))
	}
}
