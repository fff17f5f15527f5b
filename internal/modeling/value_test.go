package modeling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duyamin/aria-ng/internal/reading"
)

func parseRaw(t *testing.T, src string) *reading.Document {
	t.Helper()
	doc, err := reading.YAMLReader{}.Read([]byte(src), "value.yaml")
	require.NoError(t, err)
	return doc
}

func TestParseValue_RecognizesFunctions(t *testing.T) {
	doc := parseRaw(t, "get_input: port\n")
	v := ParseValue(doc.Raw, doc.Locator)
	require.NotNil(t, v.Function)
	assert.Equal(t, GetInput, v.Function.Kind)
	require.Len(t, v.Function.Args, 1)
	assert.Equal(t, "port", v.Function.Args[0].Literal)
}

func TestParseValue_NestedInContainers(t *testing.T) {
	doc := parseRaw(t, "outer:\n  inner: {get_input: port}\nplain: 1\n")
	v := ParseValue(doc.Raw, doc.Locator)
	require.Nil(t, v.Function)

	raw := v.AsRaw()
	if !reading.EqualRaw(doc.Raw, raw) {
		t.Errorf("AsRaw must reconstruct the original document")
	}
}

func TestCoerce_GetInputAndConcat(t *testing.T) {
	doc := parseRaw(t, "concat: [\"port=\", {get_input: port}]\n")
	v := ParseValue(doc.Raw, doc.Locator)

	ctx := NewContext()
	ctx.Inputs = map[string]any{"port": 8080}
	out, ok := v.CoerceChecked(ctx, Resolution{})
	assert.True(t, ok)
	assert.Equal(t, "port=8080", out)
	assert.Equal(t, 0, ctx.Reporter.Len())
}

func TestCoerce_UnknownInputReports(t *testing.T) {
	doc := parseRaw(t, "get_input: missing\n")
	v := ParseValue(doc.Raw, doc.Locator)

	ctx := NewContext()
	_, ok := v.CoerceChecked(ctx, Resolution{})
	assert.False(t, ok, "unresolved functions stay pending")
	assert.Equal(t, 1, ctx.Reporter.Len())
}

func TestCoerce_Idempotent(t *testing.T) {
	doc := parseRaw(t, "get_input: port\n")
	v := ParseValue(doc.Raw, doc.Locator)
	ctx := NewContext()
	ctx.Inputs = map[string]any{"port": 8080}

	out, ok := v.CoerceChecked(ctx, Resolution{})
	require.True(t, ok)
	literal := &Value{Literal: out}
	again, ok := literal.CoerceChecked(ctx, Resolution{})
	require.True(t, ok)
	assert.Equal(t, out, again)
}

func TestMergeOperation_FieldByField(t *testing.T) {
	retries := 3
	base := NewOperation("start")
	base.Implementation = "mock.tasks.start"
	base.Executor = "central_deployment_agent"
	base.MaxRetries = &retries
	base.Inputs.Set("a", &Value{Literal: 1})

	override := NewOperation("start")
	override.Implementation = "mock.tasks.start-overridden"
	override.Inputs.Set("b", &Value{Literal: 2})

	merged := MergeOperation(base, override)
	assert.Equal(t, "mock.tasks.start-overridden", merged.Implementation)
	assert.Equal(t, "central_deployment_agent", merged.Executor)
	require.NotNil(t, merged.MaxRetries)
	assert.Equal(t, 3, *merged.MaxRetries)
	assert.True(t, merged.Inputs.Has("a"))
	assert.True(t, merged.Inputs.Has("b"))
}
