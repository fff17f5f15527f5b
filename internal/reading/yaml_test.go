package reading

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLReader_PreservesOrder(t *testing.T) {
	doc, err := YAMLReader{}.Read([]byte("zebra: 1\nalpha: 2\nmango: 3\n"), "test.yaml")
	require.NoError(t, err)

	m := AsMap(doc.Raw)
	require.NotNil(t, m)
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, m.Keys())
}

func TestYAMLReader_Locations(t *testing.T) {
	src := "top:\n  nested:\n    leaf: value\n"
	doc, err := YAMLReader{}.Read([]byte(src), "test.yaml")
	require.NoError(t, err)

	leaf := doc.Locator.Path("top", "nested", "leaf")
	assert.Equal(t, "test.yaml", leaf.Location)
	assert.Equal(t, 3, leaf.Line)
	assert.Equal(t, 11, leaf.Column)

	// A path with no exact node inherits the nearest ancestor.
	missing := doc.Locator.Path("top", "nested", "nope", "deeper")
	assert.Equal(t, 3, missing.Line)
}

func TestYAMLReader_ScalarTypes(t *testing.T) {
	src := "i: 42\nf: 1.5\nb: true\nn: null\ns: hello\n"
	doc, err := YAMLReader{}.Read([]byte(src), "test.yaml")
	require.NoError(t, err)

	m := AsMap(doc.Raw)
	assert.Equal(t, 42, m.Lookup("i"))
	assert.Equal(t, 1.5, m.Lookup("f"))
	assert.Equal(t, true, m.Lookup("b"))
	assert.Nil(t, m.Lookup("n"))
	assert.Equal(t, "hello", m.Lookup("s"))
}

func TestYAMLReader_MergeKeys(t *testing.T) {
	src := `
base: &base
  a: 1
  b: 2
derived:
  <<: *base
  b: 20
  c: 3
`
	doc, err := YAMLReader{}.Read([]byte(src), "test.yaml")
	require.NoError(t, err)

	derived := AsMap(AsMap(doc.Raw).Lookup("derived"))
	require.NotNil(t, derived)
	assert.Equal(t, 20, derived.Lookup("b"), "explicit key wins over merge")
	assert.Equal(t, 1, derived.Lookup("a"), "merged key is spread in")
	assert.Equal(t, 3, derived.Lookup("c"))
}

func TestYAMLReader_SyntaxError(t *testing.T) {
	_, err := YAMLReader{}.Read([]byte("a: b\n  bad indent: [\n"), "broken.yaml")
	require.Error(t, err)

	var syntax *SyntaxError
	require.True(t, errors.As(err, &syntax))
	assert.Equal(t, "broken.yaml", syntax.Location)
	assert.Greater(t, syntax.Line, 0)
	assert.NotEmpty(t, syntax.Snippet)
}

func TestYAMLReader_EmptyDocument(t *testing.T) {
	doc, err := YAMLReader{}.Read([]byte(""), "empty.yaml")
	require.NoError(t, err)
	m := AsMap(doc.Raw)
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Len())
}

func TestYAML_RoundTrip(t *testing.T) {
	src := "b: 1\na:\n  - x\n  - y: true\nc:\n  q: 1.5\n  p: str\n"
	doc, err := YAMLReader{}.Read([]byte(src), "test.yaml")
	require.NoError(t, err)

	out, err := MarshalYAML(doc.Raw, 2)
	require.NoError(t, err)

	again, err := YAMLReader{}.Read(out, "test.yaml")
	require.NoError(t, err)
	if !EqualRaw(doc.Raw, again.Raw) {
		t.Errorf("round trip changed document:\n%s", cmp.Diff(Agnostic(doc.Raw), Agnostic(again.Raw)))
	}
	// Order survives serialization.
	assert.Equal(t, AsMap(doc.Raw).Keys(), AsMap(again.Raw).Keys())
}

func TestJSONReader(t *testing.T) {
	src := `{"z": 1, "a": [1, 2.5, "s", null, true], "m": {"k": "v"}}`
	doc, err := JSONReader{}.Read([]byte(src), "test.json")
	require.NoError(t, err)

	m := AsMap(doc.Raw)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
	assert.Equal(t, 1, m.Lookup("z"))
	list := AsList(m.Lookup("a"))
	require.Len(t, list, 5)
	assert.Equal(t, 2.5, list[1])

	_, err = JSONReader{}.Read([]byte(`{"a": }`), "bad.json")
	var syntax *SyntaxError
	require.True(t, errors.As(err, &syntax))
}

func TestMarshalJSON_Order(t *testing.T) {
	doc, err := YAMLReader{}.Read([]byte("z: 1\na: 2\n"), "t.yaml")
	require.NoError(t, err)
	out, err := MarshalJSON(doc.Raw, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"z": 1,"a": 2}`+"\n", string(out))
}
