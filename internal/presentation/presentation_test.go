package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duyamin/aria-ng/internal/reading"
)

// widget is a minimal presenter class for exercising the field machinery.
type widget struct {
	Base
}

var widgetSchema = &Schema{
	ShortForm: "kind",
	Fields: []Field{
		{Name: "kind", Kind: Primitive, Type: StringPrimitive, Required: true},
		{Name: "count", Kind: Primitive, Type: IntPrimitive, Default: 1},
		{Name: "tags", Kind: PrimitiveList, Type: StringPrimitive},
		{Name: "parts", Kind: ObjectDict, New: newWidget},
	},
}

func newWidget(name string, raw any, locator *reading.Locator) Presenter {
	p := &widget{}
	p.Init(name, raw, locator, widgetSchema)
	return p
}

func read(t *testing.T, src string) *reading.Document {
	t.Helper()
	doc, err := reading.YAMLReader{}.Read([]byte(src), "widget.yaml")
	require.NoError(t, err)
	return doc
}

func TestShortFormNormalization(t *testing.T) {
	doc := read(t, "just-a-string\n")
	w := newWidget("w", doc.Raw, doc.Locator).(*widget)
	assert.Equal(t, "just-a-string", w.GetString(w, "kind"))
}

func TestFieldDefaults(t *testing.T) {
	doc := read(t, "kind: gear\n")
	w := newWidget("w", doc.Raw, doc.Locator).(*widget)
	assert.Equal(t, 1, w.GetInt(w, "count", 0), "declared default applies")
}

func TestValidate_RequiredAndUnknown(t *testing.T) {
	doc := read(t, "count: 2\nmystery: true\n")
	w := newWidget("w", doc.Raw, doc.Locator)

	ctx := NewContext()
	ctx.Root = w
	Validate(ctx, w)

	issues := ctx.Reporter.Issues()
	require.Len(t, issues, 2)
	var missing, unknown bool
	for _, issue := range issues {
		if issue.Message == `required field "kind" missing in "w"` {
			missing = true
		}
		if issue.Message == `unknown field "mystery" in "w"` {
			unknown = true
		}
	}
	assert.True(t, missing)
	assert.True(t, unknown)
}

func TestValidate_KindMismatch(t *testing.T) {
	doc := read(t, "kind: gear\ntags: not-a-list\n")
	w := newWidget("w", doc.Raw, doc.Locator)

	ctx := NewContext()
	ctx.Root = w
	Validate(ctx, w)
	require.Equal(t, 1, ctx.Reporter.Len())
	assert.Contains(t, ctx.Reporter.Issues()[0].Message, "must be a sequence")
}

func TestObjectDictChildren(t *testing.T) {
	doc := read(t, "kind: gear\nparts:\n  axle: {kind: rod}\n  nut: bolt\n")
	w := newWidget("w", doc.Raw, doc.Locator).(*widget)

	parts := w.GetObjectDict(w, "parts")
	require.Equal(t, 2, parts.Len())
	axle := parts.Lookup("axle").(*widget)
	assert.Equal(t, "rod", axle.GetString(axle, "kind"))
	nut := parts.Lookup("nut").(*widget)
	assert.Equal(t, "bolt", nut.GetString(nut, "kind"), "short form in child position")
	assert.Equal(t, "w", nut.Container().Name())

	// Field access caches: same presenters on repeat access.
	again := w.GetObjectDict(w, "parts")
	assert.Same(t, parts, again)
}
