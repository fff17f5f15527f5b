package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_Primitives(t *testing.T) {
	v, err := Coerce(TypeInteger, "42")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = Coerce(TypeFloat, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = Coerce(TypeBoolean, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Coerce(TypeString, 7)
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	_, err = Coerce(TypeInteger, "not a number")
	assert.Error(t, err)

	_, err = Coerce(TypeInteger, []any{1})
	assert.Error(t, err)
}

func TestCoerce_Timestamp(t *testing.T) {
	_, err := Coerce(TypeTimestamp, "2016-03-04T12:00:00Z")
	assert.NoError(t, err)
	_, err = Coerce(TypeTimestamp, "2016-03-04")
	assert.NoError(t, err)
	_, err = Coerce(TypeTimestamp, "yesterday")
	assert.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.2.3.beta-4")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Major)
	assert.Equal(t, 2, v.Minor)
	assert.Equal(t, 3, v.Fix)
	assert.Equal(t, "beta", v.Qualifier)
	assert.Equal(t, 4, v.Build)

	older, err := ParseVersion("1.2")
	require.NoError(t, err)
	assert.Negative(t, older.Compare(v))

	_, err = ParseVersion("nope")
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange([]any{1, 10})
	require.NoError(t, err)
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(11))

	r, err = ParseRange([]any{0, UnboundedMarker})
	require.NoError(t, err)
	assert.True(t, r.Unbounded)
	assert.True(t, r.Contains(1<<30))

	_, err = ParseRange([]any{10, 1})
	assert.Error(t, err, "lower must be below upper")

	_, err = ParseRange([]any{1})
	assert.Error(t, err, "exactly two elements")
}

func TestScalarUnits(t *testing.T) {
	v, err := Coerce(TypeScalarSize, "2 MiB")
	require.NoError(t, err)
	assert.Equal(t, float64(2*1024*1024), v)

	v, err = Coerce(TypeScalarTime, "1.5 h")
	require.NoError(t, err)
	assert.Equal(t, 5400.0, v)

	v, err = Coerce(TypeScalarFrequency, "2 GHz")
	require.NoError(t, err)
	assert.Equal(t, 2e9, v)

	_, err = Coerce(TypeScalarSize, "2 parsecs")
	assert.Error(t, err)
}

func TestConstraints(t *testing.T) {
	c := &Constraint{Operator: ConstraintGreaterOrEqual, Argument: "1", TypeName: TypeInteger}
	assert.NoError(t, c.Apply(1))
	assert.Error(t, c.Apply(0))

	c = &Constraint{Operator: ConstraintInRange, Argument: []any{2, "UNBOUNDED"}, TypeName: TypeInteger}
	require.NoError(t, c.Check())
	assert.NoError(t, c.Apply(2))
	assert.Error(t, c.Apply(1))

	c = &Constraint{Operator: ConstraintValidValues, Argument: []any{"a", "b"}, TypeName: TypeString}
	assert.NoError(t, c.Apply("a"))
	assert.Error(t, c.Apply("c"))

	c = &Constraint{Operator: ConstraintPattern, Argument: `^v\d+$`, TypeName: TypeString}
	require.NoError(t, c.Check())
	assert.NoError(t, c.Apply("v10"))
	assert.Error(t, c.Apply("ten"))

	c = &Constraint{Operator: ConstraintPattern, Argument: "("}
	assert.Error(t, c.Check(), "pattern must compile")

	c = &Constraint{Operator: ConstraintMaxLength, Argument: 3, TypeName: TypeString}
	assert.NoError(t, c.Apply("abc"))
	assert.Error(t, c.Apply("abcd"))

	c = &Constraint{Operator: ConstraintInRange, Argument: []any{5, 1}}
	assert.Error(t, c.Check(), "in_range bounds must be ordered")
}
