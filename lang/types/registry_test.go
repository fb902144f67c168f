package types_test

import (
	"testing"

	"github.com/mna/slang/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitivesPreregistered(t *testing.T) {
	r := types.NewRegistry()
	cases := []struct {
		id   types.ID
		name string
		kind types.Kind
	}{
		{types.I32, "i32", types.KindInteger},
		{types.I64, "i64", types.KindInteger},
		{types.U32, "u32", types.KindInteger},
		{types.U64, "u64", types.KindInteger},
		{types.F32, "f32", types.KindFloat},
		{types.F64, "f64", types.KindFloat},
		{types.Bool, "bool", types.KindBoolean},
		{types.String, "string", types.KindString},
		{types.Unit, "unit", types.KindUnit},
		{types.UnspecifiedInt, "unspecified_int", types.KindInteger},
		{types.UnspecifiedFloat, "unspecified_float", types.KindFloat},
	}
	for _, c := range cases {
		info := r.Lookup(c.id)
		assert.Equal(t, c.name, info.Name)
		assert.Equal(t, c.kind, info.Kind)
	}
}

func TestUnspecifiedIsFlexible(t *testing.T) {
	r := types.NewRegistry()
	assert.True(t, r.Lookup(types.UnspecifiedInt).IsUnspecified())
	assert.True(t, r.Lookup(types.UnspecifiedFloat).IsUnspecified())
	assert.False(t, r.Lookup(types.I32).IsUnspecified())
	assert.True(t, r.Lookup(types.I32).IsNumeric())
	assert.False(t, r.Lookup(types.Bool).IsNumeric())
}

func TestFunctionInterning(t *testing.T) {
	r := types.NewRegistry()
	a := r.Function([]types.ID{types.I32, types.I32}, types.Bool)
	b := r.Function([]types.ID{types.I32, types.I32}, types.Bool)
	c := r.Function([]types.ID{types.I32}, types.Bool)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	info := r.Lookup(a)
	require.Equal(t, types.KindFunction, info.Kind)
	assert.Equal(t, []types.ID{types.I32, types.I32}, info.Params)
	assert.Equal(t, types.Bool, info.Return)
}

func TestRegisterStructUnique(t *testing.T) {
	r := types.NewRegistry()
	a := r.RegisterStruct("Point", []types.Field{{Name: "x", Type: types.I32}, {Name: "y", Type: types.I32}})
	b := r.RegisterStruct("Point", []types.Field{{Name: "x", Type: types.I32}, {Name: "y", Type: types.I32}})
	assert.NotEqual(t, a, b, "two RegisterStruct calls always produce distinct handles, unlike Function interning")
}

func TestByName(t *testing.T) {
	id, ok := types.ByName("u64")
	require.True(t, ok)
	assert.Equal(t, types.U64, id)

	_, ok = types.ByName("Point")
	assert.False(t, ok)
}

func TestInRange(t *testing.T) {
	r := types.NewRegistry()
	assert.True(t, r.InRange(2147483647, types.I32))
	assert.False(t, r.InRange(2147483648, types.I32))
	assert.True(t, r.InRange(4294967295, types.U32))
	assert.False(t, r.InRange(-1, types.U32))
	assert.True(t, r.InRange(-1, types.I64))
	assert.False(t, r.InRange(-1, types.U64))
}

func TestLookupUnknownHandlePanics(t *testing.T) {
	r := types.NewRegistry()
	assert.Panics(t, func() { r.Lookup(types.ID(9999)) })
}
