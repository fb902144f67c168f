package symbols_test

import (
	"testing"

	"github.com/mna/slang/lang/symbols"
	"github.com/mna/slang/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineAndLookup(t *testing.T) {
	tbl := symbols.NewTable()
	err := tbl.Define(symbols.Symbol{Name: "x", Kind: symbols.KindVariable, Type: types.I32, Mutable: true})
	require.NoError(t, err)

	sym, ok := tbl.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.I32, sym.Type)
	assert.True(t, sym.Mutable)

	_, ok = tbl.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestRedefinitionInSameScopeErrors(t *testing.T) {
	tbl := symbols.NewTable()
	require.NoError(t, tbl.Define(symbols.Symbol{Name: "x", Kind: symbols.KindVariable, Type: types.I32}))
	err := tbl.Define(symbols.Symbol{Name: "x", Kind: symbols.KindVariable, Type: types.I64})
	assert.Error(t, err)
}

func TestShadowingAcrossScopesIsAllowed(t *testing.T) {
	tbl := symbols.NewTable()
	require.NoError(t, tbl.Define(symbols.Symbol{Name: "x", Kind: symbols.KindVariable, Type: types.I32}))

	tbl.BeginScope()
	require.NoError(t, tbl.Define(symbols.Symbol{Name: "x", Kind: symbols.KindVariable, Type: types.String}))
	sym, ok := tbl.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.String, sym.Type)
	tbl.EndScope()

	sym, ok = tbl.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.I32, sym.Type)
}

func TestEndGlobalScopePanics(t *testing.T) {
	tbl := symbols.NewTable()
	assert.Panics(t, func() { tbl.EndScope() })
}

func TestLookupLocalDoesNotFallBackToOuterScope(t *testing.T) {
	tbl := symbols.NewTable()
	require.NoError(t, tbl.Define(symbols.Symbol{Name: "x", Kind: symbols.KindVariable, Type: types.I32}))
	tbl.BeginScope()
	_, ok := tbl.LookupLocal("x")
	assert.False(t, ok)
	tbl.EndScope()
}

func TestDefinePrelude(t *testing.T) {
	reg := types.NewRegistry()
	tbl := symbols.NewTable()
	symbols.DefinePrelude(tbl, reg)

	sym, ok := tbl.Lookup("i32")
	require.True(t, ok)
	assert.Equal(t, symbols.KindType, sym.Kind)
	assert.Equal(t, types.I32, sym.Type)

	fn, ok := tbl.Lookup("print_value")
	require.True(t, ok)
	assert.Equal(t, symbols.KindFunction, fn.Kind)
	info := reg.Lookup(fn.Type)
	assert.Equal(t, types.KindFunction, info.Kind)
	assert.Equal(t, types.I32, info.Return)
}

func TestDefinePreludeOutsideGlobalScopePanics(t *testing.T) {
	reg := types.NewRegistry()
	tbl := symbols.NewTable()
	tbl.BeginScope()
	assert.Panics(t, func() { symbols.DefinePrelude(tbl, reg) })
}
