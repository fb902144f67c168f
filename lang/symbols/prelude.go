package symbols

import "github.com/mna/slang/lang/types"

// primitiveNames lists every reserved type name that gets a KindType symbol
// in the global scope, so that a bare identifier lookup for e.g. "i32"
// resolves to a symbol rather than only being recognized by the parser's
// keyword table.
var primitiveNames = []struct {
	name string
	id   types.ID
}{
	{"i32", types.I32},
	{"i64", types.I64},
	{"u32", types.U32},
	{"u64", types.U64},
	{"f32", types.F32},
	{"f64", types.F64},
	{"bool", types.Bool},
	{"string", types.String},
	{"unit", types.Unit},
}

// DefinePrelude populates the global scope with the reserved primitive type
// names and the single built-in native function, print_value, which accepts
// a value of any type and returns i32. Grounded on the original compiler's
// register_native_functions: print_value is the only native function every
// program starts with.
func DefinePrelude(t *Table, reg *types.Registry) {
	if !t.InGlobalScope() {
		panic("symbols: DefinePrelude must be called before entering any nested scope")
	}
	for _, p := range primitiveNames {
		_ = t.Define(Symbol{Name: p.name, Kind: KindType, Type: p.id})
	}

	printValueType := reg.Function([]types.ID{types.Unknown}, types.I32)
	_ = t.Define(Symbol{Name: "print_value", Kind: KindFunction, Type: printValueType})
}
