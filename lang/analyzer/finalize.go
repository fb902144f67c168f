package analyzer

import (
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/types"
)

// finalize narrows every expression whose type is still unspecified_int or
// unspecified_float once analysis of the whole chunk has settled: a literal
// that was never constrained by an annotation, an operator or an argument
// position (a bare `42;` statement, say) defaults to i64 or f64. It also
// syncs the literal's own Kind to its (possibly already coerced, by
// coerceOrError or unifyBranchTypes, to something other than i64/f64)
// finalized Type, so the code generator can key off Kind alone.
func finalize(chunk *ast.Chunk) {
	var v ast.VisitorFunc
	v = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitExit {
			return v
		}
		finalizeNode(n)
		return nil
	}
	ast.Walk(v, chunk)
}

// typeToLitKind maps a concrete numeric type back to the LiteralKind that
// denotes it, for syncing a literal's Kind to a Type it was coerced to
// earlier in analysis (coercion updates Type via SetType but never touches
// Kind directly, since the coercion helpers operate in terms of types, not
// AST literal kinds).
var typeToLitKind = map[types.ID]ast.LiteralKind{
	types.I32: ast.LitI32,
	types.I64: ast.LitI64,
	types.U32: ast.LitU32,
	types.U64: ast.LitU64,
	types.F32: ast.LitF32,
	types.F64: ast.LitF64,
}

func finalizeNode(n ast.Node) {
	if lit, ok := n.(*ast.LiteralExpr); ok {
		switch lit.Kind {
		case ast.LitUnspecifiedInt:
			if lit.Type() == types.UnspecifiedInt {
				lit.SetType(types.I64)
			}
			lit.Kind = typeToLitKind[lit.Type()]
		case ast.LitUnspecifiedFloat:
			if lit.Type() == types.UnspecifiedFloat {
				lit.SetType(types.F64)
			}
			lit.Kind = typeToLitKind[lit.Type()]
		}
		return
	}
	e, ok := n.(ast.Expr)
	if !ok {
		return
	}
	switch e.Type() {
	case types.UnspecifiedInt:
		e.SetType(types.I64)
	case types.UnspecifiedFloat:
		e.SetType(types.F64)
	}
}
