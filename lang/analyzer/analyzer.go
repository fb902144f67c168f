// Package analyzer implements the semantic analysis pass: declaration
// registration, expression typing, operator and flow validation, and the
// final narrowing of any literal whose type was never pinned down by
// context. It fuses the symbol table built while walking the tree with the
// type registry shared by every pipeline stage.
package analyzer

import (
	"fmt"

	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/symbols"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
)

// Analyze walks chunk, reporting every diagnostic to diags. It never aborts
// on the first error: a statement or expression that fails to type still
// yields a best-effort type (usually types.Unknown) so the rest of the tree
// can still be checked in the same pass.
//
// The returned Table holds the global scope once analysis completes: the
// prelude plus every top-level struct, function and let-bound variable.
func Analyze(fset *token.FileSet, chunk *ast.Chunk, diags *diag.Engine, reg *types.Registry) *symbols.Table {
	syms := symbols.NewTable()
	symbols.DefinePrelude(syms, reg)
	a := &analyzer{fset: fset, diags: diags, types: reg, syms: syms}
	a.analyzeBlock(chunk.Stmts)
	finalize(chunk)
	return syms
}

type analyzer struct {
	fset  *token.FileSet
	diags *diag.Engine
	types *types.Registry
	syms  *symbols.Table

	// inFunction and funcReturn track the function currently being analyzed,
	// since the language has no closures or nested functions there is never
	// more than one level to remember.
	inFunction bool
	funcReturn types.ID
}

func (a *analyzer) position(pos token.Pos) token.Position { return a.fset.Position(pos) }

func (a *analyzer) errorAt(pos token.Pos, code diag.Code, msg string) {
	a.diags.EmitError(code, msg, a.position(pos))
}

// define adds sym to the innermost scope, reporting a redefinition
// diagnostic qualified by the clashing kinds when the name is already bound
// in that same scope.
func (a *analyzer) define(sym symbols.Symbol, pos token.Pos) bool {
	if existing, ok := a.syms.LookupLocal(sym.Name); ok {
		code := diag.SymbolRedefinition
		if existing.Kind == symbols.KindVariable && sym.Kind == symbols.KindVariable {
			code = diag.VariableRedefinition
		}
		a.errorAt(pos, code, fmt.Sprintf("%s %q is already defined in this scope as a %s", sym.Kind, sym.Name, existing.Kind))
		return false
	}
	_ = a.syms.Define(sym)
	return true
}

// resolveTypeRef resolves a type annotation as written in source to its
// registry handle, resolving struct names through the symbol table (the
// parser can only resolve primitives on its own) and function-type
// annotations by recursively resolving their pieces and interning the
// result.
func (a *analyzer) resolveTypeRef(ref *ast.TypeRef) types.ID {
	if ref.Func != nil {
		params := make([]types.ID, len(ref.Func.Params))
		for i := range ref.Func.Params {
			params[i] = a.resolveTypeRef(&ref.Func.Params[i])
		}
		ret := a.resolveTypeRef(&ref.Func.Return)
		id := a.types.Function(params, ret)
		ref.Resolved = id
		ref.Func.SetType(id)
		return id
	}
	if ref.Resolved != types.Unknown {
		return ref.Resolved
	}
	if ref.Name == "" {
		return types.Unknown
	}
	sym, ok := a.syms.Lookup(ref.Name)
	if !ok || sym.Kind != symbols.KindType {
		a.errorAt(ref.Pos, diag.UnknownType, "unknown type "+ref.Name)
		return types.Unknown
	}
	ref.Resolved = sym.Type
	return sym.Type
}

// exprPos returns the start position of an expression, for diagnostics that
// anchor on a whole subexpression rather than a single token.
func exprPos(e ast.Expr) token.Pos {
	start, _ := e.Span()
	return start
}

// coerceOrError returns target when actual already matches it, or when
// actual is an unspecified literal type that can be narrowed to target (the
// only implicit conversion the language allows); otherwise it reports code
// at pos and still returns target, so callers can keep propagating a type
// without re-checking the failure.
func (a *analyzer) coerceOrError(target, actual types.ID, expr ast.Expr, pos token.Pos, code diag.Code) types.ID {
	if target == actual || target == types.Unknown || actual == types.Unknown {
		return target
	}
	if actual == types.UnspecifiedInt && isIntegerType(a.types, target) {
		a.checkUnspecifiedIntForType(expr, target)
		return target
	}
	if actual == types.UnspecifiedFloat && isFloatType(a.types, target) {
		a.checkUnspecifiedFloatForType(expr, target)
		return target
	}
	a.errorAt(pos, code, fmt.Sprintf("expected %s, found %s", a.types.Name(target), a.types.Name(actual)))
	return target
}
