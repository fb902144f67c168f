package analyzer

import (
	"fmt"

	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/types"
)

func isIntegerType(reg *types.Registry, id types.ID) bool {
	if id == types.UnspecifiedInt {
		return false
	}
	return reg.Lookup(id).Kind == types.KindInteger
}

func isFloatType(reg *types.Registry, id types.ID) bool {
	if id == types.UnspecifiedFloat {
		return false
	}
	return reg.Lookup(id).Kind == types.KindFloat
}

func isNumeric(reg *types.Registry, id types.ID) bool { return reg.Lookup(id).IsNumeric() }

func isUnsignedType(reg *types.Registry, id types.ID) bool {
	info := reg.Lookup(id)
	return info.Kind == types.KindInteger && !info.Signed && info.Bits > 0
}

func mismatchMsg(reg *types.Registry, op string, lt, rt types.ID) string {
	return fmt.Sprintf("operator %q is not defined for %s and %s", op, reg.Name(lt), reg.Name(rt))
}

// tryCoerceNumericPair checks the four unspecified-literal-against-concrete
// combinations that make a pair of otherwise mismatched numeric operands
// compatible, range-checking the literal side. It reports nothing itself
// beyond that range check; the caller decides what to do when it returns
// false.
func (a *analyzer) tryCoerceNumericPair(lt, rt types.ID, x *ast.BinaryExpr) bool {
	switch {
	case lt == types.UnspecifiedInt && isIntegerType(a.types, rt):
		a.checkUnspecifiedIntForType(x.Left, rt)
		return true
	case rt == types.UnspecifiedInt && isIntegerType(a.types, lt):
		a.checkUnspecifiedIntForType(x.Right, lt)
		return true
	case lt == types.UnspecifiedFloat && isFloatType(a.types, rt):
		a.checkUnspecifiedFloatForType(x.Left, rt)
		return true
	case rt == types.UnspecifiedFloat && isFloatType(a.types, lt):
		a.checkUnspecifiedFloatForType(x.Right, lt)
		return true
	}
	return false
}

// checkUnspecifiedIntForType range-checks an unspecified integer literal
// against a target type it is being coerced to. A negated literal
// (`-2147483648`, say) is recognized one level up through the unary
// expression, since the sign is only visible there; negating an unsigned
// target is always out of range regardless of magnitude.
func (a *analyzer) checkUnspecifiedIntForType(expr ast.Expr, target types.ID) {
	if u, ok := expr.(*ast.UnaryExpr); ok && u.Op == ast.OpNeg {
		if lit, ok := u.Right.(*ast.LiteralExpr); ok && lit.Kind == ast.LitUnspecifiedInt {
			u.SetType(target)
			lit.SetType(target)
			if isUnsignedType(a.types, target) {
				a.errorAt(u.OpPos, diag.ValueOutOfRange, fmt.Sprintf("value -%d out of range for %s", lit.Int, a.types.Name(target)))
				return
			}
			if !a.types.InRange(-lit.Int, target) {
				a.errorAt(u.OpPos, diag.ValueOutOfRange, fmt.Sprintf("value -%d out of range for %s", lit.Int, a.types.Name(target)))
			}
			return
		}
	}
	if lit, ok := expr.(*ast.LiteralExpr); ok && lit.Kind == ast.LitUnspecifiedInt {
		lit.SetType(target)
		if !a.types.InRange(lit.Int, target) {
			a.errorAt(exprPos(expr), diag.ValueOutOfRange, fmt.Sprintf("value %d out of range for %s", lit.Int, a.types.Name(target)))
		}
		return
	}
	// expr merely carries the unspecified type without being a literal (e.g.
	// a variable whose own declaration was never pinned down); nothing to
	// narrow here, the caller's target type already won.
}

// checkUnspecifiedFloatForType is the float counterpart of
// checkUnspecifiedIntForType; floats have no unsigned types so there is no
// separate negation case.
func (a *analyzer) checkUnspecifiedFloatForType(expr ast.Expr, target types.ID) {
	if lit, ok := expr.(*ast.LiteralExpr); ok && lit.Kind == ast.LitUnspecifiedFloat {
		lit.SetType(target)
		if !a.types.FloatInRange(lit.Float, target) {
			a.errorAt(exprPos(expr), diag.ValueOutOfRange, fmt.Sprintf("value %g out of range for %s", lit.Float, a.types.Name(target)))
		}
	}
}
