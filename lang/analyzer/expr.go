package analyzer

import (
	"fmt"

	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/symbols"
	"github.com/mna/slang/lang/types"
)

var literalTypes = map[ast.LiteralKind]types.ID{
	ast.LitI32:              types.I32,
	ast.LitI64:              types.I64,
	ast.LitU32:              types.U32,
	ast.LitU64:              types.U64,
	ast.LitUnspecifiedInt:   types.UnspecifiedInt,
	ast.LitF32:              types.F32,
	ast.LitF64:              types.F64,
	ast.LitUnspecifiedFloat: types.UnspecifiedFloat,
	ast.LitString:           types.String,
	ast.LitBool:             types.Bool,
	ast.LitUnit:             types.Unit,
}

func (a *analyzer) typeExpr(e ast.Expr) types.ID {
	if e == nil {
		return types.Unit
	}
	switch x := e.(type) {
	case *ast.LiteralExpr:
		return a.typeLiteral(x)
	case *ast.VariableExpr:
		return a.typeVariable(x)
	case *ast.BinaryExpr:
		return a.typeBinary(x)
	case *ast.UnaryExpr:
		return a.typeUnary(x)
	case *ast.CallExpr:
		return a.typeCall(x)
	case *ast.ConditionalExpr:
		return a.typeConditional(x)
	case *ast.BlockExpr:
		return a.typeBlockExpr(x)
	default:
		return types.Unknown
	}
}

func (a *analyzer) typeLiteral(x *ast.LiteralExpr) types.ID {
	id, ok := literalTypes[x.Kind]
	if !ok {
		id = types.Unknown
	}
	x.SetType(id)
	return id
}

func (a *analyzer) typeVariable(x *ast.VariableExpr) types.ID {
	sym, ok := a.syms.Lookup(x.Name)
	if !ok {
		a.errorAt(x.Pos, diag.UndefinedVariable, "undefined variable "+x.Name)
		x.SetType(types.Unknown)
		return types.Unknown
	}
	x.SetType(sym.Type)
	return sym.Type
}

func (a *analyzer) typeBinary(x *ast.BinaryExpr) types.ID {
	lt := a.typeExpr(x.Left)
	rt := a.typeExpr(x.Right)

	var result types.ID
	switch x.Op {
	case ast.OpAnd, ast.OpOr:
		result = a.checkLogical(lt, rt, x)
	case ast.OpEq, ast.OpNeq:
		result = a.checkEquality(lt, rt, x)
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		result = a.checkComparison(lt, rt, x)
	default:
		result = a.checkArithmetic(lt, rt, x)
	}
	x.SetType(result)
	return result
}

func (a *analyzer) checkLogical(lt, rt types.ID, x *ast.BinaryExpr) types.ID {
	leftBad := lt != types.Bool && lt != types.Unknown
	rightBad := rt != types.Bool && rt != types.Unknown
	if leftBad || rightBad {
		a.errorAt(x.OpPos, diag.LogicalOperatorTypeMismatch, diag.LogicalOperatorTypeMismatch.Description())
	}
	return types.Bool
}

func (a *analyzer) checkEquality(lt, rt types.ID, x *ast.BinaryExpr) types.ID {
	if lt == types.Unknown || rt == types.Unknown {
		return types.Bool
	}
	if lt == rt {
		return types.Bool
	}
	if isNumeric(a.types, lt) && isNumeric(a.types, rt) && a.tryCoerceNumericPair(lt, rt, x) {
		return types.Bool
	}
	a.errorAt(x.OpPos, diag.OperationTypeMismatch, mismatchMsg(a.types, x.Op.String(), lt, rt))
	return types.Bool
}

func (a *analyzer) checkComparison(lt, rt types.ID, x *ast.BinaryExpr) types.ID {
	if lt == types.Unknown || rt == types.Unknown {
		return types.Bool
	}
	if !isNumeric(a.types, lt) || !isNumeric(a.types, rt) {
		a.errorAt(x.OpPos, diag.OperationTypeMismatch, mismatchMsg(a.types, x.Op.String(), lt, rt))
		return types.Bool
	}
	if lt == rt {
		return types.Bool
	}
	if a.tryCoerceNumericPair(lt, rt, x) {
		return types.Bool
	}
	a.errorAt(x.OpPos, diag.OperationTypeMismatch, mismatchMsg(a.types, x.Op.String(), lt, rt))
	return types.Bool
}

// checkArithmetic is grounded on the split between same-type and
// mixed-type arithmetic: two operands of the identical type are checked for
// which kinds even allow arithmetic, two different types are checked for
// the handful of coercions the language allows.
func (a *analyzer) checkArithmetic(lt, rt types.ID, x *ast.BinaryExpr) types.ID {
	if lt == types.Unknown || rt == types.Unknown {
		return types.Unknown
	}
	if lt == rt {
		return a.checkSameTypeArithmetic(lt, x)
	}
	return a.checkMixedArithmetic(lt, rt, x)
}

func (a *analyzer) checkSameTypeArithmetic(t types.ID, x *ast.BinaryExpr) types.ID {
	info := a.types.Lookup(t)
	if info.Kind == types.KindBoolean || info.Kind == types.KindUnit || info.Kind == types.KindFunction {
		a.errorAt(x.OpPos, diag.OperationTypeMismatch, mismatchMsg(a.types, x.Op.String(), t, t))
		return t
	}
	if info.Kind == types.KindString && x.Op != ast.OpAdd {
		a.errorAt(x.OpPos, diag.OperationTypeMismatch, mismatchMsg(a.types, x.Op.String(), t, t))
		return t
	}
	return t
}

func (a *analyzer) checkMixedArithmetic(lt, rt types.ID, x *ast.BinaryExpr) types.ID {
	switch {
	case lt == types.UnspecifiedInt && isIntegerType(a.types, rt):
		a.checkUnspecifiedIntForType(x.Left, rt)
		return rt
	case rt == types.UnspecifiedInt && isIntegerType(a.types, lt):
		a.checkUnspecifiedIntForType(x.Right, lt)
		return lt
	case lt == types.UnspecifiedFloat && isFloatType(a.types, rt):
		a.checkUnspecifiedFloatForType(x.Left, rt)
		return rt
	case rt == types.UnspecifiedFloat && isFloatType(a.types, lt):
		a.checkUnspecifiedFloatForType(x.Right, lt)
		return lt
	case x.Op == ast.OpAdd && lt == types.String && rt == types.String:
		return types.String
	}
	a.errorAt(x.OpPos, diag.OperationTypeMismatch, mismatchMsg(a.types, x.Op.String(), lt, rt))
	return types.Unknown
}

func (a *analyzer) typeUnary(x *ast.UnaryExpr) types.ID {
	rt := a.typeExpr(x.Right)
	var result types.ID
	switch x.Op {
	case ast.OpNeg:
		result = a.checkUnaryNeg(rt, x)
	default: // OpNot
		if rt != types.Bool && rt != types.Unknown {
			a.errorAt(x.OpPos, diag.InvalidUnaryOperation, "'!' requires a bool operand")
		}
		result = types.Bool
	}
	x.SetType(result)
	return result
}

func (a *analyzer) checkUnaryNeg(rt types.ID, x *ast.UnaryExpr) types.ID {
	if rt == types.Unknown {
		return types.Unknown
	}
	info := a.types.Lookup(rt)
	if !info.IsNumeric() {
		a.errorAt(x.OpPos, diag.InvalidUnaryOperation, "unary '-' requires a numeric operand")
		return rt
	}
	if info.Kind == types.KindInteger && !info.Signed && info.Bits > 0 {
		a.errorAt(x.OpPos, diag.InvalidUnaryOperation, "cannot negate an unsigned integer")
		return rt
	}
	return rt
}

// typeCall handles both a plain function-name call and a call through a
// variable holding a function value; either way the callee must resolve to
// a function type, arity must match exactly, and each argument must match
// (or coerce to) the corresponding parameter, except for a native
// function's types.Unknown parameter slot (print_value), which accepts any
// type.
func (a *analyzer) typeCall(x *ast.CallExpr) types.ID {
	calleeType := a.typeCallee(x.Callee)
	info := a.types.Lookup(calleeType)
	if info.Kind != types.KindFunction {
		if calleeType != types.Unknown {
			a.errorAt(exprPos(x.Callee), diag.VariableNotCallable, "value is not callable")
		}
		for _, arg := range x.Args {
			a.typeExpr(arg)
		}
		x.SetType(types.Unknown)
		return types.Unknown
	}

	if len(x.Args) != len(info.Params) {
		a.errorAt(x.RParen, diag.ArgumentCountMismatch, fmt.Sprintf("expected %d arguments, found %d", len(info.Params), len(x.Args)))
	}
	n := min(len(x.Args), len(info.Params))
	for i := 0; i < n; i++ {
		argType := a.typeExpr(x.Args[i])
		if info.Params[i] == types.Unknown {
			continue
		}
		a.coerceOrError(info.Params[i], argType, x.Args[i], exprPos(x.Args[i]), diag.ArgumentTypeMismatch)
	}
	for i := n; i < len(x.Args); i++ {
		a.typeExpr(x.Args[i])
	}
	x.SetType(info.Return)
	return info.Return
}

func (a *analyzer) typeCallee(callee ast.Expr) types.ID {
	v, ok := callee.(*ast.VariableExpr)
	if !ok {
		return a.typeExpr(callee)
	}
	sym, found := a.syms.Lookup(v.Name)
	if !found {
		a.errorAt(v.Pos, diag.UndefinedFunction, "undefined function "+v.Name)
		v.SetType(types.Unknown)
		return types.Unknown
	}
	v.SetType(sym.Type)
	if sym.Kind != symbols.KindFunction && a.types.Lookup(sym.Type).Kind != types.KindFunction {
		a.errorAt(v.Pos, diag.VariableNotCallable, v.Name+" is not callable")
		return types.Unknown
	}
	return sym.Type
}

func (a *analyzer) typeConditional(x *ast.ConditionalExpr) types.ID {
	condType := a.typeExpr(x.Cond)
	if condType != types.Bool && condType != types.Unknown {
		a.errorAt(exprPos(x.Cond), diag.TypeMismatch, "if condition must be bool")
	}
	thenType := a.typeBlockExpr(x.Then)
	elseType := a.typeBlockExpr(x.Else)

	result := a.unifyBranchTypes(thenType, elseType, x)
	x.SetType(result)
	return result
}

// unifyBranchTypes picks the common type of a conditional expression's two
// branches, coercing whichever side is an unspecified literal so both the
// branch's tail expression and the conditional itself end up with a
// concrete, consistent type.
func (a *analyzer) unifyBranchTypes(thenType, elseType types.ID, x *ast.ConditionalExpr) types.ID {
	switch {
	case thenType == types.Unknown:
		return elseType
	case elseType == types.Unknown:
		return thenType
	case thenType == elseType:
		return thenType
	case thenType == types.UnspecifiedInt && isIntegerType(a.types, elseType):
		a.checkUnspecifiedIntForType(x.Then.Tail, elseType)
		x.Then.SetType(elseType)
		return elseType
	case elseType == types.UnspecifiedInt && isIntegerType(a.types, thenType):
		a.checkUnspecifiedIntForType(x.Else.Tail, thenType)
		x.Else.SetType(thenType)
		return thenType
	case thenType == types.UnspecifiedFloat && isFloatType(a.types, elseType):
		a.checkUnspecifiedFloatForType(x.Then.Tail, elseType)
		x.Then.SetType(elseType)
		return elseType
	case elseType == types.UnspecifiedFloat && isFloatType(a.types, thenType):
		a.checkUnspecifiedFloatForType(x.Else.Tail, thenType)
		x.Else.SetType(thenType)
		return thenType
	}
	a.errorAt(x.IfPos, diag.TypeMismatch, fmt.Sprintf("if branches have incompatible types: %s and %s", a.types.Name(thenType), a.types.Name(elseType)))
	return thenType
}

// typeBlockExpr types a brace-delimited block in its own scope: the tail
// expression, if any, becomes the block's value, otherwise the block is
// unit-typed.
func (a *analyzer) typeBlockExpr(b *ast.BlockExpr) types.ID {
	a.syms.BeginScope()
	a.analyzeBlock(b.Stmts)
	result := types.ID(types.Unit)
	if b.Tail != nil {
		result = a.typeExpr(b.Tail)
	}
	a.syms.EndScope()
	b.SetType(result)
	return result
}
