package analyzer_test

import (
	"testing"

	"github.com/mna/slang/lang/analyzer"
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/parser"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) (*ast.Chunk, *diag.Engine, *types.Registry) {
	t.Helper()
	fset := token.NewFileSet()
	diags := diag.NewEngine()
	reg := types.NewRegistry()
	chunk := parser.Parse(fset, "test.sl", []byte(src), diags, reg)
	require.Empty(t, diags.Diagnostics(), "unexpected parse errors")
	analyzer.Analyze(fset, chunk, diags, reg)
	return chunk, diags, reg
}

func diagCodes(e *diag.Engine) []diag.Code {
	var codes []diag.Code
	for _, d := range e.Diagnostics() {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestAnalyzeLetInfersUnannotatedType(t *testing.T) {
	chunk, diags, _ := analyze(t, "let x = 1;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, types.I64, let.Value.Type())
}

func TestAnalyzeFunctionForwardReference(t *testing.T) {
	_, diags, _ := analyze(t, `
		fn a() -> i32 { return b(); }
		fn b() -> i32 { return 1; }
	`)
	require.Empty(t, diags.Diagnostics())
}

func TestAnalyzeStructUnknownFieldType(t *testing.T) {
	fset := token.NewFileSet()
	diags := diag.NewEngine()
	reg := types.NewRegistry()
	chunk := parser.Parse(fset, "test.sl", []byte("struct P { x: Nope };"), diags, reg)
	require.Empty(t, diags.Diagnostics())
	analyzer.Analyze(fset, chunk, diags, reg)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.UnknownType)
}

func TestAnalyzeVariableRedefinition(t *testing.T) {
	_, diags, _ := analyze(t, "let x = 1; let x = 2;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.VariableRedefinition)
}

func TestAnalyzeFunctionVariableRedefinition(t *testing.T) {
	_, diags, _ := analyze(t, "fn f() { return; } let f = 1;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.SymbolRedefinition)
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	_, diags, _ := analyze(t, "let x = y;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.UndefinedVariable)
}

func TestAnalyzeArithmeticCoercesUnspecifiedLiteral(t *testing.T) {
	chunk, diags, _ := analyze(t, "let x: i32 = 1; let y = x + 2;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[1].(*ast.LetStmt)
	assert.Equal(t, types.I32, let.Value.Type())
}

func TestAnalyzeArithmeticTypeMismatch(t *testing.T) {
	_, diags, _ := analyze(t, "let x: i32 = 1; let y: u32 = 2 u32; let z = x + y;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.OperationTypeMismatch)
}

func TestAnalyzeStringConcatenation(t *testing.T) {
	chunk, diags, _ := analyze(t, `let s = "a" + "b";`)
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, types.String, let.Value.Type())
}

func TestAnalyzeStringSubtractionRejected(t *testing.T) {
	_, diags, _ := analyze(t, `let s = "a" - "b";`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.OperationTypeMismatch)
}

func TestAnalyzeBoolArithmeticRejected(t *testing.T) {
	_, diags, _ := analyze(t, "let x = true + false;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.OperationTypeMismatch)
}

func TestAnalyzeLogicalOperatorRequiresBool(t *testing.T) {
	_, diags, _ := analyze(t, "let x = 1 && 2;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.LogicalOperatorTypeMismatch)
}

func TestAnalyzeComparisonMixedNumericTypes(t *testing.T) {
	_, diags, _ := analyze(t, "let a: i32 = 1 i32; let b: u32 = 1 u32; let c = a < b;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.OperationTypeMismatch)
}

func TestAnalyzeUnaryNegateUnsignedRejected(t *testing.T) {
	_, diags, _ := analyze(t, "let x: u32 = 1 u32; let y = -x;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.InvalidUnaryOperation)
}

func TestAnalyzeNegatedUnspecifiedIntIntoUnsignedTarget(t *testing.T) {
	_, diags, _ := analyze(t, "let x: u32 = -5;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ValueOutOfRange)
}

func TestAnalyzeNegatedUnspecifiedIntIntoSignedTarget(t *testing.T) {
	chunk, diags, _ := analyze(t, "let x: i32 = -5;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, types.I32, let.Value.Type())
}

func TestAnalyzeNotRequiresBool(t *testing.T) {
	_, diags, _ := analyze(t, "let x = !1;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.InvalidUnaryOperation)
}

func TestAnalyzeAssignmentToImmutable(t *testing.T) {
	_, diags, _ := analyze(t, "let x = 1; x = 2;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.AssignmentToImmutableVariable)
}

func TestAnalyzeAssignmentToMutableOK(t *testing.T) {
	_, diags, _ := analyze(t, "let mut x = 1; x = 2;")
	require.Empty(t, diags.Diagnostics())
}

func TestAnalyzeReturnOutsideFunction(t *testing.T) {
	_, diags, _ := analyze(t, "return 1;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ReturnOutsideFunction)
}

func TestAnalyzeMissingReturnValue(t *testing.T) {
	_, diags, _ := analyze(t, "fn f() -> i32 { return; }")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.MissingReturnValue)
}

func TestAnalyzeReturnTypeMismatch(t *testing.T) {
	_, diags, _ := analyze(t, `fn f() -> i32 { return "x"; }`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ReturnTypeMismatch)
}

func TestAnalyzeBlockTailAsImplicitReturn(t *testing.T) {
	_, diags, _ := analyze(t, "fn f() -> i32 { let x = 1; x }")
	require.Empty(t, diags.Diagnostics())
}

func TestAnalyzeBlockTailMismatchWithReturnType(t *testing.T) {
	_, diags, _ := analyze(t, `fn f() -> i32 { "x" }`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ReturnTypeMismatch)
}

func TestAnalyzeCallArgumentCountMismatch(t *testing.T) {
	_, diags, _ := analyze(t, "fn f(a: i32) -> i32 { return a; } let x = f();")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ArgumentCountMismatch)
}

func TestAnalyzeCallArgumentTypeMismatch(t *testing.T) {
	_, diags, _ := analyze(t, `fn f(a: i32) -> i32 { return a; } let x = f("nope");`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ArgumentTypeMismatch)
}

func TestAnalyzeCallArgumentCoercesUnspecifiedLiteral(t *testing.T) {
	_, diags, _ := analyze(t, "fn f(a: u32) -> u32 { return a; } let x = f(1);")
	require.Empty(t, diags.Diagnostics())
}

func TestAnalyzeCallOnNonFunctionVariable(t *testing.T) {
	_, diags, _ := analyze(t, "let x = 1; let y = x();")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.VariableNotCallable)
}

func TestAnalyzeCallUndefinedFunction(t *testing.T) {
	_, diags, _ := analyze(t, "let x = nope();")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.UndefinedFunction)
}

func TestAnalyzePrintValueAcceptsAnyType(t *testing.T) {
	_, diags, _ := analyze(t, `print_value(1); print_value("s"); print_value(true);`)
	require.Empty(t, diags.Diagnostics())
}

func TestAnalyzeConditionalExprBranchUnification(t *testing.T) {
	chunk, diags, _ := analyze(t, "let x: i32 = 1 i32; let y = if true { x } else { 2 };")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[1].(*ast.LetStmt)
	assert.Equal(t, types.I32, let.Value.Type())
}

func TestAnalyzeConditionalExprBranchMismatch(t *testing.T) {
	_, diags, _ := analyze(t, `let y = if true { 1 } else { "x" };`)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.TypeMismatch)
}

func TestAnalyzeIfConditionMustBeBool(t *testing.T) {
	_, diags, _ := analyze(t, "if 1 { let x = 1; }")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.TypeMismatch)
}

func TestAnalyzeShadowingAcrossScopesAllowed(t *testing.T) {
	_, diags, _ := analyze(t, "let x = 1; if true { let x = 2; }")
	require.Empty(t, diags.Diagnostics())
}

func TestAnalyzeFinalizesUnconstrainedLiteralStatement(t *testing.T) {
	chunk, diags, _ := analyze(t, "42;")
	require.Empty(t, diags.Diagnostics())
	stmt := chunk.Stmts[0].(*ast.ExprStmt)
	lit := stmt.X.(*ast.LiteralExpr)
	assert.Equal(t, types.I64, lit.Type())
	assert.Equal(t, ast.LitI64, lit.Kind)
}

func TestAnalyzeFinalizesUnconstrainedFloatLiteral(t *testing.T) {
	chunk, diags, _ := analyze(t, "3.14;")
	require.Empty(t, diags.Diagnostics())
	stmt := chunk.Stmts[0].(*ast.ExprStmt)
	lit := stmt.X.(*ast.LiteralExpr)
	assert.Equal(t, types.F64, lit.Type())
	assert.Equal(t, ast.LitF64, lit.Kind)
}
