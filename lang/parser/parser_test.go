package parser_test

import (
	"testing"

	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/parser"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Chunk, *diag.Engine) {
	t.Helper()
	fset := token.NewFileSet()
	diags := diag.NewEngine()
	reg := types.NewRegistry()
	chunk := parser.Parse(fset, "test.sl", []byte(src), diags, reg)
	require.NotNil(t, chunk)
	return chunk, diags
}

func TestParseLetStmt(t *testing.T) {
	chunk, diags := parse(t, "let x: i32 = 1;")
	require.Empty(t, diags.Diagnostics())
	require.Len(t, chunk.Stmts, 1)
	let, ok := chunk.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
	assert.False(t, let.Mutable)
	assert.Equal(t, "i32", let.Type.Name)
	assert.Equal(t, types.I32, let.Type.Resolved)
}

func TestParseLetMut(t *testing.T) {
	chunk, diags := parse(t, "let mut y = 2;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	assert.True(t, let.Mutable)
	assert.Empty(t, let.Type.Name)
}

func TestParseAssignStmt(t *testing.T) {
	chunk, diags := parse(t, "x = x + 1;")
	require.Empty(t, diags.Diagnostics())
	assign, ok := chunk.Stmts[0].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
	bin, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseExprStmt(t *testing.T) {
	chunk, diags := parse(t, "print_value(1);")
	require.Empty(t, diags.Diagnostics())
	exprStmt, ok := chunk.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := exprStmt.X.(*ast.CallExpr)
	require.True(t, ok)
	callee := call.Callee.(*ast.VariableExpr)
	assert.Equal(t, "print_value", callee.Name)
	assert.Len(t, call.Args, 1)
}

func TestParseFunctionDecl(t *testing.T) {
	chunk, diags := parse(t, "fn add(a: i32, b: i32) -> i32 { return a + b; }")
	require.Empty(t, diags.Diagnostics())
	fn, ok := chunk.Stmts[0].(*ast.FunctionDeclStmt)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "i32", fn.Return.Name)
	require.Len(t, fn.Body.Stmts, 1)
	_, ok = fn.Body.Stmts[0].(*ast.ReturnStmt)
	assert.True(t, ok)
}

func TestParseFunctionDeclNoReturnType(t *testing.T) {
	chunk, diags := parse(t, "fn noop() { return; }")
	require.Empty(t, diags.Diagnostics())
	fn := chunk.Stmts[0].(*ast.FunctionDeclStmt)
	assert.Equal(t, "unit", fn.Return.Name)
	assert.Equal(t, types.Unit, fn.Return.Resolved)
}

func TestParseBlockTailExpression(t *testing.T) {
	chunk, diags := parse(t, "fn f() -> i32 { let x = 1; x }")
	require.Empty(t, diags.Diagnostics())
	fn := chunk.Stmts[0].(*ast.FunctionDeclStmt)
	require.Len(t, fn.Body.Stmts, 1)
	require.NotNil(t, fn.Body.Tail)
	v, ok := fn.Body.Tail.(*ast.VariableExpr)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
}

func TestParseIfStmtNoElse(t *testing.T) {
	chunk, diags := parse(t, "if x { y = 1; }")
	require.Empty(t, diags.Diagnostics())
	ifStmt, ok := chunk.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Else)
}

func TestParseIfStmtWithElse(t *testing.T) {
	chunk, diags := parse(t, "if x { y = 1; } else { y = 2; }")
	require.Empty(t, diags.Diagnostics())
	ifStmt := chunk.Stmts[0].(*ast.IfStmt)
	assert.NotNil(t, ifStmt.Else)
}

func TestParseConditionalExprRequiresElse(t *testing.T) {
	_, diags := parse(t, "let x = if cond { 1 } ;")
	require.True(t, diags.HasErrors())
	codes := diagCodes(diags)
	assert.Contains(t, codes, diag.ExpectedElse)
}

func TestParseConditionalExprAsValue(t *testing.T) {
	chunk, diags := parse(t, "let x = if cond { 1 } else { 2 };")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	cond, ok := let.Value.(*ast.ConditionalExpr)
	require.True(t, ok)
	assert.NotNil(t, cond.Else)
}

func TestParseStructDef(t *testing.T) {
	chunk, diags := parse(t, "struct Point { x: i32, y: i32 };")
	require.Empty(t, diags.Diagnostics())
	def, ok := chunk.Stmts[0].(*ast.TypeDefStmt)
	require.True(t, ok)
	assert.Equal(t, "Point", def.Name)
	require.Len(t, def.Fields, 2)
	assert.Equal(t, "x", def.Fields[0].Name)
}

func TestParseOperatorPrecedence(t *testing.T) {
	chunk, diags := parse(t, "let x = 1 + 2 * 3;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	bin := let.Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
	_, ok := bin.Left.(*ast.LiteralExpr)
	require.True(t, ok)
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseLogicalPrecedenceBelowEquality(t *testing.T) {
	chunk, diags := parse(t, "let x = a == b && c == d;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	bin := let.Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAnd, bin.Op)
	_, ok := bin.Left.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestParseUnary(t *testing.T) {
	chunk, diags := parse(t, "let x = !ready;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	un, ok := let.Value.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpNot, un.Op)
}

func TestParseNumericSuffixI32InRange(t *testing.T) {
	chunk, diags := parse(t, "let x = 42 i32;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	lit := let.Value.(*ast.LiteralExpr)
	assert.Equal(t, ast.LitI32, lit.Kind)
	assert.Equal(t, types.I32, lit.Type())
}

func TestParseNumericSuffixOutOfRange(t *testing.T) {
	_, diags := parse(t, "let x: u32 = 4294967296 u32;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ValueOutOfRange)
}

func TestParseNegativeLiteralOutOfRangeAtParseTime(t *testing.T) {
	// the unary minus applies to an i32-suffixed literal that is already out
	// of range on its own, before negation.
	_, diags := parse(t, "let x = -2147483648 i32;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ValueOutOfRange)
}

func TestParseUnsuffixedSubtractionHasNoRangeCheck(t *testing.T) {
	_, diags := parse(t, "let x: i32 = 0 - 2147483648;")
	require.Empty(t, diags.Diagnostics())
}

func TestParseForbiddenTypeNames(t *testing.T) {
	_, diags := parse(t, "let x: int = 1;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ExpectedType)
}

func TestParseFunctionTypeAnnotation(t *testing.T) {
	chunk, diags := parse(t, "let cb: fn(i32, i32) -> bool = x;")
	require.Empty(t, diags.Diagnostics())
	let := chunk.Stmts[0].(*ast.LetStmt)
	require.NotNil(t, let.Type.Func)
	require.Len(t, let.Type.Func.Params, 2)
	assert.Equal(t, "bool", let.Type.Func.Return.Name)
}

func TestParseNestedFunctionIsRejected(t *testing.T) {
	_, diags := parse(t, "fn outer() { fn inner() { return; } }")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.NestedFunction)
}

func TestParseTooManyParams(t *testing.T) {
	var src string
	src = "fn many("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "p" + itoa(i) + ": i32"
	}
	src += ") { return; }"
	_, diags := parse(t, src)
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.TooManyParamsOrArgs)
}

func TestParseRecoversFromMissingSemicolon(t *testing.T) {
	chunk, diags := parse(t, "let x = 1\nlet y = 2;")
	require.True(t, diags.HasErrors())
	assert.Contains(t, diagCodes(diags), diag.ExpectedSemicolon)
	// recovery should still surface the second, well-formed statement.
	require.Len(t, chunk.Stmts, 1)
	let := chunk.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, "y", let.Name)
}

func TestParseRecoversFromGarbageTokens(t *testing.T) {
	chunk, diags := parse(t, "@@@ ;;; let z = 3;")
	require.True(t, diags.HasErrors())
	require.Len(t, chunk.Stmts, 1)
	let := chunk.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, "z", let.Name)
}

func diagCodes(e *diag.Engine) []diag.Code {
	var codes []diag.Code
	for _, d := range e.Diagnostics() {
		codes = append(codes, d.Code)
	}
	return codes
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
