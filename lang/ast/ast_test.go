package ast_test

import (
	"testing"

	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSpanEmpty(t *testing.T) {
	c := &ast.Chunk{Name: "empty.sl", EOF: token.Pos(42)}
	start, end := c.Span()
	assert.Equal(t, token.Pos(42), start)
	assert.Equal(t, token.Pos(42), end)
}

func TestChunkSpanSpansFirstToLastStmt(t *testing.T) {
	lit := &ast.LiteralExpr{Kind: ast.LitI32, Int: 1, Start: token.Pos(10), End: token.Pos(12)}
	s1 := &ast.ExprStmt{X: lit, Semi: token.Pos(12)}
	ret := &ast.ReturnStmt{ReturnPos: token.Pos(20), Semi: token.Pos(26)}
	c := &ast.Chunk{Stmts: []ast.Stmt{s1, ret}, EOF: token.Pos(27)}

	start, end := c.Span()
	assert.Equal(t, token.Pos(10), start)
	assert.Equal(t, token.Pos(27), end)
}

func TestWalkVisitsEveryNodeInOrder(t *testing.T) {
	left := &ast.VariableExpr{Name: "x", Pos: token.Pos(1)}
	right := &ast.LiteralExpr{Kind: ast.LitI32, Int: 1, Start: token.Pos(5), End: token.Pos(6)}
	bin := &ast.BinaryExpr{Left: left, Op: ast.OpAdd, OpPos: token.Pos(3), Right: right}
	stmt := &ast.ExprStmt{X: bin, Semi: token.Pos(6)}
	chunk := &ast.Chunk{Stmts: []ast.Stmt{stmt}, EOF: token.Pos(7)}

	var visited []ast.Node
	var rec ast.VisitorFunc
	rec = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			visited = append(visited, n)
		}
		return rec
	}
	ast.Walk(rec, chunk)

	require.Len(t, visited, 5)
	assert.Same(t, chunk, visited[0])
	assert.Same(t, stmt, visited[1])
	assert.Same(t, bin, visited[2])
	assert.Same(t, left, visited[3])
	assert.Same(t, right, visited[4])
}

func TestTypedMixinDefaultsToUnknown(t *testing.T) {
	lit := &ast.LiteralExpr{Kind: ast.LitBool, Bool: true}
	assert.Equal(t, types.Unknown, lit.Type())
	lit.SetType(types.Bool)
	assert.Equal(t, types.Bool, lit.Type())
}

func TestBlockExprSpanCoversBraces(t *testing.T) {
	b := &ast.BlockExpr{LBrace: token.Pos(1), RBrace: token.Pos(10)}
	start, end := b.Span()
	assert.Equal(t, token.Pos(1), start)
	assert.Equal(t, token.Pos(11), end)
}

func TestIfStmtSpanWithAndWithoutElse(t *testing.T) {
	then := &ast.BlockExpr{LBrace: token.Pos(5), RBrace: token.Pos(8)}
	noElse := &ast.IfStmt{IfPos: token.Pos(0), Then: then}
	_, end := noElse.Span()
	assert.Equal(t, token.Pos(9), end)

	els := &ast.BlockExpr{LBrace: token.Pos(12), RBrace: token.Pos(20)}
	withElse := &ast.IfStmt{IfPos: token.Pos(0), Then: then, Else: els}
	_, end = withElse.Span()
	assert.Equal(t, token.Pos(21), end)
}

func TestConditionalExprAlwaysHasElse(t *testing.T) {
	then := &ast.BlockExpr{LBrace: token.Pos(5), RBrace: token.Pos(8)}
	els := &ast.BlockExpr{LBrace: token.Pos(12), RBrace: token.Pos(20)}
	cond := &ast.ConditionalExpr{IfPos: token.Pos(0), Then: then, Else: els}
	_, end := cond.Span()
	assert.Equal(t, token.Pos(21), end)
}

func TestBinaryOpString(t *testing.T) {
	assert.Equal(t, "+", ast.OpAdd.String())
	assert.Equal(t, "&&", ast.OpAnd.String())
}
