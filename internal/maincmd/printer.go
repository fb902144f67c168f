package maincmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/slang/lang/ast"
)

// astPrinter renders a parsed Chunk as an indented s-expression tree, one
// node per line, prefixed with its source position. It is a CLI-only
// presentation concern: nothing in lang/ depends on it.
type astPrinter struct {
	w      io.Writer
	posFmt func(n ast.Node) string
}

func newASTPrinter(w io.Writer, posFmt func(n ast.Node) string) *astPrinter {
	return &astPrinter{w: w, posFmt: posFmt}
}

func (p *astPrinter) line(depth int, n ast.Node, format string, args ...any) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(p.w, "%s%s %s\n", indent, p.posFmt(n), fmt.Sprintf(format, args...))
}

// Print renders every top-level statement of chunk.
func (p *astPrinter) Print(chunk *ast.Chunk) {
	for _, s := range chunk.Stmts {
		p.stmt(0, s)
	}
}

func (p *astPrinter) stmt(depth int, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		mut := ""
		if n.Mutable {
			mut = "mut "
		}
		p.line(depth, n, "let %s%s", mut, n.Name)
		p.expr(depth+1, n.Value)
	case *ast.AssignStmt:
		p.line(depth, n, "assign %s", n.Name)
		p.expr(depth+1, n.Value)
	case *ast.ExprStmt:
		p.line(depth, n, "expr-stmt")
		p.expr(depth+1, n.X)
	case *ast.TypeDefStmt:
		p.line(depth, n, "struct %s (%d field(s))", n.Name, len(n.Fields))
	case *ast.FunctionDeclStmt:
		names := make([]string, len(n.Params))
		for i, prm := range n.Params {
			names[i] = prm.Name
		}
		p.line(depth, n, "fn %s(%s)", n.Name, strings.Join(names, ", "))
		p.block(depth+1, n.Body)
	case *ast.ReturnStmt:
		p.line(depth, n, "return")
		if n.Value != nil {
			p.expr(depth+1, n.Value)
		}
	case *ast.IfStmt:
		p.line(depth, n, "if")
		p.expr(depth+1, n.Cond)
		p.block(depth+1, n.Then)
		if n.Else != nil {
			p.block(depth+1, n.Else)
		}
	default:
		p.line(depth, s, "<unknown stmt>")
	}
}

func (p *astPrinter) block(depth int, b *ast.BlockExpr) {
	p.line(depth, b, "block")
	for _, s := range b.Stmts {
		p.stmt(depth+1, s)
	}
	if b.Tail != nil {
		p.expr(depth+1, b.Tail)
	}
}

func (p *astPrinter) expr(depth int, e ast.Expr) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		p.line(depth, n, "literal %s", literalText(n))
	case *ast.BinaryExpr:
		p.line(depth, n, "binary %s", n.Op)
		p.expr(depth+1, n.Left)
		p.expr(depth+1, n.Right)
	case *ast.UnaryExpr:
		p.line(depth, n, "unary %s", n.Op)
		p.expr(depth+1, n.Right)
	case *ast.VariableExpr:
		p.line(depth, n, "var %s", n.Name)
	case *ast.CallExpr:
		p.line(depth, n, "call")
		p.expr(depth+1, n.Callee)
		for _, a := range n.Args {
			p.expr(depth+1, a)
		}
	case *ast.ConditionalExpr:
		p.line(depth, n, "conditional")
		p.expr(depth+1, n.Cond)
		p.block(depth+1, n.Then)
		p.block(depth+1, n.Else)
	case *ast.BlockExpr:
		p.block(depth, n)
	default:
		p.line(depth, e, "<unknown expr>")
	}
}

func literalText(n *ast.LiteralExpr) string {
	switch n.Kind {
	case ast.LitString:
		return fmt.Sprintf("%q", n.Str)
	case ast.LitBool:
		return fmt.Sprintf("%t", n.Bool)
	case ast.LitUnit:
		return "unit"
	case ast.LitF32, ast.LitF64, ast.LitUnspecifiedFloat:
		return fmt.Sprintf("%g", n.Float)
	default:
		return fmt.Sprintf("%d", n.Int)
	}
}
