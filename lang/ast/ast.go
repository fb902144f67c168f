// Package ast defines the abstract syntax tree the parser produces and the
// analyzer, code generator and disassembler all walk. The Node/Visitor/Walk
// double-dispatch shape is carried over from the project's own AST package;
// the node set itself is the language's: statements {Let, Assignment,
// Expression, TypeDefinition, FunctionDeclaration, Return, If}, expressions
// {Literal, Binary, Unary, Variable, Call, Conditional, Block, FunctionType}.
package ast

import (
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
)

// Node is implemented by every AST node.
type Node interface {
	// Span reports the start and end byte position of the node.
	Span() (start, end token.Pos)
	// Walk visits the node's direct children, in source order.
	Walk(v Visitor)
}

// Expr is implemented by every expression node. Every expression carries a
// type, filled in by the parser for literals with an explicit numeric
// suffix and by the analyzer for everything else.
type Expr interface {
	Node
	exprNode()
	Type() types.ID
	SetType(types.ID)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// typed is embedded by every Expr implementation to provide Type/SetType.
type typed struct {
	typ types.ID
}

func (t *typed) Type() types.ID      { return t.typ }
func (t *typed) SetType(id types.ID) { t.typ = id }

// TypeRef is a type annotation as written in source: either a plain name
// (Name non-empty — a primitive or a struct) or a function type spelled
// fn(...) -> T (Func non-nil). Resolved starts as types.Unknown; the parser
// resolves it immediately when it can (primitives, function types built
// from already-resolved pieces), and the analyzer resolves what remains via
// the symbol table (struct names, or to report UnknownType).
type TypeRef struct {
	Name     string
	Pos      token.Pos
	Resolved types.ID
	Func     *FunctionTypeExpr
}

// Chunk is the root node of a parsed file: a flat sequence of top-level
// statements.
type Chunk struct {
	Name  string
	Stmts []Stmt
	EOF   token.Pos
}

func (n *Chunk) Span() (start, end token.Pos) {
	if len(n.Stmts) == 0 {
		return n.EOF, n.EOF
	}
	start, _ = n.Stmts[0].Span()
	_, end = n.Stmts[len(n.Stmts)-1].Span()
	return start, end
}

func (n *Chunk) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}
