package ast

import "github.com/mna/slang/lang/token"

type (
	// LiteralExpr represents a literal value: an integer, float, string,
	// boolean or the unit value. Kind fixes which field holds the value; for
	// the two unspecified-number kinds, the analyzer's finalization pass
	// narrows Kind to a concrete type once the literal's context is known.
	LiteralExpr struct {
		typed
		Kind  LiteralKind
		Int   int64
		Float float64
		Str   string
		Bool  bool
		Start token.Pos
		End   token.Pos
	}

	// BinaryExpr represents a binary operator expression, e.g. x + y.
	BinaryExpr struct {
		typed
		Left  Expr
		Op    BinaryOp
		OpPos token.Pos
		Right Expr
	}

	// UnaryExpr represents a unary operator expression, e.g. -x or !x.
	UnaryExpr struct {
		typed
		Op    UnaryOp
		OpPos token.Pos
		Right Expr
	}

	// VariableExpr represents a reference to a name: a local, a parameter, a
	// global, or a function.
	VariableExpr struct {
		typed
		Name string
		Pos  token.Pos
	}

	// CallExpr represents a function call, e.g. f(x, y).
	CallExpr struct {
		typed
		Callee Expr
		Args   []Expr
		RParen token.Pos
	}

	// ConditionalExpr represents an if-expression: unlike IfStmt, both
	// branches are always present since the expression must produce a value
	// regardless of which branch runs.
	ConditionalExpr struct {
		typed
		IfPos token.Pos
		Cond  Expr
		Then  *BlockExpr
		Else  *BlockExpr
	}

	// BlockExpr represents a brace-delimited sequence of statements that
	// evaluates to the value of its trailing expression, or to unit if it has
	// none.
	BlockExpr struct {
		typed
		LBrace token.Pos
		Stmts  []Stmt
		Tail   Expr // nil if the block has no trailing (non-semicolon) expression
		RBrace token.Pos
	}

	// FunctionTypeExpr represents a function type written as an annotation,
	// e.g. fn(i32, i32) -> bool.
	FunctionTypeExpr struct {
		typed
		FnPos  token.Pos
		Params []TypeRef
		Return TypeRef
		End    token.Pos
	}
)

func (n *LiteralExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *LiteralExpr) Walk(_ Visitor)               {}
func (n *LiteralExpr) exprNode()                    {}

func (n *BinaryExpr) Span() (start, end token.Pos) {
	start, _ = n.Left.Span()
	_, end = n.Right.Span()
	return start, end
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinaryExpr) exprNode() {}

func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, end = n.Right.Span()
	return n.OpPos, end
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Right) }
func (n *UnaryExpr) exprNode()      {}

func (n *VariableExpr) Span() (start, end token.Pos) {
	return n.Pos, n.Pos + token.Pos(len(n.Name))
}
func (n *VariableExpr) Walk(_ Visitor) {}
func (n *VariableExpr) exprNode()      {}

func (n *CallExpr) Span() (start, end token.Pos) {
	start, _ = n.Callee.Span()
	return start, n.RParen + 1
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) exprNode() {}

func (n *ConditionalExpr) Span() (start, end token.Pos) {
	_, end = n.Else.Span()
	return n.IfPos, end
}
func (n *ConditionalExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}
func (n *ConditionalExpr) exprNode() {}

func (n *BlockExpr) Span() (start, end token.Pos) { return n.LBrace, n.RBrace + 1 }
func (n *BlockExpr) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
	if n.Tail != nil {
		Walk(v, n.Tail)
	}
}
func (n *BlockExpr) exprNode() {}

func (n *FunctionTypeExpr) Span() (start, end token.Pos) { return n.FnPos, n.End }
func (n *FunctionTypeExpr) Walk(_ Visitor)               {}
func (n *FunctionTypeExpr) exprNode()                    {}
