package ast

import "github.com/mna/slang/lang/token"

type (
	// LetStmt represents a local variable declaration, e.g. let x: i32 = 1;
	// or let mut y = 2;. Type.Name is empty when the declaration has no
	// annotation, in which case the analyzer infers the type from Value.
	LetStmt struct {
		LetPos  token.Pos
		Name    string
		NamePos token.Pos
		Mutable bool
		Type    TypeRef
		Value   Expr
		Semi    token.Pos
	}

	// AssignStmt represents a reassignment of an existing mutable variable,
	// e.g. x = x + 1;. It is distinct from LetStmt, which introduces a new
	// binding.
	AssignStmt struct {
		Name    string
		NamePos token.Pos
		Value   Expr
		Semi    token.Pos
	}

	// ExprStmt represents an expression evaluated for its side effects, its
	// value discarded.
	ExprStmt struct {
		X    Expr
		Semi token.Pos
	}

	// TypeDefStmt represents a struct type definition.
	TypeDefStmt struct {
		StructPos token.Pos
		Name      string
		NamePos   token.Pos
		Fields    []FieldDecl
		RBrace    token.Pos
	}

	// FunctionDeclStmt represents a function declaration.
	FunctionDeclStmt struct {
		FnPos   token.Pos
		Name    string
		NamePos token.Pos
		Params  []Param
		Return  TypeRef
		Body    *BlockExpr
	}

	// ReturnStmt represents a return statement. Value is nil for a bare
	// `return;`, which returns unit.
	ReturnStmt struct {
		ReturnPos token.Pos
		Value     Expr
		Semi      token.Pos
	}

	// IfStmt represents an if statement used for control flow rather than as
	// a value: unlike ConditionalExpr, Else may be absent.
	IfStmt struct {
		IfPos token.Pos
		Cond  Expr
		Then  *BlockExpr
		Else  *BlockExpr // nil if there is no else branch
	}
)

func (n *LetStmt) Span() (start, end token.Pos) { return n.LetPos, n.Semi + 1 }
func (n *LetStmt) Walk(v Visitor)               { Walk(v, n.Value) }
func (n *LetStmt) stmtNode()                    {}

func (n *AssignStmt) Span() (start, end token.Pos) { return n.NamePos, n.Semi + 1 }
func (n *AssignStmt) Walk(v Visitor)               { Walk(v, n.Value) }
func (n *AssignStmt) stmtNode()                    {}

func (n *ExprStmt) Span() (start, end token.Pos) {
	start, _ = n.X.Span()
	return start, n.Semi + 1
}
func (n *ExprStmt) Walk(v Visitor) { Walk(v, n.X) }
func (n *ExprStmt) stmtNode()      {}

func (n *TypeDefStmt) Span() (start, end token.Pos) { return n.StructPos, n.RBrace + 1 }
func (n *TypeDefStmt) Walk(_ Visitor)               {}
func (n *TypeDefStmt) stmtNode()                    {}

func (n *FunctionDeclStmt) Span() (start, end token.Pos) {
	_, end = n.Body.Span()
	return n.FnPos, end
}
func (n *FunctionDeclStmt) Walk(v Visitor) { Walk(v, n.Body) }
func (n *FunctionDeclStmt) stmtNode()      {}

func (n *ReturnStmt) Span() (start, end token.Pos) { return n.ReturnPos, n.Semi + 1 }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *ReturnStmt) stmtNode() {}

func (n *IfStmt) Span() (start, end token.Pos) {
	if n.Else != nil {
		_, end = n.Else.Span()
	} else {
		_, end = n.Then.Span()
	}
	return n.IfPos, end
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *IfStmt) stmtNode() {}
