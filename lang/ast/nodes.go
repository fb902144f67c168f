package ast

import "github.com/mna/slang/lang/token"

// BinaryOp identifies the operator of a BinaryExpr.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

func (o BinaryOp) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// UnaryOp identifies the operator of a UnaryExpr.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

func (o UnaryOp) String() string {
	switch o {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	default:
		return "?"
	}
}

// LiteralKind identifies the concrete type of a LiteralExpr's value, fixed
// by the literal's syntax (an explicit numeric suffix) or left unspecified
// for the analyzer's finalization pass to settle.
type LiteralKind int

const (
	LitI32 LiteralKind = iota
	LitI64
	LitU32
	LitU64
	LitUnspecifiedInt
	LitF32
	LitF64
	LitUnspecifiedFloat
	LitString
	LitBool
	LitUnit
)

// Param is a single function parameter as written in a declaration.
type Param struct {
	Name string
	Type TypeRef
	Pos  token.Pos
}

// FieldDecl is a single struct field as written in a type definition.
type FieldDecl struct {
	Name string
	Type TypeRef
	Pos  token.Pos
}
