// Package diag implements the diagnostic model shared by every stage of the
// compiler pipeline: structured error codes, source locations, multi-error
// collection with deduplication and an error-count ceiling, and a renderer
// that prints Rust/Go-compiler-style caret-underlined source excerpts.
package diag

import (
	"fmt"

	"github.com/mna/slang/lang/token"
)

// Severity is the level of a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Code is a stable 16-bit diagnostic code, partitioned into bands:
// 1000-1999 parse errors, 2000-2999 semantic errors, 3000-3999 generic.
type Code uint16

// Parse errors (1000-1999), numbered to match the original compiler's error
// catalog so that codes remain stable across reimplementations.
const (
	ExpectedSemicolon     Code = 1001
	ExpectedClosingBrace  Code = 1002
	ExpectedClosingParen  Code = 1003
	ExpectedOpeningBrace  Code = 1005
	ExpectedOpeningParen  Code = 1006
	ExpectedIdentifier    Code = 1007
	ExpectedType          Code = 1008
	ExpectedExpression    Code = 1009
	ExpectedParameter     Code = 1011
	ExpectedAssignment    Code = 1012
	ExpectedComma         Code = 1013
	ExpectedColon         Code = 1014
	ExpectedEquals        Code = 1015
	ExpectedFunctionBody  Code = 1016
	ExpectedStructField   Code = 1017
	ExpectedEOF           Code = 1018
	UnexpectedToken       Code = 1019
	InvalidNumberLiteral  Code = 1020
	InvalidStringLiteral  Code = 1021
	UnterminatedString    Code = 1024
	MalformedComment      Code = 1026
	InvalidToken          Code = 1027
	NestedFunction        Code = 1028
	InvalidSyntax         Code = 1029
	UnknownType           Code = 1030
	ExpectedElse          Code = 1031
	TooManyParamsOrArgs   Code = 1032
)

// Semantic errors (2000-2999).
const (
	UndefinedVariable             Code = 2001
	VariableRedefinition          Code = 2002
	SymbolRedefinition            Code = 2003
	InvalidFieldType              Code = 2004
	TypeMismatch                  Code = 2005
	OperationTypeMismatch         Code = 2006
	LogicalOperatorTypeMismatch   Code = 2007
	ValueOutOfRange               Code = 2008
	ArgumentCountMismatch         Code = 2009
	ArgumentTypeMismatch          Code = 2010
	ReturnOutsideFunction         Code = 2011
	ReturnTypeMismatch            Code = 2012
	MissingReturnValue            Code = 2013
	UndefinedFunction             Code = 2014
	InvalidUnaryOperation         Code = 2015
	AssignmentToImmutableVariable Code = 2016
	InvalidExpression             Code = 2017
	VariableNotCallable           Code = 2018
)

// Generic errors (3000-3999).
const (
	GenericCompileError Code = 3000
	TooManyErrors       Code = 3001
	PoolOverflow        Code = 3002
	JumpTooFar          Code = 3003
)

var descriptions = map[Code]string{
	ExpectedSemicolon:            "expected semicolon after statement",
	ExpectedClosingBrace:         "expected closing brace '}'",
	ExpectedClosingParen:         "expected closing parenthesis ')'",
	ExpectedOpeningBrace:         "expected opening brace '{'",
	ExpectedOpeningParen:         "expected opening parenthesis '('",
	ExpectedIdentifier:           "expected identifier",
	ExpectedType:                 "expected type annotation",
	ExpectedExpression:           "expected expression",
	ExpectedParameter:            "expected function parameter",
	ExpectedAssignment:           "expected assignment operator",
	ExpectedComma:                "expected comma separator",
	ExpectedColon:                "expected colon ':'",
	ExpectedEquals:               "expected equals sign '='",
	ExpectedFunctionBody:         "expected function body",
	ExpectedStructField:          "expected struct field",
	ExpectedEOF:                  "expected end of file",
	UnexpectedToken:              "unexpected token",
	InvalidNumberLiteral:         "invalid number literal",
	InvalidStringLiteral:         "invalid string literal",
	UnterminatedString:           "unterminated string literal",
	MalformedComment:             "malformed comment",
	InvalidToken:                 "invalid token",
	NestedFunction:               "nested function definitions not allowed",
	InvalidSyntax:                "invalid syntax",
	UnknownType:                  "unknown type",
	ExpectedElse:                 "expected 'else' after if expression",
	TooManyParamsOrArgs:          "too many parameters or arguments (max 255)",
	UndefinedVariable:            "undefined variable",
	VariableRedefinition:         "variable already defined",
	SymbolRedefinition:           "symbol redefinition",
	InvalidFieldType:             "invalid field type",
	TypeMismatch:                 "type mismatch",
	OperationTypeMismatch:        "incompatible types for operation",
	LogicalOperatorTypeMismatch:  "logical operator requires boolean operands",
	ValueOutOfRange:              "value out of range for type",
	ArgumentCountMismatch:        "wrong number of function arguments",
	ArgumentTypeMismatch:         "function argument type mismatch",
	ReturnOutsideFunction:        "return statement outside function",
	ReturnTypeMismatch:           "return type mismatch",
	MissingReturnValue:           "missing return value",
	UndefinedFunction:            "undefined function",
	InvalidUnaryOperation:        "invalid unary operation for type",
	AssignmentToImmutableVariable: "assignment to immutable variable",
	InvalidExpression:            "invalid expression",
	VariableNotCallable:          "variable is not callable",
	GenericCompileError:          "generic compile error",
	TooManyErrors:                "too many errors",
	PoolOverflow:                 "constant or identifier pool overflow",
	JumpTooFar:                   "jump target too far",
}

// Description returns the fixed short description associated with a code.
func (c Code) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "unknown error"
}

func (c Code) String() string { return fmt.Sprintf("E%04d", uint16(c)) }

// Suggestion is an optional piece of actionable advice attached to a
// Diagnostic, with an optional replacement text and location.
type Suggestion struct {
	Message     string
	Replacement string
	Location    token.Position
}

// Diagnostic is a single structured error, warning or note.
type Diagnostic struct {
	Severity    Severity
	Code        Code
	Message     string
	Location    token.Position
	Suggestions []Suggestion
	Related     []Diagnostic
}

func (d Diagnostic) dedupKey() string {
	return fmt.Sprintf("%d|%d|%d|%s", d.Code, d.Location.Line, d.Location.Column, d.Message)
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s]: %s (%s)", d.Severity, d.Code, d.Message, d.Location)
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped directly where a single error value is expected.
func (d Diagnostic) Error() string { return d.String() }
