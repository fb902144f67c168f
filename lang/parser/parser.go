// Package parser implements the recursive-descent, Pratt-precedence parser
// that turns a token stream into an AST, with panic-mode error recovery
// carried over from the project's own parser.
package parser

import (
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/lexer"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
)

// maxParamsOrArgs is the cap on a function's parameter list or a call's
// argument list.
const maxParamsOrArgs = 255

// Parse tokenizes and parses a single source file, reporting every
// diagnostic (lexical and syntactic) to diags. The returned Chunk is always
// non-nil, even when diags collected errors: recovered-from statements
// become omitted rather than poisoning the whole chunk.
func Parse(fset *token.FileSet, filename string, src []byte, diags *diag.Engine, reg *types.Registry) *ast.Chunk {
	file, toks := lexer.Tokenize(fset, filename, src, func(pos token.Position, msg string) {
		diags.EmitError(diag.InvalidToken, msg, pos)
	})
	p := &parser{file: file, toks: toks, diags: diags, types: reg}
	chunk := p.parseChunk()
	chunk.Name = filename
	return chunk
}

// parser parses a single token stream produced by the lexer.
type parser struct {
	file  *token.File
	toks  []token.Token
	pos   int
	diags *diag.Engine
	types *types.Registry

	// blockDepth counts nested BlockExpr scopes; a 'fn' declaration seen while
	// blockDepth > 0 is a nested function, which is rejected.
	blockDepth int
}

func (p *parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1] // EOF
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// errPanicMode is recovered at the statement level to drive synchronization.
type errPanicMode struct{}

func (errPanicMode) Error() string { return "parse error" }

func (p *parser) position(pos token.Pos) token.Position {
	return p.file.Position(pos)
}

func (p *parser) errorAt(pos token.Pos, code diag.Code, msg string) {
	p.diags.EmitError(code, msg, p.position(pos))
}

// expect consumes and returns the current token if it has the given kind,
// otherwise it reports an ExpectedX-ish diagnostic and enters panic mode.
func (p *parser) expect(kind token.Kind) token.Token {
	if p.cur().Kind == kind {
		return p.advance()
	}
	msg := "expected " + kind.String() + ", found " + p.cur().String()
	if kind == token.SEMI {
		p.diags.EmitWithSuggestion(diag.ExpectedSemicolon, msg, p.position(p.cur().Pos),
			diag.Suggestion{Message: "add a ';' after the statement", Replacement: ";"})
	} else {
		p.errorAt(p.cur().Pos, expectedCode(kind), msg)
	}
	panic(errPanicMode{})
}

func expectedCode(kind token.Kind) diag.Code {
	switch kind {
	case token.SEMI:
		return diag.ExpectedSemicolon
	case token.RBRACE:
		return diag.ExpectedClosingBrace
	case token.RPAREN:
		return diag.ExpectedClosingParen
	case token.LBRACE:
		return diag.ExpectedOpeningBrace
	case token.LPAREN:
		return diag.ExpectedOpeningParen
	case token.IDENT:
		return diag.ExpectedIdentifier
	case token.COMMA:
		return diag.ExpectedComma
	case token.COLON:
		return diag.ExpectedColon
	case token.ASSIGN:
		return diag.ExpectedEquals
	case token.EOF:
		return diag.ExpectedEOF
	default:
		return diag.UnexpectedToken
	}
}

// synchronize advances past the offending token until just after the next
// ';' or until the current token starts a new statement ('let', 'fn',
// 'struct', 'return') or EOF is reached.
func (p *parser) synchronize() {
	for p.cur().Kind != token.EOF {
		switch p.cur().Kind {
		case token.SEMI:
			p.advance()
			return
		case token.LET, token.FN, token.STRUCT, token.RETURN:
			return
		}
		p.advance()
	}
}
