package parser

import (
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
)

// parseStmt parses one statement starting at the current token. When
// allowTail is set and the current position turns out to hold a trailing
// expression (no semicolon, immediately followed by '}'), it is returned as
// tail instead of being wrapped in an ExprStmt.
func (p *parser) parseStmt(allowTail bool) (ast.Stmt, ast.Expr) {
	switch p.cur().Kind {
	case token.LET:
		return p.parseLetStmt(), nil
	case token.FN:
		return p.parseFunctionDeclStmt(), nil
	case token.RETURN:
		return p.parseReturnStmt(), nil
	case token.IF:
		return p.parseIfStmt(), nil
	case token.STRUCT:
		return p.parseTypeDefStmt(), nil
	}

	if p.cur().Kind == token.IDENT && p.peek().Kind == token.ASSIGN {
		return p.parseAssignStmt(), nil
	}

	expr := p.parseExpr()
	if p.cur().Kind == token.SEMI {
		semi := p.advance().Pos
		return &ast.ExprStmt{X: expr, Semi: semi}, nil
	}
	if allowTail && p.cur().Kind == token.RBRACE {
		return nil, expr
	}
	p.errorAt(p.cur().Pos, diag.ExpectedSemicolon, diag.ExpectedSemicolon.Description())
	panic(errPanicMode{})
}

// parseLetStmt parses `let [mut] IDENT [: TYPE] = EXPR ;`.
func (p *parser) parseLetStmt() *ast.LetStmt {
	letPos := p.expect(token.LET).Pos
	mutable := false
	if p.cur().Kind == token.MUT {
		p.advance()
		mutable = true
	}
	nameTok := p.expect(token.IDENT)

	var typeRef ast.TypeRef
	if p.cur().Kind == token.COLON {
		p.advance()
		typeRef = p.parseTypeRef()
	}
	p.expect(token.ASSIGN)
	value := p.parseExpr()
	semi := p.expect(token.SEMI).Pos
	return &ast.LetStmt{
		LetPos:  letPos,
		Name:    nameTok.Lexeme,
		NamePos: nameTok.Pos,
		Mutable: mutable,
		Type:    typeRef,
		Value:   value,
		Semi:    semi,
	}
}

// parseAssignStmt parses `IDENT = EXPR ;`. Whether IDENT actually names a
// mutable variable is a semantic question left to the analyzer; here the
// rule is purely syntactic: an identifier directly followed by '=' is an
// assignment.
func (p *parser) parseAssignStmt() *ast.AssignStmt {
	nameTok := p.expect(token.IDENT)
	p.expect(token.ASSIGN)
	value := p.parseExpr()
	semi := p.expect(token.SEMI).Pos
	return &ast.AssignStmt{Name: nameTok.Lexeme, NamePos: nameTok.Pos, Value: value, Semi: semi}
}

// parseReturnStmt parses `return [EXPR] ;`. A bare `return;` returns unit.
func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	retPos := p.expect(token.RETURN).Pos
	var value ast.Expr
	if p.cur().Kind != token.SEMI {
		value = p.parseExpr()
	}
	semi := p.expect(token.SEMI).Pos
	return &ast.ReturnStmt{ReturnPos: retPos, Value: value, Semi: semi}
}

// parseIfStmt parses `if EXPR BLOCK [else BLOCK]` used as a statement: the
// else branch is optional since, used this way, the if has no value.
func (p *parser) parseIfStmt() *ast.IfStmt {
	ifPos := p.expect(token.IF).Pos
	cond := p.parseExpr()
	then := p.parseBlockExpr()
	var els *ast.BlockExpr
	if p.cur().Kind == token.ELSE {
		p.advance()
		els = p.parseBlockExpr()
	}
	return &ast.IfStmt{IfPos: ifPos, Cond: cond, Then: then, Else: els}
}

// parseTypeDefStmt parses `struct IDENT { (IDENT : TYPE ,?)* } ;`.
func (p *parser) parseTypeDefStmt() *ast.TypeDefStmt {
	structPos := p.expect(token.STRUCT).Pos
	nameTok := p.expect(token.IDENT)
	p.expect(token.LBRACE)

	var fields []ast.FieldDecl
	for p.cur().Kind != token.RBRACE && p.cur().Kind != token.EOF {
		fieldTok := p.expect(token.IDENT)
		p.expect(token.COLON)
		typeRef := p.parseTypeRef()
		fields = append(fields, ast.FieldDecl{Name: fieldTok.Lexeme, Type: typeRef, Pos: fieldTok.Pos})
		if p.cur().Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	rbrace := p.expect(token.RBRACE).Pos
	p.expect(token.SEMI)
	return &ast.TypeDefStmt{StructPos: structPos, Name: nameTok.Lexeme, NamePos: nameTok.Pos, Fields: fields, RBrace: rbrace}
}

// parseFunctionDeclStmt parses `fn IDENT ( [PARAM (, PARAM)*] ) [-> TYPE] BLOCK`.
func (p *parser) parseFunctionDeclStmt() *ast.FunctionDeclStmt {
	fnPos := p.expect(token.FN).Pos
	if p.blockDepth > 0 {
		p.errorAt(fnPos, diag.NestedFunction, diag.NestedFunction.Description())
	}
	nameTok := p.expect(token.IDENT)
	p.expect(token.LPAREN)

	var params []ast.Param
	tooMany := false
	for p.cur().Kind != token.RPAREN && p.cur().Kind != token.EOF {
		if len(params) >= maxParamsOrArgs && !tooMany {
			p.errorAt(p.cur().Pos, diag.TooManyParamsOrArgs, diag.TooManyParamsOrArgs.Description())
			tooMany = true
		}
		paramTok := p.expect(token.IDENT)
		p.expect(token.COLON)
		typeRef := p.parseTypeRef()
		params = append(params, ast.Param{Name: paramTok.Lexeme, Type: typeRef, Pos: paramTok.Pos})
		if p.cur().Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)

	ret := ast.TypeRef{Name: "unit", Resolved: types.Unit}
	if p.cur().Kind == token.ARROW {
		p.advance()
		ret = p.parseTypeRef()
	}
	body := p.parseBlockExpr()
	return &ast.FunctionDeclStmt{FnPos: fnPos, Name: nameTok.Lexeme, NamePos: nameTok.Pos, Params: params, Return: ret, Body: body}
}
