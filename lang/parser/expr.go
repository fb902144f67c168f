package parser

import (
	"strconv"

	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
)

// parseExpr is the entry point into the precedence-climbing expression
// grammar, low to high: or, and, equality, comparison, additive,
// multiplicative, unary, primary.
func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.cur().Kind == token.PIPEPIPE {
		opPos := p.advance().Pos
		right := p.parseAnd()
		left = &ast.BinaryExpr{Left: left, Op: ast.OpOr, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.cur().Kind == token.AMPAMP {
		opPos := p.advance().Pos
		right := p.parseEquality()
		left = &ast.BinaryExpr{Left: left, Op: ast.OpAnd, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.cur().Kind == token.EQ || p.cur().Kind == token.NEQ {
		op := ast.OpEq
		if p.cur().Kind == token.NEQ {
			op = ast.OpNeq
		}
		opPos := p.advance().Pos
		right := p.parseComparison()
		left = &ast.BinaryExpr{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for isComparisonOp(p.cur().Kind) {
		op := binOpForComparison(p.cur().Kind)
		opPos := p.advance().Pos
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur().Kind == token.PLUS || p.cur().Kind == token.MINUS {
		op := ast.OpAdd
		if p.cur().Kind == token.MINUS {
			op = ast.OpSub
		}
		opPos := p.advance().Pos
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.cur().Kind == token.STAR || p.cur().Kind == token.SLASH {
		op := ast.OpMul
		if p.cur().Kind == token.SLASH {
			op = ast.OpDiv
		}
		opPos := p.advance().Pos
		right := p.parseUnary()
		left = &ast.BinaryExpr{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	if p.cur().Kind == token.MINUS || p.cur().Kind == token.BANG {
		op := ast.OpNeg
		if p.cur().Kind == token.BANG {
			op = ast.OpNot
		}
		opPos := p.advance().Pos
		right := p.parseUnary()
		return &ast.UnaryExpr{Op: op, OpPos: opPos, Right: right}
	}
	return p.parsePrimary()
}

func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.LT, token.LE, token.GT, token.GE:
		return true
	}
	return false
}

func binOpForComparison(k token.Kind) ast.BinaryOp {
	switch k {
	case token.LT:
		return ast.OpLt
	case token.LE:
		return ast.OpLe
	case token.GT:
		return ast.OpGt
	default:
		return ast.OpGe
	}
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.cur().Kind {
	case token.INT, token.FLOAT:
		return p.parseNumericLiteral()
	case token.STRING:
		tok := p.advance()
		lit := &ast.LiteralExpr{Kind: ast.LitString, Str: stripQuotes(tok.Lexeme), Start: tok.Pos, End: tok.Pos + token.Pos(len(tok.Lexeme))}
		lit.SetType(types.String)
		return lit
	case token.BOOL:
		tok := p.advance()
		lit := &ast.LiteralExpr{Kind: ast.LitBool, Bool: tok.Lexeme == "true", Start: tok.Pos, End: tok.Pos + token.Pos(len(tok.Lexeme))}
		lit.SetType(types.Bool)
		return lit
	case token.IDENT:
		tok := p.advance()
		var e ast.Expr = &ast.VariableExpr{Name: tok.Lexeme, Pos: tok.Pos}
		if p.cur().Kind == token.LPAREN {
			e = p.parseCallExpr(e)
		}
		return e
	case token.IF:
		return p.parseConditionalExpr()
	default:
		p.errorAt(p.cur().Pos, diag.ExpectedExpression, diag.ExpectedExpression.Description())
		panic(errPanicMode{})
	}
}

// parseNumericLiteral parses an integer or float literal, optionally
// followed immediately by a type-name identifier that fixes its type (e.g.
// `42 i32`, `3.14 f64`). A suffix triggers an immediate range check; a bare
// literal is left unspecified for the analyzer's finalization pass.
func (p *parser) parseNumericLiteral() ast.Expr {
	tok := p.advance()
	lit := &ast.LiteralExpr{Start: tok.Pos}

	var suffix string
	var suffixPos token.Pos
	if p.cur().Kind == token.IDENT && isNumericSuffix(p.cur().Lexeme) {
		suffix = p.cur().Lexeme
		suffixPos = p.cur().Pos
		p.advance()
	}

	if tok.Kind == token.FLOAT {
		p.fillFloatLiteral(lit, tok, suffix, suffixPos)
	} else {
		p.fillIntLiteral(lit, tok, suffix, suffixPos)
	}

	if suffix != "" {
		lit.End = suffixPos + token.Pos(len(suffix))
	} else {
		lit.End = tok.Pos + token.Pos(len(tok.Lexeme))
	}
	return lit
}

func (p *parser) fillIntLiteral(lit *ast.LiteralExpr, tok token.Token, suffix string, suffixPos token.Pos) {
	n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		p.errorAt(tok.Pos, diag.InvalidNumberLiteral, diag.InvalidNumberLiteral.Description())
	}
	lit.Int = n

	switch suffix {
	case "":
		lit.Kind = ast.LitUnspecifiedInt
		lit.SetType(types.UnspecifiedInt)
	case "i32":
		lit.Kind = ast.LitI32
		lit.SetType(types.I32)
		p.checkIntRange(n, types.I32, suffixPos)
	case "i64":
		lit.Kind = ast.LitI64
		lit.SetType(types.I64)
	case "u32":
		lit.Kind = ast.LitU32
		lit.SetType(types.U32)
		p.checkIntRange(n, types.U32, suffixPos)
	case "u64":
		lit.Kind = ast.LitU64
		lit.SetType(types.U64)
		p.checkIntRange(n, types.U64, suffixPos)
	default:
		p.errorAt(suffixPos, diag.UnknownType, "'"+suffix+"' is not a valid suffix for an integer literal")
		lit.Kind = ast.LitUnspecifiedInt
		lit.SetType(types.UnspecifiedInt)
	}
}

func (p *parser) fillFloatLiteral(lit *ast.LiteralExpr, tok token.Token, suffix string, suffixPos token.Pos) {
	f, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		p.errorAt(tok.Pos, diag.InvalidNumberLiteral, diag.InvalidNumberLiteral.Description())
	}
	lit.Float = f

	switch suffix {
	case "":
		lit.Kind = ast.LitUnspecifiedFloat
		lit.SetType(types.UnspecifiedFloat)
	case "f32":
		lit.Kind = ast.LitF32
		lit.SetType(types.F32)
		p.checkFloatRange(f, types.F32, suffixPos)
	case "f64":
		lit.Kind = ast.LitF64
		lit.SetType(types.F64)
	default:
		p.errorAt(suffixPos, diag.UnknownType, "'"+suffix+"' is not a valid suffix for a float literal")
		lit.Kind = ast.LitUnspecifiedFloat
		lit.SetType(types.UnspecifiedFloat)
	}
}

func (p *parser) checkIntRange(n int64, id types.ID, pos token.Pos) {
	if !p.types.InRange(n, id) {
		p.errorAt(pos, diag.ValueOutOfRange, "value "+strconv.FormatInt(n, 10)+" out of range for "+p.types.Name(id))
	}
}

func (p *parser) checkFloatRange(f float64, id types.ID, pos token.Pos) {
	if !p.types.FloatInRange(f, id) {
		p.errorAt(pos, diag.ValueOutOfRange, "value "+strconv.FormatFloat(f, 'g', -1, 64)+" out of range for "+p.types.Name(id))
	}
}

func isNumericSuffix(name string) bool {
	switch name {
	case "i32", "i64", "u32", "u64", "f32", "f64":
		return true
	}
	return false
}

func stripQuotes(lexeme string) string {
	if len(lexeme) >= 2 && lexeme[len(lexeme)-1] == '"' {
		return lexeme[1 : len(lexeme)-1]
	}
	if len(lexeme) >= 1 {
		return lexeme[1:]
	}
	return lexeme
}

func (p *parser) parseCallExpr(callee ast.Expr) *ast.CallExpr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	tooMany := false
	if p.cur().Kind != token.RPAREN {
		args = append(args, p.parseExpr())
		for p.cur().Kind == token.COMMA {
			p.advance()
			if len(args) >= maxParamsOrArgs && !tooMany {
				p.errorAt(p.cur().Pos, diag.TooManyParamsOrArgs, diag.TooManyParamsOrArgs.Description())
				tooMany = true
			}
			args = append(args, p.parseExpr())
		}
	}
	rparen := p.expect(token.RPAREN).Pos
	return &ast.CallExpr{Callee: callee, Args: args, RParen: rparen}
}

// parseConditionalExpr parses an if-expression: `if EXPR BLOCK else BLOCK`.
// Unlike the if statement, the else branch is mandatory since the
// expression must produce a value on every path.
func (p *parser) parseConditionalExpr() *ast.ConditionalExpr {
	ifPos := p.expect(token.IF).Pos
	cond := p.parseExpr()
	then := p.parseBlockExpr()
	if p.cur().Kind != token.ELSE {
		p.errorAt(p.cur().Pos, diag.ExpectedElse, diag.ExpectedElse.Description())
		panic(errPanicMode{})
	}
	p.advance()
	els := p.parseBlockExpr()
	return &ast.ConditionalExpr{IfPos: ifPos, Cond: cond, Then: then, Else: els}
}

// parseBlockExpr parses `{ STATEMENT* [EXPR without trailing ;] }`.
func (p *parser) parseBlockExpr() *ast.BlockExpr {
	lbrace := p.expect(token.LBRACE).Pos
	p.blockDepth++

	var stmts []ast.Stmt
	var tail ast.Expr
	for p.cur().Kind != token.RBRACE && p.cur().Kind != token.EOF {
		stmt, trailing := p.parseStmtRecoverable(true)
		if trailing != nil {
			tail = trailing
			break
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	p.blockDepth--
	rbrace := p.expect(token.RBRACE).Pos
	return &ast.BlockExpr{LBrace: lbrace, Stmts: stmts, Tail: tail, RBrace: rbrace}
}

// parseTypeRef parses a type annotation: either a plain name (a primitive or
// a struct name, resolved immediately for primitives) or a function type
// `fn( [TYPE (, TYPE)*] ) [-> TYPE]`.
func (p *parser) parseTypeRef() ast.TypeRef {
	if p.cur().Kind == token.FN {
		return p.parseFunctionTypeRef()
	}
	tok := p.expect(token.IDENT)
	name := tok.Lexeme
	if name == "int" || name == "float" || name == "unknown" {
		p.diags.EmitWithSuggestion(diag.ExpectedType, "'"+name+"' cannot be used as a type name", p.position(tok.Pos),
			diag.Suggestion{Message: "name a concrete width instead: i32/i64/u32/u64 for integers, f32/f64 for floats"})
	}
	ref := ast.TypeRef{Name: name, Pos: tok.Pos}
	if id, ok := types.ByName(name); ok {
		ref.Resolved = id
	}
	return ref
}

func (p *parser) parseFunctionTypeRef() ast.TypeRef {
	fnPos := p.expect(token.FN).Pos
	p.expect(token.LPAREN)

	var params []ast.TypeRef
	for p.cur().Kind != token.RPAREN && p.cur().Kind != token.EOF {
		params = append(params, p.parseTypeRef())
		if p.cur().Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	rparen := p.expect(token.RPAREN).Pos

	ret := ast.TypeRef{Name: "unit", Pos: rparen, Resolved: types.Unit}
	end := rparen + 1
	if p.cur().Kind == token.ARROW {
		p.advance()
		ret = p.parseTypeRef()
		end = typeRefEnd(ret)
	}

	fnType := &ast.FunctionTypeExpr{FnPos: fnPos, Params: params, Return: ret, End: end}
	return ast.TypeRef{Pos: fnPos, Func: fnType}
}

func typeRefEnd(t ast.TypeRef) token.Pos {
	if t.Func != nil {
		return t.Func.End
	}
	return t.Pos + token.Pos(len(t.Name))
}
