package parser

import (
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/token"
)

func (p *parser) parseChunk() *ast.Chunk {
	var chunk ast.Chunk
	for p.cur().Kind != token.EOF {
		stmt, _ := p.parseStmtRecoverable(false)
		if stmt != nil {
			chunk.Stmts = append(chunk.Stmts, stmt)
		}
	}
	chunk.EOF = p.cur().Pos
	return &chunk
}

// parseStmtRecoverable parses one top-level or block-level statement,
// recovering via panic-mode synchronization if parsing fails partway
// through. When allowTail is set and the statement position turns out to
// hold a trailing (non-semicolon) expression immediately followed by '}',
// the expression is returned as tail instead of being wrapped in a
// statement. A nil/nil return means the statement was dropped, either by
// recovery or because parsing made no progress and was skipped to avoid an
// infinite loop.
func (p *parser) parseStmtRecoverable(allowTail bool) (stmt ast.Stmt, tail ast.Expr) {
	startPos := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errPanicMode); !ok {
				panic(r)
			}
			p.synchronize()
			stmt, tail = nil, nil
		}
	}()

	stmt, tail = p.parseStmt(allowTail)
	if stmt == nil && tail == nil && p.pos == startPos {
		// no progress was made (e.g. an unexpected token at statement start);
		// advance once to guarantee termination.
		p.advance()
	}
	return stmt, tail
}
