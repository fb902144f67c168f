// Package compiler takes an analyzed AST and compiles it to bytecode that
// can be executed by the virtual machine. Unlike a general-purpose bytecode
// compiler, the target instruction set is flat and fixed-width enough that
// no control-flow graph needs building: every statement and expression is
// emitted linearly into one byte slice, with forward jumps (if/else,
// short-circuit &&/||) resolved by backpatching a placeholder offset once
// the jump target is known. It also provides a pseudo-assembly textual form
// for tests, rebuilt from github.com/mna/nenuphar's own compiler/asm.go
// convention but cut down to this language's flat opcode set.
package compiler

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/token"
)

const maxPoolSize = 256

// Compile compiles a fully analyzed chunk into bytecode. The chunk must have
// already gone through the analyzer without errors; behavior is undefined
// otherwise (an unresolved or mistyped node has no defined translation).
func Compile(fset *token.FileSet, chunk *ast.Chunk, diags *diag.Engine) *Chunk {
	g := &gcomp{
		fset:       fset,
		diags:      diags,
		out:        &Chunk{},
		identIndex: swiss.NewMap[string, byte](8),
	}
	g.stmts(chunk.Stmts)
	return g.out
}

// gcomp holds the state of one in-progress compilation.
type gcomp struct {
	fset  *token.FileSet
	diags *diag.Engine
	out   *Chunk

	identIndex *swiss.Map[string, byte]
}

func (g *gcomp) line(pos token.Pos) int {
	return g.fset.Position(pos).Line
}

func (g *gcomp) fatalf(pos token.Pos, code diag.Code, format string, args ...any) {
	g.diags.EmitError(code, fmt.Sprintf(format, args...), g.fset.Position(pos))
}

// emit appends a single opcode byte (and its operand bytes, already
// encoded) to the code stream, recording the source line for every byte
// emitted, per the Chunk invariant that lines and code have equal length.
func (g *gcomp) emit(op Opcode, pos token.Pos, operand ...byte) int {
	start := len(g.out.Code)
	g.out.Code = append(g.out.Code, byte(op))
	g.out.Code = append(g.out.Code, operand...)
	line := g.line(pos)
	for range g.out.Code[start:] {
		g.out.Lines = append(g.out.Lines, line)
	}
	return start
}

func (g *gcomp) emit0(op Opcode, pos token.Pos) int { return g.emit(op, pos) }

func (g *gcomp) emit1(op Opcode, arg byte, pos token.Pos) int { return g.emit(op, pos, arg) }

func (g *gcomp) emit2(op Opcode, arg uint16, pos token.Pos) int {
	return g.emit(op, pos, byte(arg>>8), byte(arg))
}

// emitJump emits a jump-family opcode with a two-byte placeholder operand
// and returns the index of the operand's first byte, to be passed to
// patchJump once the target address is known.
func (g *gcomp) emitJump(op Opcode, pos token.Pos) int {
	start := g.emit2(op, 0, pos)
	return start + 1
}

// patchJump fills in a previously emitted placeholder jump offset: the
// number of bytes between the byte after the operand and the current end of
// the code stream.
func (g *gcomp) patchJump(operandStart int, pos token.Pos) {
	offset := len(g.out.Code) - (operandStart + 2)
	if offset < 0 || offset > 0xFFFF {
		g.fatalf(pos, diag.JumpTooFar, "jump offset %d exceeds maximum of 65535", offset)
		offset = 0
	}
	g.out.Code[operandStart] = byte(offset >> 8)
	g.out.Code[operandStart+1] = byte(offset)
}

func (g *gcomp) identifier(name string, pos token.Pos) byte {
	if idx, ok := g.identIndex.Get(name); ok {
		return idx
	}
	if len(g.out.Identifiers) >= maxPoolSize {
		g.fatalf(pos, diag.PoolOverflow, "more than 255 distinct identifiers in chunk")
		return 0
	}
	idx := byte(len(g.out.Identifiers))
	g.out.Identifiers = append(g.out.Identifiers, name)
	g.identIndex.Put(name, idx)
	return idx
}

func (g *gcomp) constant(c ConstantValue, pos token.Pos) byte {
	if len(g.out.Constants) >= maxPoolSize {
		g.fatalf(pos, diag.PoolOverflow, "more than 255 constants in chunk")
		return 0
	}
	idx := byte(len(g.out.Constants))
	g.out.Constants = append(g.out.Constants, c)
	return idx
}

// stmts compiles a sequence of statements sharing one lexical scope, emitted
// back-to-back with no BeginScope/EndScope of its own — callers that
// introduce an actual block (function bodies, if/else branches) wrap the
// call with beginScope/endScope.
func (g *gcomp) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		g.stmt(s)
	}
}

func (g *gcomp) beginScope(pos token.Pos) { g.emit0(BeginScope, pos) }
func (g *gcomp) endScope(pos token.Pos)   { g.emit0(EndScope, pos) }

func (g *gcomp) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		g.letStmt(s)
	case *ast.AssignStmt:
		g.assignStmt(s)
	case *ast.ExprStmt:
		g.expr(s.X)
		g.emit0(Pop, s.Semi)
	case *ast.TypeDefStmt:
		// Struct type definitions have no runtime representation: this
		// language has no struct-literal or field-access expression, so a
		// struct type only ever matters to the analyzer.
	case *ast.FunctionDeclStmt:
		g.functionDeclStmt(s)
	case *ast.ReturnStmt:
		g.returnStmt(s)
	case *ast.IfStmt:
		g.ifStmt(s)
	}
}

func (g *gcomp) letStmt(s *ast.LetStmt) {
	g.expr(s.Value)
	idx := g.identifier(s.Name, s.NamePos)
	g.emit1(SetVariable, idx, s.NamePos)
	g.emit0(Pop, s.Semi)
}

func (g *gcomp) assignStmt(s *ast.AssignStmt) {
	g.expr(s.Value)
	idx := g.identifier(s.Name, s.NamePos)
	g.emit1(SetVariable, idx, s.NamePos)
	g.emit0(Pop, s.Semi)
}

// functionDeclStmt emits a jump over the function's body, records the body's
// start as its code_offset, compiles the body with its own scope, always
// ends it with a Return of the body's tail expression, or of unit when there
// is no tail (whatever the declared return type), then patches the skip-jump and defines the function constant in globals.
func (g *gcomp) functionDeclStmt(s *ast.FunctionDeclStmt) {
	skip := g.emitJump(Jump, s.FnPos)

	codeOffset := uint32(len(g.out.Code))
	g.beginScope(s.FnPos)
	g.stmts(s.Body.Stmts)
	if s.Body.Tail != nil {
		g.expr(s.Body.Tail)
	} else {
		g.emit1(Constant, g.constant(ConstantValue{Tag: TagUnit}, s.FnPos), s.FnPos)
	}
	g.emit0(Return, s.FnPos)
	g.endScope(s.FnPos)

	g.patchJump(skip, s.FnPos)

	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Name
	}
	constIdx := g.constant(ConstantValue{
		Tag:        TagFunction,
		Name:       s.Name,
		Arity:      len(params),
		CodeOffset: codeOffset,
		Params:     params,
	}, s.FnPos)
	identIdx := g.identifier(s.Name, s.NamePos)
	g.emit(DefineFunction, s.FnPos, identIdx, constIdx)
}

// returnStmt emits the return value, synthesizing Unit for a bare `return;`.
func (g *gcomp) returnStmt(s *ast.ReturnStmt) {
	if s.Value != nil {
		g.expr(s.Value)
	} else {
		g.emit1(Constant, g.constant(ConstantValue{Tag: TagUnit}, s.ReturnPos), s.ReturnPos)
	}
	g.emit0(Return, s.ReturnPos)
}

// ifStmt emits condition, JumpIfFalse to the else branch (or to the end if
// there is none), Pop the now-unneeded condition, the then-block, then an
// unconditional Jump from the end of the then-block over the false path; the
// condition's Pop on the false path is emitted right after the (patched)
// else_start label, followed by the else-block if one is present.
func (g *gcomp) ifStmt(s *ast.IfStmt) {
	g.expr(s.Cond)
	elseJump := g.emitJump(JumpIfFalse, s.IfPos)
	g.emit0(Pop, s.IfPos)
	g.block(s.Then)

	if s.Else != nil {
		endJump := g.emitJump(Jump, s.IfPos)
		g.patchJump(elseJump, s.IfPos)
		g.emit0(Pop, s.IfPos)
		g.block(s.Else)
		g.patchJump(endJump, s.IfPos)
	} else {
		endJump := g.emitJump(Jump, s.IfPos)
		g.patchJump(elseJump, s.IfPos)
		g.emit0(Pop, s.IfPos)
		g.patchJump(endJump, s.IfPos)
	}
}

// block compiles a brace-delimited block used as a statement (its value, if
// any, is discarded): its own scope, its statements, and if it has a tail
// expression, that expression popped right after.
func (g *gcomp) block(b *ast.BlockExpr) {
	g.beginScope(b.LBrace)
	g.stmts(b.Stmts)
	if b.Tail != nil {
		g.expr(b.Tail)
		g.emit0(Pop, b.RBrace)
	}
	g.endScope(b.RBrace)
}

// blockExpr compiles a brace-delimited block used as an expression: its
// value (the tail expression, or Unit if absent) is left on the stack.
func (g *gcomp) blockExpr(b *ast.BlockExpr) {
	g.beginScope(b.LBrace)
	g.stmts(b.Stmts)
	if b.Tail != nil {
		g.expr(b.Tail)
	} else {
		g.emit1(Constant, g.constant(ConstantValue{Tag: TagUnit}, b.RBrace), b.RBrace)
	}
	g.endScope(b.RBrace)
}

func (g *gcomp) expr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.LiteralExpr:
		g.literal(x)
	case *ast.VariableExpr:
		idx := g.identifier(x.Name, x.Pos)
		g.emit1(GetVariable, idx, x.Pos)
	case *ast.UnaryExpr:
		g.unary(x)
	case *ast.BinaryExpr:
		g.binary(x)
	case *ast.CallExpr:
		g.call(x)
	case *ast.ConditionalExpr:
		g.conditional(x)
	case *ast.BlockExpr:
		g.blockExpr(x)
	}
}

func (g *gcomp) literal(x *ast.LiteralExpr) {
	var c ConstantValue
	switch x.Kind {
	case ast.LitI32:
		c = ConstantValue{Tag: TagI32, Int: x.Int}
	case ast.LitI64:
		c = ConstantValue{Tag: TagI64, Int: x.Int}
	case ast.LitU32:
		c = ConstantValue{Tag: TagU32, Int: x.Int}
	case ast.LitU64:
		c = ConstantValue{Tag: TagU64, Int: x.Int}
	case ast.LitF32:
		c = ConstantValue{Tag: TagF32, Float: x.Float}
	case ast.LitF64:
		c = ConstantValue{Tag: TagF64, Float: x.Float}
	case ast.LitString:
		c = ConstantValue{Tag: TagString, Str: x.Str}
	case ast.LitBool:
		c = ConstantValue{Tag: TagBool, Bool: x.Bool}
	case ast.LitUnit:
		c = ConstantValue{Tag: TagUnit}
	}
	g.emit1(Constant, g.constant(c, x.Start), x.Start)
}

func (g *gcomp) unary(x *ast.UnaryExpr) {
	g.expr(x.Right)
	switch x.Op {
	case ast.OpNeg:
		g.emit0(Neg, x.OpPos)
	case ast.OpNot:
		g.emit0(Not, x.OpPos)
	}
}

var binaryOpcodes = map[ast.BinaryOp]Opcode{
	ast.OpAdd: Add,
	ast.OpSub: Sub,
	ast.OpMul: Mul,
	ast.OpDiv: Div,
	ast.OpEq:  Eq,
	ast.OpNeq: Ne,
	ast.OpLt:  Lt,
	ast.OpLe:  Le,
	ast.OpGt:  Gt,
	ast.OpGe:  Ge,
}

// binary emits both operands then the opcode for every binary operator
// except && and ||, which short-circuit instead: they never evaluate their
// right operand unless needed, so they get their own jump-based emission.
func (g *gcomp) binary(x *ast.BinaryExpr) {
	switch x.Op {
	case ast.OpAnd:
		g.expr(x.Left)
		j := g.emitJump(JumpIfFalse, x.OpPos)
		g.emit0(Pop, x.OpPos)
		g.expr(x.Right)
		g.patchJump(j, x.OpPos)
		return
	case ast.OpOr:
		g.expr(x.Left)
		jFalse := g.emitJump(JumpIfFalse, x.OpPos)
		jEnd := g.emitJump(Jump, x.OpPos)
		g.patchJump(jFalse, x.OpPos)
		g.emit0(Pop, x.OpPos)
		g.expr(x.Right)
		g.patchJump(jEnd, x.OpPos)
		return
	}

	g.expr(x.Left)
	g.expr(x.Right)
	op, ok := binaryOpcodes[x.Op]
	if !ok {
		panic(fmt.Sprintf("compiler: unhandled binary operator %s", x.Op))
	}
	g.emit0(op, x.OpPos)
}

// call emits each argument in order, then the callee, then Call. The
// callee's position is only needed as an expression if it isn't a bare
// variable reference (e.g. calling through a parenthesized expression is
// not part of this language's grammar today, but typeCallee in the analyzer
// already allows an arbitrary callee expression, so the compiler mirrors
// that generality).
func (g *gcomp) call(x *ast.CallExpr) {
	for _, a := range x.Args {
		g.expr(a)
	}
	g.expr(x.Callee)
	g.emit1(Call, byte(len(x.Args)), x.RParen)
}

// conditional compiles an if-expression: both branches are present and each
// leaves a value on the stack, per the analyzer's branch-unification rule.
func (g *gcomp) conditional(x *ast.ConditionalExpr) {
	g.expr(x.Cond)
	elseJump := g.emitJump(JumpIfFalse, x.IfPos)
	g.emit0(Pop, x.IfPos)
	g.blockExpr(x.Then)
	endJump := g.emitJump(Jump, x.IfPos)
	g.patchJump(elseJump, x.IfPos)
	g.emit0(Pop, x.IfPos)
	g.blockExpr(x.Else)
	g.patchJump(endJump, x.IfPos)
}
