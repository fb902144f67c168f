package analyzer

import (
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/symbols"
	"github.com/mna/slang/lang/types"
)

// analyzeBlock analyzes a sequence of statements sharing one scope. It
// pre-registers every function declaration's signature before analyzing any
// statement body, so a call to a function declared later in the same block
// resolves correctly; struct declarations and variables are processed
// strictly in source order.
func (a *analyzer) analyzeBlock(stmts []ast.Stmt) {
	a.predeclareFunctions(stmts)
	for _, stmt := range stmts {
		a.analyzeStmt(stmt)
	}
}

func (a *analyzer) predeclareFunctions(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		if fn, ok := stmt.(*ast.FunctionDeclStmt); ok {
			a.declareFunctionSignature(fn)
		}
	}
}

func (a *analyzer) declareFunctionSignature(fn *ast.FunctionDeclStmt) {
	params := make([]types.ID, len(fn.Params))
	for i := range fn.Params {
		params[i] = a.resolveTypeRef(&fn.Params[i].Type)
	}
	ret := a.resolveTypeRef(&fn.Return)
	fnType := a.types.Function(params, ret)
	a.define(symbols.Symbol{Name: fn.Name, Kind: symbols.KindFunction, Type: fnType}, fn.NamePos)
}

func (a *analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		a.analyzeLetStmt(s)
	case *ast.AssignStmt:
		a.analyzeAssignStmt(s)
	case *ast.ExprStmt:
		a.typeExpr(s.X)
	case *ast.TypeDefStmt:
		a.analyzeTypeDefStmt(s)
	case *ast.FunctionDeclStmt:
		a.analyzeFunctionDeclStmt(s)
	case *ast.ReturnStmt:
		a.analyzeReturnStmt(s)
	case *ast.IfStmt:
		a.analyzeIfStmt(s)
	}
}

func (a *analyzer) analyzeLetStmt(s *ast.LetStmt) {
	valType := a.typeExpr(s.Value)

	var finalType types.ID
	if s.Type.Name != "" || s.Type.Func != nil {
		declared := a.resolveTypeRef(&s.Type)
		finalType = a.coerceOrError(declared, valType, s.Value, exprPos(s.Value), diag.TypeMismatch)
	} else {
		finalType = valType
	}
	a.define(symbols.Symbol{Name: s.Name, Kind: symbols.KindVariable, Type: finalType, Mutable: s.Mutable}, s.NamePos)
}

func (a *analyzer) analyzeAssignStmt(s *ast.AssignStmt) {
	sym, ok := a.syms.Lookup(s.Name)
	if !ok {
		a.errorAt(s.NamePos, diag.UndefinedVariable, "undefined variable "+s.Name)
		a.typeExpr(s.Value)
		return
	}
	if sym.Kind != symbols.KindVariable {
		a.errorAt(s.NamePos, diag.UndefinedVariable, s.Name+" does not name a variable")
		a.typeExpr(s.Value)
		return
	}
	if !sym.Mutable {
		a.diags.EmitWithSuggestion(diag.AssignmentToImmutableVariable,
			"cannot assign to immutable variable "+s.Name, a.position(s.NamePos),
			diag.Suggestion{Message: "declare it with 'let mut " + s.Name + " = ...' to allow reassignment"})
	}
	valType := a.typeExpr(s.Value)
	a.coerceOrError(sym.Type, valType, s.Value, exprPos(s.Value), diag.TypeMismatch)
}

func (a *analyzer) analyzeTypeDefStmt(s *ast.TypeDefStmt) {
	fields := make([]types.Field, 0, len(s.Fields))
	for i := range s.Fields {
		ft := a.resolveTypeRef(&s.Fields[i].Type)
		if ft == types.Unknown || ft == types.UnspecifiedInt || ft == types.UnspecifiedFloat {
			a.errorAt(s.Fields[i].Pos, diag.InvalidFieldType, "invalid field type for "+s.Fields[i].Name)
		}
		fields = append(fields, types.Field{Name: s.Fields[i].Name, Type: ft})
	}
	structID := a.types.RegisterStruct(s.Name, fields)
	a.define(symbols.Symbol{Name: s.Name, Kind: symbols.KindType, Type: structID}, s.NamePos)
}

// analyzeFunctionDeclStmt analyzes a function body against the signature
// already registered by predeclareFunctions. Params live in their own
// scope, shared with the body's own statements rather than a further nested
// scope, so a body statement can shadow a param exactly like any other
// local shadowing an enclosing one.
func (a *analyzer) analyzeFunctionDeclStmt(fn *ast.FunctionDeclStmt) {
	sym, _ := a.syms.Lookup(fn.Name)
	info := a.types.Lookup(sym.Type)

	prevInFunction, prevReturn := a.inFunction, a.funcReturn
	a.inFunction, a.funcReturn = true, info.Return

	a.syms.BeginScope()
	for i, p := range fn.Params {
		a.define(symbols.Symbol{Name: p.Name, Kind: symbols.KindVariable, Type: info.Params[i], Mutable: false}, p.Pos)
	}
	a.analyzeBlock(fn.Body.Stmts)

	bodyType := types.ID(types.Unit)
	if fn.Body.Tail != nil {
		tailType := a.typeExpr(fn.Body.Tail)
		bodyType = a.coerceOrError(a.funcReturn, tailType, fn.Body.Tail, exprPos(fn.Body.Tail), diag.ReturnTypeMismatch)
	}
	fn.Body.SetType(bodyType)
	a.syms.EndScope()

	a.inFunction, a.funcReturn = prevInFunction, prevReturn
}

func (a *analyzer) analyzeReturnStmt(s *ast.ReturnStmt) {
	if !a.inFunction {
		a.errorAt(s.ReturnPos, diag.ReturnOutsideFunction, "return statement outside function")
		if s.Value != nil {
			a.typeExpr(s.Value)
		}
		return
	}
	if s.Value == nil {
		if a.funcReturn != types.Unit && a.funcReturn != types.Unknown {
			a.errorAt(s.ReturnPos, diag.MissingReturnValue, "missing return value for non-unit function")
		}
		return
	}
	valType := a.typeExpr(s.Value)
	a.coerceOrError(a.funcReturn, valType, s.Value, exprPos(s.Value), diag.ReturnTypeMismatch)
}

func (a *analyzer) analyzeIfStmt(s *ast.IfStmt) {
	condType := a.typeExpr(s.Cond)
	if condType != types.Bool && condType != types.Unknown {
		a.errorAt(exprPos(s.Cond), diag.TypeMismatch, "if condition must be bool")
	}
	a.typeBlockExpr(s.Then)
	if s.Else != nil {
		a.typeBlockExpr(s.Else)
	}
}
