package semantic

import "github.com/novalang/novac/internal/ast"

// walkDecl dispatches a declaration into the right scope, declaring
// new symbols for its own members/params before recursing into bodies.
func (a *Analyzer) walkDecl(d ast.Declaration, scope *SymbolTable) {
	switch decl := d.(type) {
	case *ast.ClassDecl:
		a.walkClass(decl, scope)
	case *ast.FunctionDecl:
		a.walkFunction(decl, scope)
	case *ast.ConstructorDecl:
		inner := NewEnclosedSymbolTable(scope)
		for _, p := range decl.Params {
			inner.Define(p.Name, p.Type, p)
		}
		for _, arg := range decl.DelegationArgs {
			a.walkExpr(arg, inner)
		}
		if decl.Body != nil {
			a.walkStmt(decl.Body, inner)
		}
	case *ast.InitBlock:
		a.walkStmt(decl.Body, NewEnclosedSymbolTable(scope))
	case *ast.PropertyDecl:
		a.declareProperty(decl, scope)
		if decl.Initializer != nil {
			a.walkExpr(decl.Initializer, scope)
		}
		if decl.GetterBody != nil {
			a.walkStmt(decl.GetterBody, NewEnclosedSymbolTable(scope))
		}
		if decl.SetterBody != nil {
			setterScope := NewEnclosedSymbolTable(scope)
			setterScope.Define(decl.SetterParamName, decl.Type, decl)
			a.walkStmt(decl.SetterBody, setterScope)
		}
	case *ast.DestructuringDecl:
		if decl.Initializer != nil {
			a.walkExpr(decl.Initializer, scope)
		}
		for _, name := range decl.Names {
			if name == "_" {
				continue
			}
			if decl.Mutable {
				scope.Define(name, nil, decl)
			} else {
				scope.DefineReadOnly(name, nil, decl)
			}
		}
	case *ast.TypeAliasDecl:
		scope.DefineClass(decl.Name, decl)
	case *ast.EnumEntryDecl:
		for _, arg := range decl.Args {
			a.walkExpr(arg, scope)
		}
		for _, member := range decl.Body {
			a.walkDecl(member, scope)
		}
	}
}

func (a *Analyzer) walkClass(decl *ast.ClassDecl, outer *SymbolTable) {
	classScope := NewEnclosedSymbolTable(outer)
	if decl.PrimaryCtor != nil {
		for _, p := range decl.PrimaryCtor.Params {
			classScope.Define(p.Name, p.Type, p)
		}
		for _, arg := range decl.SuperArgs {
			a.walkExpr(arg, classScope)
		}
	}
	for _, f := range decl.Fields {
		a.walkDecl(f, classScope)
	}
	for _, c := range decl.Constructors {
		a.walkDecl(c, classScope)
	}
	for _, ib := range decl.InitBlocks {
		a.walkDecl(ib, classScope)
	}
	for _, m := range decl.Methods {
		a.walkDecl(m, classScope)
	}
	for _, e := range decl.EnumEntries {
		a.walkDecl(e, classScope)
	}
	for _, nc := range decl.NestedClasses {
		a.walkClass(nc, classScope)
	}
}

func (a *Analyzer) walkFunction(decl *ast.FunctionDecl, outer *SymbolTable) {
	fnScope := NewEnclosedSymbolTable(outer)
	for _, p := range decl.Params {
		fnScope.Define(p.Name, p.Type, p)
		if p.Default != nil {
			a.walkExpr(p.Default, outer)
		}
	}
	if decl.Body != nil {
		a.walkStmt(decl.Body, fnScope)
	}
	if decl.ExprBody != nil {
		a.walkExpr(decl.ExprBody, fnScope)
	}
}

func (a *Analyzer) walkStmt(s ast.Statement, scope *SymbolTable) {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		inner := NewEnclosedSymbolTable(scope)
		for _, st := range stmt.Statements {
			a.walkStmt(st, inner)
		}
	case *ast.ExpressionStmt:
		a.walkExpr(stmt.Expr, scope)
	case *ast.DeclStmt:
		a.walkDecl(stmt.Decl, scope)
	case *ast.IfStmt:
		ifScope := scope
		if stmt.LetBindingName != "" {
			ifScope = NewEnclosedSymbolTable(scope)
			a.walkExpr(stmt.Cond, scope)
			if stmt.LetMutable {
				ifScope.Define(stmt.LetBindingName, nil, stmt)
			} else {
				ifScope.DefineReadOnly(stmt.LetBindingName, nil, stmt)
			}
		} else {
			a.walkExpr(stmt.Cond, scope)
		}
		a.walkStmt(stmt.Then, ifScope)
		if stmt.Else != nil {
			a.walkStmt(stmt.Else, scope)
		}
	case *ast.WhenStmt:
		whenScope := scope
		if stmt.Subject != nil {
			a.walkExpr(stmt.Subject, scope)
		}
		for _, b := range stmt.Branches {
			a.walkWhenBranch(b, whenScope, false)
		}
	case *ast.ForStmt:
		a.walkExpr(stmt.Iterable, scope)
		forScope := NewEnclosedSymbolTable(scope)
		forScope.DefineReadOnly(stmt.VarName, nil, stmt)
		a.walkStmt(stmt.Body, forScope)
	case *ast.WhileStmt:
		a.walkExpr(stmt.Cond, scope)
		a.walkStmt(stmt.Body, scope)
	case *ast.DoWhileStmt:
		a.walkStmt(stmt.Body, scope)
		a.walkExpr(stmt.Cond, scope)
	case *ast.TryStmt:
		a.walkStmt(stmt.Body, scope)
		for _, c := range stmt.Catches {
			catchScope := NewEnclosedSymbolTable(scope)
			catchScope.DefineReadOnly(c.ParamName, c.ParamType, c.Body)
			a.walkStmt(c.Body, catchScope)
		}
		if stmt.Finally != nil {
			a.walkStmt(stmt.Finally, scope)
		}
	case *ast.ReturnStmt:
		if stmt.Value != nil {
			a.walkExpr(stmt.Value, scope)
		}
	case *ast.ThrowStmt:
		a.walkExpr(stmt.Value, scope)
	case *ast.GuardStmt:
		a.walkExpr(stmt.Initializer, scope)
		if stmt.Mutable {
			scope.Define(stmt.Name, nil, stmt)
		} else {
			scope.DefineReadOnly(stmt.Name, nil, stmt)
		}
		a.walkStmt(stmt.ElseBody, scope)
	case *ast.UseStmt:
		useScope := NewEnclosedSymbolTable(scope)
		for _, b := range stmt.Bindings {
			a.walkExpr(b.Initializer, useScope)
			useScope.DefineReadOnly(b.Name, nil, stmt)
		}
		a.walkStmt(stmt.Body, useScope)
	}
}

func (a *Analyzer) walkWhenBranch(b *ast.WhenBranch, scope *SymbolTable, isExpr bool) {
	for _, v := range b.Values {
		a.walkExpr(v, scope)
	}
	if b.RangeTest != nil {
		a.walkExpr(b.RangeTest, scope)
	}
	if isExpr {
		if b.BodyExpr != nil {
			a.walkExpr(b.BodyExpr, scope)
		}
		return
	}
	if b.Body != nil {
		a.walkStmt(b.Body, scope)
	}
}

func (a *Analyzer) walkExpr(e ast.Expression, scope *SymbolTable) {
	if e == nil {
		return
	}
	switch expr := e.(type) {
	case *ast.Identifier:
		// Nothing to recurse into; resolution, if needed, happens at use sites below.
		_ = expr
	case *ast.AssignExpr:
		a.checkReassignment(expr.Target, scope)
		a.walkExpr(expr.Target, scope)
		a.walkExpr(expr.Value, scope)
	case *ast.CompoundAssignExpr:
		a.checkReassignment(expr.Target, scope)
		a.walkExpr(expr.Target, scope)
		a.walkExpr(expr.Value, scope)
	case *ast.CallExpr:
		a.checkCallArity(expr, scope)
		a.walkExpr(expr.Callee, scope)
		for _, arg := range expr.Args {
			a.walkExpr(arg, scope)
		}
		for _, arg := range expr.NamedArgs {
			a.walkExpr(arg, scope)
		}
		if expr.TrailingLambda != nil {
			a.walkExpr(expr.TrailingLambda, scope)
		}
	case *ast.LambdaExpr:
		lamScope := NewEnclosedSymbolTable(scope)
		for _, p := range expr.Params {
			lamScope.Define(p.Name, p.Type, p)
		}
		if expr.Body != nil {
			a.walkStmt(expr.Body, lamScope)
		}
		if expr.Expr != nil {
			a.walkExpr(expr.Expr, lamScope)
		}
	case *ast.WhenExpr:
		if expr.Subject != nil {
			a.walkExpr(expr.Subject, scope)
		}
		for _, b := range expr.Branches {
			a.walkWhenBranch(b, scope, true)
		}
	case *ast.TryExpr:
		a.walkStmt(expr.Body, scope)
		for _, c := range expr.Catches {
			catchScope := NewEnclosedSymbolTable(scope)
			catchScope.DefineReadOnly(c.ParamName, c.ParamType, c.Body)
			a.walkStmt(c.Body, catchScope)
		}
		if expr.Finally != nil {
			a.walkStmt(expr.Finally, scope)
		}
	case *ast.ScopeShorthandExpr:
		a.walkExpr(expr.Target, scope)
		a.walkStmt(expr.Body, NewEnclosedSymbolTable(scope))
	case *ast.ObjectLiteralExpr:
		objScope := NewEnclosedSymbolTable(scope)
		for _, arg := range expr.SuperArgs {
			a.walkExpr(arg, scope)
		}
		for _, f := range expr.Fields {
			a.walkDecl(f, objScope)
		}
		for _, m := range expr.Methods {
			a.walkDecl(m, objScope)
		}
	default:
		for _, child := range ast.Children(e) {
			if childExpr, ok := child.(ast.Expression); ok {
				a.walkExpr(childExpr, scope)
			} else if childStmt, ok := child.(ast.Statement); ok {
				a.walkStmt(childStmt, scope)
			}
		}
	}
}

// checkReassignment flags `val x = ...; x = ...` per spec.md §4.4.
func (a *Analyzer) checkReassignment(target ast.Expression, scope *SymbolTable) {
	ident, ok := target.(*ast.Identifier)
	if !ok {
		return
	}
	sym, ok := scope.Resolve(ident.Name)
	if !ok || !sym.ReadOnly {
		return
	}
	kind := "val"
	if sym.IsConst {
		kind = "const val"
	}
	a.errorAt(target.Pos(), "cannot reassign %s %q", kind, ident.Name)
}

// checkCallArity flags an arity mismatch against a known function
// symbol or an `Array<T>(...)` constructor call.
func (a *Analyzer) checkCallArity(call *ast.CallExpr, scope *SymbolTable) {
	ident, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return
	}
	if ident.Name == "Array" {
		if len(call.Args) == 0 {
			a.errorAt(call.P, "Array(...) constructor requires at least a size argument")
		}
		return
	}
	sym, ok := scope.Resolve(ident.Name)
	if !ok || sym.Kind != SymFunc {
		return
	}
	fn, ok := sym.Decl.(*ast.FunctionDecl)
	if !ok {
		return
	}
	required := 0
	hasVararg := false
	for _, p := range fn.Params {
		if p.Vararg {
			hasVararg = true
			continue
		}
		if p.Default == nil {
			required++
		}
	}
	given := len(call.Args) + len(call.NamedArgs)
	if given < required {
		a.errorAt(call.P, "%q expects at least %d argument(s), got %d", ident.Name, required, given)
		return
	}
	if !hasVararg && given > len(fn.Params) {
		a.errorAt(call.P, "%q expects at most %d argument(s), got %d", ident.Name, len(fn.Params), given)
	}
}
