package hir

import "github.com/novalang/novac/internal/ast"

func lowerBlock(ctx *Context, b *ast.BlockStmt) *ast.BlockStmt {
	if b == nil {
		return nil
	}
	stmts := make([]ast.Statement, 0, len(b.Statements))
	for _, s := range b.Statements {
		stmts = append(stmts, lowerStmt(ctx, s))
	}
	return &ast.BlockStmt{Statements: stmts, P: b.P}
}

// lowerStmt rewrites one statement per §4.1. Destructuring, if-let,
// when, guard, and use never survive past this function.
func lowerStmt(ctx *Context, s ast.Statement) ast.Statement {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		return lowerBlock(ctx, stmt)
	case *ast.ExpressionStmt:
		return &ast.ExpressionStmt{Expr: lowerExpr(ctx, stmt.Expr), P: stmt.P}
	case *ast.DeclStmt:
		return lowerDeclStmt(ctx, stmt)
	case *ast.IfStmt:
		return lowerIfStmt(ctx, stmt)
	case *ast.WhenStmt:
		return lowerWhenStmt(ctx, stmt)
	case *ast.ForStmt:
		return &ast.ForStmt{VarName: stmt.VarName, Iterable: lowerExpr(ctx, stmt.Iterable), Body: lowerStmt(ctx, stmt.Body), P: stmt.P}
	case *ast.WhileStmt:
		return &Loop{Cond: lowerExpr(ctx, stmt.Cond), Body: lowerStmt(ctx, stmt.Body), PostTest: false, P: stmt.P}
	case *ast.DoWhileStmt:
		return &Loop{Cond: lowerExpr(ctx, stmt.Cond), Body: lowerStmt(ctx, stmt.Body), PostTest: true, P: stmt.P}
	case *ast.TryStmt:
		return lowerTryStmt(ctx, stmt)
	case *ast.ReturnStmt:
		var v ast.Expression
		if stmt.Value != nil {
			v = lowerExpr(ctx, stmt.Value)
		}
		return &ast.ReturnStmt{Value: v, P: stmt.P}
	case *ast.BreakStmt, *ast.ContinueStmt:
		return stmt
	case *ast.ThrowStmt:
		return &ast.ThrowStmt{Value: lowerExpr(ctx, stmt.Value), P: stmt.P}
	case *ast.GuardStmt:
		return lowerGuardStmt(ctx, stmt)
	case *ast.UseStmt:
		return lowerUseStmt(ctx, stmt)
	default:
		return s
	}
}

func lowerDeclStmt(ctx *Context, stmt *ast.DeclStmt) ast.Statement {
	switch decl := stmt.Decl.(type) {
	case *ast.DestructuringDecl:
		return lowerDestructuring(ctx, decl)
	case *ast.PropertyDecl:
		field := lowerField(ctx, decl)
		return &DeclStmt{Field: field, P: stmt.P}
	default:
		return stmt
	}
}

// lowerDestructuring implements `val (a,b) = e` -> `val t = e; val a =
// t.component1(); val b = t.component2()` (skipping `_` names).
func lowerDestructuring(ctx *Context, decl *ast.DestructuringDecl) ast.Statement {
	init := lowerExpr(ctx, decl.Initializer)
	tmpDecl, tmpRef := ctx.TempDecl(init, decl.P)

	block := &ast.BlockStmt{P: decl.P}
	block.Statements = append(block.Statements, tmpDecl)
	for i, name := range decl.Names {
		if name == "_" {
			continue
		}
		call := &Call{
			Callee: &ast.MemberExpr{Target: tmpRef, Name: componentName(i), P: decl.P},
			P:      decl.P,
		}
		field := &Field{Name: name, Mutable: decl.Mutable, Initializer: call}
		block.Statements = append(block.Statements, &DeclStmt{Field: field, P: decl.P})
	}
	return block
}

func componentName(i int) string {
	names := [...]string{"component1", "component2", "component3", "component4", "component5", "component6", "component7", "component8"}
	if i < len(names) {
		return names[i]
	}
	return "component9"
}

// lowerIfStmt implements the if-let sugar: `if (val x = e) B else E` ->
// `val t = e; if (t != null) { val x = t; B } else E`.
func lowerIfStmt(ctx *Context, stmt *ast.IfStmt) ast.Statement {
	if stmt.LetBindingName == "" {
		var elseStmt ast.Statement
		if stmt.Else != nil {
			elseStmt = lowerStmt(ctx, stmt.Else)
		}
		return &ast.IfStmt{Cond: lowerExpr(ctx, stmt.Cond), Then: lowerStmt(ctx, stmt.Then), Else: elseStmt, P: stmt.P}
	}

	init := lowerExpr(ctx, stmt.Cond)
	tmpDecl, tmpRef := ctx.TempDecl(init, stmt.P)
	thenLowered := lowerStmt(ctx, stmt.Then)
	bindDecl := &DeclStmt{Field: &Field{Name: stmt.LetBindingName, Mutable: stmt.LetMutable, Initializer: tmpRef}, P: stmt.P}
	thenBlock := &ast.BlockStmt{Statements: []ast.Statement{bindDecl, thenLowered}, P: stmt.P}

	var elseStmt ast.Statement
	if stmt.Else != nil {
		elseStmt = lowerStmt(ctx, stmt.Else)
	}
	ifStmt := &ast.IfStmt{Cond: ctx.NotNull(tmpRef, stmt.P), Then: thenBlock, Else: elseStmt, P: stmt.P}
	return &ast.BlockStmt{Statements: []ast.Statement{tmpDecl, ifStmt}, P: stmt.P}
}

// lowerWhenStmt turns `when` into a nested if-else chain: subject
// bound once, type tests via TypeCheckExpr, range membership via
// `in`/`!in`.
func lowerWhenStmt(ctx *Context, stmt *ast.WhenStmt) ast.Statement {
	var subjectDecl ast.Statement
	var subjectRef ast.Expression
	if stmt.Subject != nil {
		sub := lowerExpr(ctx, stmt.Subject)
		if stmt.SubjectName != "" {
			d, ref := ctx.TempDecl(sub, stmt.P)
			d.Field.Name = stmt.SubjectName
			subjectDecl = d
			subjectRef = ref
		} else {
			d, ref := ctx.TempDecl(sub, stmt.P)
			subjectDecl = d
			subjectRef = ref
		}
	}

	chain := foldWhenBranches(ctx, stmt.Branches, subjectRef, 0)
	if subjectDecl == nil {
		if chain == nil {
			return &ast.BlockStmt{P: stmt.P}
		}
		return chain
	}
	stmts := []ast.Statement{subjectDecl}
	if chain != nil {
		stmts = append(stmts, chain)
	}
	return &ast.BlockStmt{Statements: stmts, P: stmt.P}
}

func foldWhenBranches(ctx *Context, branches []*ast.WhenBranch, subject ast.Expression, idx int) ast.Statement {
	if idx >= len(branches) {
		return nil
	}
	b := branches[idx]
	rest := foldWhenBranches(ctx, branches, subject, idx+1)

	var body ast.Statement
	if b.Body != nil {
		body = lowerStmt(ctx, b.Body)
	} else if b.BodyExpr != nil {
		e := lowerExpr(ctx, b.BodyExpr)
		body = &ast.ExpressionStmt{Expr: e, P: e.Pos()}
	}

	if b.Else {
		return body
	}

	cond := whenBranchCond(ctx, b, subject)
	return &ast.IfStmt{Cond: cond, Then: body, Else: rest, P: cond.Pos()}
}

func whenBranchCond(ctx *Context, b *ast.WhenBranch, subject ast.Expression) ast.Expression {
	if b.TypeTest != nil {
		return &ast.TypeCheckExpr{Value: subject, Type: b.TypeTest, P: subject.Pos()}
	}
	if b.RangeTest != nil {
		op := ast.OpIn
		if b.NotIn {
			op = ast.OpNotIn
		}
		return &ast.BinaryExpr{Op: op, Left: subject, Right: lowerExpr(ctx, b.RangeTest), P: subject.Pos()}
	}
	var cond ast.Expression
	for _, v := range b.Values {
		lv := lowerExpr(ctx, v)
		var eq ast.Expression
		if subject != nil {
			eq = &ast.BinaryExpr{Op: ast.OpEq, Left: subject, Right: lv, P: lv.Pos()}
		} else {
			eq = lv
		}
		if cond == nil {
			cond = eq
		} else {
			cond = &ast.BinaryExpr{Op: ast.OpOr, Left: cond, Right: eq, P: lv.Pos()}
		}
	}
	return cond
}

// lowerGuardStmt implements `guard val x = e else G` -> `val t = e; if
// (t == null) G; val x = t`.
func lowerGuardStmt(ctx *Context, stmt *ast.GuardStmt) ast.Statement {
	init := lowerExpr(ctx, stmt.Initializer)
	tmpDecl, tmpRef := ctx.TempDecl(init, stmt.P)
	elseLowered := lowerStmt(ctx, stmt.ElseBody)
	guardIf := &ast.IfStmt{Cond: ctx.IsNull(tmpRef, stmt.P), Then: elseLowered, P: stmt.P}
	bindDecl := &DeclStmt{Field: &Field{Name: stmt.Name, Mutable: stmt.Mutable, Initializer: tmpRef}, P: stmt.P}
	return &ast.BlockStmt{Statements: []ast.Statement{tmpDecl, guardIf, bindDecl}, P: stmt.P}
}

// lowerUseStmt implements `use(val r = e) B` -> per binding, `val r =
// e; try B finally { try { r.close() } catch (_) {} }`, nested
// innermost-first so earlier bindings stay in scope for later ones'
// close calls.
func lowerUseStmt(ctx *Context, stmt *ast.UseStmt) ast.Statement {
	body := lowerBlock(ctx, stmt.Body)
	var result ast.Statement = body
	for i := len(stmt.Bindings) - 1; i >= 0; i-- {
		b := stmt.Bindings[i]
		init := lowerExpr(ctx, b.Initializer)
		bindDecl := &DeclStmt{Field: &Field{Name: b.Name, Mutable: false, Initializer: init}, P: stmt.P}
		closeCall := &ast.ExpressionStmt{Expr: &Call{Callee: &ast.MemberExpr{Target: &ast.Identifier{Name: b.Name, P: stmt.P}, Name: "close", P: stmt.P}, P: stmt.P}, P: stmt.P}
		finallyBlock := &ast.BlockStmt{Statements: []ast.Statement{
			&Try{Body: &ast.BlockStmt{Statements: []ast.Statement{closeCall}}, Catches: []*CatchClause{{ParamName: "_", Body: &ast.BlockStmt{}}}, P: stmt.P},
		}}
		tryResult := &Try{
			Body:    blockOf(result),
			Finally: finallyBlock,
			P:       stmt.P,
		}
		result = &ast.BlockStmt{Statements: []ast.Statement{bindDecl, tryResult}, P: stmt.P}
	}
	return result
}

func blockOf(s ast.Statement) *ast.BlockStmt {
	if b, ok := s.(*ast.BlockStmt); ok {
		return b
	}
	return &ast.BlockStmt{Statements: []ast.Statement{s}}
}

// lowerTryStmt lowers catch/finally bodies; the try/catch/finally
// shape itself has a direct HIR equivalent (Try).
func lowerTryStmt(ctx *Context, stmt *ast.TryStmt) ast.Statement {
	t := &Try{Body: lowerBlock(ctx, stmt.Body), P: stmt.P}
	for _, c := range stmt.Catches {
		t.Catches = append(t.Catches, &CatchClause{ParamName: c.ParamName, ParamType: c.ParamType, Body: lowerBlock(ctx, c.Body)})
	}
	if stmt.Finally != nil {
		t.Finally = lowerBlock(ctx, stmt.Finally)
	}
	return t
}
