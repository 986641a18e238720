package hir

import (
	"fmt"

	"github.com/novalang/novac/internal/ast"
)

// lowerExpr rewrites one expression per §4.1. Elvis, safe-call,
// safe-index, pipeline, string-interpolation, compound-assign, if-let
// (handled in lowerIfStmt since it's statement-shaped), scope-
// shorthand, and try-as-expression never survive past this function.
func lowerExpr(ctx *Context, e ast.Expression) ast.Expression {
	if e == nil {
		return nil
	}
	switch expr := e.(type) {
	case *ast.Literal, *ast.Identifier, *ast.ThisExpr, *ast.SuperExpr, *ast.PlaceholderExpr:
		return expr
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: expr.Op, Left: lowerExpr(ctx, expr.Left), Right: lowerExpr(ctx, expr.Right), P: expr.P}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: expr.Op, Operand: lowerExpr(ctx, expr.Operand), P: expr.P}
	case *ast.CallExpr:
		return lowerCallExpr(ctx, expr)
	case *ast.IndexExpr:
		return &ast.IndexExpr{Target: lowerExpr(ctx, expr.Target), Index: lowerExpr(ctx, expr.Index), P: expr.P}
	case *ast.MemberExpr:
		return &ast.MemberExpr{Target: lowerExpr(ctx, expr.Target), Name: expr.Name, P: expr.P}
	case *ast.AssignExpr:
		return &ast.AssignExpr{Target: lowerExpr(ctx, expr.Target), Value: lowerExpr(ctx, expr.Value), P: expr.P}
	case *ast.CompoundAssignExpr:
		return lowerCompoundAssign(ctx, expr)
	case *ast.LambdaExpr:
		return lowerLambda(ctx, expr)
	case *ast.IfExpr:
		return &ast.IfExpr{Cond: lowerExpr(ctx, expr.Cond), Then: lowerExpr(ctx, expr.Then), Else: lowerExpr(ctx, expr.Else), P: expr.P}
	case *ast.WhenExpr:
		return lowerWhenExpr(ctx, expr)
	case *ast.TryExpr:
		return lowerTryExpr(ctx, expr)
	case *ast.AwaitExpr:
		return expr
	case *ast.TypeCheckExpr:
		return &ast.TypeCheckExpr{Value: lowerExpr(ctx, expr.Value), Type: expr.Type, Negate: expr.Negate, P: expr.P}
	case *ast.TypeCastExpr:
		return &ast.TypeCastExpr{Value: lowerExpr(ctx, expr.Value), Type: expr.Type, P: expr.P}
	case *ast.RangeExpr:
		return &ast.RangeExpr{Start: lowerExpr(ctx, expr.Start), End: lowerExpr(ctx, expr.End), Exclusive: expr.Exclusive, P: expr.P}
	case *ast.SliceExpr:
		return lowerSliceExpr(ctx, expr)
	case *ast.SpreadExpr:
		return &ast.SpreadExpr{Value: lowerExpr(ctx, expr.Value), P: expr.P}
	case *ast.PipelineExpr:
		return lowerPipeline(ctx, expr)
	case *ast.MethodRefExpr:
		return expr
	case *ast.ObjectLiteralExpr:
		return lowerObjectLiteral(ctx, expr)
	case *ast.CollectionLiteralExpr:
		return &CollectionLiteral{Kind: expr.Kind, Elements: lowerExprs(ctx, expr.Elements), Keys: lowerExprs(ctx, expr.Keys), Values: lowerExprs(ctx, expr.Values), SpreadAt: expr.SpreadAt, P: expr.P}
	case *ast.StringInterpolationExpr:
		return lowerStringInterpolation(ctx, expr)
	case *ast.ElvisExpr:
		return lowerElvis(ctx, expr)
	case *ast.SafeCallExpr:
		return lowerSafeCall(ctx, expr)
	case *ast.SafeIndexExpr:
		return lowerSafeIndex(ctx, expr)
	case *ast.NotNullExpr:
		return &ast.NotNullExpr{Value: lowerExpr(ctx, expr.Value), P: expr.P}
	case *ast.ErrorPropagationExpr:
		return &ast.ErrorPropagationExpr{Value: lowerExpr(ctx, expr.Value), P: expr.P}
	case *ast.ScopeShorthandExpr:
		return lowerScopeShorthand(ctx, expr)
	case *ast.JumpAsExpr:
		return &ast.JumpAsExpr{Kind: expr.Kind, Value: lowerExpr(ctx, expr.Value), P: expr.P}
	default:
		// Unknown node: dropped per §4.1's error policy.
		return nil
	}
}

func lowerExprs(ctx *Context, in []ast.Expression) []ast.Expression {
	if in == nil {
		return nil
	}
	out := make([]ast.Expression, len(in))
	for i, e := range in {
		out[i] = lowerExpr(ctx, e)
	}
	return out
}

// lowerCallExpr flattens named/spread args and a trailing lambda into
// a single positional argument vector on a HirCall.
func lowerCallExpr(ctx *Context, expr *ast.CallExpr) ast.Expression {
	call := &Call{Callee: lowerExpr(ctx, expr.Callee), P: expr.P, SpreadAt: make(map[int]bool)}
	for _, a := range expr.Args {
		if spread, ok := a.(*ast.SpreadExpr); ok {
			call.SpreadAt[len(call.Args)] = true
			call.Args = append(call.Args, lowerExpr(ctx, spread.Value))
			continue
		}
		call.Args = append(call.Args, lowerExpr(ctx, a))
	}
	// Named args are appended after positional args in declaration order
	// the analyzer resolved; §4.1 doesn't prescribe an order beyond
	// "flattened", so source iteration order is preserved as encountered.
	for _, v := range expr.NamedArgs {
		call.Args = append(call.Args, lowerExpr(ctx, v))
	}
	if expr.TrailingLambda != nil {
		call.Args = append(call.Args, lowerLambda(ctx, expr.TrailingLambda))
	}
	return call
}

func lowerLambda(ctx *Context, expr *ast.LambdaExpr) *Lambda {
	params := make([]*Param, 0, len(expr.Params))
	for _, p := range expr.Params {
		params = append(params, lowerParam(ctx, p))
	}
	var body *ast.BlockStmt
	if expr.Body != nil {
		body = lowerBlock(ctx, expr.Body)
	} else if expr.Expr != nil {
		v := lowerExpr(ctx, expr.Expr)
		body = &ast.BlockStmt{Statements: []ast.Statement{&ast.ReturnStmt{Value: v, P: v.Pos()}}}
	}
	return &Lambda{Params: params, Body: body, P: expr.P}
}

// lowerCompoundAssign implements `x op= e` -> `x = x op e`, and `x ??=
// e` -> `x = (x != null ? x : e)`.
func lowerCompoundAssign(ctx *Context, expr *ast.CompoundAssignExpr) ast.Expression {
	target := lowerExpr(ctx, expr.Target)
	value := lowerExpr(ctx, expr.Value)
	if expr.Elvis {
		elvis := &ast.IfExpr{Cond: ctx.NotNull(target, expr.P), Then: target, Else: value, P: expr.P}
		return &ast.AssignExpr{Target: target, Value: elvis, P: expr.P}
	}
	if !isValidBinaryOp(expr.Op) {
		// Unhandled compound-assign operator: programmer bug, per §4.1's
		// error policy this is a fatal internal error, not a diagnostic.
		panic(fmt.Sprintf("hir: unhandled compound-assign operator %d at %s", expr.Op, expr.P.String()))
	}
	binop := &ast.BinaryExpr{Op: expr.Op, Left: target, Right: value, P: expr.P}
	return &ast.AssignExpr{Target: target, Value: binop, P: expr.P}
}

func isValidBinaryOp(op ast.BinaryOp) bool {
	return op >= ast.OpAdd && op <= ast.OpUshr
}

func lowerWhenExpr(ctx *Context, expr *ast.WhenExpr) ast.Expression {
	var subjectDecl ast.Statement
	var subjectRef ast.Expression
	if expr.Subject != nil {
		sub := lowerExpr(ctx, expr.Subject)
		d, ref := ctx.TempDecl(sub, expr.P)
		subjectDecl = d
		subjectRef = ref
	}
	resultDecl, resultRef := ctx.MutableTempDecl(ctx.NullLiteral(expr.P), expr.P)
	ifChain := foldWhenExprBranches(ctx, expr.Branches, subjectRef, resultRef, 0)

	var stmts []ast.Statement
	if subjectDecl != nil {
		stmts = append(stmts, subjectDecl)
	}
	stmts = append(stmts, resultDecl)
	if ifChain != nil {
		stmts = append(stmts, ifChain)
	}
	return &BlockExpr{Statements: stmts, Result: resultRef, P: expr.P}
}

func foldWhenExprBranches(ctx *Context, branches []*ast.WhenBranch, subject, resultRef ast.Expression, idx int) ast.Statement {
	if idx >= len(branches) {
		return nil
	}
	b := branches[idx]
	rest := foldWhenExprBranches(ctx, branches, subject, resultRef, idx+1)

	var body ast.Statement
	if b.BodyExpr != nil {
		v := lowerExpr(ctx, b.BodyExpr)
		body = &ast.ExpressionStmt{Expr: &ast.AssignExpr{Target: resultRef, Value: v, P: v.Pos()}, P: v.Pos()}
	} else if b.Body != nil {
		body = lowerStmt(ctx, b.Body)
	}

	if b.Else {
		return body
	}
	cond := whenBranchCond(ctx, b, subject)
	return &ast.IfStmt{Cond: cond, Then: body, Else: rest, P: cond.Pos()}
}

// lowerTryExpr implements try-as-expression: `var t = null; try/catch
// assign last expr of each branch to t; t`.
func lowerTryExpr(ctx *Context, expr *ast.TryExpr) ast.Expression {
	resultDecl, resultRef := ctx.MutableTempDecl(ctx.NullLiteral(expr.P), expr.P)

	body := assignLastExprTo(lowerBlock(ctx, expr.Body), resultRef)
	t := &Try{Body: body, P: expr.P}
	for _, c := range expr.Catches {
		catchBody := assignLastExprTo(lowerBlock(ctx, c.Body), resultRef)
		t.Catches = append(t.Catches, &CatchClause{ParamName: c.ParamName, ParamType: c.ParamType, Body: catchBody})
	}
	if expr.Finally != nil {
		t.Finally = lowerBlock(ctx, expr.Finally)
	}
	return &BlockExpr{Statements: []ast.Statement{resultDecl, t}, Result: resultRef, P: expr.P}
}

// assignLastExprTo rewrites a block's final expression-statement into
// an assignment to dest, leaving every earlier statement untouched.
func assignLastExprTo(b *ast.BlockStmt, dest ast.Expression) *ast.BlockStmt {
	if b == nil || len(b.Statements) == 0 {
		return b
	}
	last := len(b.Statements) - 1
	if es, ok := b.Statements[last].(*ast.ExpressionStmt); ok {
		b.Statements[last] = &ast.ExpressionStmt{Expr: &ast.AssignExpr{Target: dest, Value: es.Expr, P: es.P}, P: es.P}
	}
	return b
}

// lowerSliceExpr implements `x[a..b]` -> `x[Range(a, b, exclusive)]`;
// a missing end becomes `x.size()` (exclusive), per §4.1.
func lowerSliceExpr(ctx *Context, expr *ast.SliceExpr) ast.Expression {
	target := lowerExpr(ctx, expr.Target)
	start := lowerExpr(ctx, expr.Start)
	end := expr.End
	exclusive := expr.Exclusive
	var endExpr ast.Expression
	if end != nil {
		endExpr = lowerExpr(ctx, end)
	} else {
		endExpr = &Call{Callee: &ast.MemberExpr{Target: target, Name: "size", P: expr.P}, P: expr.P}
		exclusive = true
	}
	rangeExpr := &ast.RangeExpr{Start: start, End: endExpr, Exclusive: exclusive, P: expr.P}
	return &ast.IndexExpr{Target: target, Index: rangeExpr, P: expr.P}
}

// lowerPipeline implements `a |> f(b,…)` per §4.1's three forms.
func lowerPipeline(ctx *Context, expr *ast.PipelineExpr) ast.Expression {
	left := lowerExpr(ctx, expr.Left)

	switch right := expr.Right.(type) {
	case *ast.CallExpr:
		if hasPlaceholder(right) {
			return substitutePlaceholder(ctx, right, left)
		}
		if len(right.Args) == 0 && right.TrailingLambda != nil {
			if ident, ok := right.Callee.(*ast.Identifier); ok {
				return &Call{
					Callee: &ast.MemberExpr{Target: left, Name: ident.Name, P: expr.P},
					Args:   []ast.Expression{lowerLambda(ctx, right.TrailingLambda)},
					P:      expr.P,
				}
			}
		}
		call := lowerCallExpr(ctx, right).(*Call)
		call.Args = append([]ast.Expression{left}, call.Args...)
		newSpread := make(map[int]bool, len(call.SpreadAt))
		for k, v := range call.SpreadAt {
			newSpread[k+1] = v
		}
		call.SpreadAt = newSpread
		return call
	default:
		rightLowered := lowerExpr(ctx, right)
		return &Call{Callee: rightLowered, Args: []ast.Expression{left}, P: expr.P}
	}
}

func hasPlaceholder(call *ast.CallExpr) bool {
	for _, a := range call.Args {
		if _, ok := a.(*ast.PlaceholderExpr); ok {
			return true
		}
	}
	return false
}

// substitutePlaceholder emits a partial-application lambda then calls
// it with left, per §4.1's placeholder pipeline rule.
func substitutePlaceholder(ctx *Context, call *ast.CallExpr, left ast.Expression) ast.Expression {
	name := ctx.FreshName()
	args := make([]ast.Expression, len(call.Args))
	for i, a := range call.Args {
		if _, ok := a.(*ast.PlaceholderExpr); ok {
			args[i] = &ast.Identifier{Name: name, P: call.P}
		} else {
			args[i] = lowerExpr(ctx, a)
		}
	}
	applied := &Call{Callee: lowerExpr(ctx, call.Callee), Args: args, P: call.P}
	partial := &Lambda{
		Params: []*Param{{Name: name}},
		Body:   &ast.BlockStmt{Statements: []ast.Statement{&ast.ReturnStmt{Value: applied, P: call.P}}},
		P:      call.P,
	}
	return &Call{Callee: partial, Args: []ast.Expression{left}, P: call.P}
}

// lowerStringInterpolation implements `"…$x… ${e}…"` as a left-folded
// `+` chain typed String.
func lowerStringInterpolation(ctx *Context, expr *ast.StringInterpolationExpr) ast.Expression {
	var chain ast.Expression
	for _, part := range expr.Parts {
		var piece ast.Expression
		if part.Expr != nil {
			piece = lowerExpr(ctx, part.Expr)
		} else {
			piece = &ast.Literal{Kind: ast.LitString, Str: part.Text, P: expr.P}
		}
		if chain == nil {
			chain = piece
		} else {
			chain = &ast.BinaryExpr{Op: ast.OpAdd, Left: chain, Right: piece, P: expr.P}
		}
	}
	if chain == nil {
		return &ast.Literal{Kind: ast.LitString, Str: "", P: expr.P}
	}
	return chain
}

// lowerElvis implements `a ?: b` -> `{ val t = a; if (t != null) t
// else b }`.
func lowerElvis(ctx *Context, expr *ast.ElvisExpr) ast.Expression {
	left := lowerExpr(ctx, expr.Left)
	right := lowerExpr(ctx, expr.Right)
	tmpDecl, tmpRef := ctx.TempDecl(left, expr.P)
	result := &ast.IfExpr{Cond: ctx.NotNull(tmpRef, expr.P), Then: tmpRef, Else: right, P: expr.P}
	return &BlockExpr{Statements: []ast.Statement{tmpDecl}, Result: result, P: expr.P}
}

// lowerSafeCall implements `a?.m(args)` -> `{ val t = a; if (t !=
// null) t.m(args) else null }`, and the property-read form `a?.m`
// (Call nil) the same way without the call wrapper.
func lowerSafeCall(ctx *Context, expr *ast.SafeCallExpr) ast.Expression {
	target := lowerExpr(ctx, expr.Target)
	tmpDecl, tmpRef := ctx.TempDecl(target, expr.P)

	var thenExpr ast.Expression
	if expr.Call != nil {
		args := lowerExprs(ctx, expr.Args)
		thenExpr = &Call{Callee: &ast.MemberExpr{Target: tmpRef, Name: expr.Member, P: expr.P}, Args: args, P: expr.P}
	} else {
		thenExpr = &ast.MemberExpr{Target: tmpRef, Name: expr.Member, P: expr.P}
	}
	result := &ast.IfExpr{Cond: ctx.NotNull(tmpRef, expr.P), Then: thenExpr, Else: ctx.NullLiteral(expr.P), P: expr.P}
	return &BlockExpr{Statements: []ast.Statement{tmpDecl}, Result: result, P: expr.P}
}

// lowerSafeIndex implements `a?[i]` -> `{ val t = a; if (t != null) t[i]
// else null }`.
func lowerSafeIndex(ctx *Context, expr *ast.SafeIndexExpr) ast.Expression {
	target := lowerExpr(ctx, expr.Target)
	index := lowerExpr(ctx, expr.Index)
	tmpDecl, tmpRef := ctx.TempDecl(target, expr.P)
	thenExpr := &ast.IndexExpr{Target: tmpRef, Index: index, P: expr.P}
	result := &ast.IfExpr{Cond: ctx.NotNull(tmpRef, expr.P), Then: thenExpr, Else: ctx.NullLiteral(expr.P), P: expr.P}
	return &BlockExpr{Statements: []ast.Statement{tmpDecl}, Result: result, P: expr.P}
}

// lowerScopeShorthand implements `obj?.{ body }` -> `{ val t = obj; if
// (t != null) t.apply { body } else null }`.
func lowerScopeShorthand(ctx *Context, expr *ast.ScopeShorthandExpr) ast.Expression {
	target := lowerExpr(ctx, expr.Target)
	tmpDecl, tmpRef := ctx.TempDecl(target, expr.P)
	applyLambda := &Lambda{Body: lowerBlock(ctx, expr.Body), P: expr.P}
	applyCall := &Call{Callee: &ast.MemberExpr{Target: tmpRef, Name: "apply", P: expr.P}, Args: []ast.Expression{applyLambda}, P: expr.P}
	result := &ast.IfExpr{Cond: ctx.NotNull(tmpRef, expr.P), Then: applyCall, Else: ctx.NullLiteral(expr.P), P: expr.P}
	return &BlockExpr{Statements: []ast.Statement{tmpDecl}, Result: result, P: expr.P}
}

func lowerObjectLiteral(ctx *Context, expr *ast.ObjectLiteralExpr) ast.Expression {
	name := "$Anon" + ctx.FreshName()
	class := &Class{Kind: ast.KindClass, Name: name, SuperClass: expr.SuperClass, Interfaces: expr.Interfaces}
	for _, arg := range expr.SuperArgs {
		class.SuperArgs = append(class.SuperArgs, lowerExpr(ctx, arg))
	}
	for _, f := range expr.Fields {
		field := lowerField(ctx, f)
		class.Fields = append(class.Fields, field)
		if field.Initializer != nil {
			class.InstanceInitializers = append(class.InstanceInitializers, InstanceInitializer{Field: field})
		}
	}
	for _, m := range expr.Methods {
		class.Methods = append(class.Methods, lowerFunction(ctx, m))
	}
	ctx.Synthetic = append(ctx.Synthetic, class)
	return &ObjectLiteral{Synthetic: class, SuperArgs: class.SuperArgs, P: expr.P}
}
