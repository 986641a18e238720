package parser

import (
	"testing"

	"github.com/novalang/novac/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, perrs, lerrs := Parse("t.nova", src)
	if len(perrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	if len(lerrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lerrs)
	}
	return prog
}

func TestParsePackageAndImports(t *testing.T) {
	prog := parseOK(t, `
package com.example.app

import java.util.List
import com.example.other.Thing as Other
`)
	if prog.Package == nil || prog.Package.Name != "com.example.app" {
		t.Fatalf("package: got %+v", prog.Package)
	}
	if len(prog.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(prog.Imports))
	}
	if !prog.Imports[0].Java || prog.Imports[0].Qualified != "java.util.List" {
		t.Errorf("import 0: got %+v", prog.Imports[0])
	}
	if prog.Imports[1].Alias != "Other" {
		t.Errorf("import 1: got %+v", prog.Imports[1])
	}
}

func TestParseSimpleFunction(t *testing.T) {
	prog := parseOK(t, `
fun add(a: Int, b: Int): Int {
	return a + b
}
`)
	if len(prog.Declarations) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(prog.Declarations))
	}
	fn, ok := prog.Declarations[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected *ast.FunctionDecl, got %T", prog.Declarations[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("got name=%q params=%d", fn.Name, len(fn.Params))
	}
	if fn.Body == nil || len(fn.Body.Statements) != 1 {
		t.Fatalf("expected 1-statement body, got %+v", fn.Body)
	}
	ret, ok := fn.Body.Statements[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("expected *ast.ReturnStmt, got %T", fn.Body.Statements[0])
	}
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected a+b binary, got %+v", ret.Value)
	}
}

func TestParseExpressionBodiedFunction(t *testing.T) {
	prog := parseOK(t, `fun square(x: Int): Int = x * x`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	if fn.ExprBody == nil {
		t.Fatalf("expected ExprBody to be set")
	}
	if fn.Body != nil {
		t.Fatalf("expected nil Body for expression-bodied function")
	}
}

func TestParseClassWithPrimaryConstructorAndFields(t *testing.T) {
	prog := parseOK(t, `
class Point(val x: Int, val y: Int) {
	fun length(): Int {
		return x + y
	}
}
`)
	c := prog.Declarations[0].(*ast.ClassDecl)
	if c.Name != "Point" {
		t.Fatalf("got name %q", c.Name)
	}
	if c.PrimaryCtor == nil || len(c.PrimaryCtor.Params) != 2 {
		t.Fatalf("expected primary ctor with 2 params, got %+v", c.PrimaryCtor)
	}
	if len(c.Methods) != 1 || c.Methods[0].Name != "length" {
		t.Fatalf("expected 1 method 'length', got %+v", c.Methods)
	}
}

func TestParseDestructuringDecl(t *testing.T) {
	prog := parseOK(t, `
fun run() {
	val (a, _, c) = triple()
}
`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	ds, ok := fn.Body.Statements[0].(*ast.DeclStmt)
	if !ok {
		t.Fatalf("expected *ast.DeclStmt, got %T", fn.Body.Statements[0])
	}
	d, ok := ds.Decl.(*ast.DestructuringDecl)
	if !ok {
		t.Fatalf("expected *ast.DestructuringDecl, got %T", ds.Decl)
	}
	want := []string{"a", "_", "c"}
	if len(d.Names) != len(want) {
		t.Fatalf("got names %v", d.Names)
	}
	for i := range want {
		if d.Names[i] != want[i] {
			t.Errorf("name %d: got %q, want %q", i, d.Names[i], want[i])
		}
	}
}

func TestParseIfLet(t *testing.T) {
	prog := parseOK(t, `
fun run() {
	if (val x = maybe()) {
		use(x)
	}
}
`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	ifs, ok := fn.Body.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected *ast.IfStmt, got %T", fn.Body.Statements[0])
	}
	if ifs.LetBindingName != "x" {
		t.Fatalf("expected LetBindingName=x, got %q", ifs.LetBindingName)
	}
}

func TestParseWhenStmtBranchKinds(t *testing.T) {
	prog := parseOK(t, `
fun run(a: Int) {
	when (a) {
		1 -> use(a)
		is Box -> use(a)
		in 1..5 -> use(a)
		else -> use(a)
	}
}
`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	w, ok := fn.Body.Statements[0].(*ast.WhenStmt)
	if !ok {
		t.Fatalf("expected *ast.WhenStmt, got %T", fn.Body.Statements[0])
	}
	if len(w.Branches) != 4 {
		t.Fatalf("expected 4 branches, got %d", len(w.Branches))
	}
	if len(w.Branches[0].Values) != 1 {
		t.Errorf("branch 0: expected a value test, got %+v", w.Branches[0])
	}
	if w.Branches[1].TypeTest == nil {
		t.Errorf("branch 1: expected a type test")
	}
	if w.Branches[2].RangeTest == nil {
		t.Errorf("branch 2: expected a range test")
	}
	if !w.Branches[3].Else {
		t.Errorf("branch 3: expected else")
	}
}

func TestParseGuardStmt(t *testing.T) {
	prog := parseOK(t, `
fun run() {
	guard val y = maybe() else {
		return
	}
	use(y)
}
`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	g, ok := fn.Body.Statements[0].(*ast.GuardStmt)
	if !ok {
		t.Fatalf("expected *ast.GuardStmt, got %T", fn.Body.Statements[0])
	}
	if g.Name != "y" {
		t.Fatalf("expected binding name y, got %q", g.Name)
	}
	if g.ElseBody == nil {
		t.Fatalf("expected non-nil ElseBody")
	}
}

func TestParseElvisSafeCallSafeIndexPipeline(t *testing.T) {
	prog := parseOK(t, `
fun run(box: Box, items: List) {
	val z = a ?: b
	val w = box?.value
	val v = items?[0]
	val p = items |> first()
}
`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	stmts := fn.Body.Statements

	zDecl := stmts[0].(*ast.DeclStmt).Decl.(*ast.PropertyDecl)
	if _, ok := zDecl.Initializer.(*ast.ElvisExpr); !ok {
		t.Errorf("z: expected ElvisExpr, got %T", zDecl.Initializer)
	}

	wDecl := stmts[1].(*ast.DeclStmt).Decl.(*ast.PropertyDecl)
	if _, ok := wDecl.Initializer.(*ast.SafeCallExpr); !ok {
		t.Errorf("w: expected SafeCallExpr, got %T", wDecl.Initializer)
	}

	vDecl := stmts[2].(*ast.DeclStmt).Decl.(*ast.PropertyDecl)
	if _, ok := vDecl.Initializer.(*ast.SafeIndexExpr); !ok {
		t.Errorf("v: expected SafeIndexExpr, got %T", vDecl.Initializer)
	}

	pDecl := stmts[3].(*ast.DeclStmt).Decl.(*ast.PropertyDecl)
	if _, ok := pDecl.Initializer.(*ast.PipelineExpr); !ok {
		t.Errorf("p: expected PipelineExpr, got %T", pDecl.Initializer)
	}
}

func TestParseCompoundAssignAndElvisAssign(t *testing.T) {
	prog := parseOK(t, `
fun run() {
	var n = 1
	n += 1
	n ??= fallback()
}
`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	stmts := fn.Body.Statements

	plusAssign := stmts[1].(*ast.ExpressionStmt).Expr.(*ast.CompoundAssignExpr)
	if plusAssign.Op != ast.OpAdd || plusAssign.Elvis {
		t.Errorf("n += 1: got op=%v elvis=%v", plusAssign.Op, plusAssign.Elvis)
	}

	elvisAssign := stmts[2].(*ast.ExpressionStmt).Expr.(*ast.CompoundAssignExpr)
	if !elvisAssign.Elvis {
		t.Errorf("n ??= fallback(): expected Elvis=true")
	}
}

func TestParseStringInterpolation(t *testing.T) {
	prog := parseOK(t, `
fun run(a: Int) {
	val s = "hello ${a} world"
}
`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	decl := fn.Body.Statements[0].(*ast.DeclStmt).Decl.(*ast.PropertyDecl)
	interp, ok := decl.Initializer.(*ast.StringInterpolationExpr)
	if !ok {
		t.Fatalf("expected *ast.StringInterpolationExpr, got %T", decl.Initializer)
	}
	if len(interp.Parts) == 0 {
		t.Fatalf("expected at least one interpolation part")
	}
}

func TestParsePrecedenceOfArithmetic(t *testing.T) {
	// a + b * c must parse as a + (b * c).
	prog := parseOK(t, `fun f() = a + b * c`)
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	top := fn.ExprBody.(*ast.BinaryExpr)
	if top.Op != ast.OpAdd {
		t.Fatalf("expected top-level +, got %v", top.Op)
	}
	right := top.Right.(*ast.BinaryExpr)
	if right.Op != ast.OpMul {
		t.Fatalf("expected right-hand * , got %v", right.Op)
	}
}

func TestParseErrorRecoverySkipsToNextStatement(t *testing.T) {
	prog, perrs, _ := Parse("t.nova", `
fun run() {
	val x = )
	val y = 2
}
`)
	if len(perrs) == 0 {
		t.Fatalf("expected at least one parse error for stray ')'")
	}
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	// Recovery should still leave the well-formed trailing `val y = 2`
	// reachable as a statement, rather than aborting the whole block.
	var sawY bool
	for _, s := range fn.Body.Statements {
		if d, ok := s.(*ast.DeclStmt); ok {
			if p, ok := d.Decl.(*ast.PropertyDecl); ok && p.Name == "y" {
				sawY = true
			}
		}
	}
	if !sawY {
		t.Fatalf("expected parser to recover and still parse 'val y = 2', statements=%+v", fn.Body.Statements)
	}
}
