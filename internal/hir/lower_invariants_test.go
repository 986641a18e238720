package hir

import (
	"fmt"
	"testing"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/parser"
)

// src exercises every desugaring rule spec.md §4.1 lists: destructuring,
// if-let, when-as-statement, guard, use, elvis, safe-call, safe-index,
// pipeline, string interpolation, and compound assignment (including
// the elvis-assign form).
const src = `
fun run(box: Box, items: List) {
	val (a, b) = pair()
	if (val x = maybe()) {
		use(x)
	} else {
		use(a)
	}
	when (a) {
		1 -> use(a)
		is Box -> use(b)
		in 1..5 -> use(a)
		else -> use(b)
	}
	guard val y = maybe() else {
		return
	}
	use(val r = opener()) {
		use(r)
	}
	val z = a ?: b
	val w = box?.value
	val v = items?[0]
	val p = items |> first()
	val s = "hello ${a} world"
	var n = 1
	n += 1
	n ??= a
}
`

func lowerSource(t *testing.T) *Module {
	t.Helper()
	prog, perrs, lerrs := parser.Parse("test.nova", src)
	if len(perrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	if len(lerrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lerrs)
	}
	return Lower(prog)
}

// forbiddenKinds is the exhaustive list of sugar node kinds spec.md
// §4.1/§8 invariant 1 says must never survive HIR lowering.
func forbiddenKinds(n ast.Node) (string, bool) {
	switch node := n.(type) {
	case *ast.WhenStmt:
		return "WhenStmt", true
	case *ast.WhenExpr:
		return "WhenExpr", true
	case *ast.GuardStmt:
		return "GuardStmt", true
	case *ast.UseStmt:
		return "UseStmt", true
	case *ast.DestructuringDecl:
		return "DestructuringDecl", true
	case *ast.SafeCallExpr:
		return "SafeCallExpr", true
	case *ast.SafeIndexExpr:
		return "SafeIndexExpr", true
	case *ast.ElvisExpr:
		return "ElvisExpr", true
	case *ast.PipelineExpr:
		return "PipelineExpr", true
	case *ast.CompoundAssignExpr:
		return "CompoundAssignExpr", true
	case *ast.ScopeShorthandExpr:
		return "ScopeShorthandExpr", true
	case *ast.StringInterpolationExpr:
		return "StringInterpolationExpr", true
	case *ast.IfStmt:
		if node.LetBindingName != "" {
			return "IfStmt(if-let)", true
		}
	}
	return "", false
}

// walkForbidden descends through both plain ast.Node subtrees (via
// ast.Children, which already knows every AST statement/expression
// shape) and the HIR-only node kinds (Call, Lambda, Try, Loop,
// DeclStmt, ...) that ast.Children has no case for, since lowered
// function bodies mix both: a temp binding inserted by lowering is a
// *hir.DeclStmt, not an *ast.DeclStmt.
func walkForbidden(t *testing.T, n ast.Node) {
	if n == nil {
		return
	}
	if kind, bad := forbiddenKinds(n); bad {
		t.Errorf("forbidden sugar node %s survived HIR lowering: %s", kind, n.String())
	}
	switch node := n.(type) {
	case *Call:
		walkForbidden(t, node.Callee)
		for _, a := range node.Args {
			walkForbidden(t, a)
		}
		return
	case *Lambda:
		if node.Body != nil {
			walkForbidden(t, node.Body)
		}
		return
	case *CollectionLiteral:
		for _, e := range node.Elements {
			walkForbidden(t, e)
		}
		for _, e := range node.Keys {
			walkForbidden(t, e)
		}
		for _, e := range node.Values {
			walkForbidden(t, e)
		}
		return
	case *ObjectLiteral:
		for _, a := range node.SuperArgs {
			walkForbidden(t, a)
		}
		return
	case *New:
		for _, a := range node.Args {
			walkForbidden(t, a)
		}
		return
	case *Loop:
		if node.Cond != nil {
			walkForbidden(t, node.Cond)
		}
		if node.Body != nil {
			walkForbidden(t, node.Body)
		}
		return
	case *Try:
		if node.Body != nil {
			walkForbidden(t, node.Body)
		}
		for _, c := range node.Catches {
			if c.Body != nil {
				walkForbidden(t, c.Body)
			}
		}
		if node.Finally != nil {
			walkForbidden(t, node.Finally)
		}
		return
	case *DeclStmt:
		if node.Field == nil {
			return
		}
		if node.Field.Initializer != nil {
			walkForbidden(t, node.Field.Initializer)
		}
		if node.Field.GetterBody != nil {
			walkForbidden(t, node.Field.GetterBody)
		}
		if node.Field.SetterBody != nil {
			walkForbidden(t, node.Field.SetterBody)
		}
		return
	}
	for _, c := range ast.Children(n) {
		walkForbidden(t, c)
	}
}

// TestLoweringEliminatesAllSugar is spec.md §8 invariant 1: "for every
// AST program, the produced HIR contains none of the sugar node kinds
// listed in §4.1."
func TestLoweringEliminatesAllSugar(t *testing.T) {
	mod := lowerSource(t)

	for _, fn := range mod.Functions {
		if fn.Body != nil {
			walkForbidden(t, fn.Body)
		}
	}
	for _, c := range mod.Classes {
		for _, fn := range c.Methods {
			if fn.Body != nil {
				walkForbidden(t, fn.Body)
			}
		}
		for _, fn := range c.Constructors {
			if fn.Body != nil {
				walkForbidden(t, fn.Body)
			}
		}
		for _, f := range c.Fields {
			if f.Initializer != nil {
				walkForbidden(t, f.Initializer)
			}
		}
	}
}

// TestDestructuringLowersToComponentCalls checks the destructuring
// rule's exact shape: `val (a, b) = e` becomes a temp decl plus one
// componentN() call per name.
func TestDestructuringLowersToComponentCalls(t *testing.T) {
	mod := lowerSource(t)
	fn := findFunction(t, mod, "run")
	stmts := fn.Body.Statements

	// The lowered form replaces one source statement with a block of three:
	// `val $t1 = pair()`, `val a = $t1.component1()`, `val b = $t1.component2()`.
	var foundComponent1, foundComponent2 bool
	for _, s := range stmts {
		block, ok := s.(*ast.BlockStmt)
		if !ok {
			continue
		}
		for _, inner := range block.Statements {
			decl, ok := inner.(*DeclStmt)
			if !ok || decl.Field == nil || decl.Field.Initializer == nil {
				continue
			}
			call, ok := decl.Field.Initializer.(*Call)
			if !ok {
				continue
			}
			member, ok := call.Callee.(*ast.MemberExpr)
			if !ok {
				continue
			}
			switch member.Name {
			case "component1":
				foundComponent1 = true
			case "component2":
				foundComponent2 = true
			}
		}
	}
	if !foundComponent1 || !foundComponent2 {
		t.Errorf("expected component1()/component2() calls in lowered destructuring, got component1=%v component2=%v", foundComponent1, foundComponent2)
	}
}

func findFunction(t *testing.T, mod *Module, name string) *Function {
	t.Helper()
	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found", name)
	return nil
}

func TestMethodKeyDistinguishesArity(t *testing.T) {
	a := &Function{Name: "f", Params: []*Param{{Name: "x"}}}
	b := &Function{Name: "f", Params: []*Param{{Name: "x"}, {Name: "y"}}}
	if methodKey(a) == methodKey(b) {
		t.Fatalf("expected distinct keys for different arities, got %q == %q", methodKey(a), methodKey(b))
	}
	if got, want := methodKey(a), fmt.Sprintf("f/%d", 1); got != want {
		t.Fatalf("methodKey(a) = %q, want %q", got, want)
	}
}

// TestCompanionHoistingPreservesDeclarationOrder exercises the ordered-
// map-backed member assembly in lowerClass: a companion method
// overriding an own method of the same name/arity keeps its original
// slot instead of moving to the end.
func TestCompanionHoistingPreservesDeclarationOrder(t *testing.T) {
	const classSrc = `
class Box {
	fun first() { return 1 }
	fun second() { return 2 }
	companion object {
		fun first() { return 99 }
	}
}
`
	prog, perrs, _ := parser.Parse("test.nova", classSrc)
	if len(perrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	mod := Lower(prog)
	if len(mod.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(mod.Classes))
	}
	c := mod.Classes[0]
	if len(c.Methods) != 2 {
		t.Fatalf("expected companion override to replace, not append: got %d methods", len(c.Methods))
	}
	if c.Methods[0].Name != "first" || c.Methods[1].Name != "second" {
		t.Fatalf("expected declaration order [first, second], got [%s, %s]", c.Methods[0].Name, c.Methods[1].Name)
	}
	hasStatic := false
	for _, m := range c.Methods[0].Modifiers {
		if m == "static" {
			hasStatic = true
		}
	}
	if !hasStatic {
		t.Errorf("expected hoisted companion method to carry the static modifier")
	}
}
