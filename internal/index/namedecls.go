package index

import (
	"github.com/novalang/novac/internal/ast"
)

// namedDecl is one name-introducing node, collected across the whole
// program, used by the position-based queries (hover, goto-definition,
// references) as a fallback once the global symbol table (built only
// for top-level and class-member names) misses — e.g. for a function
// parameter or a local val/var.
type namedDecl struct {
	Name string
	Node ast.Node
}

// collectNamedDecls walks the entire program collecting every
// name-introducing node: class/function/property declarations,
// parameters, destructured names, and enum entries.
func collectNamedDecls(prog *ast.Program) []namedDecl {
	var out []namedDecl
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch node := n.(type) {
		case *ast.ClassDecl:
			out = append(out, namedDecl{node.Name, node})
		case *ast.FunctionDecl:
			out = append(out, namedDecl{node.Name, node})
		case *ast.PropertyDecl:
			out = append(out, namedDecl{node.Name, node})
		case *ast.ParameterDecl:
			out = append(out, namedDecl{node.Name, node})
		case *ast.EnumEntryDecl:
			out = append(out, namedDecl{node.Name, node})
		case *ast.DestructuringDecl:
			for _, name := range node.Names {
				if name != "_" {
					out = append(out, namedDecl{name, node})
				}
			}
		case *ast.GuardStmt:
			out = append(out, namedDecl{node.Name, node})
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(prog)
	return out
}

// nearestBinding returns the matching namedDecl whose position is
// closest at-or-before offset (the lexically nearest enclosing
// binding for a textually-scoped language), falling back to the
// first match at any position (top-level forward references).
func nearestBinding(decls []namedDecl, name string, offset int) (namedDecl, bool) {
	var best namedDecl
	bestOff := -1
	var anyMatch namedDecl
	found := false
	for _, d := range decls {
		if d.Name != name {
			continue
		}
		if !found {
			anyMatch = d
			found = true
		}
		off := d.Node.Pos().Offset
		if off <= offset && off > bestOff {
			best, bestOff = d, off
		}
	}
	if bestOff >= 0 {
		return best, true
	}
	return anyMatch, found
}
