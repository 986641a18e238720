package index

import (
	"fmt"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// HoverResult is a rendered hover string anchored at the hovered span.
type HoverResult struct {
	Contents string
	Pos      source.Position
}

// Hover resolves the identifier at offset against the symbol table,
// falling back through keyword/builtin descriptions for anything else
// (spec.md §4.4 "Hover").
func (idx *Index) Hover(uri string, offset int) (*HoverResult, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil, false
	}
	ei, ok := idx.ensureExprIndex(uri)
	if !ok {
		return nil, false
	}
	expr, ok := ei.InnermostAt(offset)
	if !ok {
		return nil, false
	}
	ident, ok := expr.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	if decl, ok := resolveDecl(b, ident.Name, offset); ok {
		return &HoverResult{Contents: describeDecl(decl), Pos: ident.P}, true
	}
	if desc, ok := keywordDescriptions[ident.Name]; ok {
		return &HoverResult{Contents: desc, Pos: ident.P}, true
	}
	if desc, ok := builtinDescriptions[ident.Name]; ok {
		return &HoverResult{Contents: desc, Pos: ident.P}, true
	}
	return nil, false
}

// Definition resolves the identifier at offset to its declaring
// position (spec.md §4.4 "Goto-definition").
func (idx *Index) Definition(uri string, offset int) (source.Position, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return source.Unknown, false
	}
	ei, ok := idx.ensureExprIndex(uri)
	if !ok {
		return source.Unknown, false
	}
	expr, ok := ei.InnermostAt(offset)
	if !ok {
		return source.Unknown, false
	}
	ident, ok := expr.(*ast.Identifier)
	if !ok {
		return source.Unknown, false
	}
	decl, ok := resolveDecl(b, ident.Name, offset)
	if !ok {
		return source.Unknown, false
	}
	return decl.Pos(), true
}

// resolveDecl looks an identifier up first in the analyzer's global
// symbol table (covers top-level classes/functions/consts), then
// falls back to the nearest textual binding (covers locals/params).
func resolveDecl(b *Bundle, name string, offset int) (ast.Node, bool) {
	if sym, ok := b.Analysis.Globals().Resolve(name); ok && sym.Decl != nil {
		return sym.Decl, true
	}
	decls := collectNamedDecls(b.Program)
	d, ok := nearestBinding(decls, name, offset)
	if !ok {
		return nil, false
	}
	return d.Node, true
}

func describeDecl(n ast.Node) string {
	switch d := n.(type) {
	case *ast.ClassDecl:
		return fmt.Sprintf("%s %s", classKindWord(d.Kind), d.Name)
	case *ast.FunctionDecl:
		return "fun " + d.Name
	case *ast.PropertyDecl:
		kw := "val"
		if d.Mutable {
			kw = "var"
		}
		return kw + " " + d.Name
	case *ast.ParameterDecl:
		return "param " + d.Name
	case *ast.EnumEntryDecl:
		return "enum entry " + d.Name
	default:
		return n.String()
	}
}

func classKindWord(k ast.ClassKind) string {
	switch k {
	case ast.KindInterface:
		return "interface"
	case ast.KindEnum:
		return "enum"
	case ast.KindObject:
		return "object"
	case ast.KindAnnotation:
		return "annotation"
	default:
		return "class"
	}
}
