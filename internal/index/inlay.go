package index

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// InlayHint is one rendered hint anchored at a document position.
type InlayHint struct {
	Pos  source.Position
	Text string
}

// InlayHints renders the inferred-type and argument-name hints
// spec.md §4.4 describes: a type-less val/var's inferred type, an
// expression-bodied function's inferred return type, and the
// parameter name for each positional call argument.
func (idx *Index) InlayHints(uri string) ([]InlayHint, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil, false
	}
	var out []InlayHint
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch d := n.(type) {
		case *ast.PropertyDecl:
			if d.Type == nil && d.Initializer != nil {
				if t, ok := b.Analysis.TypeOf(d.Initializer); ok {
					out = append(out, InlayHint{Pos: afterName(d.P, d.Name), Text: ": " + t})
				}
			}
		case *ast.FunctionDecl:
			if d.ReturnType == nil && d.ExprBody != nil {
				if t, ok := b.Analysis.TypeOf(d.ExprBody); ok {
					out = append(out, InlayHint{Pos: d.ExprBody.Pos(), Text: t + " "})
				}
			}
		case *ast.CallExpr:
			out = append(out, callArgumentHints(b, d)...)
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(b.Program)
	return out, true
}

// afterName offsets p past "val "/"var " plus the declared name, a
// reasonable anchor for an inferred-type hint given PropertyDecl only
// records its own start position.
func afterName(p source.Position, name string) source.Position {
	skip := len("val ") + len(name)
	p.Offset += skip
	p.Column += skip
	p.Length = 0
	return p
}

func callArgumentHints(b *Bundle, call *ast.CallExpr) []InlayHint {
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return nil
	}
	decl, ok := resolveDecl(b, callee.Name, call.P.Offset)
	if !ok {
		return nil
	}
	fn, ok := decl.(*ast.FunctionDecl)
	if !ok {
		return nil
	}
	var out []InlayHint
	for i, arg := range call.Args {
		if i >= len(fn.Params) {
			break
		}
		if id, isIdent := arg.(*ast.Identifier); isIdent && id.Name == fn.Params[i].Name {
			continue // `f(x)` where the arg name already matches isn't worth annotating
		}
		out = append(out, InlayHint{Pos: arg.Pos(), Text: fn.Params[i].Name + ": "})
	}
	return out
}
