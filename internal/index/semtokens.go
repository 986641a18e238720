package index

import (
	"sort"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// Semantic token types, indexed to match the legend the LSP server
// advertises (spec.md §4.4 "Semantic tokens"). Declaration-site nodes
// (ClassDecl, FunctionDecl, ...) only record their Position at the
// start of the construct rather than at the name, so token emission
// here is scoped to identifier occurrences in expression position,
// which always carry an exact name span.
const (
	TokClass = iota
	TokInterface
	TokEnum
	TokEnumMember
	TokFunction
	TokParameter
	TokProperty
	TokVariable
)

const (
	ModDeclaration = 1 << 0
	ModReadonly    = 1 << 1
)

// SemanticToken is one classified identifier span, in absolute
// document coordinates, before relative encoding.
type SemanticToken struct {
	Pos       source.Position
	Type      int
	Modifiers int
}

// SemanticTokens classifies every identifier occurrence in uri and
// relative-encodes them into the (deltaLine, deltaStart, length, type,
// modifiers) quintuples the LSP wire format expects.
func (idx *Index) SemanticTokens(uri string) ([]int, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil, false
	}
	toks := collectSemanticTokens(b)
	sort.Slice(toks, func(i, j int) bool {
		if toks[i].Pos.Line != toks[j].Pos.Line {
			return toks[i].Pos.Line < toks[j].Pos.Line
		}
		return toks[i].Pos.Column < toks[j].Pos.Column
	})

	data := make([]int, 0, len(toks)*5)
	prevLine, prevCol := 1, 0
	for _, t := range toks {
		deltaLine := t.Pos.Line - prevLine
		deltaCol := t.Pos.Column - 1
		if deltaLine == 0 {
			deltaCol = t.Pos.Column - 1 - prevCol
		}
		data = append(data, deltaLine, deltaCol, t.Pos.Length, t.Type, t.Modifiers)
		prevLine, prevCol = t.Pos.Line, t.Pos.Column-1
	}
	return data, true
}

func collectSemanticTokens(b *Bundle) []SemanticToken {
	paramNames, readonlyProps := declKindsOf(b.Program)

	var out []SemanticToken
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch e := n.(type) {
		case *ast.Identifier:
			out = append(out, classifyIdentifier(e, paramNames, readonlyProps))
		case *ast.MemberExpr:
			out = append(out, SemanticToken{Pos: memberNamePos(e), Type: TokProperty})
		case *ast.StringInterpolationExpr:
			for _, part := range e.Parts {
				if part.Expr != nil {
					walk(part.Expr)
				}
			}
			return
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(b.Program)
	return out
}

// declKindsOf records every declared parameter name and every
// read-only (val) property name, used to attach the `declaration` and
// `readonly` modifiers to later identifier occurrences of that name.
func declKindsOf(prog *ast.Program) (params map[string]bool, readonly map[string]bool) {
	params = map[string]bool{}
	readonly = map[string]bool{}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch d := n.(type) {
		case *ast.ParameterDecl:
			params[d.Name] = true
		case *ast.PropertyDecl:
			if !d.Mutable {
				readonly[d.Name] = true
			}
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(prog)
	return
}

func classifyIdentifier(id *ast.Identifier, params, readonly map[string]bool) SemanticToken {
	tok := SemanticToken{Pos: id.P, Type: TokVariable}
	if isUpperFirst(id.Name) {
		tok.Type = TokClass
	} else if params[id.Name] {
		tok.Type = TokParameter
		tok.Modifiers |= ModDeclaration
	}
	if readonly[id.Name] {
		tok.Modifiers |= ModReadonly
	}
	return tok
}

func isUpperFirst(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}

// memberNamePos approximates the member name's span: MemberExpr.P
// marks the start of the whole `target.name` expression and no
// separate name position is recorded, so the token starts at the
// expression's start and has the member name's length.
func memberNamePos(e *ast.MemberExpr) source.Position {
	p := e.P
	p.Length = len(e.Name)
	return p
}
