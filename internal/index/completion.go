package index

import (
	"strings"

	"github.com/novalang/novac/internal/ast"
)

// CompletionKind classifies a CompletionItem for the editor's icon
// and sort-order logic.
type CompletionKind int

const (
	CompKeyword CompletionKind = iota
	CompFunction
	CompProperty
	CompVariable
	CompClass
	CompSnippet
)

// CompletionItem is one candidate insertion.
type CompletionItem struct {
	Label string
	Kind  CompletionKind
	Detail string
}

// snippets are short templates offered alongside plain keywords, the
// way an editor's completion list usually surfaces control-flow
// skeletons rather than bare keywords.
var snippets = []CompletionItem{
	{Label: "if", Kind: CompSnippet, Detail: "if (condition) { }"},
	{Label: "when", Kind: CompSnippet, Detail: "when (subject) { }"},
	{Label: "for", Kind: CompSnippet, Detail: "for (x in iterable) { }"},
	{Label: "fun", Kind: CompSnippet, Detail: "fun name() { }"},
	{Label: "data class", Kind: CompSnippet, Detail: "@data class Name(val x: Int)"},
}

// Completion dispatches on whether the cursor follows a `.` (member
// completion) or sits in open code (keyword/global/snippet completion),
// per spec.md §4.4 "Completion".
func (idx *Index) Completion(uri string, offset int) ([]CompletionItem, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil, false
	}
	content := idx.Content(uri)
	if target, ok := dotReceiverBefore(content, offset); ok {
		return idx.memberCompletion(b, target, offset), true
	}
	return idx.generalCompletion(b), true
}

// dotReceiverBefore reports whether offset is immediately (modulo an
// in-progress identifier prefix) preceded by `receiver.`, returning
// the receiver expression's own text span end offset.
func dotReceiverBefore(content string, offset int) (int, bool) {
	i := offset
	for i > 0 && isIdentByte(content[i-1]) {
		i--
	}
	if i == 0 || content[i-1] != '.' {
		return 0, false
	}
	return i - 1, true
}

// memberCompletion resolves the receiver expression ending at
// dotOffset through, in order: the expression-offset index plus the
// analyzer's recorded type, then the enclosing function's receiver
// (for a trailing-lambda body referring to `this`) — then lists that
// class's fields and methods. A bare class-name receiver is not looked
// up in the global symbol table.
func (idx *Index) memberCompletion(b *Bundle, dotOffset int, offset int) []CompletionItem {
	ei, ok := idx.ensureExprIndex(fileURIOf(b))
	var className string
	if ok {
		start := findExprStart(ei, dotOffset)
		if expr, ok := ei.ExactAt(start, dotOffset-start); ok {
			if t, ok := b.Analysis.TypeOf(expr); ok {
				className = t
			}
		}
	}
	if className == "" {
		if recv := enclosingReceiverType(b.Program, offset); recv != "" {
			className = recv
		}
	}
	if className == "" {
		return nil
	}
	decl := findClassDecl(b.Program, className)
	if decl == nil {
		return nil
	}
	var items []CompletionItem
	for _, f := range decl.Fields {
		items = append(items, CompletionItem{Label: f.Name, Kind: CompProperty, Detail: decl.Name})
	}
	for _, m := range decl.Methods {
		items = append(items, CompletionItem{Label: m.Name, Kind: CompFunction, Detail: decl.Name})
	}
	return items
}

// findExprStart finds the latest recorded start among an index's
// known offsets at or before dotOffset, a best-effort way to recover
// the receiver expression's start without re-parsing.
func findExprStart(ei *ExprIndex, dotOffset int) int {
	best := dotOffset
	for _, s := range ei.starts {
		if s <= dotOffset {
			best = s
		} else {
			break
		}
	}
	return best
}

func fileURIOf(b *Bundle) string {
	return b.Program.P.File
}

// enclosingReceiverType returns the receiver type name of the last
// function (in walk order) that has a receiver type and starts at or
// before offset, covering extension-function/lambda bodies referring
// to an implicit `this`. The function's end is not checked, so a
// receiver function that ends before offset can still be chosen.
func enclosingReceiverType(prog *ast.Program, offset int) string {
	var found string
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if fn, ok := n.(*ast.FunctionDecl); ok && fn.ReceiverType != nil {
			if fn.Pos().Offset <= offset {
				if name := typeRefName(fn.ReceiverType); name != "" {
					found = name
				}
			}
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(prog)
	return found
}

func typeRefName(t ast.TypeRef) string {
	// SimpleTypeRef-shaped types expose their name via String(); this
	// avoids depending on internal/ast's concrete TypeRef variants,
	// which the index package otherwise has no reason to switch on.
	s := t.String()
	s = strings.TrimSuffix(s, "?")
	return s
}

func findClassDecl(prog *ast.Program, name string) *ast.ClassDecl {
	var found *ast.ClassDecl
	var walk func(decls []ast.Declaration)
	walk = func(decls []ast.Declaration) {
		for _, d := range decls {
			if c, ok := d.(*ast.ClassDecl); ok {
				if c.Name == name {
					found = c
					return
				}
				walk(declsOf(c.NestedClasses))
			}
		}
	}
	walk(prog.Declarations)
	return found
}

func declsOf(classes []*ast.ClassDecl) []ast.Declaration {
	out := make([]ast.Declaration, len(classes))
	for i, c := range classes {
		out[i] = c
	}
	return out
}

// generalCompletion offers keywords, runtime builtins, snippets, and
// every project-wide declared name, for completion in open code.
func (idx *Index) generalCompletion(b *Bundle) []CompletionItem {
	var items []CompletionItem
	for kw := range keywordDescriptions {
		items = append(items, CompletionItem{Label: kw, Kind: CompKeyword})
	}
	for name, desc := range builtinDescriptions {
		items = append(items, CompletionItem{Label: name, Kind: CompFunction, Detail: desc})
	}
	items = append(items, snippets...)
	for _, entry := range idx.Project.Search("") {
		kind := CompVariable
		switch entry.Kind {
		case EntryClass:
			kind = CompClass
		case EntryFunction:
			kind = CompFunction
		case EntryProperty:
			kind = CompProperty
		}
		items = append(items, CompletionItem{Label: entry.Name, Kind: kind})
	}
	return items
}
