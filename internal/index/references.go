package index

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// Reference is one occurrence of a name: either the declaring site or
// a use, with Write set when the occurrence is an assignment target.
type Reference struct {
	Pos   source.Position
	Write bool
}

// References finds every identifier in uri with the same name as the
// identifier at offset (spec.md §4.4 "References"). Occurrences are
// matched by name only, not by the declaration they resolve to.
func (idx *Index) References(uri string, offset int, includeDecl bool) ([]Reference, bool) {
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
	decl, hasDecl := resolveDecl(b, ident.Name, offset)

	writes := collectAssignTargets(b.Program)
	var out []Reference
	walkIdentifiers(b.Program, func(id *ast.Identifier) {
		if id.Name != ident.Name {
			return
		}
		out = append(out, Reference{Pos: id.P, Write: writes[id]})
	})
	if includeDecl && hasDecl {
		out = append(out, Reference{Pos: decl.Pos()})
	}
	return out, true
}

// CanRename reports whether name is a user-declared identifier rather
// than a reserved word or built-in (spec.md §4.4 "Rename" refuses
// those).
func CanRename(name string) bool {
	if _, ok := keywordDescriptions[name]; ok {
		return false
	}
	if _, ok := builtinDescriptions[name]; ok {
		return false
	}
	if builtinTypeNames[name] {
		return false
	}
	return true
}

// RenameEdit describes one text replacement for a rename operation.
type RenameEdit struct {
	URI  string
	Pos  source.Position
	Text string
}

// Rename computes every edit required to rename the identifier at
// offset in uri to newName, spanning every file the project index
// knows references that declaration's name (spec.md §4.4 "Rename").
func (idx *Index) Rename(uri string, offset int, newName string) ([]RenameEdit, bool) {
	if _, ok := idx.Bundle(uri); !ok {
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
	if !ok || !CanRename(ident.Name) {
		return nil, false
	}

	var edits []RenameEdit
	refs, _ := idx.References(uri, offset, true)
	for _, r := range refs {
		edits = append(edits, RenameEdit{URI: uri, Pos: r.Pos, Text: newName})
	}

	// Other open documents are scanned concurrently for exact-identifier
	// occurrences (word-boundary, never a substring like "foobar"
	// matching "foo") rather than trusting the project index's
	// declaration-only entries, so a rename touches every use, not just
	// where the name was declared.
	var mu sync.Mutex
	var g errgroup.Group
	seen := map[string]bool{uri: true}
	for _, other := range idx.OpenURIs() {
		if seen[other] {
			continue
		}
		seen[other] = true
		other := other
		g.Go(func() error {
			ob, ok := idx.Bundle(other)
			if !ok {
				return nil
			}
			var found []RenameEdit
			walkIdentifiers(ob.Program, func(id *ast.Identifier) {
				if id.Name == ident.Name {
					found = append(found, RenameEdit{URI: other, Pos: id.P, Text: newName})
				}
			})
			if len(found) == 0 {
				return nil
			}
			mu.Lock()
			edits = append(edits, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Declaration sites in files the project index knows about but that
	// aren't currently open (so the scan above couldn't reach them)
	// still get their one recorded entry renamed.
	for _, entry := range idx.Project.Lookup(ident.Name) {
		if seen[entry.URI] {
			continue
		}
		edits = append(edits, RenameEdit{URI: entry.URI, Pos: entry.Pos, Text: newName})
	}
	return edits, true
}

// DocumentHighlight reports every occurrence of the symbol at offset
// within the same file, for editor highlight-on-cursor behavior.
func (idx *Index) DocumentHighlight(uri string, offset int) ([]Reference, bool) {
	return idx.References(uri, offset, true)
}

// collectAssignTargets marks every Identifier that is the direct
// target of an assignment or compound assignment as a write.
func collectAssignTargets(prog *ast.Program) map[*ast.Identifier]bool {
	writes := map[*ast.Identifier]bool{}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch e := n.(type) {
		case *ast.AssignExpr:
			if id, ok := e.Target.(*ast.Identifier); ok {
				writes[id] = true
			}
		case *ast.CompoundAssignExpr:
			if id, ok := e.Target.(*ast.Identifier); ok {
				writes[id] = true
			}
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(prog)
	return writes
}

func walkIdentifiers(n ast.Node, fn func(*ast.Identifier)) {
	if n == nil {
		return
	}
	if id, ok := n.(*ast.Identifier); ok {
		fn(id)
	}
	for _, c := range ast.Children(n) {
		walkIdentifiers(c, fn)
	}
}
