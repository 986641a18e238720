package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/source"
)

// SymbolEntryKind classifies a project-index entry for workspace
// symbols/document symbols rendering.
type SymbolEntryKind int

const (
	EntryClass SymbolEntryKind = iota
	EntryFunction
	EntryProperty
	EntryEnumEntry
)

// SymbolEntry is one declared name, project-wide.
type SymbolEntry struct {
	Name string
	Kind SymbolEntryKind
	URI  string
	Pos  source.Position
}

// ProjectIndex maintains a cross-file name -> [entry] map and the
// reverse uri -> {name} map spec.md §4.4 cache 4 describes, so a
// document's entries can be cleanly dropped and rebuilt on
// re-analysis without touching other files' entries. byName is an
// insertion-ordered map so workspace-symbol results enumerate
// deterministically (first-declared-first) before the final
// alphabetic sort, which keeps Search's result order reproducible.
type ProjectIndex struct {
	mu      sync.RWMutex
	byName  *orderedmap.OrderedMap[string, []SymbolEntry]
	namesOf map[string]map[string]bool // uri -> names it contributed
}

// NewProjectIndex creates an empty ProjectIndex.
func NewProjectIndex() *ProjectIndex {
	return &ProjectIndex{byName: orderedmap.New[string, []SymbolEntry](), namesOf: map[string]map[string]bool{}}
}

// Update replaces uri's contributed entries with those collected from
// prog's top-level (and nested) declarations.
func (p *ProjectIndex) Update(uri string, prog *ast.Program) {
	entries := collectEntries(uri, prog)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(uri)
	names := map[string]bool{}
	for _, e := range entries {
		existing, _ := p.byName.Get(e.Name)
		p.byName.Set(e.Name, append(existing, e))
		names[e.Name] = true
	}
	p.namesOf[uri] = names
}

// RemoveURI drops every entry uri previously contributed.
func (p *ProjectIndex) RemoveURI(uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(uri)
}

func (p *ProjectIndex) removeLocked(uri string) {
	names, ok := p.namesOf[uri]
	if !ok {
		return
	}
	for name := range names {
		entries, ok := p.byName.Get(name)
		if !ok {
			continue
		}
		kept := entries[:0]
		for _, e := range entries {
			if e.URI != uri {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			p.byName.Delete(name)
		} else {
			p.byName.Set(name, kept)
		}
	}
	delete(p.namesOf, uri)
}

// Lookup returns every entry named name, across all files.
func (p *ProjectIndex) Lookup(name string) []SymbolEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entries, _ := p.byName.Get(name)
	return append([]SymbolEntry(nil), entries...)
}

// Search does a case-insensitive substring search over every entry
// name, capped at 200 hits (spec.md §4.4 "Workspace symbols"). An
// empty query matches everything, which internal/index's general
// completion path uses to list every project-wide name.
func (p *ProjectIndex) Search(query string) []SymbolEntry {
	q := strings.ToLower(query)
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []SymbolEntry
	for pair := p.byName.Oldest(); pair != nil; pair = pair.Next() {
		if strings.Contains(strings.ToLower(pair.Key), q) {
			out = append(out, pair.Value...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return lo.Slice(out, 0, 200)
}

func collectEntries(uri string, prog *ast.Program) []SymbolEntry {
	var out []SymbolEntry
	var visitClass func(c *ast.ClassDecl)
	visitClass = func(c *ast.ClassDecl) {
		out = append(out, SymbolEntry{Name: c.Name, Kind: EntryClass, URI: uri, Pos: c.P})
		for _, f := range c.Fields {
			out = append(out, SymbolEntry{Name: f.Name, Kind: EntryProperty, URI: uri, Pos: f.P})
		}
		for _, m := range c.Methods {
			out = append(out, SymbolEntry{Name: m.Name, Kind: EntryFunction, URI: uri, Pos: m.P})
		}
		for _, e := range c.EnumEntries {
			out = append(out, SymbolEntry{Name: e.Name, Kind: EntryEnumEntry, URI: uri, Pos: e.P})
		}
		for _, nc := range c.NestedClasses {
			visitClass(nc)
		}
	}
	for _, d := range prog.Declarations {
		switch decl := d.(type) {
		case *ast.ClassDecl:
			visitClass(decl)
		case *ast.FunctionDecl:
			out = append(out, SymbolEntry{Name: decl.Name, Kind: EntryFunction, URI: uri, Pos: decl.P})
		case *ast.PropertyDecl:
			out = append(out, SymbolEntry{Name: decl.Name, Kind: EntryProperty, URI: uri, Pos: decl.P})
		}
	}
	return out
}
