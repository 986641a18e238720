package index

// DocumentSymbols flattens uri's own top-level and nested declarations
// (spec.md §4.4 "Document symbols"), reusing the same collection logic
// the project-wide index builds from.
func (idx *Index) DocumentSymbols(uri string) ([]SymbolEntry, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil, false
	}
	return collectEntries(uri, b.Program), true
}

// WorkspaceSymbols searches every file's contributed entries for query
// (spec.md §4.4 "Workspace symbols").
func (idx *Index) WorkspaceSymbols(query string) []SymbolEntry {
	return idx.Project.Search(query)
}
