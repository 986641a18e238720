// Package source holds the position and file-identity types shared by
// every stage of the pipeline, from the lexer through the bytecode
// emitter and the editor's semantic index.
package source

import "sync"

// Position locates a span of source text. Column and Line are 1-based;
// Offset and Length are 0-based byte offsets into the file's content.
// A zero-value Position (File == "") is the sentinel "unknown" location:
// it is always valid to construct and never panics downstream, but it
// carries no information a diagnostic or index query can use.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
	Length int
}

// Unknown is the sentinel used by nodes that are synthesized rather
// than parsed (e.g. a desugaring temporary) and therefore have no
// meaningful source span.
var Unknown = Position{}

// IsUnknown reports whether p is the sentinel unknown position.
func (p Position) IsUnknown() bool {
	return p.File == "" && p.Line == 0 && p.Column == 0 && p.Offset == 0 && p.Length == 0
}

// End returns the offset one past the last byte of the span.
func (p Position) End() int {
	return p.Offset + p.Length
}

// fileTable interns file path strings so that every Position naming
// the same file shares one string header. Locations are read far more
// often than written (every AST/HIR/MIR node carries one), so the
// interning table trades a single mutex-guarded lookup at parse time
// for cheap comparisons and low memory overhead afterward.
var fileTable = struct {
	mu    sync.Mutex
	names map[string]string
}{names: make(map[string]string)}

// Intern returns the canonical string for a file path, reusing a
// previously interned value if one exists.
func Intern(file string) string {
	fileTable.mu.Lock()
	defer fileTable.mu.Unlock()
	if v, ok := fileTable.names[file]; ok {
		return v
	}
	fileTable.names[file] = file
	return file
}

// At builds an interned Position.
func At(file string, line, column, offset, length int) Position {
	return Position{File: Intern(file), Line: line, Column: column, Offset: offset, Length: length}
}
