// Package index implements the editor backend's semantic index
// (spec.md §4.4): per-document content/analysis caches, an
// expression-offset index, and a cross-file project index, plus the
// query logic (hover, completion, references, ...) internal/lsp
// dispatches into. It reuses internal/parser's tolerant mode and
// internal/semantic's analyzer rather than re-implementing analysis.
package index

import (
	"sync"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/lexer"
	"github.com/novalang/novac/internal/parser"
)

// Document is one open editor buffer.
type Document struct {
	URI     string
	Content string
	Version int
}

// Bundle is a document's cached (parseResult, analysisResult) pair
// (spec.md §4.4 cache 2).
type Bundle struct {
	Program     *ast.Program
	ParseErrors []*parser.ParseError
	LexErrors   []lexer.LexError
	Analysis    *AnalysisResult
}

// Index is the editor backend's whole state: the document map,
// analysis-bundle cache, expression-offset cache, and project index,
// each guarded the way spec.md §5 describes ("document map, cached
// analysis map, and version map are concurrent").
type Index struct {
	mu      sync.RWMutex
	docs    map[string]*Document
	bundles map[string]*Bundle
	exprs   map[string]*ExprIndex

	schedMu sync.Mutex
	pending map[string]*debounce

	Project *ProjectIndex

	// OnAnalyzed, if set, is invoked after a successful re-analysis
	// with the new bundle — internal/lsp wires this to publish
	// diagnostics and refresh the project index's entries for uri.
	OnAnalyzed func(uri string, b *Bundle)

	// Resolver resolves Java classes for completion/hover fallback
	// (spec.md §4.4 "Java class resolution"); nil disables that path.
	Resolver *JavaResolver
}

// New creates an empty Index. classpath configures the Java class
// resolver (spec.md §4.4 "Java class resolution"); pass nil to disable
// it, e.g. in tests that never touch Java interop.
func New(classpath []string) *Index {
	idx := &Index{
		docs:    map[string]*Document{},
		bundles: map[string]*Bundle{},
		exprs:   map[string]*ExprIndex{},
		pending: map[string]*debounce{},
		Project: NewProjectIndex(),
	}
	if len(classpath) > 0 {
		idx.Resolver = NewJavaResolver(classpath)
	}
	return idx
}

// Open replaces a document's content, bumps its version, and
// re-analyzes synchronously (spec.md §4.4 "Open").
func (idx *Index) Open(uri, content string) {
	idx.mu.Lock()
	version := 1
	if old, ok := idx.docs[uri]; ok {
		version = old.Version + 1
	}
	doc := &Document{URI: uri, Content: content, Version: version}
	idx.docs[uri] = doc
	idx.mu.Unlock()

	idx.reanalyze(uri, doc.Version)
}

// Change applies a full-text replacement, invalidates the cached
// analysis immediately so in-flight queries never see a stale tree,
// bumps the version, and schedules debounced re-analysis (spec.md
// §4.4 "Change").
func (idx *Index) Change(uri, newContent string) {
	idx.mu.Lock()
	doc, ok := idx.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		idx.docs[uri] = doc
	}
	doc.Content = newContent
	doc.Version++
	version := doc.Version
	delete(idx.bundles, uri)
	delete(idx.exprs, uri)
	idx.mu.Unlock()

	idx.scheduleReanalyze(uri, version)
}

// ChangeIncremental applies one (startLine, startChar, endLine,
// endChar, text) edit, converted to byte offsets against the
// document's current content, then proceeds exactly as Change.
func (idx *Index) ChangeIncremental(uri string, startLine, startChar, endLine, endChar int, text string) {
	idx.mu.RLock()
	doc, ok := idx.docs[uri]
	idx.mu.RUnlock()
	if !ok {
		return
	}
	startOff := lineColToOffset(doc.Content, startLine, startChar)
	endOff := lineColToOffset(doc.Content, endLine, endChar)
	newContent := doc.Content[:startOff] + text + doc.Content[endOff:]
	idx.Change(uri, newContent)
}

// lineColToOffset converts a 0-based (line, character) LSP position
// into a byte offset into content.
func lineColToOffset(content string, line, char int) int {
	off := 0
	curLine := 0
	for curLine < line && off < len(content) {
		if content[off] == '\n' {
			curLine++
		}
		off++
	}
	end := off
	for end < len(content) && end-off < char && content[end] != '\n' {
		end++
	}
	return end
}

// Close drops all per-URI caches and cancels any pending analysis
// (spec.md §4.4 "Close").
func (idx *Index) Close(uri string) {
	idx.cancelPending(uri)
	idx.mu.Lock()
	delete(idx.docs, uri)
	delete(idx.bundles, uri)
	delete(idx.exprs, uri)
	idx.mu.Unlock()
	idx.Project.RemoveURI(uri)
}

// OpenURIs returns every currently open document's URI, for fan-out
// queries like Rename that need to scan other buffers.
func (idx *Index) OpenURIs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.docs))
	for uri := range idx.docs {
		out = append(out, uri)
	}
	return out
}

// Content returns the current text for uri, or "" if it's not open.
func (idx *Index) Content(uri string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if d, ok := idx.docs[uri]; ok {
		return d.Content
	}
	return ""
}

// Version returns the document's current version, or 0 if unopened.
func (idx *Index) Version(uri string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if d, ok := idx.docs[uri]; ok {
		return d.Version
	}
	return 0
}

// Bundle returns the cached analysis bundle for uri, if any.
func (idx *Index) Bundle(uri string) (*Bundle, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	b, ok := idx.bundles[uri]
	return b, ok
}

// OffsetAt converts a 0-based (line, character) LSP position into a
// byte offset into uri's current content, for internal/lsp to use
// when translating wire positions into the queries this package takes.
func (idx *Index) OffsetAt(uri string, line, char int) int {
	return lineColToOffset(idx.Content(uri), line, char)
}

// LineColAt converts a byte offset back into a 0-based (line, character)
// LSP position, for rendering query results onto the wire.
func (idx *Index) LineColAt(uri string, offset int) (line, char int) {
	content := idx.Content(uri)
	if offset > len(content) {
		offset = len(content)
	}
	lineStart := 0
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart
}
