package index

import (
	"time"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/errors"
	"github.com/novalang/novac/internal/parser"
	"github.com/novalang/novac/internal/semantic"
	"github.com/novalang/novac/internal/source"
)

const reanalyzeDebounce = 200 * time.Millisecond

// AnalysisResult wraps one run of the semantic analyzer with the
// combined parse+semantic diagnostics list spec.md §4.4 "Query
// semantics" describes.
type AnalysisResult struct {
	analyzer *semantic.Analyzer
}

// Globals is the analyzed program's root symbol table.
func (r *AnalysisResult) Globals() *semantic.SymbolTable { return r.analyzer.Globals }

// TypeOf returns the declared type name the analyzer recorded for
// expr, if any.
func (r *AnalysisResult) TypeOf(expr ast.Expression) (string, bool) { return r.analyzer.TypeOf(expr) }

// Diagnostic is one combined, location-bearing finding: a parse error,
// a lex error, or a semantic diagnostic.
type Diagnostic struct {
	Pos      source.Position
	Message  string
	Severity errors.Severity
}

// debounce tracks one document's pending re-analysis timer plus the
// version it was scheduled for, so a late callback can detect it has
// been superseded (spec.md §5 "a version counter... checks
// current-version == scheduled-version before storing").
type debounce struct {
	timer   *time.Timer
	version int
}

func (idx *Index) cancelPending(uri string) {
	idx.schedMu.Lock()
	defer idx.schedMu.Unlock()
	if d, ok := idx.pending[uri]; ok {
		d.timer.Stop()
		delete(idx.pending, uri)
	}
}

// scheduleReanalyze coalesces edits by cancelling any pending timer
// for uri before arming a new one (spec.md §5 "Debounced re-analysis").
func (idx *Index) scheduleReanalyze(uri string, version int) {
	idx.schedMu.Lock()
	defer idx.schedMu.Unlock()
	if d, ok := idx.pending[uri]; ok {
		d.timer.Stop()
	}
	d := &debounce{version: version}
	d.timer = time.AfterFunc(reanalyzeDebounce, func() {
		idx.schedMu.Lock()
		delete(idx.pending, uri)
		idx.schedMu.Unlock()
		idx.reanalyze(uri, version)
	})
	idx.pending[uri] = d
}

// reanalyze parses tolerantly, runs the semantic analyzer, and stores
// the bundle only if uri's document is still at version (a version
// check before storing, per spec.md §4.4/§5, drops late callbacks for
// a document that has since changed again).
func (idx *Index) reanalyze(uri string, version int) {
	idx.mu.RLock()
	doc, ok := idx.docs[uri]
	idx.mu.RUnlock()
	if !ok {
		return
	}
	content := doc.Content

	prog, parseErrs, lexErrs := parser.Parse(uri, content)

	// Analyze regardless of parse errors: the tolerant parser still
	// produces a usable tree, and hover/goto-definition should keep
	// working against a document with syntax errors elsewhere.
	analyzer := semantic.New(prog)
	analyzer.Analyze()

	bundle := &Bundle{
		Program:     prog,
		ParseErrors: parseErrs,
		LexErrors:   lexErrs,
		Analysis:    &AnalysisResult{analyzer: analyzer},
	}

	idx.mu.Lock()
	current, stillOpen := idx.docs[uri]
	if !stillOpen || current.Version != version {
		idx.mu.Unlock()
		return
	}
	idx.bundles[uri] = bundle
	delete(idx.exprs, uri) // next ensureExprIndex rebuilds against the new Program
	idx.mu.Unlock()

	idx.Project.Update(uri, prog)

	if idx.OnAnalyzed != nil {
		idx.OnAnalyzed(uri, bundle)
	}
}

// Diagnostics combines parse errors, lex errors, and semantic
// diagnostics for uri's current bundle (spec.md §4.4 "Diagnostics").
func (idx *Index) Diagnostics(uri string) []Diagnostic {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil
	}
	var out []Diagnostic
	for _, e := range b.LexErrors {
		out = append(out, Diagnostic{Pos: e.Pos, Message: e.Message, Severity: errors.SeverityError})
	}
	for _, e := range b.ParseErrors {
		out = append(out, Diagnostic{Pos: e.Pos, Message: e.Message, Severity: errors.SeverityError})
	}
	for _, d := range b.Analysis.analyzer.Diagnostics() {
		out = append(out, Diagnostic{Pos: d.Pos, Message: d.Message, Severity: d.Severity})
	}
	return out
}
