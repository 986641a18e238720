package index

import (
	"strings"

	"github.com/novalang/novac/internal/ast"
)

// FoldingRange is a 1-based, inclusive start/end line pair.
type FoldingRange struct {
	StartLine int
	EndLine   int
	Kind      string // "region", "imports", or "comment"
}

// FoldingRanges computes folding regions for uri: every brace-bearing
// declaration/statement, a single range spanning consecutive imports,
// and block comments recovered from the raw text (spec.md §4.4
// "Folding ranges"). The lexer discards comments entirely (see
// internal/lexer's skipWhitespaceAndComments), so comment ranges are
// found by scanning the document's content directly rather than the
// AST.
func (idx *Index) FoldingRanges(uri string) ([]FoldingRange, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil, false
	}
	var out []FoldingRange

	if len(b.Program.Imports) > 1 {
		first := b.Program.Imports[0].P.Line
		last := b.Program.Imports[len(b.Program.Imports)-1].P.Line
		if last > first {
			out = append(out, FoldingRange{StartLine: first, EndLine: last, Kind: "imports"})
		}
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if foldable(n) {
			start := n.Pos().Line
			end := deepestLine(n)
			if end > start {
				out = append(out, FoldingRange{StartLine: start, EndLine: end, Kind: "region"})
			}
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(b.Program)

	out = append(out, commentFoldingRanges(idx.Content(uri))...)
	return out, true
}

func foldable(n ast.Node) bool {
	switch n.(type) {
	case *ast.ClassDecl, *ast.FunctionDecl, *ast.BlockStmt, *ast.IfStmt,
		*ast.WhenStmt, *ast.ForStmt, *ast.WhileStmt, *ast.DoWhileStmt, *ast.TryStmt:
		return true
	default:
		return false
	}
}

// deepestLine returns the greatest line number touched by n or any of
// its descendants, approximating the node's closing line since AST
// positions record only each node's start.
func deepestLine(n ast.Node) int {
	max := n.Pos().Line
	for _, c := range ast.Children(n) {
		if l := deepestLine(c); l > max {
			max = l
		}
	}
	return max
}

func commentFoldingRanges(content string) []FoldingRange {
	var out []FoldingRange
	line := 1
	i := 0
	for i < len(content) {
		if content[i] == '\n' {
			line++
			i++
			continue
		}
		if i+1 < len(content) && content[i] == '/' && content[i+1] == '*' {
			startLine := line
			j := i + 2
			for j+1 < len(content) && !(content[j] == '*' && content[j+1] == '/') {
				if content[j] == '\n' {
					line++
				}
				j++
			}
			endLine := line
			if j+1 < len(content) {
				j += 2 // consume closing */
			} else {
				j = len(content)
			}
			if endLine > startLine {
				out = append(out, FoldingRange{StartLine: startLine, EndLine: endLine, Kind: "comment"})
			}
			i = j
			continue
		}
		if content[i] == '/' && i+1 < len(content) && content[i+1] == '/' {
			// line comment: skip to end of line, doesn't fold.
			idx := strings.IndexByte(content[i:], '\n')
			if idx < 0 {
				break
			}
			i += idx
			continue
		}
		i++
	}
	return out
}
