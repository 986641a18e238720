package index

import (
	"sort"

	"github.com/novalang/novac/internal/ast"
)

// ExprIndex is a sorted map from starting byte offset to every
// expression at that offset, supporting the two queries spec.md §4.4
// names: innermost-at(offset) and exact(offset, length). It is rebuilt
// only when the owning bundle's *ast.Program reference changes.
type ExprIndex struct {
	starts []int                    // sorted, distinct starting offsets
	byOff  map[int][]ast.Expression // offset -> expressions starting there
	forProgram *ast.Program
}

// buildExprIndex walks prog collecting every expression node by its
// starting offset.
func buildExprIndex(prog *ast.Program) *ExprIndex {
	idx := &ExprIndex{byOff: map[int][]ast.Expression{}, forProgram: prog}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if e, ok := n.(ast.Expression); ok {
			off := e.Pos().Offset
			idx.byOff[off] = append(idx.byOff[off], e)
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(prog)

	idx.starts = make([]int, 0, len(idx.byOff))
	for off := range idx.byOff {
		idx.starts = append(idx.starts, off)
	}
	sort.Ints(idx.starts)
	return idx
}

// ensureExprIndex returns uri's expression index, rebuilding it if the
// bundle's Program reference is new (spec.md §4.4 cache 3).
func (idx *Index) ensureExprIndex(uri string) (*ExprIndex, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	b, ok := idx.bundles[uri]
	if !ok {
		return nil, false
	}
	if cached, ok := idx.exprs[uri]; ok && cached.forProgram == b.Program {
		return cached, true
	}
	built := buildExprIndex(b.Program)
	idx.exprs[uri] = built
	return built, true
}

// InnermostAt returns the expression of smallest length covering
// offset. Ties (equal length) break toward the later starting offset,
// matching a downward scan from the largest start <= offset that stops
// once no shorter expression can exist (spec.md §4.4 "Expression-offset
// index").
func (ei *ExprIndex) InnermostAt(offset int) (ast.Expression, bool) {
	var best ast.Expression
	bestLen := -1
	bestOff := -1
	i := sort.Search(len(ei.starts), func(i int) bool { return ei.starts[i] > offset }) - 1
	for ; i >= 0; i-- {
		start := ei.starts[i]
		for _, e := range ei.byOff[start] {
			p := e.Pos()
			if offset < p.Offset || offset >= p.End() {
				continue
			}
			if bestLen == -1 || p.Length < bestLen || (p.Length == bestLen && p.Offset > bestOff) {
				best, bestLen, bestOff = e, p.Length, p.Offset
			}
		}
		if bestLen != -1 && offset-start > bestLen {
			break // no expression starting earlier could be shorter and still cover offset
		}
	}
	return best, best != nil
}

// ExactAt returns the expression matching both offset and length,
// preferring the shortest when more than one candidate starts there
// (spec.md §4.4 "Exact(offset, length)").
func (ei *ExprIndex) ExactAt(offset, length int) (ast.Expression, bool) {
	var best ast.Expression
	bestLen := -1
	for _, e := range ei.byOff[offset] {
		p := e.Pos()
		if p.Offset != offset || p.Length != length {
			continue
		}
		if bestLen == -1 || p.Length < bestLen {
			best, bestLen = e, p.Length
		}
	}
	return best, best != nil
}
