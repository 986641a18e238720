package index

import (
	"github.com/novalang/novac/internal/ast"
)

// SignatureHelp is the resolved callee plus which positional parameter
// the cursor currently sits in.
type SignatureHelp struct {
	Label           string
	Params          []string
	ActiveParameter int
}

// SignatureHelp scans left from offset through unmatched parentheses
// to find the enclosing call's opening paren and the identifier
// preceding it, counting top-level commas to find the active
// parameter (spec.md §4.4 "Signature help").
func (idx *Index) SignatureHelp(uri string, offset int) (*SignatureHelp, bool) {
	b, ok := idx.Bundle(uri)
	if !ok {
		return nil, false
	}
	content := idx.Content(uri)
	if offset > len(content) {
		offset = len(content)
	}

	depth := 0
	commas := 0
	i := offset - 1
	for i >= 0 {
		switch content[i] {
		case ')', ']', '}':
			depth++
		case '(':
			if depth == 0 {
				goto found
			}
			depth--
		case '[', '{':
			depth--
		case ',':
			if depth == 0 {
				commas++
			}
		}
		i--
	}
	return nil, false

found:
	nameEnd := i
	nameStart := nameEnd
	for nameStart > 0 && isIdentByte(content[nameStart-1]) {
		nameStart--
	}
	if nameStart == nameEnd {
		return nil, false
	}
	name := content[nameStart:nameEnd]

	if decl, ok := resolveDecl(b, name, nameStart); ok {
		if fn, ok := decl.(*ast.FunctionDecl); ok {
			params := make([]string, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = p.Name
			}
			active := commas
			if active >= len(params) {
				active = len(params) - 1
			}
			return &SignatureHelp{Label: fn.Name, Params: params, ActiveParameter: active}, true
		}
	}
	if desc, ok := builtinDescriptions[name]; ok {
		return &SignatureHelp{Label: desc, ActiveParameter: commas}, true
	}
	return nil, false
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
