package parser

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/lexer"
	"github.com/novalang/novac/internal/source"
)

// parseTypeRef parses a syntactic type: a simple or qualified name with
// optional generic arguments, a function type `(A, B) -> C`, and any
// number of trailing `?` nullability markers.
func (p *Parser) parseTypeRef() ast.TypeRef {
	start := p.cur.Pos

	var t ast.TypeRef
	if p.curIs(lexer.LPAREN) {
		t = p.parseFunctionType(start)
	} else {
		name := p.expectIdent()
		for p.curIs(lexer.DOT) {
			p.next()
			name += "." + p.expectIdent()
		}
		if p.curIs(lexer.LT) {
			p.next()
			var args []ast.TypeRef
			for !p.curIs(lexer.GT) && !p.curIs(lexer.EOF) {
				args = append(args, p.parseTypeRef())
				if p.curIs(lexer.COMMA) {
					p.next()
				}
			}
			p.expect(lexer.GT)
			t = &ast.GenericType{Name: name, Args: args, P: start}
		} else {
			t = &ast.SimpleType{Name: name, P: start}
		}
	}

	for p.curIs(lexer.QUESTION) {
		p.next()
		t = &ast.NullableType{Inner: t, P: start}
	}
	return t
}

func (p *Parser) parseFunctionType(start source.Position) ast.TypeRef {
	p.next() // (
	ft := &ast.FunctionType{P: start}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		ft.Params = append(ft.Params, p.parseTypeRef())
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.ARROW)
	ft.Return = p.parseTypeRef()
	return ft
}
