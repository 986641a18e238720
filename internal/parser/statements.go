package parser

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/lexer"
)

func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	start := p.cur.Pos
	p.expect(lexer.LBRACE)
	b := &ast.BlockStmt{P: start}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		before := p.cur
		stmt := p.parseStatement()
		if stmt != nil {
			b.Statements = append(b.Statements, stmt)
		}
		if p.cur == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return b
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlockStmt()
	case lexer.VAL, lexer.VAR:
		return p.parseDeclOrDestructuringStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHEN:
		return p.parseWhenStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.DO:
		return p.parseDoWhileStmt()
	case lexer.TRY:
		stmt := p.tryExprOrStmt()
		return stmt
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.BREAK:
		pos := p.cur.Pos
		p.next()
		p.consumeSemi()
		return &ast.BreakStmt{P: pos}
	case lexer.CONTINUE:
		pos := p.cur.Pos
		p.next()
		p.consumeSemi()
		return &ast.ContinueStmt{P: pos}
	case lexer.THROW:
		return p.parseThrowStmt()
	case lexer.GUARD:
		return p.parseGuardStmt()
	case lexer.USE:
		return p.parseUseStmt()
	case lexer.FUN, lexer.CLASS, lexer.INTERFACE, lexer.ENUM, lexer.OBJECT,
		lexer.ANNOTATION, lexer.DATA, lexer.BUILDER:
		decl := p.parseTopLevelDecl()
		if decl == nil {
			return nil
		}
		return &ast.DeclStmt{Decl: decl, P: decl.Pos()}
	default:
		start := p.cur.Pos
		expr := p.parseExpression(LOWEST)
		p.consumeSemi()
		return &ast.ExpressionStmt{Expr: expr, P: start}
	}
}

// parseDeclOrDestructuringStmt handles `val name = e`, `val (a, b) = e`,
// and property declarations used as local statements.
func (p *Parser) parseDeclOrDestructuringStmt() ast.Statement {
	start := p.cur.Pos
	mutable := p.curIs(lexer.VAR)
	if p.peekIs(lexer.LPAREN) {
		p.next() // val/var
		p.next() // (
		d := &ast.DestructuringDecl{Mutable: mutable, P: start}
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			if p.curIs(lexer.PLACEHOLDER) {
				d.Names = append(d.Names, "_")
				p.next()
			} else {
				d.Names = append(d.Names, p.expectIdent())
			}
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.RPAREN)
		p.expect(lexer.ASSIGN)
		d.Initializer = p.parseExpression(LOWEST)
		p.consumeSemi()
		return &ast.DeclStmt{Decl: d, P: start}
	}
	prop := p.parsePropertyDecl(nil, nil)
	return &ast.DeclStmt{Decl: prop, P: start}
}

// parseLetBindingHeader parses the `val x = e` / `var x = e` form used
// inside an `if (...)` or `guard` header, returning the binding pieces
// without consuming a trailing semicolon.
func (p *Parser) parseLetBindingHeader() (name string, mutable bool, init ast.Expression) {
	mutable = p.curIs(lexer.VAR)
	p.next() // val/var
	name = p.expectIdent()
	p.expect(lexer.ASSIGN)
	init = p.parseExpression(LOWEST)
	return
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.cur.Pos
	p.next() // if
	p.expect(lexer.LPAREN)

	s := &ast.IfStmt{P: start}
	if p.curIs(lexer.VAL) || p.curIs(lexer.VAR) {
		name, mutable, init := p.parseLetBindingHeader()
		s.LetBindingName = name
		s.LetMutable = mutable
		s.Cond = init
	} else {
		s.Cond = p.parseExpression(LOWEST)
	}
	p.expect(lexer.RPAREN)
	s.Then = p.parseStatement()
	if p.curIs(lexer.ELSE) {
		p.next()
		s.Else = p.parseStatement()
	}
	return s
}

func (p *Parser) parseWhenBranches(isExpr bool) []*ast.WhenBranch {
	p.expect(lexer.LBRACE)
	var branches []*ast.WhenBranch
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		b := &ast.WhenBranch{}
		switch {
		case p.cur.Type == lexer.ELSE:
			p.next()
			b.Else = true
		case p.cur.Type == lexer.IS:
			p.next()
			b.TypeTest = p.parseTypeRef()
		case p.cur.Type == lexer.IN || (p.cur.Type == lexer.NOT_IN):
			b.NotIn = p.cur.Type == lexer.NOT_IN
			p.next()
			b.RangeTest = p.parseExpression(LOWEST)
		default:
			b.Values = append(b.Values, p.parseExpression(LOWEST))
			for p.curIs(lexer.COMMA) {
				p.next()
				b.Values = append(b.Values, p.parseExpression(LOWEST))
			}
		}
		p.expect(lexer.ARROW)
		if isExpr {
			b.BodyExpr = p.parseExpression(LOWEST)
		} else if p.curIs(lexer.LBRACE) {
			b.Body = p.parseBlockStmt()
		} else {
			b.Body = p.parseStatement()
		}
		branches = append(branches, b)
		p.consumeSemi()
	}
	p.expect(lexer.RBRACE)
	return branches
}

func (p *Parser) parseWhenStmt() *ast.WhenStmt {
	start := p.cur.Pos
	p.next() // when
	s := &ast.WhenStmt{P: start}
	if p.curIs(lexer.LPAREN) {
		p.next()
		s.Subject = p.parseExpression(LOWEST)
		p.expect(lexer.RPAREN)
	}
	s.Branches = p.parseWhenBranches(false)
	return s
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.cur.Pos
	p.next() // for
	p.expect(lexer.LPAREN)
	name := p.expectIdent()
	p.expect(lexer.IN)
	iterable := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	body := p.parseStatement()
	return &ast.ForStmt{VarName: name, Iterable: iterable, Body: body, P: start}
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.cur.Pos
	p.next() // while
	p.expect(lexer.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	body := p.parseStatement()
	return &ast.WhileStmt{Cond: cond, Body: body, P: start}
}

func (p *Parser) parseDoWhileStmt() *ast.DoWhileStmt {
	start := p.cur.Pos
	p.next() // do
	body := p.parseStatement()
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	p.consumeSemi()
	return &ast.DoWhileStmt{Body: body, Cond: cond, P: start}
}

func (p *Parser) parseCatchClauses() ([]*ast.CatchClause, *ast.BlockStmt) {
	var catches []*ast.CatchClause
	for p.curIs(lexer.CATCH) {
		p.next()
		p.expect(lexer.LPAREN)
		name := p.expectIdent()
		var typ ast.TypeRef
		if p.curIs(lexer.COLON) {
			p.next()
			typ = p.parseTypeRef()
		}
		p.expect(lexer.RPAREN)
		body := p.parseBlockStmt()
		catches = append(catches, &ast.CatchClause{ParamName: name, ParamType: typ, Body: body})
	}
	var finally *ast.BlockStmt
	if p.curIs(lexer.FINALLY) {
		p.next()
		finally = p.parseBlockStmt()
	}
	return catches, finally
}

// tryExprOrStmt parses `try { ... } catch ... finally ...`. The node is
// built as a TryStmt; callers that need it as an expression (assignment
// RHS, etc.) instead go through parseTryExpr in expressions.go.
func (p *Parser) tryExprOrStmt() ast.Statement {
	start := p.cur.Pos
	p.next() // try
	body := p.parseBlockStmt()
	catches, finally := p.parseCatchClauses()
	return &ast.TryStmt{Body: body, Catches: catches, Finally: finally, P: start}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.cur.Pos
	p.next() // return
	s := &ast.ReturnStmt{P: start}
	if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		s.Value = p.parseExpression(LOWEST)
	}
	p.consumeSemi()
	return s
}

func (p *Parser) parseThrowStmt() *ast.ThrowStmt {
	start := p.cur.Pos
	p.next() // throw
	val := p.parseExpression(LOWEST)
	p.consumeSemi()
	return &ast.ThrowStmt{Value: val, P: start}
}

func (p *Parser) parseGuardStmt() *ast.GuardStmt {
	start := p.cur.Pos
	p.next() // guard
	name, mutable, init := p.parseLetBindingHeader()
	p.expect(lexer.ELSE)
	elseBody := p.parseStatement()
	return &ast.GuardStmt{Name: name, Mutable: mutable, Initializer: init, ElseBody: elseBody, P: start}
}

func (p *Parser) parseUseStmt() *ast.UseStmt {
	start := p.cur.Pos
	p.next() // use
	p.expect(lexer.LPAREN)
	s := &ast.UseStmt{P: start}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		p.expect(lexer.VAL)
		name := p.expectIdent()
		p.expect(lexer.ASSIGN)
		init := p.parseExpression(LOWEST)
		s.Bindings = append(s.Bindings, &ast.UseBinding{Name: name, Initializer: init})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	s.Body = p.parseBlockStmt()
	return s
}
