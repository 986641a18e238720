package parser

import (
	"strconv"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/lexer"
)

// parseExpression is the Pratt-parsing entry point: parse a prefix
// expression, then keep folding in infix/postfix operators whose
// precedence exceeds the caller's minimum.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return left
	}
	for !p.curIs(lexer.SEMI) && !p.curIs(lexer.EOF) && precedence < p.curPrec() {
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	start := p.cur.Pos
	switch p.cur.Type {
	case lexer.INT:
		n, err := strconv.ParseInt(p.cur.Literal, 0, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", p.cur.Literal)
		}
		lit := &ast.Literal{Kind: ast.LitInt, Text: p.cur.Literal, Int: n, P: start}
		p.next()
		return lit
	case lexer.FLOAT:
		f, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			p.errorf("invalid float literal %q", p.cur.Literal)
		}
		lit := &ast.Literal{Kind: ast.LitFloat, Text: p.cur.Literal, Flt: f, P: start}
		p.next()
		return lit
	case lexer.STRING:
		lit := &ast.Literal{Kind: ast.LitString, Text: p.cur.Literal, Str: p.cur.Literal, P: start}
		p.next()
		return lit
	case lexer.STRING_INTERP_START:
		return p.parseStringInterpolation()
	case lexer.CHAR:
		var r rune
		for _, c := range p.cur.Literal {
			r = c
			break
		}
		lit := &ast.Literal{Kind: ast.LitChar, Text: p.cur.Literal, Chr: r, P: start}
		p.next()
		return lit
	case lexer.TRUE, lexer.FALSE:
		lit := &ast.Literal{Kind: ast.LitBool, Text: p.cur.Literal, Bool: p.curIs(lexer.TRUE), P: start}
		p.next()
		return lit
	case lexer.NULL:
		p.next()
		return &ast.Literal{Kind: ast.LitNull, Text: "null", P: start}
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		return &ast.Identifier{Name: name, P: start}
	case lexer.THIS:
		p.next()
		return &ast.ThisExpr{P: start}
	case lexer.SUPER:
		p.next()
		return &ast.SuperExpr{P: start}
	case lexer.PLACEHOLDER:
		p.next()
		return &ast.PlaceholderExpr{P: start}
	case lexer.MINUS:
		p.next()
		return &ast.UnaryExpr{Op: ast.OpNeg, Operand: p.parseExpression(PREFIX), P: start}
	case lexer.BANG:
		p.next()
		return &ast.UnaryExpr{Op: ast.OpNot, Operand: p.parseExpression(PREFIX), P: start}
	case lexer.STAR:
		p.next()
		return &ast.SpreadExpr{Value: p.parseExpression(PREFIX), P: start}
	case lexer.LPAREN:
		p.next()
		e := p.parseExpression(LOWEST)
		p.expect(lexer.RPAREN)
		return e
	case lexer.LBRACE:
		return p.parseBraceExpr()
	case lexer.LBRACKET:
		return p.parseListLiteral()
	case lexer.IF:
		return p.parseIfExpr()
	case lexer.WHEN:
		return p.parseWhenExpr()
	case lexer.TRY:
		return p.parseTryExpr()
	case lexer.OBJECT:
		return p.parseObjectLiteral()
	case lexer.RETURN, lexer.BREAK, lexer.CONTINUE, lexer.THROW:
		return p.parseJumpAsExpr()
	}

	p.errorf("unexpected token %s (%q) in expression", p.cur.Type, p.cur.Literal)
	p.next()
	return nil
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	start := left.Pos()
	switch p.cur.Type {
	case lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LE, lexer.GE,
		lexer.AND_AND, lexer.OR_OR, lexer.IN, lexer.NOT_IN:
		op := binaryOpFor(p.cur.Type)
		prec := p.curPrec()
		p.next()
		right := p.parseExpression(prec)
		return &ast.BinaryExpr{Op: op, Left: left, Right: right, P: start}

	case lexer.IS:
		p.next()
		t := p.parseTypeRef()
		return &ast.TypeCheckExpr{Value: left, Type: t, P: start}

	case lexer.AS:
		p.next()
		t := p.parseTypeRef()
		return &ast.TypeCastExpr{Value: left, Type: t, P: start}

	case lexer.RANGE, lexer.RANGE_EXCL:
		excl := p.curIs(lexer.RANGE_EXCL)
		p.next()
		right := p.parseExpression(RANGE_PREC)
		return &ast.RangeExpr{Start: left, End: right, Exclusive: excl, P: start}

	case lexer.ELVIS:
		p.next()
		right := p.parseExpression(ELVIS_PREC)
		return &ast.ElvisExpr{Left: left, Right: right, P: start}

	case lexer.PIPE:
		p.next()
		right := p.parseExpression(PIPE_PREC)
		return &ast.PipelineExpr{Left: left, Right: right, P: start}

	case lexer.ASSIGN:
		p.next()
		val := p.parseExpression(ASSIGNMENT - 1)
		return &ast.AssignExpr{Target: left, Value: val, P: start}

	case lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.STAR_ASSIGN, lexer.SLASH_ASSIGN:
		op := compoundOpFor(p.cur.Type)
		p.next()
		val := p.parseExpression(ASSIGNMENT - 1)
		return &ast.CompoundAssignExpr{Op: op, Target: left, Value: val, P: start}

	case lexer.ELVIS_ASSIGN:
		p.next()
		val := p.parseExpression(ASSIGNMENT - 1)
		return &ast.CompoundAssignExpr{Elvis: true, Target: left, Value: val, P: start}

	case lexer.LPAREN:
		return p.parseCallExpr(left)

	case lexer.LBRACKET:
		return p.parseIndexOrSlice(left)

	case lexer.DOT:
		p.next()
		name := p.expectIdent()
		return &ast.MemberExpr{Target: left, Name: name, P: start}

	case lexer.SAFE_DOT:
		p.next()
		if p.curIs(lexer.LBRACE) {
			body := p.parseBlockStmt()
			return &ast.ScopeShorthandExpr{Target: left, Body: body, P: start}
		}
		name := p.expectIdent()
		if p.curIs(lexer.LPAREN) {
			p.next()
			args := p.parseExpressionList(lexer.RPAREN)
			p.expect(lexer.RPAREN)
			call := &ast.CallExpr{Callee: &ast.MemberExpr{Target: left, Name: name, P: start}, Args: args, P: start}
			return &ast.SafeCallExpr{Target: left, Call: call, Member: name, Args: args, P: start}
		}
		// property-style safe access: no Call, no Args.
		return &ast.SafeCallExpr{Target: left, Member: name, P: start}

	case lexer.SAFE_INDEX:
		p.next()
		idx := p.parseExpression(LOWEST)
		p.expect(lexer.RBRACKET)
		return &ast.SafeIndexExpr{Target: left, Index: idx, P: start}

	case lexer.NOT_NULL:
		p.next()
		return &ast.NotNullExpr{Value: left, P: start}

	case lexer.QUESTION:
		p.next()
		return &ast.ErrorPropagationExpr{Value: left, P: start}
	}

	p.errorf("unexpected infix token %s", p.cur.Type)
	p.next()
	return left
}

func binaryOpFor(t lexer.TokenType) ast.BinaryOp {
	switch t {
	case lexer.PLUS:
		return ast.OpAdd
	case lexer.MINUS:
		return ast.OpSub
	case lexer.STAR:
		return ast.OpMul
	case lexer.SLASH:
		return ast.OpDiv
	case lexer.PERCENT:
		return ast.OpMod
	case lexer.EQ:
		return ast.OpEq
	case lexer.NEQ:
		return ast.OpNeq
	case lexer.LT:
		return ast.OpLt
	case lexer.LE:
		return ast.OpLe
	case lexer.GT:
		return ast.OpGt
	case lexer.GE:
		return ast.OpGe
	case lexer.AND_AND:
		return ast.OpAnd
	case lexer.OR_OR:
		return ast.OpOr
	case lexer.IN:
		return ast.OpIn
	case lexer.NOT_IN:
		return ast.OpNotIn
	default:
		return ast.OpAdd
	}
}

func compoundOpFor(t lexer.TokenType) ast.BinaryOp {
	switch t {
	case lexer.PLUS_ASSIGN:
		return ast.OpAdd
	case lexer.MINUS_ASSIGN:
		return ast.OpSub
	case lexer.STAR_ASSIGN:
		return ast.OpMul
	case lexer.SLASH_ASSIGN:
		return ast.OpDiv
	default:
		return ast.OpAdd
	}
}

// parseStringInterpolation assembles a "...${e}..." literal from the
// chunk/expression token stream the lexer already split apart (see
// internal/lexer's interpStack and pending-token handling).
func (p *Parser) parseStringInterpolation() *ast.StringInterpolationExpr {
	start := p.cur.Pos
	var parts []ast.InterpPart
	parts = append(parts, ast.InterpPart{Text: p.cur.Literal})
	p.next()

	for {
		expr := p.parseExpression(LOWEST)
		parts = append(parts, ast.InterpPart{Expr: expr})

		switch p.cur.Type {
		case lexer.STRING_INTERP_MID:
			parts = append(parts, ast.InterpPart{Text: p.cur.Literal})
			p.next()
			continue
		case lexer.STRING_INTERP_END:
			parts = append(parts, ast.InterpPart{Text: p.cur.Literal})
			p.next()
		default:
			p.errorf("malformed string interpolation, got %s", p.cur.Type)
		}
		break
	}
	return &ast.StringInterpolationExpr{Parts: parts, P: start}
}

// parseCallExpr parses `callee(args)`, supporting named arguments
// (`name = expr`), spread arguments (`*expr`), and a trailing lambda
// (`f(x) { ... }`).
func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	start := callee.Pos()
	p.next() // (
	call := &ast.CallExpr{Callee: callee, NamedArgs: map[string]ast.Expression{}, P: start}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.STAR) {
			p.next()
			call.Args = append(call.Args, &ast.SpreadExpr{Value: p.parseExpression(PREFIX), P: start})
		} else if p.curIs(lexer.IDENT) && p.peekIs(lexer.ASSIGN) {
			name := p.cur.Literal
			p.next()
			p.next() // =
			call.NamedArgs[name] = p.parseExpression(LOWEST)
		} else {
			call.Args = append(call.Args, p.parseExpression(LOWEST))
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	if p.curIs(lexer.LBRACE) {
		call.TrailingLambda = p.parseLambdaBody()
	}
	return call
}

// parseLambdaBody parses the `{ params -> body }` form used both as a
// standalone lambda literal and as a trailing-lambda call argument.
func (p *Parser) parseLambdaBody() *ast.LambdaExpr {
	start := p.cur.Pos
	p.next() // {
	lam := &ast.LambdaExpr{P: start}
	if (p.curIs(lexer.IDENT) && (p.peekIs(lexer.ARROW) || p.peekIs(lexer.COMMA))) || p.curIs(lexer.ARROW) {
		for !p.curIs(lexer.ARROW) && !p.curIs(lexer.EOF) {
			lam.Params = append(lam.Params, &ast.ParameterDecl{Name: p.expectIdent(), P: p.cur.Pos})
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.ARROW)
	}
	body := &ast.BlockStmt{P: p.cur.Pos}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		before := p.cur
		stmt := p.parseStatement()
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
		if p.cur == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	lam.Body = body
	return lam
}

// parseBraceExpr disambiguates a lambda literal from a set/map literal,
// both of which open with `{`: a leading `ident ->`/`ident,`/bare `->`
// commits to a lambda; a first element followed by `:` commits to a
// map; otherwise it's a set.
func (p *Parser) parseBraceExpr() ast.Expression {
	start := p.cur.Pos
	if isLambdaHeader(p) {
		return p.parseLambdaBody()
	}
	p.next() // {
	if p.curIs(lexer.RBRACE) {
		p.next()
		return &ast.CollectionLiteralExpr{Kind: ast.CollSet, P: start}
	}
	first := p.parseExpression(LOWEST)
	if p.curIs(lexer.COLON) {
		p.next()
		firstVal := p.parseExpression(LOWEST)
		lit := &ast.CollectionLiteralExpr{Kind: ast.CollMap, Keys: []ast.Expression{first}, Values: []ast.Expression{firstVal}, P: start}
		for p.curIs(lexer.COMMA) {
			p.next()
			if p.curIs(lexer.RBRACE) {
				break
			}
			k := p.parseExpression(LOWEST)
			p.expect(lexer.COLON)
			v := p.parseExpression(LOWEST)
			lit.Keys = append(lit.Keys, k)
			lit.Values = append(lit.Values, v)
		}
		p.expect(lexer.RBRACE)
		return lit
	}
	lit := &ast.CollectionLiteralExpr{Kind: ast.CollSet, Elements: []ast.Expression{first}, P: start}
	for p.curIs(lexer.COMMA) {
		p.next()
		if p.curIs(lexer.RBRACE) {
			break
		}
		lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
	}
	p.expect(lexer.RBRACE)
	return lit
}

// isLambdaHeader is called with cur == LBRACE; it looks at the two
// tokens inside the braces to tell `{ -> ... }` / `{ x -> ... }` /
// `{ x, y... }` lambda headers apart from a set/map literal's first
// element, without needing to backtrack.
func isLambdaHeader(p *Parser) bool {
	if p.peekIs(lexer.ARROW) {
		return true
	}
	if p.peekIs(lexer.IDENT) && (p.peek2Is(lexer.ARROW) || p.peek2Is(lexer.COMMA)) {
		return true
	}
	return false
}

func (p *Parser) parseListLiteral() ast.Expression {
	start := p.cur.Pos
	p.next() // [
	lit := &ast.CollectionLiteralExpr{Kind: ast.CollList, SpreadAt: map[int]bool{}, P: start}
	idx := 0
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.STAR) {
			p.next()
			lit.Elements = append(lit.Elements, p.parseExpression(PREFIX))
			lit.SpreadAt[idx] = true
		} else {
			lit.Elements = append(lit.Elements, p.parseExpression(LOWEST))
		}
		idx++
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return lit
}

// parseIndexOrSlice parses `target[i]` or, when a range operator
// follows the first expression, `target[a..b]` / `target[a..]`.
func (p *Parser) parseIndexOrSlice(target ast.Expression) ast.Expression {
	start := target.Pos()
	p.next() // [
	first := p.parseExpression(LOWEST)
	if p.curIs(lexer.RANGE) || p.curIs(lexer.RANGE_EXCL) {
		excl := p.curIs(lexer.RANGE_EXCL)
		p.next()
		var end ast.Expression
		if !p.curIs(lexer.RBRACKET) {
			end = p.parseExpression(LOWEST)
		}
		p.expect(lexer.RBRACKET)
		return &ast.SliceExpr{Target: target, Start: first, End: end, Exclusive: excl, P: start}
	}
	p.expect(lexer.RBRACKET)
	return &ast.IndexExpr{Target: target, Index: first, P: start}
}

func (p *Parser) parseIfExpr() ast.Expression {
	start := p.cur.Pos
	p.next() // if
	p.expect(lexer.LPAREN)
	cond := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	then := p.parseExpression(LOWEST)
	p.expect(lexer.ELSE)
	els := p.parseExpression(LOWEST)
	return &ast.IfExpr{Cond: cond, Then: then, Else: els, P: start}
}

func (p *Parser) parseWhenExpr() ast.Expression {
	start := p.cur.Pos
	p.next() // when
	e := &ast.WhenExpr{P: start}
	if p.curIs(lexer.LPAREN) {
		p.next()
		e.Subject = p.parseExpression(LOWEST)
		p.expect(lexer.RPAREN)
	}
	e.Branches = p.parseWhenBranches(true)
	return e
}

func (p *Parser) parseTryExpr() ast.Expression {
	start := p.cur.Pos
	p.next() // try
	body := p.parseBlockStmt()
	catches, finally := p.parseCatchClauses()
	return &ast.TryExpr{Body: body, Catches: catches, Finally: finally, P: start}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.cur.Pos
	p.next() // object
	lit := &ast.ObjectLiteralExpr{P: start}
	if p.curIs(lexer.COLON) {
		p.next()
		for {
			t := p.parseTypeRef()
			if p.curIs(lexer.LPAREN) {
				lit.SuperClass = t
				p.next()
				lit.SuperArgs = p.parseExpressionList(lexer.RPAREN)
				p.expect(lexer.RPAREN)
			} else {
				lit.Interfaces = append(lit.Interfaces, t)
			}
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		mods, annos := p.parseModifiersAndAnnotations()
		switch p.cur.Type {
		case lexer.FUN:
			lit.Methods = append(lit.Methods, p.parseFunctionDecl(mods, annos))
		case lexer.VAL, lexer.VAR:
			lit.Fields = append(lit.Fields, p.parsePropertyDecl(mods, annos))
		default:
			p.errorf("unexpected token %s in object literal body", p.cur.Type)
			p.synchronize()
		}
	}
	p.expect(lexer.RBRACE)
	return lit
}

// parseJumpAsExpr lets a jump statement (return/break/continue/throw)
// appear in expression position, e.g. as a when-branch body or a
// guard's else clause (spec.md §4.1).
func (p *Parser) parseJumpAsExpr() ast.Expression {
	start := p.cur.Pos
	switch p.cur.Type {
	case lexer.RETURN:
		p.next()
		var val ast.Expression
		if !p.curIs(lexer.SEMI) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			val = p.parseExpression(LOWEST)
		}
		return &ast.JumpAsExpr{Kind: ast.JumpReturn, Value: val, P: start}
	case lexer.BREAK:
		p.next()
		return &ast.JumpAsExpr{Kind: ast.JumpBreak, P: start}
	case lexer.CONTINUE:
		p.next()
		return &ast.JumpAsExpr{Kind: ast.JumpContinue, P: start}
	case lexer.THROW:
		p.next()
		val := p.parseExpression(LOWEST)
		return &ast.JumpAsExpr{Kind: ast.JumpThrow, Value: val, P: start}
	}
	return nil
}
