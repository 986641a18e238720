package parser

import (
	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/lexer"
)

// parseTopLevelDecl parses one member at file scope or inside a class
// body: a class/interface/enum/object/annotation, a function, a
// property, a constructor, an init block, or a typealias.
func (p *Parser) parseTopLevelDecl() ast.Declaration {
	mods, annos := p.parseModifiersAndAnnotations()

	switch p.cur.Type {
	case lexer.DATA:
		annos = append(annos, &ast.AnnotationRef{Name: "data", P: p.cur.Pos})
		p.next()
		return p.parseClassDecl(mods, annos)
	case lexer.BUILDER:
		annos = append(annos, &ast.AnnotationRef{Name: "builder", P: p.cur.Pos})
		p.next()
		return p.parseClassDecl(mods, annos)
	case lexer.CLASS, lexer.INTERFACE, lexer.ENUM, lexer.OBJECT, lexer.ANNOTATION:
		return p.parseClassDecl(mods, annos)
	case lexer.FUN:
		return p.parseFunctionDecl(mods, annos)
	case lexer.VAL, lexer.VAR:
		return p.parsePropertyDecl(mods, annos)
	case lexer.CONSTRUCTOR:
		return p.parseConstructorDecl(mods)
	case lexer.INIT:
		return p.parseInitBlock()
	case lexer.IDENT:
		if p.cur.Literal == "typealias" {
			return p.parseTypeAliasDecl()
		}
	}

	p.errorf("unexpected token %s (%q) in declaration", p.cur.Type, p.cur.Literal)
	p.synchronize()
	return nil
}

func classKindFor(t lexer.TokenType) ast.ClassKind {
	switch t {
	case lexer.INTERFACE:
		return ast.KindInterface
	case lexer.ENUM:
		return ast.KindEnum
	case lexer.OBJECT:
		return ast.KindObject
	case lexer.ANNOTATION:
		return ast.KindAnnotation
	default:
		return ast.KindClass
	}
}

func (p *Parser) parseClassDecl(mods []string, annos []*ast.AnnotationRef) *ast.ClassDecl {
	start := p.cur.Pos
	kind := classKindFor(p.cur.Type)
	p.next()

	d := &ast.ClassDecl{Kind: kind, Modifiers: mods, Annotations: annos, P: start}
	d.Name = p.expectIdent()

	if p.curIs(lexer.LT) {
		d.TypeParams = p.parseTypeParams()
	}

	if p.curIs(lexer.LPAREN) {
		d.PrimaryCtor = p.parsePrimaryCtorParams(d)
	}

	if p.curIs(lexer.COLON) {
		p.next()
		for {
			t := p.parseTypeRef()
			if p.curIs(lexer.LPAREN) {
				d.SuperClass = t
				p.next()
				d.SuperArgs = p.parseExpressionList(lexer.RPAREN)
				p.expect(lexer.RPAREN)
			} else {
				d.Interfaces = append(d.Interfaces, t)
			}
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}

	if p.curIs(lexer.LBRACE) {
		p.next()
		if kind == ast.KindEnum {
			p.parseEnumEntries(d)
		}
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			p.parseClassMember(d)
		}
		p.expect(lexer.RBRACE)
	}
	return d
}

func (p *Parser) parseTypeParams() []*ast.TypeParam {
	p.next() // <
	var params []*ast.TypeParam
	for !p.curIs(lexer.GT) && !p.curIs(lexer.EOF) {
		tp := &ast.TypeParam{Name: p.expectIdent()}
		if p.curIs(lexer.COLON) {
			p.next()
			tp.Bound = p.parseTypeRef()
		}
		params = append(params, tp)
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.GT)
	return params
}

// parsePrimaryCtorParams parses `(val x: T = d, ...)`, promoting
// val/var-prefixed parameters to fields on the owning class.
func (p *Parser) parsePrimaryCtorParams(owner *ast.ClassDecl) *ast.ConstructorDecl {
	start := p.cur.Pos
	p.next() // (
	ctor := &ast.ConstructorDecl{P: start}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		param := p.parseParam()
		ctor.Params = append(ctor.Params, param)
		if param.PropertyOf {
			owner.Fields = append(owner.Fields, &ast.PropertyDecl{
				Name: param.Name, Mutable: param.Mutable, Type: param.Type,
				IsPrimaryCtorArg: true, P: param.P,
			})
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return ctor
}

func (p *Parser) parseParam() *ast.ParameterDecl {
	start := p.cur.Pos
	param := &ast.ParameterDecl{P: start}
	if p.curIs(lexer.VAL) {
		param.PropertyOf = true
		p.next()
	} else if p.curIs(lexer.VAR) {
		param.PropertyOf = true
		param.Mutable = true
		p.next()
	}
	if p.curIs(lexer.VARARG) {
		param.Vararg = true
		p.next()
	}
	param.Name = p.expectIdent()
	if p.curIs(lexer.COLON) {
		p.next()
		param.Type = p.parseTypeRef()
	}
	if p.curIs(lexer.ASSIGN) {
		p.next()
		param.Default = p.parseExpression(LOWEST)
	}
	return param
}

func (p *Parser) parseEnumEntries(d *ast.ClassDecl) {
	for p.curIs(lexer.IDENT) {
		start := p.cur.Pos
		entry := &ast.EnumEntryDecl{Name: p.cur.Literal, P: start}
		p.next()
		if p.curIs(lexer.LPAREN) {
			p.next()
			entry.Args = p.parseExpressionList(lexer.RPAREN)
			p.expect(lexer.RPAREN)
		}
		d.EnumEntries = append(d.EnumEntries, entry)
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if p.curIs(lexer.SEMI) {
		p.next()
	}
}

func (p *Parser) parseClassMember(owner *ast.ClassDecl) {
	mods, annos := p.parseModifiersAndAnnotations()

	if p.curIs(lexer.COMPANION) {
		p.next()
		companion := p.parseClassDecl(mods, annos)
		companion.Kind = ast.KindObject
		if companion.Name == "" {
			companion.Name = "Companion"
		}
		owner.NestedClasses = append(owner.NestedClasses, companion)
		return
	}

	switch p.cur.Type {
	case lexer.CLASS, lexer.INTERFACE, lexer.ENUM, lexer.OBJECT, lexer.ANNOTATION, lexer.DATA, lexer.BUILDER:
		nested := p.parseTopLevelDecl0(mods, annos)
		if nc, ok := nested.(*ast.ClassDecl); ok {
			owner.NestedClasses = append(owner.NestedClasses, nc)
		}
	case lexer.FUN:
		owner.Methods = append(owner.Methods, p.parseFunctionDecl(mods, annos))
	case lexer.VAL, lexer.VAR:
		owner.Fields = append(owner.Fields, p.parsePropertyDecl(mods, annos))
	case lexer.CONSTRUCTOR:
		owner.Constructors = append(owner.Constructors, p.parseConstructorDecl(mods))
	case lexer.INIT:
		owner.InitBlocks = append(owner.InitBlocks, p.parseInitBlock())
	default:
		p.errorf("unexpected token %s (%q) in class body", p.cur.Type, p.cur.Literal)
		p.synchronize()
	}
}

// parseTopLevelDecl0 re-dispatches with already-parsed modifiers, used
// for nested class declarations that went through parseModifiersAndAnnotations
// in parseClassMember rather than parseTopLevelDecl.
func (p *Parser) parseTopLevelDecl0(mods []string, annos []*ast.AnnotationRef) ast.Declaration {
	switch p.cur.Type {
	case lexer.DATA:
		annos = append(annos, &ast.AnnotationRef{Name: "data", P: p.cur.Pos})
		p.next()
	case lexer.BUILDER:
		annos = append(annos, &ast.AnnotationRef{Name: "builder", P: p.cur.Pos})
		p.next()
	}
	return p.parseClassDecl(mods, annos)
}

func (p *Parser) parseFunctionDecl(mods []string, annos []*ast.AnnotationRef) *ast.FunctionDecl {
	start := p.cur.Pos
	p.next() // fun
	d := &ast.FunctionDecl{Modifiers: mods, Annotations: annos, P: start}

	if p.curIs(lexer.LT) {
		d.TypeParams = p.parseTypeParams()
		for _, tp := range d.TypeParams {
			if tp.Bound == nil {
				// reified markers are not recorded; a `reified` keyword
				// before a parameter is skipped below.
			}
		}
	}

	// Extension function: `fun Receiver.name(...)`.
	nameOrRecv := p.expectIdent()
	if p.curIs(lexer.DOT) {
		d.ReceiverType = &ast.SimpleType{Name: nameOrRecv, P: start}
		p.next()
		d.Name = p.expectIdent()
	} else {
		d.Name = nameOrRecv
	}

	p.expect(lexer.LPAREN)
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.REIFIED) {
			p.next()
		}
		d.Params = append(d.Params, p.parseParam())
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)

	if p.curIs(lexer.COLON) {
		p.next()
		d.ReturnType = p.parseTypeRef()
	}

	if p.curIs(lexer.ASSIGN) {
		p.next()
		d.ExprBody = p.parseExpression(LOWEST)
		p.consumeSemi()
	} else if p.curIs(lexer.LBRACE) {
		d.Body = p.parseBlockStmt()
	}
	return d
}

func (p *Parser) parseConstructorDecl(mods []string) *ast.ConstructorDecl {
	start := p.cur.Pos
	p.next() // constructor
	d := &ast.ConstructorDecl{P: start}
	p.expect(lexer.LPAREN)
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		d.Params = append(d.Params, p.parseParam())
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	if p.curIs(lexer.COLON) {
		p.next()
		p.expect(lexer.THIS)
		p.expect(lexer.LPAREN)
		d.DelegatesThis = true
		d.DelegationArgs = p.parseExpressionList(lexer.RPAREN)
		p.expect(lexer.RPAREN)
	}
	d.Body = p.parseBlockStmt()
	return d
}

func (p *Parser) parseInitBlock() *ast.InitBlock {
	start := p.cur.Pos
	p.next() // init
	return &ast.InitBlock{Body: p.parseBlockStmt(), P: start}
}

func (p *Parser) parsePropertyDecl(mods []string, annos []*ast.AnnotationRef) *ast.PropertyDecl {
	start := p.cur.Pos
	mutable := p.curIs(lexer.VAR)
	p.next() // val/var

	d := &ast.PropertyDecl{Mutable: mutable, Modifiers: mods, Annotations: annos, P: start}

	// Destructuring form: `val (a, b) = e` is parsed by the caller
	// (parseStatement) as a DestructuringDecl; top-level/class-member
	// position only allows the plain name form.
	name := p.expectIdent()
	if p.curIs(lexer.DOT) {
		d.ReceiverType = &ast.SimpleType{Name: name, P: start}
		p.next()
		name = p.expectIdent()
	}
	d.Name = name

	if p.curIs(lexer.COLON) {
		p.next()
		d.Type = p.parseTypeRef()
	}
	if p.curIs(lexer.ASSIGN) {
		p.next()
		d.Initializer = p.parseExpression(LOWEST)
	}

	for p.curIs(lexer.IDENT) && (p.cur.Literal == "get" || p.cur.Literal == "set") {
		if p.cur.Literal == "get" {
			p.next()
			p.expect(lexer.LPAREN)
			p.expect(lexer.RPAREN)
			if p.curIs(lexer.ASSIGN) {
				p.next()
				expr := p.parseExpression(LOWEST)
				d.GetterBody = &ast.BlockStmt{Statements: []ast.Statement{&ast.ReturnStmt{Value: expr, P: expr.Pos()}}, P: expr.Pos()}
			} else {
				d.GetterBody = p.parseBlockStmt()
			}
		} else {
			p.next()
			p.expect(lexer.LPAREN)
			d.SetterParamName = p.expectIdent()
			p.expect(lexer.RPAREN)
			d.SetterBody = p.parseBlockStmt()
		}
	}

	p.consumeSemi()
	return d
}

func (p *Parser) parseTypeAliasDecl() *ast.TypeAliasDecl {
	start := p.cur.Pos
	p.next() // typealias
	name := p.expectIdent()
	p.expect(lexer.ASSIGN)
	t := p.parseTypeRef()
	p.consumeSemi()
	return &ast.TypeAliasDecl{Name: name, Type: t, P: start}
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	for !p.curIs(end) && !p.curIs(lexer.EOF) {
		list = append(list, p.parseExpression(LOWEST))
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	return list
}
