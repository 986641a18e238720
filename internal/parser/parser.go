// Package parser implements a tolerant recursive-descent/Pratt parser
// that turns a internal/lexer token stream into an internal/ast tree.
//
// Like the teacher's DWScript parser, it never stops at the first
// error: every parse function that hits something unexpected records a
// ParseError and attempts to resynchronize at the next statement or
// member boundary, so a single document with N typos still yields a
// tree the semantic index (internal/index) can query (spec.md §7).
package parser

import (
	"fmt"

	"github.com/novalang/novac/internal/ast"
	"github.com/novalang/novac/internal/lexer"
	"github.com/novalang/novac/internal/source"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // = += -= *= /= ??=
	ELVIS_PREC  // ?:
	PIPE_PREC   // |>
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALITY    // == != in !in is as
	COMPARISON  // < > <= >=
	RANGE_PREC  // .. ..<
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x
	POSTFIX     // f(x) a[i] a.b a?.b a?[i] a!! a?
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:       ASSIGNMENT,
	lexer.PLUS_ASSIGN:  ASSIGNMENT,
	lexer.MINUS_ASSIGN: ASSIGNMENT,
	lexer.STAR_ASSIGN:  ASSIGNMENT,
	lexer.SLASH_ASSIGN: ASSIGNMENT,
	lexer.ELVIS_ASSIGN: ASSIGNMENT,
	lexer.ELVIS:        ELVIS_PREC,
	lexer.PIPE:         PIPE_PREC,
	lexer.OR_OR:        LOGIC_OR,
	lexer.AND_AND:      LOGIC_AND,
	lexer.EQ:           EQUALITY,
	lexer.NEQ:          EQUALITY,
	lexer.IN:           EQUALITY,
	lexer.NOT_IN:       EQUALITY,
	lexer.IS:           EQUALITY,
	lexer.AS:           EQUALITY,
	lexer.LT:           COMPARISON,
	lexer.GT:           COMPARISON,
	lexer.LE:           COMPARISON,
	lexer.GE:           COMPARISON,
	lexer.RANGE:        RANGE_PREC,
	lexer.RANGE_EXCL:   RANGE_PREC,
	lexer.PLUS:         SUM,
	lexer.MINUS:        SUM,
	lexer.STAR:         PRODUCT,
	lexer.SLASH:        PRODUCT,
	lexer.PERCENT:      PRODUCT,
	lexer.LPAREN:       POSTFIX,
	lexer.LBRACKET:     POSTFIX,
	lexer.DOT:          POSTFIX,
	lexer.SAFE_DOT:     POSTFIX,
	lexer.SAFE_INDEX:   POSTFIX,
	lexer.NOT_NULL:     POSTFIX,
	lexer.QUESTION:     POSTFIX,
}

// ParseError is a single tolerant-mode diagnostic.
type ParseError struct {
	Pos     source.Position
	Message string
}

func (e *ParseError) Error() string { return e.Message }

// Parser holds the three-token lookahead window and accumulated
// errors. The extra token beyond cur/peek exists solely to disambiguate
// a lambda literal's `{ name -> ...}` / `{ name, ...` header from a set
// or map literal without backtracking.
type Parser struct {
	l      *lexer.Lexer
	cur    lexer.Token
	peek   lexer.Token
	peek2  lexer.Token
	errors []*ParseError
}

// New creates a Parser over the given lexer, priming the lookahead
// window with its first three tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	p.next()
	return p
}

// Errors returns accumulated parse diagnostics. Combined with
// p.l.Errors() (lexer diagnostics) this is the full tolerant-mode
// error set for a document.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.peek2
	p.peek2 = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool   { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool  { return p.peek.Type == t }
func (p *Parser) peek2Is(t lexer.TokenType) bool { return p.peek2.Type == t }

func (p *Parser) curPrec() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// expect advances past the current token if it matches t, recording an
// error and leaving the cursor in place otherwise.
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	tok := p.cur
	if p.cur.Type != t {
		p.errorf("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
		return tok
	}
	p.next()
	return tok
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, &ParseError{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)})
}

// expectIdent consumes an IDENT and returns its literal, or "" plus a
// recorded error.
func (p *Parser) expectIdent() string {
	if p.cur.Type != lexer.IDENT {
		p.errorf("expected identifier, got %s (%q)", p.cur.Type, p.cur.Literal)
		return ""
	}
	name := p.cur.Literal
	p.next()
	return name
}

// synchronize skips tokens until a likely statement/member boundary so
// one malformed construct doesn't cascade into unrelated errors.
func (p *Parser) synchronize() {
	for !p.curIs(lexer.EOF) {
		switch p.cur.Type {
		case lexer.SEMI:
			p.next()
			return
		case lexer.RBRACE, lexer.VAL, lexer.VAR, lexer.FUN, lexer.CLASS,
			lexer.INTERFACE, lexer.ENUM, lexer.OBJECT, lexer.ANNOTATION,
			lexer.IF, lexer.FOR, lexer.WHILE, lexer.RETURN, lexer.WHEN:
			return
		}
		p.next()
	}
}

// Parse parses a complete source file into a Program.
func Parse(file, input string) (*ast.Program, []*ParseError, []lexer.LexError) {
	l := lexer.New(file, input)
	p := New(l)
	prog := p.parseProgram()
	return prog, p.errors, l.Errors()
}

func (p *Parser) parseProgram() *ast.Program {
	start := p.cur.Pos
	prog := &ast.Program{}

	if p.curIs(lexer.PACKAGE) {
		prog.Package = p.parsePackageDecl()
	}
	for p.curIs(lexer.IMPORT) {
		prog.Imports = append(prog.Imports, p.parseImportDecl())
	}
	for !p.curIs(lexer.EOF) {
		before := p.cur
		decl := p.parseTopLevelDecl()
		if decl != nil {
			prog.Declarations = append(prog.Declarations, decl)
		}
		if p.cur == before {
			// parseTopLevelDecl made no progress; force it so we terminate.
			p.next()
		}
	}
	prog.P = start
	return prog
}

func (p *Parser) parsePackageDecl() *ast.PackageDecl {
	start := p.cur.Pos
	p.next()
	name := p.parseQualifiedName()
	p.consumeSemi()
	return &ast.PackageDecl{Name: name, P: start}
}

func (p *Parser) parseQualifiedName() string {
	name := p.expectIdent()
	for p.curIs(lexer.DOT) && p.peekIs(lexer.IDENT) {
		p.next()
		name += "." + p.expectIdent()
	}
	return name
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	start := p.cur.Pos
	p.next()
	d := &ast.ImportDecl{P: start}
	if p.curIs(lexer.IDENT) && p.cur.Literal == "java" && p.peekIs(lexer.DOT) {
		d.Java = true
	}
	name := p.expectIdent()
	for p.curIs(lexer.DOT) {
		p.next()
		if p.curIs(lexer.STAR) {
			d.Wildcard = true
			p.next()
			break
		}
		name += "." + p.expectIdent()
	}
	d.Qualified = name
	if p.curIs(lexer.AS) {
		p.next()
		d.Alias = p.expectIdent()
	}
	p.consumeSemi()
	return d
}

// consumeSemi treats statement terminators as optional: Nova's grammar
// (like the surface languages it borrows from) allows a newline to end
// a statement, but the lexer doesn't track newlines as tokens, so a
// stray SEMI is simply consumed when present.
func (p *Parser) consumeSemi() {
	for p.curIs(lexer.SEMI) {
		p.next()
	}
}

func (p *Parser) parseModifiersAndAnnotations() ([]string, []*ast.AnnotationRef) {
	var mods []string
	var annos []*ast.AnnotationRef
	for {
		if p.curIs(lexer.AT) {
			annos = append(annos, p.parseAnnotation())
			continue
		}
		if p.curIs(lexer.IDENT) && isModifierWord(p.cur.Literal) {
			mods = append(mods, p.cur.Literal)
			p.next()
			continue
		}
		break
	}
	return mods, annos
}

func isModifierWord(w string) bool {
	switch w {
	case "public", "private", "protected", "internal", "open", "override",
		"abstract", "final", "sealed", "suspend", "operator", "infix",
		"inline", "lateinit", "static":
		return true
	}
	return false
}

func (p *Parser) parseAnnotation() *ast.AnnotationRef {
	start := p.cur.Pos
	p.next() // @
	name := p.expectIdent()
	a := &ast.AnnotationRef{Name: name, Args: map[string]ast.Expression{}, P: start}
	if p.curIs(lexer.LPAREN) {
		p.next()
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			argName := p.expectIdent()
			p.expect(lexer.ASSIGN)
			a.Args[argName] = p.parseExpression(LOWEST)
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.RPAREN)
	}
	return a
}
