// Package lexer tokenizes Nova source text.
//
// Nova's concrete syntax is a C/Kotlin-like surface over the AST that
// internal/ast defines: braces for blocks, `val`/`var` declarations,
// `fun` for functions, and the sugar forms internal/hir's lowering
// pass later desugars (safe-call, elvis, when, guard, use, pipeline,
// string interpolation, compound assignment, try-as-expression).
package lexer

import "github.com/novalang/novac/internal/source"

// TokenType classifies a Token. Grouped the way the teacher's own
// token_type.go groups DWScript's tokens: special, literal, keyword,
// operator, delimiter.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	COMMENT

	IDENT
	INT
	FLOAT
	STRING
	STRING_INTERP_START // the literal chunk before the first ${
	STRING_INTERP_MID   // a literal chunk between two ${ }
	STRING_INTERP_END   // the literal chunk after the last }
	CHAR

	literalEnd

	// Keywords
	VAL
	VAR
	FUN
	CLASS
	INTERFACE
	ENUM
	OBJECT
	ANNOTATION
	DATA
	BUILDER
	COMPANION
	CONSTRUCTOR
	INIT
	THIS
	SUPER
	IF
	ELSE
	WHEN
	FOR
	WHILE
	DO
	TRY
	CATCH
	FINALLY
	RETURN
	BREAK
	CONTINUE
	THROW
	GUARD
	USE
	IN
	NOT_IN
	IS
	AS
	NULL
	TRUE
	FALSE
	IMPORT
	PACKAGE
	VARARG
	REIFIED

	keywordEnd

	// Operators and delimiters
	ASSIGN       // =
	PLUS         // +
	MINUS        // -
	STAR         // *
	SLASH        // /
	PERCENT      // %
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	STAR_ASSIGN  // *=
	SLASH_ASSIGN // /=
	ELVIS_ASSIGN // ??=
	BANG         // !
	EQ           // ==
	NEQ          // !=
	LT           // <
	GT           // >
	LE           // <=
	GE           // >=
	AND_AND      // &&
	OR_OR        // ||
	ARROW        // ->
	DOT          // .
	SAFE_DOT     // ?.
	SAFE_INDEX   // ?[
	ELVIS        // ?:
	NOT_NULL     // !!
	QUESTION     // ?
	RANGE        // ..
	RANGE_EXCL   // ..<
	PIPE         // |>
	SPREAD       // *  (in argument position; disambiguated by parser)
	COLON        // :
	COMMA        // ,
	SEMI         // ;
	LPAREN       // (
	RPAREN       // )
	LBRACE       // {
	RBRACE       // }
	LBRACKET     // [
	RBRACKET     // ]
	AT           // @  (annotations)
	PLACEHOLDER  // _
	DOLLAR       // $  (bare interpolation, "$x")

	delimiterEnd
)

var keywords = map[string]TokenType{
	"val": VAL, "var": VAR, "fun": FUN, "class": CLASS, "interface": INTERFACE,
	"enum": ENUM, "object": OBJECT, "annotation": ANNOTATION, "data": DATA,
	"builder": BUILDER, "companion": COMPANION, "constructor": CONSTRUCTOR,
	"init": INIT, "this": THIS, "super": SUPER, "if": IF, "else": ELSE,
	"when": WHEN, "for": FOR, "while": WHILE, "do": DO, "try": TRY,
	"catch": CATCH, "finally": FINALLY, "return": RETURN, "break": BREAK,
	"continue": CONTINUE, "throw": THROW, "guard": GUARD, "use": USE,
	"in": IN, "is": IS, "as": AS, "null": NULL, "true": TRUE, "false": FALSE,
	"import": IMPORT, "package": PACKAGE, "vararg": VARARG, "reified": REIFIED,
}

// String names a token type for diagnostics and the `lex` CLI command.
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT", IDENT: "IDENT",
	INT: "INT", FLOAT: "FLOAT", STRING: "STRING", CHAR: "CHAR",
	STRING_INTERP_START: "STRING_INTERP_START", STRING_INTERP_MID: "STRING_INTERP_MID",
	STRING_INTERP_END: "STRING_INTERP_END",
	ASSIGN:            "=", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=", SLASH_ASSIGN: "/=",
	ELVIS_ASSIGN: "??=", BANG: "!", EQ: "==", NEQ: "!=", LT: "<", GT: ">",
	LE: "<=", GE: ">=", AND_AND: "&&", OR_OR: "||", ARROW: "->", DOT: ".",
	SAFE_DOT: "?.", SAFE_INDEX: "?[", ELVIS: "?:", NOT_NULL: "!!", QUESTION: "?",
	RANGE: "..", RANGE_EXCL: "..<", PIPE: "|>", COLON: ":", COMMA: ",", SEMI: ";",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	AT: "@", PLACEHOLDER: "_", DOLLAR: "$",
}

func init() {
	for name, tt := range keywords {
		tokenNames[tt] = name
	}
}

// LookupIdent classifies an identifier as a keyword or plain IDENT.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// Token is one lexical unit.
type Token struct {
	Type    TokenType
	Literal string
	Pos     source.Position
}

// LexError is a single tolerant-mode lexing diagnostic: an illegal
// character or malformed literal. The lexer never stops at the first
// one (per spec.md §7, parse/lex errors "do not block subsequent
// semantic queries").
type LexError struct {
	Pos     source.Position
	Message string
}
