package lexer

import "testing"

func TestNextTokenBasics(t *testing.T) {
	input := `val x = 5
	x += 10
	`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"val", VAL},
		{"x", IDENT},
		{"=", ASSIGN},
		{"5", INT},
		{"x", IDENT},
		{"+=", PLUS_ASSIGN},
		{"10", INT},
		{"", EOF},
	}

	l := New("t.nova", input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `val var fun class interface enum object annotation data builder
		companion constructor init this super if else when for while do
		try catch finally return break continue throw guard use
		in is as null true false import package vararg reified`

	tests := []TokenType{
		VAL, VAR, FUN, CLASS, INTERFACE, ENUM, OBJECT, ANNOTATION, DATA, BUILDER,
		COMPANION, CONSTRUCTOR, INIT, THIS, SUPER, IF, ELSE, WHEN, FOR, WHILE, DO,
		TRY, CATCH, FINALLY, RETURN, BREAK, CONTINUE, THROW, GUARD, USE,
		IN, IS, AS, NULL, TRUE, FALSE, IMPORT, PACKAGE, VARARG, REIFIED,
		EOF,
	}

	l := New("t.nova", input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % += -= *= /= ??= ! == != < > <= >= && || -> . ?. ?[ ?: !! ? .. ..< |> : , ; ( ) { } [ ] @ $`

	tests := []TokenType{
		PLUS, MINUS, STAR, SLASH, PERCENT, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN,
		ELVIS_ASSIGN, BANG, EQ, NEQ, LT, GT, LE, GE, AND_AND, OR_OR, ARROW, DOT,
		SAFE_DOT, SAFE_INDEX, ELVIS, NOT_NULL, QUESTION, RANGE, RANGE_EXCL, PIPE,
		COLON, COMMA, SEMI, LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET, AT, DOLLAR,
		EOF,
	}

	l := New("t.nova", input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestPlaceholderVsIdentifier(t *testing.T) {
	l := New("t.nova", `_ _foo`)
	tok := l.NextToken()
	if tok.Type != PLACEHOLDER {
		t.Fatalf("expected PLACEHOLDER, got %s", tok.Type)
	}
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Literal != "_foo" {
		t.Fatalf("expected IDENT(_foo), got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"42", INT},
		{"3.14", FLOAT},
		{"1e10", FLOAT},
		{"1.5e-3", FLOAT},
		{"0", INT},
	}
	for _, tt := range tests {
		l := New("t.nova", tt.input)
		tok := l.NextToken()
		if tok.Type != tt.want || tok.Literal != tt.input {
			t.Errorf("input %q: got %s(%q), want %s(%q)", tt.input, tok.Type, tok.Literal, tt.want, tt.input)
		}
	}
}

func TestRangeVsRangeExclVsDot(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{".", DOT},
		{"..", RANGE},
		{"..<", RANGE_EXCL},
	}
	for _, tt := range tests {
		l := New("t.nova", tt.input)
		tok := l.NextToken()
		if tok.Type != tt.want {
			t.Errorf("input %q: got %s, want %s", tt.input, tok.Type, tt.want)
		}
	}
}

func TestElvisVsElvisAssignVsSafeDot(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"?:", ELVIS},
		{"??=", ELVIS_ASSIGN},
		{"?.", SAFE_DOT},
		{"?[", SAFE_INDEX},
		{"?", QUESTION},
	}
	for _, tt := range tests {
		l := New("t.nova", tt.input)
		tok := l.NextToken()
		if tok.Type != tt.want {
			t.Errorf("input %q: got %s, want %s", tt.input, tok.Type, tt.want)
		}
	}
}

func TestSimplePlainString(t *testing.T) {
	l := New("t.nova", `"hello world"`)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "hello world" {
		t.Fatalf("got %s(%q)", tok.Type, tok.Literal)
	}
	if l.NextToken().Type != EOF {
		t.Fatalf("expected EOF after closing quote")
	}
}

func TestStringEscapes(t *testing.T) {
	l := New("t.nova", `"a\nb\tc\\d\"e"`)
	tok := l.NextToken()
	want := "a\nb\tc\\d\"e"
	if tok.Type != STRING || tok.Literal != want {
		t.Fatalf("got %s(%q), want STRING(%q)", tok.Type, tok.Literal, want)
	}
}

func TestUnterminatedStringRecordsError(t *testing.T) {
	l := New("t.nova", `"abc`)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "abc" {
		t.Fatalf("got %s(%q)", tok.Type, tok.Literal)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lex error for unterminated string, got %d", len(l.Errors()))
	}
}

// TestBracedInterpolation checks "${a} text" produces
// STRING_INTERP_START, the inner expression's tokens, then
// STRING_INTERP_END once the matching `}` is reached.
func TestBracedInterpolation(t *testing.T) {
	l := New("t.nova", `"pre ${a} post"`)

	tok := l.NextToken()
	if tok.Type != STRING_INTERP_START || tok.Literal != "pre " {
		t.Fatalf("chunk 1: got %s(%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Literal != "a" {
		t.Fatalf("inner expr: got %s(%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != STRING_INTERP_END || tok.Literal != " post" {
		t.Fatalf("chunk 2: got %s(%q)", tok.Type, tok.Literal)
	}
}

// TestBareDollarInterpolation checks "$x done" desugars to the same
// token shape as "${x} done": a start chunk, the identifier, an end
// chunk, queued eagerly via the lexer's pending-token buffer.
func TestBareDollarInterpolation(t *testing.T) {
	l := New("t.nova", `"count: $n items"`)

	tok := l.NextToken()
	if tok.Type != STRING_INTERP_START || tok.Literal != "count: " {
		t.Fatalf("chunk 1: got %s(%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Literal != "n" {
		t.Fatalf("inner ident: got %s(%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != STRING_INTERP_END || tok.Literal != " items" {
		t.Fatalf("chunk 2: got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestNestedBracesInsideInterpolationDoNotCloseEarly(t *testing.T) {
	l := New("t.nova", `"${f({1})}"`)

	tok := l.NextToken()
	if tok.Type != STRING_INTERP_START || tok.Literal != "" {
		t.Fatalf("chunk 1: got %s(%q)", tok.Type, tok.Literal)
	}
	var types []TokenType
	for {
		tok = l.NextToken()
		if tok.Type == STRING_INTERP_END || tok.Type == EOF {
			break
		}
		types = append(types, tok.Type)
	}
	want := []TokenType{IDENT, LPAREN, LBRACE, INT, RBRACE, RPAREN}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, types[i], want[i])
		}
	}
}

func TestIllegalCharacterRecordsErrorAndContinues(t *testing.T) {
	l := New("t.nova", "a ` b")
	first := l.NextToken()
	if first.Type != IDENT || first.Literal != "a" {
		t.Fatalf("got %s(%q)", first.Type, first.Literal)
	}
	bad := l.NextToken()
	if bad.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", bad.Type)
	}
	next := l.NextToken()
	if next.Type != IDENT || next.Literal != "b" {
		t.Fatalf("lexer should continue past illegal char, got %s(%q)", next.Type, next.Literal)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 recorded lex error, got %d", len(l.Errors()))
	}
}

func TestLineCommentSkipped(t *testing.T) {
	l := New("t.nova", "val x // trailing comment\nval y")
	want := []TokenType{VAL, IDENT, VAL, IDENT, EOF}
	for i, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, w)
		}
	}
}

func TestBlockCommentSkipped(t *testing.T) {
	l := New("t.nova", "val /* block\n comment */ x")
	want := []TokenType{VAL, IDENT, EOF}
	for i, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, w)
		}
	}
}

func TestPositionTracking(t *testing.T) {
	l := New("t.nova", "val\nx")
	tok := l.NextToken() // val, line 1
	if tok.Pos.Line != 1 {
		t.Fatalf("val: expected line 1, got %d", tok.Pos.Line)
	}
	tok = l.NextToken() // x, line 2
	if tok.Pos.Line != 2 {
		t.Fatalf("x: expected line 2, got %d", tok.Pos.Line)
	}
}

func TestBOMStripped(t *testing.T) {
	l := New("t.nova", string(rune(0xFEFF))+"val x")
	tok := l.NextToken()
	if tok.Type != VAL {
		t.Fatalf("expected VAL after stripped BOM, got %s", tok.Type)
	}
}

func TestCharLiteral(t *testing.T) {
	l := New("t.nova", `'a' '\n'`)
	tok := l.NextToken()
	if tok.Type != CHAR || tok.Literal != "a" {
		t.Fatalf("got %s(%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != CHAR || tok.Literal != "\n" {
		t.Fatalf("got %s(%q)", tok.Type, tok.Literal)
	}
}
