package index

// keywordDescriptions renders a short hover string for each reserved
// word the lexer recognizes (internal/lexer/token.go's keywords map).
var keywordDescriptions = map[string]string{
	"val":         "val — read-only property or local binding",
	"var":         "var — mutable property or local binding",
	"fun":         "fun — function or method declaration",
	"class":       "class — class declaration",
	"interface":   "interface — interface declaration",
	"enum":        "enum class — enumerated type declaration",
	"object":      "object — singleton declaration",
	"annotation":  "annotation class — annotation type declaration",
	"data":        "data — synthesizes toString/equals/hashCode/componentN/copy",
	"builder":     "builder — synthesizes a static builder() factory and fluent $Builder",
	"companion":   "companion object — a class's singleton companion",
	"constructor": "constructor — secondary constructor declaration",
	"init":        "init — initializer block, run during construction",
	"this":        "this — the current receiver",
	"super":       "super — the superclass receiver",
	"if":          "if — conditional expression/statement",
	"else":        "else — alternate branch of if/when",
	"when":        "when — multi-branch conditional",
	"for":         "for — iteration over an iterable",
	"while":       "while — pretest loop",
	"do":          "do-while — posttest loop",
	"try":         "try — exception-handling block",
	"catch":       "catch — exception handler clause",
	"finally":     "finally — always-run cleanup clause",
	"return":      "return — exits the enclosing function with a value",
	"break":       "break — exits the enclosing loop",
	"continue":    "continue — skips to the next loop iteration",
	"throw":       "throw — raises an exception",
	"guard":       "guard — early-exit binding, falls through to else on failure",
	"use":         "use — runs a block with automatic resource closing",
	"in":          "in — membership test or for-loop iterable clause",
	"is":          "is — type-check operator",
	"as":          "as — type-cast operator",
	"null":        "null — the null literal",
	"true":        "true — the boolean literal true",
	"false":       "false — the boolean literal false",
	"import":      "import — brings a name into scope",
	"package":     "package — declares the file's namespace",
	"vararg":      "vararg — marks a parameter as variadic",
	"reified":     "reified — a type parameter retained at runtime",
}

// builtinDescriptions covers the runtime-library surface (spec.md §6)
// that user code calls but never declares, so hover/completion can
// still describe it.
var builtinDescriptions = map[string]string{
	"println":  "fun println(value: Any?): Unit — prints value followed by a newline",
	"print":    "fun print(value: Any?): Unit — prints value with no trailing newline",
	"require":  "fun require(condition: Boolean, message: String): Unit — throws if condition is false",
	"error":    "fun error(message: String): Nothing — throws an IllegalStateException",
	"Ok":       "fun Ok(value: T): Result<T, E> — constructs a successful Result",
	"Err":      "fun Err(error: E): Result<T, E> — constructs a failed Result",
	"Some":     "fun Some(value: T): Option<T> — constructs a present Option",
	"None":     "val None: Option<Nothing> — the absent Option value",
}

// builtinTypeNames lists the built-in type names completion and hover
// treat as non-user classes (not renameable, always present).
var builtinTypeNames = map[string]bool{
	"Int": true, "Long": true, "Float": true, "Double": true, "Boolean": true,
	"Char": true, "Byte": true, "Short": true, "String": true, "Unit": true,
	"Nothing": true, "Any": true, "Array": true, "List": true, "Map": true,
	"Set": true, "Result": true, "Option": true,
}
