package lexer

import (
	"fmt"
	"sort"
)

// TokenType represents the type of a token
type TokenType string

// Span represents the source location of a token
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Start    int    // index in []rune
	End      int    // exclusive end index
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Raw   string // exact runes from source
	Value string // decoded value (string contents, comment text, operator name)
	Span  Span

	// SpaceBefore and SpaceAfter record whether whitespace (or the start/end of
	// a line) surrounds the token. Infix operator spacing is checked with them.
	SpaceBefore bool
	SpaceAfter  bool

	// BeginsInterpolation is set on STRING tokens that stopped at an unescaped
	// '{'. The string resumes after the matching '}' via TreatAsString.
	BeginsInterpolation bool
}

// Token type constants
const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"
	NEWLINE TokenType = "NEWLINE"
	COMMENT TokenType = "COMMENT"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	// OPERATOR is any user-definable operator symbol (+, ==, .., &, ...).
	OPERATOR TokenType = "OPERATOR"

	// Punctuation carved out of operator runs
	BIND   TokenType = ":="
	ASSIGN TokenType = "="
	COLON  TokenType = ":"
	ARROW  TokenType = "->"
	DOT    TokenType = "."

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	LGENERIC  TokenType = "<"
	RGENERIC  TokenType = ">"

	// Keywords
	VAR      TokenType = "VAR"
	DEF      TokenType = "DEF"
	METHOD   TokenType = "METHOD"
	CLASS    TokenType = "CLASS"
	INHERITS TokenType = "INHERITS"
	IMPORT   TokenType = "IMPORT"
	DIALECT  TokenType = "DIALECT"
	RETURN   TokenType = "RETURN"
	TYPE     TokenType = "TYPE"
	OBJECT   TokenType = "OBJECT"
	IS       TokenType = "IS"
	AS       TokenType = "AS"
)

var keywords = map[string]TokenType{
	"var":      VAR,
	"def":      DEF,
	"method":   METHOD,
	"class":    CLASS,
	"inherits": INHERITS,
	"import":   IMPORT,
	"dialect":  DIALECT,
	"return":   RETURN,
	"type":     TYPE,
	"object":   OBJECT,
	"is":       IS,
	"as":       AS,
}

// LookupIdent checks if the identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether tt is one of the reserved words.
func IsKeyword(tt TokenType) bool {
	for _, kw := range keywords {
		if kw == tt {
			return true
		}
	}
	return false
}

// Keywords returns the reserved words in alphabetical order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// String renders the token the way diagnostics quote it.
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case NEWLINE:
		return "newline"
	case COMMENT:
		return "comment"
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Value)
	case NUMBER:
		return fmt.Sprintf("number %s", t.Raw)
	case STRING:
		return fmt.Sprintf("string %s", t.Raw)
	case OPERATOR:
		return fmt.Sprintf("operator %q", t.Value)
	}
	if IsKeyword(t.Type) {
		return fmt.Sprintf("keyword %q", t.Raw)
	}
	return fmt.Sprintf("%q", t.Raw)
}

// Same reports whether a and b are the same token occurrence in the source.
func Same(a, b Token) bool {
	return a.Type == b.Type && a.Span.Start == b.Span.Start && a.Span.End == b.Span.End
}
