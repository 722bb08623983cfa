package lexer

import (
	"strings"
	"testing"
)

func TestLexerErrors_UnterminatedString(t *testing.T) {
	input := `"hello`
	l := New(input)

	tok := l.Current()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %q", tok.Type)
	}
	if tok.Raw != `"hello` {
		t.Fatalf("expected raw token %q, got %q", `"hello`, tok.Raw)
	}

	if len(l.Errors) != 1 {
		t.Fatalf("expected 1 lexer error, got %d", len(l.Errors))
	}

	err := l.Errors[0]
	if err.Kind != ErrUnterminatedString {
		t.Fatalf("expected ErrUnterminatedString, got %v", err.Kind)
	}
	if err.Message != "unterminated string literal" {
		t.Fatalf("unexpected error message %q", err.Message)
	}
	if err.Span.Line != 1 || err.Span.Column != 1 {
		t.Fatalf("expected span line=1 column=1, got line=%d column=%d", err.Span.Line, err.Span.Column)
	}
	if want := len([]rune(input)); err.Span.End != want {
		t.Fatalf("expected span end %d, got %d", want, err.Span.End)
	}
}

func TestLexerErrors_NewlineInStringLiteral(t *testing.T) {
	l := New("\"hello\nworld\"")

	if tok := l.Current(); tok.Type != ILLEGAL || tok.Raw != "\"hello" {
		t.Fatalf("expected ILLEGAL %q, got %s %q", "\"hello", tok.Type, tok.Raw)
	}
	if tok := l.NextToken(); tok.Type != NEWLINE {
		t.Fatalf("expected NEWLINE after broken string, got %q", tok.Type)
	}
	if len(l.Errors) != 1 {
		t.Fatalf("expected 1 lexer error, got %d", len(l.Errors))
	}
}

func TestLexerErrors_IllegalRune(t *testing.T) {
	l := New("x ` y")

	if tok := l.NextToken(); tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL token, got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != IDENT || tok.Value != "y" {
		t.Fatalf("expected lexing to resume at y, got %s %q", tok.Type, tok.Value)
	}
	if len(l.Errors) != 1 || l.Errors[0].Kind != ErrIllegalRune {
		t.Fatalf("expected one illegal rune error, got %+v", l.Errors)
	}
	if !strings.Contains(l.Errors[0].Message, "'`'") {
		t.Fatalf("expected message to quote the rune, got %q", l.Errors[0].Message)
	}
}

func TestLexerErrors_BadRadix(t *testing.T) {
	tests := []string{"1x0", "37x1", "2x102"}

	for _, input := range tests {
		l := New(input)
		if l.Current().Type != ILLEGAL {
			t.Fatalf("%q: expected ILLEGAL token, got %q", input, l.Current().Type)
		}
		if len(l.Errors) != 1 || l.Errors[0].Kind != ErrBadNumber {
			t.Fatalf("%q: expected one bad number error, got %+v", input, l.Errors)
		}
	}
}
