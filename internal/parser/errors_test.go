package parser_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/parser"
)

func TestParseErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"stray brace", "}", diag.CodeUnknownConstruct},
		{"unclosed method body", "method m {\n    x", diag.CodeUnexpectedEnd},
		{"missing as", `import "a" b`, diag.CodeExpectedToken},
		{"code after semicolon", "x := 1; y := 2", diag.CodeSemicolonFollowedByCode},
		{"junk after statement", "x := 1 )", diag.CodeUnexpectedAfterStatement},
		{"var with equals", "var x = 1", diag.CodeVarUsesBind},
		{"def with bind", "def x := 1", diag.CodeDefUsesEquals},
		{"unterminated generics", "type A<B C = D", diag.CodeUnterminatedGenericParams},
		{"spaced generic bracket", "type A <T> = B", diag.CodeSpacedGenericBracket},
		{"operator in type name", "type A + B = C", diag.CodeOperatorInTypeName},
		{"flat type body", "type A = {\nx\n}", diag.CodeTypeBodyIndentation},
		{"flat method body", "method m {\nx\n}", diag.CodeBodyIndentation},
		{"operator parameter", "method m(+ x) { }", diag.CodeOperatorInParameterList},
		{"parameter separator", "method m(a : T b) { }", diag.CodeParameterListSeparator},
		{"interpolated import", `import "a{b}" as c`, diag.CodeImportInterpolation},
		{"interpolated dialect", `dialect "a{b}"`, diag.CodeDialectInterpolation},
		{"indentation mismatch", "method m {\n    a\n  b\n}", diag.CodeIndentationMismatch},
		{"unclosed parenthesis", "(a + b c)", diag.CodeUnclosedParenthesis},
		{"missing term", "x := )", diag.CodeExpectedTerm},
		{"unterminated interpolation", `"a{b c}"`, diag.CodeUnterminatedInterpolation},
		{"asymmetric spacing", "a +b", diag.CodeOperatorSpacing},
		{"object without brace", "object x", diag.CodeObjectWithoutBrace},
		{"bind as block parameter", "{ x := 1, y -> y }", diag.CodeInvalidBlockParameter},
		{"argument separator", "foo(a b)", diag.CodeArgumentListSeparator},
		{"generic argument separator", "foo<A B>(x)", diag.CodeGenericArgumentSeparator},
		{"number after dot", "x.(y)", diag.CodeIdentifierAfterDot},
		{"mixed operators", "a + b == c", diag.CodeMixedOperators},
		{"bad parameter", "method m(a b) { }", diag.CodeInvalidParameter},
		{"illegal character", "x := `", diag.CodeLexerIllegalRune},
		{"unterminated string", `x := "abc`, diag.CodeLexerUnterminatedString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, pe := parseFailure(t, tt.src)
			if pe.Code != tt.code {
				t.Fatalf("expected %s, got %s (%s)", tt.code, pe.Code, pe.Message)
			}
		})
	}
}

func TestIndentationMismatchVars(t *testing.T) {
	_, pe := parseFailure(t, "method m {\n    a\n  b\n}")

	if pe.Span.Line != 3 {
		t.Fatalf("expected error on line 3, got %d", pe.Span.Line)
	}
	if got := pe.Vars["required indentation"]; got != "4" {
		t.Fatalf("expected required indentation 4, got %q", got)
	}
	if got := pe.Vars["given indentation"]; got != "2" {
		t.Fatalf("expected given indentation 2, got %q", got)
	}
}

func TestExpectedTokenVars(t *testing.T) {
	_, pe := parseFailure(t, `import "a" b`)

	if got := pe.Vars["expected"]; got != "'as'" {
		t.Fatalf("expected %q, got %q", "'as'", got)
	}
	if got := pe.Vars["found"]; got != `identifier "b"` {
		t.Fatalf("expected %q, got %q", `identifier "b"`, got)
	}
}

func TestUnexpectedEndReportsOpeningLine(t *testing.T) {
	_, pe := parseFailure(t, "x := 1\nmethod m {\n    x\n")

	if pe.Code != diag.CodeUnexpectedEnd {
		t.Fatalf("expected %s, got %s", diag.CodeUnexpectedEnd, pe.Code)
	}
	if pe.Span.Line != 2 {
		t.Fatalf("expected error on line 2, got %d", pe.Span.Line)
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"method m {\n    x", true},
		{"foo(1,", true},
		{"x := ", true},
		{"(a + b", true},
		{"x := 1 )", false},
		{"var x = 1", false},
	}

	for _, tt := range tests {
		_, err := parser.Parse(tt.src)
		if err == nil {
			t.Fatalf("%q: expected a parse error", tt.src)
		}
		if got := parser.IsIncomplete(err); got != tt.want {
			t.Fatalf("%q: expected IsIncomplete %v, got %v (%v)", tt.src, tt.want, got, err)
		}
	}

	if parser.IsIncomplete(errors.New("other")) {
		t.Fatalf("expected foreign errors not to be incomplete")
	}
	wrapped := fmt.Errorf("wrapped: %w", &parser.ParseError{Code: diag.CodeUnexpectedEnd})
	if !parser.IsIncomplete(wrapped) {
		t.Fatalf("expected wrapped unexpected-end error to be incomplete")
	}
}

func TestParseErrorDiagnostic(t *testing.T) {
	_, pe := parseFailure(t, "x := 1\na +b\n")

	d := pe.Diagnostic()
	if d.Code != diag.CodeOperatorSpacing {
		t.Fatalf("expected %s, got %s", diag.CodeOperatorSpacing, d.Code)
	}
	if d.Span.Filename != "test" || d.Span.Line != 2 || d.Span.Column != 3 {
		t.Fatalf("unexpected span %s", d.Span)
	}
	if d.Vars["operator"] != "+" {
		t.Fatalf("expected operator var +, got %q", d.Vars["operator"])
	}
	if d.Stage != diag.StageParser {
		t.Fatalf("expected parser stage, got %v", d.Stage)
	}

	_, lexErr := parseFailure(t, "x := `")
	if lexErr.Diagnostic().Stage != diag.StageLexer {
		t.Fatalf("expected lexer stage for %s", lexErr.Code)
	}
}
