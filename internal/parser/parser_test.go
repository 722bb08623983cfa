package parser_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/parser"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()

	mod, err := parser.Parse(src, parser.WithModuleName("test"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if mod == nil {
		t.Fatalf("module is nil")
	}
	return mod
}

func parseFailure(t *testing.T, src string) (*ast.Module, *parser.ParseError) {
	t.Helper()

	mod, err := parser.Parse(src, parser.WithModuleName("test"))
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *parser.ParseError, got %T", err)
	}
	return mod, pe
}

func single[T ast.Node](t *testing.T, mod *ast.Module) T {
	t.Helper()

	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(mod.Body))
	}
	n, ok := mod.Body[0].(T)
	if !ok {
		var want T
		t.Fatalf("expected %T, got %T", want, mod.Body[0])
	}
	return n
}

func TestParseEmptySource(t *testing.T) {
	mod := parseModule(t, "")
	if len(mod.Body) != 0 {
		t.Fatalf("expected empty module, got %d statements", len(mod.Body))
	}
	if mod.Name != "test" {
		t.Fatalf("expected module name %q, got %q", "test", mod.Name)
	}
}

func TestParseBlankLinesOnly(t *testing.T) {
	mod := parseModule(t, "\n\n\n")
	if len(mod.Body) != 0 {
		t.Fatalf("expected empty module, got %d statements", len(mod.Body))
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "1 + (2 * 3)\n"},
		{"1 * 2 + 3", "(1 * 2) + 3\n"},
		{"a - b - c", "a - b - c\n"},
		{"a / b * c", "(a / b) * c\n"},
		{"a ++ b ++ c", "a ++ b ++ c\n"},
		{"-a + b", "-a + b\n"},
		{"a+b", "a + b\n"},
		{"(a + b) == c", "(a + b) == c\n"},
		{"1..10", "1 .. 10\n"},
	}

	for _, tt := range tests {
		mod := parseModule(t, tt.src)
		if got := ast.Print(mod); got != tt.want {
			t.Fatalf("%q: expected %q, got %q", tt.src, tt.want, got)
		}
	}
}

func TestOperatorTree(t *testing.T) {
	mod := parseModule(t, "1 + 2 * 3")
	op := single[*ast.Operator](t, mod)

	if op.Op != "+" {
		t.Fatalf("expected root operator +, got %s", op.Op)
	}
	if n, ok := op.Left.(*ast.Number); !ok || n.Value != 1 {
		t.Fatalf("expected left operand 1, got %#v", op.Left)
	}
	right, ok := op.Right.(*ast.Operator)
	if !ok || right.Op != "*" {
		t.Fatalf("expected right operand to be *, got %#v", op.Right)
	}
}

func TestMixedOperatorsRequireParentheses(t *testing.T) {
	tests := []string{
		"a + b == c",
		"a == b + c",
		"a && b || c",
	}

	for _, src := range tests {
		_, pe := parseFailure(t, src)
		if pe.Code != diag.CodeMixedOperators {
			t.Fatalf("%q: expected %s, got %s", src, diag.CodeMixedOperators, pe.Code)
		}
	}

	op := single[*ast.Operator](t, parseModule(t, "a * b + c - d / e"))
	if op.Op != "-" {
		t.Fatalf("expected root operator -, got %s", op.Op)
	}
}

func TestBlockParameters(t *testing.T) {
	tests := []struct {
		src    string
		params int
		body   int
	}{
		{"{ x, y -> x + y }", 2, 1},
		{"{ x -> x }", 1, 1},
		{"{ x : Number -> x }", 1, 1},
		{"{ x, *rest -> rest }", 2, 1},
		{"{ x := 1 }", 0, 1},
		{"{ print \"hi\" }", 0, 1},
		{"{ x -> }", 1, 0},
		{"{ }", 0, 0},
		{"{\n    a\n    b\n}", 0, 2},
		{"{ x ->\n    x\n    x\n}", 1, 2},
	}

	for _, tt := range tests {
		blk := single[*ast.Block](t, parseModule(t, tt.src))
		if len(blk.Params) != tt.params {
			t.Fatalf("%q: expected %d params, got %d", tt.src, tt.params, len(blk.Params))
		}
		if len(blk.Body) != tt.body {
			t.Fatalf("%q: expected %d body statements, got %d", tt.src, tt.body, len(blk.Body))
		}
	}
}

func TestBlockBindIsBody(t *testing.T) {
	blk := single[*ast.Block](t, parseModule(t, "{ x := 1 }"))
	bind, ok := blk.Body[0].(*ast.Bind)
	if !ok {
		t.Fatalf("expected *ast.Bind, got %T", blk.Body[0])
	}
	if id, ok := bind.Target.(*ast.Identifier); !ok || id.Name != "x" {
		t.Fatalf("expected bind target x, got %#v", bind.Target)
	}
}

func TestTypedBlockParameter(t *testing.T) {
	blk := single[*ast.Block](t, parseModule(t, "{ x : Number -> x }"))
	param, ok := blk.Params[0].(*ast.TypedParameter)
	if !ok {
		t.Fatalf("expected *ast.TypedParameter, got %T", blk.Params[0])
	}
	if id, ok := param.Type.(*ast.Identifier); !ok || id.Name != "Number" {
		t.Fatalf("expected type Number, got %#v", param.Type)
	}
}

func TestImplicitRequestParts(t *testing.T) {
	req := single[*ast.ImplicitRequest](t, parseModule(t, "at 1 put 2"))
	if len(req.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(req.Parts))
	}
	for i, name := range []string{"at", "put"} {
		part := req.Parts[i]
		if part.Name != name {
			t.Fatalf("expected part %d to be %q, got %q", i, name, part.Name)
		}
		if len(part.Args) != 1 {
			t.Fatalf("expected part %q to have 1 argument, got %d", name, len(part.Args))
		}
	}
	if got := req.Name(); got != "at(_)put(_)" {
		t.Fatalf("expected name %q, got %q", "at(_)put(_)", got)
	}
}

func TestRequests(t *testing.T) {
	tests := []struct {
		src  string
		name string
	}{
		{"print(\"hello\")", "print(_)"},
		{"print \"hello\"", "print(_)"},
		{"foo(1, 2)", "foo(_,_)"},
		{"foo()", "foo"},
		{"list<Number>(1)", "list(_)"},
		{"for (xs) do { x -> x }", "for(_)do(_)"},
	}

	for _, tt := range tests {
		req := single[*ast.ImplicitRequest](t, parseModule(t, tt.src))
		if got := req.Name(); got != tt.name {
			t.Fatalf("%q: expected %q, got %q", tt.src, tt.name, got)
		}
	}
}

func TestDotRequests(t *testing.T) {
	req := single[*ast.ExplicitRequest](t, parseModule(t, "xs.at(1) put(2).size"))
	if req.Name() != "size" {
		t.Fatalf("expected outer request size, got %q", req.Name())
	}
	inner, ok := req.Receiver.(*ast.ExplicitRequest)
	if !ok {
		t.Fatalf("expected receiver to be *ast.ExplicitRequest, got %T", req.Receiver)
	}
	if inner.Name() != "at(_)put(_)" {
		t.Fatalf("expected inner request at(_)put(_), got %q", inner.Name())
	}
	if id, ok := inner.Receiver.(*ast.Identifier); !ok || id.Name != "xs" {
		t.Fatalf("expected receiver xs, got %#v", inner.Receiver)
	}
}

func TestParenthesisedIdentifierIsNotRequest(t *testing.T) {
	op := single[*ast.Operator](t, parseModule(t, "(a) + b"))
	if _, ok := op.Left.(*ast.Identifier); !ok {
		t.Fatalf("expected identifier operand, got %T", op.Left)
	}
}

func TestPrefixOperator(t *testing.T) {
	pre := single[*ast.PrefixOperator](t, parseModule(t, "!x.isEmpty"))
	if pre.Op != "!" {
		t.Fatalf("expected operator !, got %s", pre.Op)
	}
	if _, ok := pre.Operand.(*ast.ExplicitRequest); !ok {
		t.Fatalf("expected request operand, got %T", pre.Operand)
	}
}

func TestInterpolatedString(t *testing.T) {
	str := single[*ast.InterpolatedString](t, parseModule(t, `"a{1+1}b"`))
	if len(str.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(str.Parts))
	}
	if lit, ok := str.Parts[0].(*ast.StringLit); !ok || lit.Value != "a" {
		t.Fatalf("expected leading literal \"a\", got %#v", str.Parts[0])
	}
	if op, ok := str.Parts[1].(*ast.Operator); !ok || op.Op != "+" {
		t.Fatalf("expected + expression, got %#v", str.Parts[1])
	}
	if lit, ok := str.Parts[2].(*ast.StringLit); !ok || lit.Value != "b" {
		t.Fatalf("expected trailing literal \"b\", got %#v", str.Parts[2])
	}
}

func TestInterpolationParts(t *testing.T) {
	tests := []struct {
		src   string
		parts int
	}{
		{`"{x}"`, 3},
		{`"{x}{y}"`, 5},
		{`"a {x} b {y.name} c"`, 5},
		{`"no holes"`, 0},
	}

	for _, tt := range tests {
		mod := parseModule(t, tt.src)
		if tt.parts == 0 {
			single[*ast.StringLit](t, mod)
			continue
		}
		str := single[*ast.InterpolatedString](t, mod)
		if len(str.Parts) != tt.parts {
			t.Fatalf("%q: expected %d parts, got %d", tt.src, tt.parts, len(str.Parts))
		}
	}
}

func TestDeclarations(t *testing.T) {
	mod := parseModule(t, `var count : Number is public := 0
def name = "grace"
var pending
`)
	if len(mod.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(mod.Body))
	}

	v, ok := mod.Body[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", mod.Body[0])
	}
	if v.Name.Name != "count" {
		t.Fatalf("expected var count, got %q", v.Name.Name)
	}
	if v.Type == nil || v.Annotations == nil || v.Value == nil {
		t.Fatalf("expected type, annotations and value to be set")
	}
	if len(v.Annotations.List) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(v.Annotations.List))
	}

	d, ok := mod.Body[1].(*ast.DefDecl)
	if !ok {
		t.Fatalf("expected *ast.DefDecl, got %T", mod.Body[1])
	}
	if s, ok := d.Value.(*ast.StringLit); !ok || s.Value != "grace" {
		t.Fatalf("expected value \"grace\", got %#v", d.Value)
	}

	pending := mod.Body[2].(*ast.VarDecl)
	if pending.Value != nil {
		t.Fatalf("expected uninitialised var, got %#v", pending.Value)
	}
}

func TestMethodDeclaration(t *testing.T) {
	const src = `method at(i : Number) put(v) -> Done is public {
    return v
}
`
	m := single[*ast.MethodDecl](t, parseModule(t, src))

	if got := m.Header.Name(); got != "at(_)put(_)" {
		t.Fatalf("expected header name %q, got %q", "at(_)put(_)", got)
	}
	if _, ok := m.Header.Parts[0].Params[0].(*ast.TypedParameter); !ok {
		t.Fatalf("expected typed first parameter, got %T", m.Header.Parts[0].Params[0])
	}
	if id, ok := m.Header.ReturnType.(*ast.Identifier); !ok || id.Name != "Done" {
		t.Fatalf("expected return type Done, got %#v", m.Header.ReturnType)
	}
	if m.Header.Annotations == nil || len(m.Header.Annotations.List) != 1 {
		t.Fatalf("expected one annotation")
	}
	if len(m.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(m.Body))
	}
	if _, ok := m.Body[0].(*ast.Return); !ok {
		t.Fatalf("expected *ast.Return, got %T", m.Body[0])
	}
}

func TestMethodHeaderForms(t *testing.T) {
	tests := []struct {
		src  string
		name string
	}{
		{"method ==(other) { }", "==(_)"},
		{"method prefix- { }", "prefix-"},
		{"method value:=(v) { }", "value:=(_)"},
		{"method map<T>(f) { }", "map(_)"},
		{"method sum(*xs) { }", "sum(_)"},
		{"method size { }", "size"},
	}

	for _, tt := range tests {
		m := single[*ast.MethodDecl](t, parseModule(t, tt.src))
		if got := m.Header.Name(); got != tt.name {
			t.Fatalf("%q: expected %q, got %q", tt.src, tt.name, got)
		}
	}
}

func TestClassDeclaration(t *testing.T) {
	const src = `class point.x(a) y(b) {
    def x = a
    def y = b
}
`
	c := single[*ast.ClassDecl](t, parseModule(t, src))
	if c.BaseName.Name != "point" {
		t.Fatalf("expected base name point, got %q", c.BaseName.Name)
	}
	if got := c.Header.Name(); got != "x(_)y(_)" {
		t.Fatalf("expected header x(_)y(_), got %q", got)
	}
	if len(c.Body) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(c.Body))
	}
}

func TestObjectLiteral(t *testing.T) {
	const src = `def o = object {
    inherits base
    var x := 1

    method get { x }
}
`
	d := single[*ast.DefDecl](t, parseModule(t, src))
	obj, ok := d.Value.(*ast.ObjectLit)
	if !ok {
		t.Fatalf("expected *ast.ObjectLit, got %T", d.Value)
	}
	if len(obj.Body) != 3 {
		t.Fatalf("expected 3 object statements, got %d", len(obj.Body))
	}
	if _, ok := obj.Body[0].(*ast.Inherits); !ok {
		t.Fatalf("expected *ast.Inherits, got %T", obj.Body[0])
	}
}

func TestTypeStatements(t *testing.T) {
	const src = `type Point = {
    x -> Number
    y -> Number
}
type List<T> = Collection<T>
type Empty = type {}
`
	mod := parseModule(t, src)
	if len(mod.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(mod.Body))
	}

	point := mod.Body[0].(*ast.TypeStatement)
	lit, ok := point.Type.(*ast.TypeLit)
	if !ok {
		t.Fatalf("expected *ast.TypeLit, got %T", point.Type)
	}
	if len(lit.Methods) != 2 {
		t.Fatalf("expected 2 type methods, got %d", len(lit.Methods))
	}

	list := mod.Body[1].(*ast.TypeStatement)
	if len(list.GenericParams) != 1 || list.GenericParams[0].Name != "T" {
		t.Fatalf("expected generic parameter T, got %v", list.GenericParams)
	}
	if _, ok := list.Type.(*ast.ImplicitRequest); !ok {
		t.Fatalf("expected generic request, got %T", list.Type)
	}

	empty := mod.Body[2].(*ast.TypeStatement)
	if lit, ok := empty.Type.(*ast.TypeLit); !ok || len(lit.Methods) != 0 {
		t.Fatalf("expected empty type literal, got %#v", empty.Type)
	}
}

func TestImportDialectReturn(t *testing.T) {
	const src = `dialect "standard"
import "collections" as coll : Module
method f {
    return
}
`
	mod := parseModule(t, src)
	if len(mod.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(mod.Body))
	}

	d := mod.Body[0].(*ast.Dialect)
	if d.Path.Value != "standard" {
		t.Fatalf("expected dialect path standard, got %q", d.Path.Value)
	}

	imp := mod.Body[1].(*ast.Import)
	if imp.Path.Value != "collections" || imp.Name.Name != "coll" {
		t.Fatalf("unexpected import %q as %q", imp.Path.Value, imp.Name.Name)
	}
	if imp.Type == nil {
		t.Fatalf("expected import type annotation")
	}

	ret := mod.Body[2].(*ast.MethodDecl).Body[0].(*ast.Return)
	if ret.Value != nil {
		t.Fatalf("expected bare return, got %#v", ret.Value)
	}
}

func TestContinuationLines(t *testing.T) {
	const src = `def total = first +
    second +
    third
next
`
	mod := parseModule(t, src)
	if len(mod.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(mod.Body))
	}
	d := mod.Body[0].(*ast.DefDecl)
	if got := ast.Print(d.Value); got != "first + second + third\n" {
		t.Fatalf("expected continued expression, got %q", got)
	}
}

func TestSemicolonEndsStatement(t *testing.T) {
	mod := parseModule(t, "x := 1;\ny := 2")
	if len(mod.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(mod.Body))
	}
}

func TestPartialModuleOnError(t *testing.T) {
	mod, pe := parseFailure(t, "x := 1\ny := 2\nvar z = 3\nw := 4\n")
	if pe.Code != diag.CodeVarUsesBind {
		t.Fatalf("expected %s, got %s", diag.CodeVarUsesBind, pe.Code)
	}
	if len(mod.Body) != 2 {
		t.Fatalf("expected 2 completed statements, got %d", len(mod.Body))
	}
}

func TestSinkReceivesDiagnostic(t *testing.T) {
	collector := diag.NewCollector()
	_, err := parser.Parse("x := 1\nvar z = 3\n",
		parser.WithModuleName("main"),
		parser.WithSink(collector))
	if err == nil {
		t.Fatalf("expected a parse error")
	}

	diags := collector.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Code != diag.CodeVarUsesBind || d.Module != "main" || d.Span.Line != 2 {
		t.Fatalf("unexpected diagnostic %s", d.String())
	}
	if d.Stage != diag.StageParser {
		t.Fatalf("expected parser stage, got %v", d.Stage)
	}
}

func TestLoggerOption(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := parser.Parse("x := 1\n", parser.WithLogger(logger)); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"parse started", "parse finished", "component=parser"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got %q", want, out)
		}
	}
}

func TestNewFromSource(t *testing.T) {
	p := parser.New("a + b", parser.WithModuleName("m"))
	mod, err := p.Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if mod.Name != "m" || len(mod.Body) != 1 {
		t.Fatalf("unexpected module %q with %d statements", mod.Name, len(mod.Body))
	}
}
