package ast_test

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/grace-lang/grace/internal/ast"
)

func TestEncodeText(t *testing.T) {
	mod := mustParse(t, "x := 1 + 2")
	tree := ast.Dump(mod, ast.DumpOptions{Positions: true})

	var buf bytes.Buffer
	if err := ast.Encode(&buf, tree, ast.FormatText); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	want := `Module "test" @1:1
  body: Bind @1:1
    target: Identifier "x" @1:1
    value: Operator "+" @1:6
      left: Number "1" @1:6
      right: Number "2" @1:10
`
	if got := buf.String(); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestEncodeTextComments(t *testing.T) {
	mod := mustParse(t, "x // note\n")
	tree := ast.Dump(mod, ast.DumpOptions{Comments: true})

	var buf bytes.Buffer
	if err := ast.Encode(&buf, tree, ast.FormatText); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	want := "Module \"test\"\n  // note\n  body: Identifier \"x\"\n"
	if got := buf.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEncodeJSON(t *testing.T) {
	mod := mustParse(t, "def greeting = \"hi {name}\"")
	tree := ast.Dump(mod, ast.DumpOptions{Positions: true, Comments: true})

	var buf bytes.Buffer
	if err := ast.Encode(&buf, tree, ast.FormatJSON); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	var decoded ast.Tree
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(&decoded, tree) {
		t.Fatalf("expected decoded tree to equal the dump")
	}
}

func TestEncodeYAML(t *testing.T) {
	mod := mustParse(t, "print(1)")
	tree := ast.Dump(mod, ast.DumpOptions{})

	var buf bytes.Buffer
	if err := ast.Encode(&buf, tree, ast.FormatYAML); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"kind: Module", "kind: ImplicitRequest", "role: arg"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected yaml to contain %q, got:\n%s", want, out)
		}
	}

	var decoded ast.Tree
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if decoded.Children[0].Node.Kind != "ImplicitRequest" {
		t.Fatalf("expected ImplicitRequest, got %s", decoded.Children[0].Node.Kind)
	}
}

func TestDumpStructuralEquality(t *testing.T) {
	a := ast.Dump(mustParse(t, "x := (a + b)"), ast.DumpOptions{})
	b := ast.Dump(mustParse(t, "x   :=   a+b"), ast.DumpOptions{})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected equal structure ignoring layout")
	}

	c := ast.Dump(mustParse(t, "x := a - b"), ast.DumpOptions{})
	if reflect.DeepEqual(a, c) {
		t.Fatalf("expected different operators to differ")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ast.Format
		wantErr bool
	}{
		{"yaml", ast.FormatYAML, false},
		{"JSON", ast.FormatJSON, false},
		{"text", ast.FormatText, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ast.ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected an error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
