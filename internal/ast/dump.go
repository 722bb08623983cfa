package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tree is a serialisable, structural view of an AST. Two trees compare equal
// with reflect.DeepEqual exactly when the ASTs have the same shape.
type Tree struct {
	Kind     string   `yaml:"kind" json:"kind"`
	Value    string   `yaml:"value,omitempty" json:"value,omitempty"`
	Line     int      `yaml:"line,omitempty" json:"line,omitempty"`
	Column   int      `yaml:"column,omitempty" json:"column,omitempty"`
	Comments []string `yaml:"comments,omitempty" json:"comments,omitempty"`
	Children []Field  `yaml:"children,omitempty" json:"children,omitempty"`
}

// Field is a child tree tagged with the role it plays in its parent.
type Field struct {
	Role string `yaml:"role" json:"role"`
	Node *Tree  `yaml:"node" json:"node"`
}

// DumpOptions controls what Dump records besides structure.
type DumpOptions struct {
	Positions bool
	Comments  bool
}

// Dump converts node into a Tree.
func Dump(node Node, opts DumpOptions) *Tree {
	d := dumper{opts: opts}
	return d.dump(node)
}

type dumper struct {
	opts DumpOptions
}

func (d dumper) leaf(n Node, kind, value string) *Tree {
	t := &Tree{Kind: kind, Value: value}
	if d.opts.Positions {
		t.Line = n.Span().Line
		t.Column = n.Span().Column
	}
	if d.opts.Comments {
		for _, c := range n.Comments() {
			t.Comments = append(t.Comments, c.Text)
		}
	}
	return t
}

func (d dumper) add(t *Tree, role string, child Node) {
	if child == nil {
		return
	}
	t.Children = append(t.Children, Field{Role: role, Node: d.dump(child)})
}

func (d dumper) addList(t *Tree, role string, children []Node) {
	for _, c := range children {
		d.add(t, role, c)
	}
}

func (d dumper) addHeader(t *Tree, h *MethodHeader) {
	if h == nil {
		return
	}
	d.add(t, "header", h)
}

func (d dumper) dump(node Node) *Tree {
	switch n := node.(type) {
	case *Module:
		t := d.leaf(n, "Module", n.Name)
		d.addList(t, "body", n.Body)
		return t

	case *ObjectLit:
		t := d.leaf(n, "Object", "")
		d.addList(t, "body", n.Body)
		return t

	case *Block:
		t := d.leaf(n, "Block", "")
		d.addList(t, "param", n.Params)
		d.addList(t, "body", n.Body)
		return t

	case *TypeLit:
		t := d.leaf(n, "Type", "")
		for _, m := range n.Methods {
			d.add(t, "method", m)
		}
		return t

	case *VarDecl:
		t := d.leaf(n, "VarDecl", "")
		d.declFields(t, n.Name, n.Type, n.Annotations, n.Value)
		return t

	case *DefDecl:
		t := d.leaf(n, "DefDecl", "")
		d.declFields(t, n.Name, n.Type, n.Annotations, n.Value)
		return t

	case *MethodHeader:
		t := d.leaf(n, "MethodHeader", n.Name())
		for _, p := range n.Parts {
			d.add(t, "part", p)
		}
		d.add(t, "returns", n.ReturnType)
		if n.Annotations != nil {
			d.add(t, "annotations", n.Annotations)
		}
		return t

	case *Part:
		t := d.leaf(n, "Part", n.Name)
		d.addList(t, "generic", n.Generics)
		d.addList(t, "param", n.Params)
		return t

	case *MethodDecl:
		t := d.leaf(n, "MethodDecl", "")
		d.addHeader(t, n.Header)
		d.addList(t, "body", n.Body)
		return t

	case *ClassDecl:
		t := d.leaf(n, "ClassDecl", "")
		if n.BaseName != nil {
			d.add(t, "base", n.BaseName)
		}
		d.addHeader(t, n.Header)
		d.addList(t, "body", n.Body)
		return t

	case *TypeMethod:
		t := d.leaf(n, "TypeMethod", "")
		d.addHeader(t, n.Header)
		return t

	case *TypeStatement:
		t := d.leaf(n, "TypeStatement", "")
		if n.Name != nil {
			d.add(t, "name", n.Name)
		}
		for _, g := range n.GenericParams {
			d.add(t, "generic", g)
		}
		d.add(t, "type", n.Type)
		return t

	case *PlainParameter:
		t := d.leaf(n, "PlainParameter", "")
		d.add(t, "term", n.Term)
		return t

	case *TypedParameter:
		t := d.leaf(n, "TypedParameter", "")
		d.add(t, "term", n.Term)
		d.add(t, "type", n.Type)
		return t

	case *VarArgsParameter:
		t := d.leaf(n, "VarArgsParameter", "")
		d.add(t, "param", n.Param)
		return t

	case *ImplicitRequest:
		t := d.leaf(n, "ImplicitRequest", n.Name())
		for _, p := range n.Parts {
			d.add(t, "part", p)
		}
		return t

	case *ExplicitRequest:
		t := d.leaf(n, "ExplicitRequest", n.Name())
		d.add(t, "receiver", n.Receiver)
		for _, p := range n.Parts {
			d.add(t, "part", p)
		}
		return t

	case *RequestPart:
		t := d.leaf(n, "RequestPart", n.Name)
		d.addList(t, "generic", n.Generics)
		d.addList(t, "arg", n.Args)
		return t

	case *Identifier:
		return d.leaf(n, "Identifier", n.Name)

	case *Number:
		return d.leaf(n, "Number", n.Raw)

	case *StringLit:
		return d.leaf(n, "String", n.Value)

	case *InterpolatedString:
		t := d.leaf(n, "InterpolatedString", "")
		d.addList(t, "part", n.Parts)
		return t

	case *Operator:
		t := d.leaf(n, "Operator", n.Op)
		d.add(t, "left", n.Left)
		d.add(t, "right", n.Right)
		return t

	case *PrefixOperator:
		t := d.leaf(n, "PrefixOperator", n.Op)
		d.add(t, "operand", n.Operand)
		return t

	case *Bind:
		t := d.leaf(n, "Bind", "")
		d.add(t, "target", n.Target)
		d.add(t, "value", n.Value)
		return t

	case *Return:
		t := d.leaf(n, "Return", "")
		d.add(t, "value", n.Value)
		return t

	case *Inherits:
		t := d.leaf(n, "Inherits", "")
		d.add(t, "from", n.From)
		return t

	case *Import:
		t := d.leaf(n, "Import", "")
		if n.Path != nil {
			d.add(t, "path", n.Path)
		}
		if n.Name != nil {
			d.add(t, "name", n.Name)
		}
		d.add(t, "type", n.Type)
		return t

	case *Dialect:
		t := d.leaf(n, "Dialect", "")
		if n.Path != nil {
			d.add(t, "path", n.Path)
		}
		return t

	case *Annotations:
		t := d.leaf(n, "Annotations", "")
		d.addList(t, "annotation", n.List)
		return t

	case *Comment:
		return d.leaf(n, "Comment", n.Text)
	}

	return &Tree{Kind: fmt.Sprintf("%T", node)}
}

func (d dumper) declFields(t *Tree, name *Identifier, typ Node, annotations *Annotations, value Node) {
	if name != nil {
		d.add(t, "name", name)
	}
	d.add(t, "type", typ)
	if annotations != nil {
		d.add(t, "annotations", annotations)
	}
	d.add(t, "value", value)
}

// Format names a Tree encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want yaml, json or text)", s)
}

// Encode writes t to w in the given format.
func Encode(w io.Writer, t *Tree, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil

	case FormatText:
		var b strings.Builder
		writeText(&b, "", t, 0)
		_, err := io.WriteString(w, b.String())
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(b *strings.Builder, role string, t *Tree, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range t.Comments {
		fmt.Fprintf(b, "%s//%s\n", indent, c)
	}
	b.WriteString(indent)
	if role != "" {
		b.WriteString(role)
		b.WriteString(": ")
	}
	b.WriteString(t.Kind)
	if t.Value != "" {
		fmt.Fprintf(b, " %q", t.Value)
	}
	if t.Line > 0 {
		fmt.Fprintf(b, " @%d:%d", t.Line, t.Column)
	}
	b.WriteByte('\n')
	for _, f := range t.Children {
		writeText(b, f.Role, f.Node, depth+1)
	}
}
