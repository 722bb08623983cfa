package ast

import (
	"io"
	"strings"
)

const indentUnit = "    "

// Print renders node as Grace source. Re-parsing the output yields a tree
// with the same structure.
//
// Operator operands are parenthesised unless they repeat the parent operator
// on the left, requests always carry their argument parentheses, and comment
// chains of statements are written as leading `//` lines.
func Print(node Node) string {
	p := &printer{}
	if m, ok := node.(*Module); ok {
		p.body(m.Body)
	} else {
		p.stmt(node)
	}
	return p.b.String()
}

// Fprint writes the rendering of node to w.
func Fprint(w io.Writer, node Node) error {
	_, err := io.WriteString(w, Print(node))
	return err
}

// Signature renders the head of a declaration on one line, leaving out
// bodies and initialisers. Other nodes print as a single expression.
func Signature(node Node) string {
	p := &printer{}
	switch n := node.(type) {
	case *MethodDecl:
		p.write("method ")
		p.header(n.Header)
	case *ClassDecl:
		p.write("class ")
		p.expr(n.BaseName)
		p.write(".")
		p.header(n.Header)
	case *VarDecl:
		p.write("var ")
		p.expr(n.Name)
		p.typeAndAnnotations(n.Type, n.Annotations)
	case *DefDecl:
		p.write("def ")
		p.expr(n.Name)
		p.typeAndAnnotations(n.Type, n.Annotations)
	case *TypeStatement:
		p.write("type ")
		p.expr(n.Name)
		if len(n.GenericParams) > 0 {
			p.write("<")
			for i, g := range n.GenericParams {
				if i > 0 {
					p.write(", ")
				}
				p.expr(g)
			}
			p.write(">")
		}
	default:
		p.expr(node)
	}
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int

	// stmtNode is the statement being printed; its comments were already
	// written as leading lines.
	stmtNode Node
}

func (p *printer) write(s string) { p.b.WriteString(s) }

func (p *printer) newline() {
	p.b.WriteByte('\n')
}

func (p *printer) writeIndent() {
	p.write(strings.Repeat(indentUnit, p.indent))
}

func (p *printer) commentLines(comments []*Comment) {
	for _, c := range comments {
		p.writeIndent()
		p.write("//" + c.Text)
		p.newline()
	}
}

func (p *printer) body(stmts []Node) {
	for _, s := range stmts {
		p.stmt(s)
	}
}

func (p *printer) stmt(n Node) {
	if c, ok := n.(*Comment); ok {
		// A comment standing alone is closed by a blank line.
		p.commentLines(append([]*Comment{c}, c.Comments()...))
		p.newline()
		return
	}

	p.commentLines(n.Comments())
	p.writeIndent()
	outer := p.stmtNode
	p.stmtNode = n
	p.expr(n)
	p.stmtNode = outer
	p.newline()
}

// ownComments returns the comments a body-holding node prints inside its
// braces: only when it is not itself the statement.
func (p *printer) ownComments(n Node) []*Comment {
	if n == p.stmtNode {
		return nil
	}
	return n.Comments()
}

func (p *printer) braceBody(own []*Comment, stmts []Node) {
	if len(own) == 0 && len(stmts) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.indent++
	if len(own) > 0 {
		p.commentLines(own)
		if len(stmts) > 0 {
			p.newline()
		}
	}
	p.body(stmts)
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *printer) expr(n Node) {
	switch n := n.(type) {
	case *Identifier:
		p.write(n.Name)

	case *Number:
		p.write(n.Raw)

	case *StringLit:
		p.write(`"` + escape(n.Value) + `"`)

	case *InterpolatedString:
		p.write(`"`)
		for i, part := range n.Parts {
			if lit, ok := part.(*StringLit); ok && i%2 == 0 {
				p.write(escape(lit.Value))
				continue
			}
			p.write("{")
			p.expr(part)
			p.write("}")
		}
		p.write(`"`)

	case *Operator:
		p.operand(n.Left, n, true)
		p.write(" " + n.Op + " ")
		p.operand(n.Right, n, false)

	case *PrefixOperator:
		p.write(n.Op)
		if isSimpleTerm(n.Operand) {
			p.expr(n.Operand)
		} else {
			p.paren(n.Operand)
		}

	case *Bind:
		p.expr(n.Target)
		p.write(" := ")
		p.expr(n.Value)

	case *ImplicitRequest:
		for i, part := range n.Parts {
			if i > 0 {
				p.write(" ")
			}
			p.requestPart(part, i == len(n.Parts)-1 && len(part.Generics) > 0)
		}

	case *ExplicitRequest:
		if isSimpleTerm(n.Receiver) {
			p.expr(n.Receiver)
		} else {
			p.paren(n.Receiver)
		}
		p.write(".")
		for i, part := range n.Parts {
			if i > 0 {
				p.write(" ")
			}
			p.requestPart(part, i == len(n.Parts)-1)
		}

	case *PlainParameter:
		p.expr(n.Term)

	case *TypedParameter:
		p.expr(n.Term)
		p.write(" : ")
		p.expr(n.Type)

	case *VarArgsParameter:
		p.write("*")
		p.expr(n.Param)

	case *Block:
		p.block(n)

	case *ObjectLit:
		p.write("object ")
		p.braceBody(p.ownComments(n), n.Body)

	case *TypeLit:
		p.typeLit(n)

	case *VarDecl:
		p.write("var ")
		p.expr(n.Name)
		p.typeAndAnnotations(n.Type, n.Annotations)
		if n.Value != nil {
			p.write(" := ")
			p.expr(n.Value)
		}

	case *DefDecl:
		p.write("def ")
		p.expr(n.Name)
		p.typeAndAnnotations(n.Type, n.Annotations)
		p.write(" = ")
		p.expr(n.Value)

	case *MethodDecl:
		p.write("method ")
		p.header(n.Header)
		p.write(" ")
		p.braceBody(nil, n.Body)

	case *ClassDecl:
		p.write("class ")
		p.expr(n.BaseName)
		p.write(".")
		p.header(n.Header)
		p.write(" ")
		p.braceBody(nil, n.Body)

	case *TypeStatement:
		p.write("type ")
		p.expr(n.Name)
		if len(n.GenericParams) > 0 {
			p.write("<")
			for i, g := range n.GenericParams {
				if i > 0 {
					p.write(", ")
				}
				p.expr(g)
			}
			p.write(">")
		}
		p.write(" = ")
		p.expr(n.Type)

	case *TypeMethod:
		p.header(n.Header)

	case *Return:
		p.write("return")
		if n.Value != nil {
			p.write(" ")
			p.expr(n.Value)
		}

	case *Inherits:
		p.write("inherits ")
		p.expr(n.From)

	case *Import:
		p.write("import ")
		p.expr(n.Path)
		p.write(" as ")
		p.expr(n.Name)
		if n.Type != nil {
			p.write(" : ")
			p.expr(n.Type)
		}

	case *Dialect:
		p.write("dialect ")
		p.expr(n.Path)

	case *Annotations:
		p.write("is ")
		p.list(n.List)

	case *Comment:
		p.write("//" + n.Text)
	}
}

func (p *printer) paren(n Node) {
	p.write("(")
	p.expr(n)
	p.write(")")
}

func (p *printer) operand(n Node, parent *Operator, left bool) {
	if op, ok := n.(*Operator); ok && !(left && op.Op == parent.Op) {
		p.paren(n)
		return
	}
	p.expr(n)
}

func (p *printer) list(nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			p.write(", ")
		}
		p.expr(n)
	}
}

func (p *printer) generics(nodes []Node) {
	if len(nodes) == 0 {
		return
	}
	p.write("<")
	p.list(nodes)
	p.write(">")
}

// requestPart writes name<generics>(args). Empty argument parentheses may be
// dropped only where nothing can follow the part and be mistaken for an
// argument.
func (p *printer) requestPart(part *RequestPart, bareAllowed bool) {
	p.write(part.Name)
	p.generics(part.Generics)
	if len(part.Args) == 0 && bareAllowed {
		return
	}
	p.write("(")
	p.list(part.Args)
	p.write(")")
}

func (p *printer) typeAndAnnotations(typ Node, annotations *Annotations) {
	if typ != nil {
		p.write(" : ")
		p.expr(typ)
	}
	if annotations != nil {
		p.write(" ")
		p.expr(annotations)
	}
}

func (p *printer) header(h *MethodHeader) {
	for i, part := range h.Parts {
		if i > 0 {
			p.write(" ")
		}
		p.write(part.Name)
		p.generics(part.Generics)
		if len(part.Params) > 0 {
			p.write("(")
			p.list(part.Params)
			p.write(")")
		}
	}
	if h.ReturnType != nil {
		p.write(" -> ")
		p.expr(h.ReturnType)
	}
	if h.Annotations != nil {
		p.write(" ")
		p.expr(h.Annotations)
	}
}

func (p *printer) block(b *Block) {
	own := p.ownComments(b)

	if len(own) == 0 && len(b.Body) <= 1 {
		if line, ok := p.inlineBody(b.Body); ok {
			p.write("{ ")
			if len(b.Params) > 0 {
				p.list(b.Params)
				p.write(" -> ")
			}
			if line != "" {
				p.write(line + " ")
			}
			p.write("}")
			return
		}
	}

	p.write("{")
	if len(b.Params) > 0 {
		p.write(" ")
		p.list(b.Params)
		p.write(" ->")
	}
	p.newline()
	p.indent++
	if len(own) > 0 {
		p.commentLines(own)
		p.newline()
	}
	p.body(b.Body)
	p.indent--
	p.writeIndent()
	p.write("}")
}

// inlineBody renders a block body of at most one statement on one line.
func (p *printer) inlineBody(stmts []Node) (string, bool) {
	if len(stmts) == 0 {
		return "", true
	}
	s := stmts[0]
	if len(s.Comments()) > 0 {
		return "", false
	}
	if _, ok := s.(*Comment); ok {
		return "", false
	}
	sub := &printer{indent: p.indent, stmtNode: s}
	sub.expr(s)
	line := sub.b.String()
	if strings.Contains(line, "\n") {
		return "", false
	}
	return line, true
}

func (p *printer) typeLit(t *TypeLit) {
	own := p.ownComments(t)
	p.write("type ")
	if len(own) == 0 && len(t.Methods) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.indent++
	if len(own) > 0 {
		p.commentLines(own)
		p.newline()
	}
	for _, m := range t.Methods {
		p.commentLines(m.Comments())
		p.writeIndent()
		p.header(m.Header)
		p.newline()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func isSimpleTerm(n Node) bool {
	switch n.(type) {
	case *Identifier, *Number, *StringLit, *InterpolatedString,
		*ImplicitRequest, *ExplicitRequest, *Block, *ObjectLit, *TypeLit:
		return true
	}
	return false
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"{", `\{`,
	"}", `\}`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func escape(s string) string {
	return escaper.Replace(s)
}
