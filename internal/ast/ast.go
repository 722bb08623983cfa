package ast

import (
	"sort"
	"strings"

	"github.com/grace-lang/grace/internal/lexer"
)

// Node represents any AST node with an associated source span and the
// comments that document it.
type Node interface {
	Span() lexer.Span
	Comments() []*Comment
	AttachComments(comments ...*Comment)
}

// node carries the state every AST node shares.
type node struct {
	span     lexer.Span
	comments []*Comment
}

// Span returns the span of the token the node originates from.
func (n *node) Span() lexer.Span { return n.span }

// SetSpan updates the node span.
func (n *node) SetSpan(span lexer.Span) { n.span = span }

// Comments returns the node's comment chain in source order.
func (n *node) Comments() []*Comment { return n.comments }

// AttachComments appends comments to the chain. The chain is kept in source
// order whatever order the comments were collected in.
func (n *node) AttachComments(comments ...*Comment) {
	if len(comments) == 0 {
		return
	}
	n.comments = append(n.comments, comments...)
	sort.SliceStable(n.comments, func(i, j int) bool {
		return n.comments[i].span.Start < n.comments[j].span.Start
	})
}

// Module is the root of a parsed source file.
type Module struct {
	node
	Name string
	Body []Node
}

// NewModule constructs a module node.
func NewModule(name string, span lexer.Span) *Module {
	return &Module{node: node{span: span}, Name: name}
}

// ObjectLit represents an `object { ... }` constructor.
type ObjectLit struct {
	node
	Body []Node
}

// NewObjectLit constructs an object literal node.
func NewObjectLit(span lexer.Span) *ObjectLit {
	return &ObjectLit{node: node{span: span}}
}

// Block represents a block literal `{ params -> body }`.
type Block struct {
	node
	Params []Node
	Body   []Node
}

// NewBlock constructs a block literal node.
func NewBlock(span lexer.Span) *Block {
	return &Block{node: node{span: span}}
}

// TypeLit represents a `type { ... }` literal; its body is method headers only.
type TypeLit struct {
	node
	Methods []*TypeMethod
}

// NewTypeLit constructs a type literal node.
func NewTypeLit(methods []*TypeMethod, span lexer.Span) *TypeLit {
	return &TypeLit{node: node{span: span}, Methods: methods}
}

// VarDecl represents `var name : T is ann := value`.
type VarDecl struct {
	node
	Name        *Identifier
	Type        Node
	Annotations *Annotations
	Value       Node
}

// NewVarDecl constructs a var declaration node.
func NewVarDecl(name *Identifier, typ Node, annotations *Annotations, value Node, span lexer.Span) *VarDecl {
	return &VarDecl{
		node:        node{span: span},
		Name:        name,
		Type:        typ,
		Annotations: annotations,
		Value:       value,
	}
}

// DefDecl represents `def name : T is ann = value`.
type DefDecl struct {
	node
	Name        *Identifier
	Type        Node
	Annotations *Annotations
	Value       Node
}

// NewDefDecl constructs a def declaration node.
func NewDefDecl(name *Identifier, typ Node, annotations *Annotations, value Node, span lexer.Span) *DefDecl {
	return &DefDecl{
		node:        node{span: span},
		Name:        name,
		Type:        typ,
		Annotations: annotations,
		Value:       value,
	}
}

// Part is one segment of a multi-part method name together with the
// parameters declared for that segment.
type Part struct {
	node
	Name     string
	Params   []Node
	Generics []Node
}

// NewPart constructs a method name part.
func NewPart(name string, span lexer.Span) *Part {
	return &Part{node: node{span: span}, Name: name}
}

// MethodHeader is the signature shared by methods, classes and type methods.
type MethodHeader struct {
	node
	Parts       []*Part
	ReturnType  Node
	Annotations *Annotations
}

// NewMethodHeader constructs an empty header; parts are added while parsing.
func NewMethodHeader(span lexer.Span) *MethodHeader {
	return &MethodHeader{node: node{span: span}}
}

// AddPart appends a name part and returns it.
func (h *MethodHeader) AddPart(name string, span lexer.Span) *Part {
	p := NewPart(name, span)
	h.Parts = append(h.Parts, p)
	return p
}

// Name returns the canonical multi-part name, e.g. `at(_)put(_)`.
func (h *MethodHeader) Name() string {
	var b strings.Builder
	for _, p := range h.Parts {
		writePartName(&b, p.Name, len(p.Params))
	}
	return b.String()
}

// MethodDecl represents `method header { body }`.
type MethodDecl struct {
	node
	Header *MethodHeader
	Body   []Node
}

// NewMethodDecl constructs a method declaration node.
func NewMethodDecl(header *MethodHeader, span lexer.Span) *MethodDecl {
	return &MethodDecl{node: node{span: span}, Header: header}
}

// ClassDecl represents `class base.header { body }`.
type ClassDecl struct {
	node
	BaseName *Identifier
	Header   *MethodHeader
	Body     []Node
}

// NewClassDecl constructs a class declaration node.
func NewClassDecl(base *Identifier, header *MethodHeader, span lexer.Span) *ClassDecl {
	return &ClassDecl{node: node{span: span}, BaseName: base, Header: header}
}

// TypeMethod is a method signature inside a type body.
type TypeMethod struct {
	node
	Header *MethodHeader
}

// NewTypeMethod constructs a type method node.
func NewTypeMethod(header *MethodHeader, span lexer.Span) *TypeMethod {
	return &TypeMethod{node: node{span: span}, Header: header}
}

// TypeStatement represents `type Name<T, U> = expr`.
type TypeStatement struct {
	node
	Name          *Identifier
	GenericParams []*Identifier
	Type          Node
}

// NewTypeStatement constructs a named type statement.
func NewTypeStatement(name *Identifier, generics []*Identifier, typ Node, span lexer.Span) *TypeStatement {
	return &TypeStatement{
		node:          node{span: span},
		Name:          name,
		GenericParams: generics,
		Type:          typ,
	}
}

// PlainParameter is an untyped parameter.
type PlainParameter struct {
	node
	Term Node
}

// NewPlainParameter wraps term as a parameter.
func NewPlainParameter(term Node) *PlainParameter {
	return &PlainParameter{node: node{span: term.Span()}, Term: term}
}

// TypedParameter is `term : Type`, also used for typed request arguments.
type TypedParameter struct {
	node
	Term Node
	Type Node
}

// NewTypedParameter constructs a typed parameter.
func NewTypedParameter(term, typ Node) *TypedParameter {
	return &TypedParameter{node: node{span: term.Span()}, Term: term, Type: typ}
}

// VarArgsParameter is `*name` or `*name : Type`.
type VarArgsParameter struct {
	node
	Param Node
}

// NewVarArgsParameter wraps a plain or typed parameter as variadic.
func NewVarArgsParameter(param Node, span lexer.Span) *VarArgsParameter {
	return &VarArgsParameter{node: node{span: span}, Param: param}
}

// RequestPart is one segment of a request with its own arguments.
type RequestPart struct {
	node
	Name     string
	Args     []Node
	Generics []Node
}

// NewRequestPart constructs a request part.
func NewRequestPart(name string, span lexer.Span) *RequestPart {
	return &RequestPart{node: node{span: span}, Name: name}
}

// ImplicitRequest is a request without an explicit receiver: `at 1 put 2`.
type ImplicitRequest struct {
	node
	Parts []*RequestPart
}

// NewImplicitRequest starts a request whose first part is named by id.
func NewImplicitRequest(id *Identifier) *ImplicitRequest {
	return &ImplicitRequest{
		node:  node{span: id.Span()},
		Parts: []*RequestPart{NewRequestPart(id.Name, id.Span())},
	}
}

// AddPart appends a name part and returns it.
func (r *ImplicitRequest) AddPart(id *Identifier) *RequestPart {
	p := NewRequestPart(id.Name, id.Span())
	r.Parts = append(r.Parts, p)
	return p
}

// Name returns the canonical multi-part name.
func (r *ImplicitRequest) Name() string { return requestName(r.Parts) }

// ExplicitRequest is a dot-request `receiver.part args part args`.
type ExplicitRequest struct {
	node
	Receiver Node
	Parts    []*RequestPart
}

// NewExplicitRequest constructs a dot-request on receiver.
func NewExplicitRequest(receiver Node, span lexer.Span) *ExplicitRequest {
	return &ExplicitRequest{node: node{span: span}, Receiver: receiver}
}

// AddPart appends a name part and returns it.
func (r *ExplicitRequest) AddPart(id *Identifier) *RequestPart {
	p := NewRequestPart(id.Name, id.Span())
	r.Parts = append(r.Parts, p)
	return p
}

// Name returns the canonical multi-part name.
func (r *ExplicitRequest) Name() string { return requestName(r.Parts) }

// Identifier is a bare name.
type Identifier struct {
	node
	Name string
}

// NewIdentifier constructs an identifier node.
func NewIdentifier(name string, span lexer.Span) *Identifier {
	return &Identifier{node: node{span: span}, Name: name}
}

// Number is a numeric literal. Raw keeps the source spelling (radix literals).
type Number struct {
	node
	Raw   string
	Value float64
}

// NewNumber constructs a number literal.
func NewNumber(raw string, value float64, span lexer.Span) *Number {
	return &Number{node: node{span: span}, Raw: raw, Value: value}
}

// StringLit is a string literal or one literal segment of an interpolation.
type StringLit struct {
	node
	Value string
}

// NewStringLit constructs a string literal.
func NewStringLit(value string, span lexer.Span) *StringLit {
	return &StringLit{node: node{span: span}, Value: value}
}

// InterpolatedString alternates *StringLit segments with embedded
// expressions; it always starts and ends with a literal segment.
type InterpolatedString struct {
	node
	Parts []Node
}

// NewInterpolatedString constructs an interpolated string.
func NewInterpolatedString(span lexer.Span) *InterpolatedString {
	return &InterpolatedString{node: node{span: span}}
}

// Operator is a binary operator application.
type Operator struct {
	node
	Op    string
	Left  Node
	Right Node
}

// NewOperator constructs a binary operator node positioned at the operator.
func NewOperator(op string, left, right Node, span lexer.Span) *Operator {
	return &Operator{node: node{span: span}, Op: op, Left: left, Right: right}
}

// PrefixOperator is a unary operator application such as `-x` or `!done`.
type PrefixOperator struct {
	node
	Op      string
	Operand Node
}

// NewPrefixOperator constructs a prefix operator node.
func NewPrefixOperator(op string, operand Node, span lexer.Span) *PrefixOperator {
	return &PrefixOperator{node: node{span: span}, Op: op, Operand: operand}
}

// Bind is an assignment `target := value`.
type Bind struct {
	node
	Target Node
	Value  Node
}

// NewBind constructs a bind statement.
func NewBind(target, value Node, span lexer.Span) *Bind {
	return &Bind{node: node{span: span}, Target: target, Value: value}
}

// Return is `return` with an optional value.
type Return struct {
	node
	Value Node
}

// NewReturn constructs a return statement; value may be nil.
func NewReturn(value Node, span lexer.Span) *Return {
	return &Return{node: node{span: span}, Value: value}
}

// Inherits is `inherits expr`.
type Inherits struct {
	node
	From Node
}

// NewInherits constructs an inherits statement.
func NewInherits(from Node, span lexer.Span) *Inherits {
	return &Inherits{node: node{span: span}, From: from}
}

// Import is `import "path" as name : Type`.
type Import struct {
	node
	Path *StringLit
	Name *Identifier
	Type Node
}

// NewImport constructs an import statement.
func NewImport(path *StringLit, name *Identifier, typ Node, span lexer.Span) *Import {
	return &Import{node: node{span: span}, Path: path, Name: name, Type: typ}
}

// Dialect is `dialect "path"`.
type Dialect struct {
	node
	Path *StringLit
}

// NewDialect constructs a dialect statement.
func NewDialect(path *StringLit, span lexer.Span) *Dialect {
	return &Dialect{node: node{span: span}, Path: path}
}

// Annotations is the list following `is`.
type Annotations struct {
	node
	List []Node
}

// NewAnnotations constructs an empty annotation list.
func NewAnnotations(span lexer.Span) *Annotations {
	return &Annotations{node: node{span: span}}
}

// Comment is a `//` line comment; Text excludes the slashes.
type Comment struct {
	node
	Text string
}

// NewComment constructs a comment node.
func NewComment(text string, span lexer.Span) *Comment {
	return &Comment{node: node{span: span}, Text: text}
}

func requestName(parts []*RequestPart) string {
	var b strings.Builder
	for _, p := range parts {
		writePartName(&b, p.Name, len(p.Args))
	}
	return b.String()
}

func writePartName(b *strings.Builder, name string, arity int) {
	b.WriteString(name)
	if arity == 0 {
		return
	}
	b.WriteByte('(')
	for i := 0; i < arity; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('_')
	}
	b.WriteByte(')')
}
