package lsp

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/lexer"
)

// SymbolKind values from the protocol.
type SymbolKind int

const (
	SymbolModule    SymbolKind = 2
	SymbolClass     SymbolKind = 5
	SymbolMethod    SymbolKind = 6
	SymbolInterface SymbolKind = 11
	SymbolVariable  SymbolKind = 13
	SymbolConstant  SymbolKind = 14
	SymbolObject    SymbolKind = 19
)

// Declaration is a named definition found in a document.
type Declaration struct {
	Name      string
	Kind      SymbolKind
	Container string
	Span      lexer.Span
	Node      ast.Node

	// keys are the words that refer to the declaration: every part name of
	// a method, the plain name otherwise.
	keys []string
}

func (d Declaration) matches(word string) bool {
	for _, k := range d.keys {
		if k == word {
			return true
		}
	}
	return false
}

// collectDeclarations lists the declarations of mod in source order.
func collectDeclarations(mod *ast.Module) []Declaration {
	if mod == nil {
		return nil
	}
	c := &collector{}
	c.body(mod.Body, "")
	return c.decls
}

type collector struct {
	decls []Declaration
}

func (c *collector) add(name string, kind SymbolKind, container string, span lexer.Span, n ast.Node, keys ...string) {
	if len(keys) == 0 {
		keys = []string{name}
	}
	c.decls = append(c.decls, Declaration{
		Name:      name,
		Kind:      kind,
		Container: container,
		Span:      span,
		Node:      n,
		keys:      keys,
	})
}

func (c *collector) body(stmts []ast.Node, container string) {
	for _, stmt := range stmts {
		c.stmt(stmt, container)
	}
}

func (c *collector) stmt(n ast.Node, container string) {
	switch n := n.(type) {
	case *ast.VarDecl:
		c.add(n.Name.Name, SymbolVariable, container, n.Name.Span(), n)
		c.value(n.Value, n.Name.Name)

	case *ast.DefDecl:
		kind := SymbolConstant
		if _, ok := n.Value.(*ast.ObjectLit); ok {
			kind = SymbolObject
		}
		c.add(n.Name.Name, kind, container, n.Name.Span(), n)
		c.value(n.Value, n.Name.Name)

	case *ast.MethodDecl:
		name := c.header(n.Header, SymbolMethod, container, n)
		c.body(n.Body, name)

	case *ast.ClassDecl:
		if n.BaseName == nil {
			return
		}
		c.add(n.BaseName.Name, SymbolClass, container, n.BaseName.Span(), n)
		c.body(n.Body, n.BaseName.Name)

	case *ast.TypeStatement:
		c.add(n.Name.Name, SymbolInterface, container, n.Name.Span(), n)
		c.value(n.Type, n.Name.Name)

	case *ast.Import:
		if n.Name != nil {
			c.add(n.Name.Name, SymbolModule, container, n.Name.Span(), n)
		}

	case *ast.Bind:
		c.value(n.Value, container)
	}
}

// value descends into literals that carry declarations of their own.
func (c *collector) value(n ast.Node, container string) {
	switch n := n.(type) {
	case *ast.ObjectLit:
		c.body(n.Body, container)
	case *ast.TypeLit:
		for _, m := range n.Methods {
			c.header(m.Header, SymbolMethod, container, m)
		}
	}
}

func (c *collector) header(h *ast.MethodHeader, kind SymbolKind, container string, n ast.Node) string {
	if h == nil || len(h.Parts) == 0 {
		return container
	}
	keys := make([]string, 0, len(h.Parts))
	for _, p := range h.Parts {
		keys = append(keys, p.Name)
	}
	name := h.Name()
	c.add(name, kind, container, h.Parts[0].Span(), n, keys...)
	return name
}

// SymbolInformation is one entry of a documentSymbol reply.
type SymbolInformation struct {
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	Location      Location   `json:"location"`
	ContainerName string     `json:"containerName,omitempty"`
}

// Location represents a location in a document.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

func declarationLocation(uri string, d Declaration) Location {
	width := len([]rune(d.keys[0]))
	return Location{URI: uri, Range: spanRange(d.Span.Line, d.Span.Column, width)}
}

func (s *Server) handleDocumentSymbol(msg *jsonrpcMessage) *jsonrpcMessage {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, errInvalidParams, "Invalid params: %v", err)
	}

	symbols := []SymbolInformation{}
	if doc, ok := s.document(params.TextDocument.URI); ok {
		for _, d := range doc.Declarations {
			symbols = append(symbols, SymbolInformation{
				Name:          d.Name,
				Kind:          d.Kind,
				Location:      declarationLocation(doc.URI, d),
				ContainerName: d.Container,
			})
		}
	}
	return reply(msg, symbols)
}

// TextDocumentPositionParams represents a position in a text document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

func (s *Server) handleDefinition(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, errInvalidParams, "Invalid params: %v", err)
	}

	doc, ok := s.document(params.TextDocument.URI)
	if !ok {
		return reply(msg, nil)
	}
	d, ok := lookup(doc, params.Position)
	if !ok {
		return reply(msg, nil)
	}
	return reply(msg, declarationLocation(doc.URI, d))
}

// lookup finds the declaration named by the word under pos. The nearest
// declaration at or above the cursor line wins, then the first one below.
func lookup(doc *Document, pos Position) (Declaration, bool) {
	word, _ := wordAt(doc.Content, pos)
	if word == "" {
		return Declaration{}, false
	}

	var found *Declaration
	for i := range doc.Declarations {
		d := &doc.Declarations[i]
		if !d.matches(word) {
			continue
		}
		if d.Span.Line-1 <= pos.Line {
			found = d
			continue
		}
		if found == nil {
			found = d
		}
		break
	}
	if found == nil {
		return Declaration{}, false
	}
	return *found, true
}

// wordAt returns the identifier touching pos and the character offset where
// it starts.
func wordAt(content string, pos Position) (string, int) {
	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return "", 0
	}
	line := []rune(strings.TrimRight(lines[pos.Line], "\r"))
	at := min(max(pos.Character, 0), len(line))

	start := at
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	end := at
	for end < len(line) && isWordRune(line[end]) {
		end++
	}
	if start == end || unicode.IsDigit(line[start]) {
		return "", start
	}
	return string(line[start:end]), start
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
