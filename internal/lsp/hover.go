package lsp

import (
	"encoding/json"
	"strings"

	"github.com/grace-lang/grace/internal/ast"
)

// Hover represents hover information.
type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func (s *Server) handleHover(msg *jsonrpcMessage) *jsonrpcMessage {
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

	word, start := wordAt(doc.Content, params.Position)
	r := Range{
		Start: Position{Line: params.Position.Line, Character: start},
		End:   Position{Line: params.Position.Line, Character: start + len([]rune(word))},
	}
	return reply(msg, Hover{
		Contents: MarkupContent{Kind: "markdown", Value: hoverText(d)},
		Range:    &r,
	})
}

// hoverText shows the declaration head followed by its comment chain.
func hoverText(d Declaration) string {
	var b strings.Builder
	b.WriteString("```grace\n")
	b.WriteString(ast.Signature(d.Node))
	b.WriteString("\n```")

	var notes []string
	for _, c := range d.Node.Comments() {
		notes = append(notes, strings.TrimSpace(c.Text))
	}
	if len(notes) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(notes, "\n"))
	}
	if d.Container != "" {
		b.WriteString("\n\nin `" + d.Container + "`")
	}
	return b.String()
}
