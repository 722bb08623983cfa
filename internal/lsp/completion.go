package lsp

import (
	"encoding/json"
	"strings"

	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/lexer"
)

// CompletionList represents a list of completion items.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type CompletionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

const (
	completionKindMethod    = 2
	completionKindVariable  = 6
	completionKindClass     = 7
	completionKindInterface = 8
	completionKindModule    = 9
	completionKindKeyword   = 14
	completionKindConstant  = 21
)

func (s *Server) handleCompletion(msg *jsonrpcMessage) *jsonrpcMessage {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, errInvalidParams, "Invalid params: %v", err)
	}

	doc, ok := s.document(params.TextDocument.URI)
	if !ok {
		return reply(msg, CompletionList{Items: []CompletionItem{}})
	}
	return reply(msg, CompletionList{Items: completions(doc, params.Position)})
}

// completions offers the declared names and, outside a request after `.`,
// the keywords, all filtered by the word typed so far.
func completions(doc *Document, pos Position) []CompletionItem {
	word, start := wordAt(doc.Content, pos)
	prefix := []rune(word)
	if n := pos.Character - start; n >= 0 && n < len(prefix) {
		prefix = prefix[:n]
	}
	afterDot := precededByDot(doc.Content, Position{Line: pos.Line, Character: start})

	items := []CompletionItem{}
	seen := make(map[string]bool)
	for _, d := range doc.Declarations {
		for _, key := range d.keys {
			if seen[key] || !strings.HasPrefix(key, string(prefix)) {
				continue
			}
			seen[key] = true
			items = append(items, CompletionItem{
				Label:  key,
				Kind:   completionKind(d.Kind),
				Detail: ast.Signature(d.Node),
			})
		}
	}

	if afterDot {
		return items
	}
	for _, kw := range lexer.Keywords() {
		if strings.HasPrefix(kw, string(prefix)) && !seen[kw] {
			items = append(items, CompletionItem{Label: kw, Kind: completionKindKeyword})
		}
	}
	return items
}

func precededByDot(content string, pos Position) bool {
	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return false
	}
	line := []rune(lines[pos.Line])
	i := min(pos.Character, len(line)) - 1
	return i >= 0 && line[i] == '.'
}

func completionKind(k SymbolKind) int {
	switch k {
	case SymbolMethod:
		return completionKindMethod
	case SymbolClass, SymbolObject:
		return completionKindClass
	case SymbolInterface:
		return completionKindInterface
	case SymbolModule:
		return completionKindModule
	case SymbolConstant:
		return completionKindConstant
	default:
		return completionKindVariable
	}
}
