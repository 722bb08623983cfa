package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/parser"
)

// Server is a language server speaking JSON-RPC 2.0 over a byte stream.
// It answers from the syntax tree alone.
type Server struct {
	// Documents tracks open files by URI
	Documents map[string]*Document
	mu        sync.RWMutex

	out   io.Writer
	outMu sync.Mutex

	log      *slog.Logger
	tabWidth int
	rootPath string
	exited   bool
}

// Document is an open file together with its last parse.
type Document struct {
	URI     string
	Content string
	Version int

	// Module holds the statements parsed before the first diagnostic.
	Module       *ast.Module
	Diagnostics  []diag.Diagnostic
	Declarations []Declaration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Nil discards records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l.With(slog.String("component", "lsp"))
		}
	}
}

// WithTabWidth sets the tab stop used for columns.
func WithTabWidth(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.tabWidth = n
		}
	}
}

// NewServer creates a new language server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		Documents: make(map[string]*Document),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		tabWidth:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves requests read from r and writes replies and notifications to w
// until r is exhausted, the client sends exit, or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	s.out = w
	reader := bufio.NewReader(r)

	for !s.exited {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var msg jsonrpcMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			s.log.Warn("malformed message", slog.String("error", err.Error()))
			continue
		}

		s.log.Debug("request", slog.String("method", msg.Method))
		if response := s.handleMessage(ctx, &msg); response != nil {
			if err := s.send(response); err != nil {
				return err
			}
		}
	}
	return nil
}

// readMessage reads one Content-Length framed message body.
func readMessage(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, errors.New("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return body, nil
}

// jsonrpcMessage represents a JSON-RPC 2.0 message.
type jsonrpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	errInvalidParams  = -32602
	errMethodNotFound = -32601
	errInternal       = -32603
)

// reply wraps result in a response to msg. A nil result is sent as null.
func reply(msg *jsonrpcMessage, result any) *jsonrpcMessage {
	data, err := json.Marshal(result)
	if err != nil {
		return replyError(msg, errInternal, "failed to marshal result: %v", err)
	}
	return &jsonrpcMessage{JSONRPC: "2.0", ID: msg.ID, Result: data}
}

func replyError(msg *jsonrpcMessage, code int, format string, args ...any) *jsonrpcMessage {
	return &jsonrpcMessage{
		JSONRPC: "2.0",
		ID:      msg.ID,
		Error:   &jsonrpcError{Code: code, Message: fmt.Sprintf(format, args...)},
	}
}

// handleMessage processes a JSON-RPC message and returns a response.
func (s *Server) handleMessage(ctx context.Context, msg *jsonrpcMessage) *jsonrpcMessage {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "textDocument/didOpen":
		s.handleDidOpen(msg)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(msg)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(msg)
		return nil
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(msg)
	case "shutdown":
		return reply(msg, nil)
	case "exit":
		s.exited = true
		return nil
	default:
		if len(msg.ID) > 0 {
			return replyError(msg, errMethodNotFound, "Method not found: %s", msg.Method)
		}
		return nil
	}
}

// send writes a framed message.
func (s *Server) send(msg *jsonrpcMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()

	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	return nil
}

func (s *Server) notify(method string, params any) {
	data, err := json.Marshal(params)
	if err != nil {
		s.log.Warn("marshal notification", slog.String("method", method), slog.String("error", err.Error()))
		return
	}
	if err := s.send(&jsonrpcMessage{JSONRPC: "2.0", Method: method, Params: data}); err != nil {
		s.log.Warn("send notification", slog.String("method", method), slog.String("error", err.Error()))
	}
}

// InitializeParams represents the initialize request parameters.
type InitializeParams struct {
	ProcessID int    `json:"processId,omitempty"`
	RootPath  string `json:"rootPath,omitempty"`
	RootURI   string `json:"rootUri,omitempty"`
}

// InitializeResult represents the initialize response.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerCapabilities struct {
	TextDocumentSync       int                `json:"textDocumentSync"`
	CompletionProvider     *CompletionOptions `json:"completionProvider,omitempty"`
	HoverProvider          bool               `json:"hoverProvider"`
	DefinitionProvider     bool               `json:"definitionProvider"`
	DocumentSymbolProvider bool               `json:"documentSymbolProvider"`
}

type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Version is reported to clients in serverInfo.
const Version = "0.1.0"

func (s *Server) handleInitialize(msg *jsonrpcMessage) *jsonrpcMessage {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return replyError(msg, errInvalidParams, "Invalid params: %v", err)
	}

	if params.RootURI != "" {
		s.rootPath = uriToPath(params.RootURI)
	} else if params.RootPath != "" {
		s.rootPath = params.RootPath
	}

	return reply(msg, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:       1, // full content on every change
			CompletionProvider:     &CompletionOptions{TriggerCharacters: []string{"."}},
			HoverProvider:          true,
			DefinitionProvider:     true,
			DocumentSymbolProvider: true,
		},
		ServerInfo: ServerInfo{Name: "grace-lsp", Version: Version},
	})
}

// DidOpenTextDocumentParams represents didOpen notification parameters.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

func (s *Server) handleDidOpen(msg *jsonrpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("invalid didOpen params", slog.String("error", err.Error()))
		return
	}

	doc := &Document{
		URI:     params.TextDocument.URI,
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	s.updateDocument(doc)

	s.mu.Lock()
	s.Documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(doc)
}

// DidChangeTextDocumentParams represents didChange notification parameters.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

func (s *Server) handleDidChange(msg *jsonrpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("invalid didChange params", slog.String("error", err.Error()))
		return
	}
	if len(params.ContentChanges) == 0 {
		return
	}

	s.mu.Lock()
	doc, ok := s.Documents[params.TextDocument.URI]
	if ok {
		next := &Document{
			URI:     doc.URI,
			Content: params.ContentChanges[len(params.ContentChanges)-1].Text,
			Version: params.TextDocument.Version,
		}
		s.updateDocument(next)
		s.Documents[doc.URI] = next
		doc = next
	}
	s.mu.Unlock()

	if ok {
		s.publishDiagnostics(doc)
	}
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

func (s *Server) handleDidClose(msg *jsonrpcMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("invalid didClose params", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	delete(s.Documents, params.TextDocument.URI)
	s.mu.Unlock()

	// Clear the client's diagnostics for the closed file.
	s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
}

func (s *Server) document(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.Documents[uri]
	return doc, ok
}

// updateDocument parses doc and records its diagnostics and declarations.
func (s *Server) updateDocument(doc *Document) {
	mod, err := parser.Parse(doc.Content,
		parser.WithModuleName(uriToPath(doc.URI)),
		parser.WithTabWidth(s.tabWidth),
		parser.WithLogger(s.log),
	)

	doc.Module = mod
	doc.Diagnostics = nil
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		doc.Diagnostics = append(doc.Diagnostics, pe.Diagnostic())
	}
	doc.Declarations = collectDeclarations(mod)
}

// PublishDiagnosticsParams is the payload of textDocument/publishDiagnostics.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     int          `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// publishDiagnostics sends diagnostics to the client.
func (s *Server) publishDiagnostics(doc *Document) {
	out := make([]Diagnostic, 0, len(doc.Diagnostics))
	for _, d := range doc.Diagnostics {
		out = append(out, Diagnostic{
			Range:    spanRange(d.Span.Line, d.Span.Column, d.Span.End-d.Span.Start),
			Severity: diagnosticSeverity(d.Severity),
			Message:  d.Message,
			Code:     string(d.Code),
			Source:   "grace",
		})
	}

	s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: out,
	})
}

// Diagnostic represents an LSP diagnostic.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source,omitempty"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Position is zero-based, unlike source spans.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// spanRange converts a 1-based line and column plus a width into a range.
// Empty spans cover one character.
func spanRange(line, column, width int) Range {
	if width < 1 {
		width = 1
	}
	start := Position{Line: max(line-1, 0), Character: max(column-1, 0)}
	return Range{Start: start, End: Position{Line: start.Line, Character: start.Character + width}}
}

func diagnosticSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SeverityWarning:
		return 2
	case diag.SeverityNote:
		return 3
	default:
		return 1
	}
}

// uriToPath converts a file:// URI to a file path.
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	path := u.Path
	// Windows drive letters arrive as /C:/...
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path
}
