package parser

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// TokenSource is the pull-based token stream the parser consumes.
// *lexer.Lexer implements it.
type TokenSource interface {
	Current() lexer.Token
	NextToken() lexer.Token
	Peek() lexer.Token
	TreatAsString() lexer.Token
}

// lexicalErrors is implemented by token sources that can explain the
// ILLEGAL tokens they produce.
type lexicalErrors interface {
	ErrorAt(tok lexer.Token) (lexer.LexerError, bool)
}

const defaultModuleName = "source code"

type Option func(*options)

type options struct {
	module   string
	sink     diag.Sink
	logger   *slog.Logger
	tabWidth int
}

// WithModuleName names the module in diagnostics and spans.
func WithModuleName(name string) Option {
	return func(o *options) {
		o.module = name
	}
}

// WithSink sends every diagnostic to s as it is raised.
func WithSink(s diag.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithLogger enables debug logging of parse milestones. A nil logger
// disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTabWidth sets the tab stop width used for indentation columns.
func WithTabWidth(n int) Option {
	return func(o *options) {
		o.tabWidth = n
	}
}

// Parser turns a Grace token stream into an AST.
//
// State threaded through the productions lives here and is saved and
// restored around every nested body:
//   - indentColumn is the column sibling statements of the open body share.
//     A line break followed by a token right of it continues the line.
//   - comments collects comment nodes for the statement or header being
//     parsed; they are attached to that node when it is complete.
//   - noBlocks stops `{` from being read as a block argument while parsing
//     annotations and return types, where it opens the body instead.
//
// A Parser is single use: call Parse once.
type Parser struct {
	ts     TokenSource
	module string
	sink   diag.Sink
	log    *slog.Logger
	empty  bool

	indentColumn int
	comments     []*ast.Comment
	noBlocks     bool
}

// New returns a parser over src using the bundled lexer.
func New(src string, opts ...Option) *Parser {
	cfg := buildOptions(opts)
	lx := lexer.New(src, lexer.WithFilename(cfg.module), lexer.WithTabWidth(cfg.tabWidth))
	p := newParser(lx, cfg)
	p.empty = len(src) == 0
	return p
}

// NewFromSource returns a parser reading tokens from ts.
func NewFromSource(ts TokenSource, opts ...Option) *Parser {
	return newParser(ts, buildOptions(opts))
}

// Parse parses src as a module. It is shorthand for New(src, opts...).Parse().
func Parse(src string, opts ...Option) (*ast.Module, error) {
	return New(src, opts...).Parse()
}

func buildOptions(opts []Option) options {
	cfg := options{module: defaultModuleName, tabWidth: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func newParser(ts TokenSource, cfg options) *Parser {
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{
		ts:     ts,
		module: cfg.module,
		sink:   cfg.sink,
		log:    logger.With(slog.String("component", "parser"), slog.String("module", cfg.module)),
	}
}

// Parse parses the whole token stream into a module.
//
// Every diagnostic is fatal: it is reported to the sink and parsing stops.
// The returned module then holds the statements completed before the
// failure, and the error is a *ParseError.
func (p *Parser) Parse() (mod *ast.Module, err error) {
	mod = ast.NewModule(p.module, lexer.Span{Filename: p.module, Line: 1, Column: 1})
	if p.empty {
		return mod, nil
	}

	start := time.Now()
	p.log.Debug("parse started")

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
		p.log.Debug("parse finished",
			slog.Int("statements", len(mod.Body)),
			slog.Duration("elapsed", time.Since(start)),
			slog.Bool("ok", err == nil))
	}()

	p.checkIllegal(p.cur())
	p.parseModuleBody(mod)
	return mod, nil
}

// parseModuleBody runs the top-level statement loop. Each statement sets the
// indentation baseline to its own first column.
func (p *Parser) parseModuleBody(mod *ast.Module) {
	was := p.cur()
	for !p.done() {
		p.consumeBlankLines()
		if p.done() {
			break
		}
		p.indentColumn = p.cur().Span.Column

		n := p.parseStatement()
		if n != nil {
			mod.Body = append(mod.Body, n)
			p.log.Debug("statement",
				slog.Int("line", n.Span().Line),
				slog.String("kind", fmt.Sprintf("%T", n)))
		}

		if lexer.Same(p.cur(), was) {
			p.fail(diag.CodeUnknownConstruct, tokenVars(p.cur()), "unknown construct")
		}
		for p.is(lexer.NEWLINE) {
			p.advance()
		}
		was = p.cur()
	}
}

// withBlocks sets whether `{` may open a block argument and returns a
// function restoring the previous setting.
func (p *Parser) withBlocks(allowed bool) (restore func()) {
	prev := p.noBlocks
	p.noBlocks = !allowed
	return func() {
		p.noBlocks = prev
	}
}
