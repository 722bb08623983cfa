package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/grace-lang/grace/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrIllegalRune
	ErrBadNumber
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnterminatedString:
		return diag.CodeLexerUnterminatedString
	case ErrIllegalRune:
		return diag.CodeLexerIllegalRune
	case ErrBadNumber:
		return diag.CodeLexerBadNumber
	default:
		return diag.Code("L0000")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Module:   e.Span.Filename,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFilename attributes every span to name.
func WithFilename(name string) Option {
	return func(l *Lexer) {
		l.filename = name
	}
}

// WithTabWidth makes a tab advance the column to the next multiple of n.
// Widths below 1 are ignored.
func WithTabWidth(n int) Option {
	return func(l *Lexer) {
		if n >= 1 {
			l.tabWidth = n
		}
	}
}

// cursor is the complete scanning state; copying it is how Peek and
// TreatAsString rewind.
type cursor struct {
	pos          int
	line         int
	column       int
	genericDepth int
}

// Lexer is a pull-based token source. Current always holds the token under
// examination; Peek scans one token ahead without consuming it.
type Lexer struct {
	input    []rune
	filename string
	tabWidth int

	at     cursor // scan position
	resume cursor // scan position immediately after current

	current Token
	peeked  *Token

	Errors []LexerError
}

// New creates a lexer over input and scans the first token.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input:    []rune(input),
		tabWidth: 1,
		at:       cursor{line: 1, column: 1},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.NextToken()
	return l
}

// Current returns the token under examination.
func (l *Lexer) Current() Token {
	return l.current
}

// Done reports whether the lexer has reached the end of input.
func (l *Lexer) Done() bool {
	return l.current.Type == EOF
}

// NextToken advances to the next token and returns it.
func (l *Lexer) NextToken() Token {
	if l.peeked != nil {
		l.current = *l.peeked
		l.peeked = nil
	} else {
		l.current = l.scan()
	}
	l.resume = l.at
	return l.current
}

// Peek returns the token after Current without advancing.
func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		tok := l.scan()
		l.peeked = &tok
	}
	return *l.peeked
}

// TreatAsString rescans from just after the current '}' as the continuation
// of an interpolated string literal, replacing Current with the resulting
// STRING token.
func (l *Lexer) TreatAsString() Token {
	l.peeked = nil
	l.at = l.resume
	line, column, start := l.at.line, l.at.column, l.at.pos
	l.current = l.scanString(line, column, start, false)
	l.resume = l.at
	return l.current
}

// ErrorAt returns the lexical error recorded for an ILLEGAL token.
func (l *Lexer) ErrorAt(tok Token) (LexerError, bool) {
	for i := len(l.Errors) - 1; i >= 0; i-- {
		if l.Errors[i].Span.Start == tok.Span.Start {
			return l.Errors[i], true
		}
	}
	return LexerError{}, false
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

func (l *Lexer) ch() rune {
	return l.runeAt(l.at.pos)
}

func (l *Lexer) peekRune(n int) rune {
	return l.runeAt(l.at.pos + n)
}

func (l *Lexer) runeAt(i int) rune {
	if i < 0 || i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

// read consumes the current rune, keeping line/column in step.
func (l *Lexer) read() {
	if l.at.pos >= len(l.input) {
		return
	}
	r := l.input[l.at.pos]
	l.at.pos++
	switch r {
	case '\n':
		l.at.line++
		l.at.column = 1
	case '\t':
		if l.tabWidth > 1 {
			l.at.column = ((l.at.column-1)/l.tabWidth+1)*l.tabWidth + 1
		} else {
			l.at.column++
		}
	default:
		l.at.column++
	}
}

func (l *Lexer) makeToken(tt TokenType, line, column, start int, value string, spaceBefore bool) Token {
	return Token{
		Type:  tt,
		Raw:   string(l.input[start:l.at.pos]),
		Value: value,
		Span: Span{
			Filename: l.filename,
			Line:     line,
			Column:   column,
			Start:    start,
			End:      l.at.pos,
		},
		SpaceBefore: spaceBefore,
		SpaceAfter:  isSpaceOrEnd(l.ch()),
	}
}

func (l *Lexer) illegal(kind LexerErrorKind, msg string, line, column, start int, spaceBefore bool) Token {
	tok := l.makeToken(ILLEGAL, line, column, start, msg, spaceBefore)
	l.addError(kind, msg, tok.Span)
	return tok
}

func (l *Lexer) scan() Token {
	skipped := false
	for c := l.ch(); c == ' ' || c == '\t' || c == '\r'; c = l.ch() {
		l.read()
		skipped = true
	}
	spaceBefore := skipped || l.at.pos == 0 || l.runeAt(l.at.pos-1) == '\n'
	line, column, start := l.at.line, l.at.column, l.at.pos

	c := l.ch()
	switch {
	case c == 0:
		return l.makeToken(EOF, line, column, start, "", spaceBefore)

	case c == '\n':
		l.read()
		return l.makeToken(NEWLINE, line, column, start, "\n", spaceBefore)

	case c == '"':
		l.read()
		tok := l.scanString(line, column, start, spaceBefore)
		return tok

	case c == '/' && l.peekRune(1) == '/':
		l.read()
		l.read()
		for l.ch() != '\n' && l.ch() != 0 {
			l.read()
		}
		text := string(l.input[start+2 : l.at.pos])
		return l.makeToken(COMMENT, line, column, start, strings.TrimSuffix(text, "\r"), spaceBefore)

	case isDigit(c):
		return l.scanNumber(line, column, start, spaceBefore)

	case isLetter(c):
		for isLetter(l.ch()) || isDigit(l.ch()) {
			l.read()
		}
		name := string(l.input[start:l.at.pos])
		return l.makeToken(LookupIdent(name), line, column, start, name, spaceBefore)
	}

	if tt, ok := delimiters[c]; ok {
		l.read()
		return l.makeToken(tt, line, column, start, string(c), spaceBefore)
	}

	if isOperatorRune(c) {
		return l.scanOperator(line, column, start, spaceBefore)
	}

	l.read()
	return l.illegal(ErrIllegalRune, "illegal character "+strconv.QuoteRune(c), line, column, start, spaceBefore)
}

var delimiters = map[rune]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	',': COMMA,
	';': SEMICOLON,
}

func (l *Lexer) scanOperator(line, column, start int, spaceBefore bool) Token {
	c := l.ch()

	// Generic brackets hug their identifier: List<T>, foo<T>(x).
	if c == '>' && l.at.genericDepth > 0 && !spaceBefore {
		l.read()
		l.at.genericDepth--
		return l.makeToken(RGENERIC, line, column, start, ">", spaceBefore)
	}
	if c == '<' && !spaceBefore && isIdentRune(l.runeAt(l.at.pos-1)) && isLetter(l.peekRune(1)) {
		l.read()
		l.at.genericDepth++
		return l.makeToken(LGENERIC, line, column, start, "<", spaceBefore)
	}

	for isOperatorRune(l.ch()) {
		if l.at.pos > start && l.ch() == '/' && l.peekRune(1) == '/' {
			break
		}
		l.read()
	}

	name := string(l.input[start:l.at.pos])
	tt := OPERATOR
	switch name {
	case "=":
		tt = ASSIGN
	case ":=":
		tt = BIND
	case ":":
		tt = COLON
	case "->":
		tt = ARROW
	case ".":
		tt = DOT
	}
	return l.makeToken(tt, line, column, start, name, spaceBefore)
}

func (l *Lexer) scanNumber(line, column, start int, spaceBefore bool) Token {
	for isDigit(l.ch()) {
		l.read()
	}

	if (l.ch() == 'x' || l.ch() == 'X') && isAlnum(l.peekRune(1)) {
		l.read()
		for isAlnum(l.ch()) {
			l.read()
		}
	} else {
		if l.ch() == '.' && isDigit(l.peekRune(1)) {
			l.read()
			for isDigit(l.ch()) {
				l.read()
			}
		}
		if l.ch() == 'e' || l.ch() == 'E' {
			next := l.peekRune(1)
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekRune(2))) {
				l.read()
				if next == '+' || next == '-' {
					l.read()
				}
				for isDigit(l.ch()) {
					l.read()
				}
			}
		}
	}

	raw := string(l.input[start:l.at.pos])
	if _, err := NumberValue(raw); err != nil {
		return l.illegal(ErrBadNumber, err.Error(), line, column, start, spaceBefore)
	}
	return l.makeToken(NUMBER, line, column, start, raw, spaceBefore)
}

// scanString reads string contents up to the closing quote or an unescaped
// '{'. The opening quote (or the '}' ending an interpolation) is already
// consumed.
func (l *Lexer) scanString(line, column, start int, spaceBefore bool) Token {
	var b strings.Builder
	for {
		c := l.ch()
		switch c {
		case 0, '\n':
			return l.illegal(ErrUnterminatedString, "unterminated string literal", line, column, start, spaceBefore)
		case '"':
			l.read()
			return l.makeToken(STRING, line, column, start, b.String(), spaceBefore)
		case '{':
			l.read()
			tok := l.makeToken(STRING, line, column, start, b.String(), spaceBefore)
			tok.BeginsInterpolation = true
			return tok
		case '\\':
			l.read()
			e := l.ch()
			switch e {
			case 0, '\n':
				continue
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\', '"', '{', '}':
				b.WriteRune(e)
			default:
				b.WriteRune('\\')
				b.WriteRune(e)
			}
			l.read()
		default:
			b.WriteRune(c)
			l.read()
		}
	}
}

// NumberValue decodes a numeric literal: decimal ("12", "1.5", "2e3") or
// radix ("16xFF", "2x1010").
func NumberValue(raw string) (float64, error) {
	if i := strings.IndexAny(raw, "xX"); i > 0 {
		base, err := strconv.Atoi(raw[:i])
		if err != nil || base < 2 || base > 36 {
			return 0, fmt.Errorf("invalid radix %q in number %s", raw[:i], raw)
		}
		v, err := strconv.ParseUint(raw[i+1:], base, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid digits for base %d in number %s", base, raw)
		}
		return float64(v), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %s", raw)
	}
	return v, nil
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlnum(ch rune) bool {
	return isDigit(ch) || (ch < 128 && unicode.IsLetter(ch))
}

func isIdentRune(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}

func isSpaceOrEnd(ch rune) bool {
	return ch == 0 || ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isOperatorRune(ch rune) bool {
	if strings.ContainsRune(`+-*/<>=!&|%^@?~$#\:.`, ch) {
		return true
	}
	return ch > 127 && unicode.IsSymbol(ch)
}
