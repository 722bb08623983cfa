package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/lexer"
)

// ParseError describes the diagnostic that stopped a parse.
type ParseError struct {
	Module  string
	Code    diag.Code
	Span    lexer.Span
	Vars    map[string]string
	Message string

	// Incomplete is set when the input ran out before the construct did.
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s [%s]", e.Module, e.Span.Line, e.Span.Column, e.Message, e.Code)
}

// Diagnostic converts the error into the shared diagnostic structure.
func (e *ParseError) Diagnostic() diag.Diagnostic {
	stage := diag.StageParser
	if len(e.Code) > 0 && e.Code[0] == 'L' {
		stage = diag.StageLexer
	}
	filename := e.Span.Filename
	if filename == "" {
		filename = e.Module
	}
	span := diag.Span{
		Filename: filename,
		Line:     e.Span.Line,
		Column:   e.Span.Column,
		Start:    e.Span.Start,
		End:      e.Span.End,
	}
	return diag.Diagnostic{
		Stage:    stage,
		Severity: diag.SeverityError,
		Code:     e.Code,
		Message:  e.Message,
		Module:   e.Module,
		Span:     span,
		Vars:     e.Vars,
	}
}

// IsIncomplete reports whether err stopped the parse only because the input
// ended early, so that more input could complete it.
func IsIncomplete(err error) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Incomplete || pe.Code == diag.CodeUnexpectedEnd
}

// bailout unwinds a failed parse back to Parse.
type bailout struct {
	err *ParseError
}

// fail reports a diagnostic at the current token and abandons the parse.
func (p *Parser) fail(code diag.Code, vars map[string]string, msg string) {
	p.failAt(p.cur(), code, vars, msg)
}

// failAt reports a diagnostic located at tok and abandons the parse.
func (p *Parser) failAt(tok lexer.Token, code diag.Code, vars map[string]string, msg string) {
	span := tok.Span
	if span.Filename == "" {
		span.Filename = p.module
	}
	err := &ParseError{
		Module:     p.module,
		Code:       code,
		Span:       span,
		Vars:       vars,
		Message:    msg,
		Incomplete: p.cur().Type == lexer.EOF,
	}
	if p.sink != nil {
		p.sink.Report(p.module, span.Line, code, vars, msg)
	}
	p.log.Warn("parse error",
		slog.String("code", string(code)),
		slog.Int("line", span.Line),
		slog.Int("column", span.Column),
		slog.String("message", msg))
	panic(bailout{err: err})
}

// checkIllegal turns an ILLEGAL token into its lexical diagnostic.
func (p *Parser) checkIllegal(tok lexer.Token) {
	if tok.Type != lexer.ILLEGAL {
		return
	}
	code := diag.CodeLexerIllegalRune
	if le, ok := p.ts.(lexicalErrors); ok {
		if lexErr, found := le.ErrorAt(tok); found {
			code = lexErr.ToDiagnostic().Code
		}
	}
	p.failAt(tok, code, map[string]string{"token": tok.Raw}, tok.Value)
}

func tokenVars(tok lexer.Token) map[string]string {
	return map[string]string{"token": tok.String()}
}

func (p *Parser) failIndentation(code diag.Code, before, now int) {
	p.fail(code, map[string]string{
		"previous indent": strconv.Itoa(before - 1),
		"new indent":      strconv.Itoa(now - 1),
	}, "indentation must increase inside {}")
}

// checkIndentation requires the current token to sit on the body's column.
func (p *Parser) checkIndentation() {
	col := p.cur().Span.Column
	if col == p.indentColumn {
		return
	}
	p.fail(diag.CodeIndentationMismatch, map[string]string{
		"required indentation": strconv.Itoa(p.indentColumn - 1),
		"given indentation":    strconv.Itoa(col - 1),
	}, fmt.Sprintf("indentation mismatch; is %d, should be %d", col-1, p.indentColumn-1))
}
