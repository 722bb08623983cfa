package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Stage identifies which front-end phase produced the diagnostic.
type Stage string

const (
	StageLexer  Stage = "lexer"
	StageParser Stage = "parser"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// LabeledSpan represents a span with an optional label.
type LabeledSpan struct {
	Span  Span
	Label string
	Style string // "primary" or "secondary"
}

// Code is a stable identifier for a diagnostic. Codes are matched by golden
// files and editor tooling, so existing values must never be renumbered.
type Code string

const (
	// Lexer errors
	CodeLexerIllegalRune        Code = "L0001"
	CodeLexerUnterminatedString Code = "L0002"
	CodeLexerBadNumber          Code = "L0003"

	// Parser errors
	CodeUnknownConstruct          Code = "P1000"
	CodeUnexpectedEnd             Code = "P1001"
	CodeExpectedToken             Code = "P1002"
	CodeSemicolonFollowedByCode   Code = "P1003"
	CodeUnexpectedAfterStatement  Code = "P1004"
	CodeVarUsesBind               Code = "P1005"
	CodeDefUsesEquals             Code = "P1006"
	CodeUnterminatedGenericParams Code = "P1007"
	CodeSpacedGenericBracket      Code = "P1008"
	CodeOperatorInTypeName        Code = "P1009"
	CodeTypeBodyIndentation       Code = "P1010"
	CodeBodyIndentation           Code = "P1011"
	CodeOperatorInParameterList   Code = "P1012"
	CodeParameterListSeparator    Code = "P1013"
	CodeImportInterpolation       Code = "P1014"
	CodeDialectInterpolation      Code = "P1015"
	CodeIndentationMismatch       Code = "P1016"
	CodeUnclosedParenthesis       Code = "P1017"
	CodeExpectedTerm              Code = "P1018"
	CodeUnterminatedInterpolation Code = "P1019"
	CodeOperatorSpacing           Code = "P1020"
	CodeObjectWithoutBrace        Code = "P1021"
	CodeInvalidBlockParameter     Code = "P1022"
	CodeArgumentListSeparator     Code = "P1023"
	CodeGenericArgumentSeparator  Code = "P1024"
	CodeIdentifierAfterDot        Code = "P1025"
	CodeMixedOperators            Code = "P1026"
	CodeInvalidParameter          Code = "P1027"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a front-end diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Module   string
	Span     Span

	// Vars holds the named substitutions of the message ("token", "operator",
	// "required indentation", ...) for tooling that renders its own text.
	Vars map[string]string

	LabeledSpans []LabeledSpan
	Notes        []string
	Help         string
}

// WithLabeledSpan adds a labeled span to the diagnostic.
func (d Diagnostic) WithLabeledSpan(span Span, label string, style string) Diagnostic {
	if style == "" {
		style = "primary"
	}
	d.LabeledSpans = append(d.LabeledSpans, LabeledSpan{
		Span:  span,
		Label: label,
		Style: style,
	})
	return d
}

// WithPrimarySpan adds a primary labeled span.
func (d Diagnostic) WithPrimarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "primary")
}

// WithSecondarySpan adds a secondary labeled span.
func (d Diagnostic) WithSecondarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "secondary")
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// VarNotes renders Vars as sorted "key: value" notes.
func (d Diagnostic) VarNotes() []string {
	keys := make([]string, 0, len(d.Vars))
	for k := range d.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	notes := make([]string, 0, len(keys))
	for _, k := range keys {
		notes = append(notes, k+": "+d.Vars[k])
	}
	return notes
}

// String renders the diagnostic on one line: module:line: code message.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Module != "" {
		b.WriteString(d.Module)
		b.WriteByte(':')
	}
	fmt.Fprintf(&b, "%d: %s %s", d.Span.Line, d.Code, d.Message)
	return b.String()
}
