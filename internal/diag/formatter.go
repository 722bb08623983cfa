package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode selects when the formatter emits ANSI styling.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	w           io.Writer
	sourceCache map[string]string // Cache of source files by filename
	color       ColorMode
	plain       bool

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	noteStyle    lipgloss.Style
	gutterStyle  lipgloss.Style
	primaryStyle lipgloss.Style
	secondStyle  lipgloss.Style
	messageStyle lipgloss.Style
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithColor sets the color mode. Unknown modes behave like ColorAuto.
func WithColor(mode ColorMode) FormatterOption {
	return func(f *Formatter) {
		f.color = mode
	}
}

// NewFormatter creates a new diagnostic formatter writing to w.
func NewFormatter(w io.Writer, opts ...FormatterOption) *Formatter {
	if w == nil {
		w = os.Stderr
	}
	f := &Formatter{
		w:           w,
		sourceCache: make(map[string]string),
		color:       ColorAuto,
	}
	for _, opt := range opts {
		opt(f)
	}

	r := lipgloss.NewRenderer(w)
	switch f.color {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
		f.plain = true
	}

	f.errorStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	f.warningStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	f.noteStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	f.gutterStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	f.primaryStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	f.secondStyle = r.NewStyle().Foreground(lipgloss.Color("12"))
	f.messageStyle = r.NewStyle().Bold(true)
	return f
}

func (f *Formatter) paint(st lipgloss.Style, s string) string {
	if f.plain {
		return s
	}
	return st.Render(s)
}

// AddSource registers in-memory source text for a module, so snippets can be
// shown for input that never touched the disk (stdin, the REPL).
func (f *Formatter) AddSource(filename, src string) {
	f.sourceCache[filename] = src
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format writes a diagnostic in Rust-style format.
func (f *Formatter) Format(d Diagnostic) {
	spans := f.collectSpans(d)
	if len(spans) == 0 {
		f.formatSimple(d)
		return
	}

	spansByFile := make(map[string][]LabeledSpan)
	var files []string
	for _, span := range spans {
		filename := span.Span.Filename
		if filename == "" {
			filename = d.Module
		}
		if _, seen := spansByFile[filename]; !seen {
			files = append(files, filename)
		}
		spansByFile[filename] = append(spansByFile[filename], span)
	}

	f.printHeader(d)

	for _, filename := range files {
		src, err := f.LoadSource(filename)
		if err != nil || src == "" {
			fmt.Fprintf(f.w, "  %s %s:%d\n", f.paint(f.gutterStyle, "-->"), filename, d.Span.Line)
			continue
		}
		f.printFileSpans(filename, src, spansByFile[filename])
	}

	f.printHelp(d)
}

// collectSpans collects all spans from the diagnostic, prioritizing LabeledSpans.
func (f *Formatter) collectSpans(d Diagnostic) []LabeledSpan {
	if len(d.LabeledSpans) > 0 {
		return d.LabeledSpans
	}
	if d.Span.Line > 0 {
		span := d.Span
		if span.Column == 0 {
			span.Column = 1
		}
		return []LabeledSpan{{Span: span, Style: "primary"}}
	}
	return nil
}

func (f *Formatter) severityStyle(sev Severity) lipgloss.Style {
	switch sev {
	case SeverityWarning:
		return f.warningStyle
	case SeverityNote:
		return f.noteStyle
	}
	return f.errorStyle
}

// printHeader prints the error header (error[P1000]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := d.Severity
	if severity == "" {
		severity = SeverityError
	}

	label := string(severity)
	if d.Code != "" {
		label = fmt.Sprintf("%s[%s]", severity, d.Code)
	}
	fmt.Fprintf(f.w, "%s: %s\n", f.paint(f.severityStyle(severity), label), f.paint(f.messageStyle, d.Message))
}

// printFileSpans prints source code with underlines for spans in a file.
func (f *Formatter) printFileSpans(filename string, src string, spans []LabeledSpan) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	lines := strings.Split(src, "\n")
	maxLine := len(lines)

	spansByLine := make(map[int][]LabeledSpan)
	for _, span := range spans {
		line := span.Span.Line
		if line > 0 && line <= maxLine {
			spansByLine[line] = append(spansByLine[line], span)
		}
	}

	lineNumbers := make([]int, 0, len(spansByLine))
	for line := range spansByLine {
		lineNumbers = append(lineNumbers, line)
	}
	sort.Ints(lineNumbers)
	if len(lineNumbers) == 0 {
		return
	}

	first := spansByLine[lineNumbers[0]][0].Span
	contextStart := max(1, lineNumbers[0]-2)
	contextEnd := min(maxLine, lineNumbers[len(lineNumbers)-1]+2)
	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))
	pad := strings.Repeat(" ", lineNumWidth)
	bar := f.paint(f.gutterStyle, "|")

	fmt.Fprintf(f.w, "%s%s %s:%d:%d\n", pad, f.paint(f.gutterStyle, "-->"), filename, first.Line, first.Column)
	fmt.Fprintf(f.w, "%s %s\n", pad, bar)

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineContent := lines[lineNum-1]
		gutter := f.paint(f.gutterStyle, fmt.Sprintf("%*d", lineNumWidth, lineNum))
		fmt.Fprintf(f.w, "%s %s %s\n", gutter, bar, lineContent)

		if lineSpans := spansByLine[lineNum]; len(lineSpans) > 0 {
			f.printUnderlines(pad, bar, lineContent, lineSpans)
		}
	}

	fmt.Fprintf(f.w, "%s %s\n", pad, bar)
}

// printUnderlines prints ^ under primary spans and ~ under secondary ones.
func (f *Formatter) printUnderlines(pad, bar, lineContent string, spans []LabeledSpan) {
	width := len([]rune(lineContent)) + 1
	underline := make([]rune, width)
	for i := range underline {
		underline[i] = ' '
	}

	mark := func(span LabeledSpan, ch rune) {
		start := max(0, span.Span.Column-1)
		end := min(width, start+max(1, span.Span.End-span.Span.Start))
		for i := start; i < end; i++ {
			if underline[i] == ' ' {
				underline[i] = ch
			}
		}
	}
	for _, span := range spans {
		if span.Style != "secondary" {
			mark(span, '^')
		}
	}
	for _, span := range spans {
		if span.Style == "secondary" {
			mark(span, '~')
		}
	}

	text := strings.TrimRight(string(underline), " ")
	if text == "" {
		return
	}

	primaryLabel := ""
	var secondaryLabels []string
	for _, span := range spans {
		if span.Label == "" {
			continue
		}
		if span.Style == "secondary" {
			secondaryLabels = append(secondaryLabels, span.Label)
		} else {
			primaryLabel = span.Label
		}
	}

	line := f.paint(f.primaryStyle, text)
	if primaryLabel != "" {
		line += " " + f.paint(f.primaryStyle, primaryLabel)
	}
	fmt.Fprintf(f.w, "%s %s %s\n", pad, bar, line)

	for _, label := range secondaryLabels {
		fmt.Fprintf(f.w, "%s %s %s%s\n", pad, bar, strings.Repeat(" ", len([]rune(text))+1), f.paint(f.secondStyle, label))
	}
}

// printHelp prints notes, substitutions and help text.
func (f *Formatter) printHelp(d Diagnostic) {
	eq := f.paint(f.gutterStyle, "=")
	for _, note := range d.VarNotes() {
		fmt.Fprintf(f.w, "  %s %s %s\n", eq, f.paint(f.messageStyle, "note:"), note)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(f.w, "  %s %s %s\n", eq, f.paint(f.messageStyle, "note:"), note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.w, "%s %s\n", f.paint(f.noteStyle, "help:"), d.Help)
	}
}

// formatSimple formats a diagnostic without source code.
func (f *Formatter) formatSimple(d Diagnostic) {
	f.printHeader(d)
	if d.Module != "" {
		fmt.Fprintf(f.w, "  %s %s\n", f.paint(f.gutterStyle, "-->"), d.Module)
	}
	f.printHelp(d)
}
