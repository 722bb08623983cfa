package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grace-lang/grace/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDumpSourceText(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := config.OutputConfig{Format: "text", Positions: false, Color: "never"}

	ok, err := dumpSource(&out, &errOut, "demo", "x := 1", opts)
	if err != nil || !ok {
		t.Fatalf("expected success, got ok=%v err=%v (%s)", ok, err, errOut.String())
	}
	want := "Module \"demo\"\n  body: Bind\n    target: Identifier \"x\"\n    value: Number \"1\"\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestDumpSourceReportsDiagnostic(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := config.OutputConfig{Format: "yaml", Color: "never"}

	ok, err := dumpSource(&out, &errOut, "demo", "a +b", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected the parse to fail")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no tree output, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "error[P1020]") {
		t.Fatalf("expected rendered diagnostic, got %q", errOut.String())
	}
}

func TestDumpSourceRejectsFormat(t *testing.T) {
	_, err := dumpSource(io.Discard, io.Discard, "demo", "x", config.OutputConfig{Format: "xml"})
	if err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestFormatSource(t *testing.T) {
	got, err := formatSource("demo", "x:=a+b*c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "x := a + (b * c)\n" {
		t.Fatalf("expected canonical layout, got %q", got)
	}

	if _, err := formatSource("demo", "x := (1"); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestReportPlainError(t *testing.T) {
	var buf bytes.Buffer
	report(&buf, "demo", "", errors.New("boom"), "never")
	if buf.String() != "demo: boom\n" {
		t.Fatalf("expected plain message, got %q", buf.String())
	}
}

type scriptedPrompter struct {
	lines   []string
	prompts []string
}

func (s *scriptedPrompter) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestReadByParseProbe(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    string
		prompts int
	}{
		{"complete", []string{"x := 1"}, "x := 1", 1},
		{"continued", []string{"method m {", "    x", "}"}, "method m {\n    x\n}", 3},
		{"error stops", []string{"x := 1 )"}, "x := 1 )", 1},
		{"command", []string{":quit"}, ":quit", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPrompter{lines: tt.lines}
			got, ok := readByParseProbe(p, promptMain, promptCont)
			if !ok {
				t.Fatalf("expected input")
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if len(p.prompts) != tt.prompts {
				t.Fatalf("expected %d prompts, got %v", tt.prompts, p.prompts)
			}
			for _, pr := range p.prompts[1:] {
				if pr != promptCont {
					t.Fatalf("expected continuation prompt, got %q", pr)
				}
			}
		})
	}

	if _, ok := readByParseProbe(&scriptedPrompter{}, promptMain, promptCont); ok {
		t.Fatalf("expected end of input")
	}
}

func TestReplCommand(t *testing.T) {
	format := "text"

	if quit, err := replCommand(":format json", &format); quit || err != nil || format != "json" {
		t.Fatalf("expected format json, got %q quit=%v err=%v", format, quit, err)
	}
	if _, err := replCommand(":format xml", &format); err == nil || format != "json" {
		t.Fatalf("expected rejected format, got %q err=%v", format, err)
	}
	if _, err := replCommand(":unknown", &format); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if quit, _ := replCommand(":quit", &format); !quit {
		t.Fatalf("expected quit")
	}
}

func TestCheckCommand(t *testing.T) {
	t.Setenv(config.EnvVar, writeFile(t, "grace.toml", "[output]\ncolor = \"never\"\n"))
	good := writeFile(t, "good.grace", "def x = 1\n")
	bad := writeFile(t, "bad.grace", "def x := 1\n")

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	rootCmd.SetArgs([]string{"check", good})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "1 files ok") {
		t.Fatalf("expected summary, got %q", out.String())
	}

	rootCmd.SetArgs([]string{"check", good, bad})
	if err := rootCmd.Execute(); !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed, got %v", err)
	}
	if !strings.Contains(errOut.String(), "error[P1006]") || !strings.Contains(errOut.String(), "1 of 2 files failed") {
		t.Fatalf("expected diagnostic and summary, got %q", errOut.String())
	}
}
