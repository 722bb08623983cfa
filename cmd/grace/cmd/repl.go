package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/parser"
)

const (
	historyFile = ".grace_history"
	promptMain  = "grace> "
	promptCont  = "  ...> "
	replModule  = "repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Parse Grace interactively",
	Long: `Reads Grace statements line by line and prints the syntax tree of
each entry. Input that stops inside an unfinished construct keeps
prompting for continuation lines.

Commands:
  :format yaml|json|text  - change the dump format
  :quit                   - leave the session`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	out := cfg.Output
	out.Format = string(ast.FormatText)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(stdout)
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			quit, err := replCommand(trimmed, &out.Format)
			if err != nil {
				fmt.Fprintln(stderr, err)
			}
			if quit {
				return nil
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if _, err := dumpSource(stdout, stderr, replModule, code, out); err != nil {
			fmt.Fprintln(stderr, err)
		}
	}
}

func replCommand(line string, format *string) (quit bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true, nil
	case ":format":
		if len(fields) != 2 {
			return false, errors.New("usage: :format yaml|json|text")
		}
		f, err := ast.ParseFormat(fields[1])
		if err != nil {
			return false, err
		}
		*format = string(f)
		return false, nil
	}
	return false, fmt.Errorf("unknown command %s, type :quit to exit", fields[0])
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

// readByParseProbe collects lines until the buffer either parses or fails
// for a reason other than running out of input.
func readByParseProbe(p prompter, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = p.Prompt(prompt)
		} else {
			line, err = p.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !needsMore(src) {
			return src, true
		}
	}
}

func needsMore(src string) bool {
	_, err := parser.Parse(src, parser.WithModuleName(replModule), parser.WithTabWidth(cfg.Parse.TabWidth))
	return parser.IsIncomplete(err)
}
