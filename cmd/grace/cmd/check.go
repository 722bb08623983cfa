package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/grace-lang/grace/internal/diag"
	"github.com/grace-lang/grace/internal/parser"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Report syntax errors in Grace source files",
	Long: `Parses each file and prints the diagnostic that stopped it, with the
offending source line underlined. Exits non-zero if any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		src, err := readSource(path)
		if err != nil {
			return err
		}
		if _, perr := parseSource(path, src); perr != nil {
			report(cmd.ErrOrStderr(), path, src, perr, cfg.Output.Color)
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files failed\n", failed, len(args))
		return errFailed
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d files ok\n", len(args))
	return nil
}

// report renders err against src. Errors that are not parse diagnostics are
// printed as plain text.
func report(w io.Writer, name, src string, err error, color string) {
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		fmt.Fprintf(w, "%s: %v\n", name, err)
		return
	}
	f := diag.NewFormatter(w, diag.WithColor(diag.ColorMode(color)))
	d := pe.Diagnostic()
	f.AddSource(d.Span.Filename, src)
	f.Format(d)
}
