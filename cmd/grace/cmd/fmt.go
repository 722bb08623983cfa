package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grace-lang/grace/internal/ast"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE...",
	Short: "Print Grace source files in canonical layout",
	Long: `Parses each file and prints it back with canonical spacing,
four-space indentation and explicit parentheses around nested operators.
With -w the result replaces the file contents instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to the source file")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	failed := false
	for _, path := range args {
		src, err := readSource(path)
		if err != nil {
			return err
		}
		formatted, perr := formatSource(path, src)
		if perr != nil {
			report(cmd.ErrOrStderr(), path, src, perr, cfg.Output.Color)
			failed = true
			continue
		}

		if !fmtWrite {
			fmt.Fprint(cmd.OutOrStdout(), formatted)
			continue
		}
		if formatted == src {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("formatted", "file", path)
	}
	if failed {
		return errFailed
	}
	return nil
}

func formatSource(name, src string) (string, error) {
	mod, err := parseSource(name, src)
	if err != nil {
		return "", err
	}
	return ast.Print(mod), nil
}
