package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/grace-lang/grace/internal/ast"
	"github.com/grace-lang/grace/internal/config"
	"github.com/grace-lang/grace/internal/parser"
)

var (
	parseFormat    string
	parsePositions bool
	parseComments  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Dump the syntax tree of Grace source files",
	Long: `Parses each file and writes its syntax tree as YAML, JSON or an
indented text listing. A file that fails to parse is reported as a
diagnostic and the remaining files are still processed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "output format: yaml, json or text")
	parseCmd.Flags().BoolVar(&parsePositions, "positions", true, "include line and column of each node")
	parseCmd.Flags().BoolVar(&parseComments, "comments", true, "include comments attached to nodes")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	out := cfg.Output
	if cmd.Flags().Changed("format") {
		out.Format = parseFormat
	}
	if cmd.Flags().Changed("positions") {
		out.Positions = parsePositions
	}
	if cmd.Flags().Changed("comments") {
		out.Comments = parseComments
	}

	failed := false
	for _, path := range args {
		src, err := readSource(path)
		if err != nil {
			return err
		}
		ok, err := dumpSource(cmd.OutOrStdout(), cmd.ErrOrStderr(), path, src, out)
		if err != nil {
			return err
		}
		if !ok {
			failed = true
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

// dumpSource parses src and encodes its tree to w. A parse failure is
// written to errw and reported as ok == false.
func dumpSource(w, errw io.Writer, name, src string, out config.OutputConfig) (ok bool, err error) {
	format, err := ast.ParseFormat(out.Format)
	if err != nil {
		return false, err
	}

	mod, perr := parseSource(name, src)
	if perr != nil {
		report(errw, name, src, perr, out.Color)
		return false, nil
	}

	tree := ast.Dump(mod, ast.DumpOptions{Positions: out.Positions, Comments: out.Comments})
	if err := ast.Encode(w, tree, format); err != nil {
		return false, fmt.Errorf("write %s: %w", name, err)
	}
	return true, nil
}

func parseSource(name, src string) (*ast.Module, error) {
	return parser.Parse(src,
		parser.WithModuleName(name),
		parser.WithTabWidth(cfg.Parse.TabWidth),
		parser.WithLogger(logger),
	)
}
