package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/grace-lang/grace/internal/config"
	"github.com/grace-lang/grace/internal/logging"
)

var (
	cfgFile string
	verbose bool

	cfg    = config.Default()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// errFailed is returned once diagnostics have already been printed.
var errFailed = errors.New("one or more files failed to parse")

var rootCmd = &cobra.Command{
	Use:   "grace",
	Short: "Grace parser toolkit",
	Long: `grace parses Grace source files into abstract syntax trees.

Commands:
  parse  - dump the syntax tree of each file
  check  - report the first diagnostic of each file
  fmt    - print files in canonical layout
  repl   - parse lines interactively
  lsp    - serve diagnostics and symbols to editors`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errFailed) {
		printError("grace", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./grace.toml or $"+config.EnvVar+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parser activity")
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logCfg := cfg.Log
	if verbose {
		logCfg = logging.Verbose(logCfg)
	}
	logger = logging.New(logCfg, cmd.ErrOrStderr())
	logger.Debug("config loaded", slog.String("path", cfgFile), slog.String("format", cfg.Output.Format))
	return nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
