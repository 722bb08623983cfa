package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grace-lang/grace/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the Grace language server on stdin and stdout",
	Long: `Starts a language server that publishes syntax diagnostics and answers
document symbol, definition, hover and completion requests from the
parsed tree. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
}

func runLSP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := lsp.NewServer(
		lsp.WithLogger(logger),
		lsp.WithTabWidth(cfg.Parse.TabWidth),
	)
	logger.Info("language server started", "version", lsp.Version)
	return server.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
