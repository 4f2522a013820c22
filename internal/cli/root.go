package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skanehira/version-lsp/internal/logctx"
	"github.com/skanehira/version-lsp/pkg/buildinfo"
)

// RunE is the signature of the callback NewRoot wires to the "serve"
// command: cmd/version-lsp builds the LSP handler and its dependencies,
// then passes a closure of this shape so this package never imports
// anything glsp-related.
type RunE func(ctx context.Context) error

// NewRoot builds the version-lsp root cobra command. serveRunE runs the
// LSP server over stdio; it is the default action (running `version-lsp`
// with no subcommand serves) and is also registered explicitly as
// `version-lsp serve`, mirroring how language servers are invoked by
// editor clients that always pass an explicit subcommand.
func NewRoot(serveRunE RunE) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "version-lsp",
		Short:        "version-lsp attaches version-freshness diagnostics to dependency manifests",
		Long:         `version-lsp is a language server that flags outdated, invalid, and nonexistent version declarations across npm, pnpm, Cargo, Go modules, GitHub Actions, and Deno manifests.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if verbose {
				level = LogDebug
			}
			w, err := logWriter()
			if err != nil {
				return err
			}
			ctx := logctx.WithLogger(cmd.Context(), newLogger(w, level))
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRunE(cmd.Context())
		},
	}
	root.AddCommand(serveCmd)
	root.RunE = serveCmd.RunE

	root.AddCommand(newCacheCmd())

	return root
}

// Execute builds and runs the root command against os.Args.
func Execute(serveRunE RunE) error {
	return NewRoot(serveRunE).ExecuteContext(context.Background())
}

// logWriter returns the destination for log output. Both stdin and
// stdout are reserved for the LSP wire protocol, and editor
// clients vary widely in whether they surface a server's stderr, so
// logs go to a file under DataDir() instead — "<data dir>/version-lsp.log".
func logWriter() (*os.File, error) {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(DataDir(), "version-lsp.log")
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
