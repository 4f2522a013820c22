package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skanehira/version-lsp/internal/logctx"
)

// newCacheCmd creates the cache management command: the SQLite database
// that backs the registry version cache lives for the lifetime
// of the data directory, independent of any one editor session, so
// clearing or locating it is a standalone operation rather than
// something the LSP protocol exposes.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Locate or clear the registry version cache",
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())

	return cmd
}

// newCacheClearCmd creates the "cache clear" subcommand.
func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logctx.FromContext(cmd.Context())
			path := CacheDBPath()

			prog := newProgress(logger)
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					logger.Info("cache is already empty", "path", path)
					return nil
				}
				return fmt.Errorf("remove cache database: %w", err)
			}
			prog.done(fmt.Sprintf("cleared cache database at %s", path))
			return nil
		},
	}
}

// newCachePathCmd creates the "cache path" subcommand.
func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache database path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(CacheDBPath())
			return nil
		},
	}
}
