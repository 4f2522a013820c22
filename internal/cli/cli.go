// Package cli implements the version-lsp command-line interface: the
// "serve" entrypoint cobra hands to main.go's LSP wiring, plus a "cache"
// subcommand for locating and clearing the on-disk SQLite cache
// between stdio sessions, since the server itself never exposes a
// terminal.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "version-lsp"

	// cacheDBName is the SQLite file name within the data directory.
	cacheDBName = "cache.db"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Paths
// =============================================================================

// DataDir returns the application's data directory, following the XDG
// base directory fallback chain: $XDG_DATA_HOME/version-lsp, then
// ~/.local/share/version-lsp, then ./version-lsp if neither is
// resolvable.
func DataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}

// CacheDBPath returns the path to the SQLite cache database within
// DataDir().
func CacheDBPath() string {
	return filepath.Join(DataDir(), cacheDBName)
}
