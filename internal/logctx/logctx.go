// Package logctx carries a *log.Logger through context.Context so
// every subsystem (resolver, cache, refresh orchestrator) logs through
// the one logger internal/cli builds at startup instead of a package
// global. Promoted out of internal/cli since packages other than the
// CLI need it too.
package logctx

import (
	"context"

	"github.com/charmbracelet/log"
)

// ctxKey is the type for the context key used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context with l attached.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger attached to ctx, or log.Default() if
// none was attached — subsystems always get a valid logger even if
// context setup was skipped, such as in a test.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
