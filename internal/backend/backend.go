// Package backend implements the LSP document lifecycle and diagnostic
// assembly. It is deliberately independent of any
// particular LSP transport library: Backend exposes plain Go methods
// that take a publish callback, and cmd/version-lsp adapts those to
// github.com/tliron/glsp's handler signatures and wire types. Keeping
// the transport at the edge is what makes the ordering guarantee —
// the handler publishes initial diagnostics before spawning the fill
// task, and the fill task publishes after fetches complete — a plain
// sequential call followed by a `go` statement, rather than something
// that has to be proven against glsp's internals.
package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skanehira/version-lsp/internal/cache"
	"github.com/skanehira/version-lsp/internal/config"
	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/logctx"
	"github.com/skanehira/version-lsp/internal/refresh"
	"github.com/skanehira/version-lsp/internal/resolver"
	"github.com/skanehira/version-lsp/internal/span"
	"github.com/skanehira/version-lsp/pkg/observability"
)

// Severity mirrors the two bands CompareResult statuses map to.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is the transport-agnostic diagnostic shape; cmd/version-lsp
// translates this into protocol.Diagnostic.
type Diagnostic struct {
	Range    span.Range
	Severity Severity
	Message  string
	Source   string
}

const diagnosticSource = "version-lsp"

// PublishFunc delivers diagnostics for one URI to the LSP client,
// replacing whatever was previously published for that URI.
type PublishFunc func(uri string, diagnostics []Diagnostic)

// Backend owns the per-URI text buffers and coordinates parsing,
// cache lookups, and on-demand fill.
type Backend struct {
	Cache    *cache.Cache
	Registry *resolver.Registry
	Refresh  *refresh.Orchestrator
	Config   *config.Holder

	mu      sync.Mutex
	buffers map[string]string
}

func New(c *cache.Cache, reg *resolver.Registry, ref *refresh.Orchestrator, cfg *config.Holder) *Backend {
	return &Backend{Cache: c, Registry: reg, Refresh: ref, Config: cfg, buffers: map[string]string{}}
}

// DidOpen and DidChange share the same logic: store the full document
// text (text sync is full-document), publish diagnostics from
// whatever is already cached, then — if any entry had no cache row —
// fetch those in the background and re-publish once done.
func (b *Backend) DidOpen(ctx context.Context, uri, text string, publish PublishFunc) {
	b.setBuffer(uri, text)
	b.handleDocumentEvent(ctx, uri, text, publish)
}

func (b *Backend) DidChange(ctx context.Context, uri, text string, publish PublishFunc) {
	b.setBuffer(uri, text)
	b.handleDocumentEvent(ctx, uri, text, publish)
}

// DidClose discards the buffered text. In-flight fetches spawned for
// this URI are not cancelled — they still populate the shared cache.
func (b *Backend) DidClose(uri string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.buffers, uri)
}

func (b *Backend) setBuffer(uri, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffers[uri] = text
}

func (b *Backend) handleDocumentEvent(ctx context.Context, uri, text string, publish PublishFunc) {
	kind, ok := resolver.DetectKind(uri)
	if !ok {
		return
	}
	res := b.Registry.For(kind)
	if res == nil {
		return
	}
	cfg := b.Config.Get()
	if !cfg.RegistryEnabled(string(kind)) {
		publish(uri, nil)
		return
	}

	observability.Resolve().OnResolveStart(ctx, string(kind), uri)
	start := time.Now()
	entries, err := res.Resolve(ctx, b.Cache, text, cfg.IgnorePrereleaseOrDefault())
	observability.Resolve().OnResolveComplete(ctx, string(kind), uri, len(entries), time.Since(start), err)
	if err != nil {
		logctx.FromContext(ctx).Warn("parse failed", "uri", uri, "error", err)
		publish(uri, nil)
		return
	}
	publish(uri, BuildDiagnostics(entries))

	missing := resolver.MissingNames(entries)
	if len(missing) == 0 {
		return
	}

	go func() {
		fillCtx := context.Background()
		b.Refresh.FillMissing(fillCtx, kind, missing)

		b.mu.Lock()
		current, stillOpen := b.buffers[uri]
		b.mu.Unlock()
		if !stillOpen {
			return
		}

		refreshed, err := res.Resolve(fillCtx, b.Cache, current, cfg.IgnorePrereleaseOrDefault())
		if err != nil {
			logctx.FromContext(fillCtx).Warn("re-resolve after fill failed", "uri", uri, "error", err)
			return
		}
		publish(uri, BuildDiagnostics(refreshed))
	}()
}

// BuildDiagnostics maps each resolved entry's CompareResult to the
// severity/message pairs. Entries with no Result (still a
// cache miss) and entries whose status is Latest or Newer produce no
// diagnostic.
func BuildDiagnostics(entries []resolver.Entry) []Diagnostic {
	var out []Diagnostic
	for _, e := range entries {
		if e.Result == nil {
			continue
		}
		switch e.Result.Status {
		case domain.StatusOutdated:
			out = append(out, Diagnostic{
				Range:    e.Package.Range,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Latest version %s available (current: %s)", e.Result.Latest, e.Package.VersionSpec),
				Source:   diagnosticSource,
			})
		case domain.StatusNotFound:
			out = append(out, Diagnostic{
				Range:    e.Package.Range,
				Severity: SeverityError,
				Message:  fmt.Sprintf("Version %s does not exist", e.Package.VersionSpec),
				Source:   diagnosticSource,
			})
		case domain.StatusInvalid:
			out = append(out, Diagnostic{
				Range:    e.Package.Range,
				Severity: SeverityError,
				Message:  fmt.Sprintf("Invalid version: %s", e.Package.VersionSpec),
				Source:   diagnosticSource,
			})
		}
	}
	return out
}
