// Command version-lsp runs the language server described by
// SPEC_FULL.md: it attaches full-document sync handlers to
// github.com/tliron/glsp, builds the SQLite-backed version cache and
// the six registry resolvers, and publishes diagnostics through
// internal/backend.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/skanehira/version-lsp/internal/backend"
	"github.com/skanehira/version-lsp/internal/cache"
	"github.com/skanehira/version-lsp/internal/cli"
	"github.com/skanehira/version-lsp/internal/config"
	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/logctx"
	"github.com/skanehira/version-lsp/internal/parser/cargo"
	"github.com/skanehira/version-lsp/internal/parser/githubactions"
	"github.com/skanehira/version-lsp/internal/parser/gomod"
	"github.com/skanehira/version-lsp/internal/parser/jsr"
	"github.com/skanehira/version-lsp/internal/parser/npm"
	"github.com/skanehira/version-lsp/internal/parser/pnpm"
	"github.com/skanehira/version-lsp/internal/refresh"
	"github.com/skanehira/version-lsp/internal/registryclient"
	registrycrates "github.com/skanehira/version-lsp/internal/registryclient/crates"
	registrygithubactions "github.com/skanehira/version-lsp/internal/registryclient/githubactions"
	registrygoproxy "github.com/skanehira/version-lsp/internal/registryclient/goproxy"
	"github.com/skanehira/version-lsp/internal/registryclient/httpclient"
	registryjsr "github.com/skanehira/version-lsp/internal/registryclient/jsr"
	registrynpm "github.com/skanehira/version-lsp/internal/registryclient/npm"
	"github.com/skanehira/version-lsp/internal/resolver"
	"github.com/skanehira/version-lsp/internal/version/cargomatch"
	"github.com/skanehira/version-lsp/internal/version/githubactionsmatch"
	"github.com/skanehira/version-lsp/internal/version/goproxymatch"
	"github.com/skanehira/version-lsp/internal/version/npmmatch"
	"github.com/skanehira/version-lsp/pkg/buildinfo"
)

func userAgent() string {
	v := buildinfo.Version
	if v == "" {
		v = "dev"
	}
	return "version-lsp/" + v
}

func main() {
	if err := cli.Execute(serve); err != nil {
		os.Exit(1)
	}
}

// serve wires the full dependency graph and blocks on stdio until the
// client disconnects or sends Shutdown+Exit.
func serve(ctx context.Context) error {
	commonlog.Configure(1, nil)

	dbPath := cli.CacheDBPath()
	if err := os.MkdirAll(dirOf(dbPath), 0o755); err != nil {
		return err
	}
	c, err := cache.Open(dbPath)
	if err != nil {
		return err
	}
	defer c.Close()

	httpClient := httpclient.New(userAgent())
	registry := buildRegistry(httpClient)

	cfgHolder := config.NewHolder(config.Config{})
	orch := &refresh.Orchestrator{Cache: c, Registry: registry, RefreshInterval: refreshIntervalFrom(cfgHolder.Get())}
	be := backend.New(c, registry, orch, cfgHolder)

	handler := protocol.Handler{}
	handler.Initialize = func(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
		capabilities := handler.CreateServerCapabilities()
		syncKind := protocol.TextDocumentSyncKindFull
		capabilities.TextDocumentSync = syncKind
		name := "version-lsp"
		return protocol.InitializeResult{
			Capabilities: capabilities,
			ServerInfo: &protocol.InitializeResultServerInfo{
				Name:    name,
				Version: &buildinfo.Version,
			},
		}, nil
	}

	handler.Initialized = func(context *glsp.Context, params *protocol.InitializedParams) error {
		go orch.Sweep(logctx.WithLogger(context.Context, logctx.FromContext(ctx)))
		return nil
	}

	handler.TextDocumentDidOpen = func(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
		uri := string(params.TextDocument.URI)
		be.DidOpen(context.Context, uri, params.TextDocument.Text, publishFunc(context))
		return nil
	}

	handler.TextDocumentDidChange = func(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
		text, ok := wholeDocumentText(params.ContentChanges)
		if !ok {
			return nil
		}
		uri := string(params.TextDocument.URI)
		be.DidChange(context.Context, uri, text, publishFunc(context))
		return nil
	}

	handler.TextDocumentDidClose = func(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
		be.DidClose(string(params.TextDocument.URI))
		return nil
	}

	handler.WorkspaceDidChangeConfiguration = func(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
		cfg, err := decodeConfig(params.Settings)
		if err != nil {
			logctx.FromContext(ctx).Warn("ignoring malformed configuration", "error", err)
			return nil
		}
		cfgHolder.Set(cfg)
		orch.RefreshInterval = refreshIntervalFrom(cfgHolder.Get())
		return nil
	}

	handler.Shutdown = func(context *glsp.Context) error { return nil }

	srv := glspserver.NewServer(&handler, "version-lsp", false)
	return srv.RunStdio()
}

// publishFunc adapts a *glsp.Context's Notify call to backend.PublishFunc.
func publishFunc(context *glsp.Context) backend.PublishFunc {
	return func(uri string, diagnostics []backend.Diagnostic) {
		context.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         protocol.DocumentUri(uri),
			Diagnostics: toProtocolDiagnostics(diagnostics),
		})
	}
}

func toProtocolDiagnostics(diagnostics []backend.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		sev := protocol.DiagnosticSeverityWarning
		if d.Severity == backend.SeverityError {
			sev = protocol.DiagnosticSeverityError
		}
		message := d.Message
		source := d.Source
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(d.Range.Start.Line), Character: protocol.UInteger(d.Range.Start.Character)},
				End:   protocol.Position{Line: protocol.UInteger(d.Range.End.Line), Character: protocol.UInteger(d.Range.End.Character)},
			},
			Severity: &sev,
			Message:  message,
			Source:   &source,
		})
	}
	return out
}

// wholeDocumentText extracts the full text from a full-sync change
// event. Since the server advertises TextDocumentSyncKindFull only,
// every change carries exactly one whole-document replacement.
func wholeDocumentText(changes []any) (string, bool) {
	if len(changes) == 0 {
		return "", false
	}
	switch c := changes[0].(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return c.Text, true
	case map[string]any:
		if text, ok := c["text"].(string); ok {
			return text, true
		}
	}
	return "", false
}

// decodeConfig marshals the client-sent settings payload back to JSON
// and decodes the "version-lsp" block into a config.Config.
func decodeConfig(settings any) (config.Config, error) {
	var wrapper struct {
		VersionLSP config.Config `json:"version-lsp"`
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return config.Config{}, err
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return config.Config{}, err
	}
	return wrapper.VersionLSP, nil
}

// refreshIntervalFrom converts the configured cache.refreshInterval
// (milliseconds, defaulted by config.WithDefaults) to a time.Duration
// for the refresh orchestrator.
func refreshIntervalFrom(cfg config.Config) time.Duration {
	return time.Duration(cfg.Cache.RefreshIntervalMS) * time.Millisecond
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// buildRegistry wires one resolver.Resolver per RegistryKind: a parser,
// a matcher, and a registry client. PnpmCatalog
// delegates to the npm matcher and client since its version specs are
// plain npm ranges resolved against the same registry.
func buildRegistry(httpClient *httpclient.Client) *resolver.Registry {
	npmClient := registrynpm.New(httpClient, domain.KindNpm)
	pnpmClient := registrynpm.New(httpClient, domain.KindPnpmCatalog)
	npmMatcher := npmmatch.New(domain.KindNpm)
	pnpmMatcher := npmmatch.New(domain.KindPnpmCatalog)
	jsrMatcher := npmmatch.New(domain.KindJsr)

	resolvers := map[domain.RegistryKind]*resolver.Resolver{
		domain.KindNpm: {
			Parser:  npm.New(),
			Matcher: npmMatcher,
			Client:  registryclient.Client(npmClient),
		},
		domain.KindPnpmCatalog: {
			Parser:  pnpm.New(),
			Matcher: pnpmMatcher,
			Client:  registryclient.Client(pnpmClient),
		},
		domain.KindCratesIo: {
			Parser:  cargo.New(),
			Matcher: cargomatch.New(),
			Client:  registryclient.Client(registrycrates.New(httpClient)),
		},
		domain.KindGoProxy: {
			Parser:  gomod.New(),
			Matcher: goproxymatch.New(),
			Client:  registryclient.Client(registrygoproxy.New(httpClient)),
		},
		domain.KindGitHubActions: {
			Parser:  githubactions.New(),
			Matcher: githubactionsmatch.New(),
			Client:  registryclient.Client(registrygithubactions.New(httpClient)),
		},
		domain.KindJsr: {
			Parser:  jsr.New(),
			Matcher: jsrMatcher,
			Client:  registryclient.Client(registryjsr.New(httpClient)),
		},
	}
	return resolver.New(resolvers)
}
