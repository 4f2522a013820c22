// Package resolver maintains one (parser, matcher, client) triple per
// RegistryKind and the URI-based kind detection that picks which triple
// handles a given document. A map keyed by RegistryKind stands in for
// tagged-variant dispatch, since Go has no sum types — dynamic dispatch
// through the narrow parser.Parser/version.Matcher/registryclient.Client
// interfaces is negligible next to the I/O each resolver eventually
// performs.
package resolver

import (
	"context"
	"strings"

	"github.com/skanehira/version-lsp/internal/cache"
	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/parser"
	"github.com/skanehira/version-lsp/internal/registryclient"
	"github.com/skanehira/version-lsp/internal/version"
)

// Resolver bundles everything needed to turn one document's text into
// diagnostics for one RegistryKind.
type Resolver struct {
	Parser  parser.Parser
	Matcher version.Matcher
	Client  registryclient.Client
}

// Registry maps every RegistryKind to its resolver and detects which
// kind a document URI belongs to.
type Registry struct {
	byKind map[domain.RegistryKind]*Resolver
}

func New(resolvers map[domain.RegistryKind]*Resolver) *Registry {
	return &Registry{byKind: resolvers}
}

func (r *Registry) For(kind domain.RegistryKind) *Resolver { return r.byKind[kind] }

// DetectKind maps a document URI to the RegistryKind whose manifest
// format it matches. A URI matching none of these
// patterns yields no diagnostics.
func DetectKind(uri string) (domain.RegistryKind, bool) {
	path := strings.TrimSuffix(uri, "/")
	base := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		base = path[i+1:]
	}

	switch {
	case base == "package.json":
		return domain.KindNpm, true
	case base == "pnpm-workspace.yaml":
		return domain.KindPnpmCatalog, true
	case base == "Cargo.toml":
		return domain.KindCratesIo, true
	case base == "go.mod":
		return domain.KindGoProxy, true
	case base == "deno.json" || base == "deno.jsonc":
		return domain.KindJsr, true
	case isWorkflowOrActionYAML(path):
		return domain.KindGitHubActions, true
	default:
		return "", false
	}
}

func isWorkflowOrActionYAML(path string) bool {
	if !strings.HasSuffix(path, ".yml") && !strings.HasSuffix(path, ".yaml") {
		return false
	}
	return strings.Contains(path, "/.github/workflows/") || strings.Contains(path, "/.github/actions/")
}

// Entry is one parsed PackageEntry paired with the CompareResult
// computed for it, or a nil Result when the (kind, name) has no cache
// row yet — a cache miss to be filled asynchronously.
type Entry struct {
	Package domain.PackageEntry
	Result  *domain.CompareResult
}

// Resolve parses one document's text, then for
// each entry either classify it against the cache or leave Result nil
// if there's no row yet.
func (res *Resolver) Resolve(ctx context.Context, c *cache.Cache, text string, ignorePrerelease bool) ([]Entry, error) {
	entries, err := res.Parser.Parse(text)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		has, err := c.HasRow(ctx, e.Kind, e.Name)
		if err != nil {
			return nil, err
		}
		if !has {
			out = append(out, Entry{Package: e})
			continue
		}

		versions, err := c.GetVersions(ctx, e.Kind, e.Name)
		if err != nil {
			return nil, err
		}
		distTags, err := c.GetDistTags(ctx, e.Kind, e.Name)
		if err != nil {
			return nil, err
		}

		result := res.Matcher.Compare(version.CompareInput{
			Spec:             e.VersionSpec,
			Available:        versions,
			DistTags:         distTags,
			IgnorePrerelease: ignorePrerelease,
		})
		out = append(out, Entry{Package: e, Result: &result})
	}
	return out, nil
}

// MissingNames returns the distinct names among entries that have no
// Result yet, for the on-demand fill worklist.
func MissingNames(entries []Entry) []string {
	var names []string
	seen := map[string]bool{}
	for _, e := range entries {
		if e.Result != nil {
			continue
		}
		if seen[e.Package.Name] {
			continue
		}
		seen[e.Package.Name] = true
		names = append(names, e.Package.Name)
	}
	return names
}
