// Package goproxymatch implements the Go module proxy matcher.
// go.mod requires exactly one version per module path — there
// is no range grammar — so "exists" means the pinned string appears
// verbatim in the stored version list, pseudo-versions
// (v0.0.0-20210101000000-abcdef123456) and +incompatible suffixes
// included; both parse as ordinary semver (a pseudo-version's timestamp
// and commit hash are just prerelease identifiers, and "+incompatible"
// is build metadata), so no special-cased comparison is needed beyond
// what github.com/Masterminds/semver/v3 already does.
package goproxymatch

import (
	"github.com/Masterminds/semver/v3"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/version"
	"github.com/skanehira/version-lsp/internal/version/semverutil"
)

// Matcher matches go.mod pinned module versions.
type Matcher struct{}

func New() *Matcher { return &Matcher{} }

func (*Matcher) Kind() domain.RegistryKind { return domain.KindGoProxy }

func (*Matcher) VersionExists(spec string, available []string) bool {
	if _, err := semver.NewVersion(spec); err != nil {
		return false
	}
	return contains(available, spec)
}

func (*Matcher) Compare(in version.CompareInput) domain.CompareResult {
	current, err := semver.NewVersion(in.Spec)
	if err != nil {
		return domain.CompareResult{Status: domain.StatusInvalid}
	}
	if !contains(in.Available, in.Spec) {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}

	latestRaw, ok := semverutil.SelectLatest(in.Available, in.IgnorePrerelease)
	if !ok {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}
	latest, err := semver.NewVersion(latestRaw)
	if err != nil {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}

	return semverutil.Compare(current, latest)
}

func contains(versions []string, target string) bool {
	for _, v := range versions {
		if v == target {
			return true
		}
	}
	return false
}
