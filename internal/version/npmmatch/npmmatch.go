// Package npmmatch implements the npm semver-range matcher, reused
// verbatim for Jsr and PnpmCatalog: both resolve
// specs against a flat stored-version list with the same npm range
// grammar, and PnpmCatalog entries are, per the parser, npm specs in a
// different file.
package npmmatch

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/version"
	"github.com/skanehira/version-lsp/internal/version/semverutil"
)

// knownDistTags lists spec words treated as a dist-tag lookup rather
// than a semver range, adopted from the reference implementation's
// is_potential_dist_tag table.
var knownDistTags = map[string]bool{
	"latest": true, "next": true, "beta": true, "alpha": true,
	"canary": true, "rc": true, "stable": true, "dev": true,
	"experimental": true, "nightly": true, "preview": true,
	"insiders": true, "edge": true,
}

// Matcher matches npm, jsr, and pnpm-catalog version specs.
type Matcher struct {
	kind domain.RegistryKind
}

func New(kind domain.RegistryKind) *Matcher { return &Matcher{kind: kind} }

func (m *Matcher) Kind() domain.RegistryKind { return m.kind }

// VersionExists reports whether some available version satisfies spec
// as a semver range. A dist-tag spec such as "latest" is not a range, so
// it reports false; Compare is what resolves dist tags.
func (m *Matcher) VersionExists(spec string, available []string) bool {
	spec = strings.TrimSpace(spec)
	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return false
	}
	return semverutil.SatisfyingConstraint(constraint, available, false) != nil
}

func (m *Matcher) Compare(in version.CompareInput) domain.CompareResult {
	spec := strings.TrimSpace(in.Spec)

	if resolved, ok := in.DistTags[spec]; ok {
		return compareResolved(resolved, in.Available, in.IgnorePrerelease)
	}
	if knownDistTags[spec] {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}

	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return domain.CompareResult{Status: domain.StatusInvalid}
	}

	latestRaw, ok := semverutil.SelectLatest(in.Available, in.IgnorePrerelease)
	if !ok {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}
	latest, err := semver.NewVersion(latestRaw)
	if err != nil {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}

	current := semverutil.SatisfyingConstraint(constraint, in.Available, in.IgnorePrerelease)
	if current == nil {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}

	return semverutil.Compare(current, latest)
}

func compareResolved(resolved string, available []string, ignorePrerelease bool) domain.CompareResult {
	cur, err := semver.NewVersion(resolved)
	if err != nil {
		return domain.CompareResult{Status: domain.StatusInvalid}
	}
	if !contains(available, resolved) {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}
	latestRaw, ok := semverutil.SelectLatest(available, ignorePrerelease)
	if !ok {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}
	latest, err := semver.NewVersion(latestRaw)
	if err != nil {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}
	return semverutil.Compare(cur, latest)
}

func contains(versions []string, target string) bool {
	for _, v := range versions {
		if v == target {
			return true
		}
	}
	return false
}
