// Package cargomatch implements the Cargo requirement matcher.
// Cargo's grammar differs from npm's in exactly one place
// that matters here: a bare version number ("1.2.3") defaults to a
// caret requirement, not an exact match, so every comma-separated term
// without an explicit operator or wildcard gets "^" prepended before
// being handed to github.com/Masterminds/semver/v3, whose own bare-version
// default is exact equality.
package cargomatch

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/version"
	"github.com/skanehira/version-lsp/internal/version/semverutil"
)

// Matcher matches Cargo.toml version requirements.
type Matcher struct{}

func New() *Matcher { return &Matcher{} }

func (*Matcher) Kind() domain.RegistryKind { return domain.KindCratesIo }

func (*Matcher) VersionExists(spec string, available []string) bool {
	constraint, err := parseConstraint(spec)
	if err != nil {
		return false
	}
	return semverutil.SatisfyingConstraint(constraint, available, false) != nil
}

func (*Matcher) Compare(in version.CompareInput) domain.CompareResult {
	constraint, err := parseConstraint(in.Spec)
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

// parseConstraint rewrites Cargo's caret-default grammar into
// Masterminds' exact-default one, term by term, then parses the result.
func parseConstraint(spec string) (*semver.Constraints, error) {
	terms := strings.Split(spec, ",")
	for i, t := range terms {
		t = strings.TrimSpace(t)
		if needsCaretPrefix(t) {
			t = "^" + t
		}
		terms[i] = t
	}
	return semver.NewConstraint(strings.Join(terms, ","))
}

func needsCaretPrefix(term string) bool {
	if term == "" {
		return false
	}
	switch term[0] {
	case '^', '~', '>', '<', '=', '*':
		return false
	}
	return !strings.ContainsAny(term, "*xX")
}
