// Package semverutil implements the shared "Latest selection" rule,
// wrapping github.com/Masterminds/semver/v3 so every semver-based
// matcher (npm, jsr, pnpm catalog, go proxy, github actions) selects
// and compares versions the same way.
package semverutil

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/skanehira/version-lsp/internal/domain"
)

// Parsed pairs a stored version string with its parsed form, kept
// together because the raw string (not semver's canonical rendering) is
// what gets reported back in diagnostics and cache rows.
type Parsed struct {
	Raw    string
	Semver *semver.Version
}

// ParseAll parses every version in versions that is valid semver,
// silently dropping ones that are not (a matcher decides separately
// whether an unparsable stored version matters for its own grammar).
func ParseAll(versions []string) []Parsed {
	out := make([]Parsed, 0, len(versions))
	for _, v := range versions {
		if sv, err := semver.NewVersion(v); err == nil {
			out = append(out, Parsed{Raw: v, Semver: sv})
		}
	}
	return out
}

// SelectLatest implements the shared "Latest selection" rule: the
// maximum by (major, minor, patch, prerelease); when ignorePrerelease
// is set, the candidate set is restricted first, falling back to the full
// set if that leaves nothing.
func SelectLatest(versions []string, ignorePrerelease bool) (string, bool) {
	parsed := ParseAll(versions)
	if len(parsed) == 0 {
		return "", false
	}

	candidates := parsed
	if ignorePrerelease {
		stable := make([]Parsed, 0, len(parsed))
		for _, p := range parsed {
			if p.Semver.Prerelease() == "" {
				stable = append(stable, p)
			}
		}
		if len(stable) > 0 {
			candidates = stable
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Semver.LessThan(candidates[j].Semver)
	})
	best := candidates[len(candidates)-1]
	return best.Raw, true
}

// SatisfyingConstraint returns the maximum stored version that satisfies
// constraint, applying the same ignorePrerelease restriction as
// SelectLatest but without its fallback: a range matcher must not report
// a pre-release as the "effective current" version just because no
// stable version happens to satisfy it.
func SatisfyingConstraint(constraint *semver.Constraints, versions []string, ignorePrerelease bool) *semver.Version {
	parsed := ParseAll(versions)
	var best *semver.Version
	for _, p := range parsed {
		if ignorePrerelease && p.Semver.Prerelease() != "" {
			continue
		}
		if !constraint.Check(p.Semver) {
			continue
		}
		if best == nil || p.Semver.GreaterThan(best) {
			best = p.Semver
		}
	}
	return best
}

// Compare classifies current against latest once both are known
// concrete (non-range) versions, the shared tail of CompareResult
// production for every semver-based matcher.
func Compare(current, latest *semver.Version) domain.CompareResult {
	switch current.Compare(latest) {
	case 0:
		return domain.CompareResult{Status: domain.StatusLatest}
	case 1:
		return domain.CompareResult{Status: domain.StatusNewer, Latest: latest.Original()}
	default:
		return domain.CompareResult{Status: domain.StatusOutdated, Latest: latest.Original()}
	}
}
