// Package githubactionsmatch implements the GitHub Actions matcher:
// a `uses: owner/repo@v4` pin is satisfied by the
// highest release tag that shares its prefix, since major-only (and
// major.minor) tags are the convention action authors publish and
// consumers pin to.
package githubactionsmatch

import (
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/version"
	"github.com/skanehira/version-lsp/internal/version/semverutil"
)

var specPattern = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?$`)

// Matcher matches GitHub Actions `uses:` ref pins.
type Matcher struct{}

func New() *Matcher { return &Matcher{} }

func (*Matcher) Kind() domain.RegistryKind { return domain.KindGitHubActions }

func (*Matcher) VersionExists(spec string, available []string) bool {
	components, ok := parsePrefix(spec)
	if !ok {
		return false
	}
	return bestMatching(components, available, false) != nil
}

func (*Matcher) Compare(in version.CompareInput) domain.CompareResult {
	components, ok := parsePrefix(in.Spec)
	if !ok {
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

	current := bestMatching(components, in.Available, in.IgnorePrerelease)
	if current == nil {
		return domain.CompareResult{Status: domain.StatusNotFound}
	}

	return semverutil.Compare(current, latest)
}

// parsePrefix splits a spec like "v4", "v4.1", or "v4.1.2" into its
// present components; a spec that isn't dotted-number-shaped (a branch
// name, a full SHA) isn't a version prefix this matcher understands.
func parsePrefix(spec string) ([]int, bool) {
	m := specPattern.FindStringSubmatch(spec)
	if m == nil {
		return nil, false
	}
	var out []int
	for _, g := range m[1:] {
		if g == "" {
			break
		}
		n, _ := strconv.Atoi(g)
		out = append(out, n)
	}
	return out, true
}

// bestMatching returns the highest available version whose leading
// components equal components, skipping pre-releases when
// ignorePrerelease is set.
func bestMatching(components []int, available []string, ignorePrerelease bool) *semver.Version {
	var best *semver.Version
	for _, raw := range available {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if ignorePrerelease && v.Prerelease() != "" {
			continue
		}
		if !matchesPrefix(components, v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

func matchesPrefix(components []int, v *semver.Version) bool {
	got := []uint64{v.Major(), v.Minor(), v.Patch()}
	for i, c := range components {
		if i >= len(got) || got[i] != uint64(c) {
			return false
		}
	}
	return true
}
