package semverutil

import (
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/skanehira/version-lsp/internal/domain"
)

func TestParseAllDropsInvalid(t *testing.T) {
	parsed := ParseAll([]string{"1.0.0", "not-a-version", "2.0.0"})
	if len(parsed) != 2 {
		t.Fatalf("len(parsed) = %d, want 2", len(parsed))
	}
	if parsed[0].Raw != "1.0.0" || parsed[1].Raw != "2.0.0" {
		t.Errorf("unexpected raw values: %+v", parsed)
	}
}

func TestSelectLatestPicksMax(t *testing.T) {
	latest, ok := SelectLatest([]string{"1.0.0", "1.2.0", "1.1.0"}, false)
	if !ok || latest != "1.2.0" {
		t.Errorf("SelectLatest = %q, %v; want 1.2.0, true", latest, ok)
	}
}

func TestSelectLatestEmptyInput(t *testing.T) {
	_, ok := SelectLatest(nil, false)
	if ok {
		t.Error("SelectLatest(nil) should report not-ok")
	}
}

func TestSelectLatestIgnoresPrerelease(t *testing.T) {
	latest, ok := SelectLatest([]string{"1.0.0", "2.0.0-beta.1"}, true)
	if !ok || latest != "1.0.0" {
		t.Errorf("SelectLatest(ignorePrerelease) = %q, %v; want 1.0.0, true", latest, ok)
	}
}

func TestSelectLatestFallsBackWhenAllPrerelease(t *testing.T) {
	latest, ok := SelectLatest([]string{"1.0.0-alpha.1", "1.0.0-beta.1"}, true)
	if !ok || latest != "1.0.0-beta.1" {
		t.Errorf("SelectLatest(all prerelease) = %q, %v; want 1.0.0-beta.1, true", latest, ok)
	}
}

func TestSatisfyingConstraintMaxMatch(t *testing.T) {
	constraint, err := semver.NewConstraint("^1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	best := SatisfyingConstraint(constraint, []string{"1.0.0", "1.5.0", "2.0.0"}, false)
	if best == nil || best.Original() != "1.5.0" {
		t.Errorf("SatisfyingConstraint = %v, want 1.5.0", best)
	}
}

func TestSatisfyingConstraintNoMatch(t *testing.T) {
	constraint, err := semver.NewConstraint("^3.0.0")
	if err != nil {
		t.Fatal(err)
	}
	best := SatisfyingConstraint(constraint, []string{"1.0.0", "2.0.0"}, false)
	if best != nil {
		t.Errorf("SatisfyingConstraint = %v, want nil", best)
	}
}

func TestSatisfyingConstraintExcludesPrerelease(t *testing.T) {
	constraint, err := semver.NewConstraint("^1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	best := SatisfyingConstraint(constraint, []string{"1.0.0", "1.5.0-rc.1"}, true)
	if best == nil || best.Original() != "1.0.0" {
		t.Errorf("SatisfyingConstraint(ignorePrerelease) = %v, want 1.0.0", best)
	}
}

func TestCompareStatuses(t *testing.T) {
	v1, _ := semver.NewVersion("1.0.0")
	v2, _ := semver.NewVersion("2.0.0")

	if got := Compare(v1, v1).Status; got != domain.StatusLatest {
		t.Errorf("Compare(equal) status = %v", got)
	}
	if got := Compare(v1, v2); got.Status != domain.StatusOutdated || got.Latest != "2.0.0" {
		t.Errorf("Compare(outdated) = %+v", got)
	}
	if got := Compare(v2, v1); got.Status != domain.StatusNewer || got.Latest != "1.0.0" {
		t.Errorf("Compare(newer) = %+v", got)
	}
}
