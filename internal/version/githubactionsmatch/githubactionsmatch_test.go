package githubactionsmatch

import (
	"testing"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/version"
)

func TestKind(t *testing.T) {
	if New().Kind() != domain.KindGitHubActions {
		t.Errorf("Kind() = %q", New().Kind())
	}
}

func TestCompareMajorOnlyPinOutdated(t *testing.T) {
	m := New()
	result := m.Compare(version.CompareInput{
		Spec:      "v4",
		Available: []string{"v4.0.0", "v4.1.0", "v5.0.0"},
	})
	if result.Status != domain.StatusOutdated || result.Latest != "v5.0.0" {
		t.Errorf("Compare(v4) = %+v, want Outdated v5.0.0", result)
	}
}

func TestCompareMajorOnlyPinLatest(t *testing.T) {
	m := New()
	result := m.Compare(version.CompareInput{
		Spec:      "v5",
		Available: []string{"v4.0.0", "v5.0.0"},
	})
	if result.Status != domain.StatusLatest {
		t.Errorf("Compare(v5) = %+v, want Latest", result)
	}
}

func TestCompareMajorMinorPin(t *testing.T) {
	m := New()
	result := m.Compare(version.CompareInput{
		Spec:      "v4.1",
		Available: []string{"v4.1.0", "v4.1.5", "v4.2.0"},
	})
	if result.Status != domain.StatusOutdated || result.Latest != "v4.2.0" {
		t.Errorf("Compare(v4.1) = %+v, want Outdated v4.2.0", result)
	}
}

func TestCompareBranchNameIsInvalid(t *testing.T) {
	m := New()
	result := m.Compare(version.CompareInput{Spec: "main", Available: []string{"v1.0.0"}})
	if result.Status != domain.StatusInvalid {
		t.Errorf("Compare(main) = %+v, want Invalid", result)
	}
}

func TestCompareNoMatchingMajor(t *testing.T) {
	m := New()
	result := m.Compare(version.CompareInput{Spec: "v9", Available: []string{"v1.0.0", "v2.0.0"}})
	if result.Status != domain.StatusNotFound {
		t.Errorf("Compare(v9) = %+v, want NotFound", result)
	}
}

func TestVersionExists(t *testing.T) {
	m := New()
	if !m.VersionExists("v4", []string{"v4.0.0"}) {
		t.Error("VersionExists(v4) = false, want true")
	}
	if m.VersionExists("v9", []string{"v4.0.0"}) {
		t.Error("VersionExists(v9) = true, want false")
	}
}
