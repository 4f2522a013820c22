package buildinfo

import (
	"strings"
	"testing"
)

func TestStringIncludesAllFields(t *testing.T) {
	defer restore()
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-01T00:00:00Z"

	s := String()
	for _, want := range []string{"v1.2.3", "abc123", "2026-01-01T00:00:00Z"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestTemplateIncludesNamePlaceholder(t *testing.T) {
	defer restore()
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-01T00:00:00Z"

	tmpl := Template()
	if !strings.Contains(tmpl, "{{.Name}}") {
		t.Errorf("Template() = %q, want a {{.Name}} placeholder for cobra", tmpl)
	}
	if !strings.Contains(tmpl, "v1.2.3") || !strings.Contains(tmpl, "abc123") {
		t.Errorf("Template() = %q, missing version/commit", tmpl)
	}
}

func TestDefaultValues(t *testing.T) {
	defer restore()
	if Version != "dev" || Commit != "none" || Date != "unknown" {
		t.Errorf("defaults = %q %q %q", Version, Commit, Date)
	}
}

func restore() {
	Version, Commit, Date = "dev", "none", "unknown"
}
