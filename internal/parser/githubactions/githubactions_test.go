package githubactions

import "testing"

func TestParseWorkflowStep(t *testing.T) {
	text := `jobs:
  build:
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-node@v4
        with:
          node-version: 20
`
	entries, err := New().Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	byName := map[string]string{}
	for _, e := range entries {
		byName[e.Name] = e.VersionSpec
	}
	if byName["actions/checkout"] != "v4" {
		t.Errorf("checkout spec = %q", byName["actions/checkout"])
	}
	if byName["actions/setup-node"] != "v4" {
		t.Errorf("setup-node spec = %q", byName["actions/setup-node"])
	}
}

func TestParseShaPinUsesTrailingCommentVersion(t *testing.T) {
	text := "jobs:\n  build:\n    steps:\n      - uses: actions/checkout@8e5e7e5ab8b370d6c329ec480221332ada57f0ab # v4.1.1\n"
	entries, err := New().Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].VersionSpec != "v4.1.1" {
		t.Errorf("VersionSpec = %q, want v4.1.1 (from trailing comment, not the SHA)", entries[0].VersionSpec)
	}
}

func TestParseShaPinWithoutCommentKeepsSHA(t *testing.T) {
	sha := "8e5e7e5ab8b370d6c329ec480221332ada57f0ab"
	text := "jobs:\n  build:\n    steps:\n      - uses: actions/checkout@" + sha + "\n"
	entries, err := New().Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 1 || entries[0].VersionSpec != sha {
		t.Errorf("entries = %+v, want VersionSpec = %s", entries, sha)
	}
}

func TestParseCompositeActionRunsSteps(t *testing.T) {
	text := `runs:
  using: composite
  steps:
    - uses: actions/checkout@v4
`
	entries, err := New().Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "actions/checkout" {
		t.Errorf("entries = %+v, want one actions/checkout entry", entries)
	}
}

func TestParseIgnoresJobLevelUses(t *testing.T) {
	text := `jobs:
  build:
    uses: octo-org/octo-repo/.github/workflows/reusable.yml@v1
`
	entries, err := New().Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want none (job-level uses is not visited)", entries)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := New().Parse("jobs:\n  build: [unterminated\n")
	if err == nil {
		t.Error("expected a parse error for invalid YAML")
	}
}

func TestKind(t *testing.T) {
	if New().Kind() != "github" {
		t.Errorf("Kind() = %q", New().Kind())
	}
}
