package jsr

import "testing"

func TestNonYankedByCreatedAtOrdersAscendingAndDropsYanked(t *testing.T) {
	versions := map[string]versionMeta{
		"2.0.0": {CreatedAt: "2024-03-01T00:00:00Z"},
		"1.0.0": {CreatedAt: "2024-01-01T00:00:00Z"},
		"1.5.0": {CreatedAt: "2024-02-01T00:00:00Z", Yanked: true},
	}
	got := nonYankedByCreatedAt(versions)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2 (1.5.0 is yanked)", len(got))
	}
	if got[0] != "1.0.0" || got[1] != "2.0.0" {
		t.Errorf("got = %v, want ascending by createdAt", got)
	}
}

func TestNonYankedByCreatedAtUnparsableTimestamp(t *testing.T) {
	versions := map[string]versionMeta{"1.0.0": {CreatedAt: "not-a-time"}}
	got := nonYankedByCreatedAt(versions)
	if len(got) != 1 || got[0] != "1.0.0" {
		t.Errorf("got = %v, want [1.0.0] even with an unparsable timestamp", got)
	}
}

func TestKind(t *testing.T) {
	c := New(nil)
	if c.Kind() != "jsr" {
		t.Errorf("Kind() = %q", c.Kind())
	}
}
