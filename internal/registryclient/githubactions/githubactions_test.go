package githubactions

import (
	"net/http"
	"testing"
	"time"
)

func TestDatedTagsPrefersCreatedAtOverPublishedAt(t *testing.T) {
	page := []release{
		{TagName: "v1", CreatedAt: "2024-01-01T00:00:00Z", PublishedAt: "2024-02-01T00:00:00Z"},
		{TagName: "v2", PublishedAt: "2024-03-01T00:00:00Z"},
	}
	got := datedTags(page)
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if !got[0].at.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("v1 timestamp = %v, want createdAt", got[0].at)
	}
	if !got[1].at.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("v2 timestamp = %v, want publishedAt fallback", got[1].at)
	}
}

func TestSortedTagsAscendingByTimestamp(t *testing.T) {
	all := []dated{
		{tag: "v3", at: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{tag: "v1", at: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{tag: "v2", at: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := sortedTags(all)
	want := []string{"v1", "v2", "v3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sortedTags() = %v, want %v", got, want)
			break
		}
	}
}

func TestNextLinkExtractsRelNext(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Link", `<https://api.github.com/repos/a/b/releases?page=2>; rel="next", <https://api.github.com/repos/a/b/releases?page=5>; rel="last"`)
	got := nextLink(hdr)
	want := "https://api.github.com/repos/a/b/releases?page=2"
	if got != want {
		t.Errorf("nextLink() = %q, want %q", got, want)
	}
}

func TestNextLinkNoNextReturnsEmpty(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Link", `<https://api.github.com/repos/a/b/releases?page=1>; rel="last"`)
	if got := nextLink(hdr); got != "" {
		t.Errorf("nextLink() = %q, want empty", got)
	}
}

func TestKind(t *testing.T) {
	c := New(nil)
	if c.Kind() != "github" {
		t.Errorf("Kind() = %q", c.Kind())
	}
}
