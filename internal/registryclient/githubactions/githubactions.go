// Package githubactions implements the GitHubActions registry client:
// the Releases API, paged 100-at-a-time via the
// `Link: rel="next"` header, releases sorted by creation date ascending
// (publish date when a release carries no creation date).
// If GITHUB_TOKEN is set in the environment, it's sent as a bearer
// token, raising the otherwise very low unauthenticated rate limit.
package githubactions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sort"
	"time"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/errs"
	"github.com/skanehira/version-lsp/internal/registryclient"
	"github.com/skanehira/version-lsp/internal/registryclient/httpclient"
)

const baseURL = "https://api.github.com"

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

type release struct {
	TagName     string `json:"tag_name"`
	CreatedAt   string `json:"created_at"`
	PublishedAt string `json:"published_at"`
}

// Client fetches release tags from the GitHub Releases API.
type Client struct {
	http *httpclient.Client
}

func New(http *httpclient.Client) *Client { return &Client{http: http} }

func (*Client) Kind() domain.RegistryKind { return domain.KindGitHubActions }

func (c *Client) Fetch(ctx context.Context, name string) (registryclient.FetchResult, error) {
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	reqURL := fmt.Sprintf("%s/repos/%s/releases?per_page=100", baseURL, name)

	var all []dated
	for reqURL != "" {
		body, hdr, err := c.http.Get(ctx, reqURL, headers)
		if err != nil {
			return registryclient.FetchResult{}, err
		}

		var page []release
		if err := json.Unmarshal(body, &page); err != nil {
			return registryclient.FetchResult{}, errs.Wrap(errs.CodeInvalidResponse, err, "parsing GitHub releases for %s", name)
		}
		all = append(all, datedTags(page)...)

		reqURL = nextLink(hdr)
	}

	return registryclient.FetchResult{Versions: sortedTags(all)}, nil
}

type dated struct {
	tag string
	at  time.Time
}

// datedTags extracts each release's tag and its best-available
// timestamp, preferring createdAt over publishedAt.
func datedTags(page []release) []dated {
	out := make([]dated, 0, len(page))
	for _, r := range page {
		ts := r.CreatedAt
		if ts == "" {
			ts = r.PublishedAt
		}
		at, _ := time.Parse(time.RFC3339, ts)
		out = append(out, dated{tag: r.TagName, at: at})
	}
	return out
}

// sortedTags orders all ascending by timestamp and returns just the tags.
func sortedTags(all []dated) []string {
	sort.SliceStable(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	out := make([]string, len(all))
	for i, d := range all {
		out[i] = d.tag
	}
	return out
}

func nextLink(hdr http.Header) string {
	m := nextLinkPattern.FindStringSubmatch(hdr.Get("Link"))
	if m == nil {
		return ""
	}
	return m[1]
}
