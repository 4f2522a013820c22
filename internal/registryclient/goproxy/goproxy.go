// Package goproxy implements the GoProxy registry client:
// `/<escaped-module>/@v/list`, a plain text list of one
// version per line, sorted ascending by semver precedence. Module paths
// are escaped per the goproxy protocol: capital letters become "!"
// followed by the lowercase letter, since module paths are
// case-sensitive but most filesystems underlying a proxy are not.
package goproxy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/registryclient"
	"github.com/skanehira/version-lsp/internal/registryclient/httpclient"
)

const baseURL = "https://proxy.golang.org"

// Client fetches version metadata from the Go module proxy.
type Client struct {
	http *httpclient.Client
}

func New(http *httpclient.Client) *Client { return &Client{http: http} }

func (*Client) Kind() domain.RegistryKind { return domain.KindGoProxy }

func (c *Client) Fetch(ctx context.Context, name string) (registryclient.FetchResult, error) {
	reqURL := fmt.Sprintf("%s/%s/@v/list", baseURL, encodeForProxy(name))
	body, _, err := c.http.Get(ctx, reqURL, map[string]string{"Accept": "text/plain"})
	if err != nil {
		return registryclient.FetchResult{}, err
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	versions := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			versions = append(versions, l)
		}
	}
	sortBySemver(versions)
	return registryclient.FetchResult{Versions: versions}, nil
}

func sortBySemver(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		vi, erri := semver.NewVersion(versions[i])
		vj, errj := semver.NewVersion(versions[j])
		if erri != nil || errj != nil {
			return versions[i] < versions[j]
		}
		return vi.LessThan(vj)
	})
}

// encodeForProxy encodes a module path per the goproxy protocol: capital
// letters become "!" followed by the lowercase letter.
// https://go.dev/ref/mod#goproxy-protocol
func encodeForProxy(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune('!')
			b.WriteRune(r + 32)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
