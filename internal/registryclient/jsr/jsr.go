// Package jsr implements the Jsr registry client:
// `<name>/meta.json`, yanked versions filtered out, remaining versions
// sorted by createdAt ascending (the registry's own JSON key order is
// not publish order the way npm's is).
package jsr

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/errs"
	"github.com/skanehira/version-lsp/internal/registryclient"
	"github.com/skanehira/version-lsp/internal/registryclient/httpclient"
)

const baseURL = "https://jsr.io"

type metaResponse struct {
	Versions map[string]versionMeta `json:"versions"`
}

type versionMeta struct {
	CreatedAt string `json:"createdAt"`
	Yanked    bool   `json:"yanked"`
}

// Client fetches version metadata from the Jsr registry.
type Client struct {
	http *httpclient.Client
}

func New(http *httpclient.Client) *Client { return &Client{http: http} }

func (*Client) Kind() domain.RegistryKind { return domain.KindJsr }

func (c *Client) Fetch(ctx context.Context, name string) (registryclient.FetchResult, error) {
	reqURL := fmt.Sprintf("%s/%s/meta.json", baseURL, name)
	body, _, err := c.http.Get(ctx, reqURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return registryclient.FetchResult{}, err
	}

	var meta metaResponse
	if err := json.Unmarshal(body, &meta); err != nil {
		return registryclient.FetchResult{}, errs.Wrap(errs.CodeInvalidResponse, err, "parsing jsr response for %s", name)
	}

	return registryclient.FetchResult{Versions: nonYankedByCreatedAt(meta.Versions), DistTags: nil}, nil
}

type versionEntry struct {
	version   string
	createdAt time.Time
}

// nonYankedByCreatedAt drops yanked versions and returns the rest
// sorted ascending by createdAt, since jsr's own JSON key order is not
// publish order the way npm's is.
func nonYankedByCreatedAt(versions map[string]versionMeta) []string {
	entries := make([]versionEntry, 0, len(versions))
	for v, vm := range versions {
		if vm.Yanked {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, vm.CreatedAt)
		entries = append(entries, versionEntry{version: v, createdAt: ts})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].createdAt.Before(entries[j].createdAt) })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.version
	}
	return out
}
