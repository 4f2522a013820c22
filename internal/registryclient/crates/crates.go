// Package crates implements the CratesIo registry client:
// `/api/v1/crates/<name>`, yanked versions filtered out: the
// provider already returns the remaining versions oldest-to-newest, so
// no re-sort is needed.
package crates

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/errs"
	"github.com/skanehira/version-lsp/internal/registryclient"
	"github.com/skanehira/version-lsp/internal/registryclient/httpclient"
)

const baseURL = "https://crates.io/api/v1/crates"

type crateResponse struct {
	Versions []crateVersion `json:"versions"`
}

type crateVersion struct {
	Num    string `json:"num"`
	Yanked bool   `json:"yanked"`
}

// Client fetches version metadata from crates.io.
type Client struct {
	http *httpclient.Client
}

func New(http *httpclient.Client) *Client { return &Client{http: http} }

func (*Client) Kind() domain.RegistryKind { return domain.KindCratesIo }

func (c *Client) Fetch(ctx context.Context, name string) (registryclient.FetchResult, error) {
	reqURL := fmt.Sprintf("%s/%s", baseURL, name)
	body, _, err := c.http.Get(ctx, reqURL, nil)
	if err != nil {
		return registryclient.FetchResult{}, err
	}

	var resp crateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return registryclient.FetchResult{}, errs.Wrap(errs.CodeInvalidResponse, err, "parsing crates.io response for %s", name)
	}
	return registryclient.FetchResult{Versions: nonYanked(resp.Versions)}, nil
}

// nonYanked drops yanked versions, preserving the provider's
// oldest-to-newest order.
func nonYanked(versions []crateVersion) []string {
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if v.Yanked {
			continue
		}
		out = append(out, v.Num)
	}
	return out
}
