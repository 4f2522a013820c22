// Package npm implements the npm registry client, reused by the
// PnpmCatalog kind since pnpm catalog entries resolve against the npm
// registry.
//
// The registry returns a `versions` object whose key order is the
// package's publish order, which the cache keeps as the stored version
// order. encoding/json's Unmarshal into a Go map
// loses that order, so Fetch walks the response with json.Decoder's
// token stream instead of unmarshaling it wholesale — this stays on
// encoding/json because no ecosystem library offers order-preserving
// JSON object decoding worth a new dependency for this narrow a problem
// (see DESIGN.md).
package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/errs"
	"github.com/skanehira/version-lsp/internal/registryclient"
	"github.com/skanehira/version-lsp/internal/registryclient/httpclient"
)

const baseURL = "https://registry.npmjs.org"

// Client fetches version metadata from the npm registry.
type Client struct {
	http *httpclient.Client
	kind domain.RegistryKind
}

// New builds an npm registry client. kind lets the same implementation
// serve domain.KindNpm and domain.KindPnpmCatalog under the registry
// kind the caller actually needs reported.
func New(http *httpclient.Client, kind domain.RegistryKind) *Client {
	return &Client{http: http, kind: kind}
}

func (c *Client) Kind() domain.RegistryKind { return c.kind }

func (c *Client) Fetch(ctx context.Context, name string) (registryclient.FetchResult, error) {
	reqURL := fmt.Sprintf("%s/%s", baseURL, url.PathEscape(name))
	body, _, err := c.http.Get(ctx, reqURL, nil)
	if err != nil {
		return registryclient.FetchResult{}, err
	}

	versions, distTags, err := parseOrdered(body)
	if err != nil {
		return registryclient.FetchResult{}, errs.Wrap(errs.CodeInvalidResponse, err, "parsing npm response for %s", name)
	}
	return registryclient.FetchResult{Versions: versions, DistTags: distTags}, nil
}

// parseOrdered extracts the "versions" object's keys in their original
// publish order and the "dist-tags" object as a plain map.
func parseOrdered(body []byte) ([]string, map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	distTags := map[string]string{}
	var versions []string

	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return nil, nil, err
		}
		switch key {
		case "versions":
			versions, err = readOrderedKeys(dec)
		case "dist-tags":
			err = dec.Decode(&distTags)
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return versions, distTags, nil
}

func readOrderedKeys(dec *json.Decoder) ([]string, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return nil, err
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, err
	}
	return keys, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
