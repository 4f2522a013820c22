// Package httpclient provides the single http.Client every registry
// client in internal/registryclient shares, plus a retrying GET helper
// that turns transport- and status-level failures into the errs.Code
// taxonomy. A 429 response is never retried in-band: RateLimited
// surfaces immediately to the caller, and the refresh orchestrator logs
// it and leaves the package stale for a later sweep; only transient
// Network errors — connection failures, timeouts, 5xx — are retried
// here.
package httpclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"

	"github.com/skanehira/version-lsp/internal/errs"
	"github.com/skanehira/version-lsp/pkg/observability"
)

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 3
)

// New builds the shared client: a DNS-caching dialer, refreshed every 5
// minutes, and a fixed per-request deadline, with userAgent sent on
// every request.
func New(userAgent string) *Client {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}

	return &Client{
		userAgent: userAgent,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					var lastErr error
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
						lastErr = err
					}
					return nil, lastErr
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// Client is the shared HTTP client every registry client wraps.
type Client struct {
	http      *http.Client
	userAgent string
}

// Get performs a retrying GET against url with the given extra headers,
// returning the body bytes and response headers on a 200. Non-200
// responses are translated to the errs taxonomy; only Network-class
// failures are retried, with exponential backoff per attempt.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, http.Header, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(b.NextBackOff()):
			}
		}

		body, hdr, err := c.doGet(ctx, url, headers)
		if err == nil {
			return body, hdr, nil
		}
		lastErr = err
		if !errs.Is(err, errs.CodeNetwork) {
			return nil, nil, err
		}
	}
	return nil, nil, lastErr
}

func (c *Client) doGet(ctx context.Context, url string, headers map[string]string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, errs.Wrap(errs.CodeInternal, err, "building request for %s", url)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := requestHostPath(url)
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		return nil, nil, errs.Wrap(errs.CodeNetwork, err, "fetching %s", url)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, nil, errs.Wrap(errs.CodeNetwork, err, "reading response from %s", url)
		}
		return body, resp.Header, nil

	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return nil, nil, errs.New(errs.CodeNotFound, "%s: not found", url)

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, nil, &errs.RateLimited{RetryAfterSeconds: retryAfter}

	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if retryAfter == 0 {
			retryAfter = secondsUntilRateLimitReset(resp.Header.Get("X-RateLimit-Reset"))
		}
		return nil, nil, &errs.RateLimited{RetryAfterSeconds: retryAfter}

	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, errs.New(errs.CodeNetwork, "%s: upstream status %d: %s", url, resp.StatusCode, body)

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, errs.New(errs.CodeInvalidResponse, "%s: unexpected status %d: %s", url, resp.StatusCode, body)
	}
}

// requestHostPath splits a URL into host and path for hook reporting,
// falling back to the raw string if it doesn't parse.
func requestHostPath(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, ""
	}
	return u.Host, u.Path
}

// secondsUntilRateLimitReset parses GitHub's X-RateLimit-Reset header (a
// Unix timestamp in seconds) and returns how long until then, or 0 if
// the header is absent or already past.
func secondsUntilRateLimitReset(header string) int {
	if header == "" {
		return 0
	}
	epoch, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return 0
	}
	if d := time.Until(time.Unix(epoch, 0)); d > 0 {
		return int(d.Seconds())
	}
	return 0
}

func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	if n, err := strconv.Atoi(header); err == nil {
		return n
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return int(d.Seconds())
		}
	}
	return 0
}
