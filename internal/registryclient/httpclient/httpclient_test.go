package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/skanehira/version-lsp/internal/errs"
)

func TestGetSuccessReturnsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent/1.0" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("X-Custom", "yes")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	body, hdr, err := c.Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %q", body)
	}
	if hdr.Get("X-Custom") != "yes" {
		t.Errorf("headers = %v", hdr)
	}
}

func TestGetNotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	if !errs.Is(err, errs.CodeNotFound) {
		t.Fatalf("err = %v, want CodeNotFound", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want exactly 1 (404 is not retried)", calls)
	}
}

func TestGetRateLimitedIsNotRetriedAndCarriesRetryAfter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	rl, ok := err.(*errs.RateLimited)
	if !ok {
		t.Fatalf("err = %v (%T), want *errs.RateLimited", err, err)
	}
	if rl.RetryAfterSeconds != 42 {
		t.Errorf("RetryAfterSeconds = %d, want 42", rl.RetryAfterSeconds)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want exactly 1 (429 is not retried in-band)", calls)
	}
}

func TestGetGoneIsNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	if !errs.Is(err, errs.CodeNotFound) {
		t.Fatalf("err = %v, want CodeNotFound", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want exactly 1 (410 is not retried)", calls)
	}
}

func TestGetGitHubRateLimitExhaustedIsRateLimited(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "9999999999")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	rl, ok := err.(*errs.RateLimited)
	if !ok {
		t.Fatalf("err = %v (%T), want *errs.RateLimited", err, err)
	}
	if rl.RetryAfterSeconds <= 0 {
		t.Errorf("RetryAfterSeconds = %d, want > 0 (derived from X-RateLimit-Reset)", rl.RetryAfterSeconds)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want exactly 1 (rate-limited 403 is not retried in-band)", calls)
	}
}

func TestGetOrdinaryForbiddenIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	if !errs.Is(err, errs.CodeInvalidResponse) {
		t.Fatalf("err = %v, want CodeInvalidResponse (a 403 without X-RateLimit-Remaining: 0 is not a rate limit)", err)
	}
}

func TestGetServerErrorIsRetriedUntilExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	if !errs.Is(err, errs.CodeNetwork) {
		t.Fatalf("err = %v, want CodeNetwork", err)
	}
	if atomic.LoadInt32(&calls) != maxRetries+1 {
		t.Errorf("calls = %d, want %d (initial attempt plus maxRetries retries)", calls, maxRetries+1)
	}
}

func TestGetUnexpectedStatusIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	_, _, err := c.Get(context.Background(), srv.URL, nil)
	if !errs.Is(err, errs.CodeInvalidResponse) {
		t.Fatalf("err = %v, want CodeInvalidResponse", err)
	}
}

func TestGetSendsExtraHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xyz" {
			t.Errorf("Authorization = %q, want Bearer xyz", r.Header.Get("Authorization"))
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New("test-agent/1.0")
	if _, _, err := c.Get(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer xyz"}); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}
