package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestBuilder builds a request bound to the per-call context.
type RequestBuilder func(ctx context.Context) (*http.Request, error)

// FetchBytes performs one HTTP call with its own timeout and a body limit.
// There is no retry: a failure is returned classified so the caller can move on.
func FetchBytes(ctx context.Context, client *http.Client, timeout time.Duration, maxBytes int64, source string, build RequestBuilder) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCaptionBytes
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", source, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, Errorf(KindSourceUnavailable, source, "%w: timeout after %s", ErrSourceUnavailable, timeout)
		}
		return nil, Errorf(KindSourceUnavailable, source, "%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp, maxBytes)
	if err != nil {
		return nil, Errorf(KindSourceUnavailable, source, "%w: read body: %v", ErrSourceUnavailable, err)
	}
	if err := CheckStatus(source, resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// CheckStatus classifies a non-2xx upstream status.
func CheckStatus(source string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return Errorf(KindRateLimited, source, "%w: HTTP 429", ErrRateLimited)
	default:
		return Errorf(KindSourceUnavailable, source, "%w: HTTP %d: %s", ErrSourceUnavailable, status, Snippet(string(body), 200))
	}
}

// readResponseBody reads at most maxBytes, handling gzip decompression if needed.
func readResponseBody(resp *http.Response, maxBytes int64) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("body too large (>%d bytes)", maxBytes)
	}
	return data, nil
}
