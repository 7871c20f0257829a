package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// fetcher bundles the HTTP settings every network-backed source shares.
type fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

func newFetcher(cfg engine.Config, client *http.Client) fetcher {
	if client == nil {
		client = cfg.HTTPClient
	}
	return fetcher{client: client, timeout: cfg.FetchTimeout, maxBytes: cfg.MaxCaptionBytes}
}

func (f fetcher) get(ctx context.Context, source, rawURL string, headers map[string]string) ([]byte, error) {
	return engine.FetchBytes(ctx, f.client, f.timeout, f.maxBytes, source, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

func (f fetcher) postJSON(ctx context.Context, source, rawURL string, payload any, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return engine.FetchBytes(ctx, f.client, f.timeout, f.maxBytes, source, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

// attribute stamps source onto classified errors that were raised without one.
func attribute(err error, source string) error {
	var e *engine.Error
	if errors.As(err, &e) && e.Source == "" {
		return &engine.Error{Kind: e.Kind, Source: source, Err: e.Err}
	}
	return err
}
