package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// DefaultGoogleURL is the public gtx translate endpoint.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

const googleSource = "google"

// Google calls the gtx translate endpoint. The response is a nested array
// whose first element lists [translated, original, ...] fragments.
type Google struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

// NewGoogle builds the gtx translator from cfg.
func NewGoogle(cfg engine.Config) *Google {
	cfg = cfg.WithDefaults()
	endpoint := cfg.GoogleTranslateURL
	if endpoint == "" {
		endpoint = DefaultGoogleURL
	}
	return &Google{client: cfg.HTTPClient, endpoint: endpoint, timeout: cfg.TranslateTimeout}
}

func (g *Google) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = "auto"
	}
	q := url.Values{
		"client": {"gtx"},
		"sl":     {source},
		"tl":     {target},
		"dt":     {"t"},
		"q":      {text},
	}
	body, err := engine.FetchBytes(ctx, g.client, g.timeout, 0, googleSource, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	return parseGoogleResponse(body)
}

// parseGoogleResponse concatenates the translated fragments of a gtx reply.
func parseGoogleResponse(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil || len(root) == 0 {
		return "", engine.Errorf(engine.KindTranslationFailed, googleSource, "%w: unexpected response: %s", engine.ErrTranslationFailed, engine.Snippet(string(body), 120))
	}
	var fragments [][]json.RawMessage
	if err := json.Unmarshal(root[0], &fragments); err != nil {
		return "", engine.Errorf(engine.KindTranslationFailed, googleSource, "%w: decode fragments: %v", engine.ErrTranslationFailed, err)
	}
	var sb strings.Builder
	for _, frag := range fragments {
		if len(frag) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(frag[0], &s); err != nil {
			continue
		}
		sb.WriteString(s)
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", engine.Errorf(engine.KindTranslationFailed, googleSource, "%w: empty translation", engine.ErrTranslationFailed)
	}
	return out, nil
}
