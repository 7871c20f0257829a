package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// JSON3 scrapes the watch page for ytInitialPlayerResponse and downloads the
// chosen track directly from its baseUrl with fmt=json3.
type JSON3 struct {
	fetcher
	browser  *engine.BrowserClient
	watchURL string
}

// NewJSON3 builds the watch-page source. When cfg.BrowserClient is set the
// watch page is requested through it, otherwise through client.
func NewJSON3(cfg engine.Config, client *http.Client) *JSON3 {
	return &JSON3{fetcher: newFetcher(cfg, client), browser: cfg.BrowserClient, watchURL: ytWatchURL}
}

func (s *JSON3) Name() string { return "json3" }

func (s *JSON3) watchPage(ctx context.Context, videoID string) ([]byte, error) {
	u := s.watchURL + "?" + url.Values{"v": {videoID}, "hl": {"en"}}.Encode()

	var (
		body []byte
		err  error
	)
	if s.browser != nil {
		headers := engine.ChromeHeaders()
		headers["accept-language"] = "en-US,en;q=0.9"
		data, _, status, derr := s.browser.Do("GET", u, headers, nil)
		if derr != nil {
			return nil, engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: watch page: %v", engine.ErrSourceUnavailable, derr)
		}
		if err := engine.CheckStatus(s.Name(), status, data); err != nil {
			return nil, err
		}
		body = data
	} else {
		body, err = s.get(ctx, s.Name(), u, map[string]string{
			"User-Agent":      engine.RandomUserAgent(),
			"Accept-Language": "en-US,en;q=0.9",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		})
		if err != nil {
			return nil, err
		}
	}

	if !strings.Contains(string(body), ytInitialPlayerResponseMarker) {
		if engine.IsBlockPage(body) {
			return nil, engine.Errorf(engine.KindRateLimited, s.Name(), "%w: captcha or consent page", engine.ErrRateLimited)
		}
		return nil, engine.Errorf(engine.KindFormatUnsupported, s.Name(), "%w: ytInitialPlayerResponse not found in watch page", engine.ErrFormatUnsupported)
	}
	return body, nil
}

// ListTracks returns the caption tracks embedded in the watch page.
func (s *JSON3) ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	body, err := s.watchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	resp, err := parsePlayerResponse(s.Name(), body)
	if err != nil {
		return nil, err
	}
	return playerTracks(s.Name(), resp, "json3")
}

func (s *JSON3) Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error) {
	tracks, err := s.ListTracks(ctx, videoID)
	if err != nil {
		return engine.Fetched{}, err
	}
	track, err := engine.SelectTrack(tracks, pref)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	body, err := s.get(ctx, s.Name(), track.URLFor("json3"), map[string]string{
		"User-Agent": engine.UserAgentChrome,
		"Referer":    engine.WatchURL(videoID),
	})
	if err != nil {
		return engine.Fetched{}, err
	}
	segs, err := engine.NormalizeJSON3(body)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	return engine.Fetched{Segments: segs, Language: track.LanguageCode, Source: s.Name()}, nil
}
