package sources

import (
	"context"
	"net/http"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Innertube fetches captions through the ANDROID InnerTube /player endpoint:
// the player response lists caption tracks, the chosen track's timedtext XML
// is downloaded and normalized from its {text, start, dur} entries.
type Innertube struct {
	fetcher
	playerURL string
}

// NewInnertube builds the structured-API source. client may carry a cookie jar.
func NewInnertube(cfg engine.Config, client *http.Client) *Innertube {
	return &Innertube{fetcher: newFetcher(cfg, client), playerURL: ytPlayerURL}
}

func (s *Innertube) Name() string { return "innertube" }

// ListTracks returns the video's fetchable caption tracks.
func (s *Innertube) ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	body, err := s.postJSON(ctx, s.Name(), s.playerURL+"?prettyPrint=false", androidPlayerReq(videoID), map[string]string{
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	})
	if err != nil {
		return nil, err
	}
	resp, err := parsePlayerResponse(s.Name(), body)
	if err != nil {
		return nil, err
	}
	return playerTracks(s.Name(), resp, "xml")
}

func (s *Innertube) Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error) {
	tracks, err := s.ListTracks(ctx, videoID)
	if err != nil {
		return engine.Fetched{}, err
	}
	track, err := engine.SelectTrack(tracks, pref)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	body, err := s.get(ctx, s.Name(), track.URLFor("xml"), map[string]string{"User-Agent": engine.UserAgentBot})
	if err != nil {
		return engine.Fetched{}, err
	}
	if len(body) == 0 {
		return engine.Fetched{}, engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: empty timedtext body", engine.ErrSourceUnavailable)
	}
	segs, err := engine.NormalizeTimedText(body)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	return engine.Fetched{Segments: segs, Language: track.LanguageCode, Source: s.Name()}, nil
}
