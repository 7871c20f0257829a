package sources

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Library is the last-resort source backed by the kkdai/youtube scraper.
type Library struct {
	client  youtube.Client
	timeout time.Duration
}

// NewLibrary builds the scraping-library source over client.
func NewLibrary(cfg engine.Config, client *http.Client) *Library {
	if client == nil {
		client = cfg.HTTPClient
	}
	return &Library{client: youtube.Client{HTTPClient: client}, timeout: cfg.FetchTimeout}
}

func (s *Library) Name() string { return "library" }

func (s *Library) video(ctx context.Context, videoID string) (*youtube.Video, error) {
	v, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, s.classify(err)
	}
	return v, nil
}

func (s *Library) classify(err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, youtube.ErrTranscriptDisabled):
		return engine.Errorf(engine.KindNoCaptions, s.Name(), "%w: %v", engine.ErrNoCaptions, err)
	case errors.Is(err, context.DeadlineExceeded):
		return engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: timeout after %s", engine.ErrSourceUnavailable, s.timeout)
	case strings.Contains(msg, "429") || engine.IsBotCheck(msg) || strings.Contains(strings.ToLower(msg), "login required"):
		return engine.Errorf(engine.KindRateLimited, s.Name(), "%w: %v", engine.ErrRateLimited, err)
	default:
		return engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: %v", engine.ErrSourceUnavailable, err)
	}
}

func libraryTracks(v *youtube.Video) []engine.CaptionTrack {
	tracks := make([]engine.CaptionTrack, 0, len(v.CaptionTracks))
	for _, t := range v.CaptionTracks {
		tracks = append(tracks, engine.CaptionTrack{
			LanguageCode: t.LanguageCode,
			LanguageName: t.Name.SimpleText,
			IsGenerated:  t.Kind == "asr",
			URLs:         []engine.TrackURL{{Format: "xml", URL: t.BaseURL}},
		})
	}
	return tracks
}

// ListTracks returns the caption tracks the library sees for the video.
func (s *Library) ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := s.video(ctx, videoID)
	if err != nil {
		return nil, err
	}
	tracks := libraryTracks(v)
	if len(tracks) == 0 {
		return nil, engine.Errorf(engine.KindNoCaptions, s.Name(), "%w: video has no caption tracks", engine.ErrNoCaptions)
	}
	return tracks, nil
}

func (s *Library) Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error) {
	// video lookup and transcript download share one budget
	ctx, cancel := context.WithTimeout(ctx, 2*s.timeout)
	defer cancel()

	v, err := s.video(ctx, videoID)
	if err != nil {
		return engine.Fetched{}, err
	}
	track, err := engine.SelectTrack(libraryTracks(v), pref)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	transcript, err := s.client.GetTranscriptCtx(ctx, v, track.LanguageCode)
	if err != nil {
		return engine.Fetched{}, s.classify(err)
	}

	entries := make([]engine.Entry, 0, len(transcript))
	for _, seg := range transcript {
		dur := float64(seg.Duration) / 1000
		entries = append(entries, engine.Entry{
			Text:     seg.Text,
			Start:    float64(seg.StartMs) / 1000,
			Duration: &dur,
		})
	}
	return engine.Fetched{Segments: engine.NormalizeEntries(entries), Language: track.LanguageCode, Source: s.Name()}, nil
}
