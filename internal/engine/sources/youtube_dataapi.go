package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// DataAPI uses the official YouTube Data API v3: captions.list for the
// descriptors and captions.download (WebVTT) for the body. Downloading needs
// OAuth credentials authorised for the video; with only an API key the list
// call works and the download fails over to the next source.
type DataAPI struct {
	svc      *youtube.Service
	timeout  time.Duration
	maxBytes int64
}

// NewDataAPI builds the Data API source from the configured service-account
// file or API key. extra options are appended, e.g. a test endpoint.
func NewDataAPI(ctx context.Context, cfg engine.Config, extra ...option.ClientOption) (*DataAPI, error) {
	var opts []option.ClientOption
	switch {
	case cfg.YouTubeServiceAccount != "":
		data, err := os.ReadFile(cfg.YouTubeServiceAccount)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account file: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeForceSslScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(jwt.Client(ctx)))
	case cfg.YouTubeAPIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.YouTubeAPIKey))
	default:
		return nil, errors.New("dataapi: no API key or service account configured")
	}
	opts = append(opts, extra...)

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &DataAPI{svc: svc, timeout: cfg.FetchTimeout, maxBytes: cfg.MaxCaptionBytes}, nil
}

func (s *DataAPI) Name() string { return "dataapi" }

func (s *DataAPI) classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests:
			return engine.Errorf(engine.KindRateLimited, s.Name(), "%w: %v", engine.ErrRateLimited, err)
		case gerr.Code == http.StatusForbidden && quotaExceeded(gerr):
			return engine.Errorf(engine.KindRateLimited, s.Name(), "%w: quota: %v", engine.ErrRateLimited, err)
		case gerr.Code == http.StatusNotFound:
			return engine.Errorf(engine.KindNoCaptions, s.Name(), "%w: %v", engine.ErrNoCaptions, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: timeout after %s", engine.ErrSourceUnavailable, s.timeout)
	}
	return engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: %v", engine.ErrSourceUnavailable, err)
}

func quotaExceeded(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded", "dailyLimitExceeded":
			return true
		}
	}
	return false
}

// ListTracks returns the caption descriptors from captions.list.
func (s *DataAPI) ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	if err != nil {
		return nil, s.classify(err)
	}
	tracks := make([]engine.CaptionTrack, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		tracks = append(tracks, engine.CaptionTrack{
			LanguageCode: item.Snippet.Language,
			LanguageName: item.Snippet.Name,
			IsGenerated:  item.Snippet.TrackKind == "asr",
			ID:           item.Id,
		})
	}
	if len(tracks) == 0 {
		return nil, engine.Errorf(engine.KindNoCaptions, s.Name(), "%w: captions.list returned no tracks", engine.ErrNoCaptions)
	}
	return tracks, nil
}

func (s *DataAPI) Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error) {
	tracks, err := s.ListTracks(ctx, videoID)
	if err != nil {
		return engine.Fetched{}, err
	}
	track, err := engine.SelectTrack(tracks, pref)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	resp, err := s.svc.Captions.Download(track.ID).Tfmt("vtt").Context(ctx).Download()
	if err != nil {
		return engine.Fetched{}, s.classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return engine.Fetched{}, engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: read caption body: %v", engine.ErrSourceUnavailable, err)
	}
	if int64(len(body)) > s.maxBytes {
		return engine.Fetched{}, engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: caption body too large (>%d bytes)", engine.ErrSourceUnavailable, s.maxBytes)
	}
	segs, err := engine.NormalizeVTT(body)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	return engine.Fetched{Segments: segs, Language: track.LanguageCode, Source: s.Name()}, nil
}
