// Package transcript wires the caption chain, the translation pipeline and
// the cache into the two operations callers use: fetch a transcript and
// list a video's caption languages.
package transcript

import (
	"context"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/translate"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// Captions is the caption source chain as seen by the service.
type Captions interface {
	Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error)
	ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error)
}

// Request asks for one video's transcript.
type Request struct {
	URL         string `json:"url"`
	Language    string `json:"language,omitempty"`
	TranslateTo string `json:"translate_to,omitempty"`
}

// Service is safe for concurrent use; every request keeps its own state.
type Service struct {
	cfg      engine.Config
	captions Captions
	pipeline *translate.Pipeline // nil disables translation
	cache    *engine.Cache       // nil disables caching
}

// New builds a Service. pipeline and cache may be nil.
func New(cfg engine.Config, captions Captions, pipeline *translate.Pipeline, cache *engine.Cache) *Service {
	return &Service{cfg: cfg.WithDefaults(), captions: captions, pipeline: pipeline, cache: cache}
}

// Transcribe fetches, optionally translates and assembles a transcript.
// Only an invalid URL or the exhaustion of every caption source is returned
// as an error; translation problems degrade to untranslated text.
func (s *Service) Transcribe(ctx context.Context, req Request) (*engine.TranscriptResult, error) {
	engine.IncrTranscriptRequests()

	videoID, err := engine.ExtractVideoID(req.URL)
	if err != nil {
		engine.IncrTranscriptErrors()
		return nil, err
	}
	lang := toolutil.NormLang(req.Language)
	target := toolutil.NormLang(req.TranslateTo)

	cacheKey := engine.CacheKey("transcript", videoID, lang, target)
	if cached, ok := toolutil.CacheLoadJSON[engine.TranscriptResult](ctx, s.cache, cacheKey); ok {
		slog.Debug("transcript: cache hit", slog.String("video", videoID))
		return &cached, nil
	}

	var fetched engine.Fetched
	err = engine.TrackOperation(ctx, "captions", func(ctx context.Context) error {
		var ferr error
		fetched, ferr = s.captions.Fetch(ctx, videoID, s.cfg.Preference(lang))
		return ferr
	})
	if err != nil {
		engine.IncrTranscriptErrors()
		slog.Warn("transcript: no source could serve captions",
			slog.String("video", videoID), slog.Any("error", err))
		return nil, err
	}

	if target == "" && s.cfg.AutoTranslate && lang != "" && !sameLanguage(lang, fetched.Language) {
		target = lang
	}

	result := engine.Assemble(videoID, fetched.Segments)
	result.SourceLanguage = fetched.Language
	result.Source = fetched.Source

	degraded := false
	if target != "" && !sameLanguage(target, fetched.Language) {
		degraded = s.translate(ctx, &result, target)
	}

	// partial translations are served but never cached
	if !degraded {
		toolutil.CacheStoreJSON(ctx, s.cache, cacheKey, result)
	}
	slog.Info("transcript: served",
		slog.String("video", videoID), slog.String("source", result.Source),
		slog.String("lang", result.SourceLanguage), slog.String("translated_to", result.TranslatedTo),
		slog.Int("segments", len(result.Segments)))
	return &result, nil
}

// translate replaces the result text with its translation into target and
// reports whether any part of it stayed untranslated. TranslatedTo is only
// set when at least one unit came back translated. FullText is rebuilt from
// the translated segments when every batch came back aligned, and
// translated separately otherwise.
func (s *Service) translate(ctx context.Context, result *engine.TranscriptResult, target string) bool {
	if s.pipeline == nil {
		slog.Warn("transcript: translation requested but no translator configured", slog.String("target", target))
		return true
	}
	source := engine.BaseLanguage(result.SourceLanguage)

	segs, segStats := s.pipeline.TranslateSegments(ctx, result.Segments, source, target)
	result.Segments = segs

	translated := segStats.Translated()
	degraded := segStats.Failed > 0 || segStats.Misaligned > 0
	if degraded {
		full, textStats := s.pipeline.TranslateText(ctx, result.FullText, source, target)
		result.FullText = full
		translated = translated || textStats.Translated()
	} else {
		result.FullText = engine.FullText(segs)
	}

	if translated {
		result.TranslatedTo = target
	} else {
		slog.Warn("transcript: every translation call failed, returning original text",
			slog.String("video", result.VideoID), slog.String("target", target))
	}
	return degraded
}

// Languages lists the caption tracks of a video.
func (s *Service) Languages(ctx context.Context, rawURL string) (*engine.VideoLanguages, error) {
	engine.IncrLanguageRequests()

	videoID, err := engine.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	cacheKey := engine.CacheKey("languages", videoID)
	if cached, ok := toolutil.CacheLoadJSON[engine.VideoLanguages](ctx, s.cache, cacheKey); ok {
		return &cached, nil
	}

	tracks, err := s.captions.ListTracks(ctx, videoID)
	if err != nil {
		slog.Warn("transcript: no source could list captions",
			slog.String("video", videoID), slog.Any("error", err))
		return nil, err
	}
	out := engine.VideoLanguages{VideoID: videoID, AvailableLanguages: tracks}
	toolutil.CacheStoreJSON(ctx, s.cache, cacheKey, out)
	return &out, nil
}

// sameLanguage compares codes by base language: "pt" matches "pt-BR".
func sameLanguage(a, b string) bool {
	return strings.EqualFold(engine.BaseLanguage(a), engine.BaseLanguage(b))
}
