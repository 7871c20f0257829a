package transcript

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/translate"
)

type fakeCaptions struct {
	fetched engine.Fetched
	tracks  []engine.CaptionTrack
	err     error

	calls    int
	lastPref engine.LanguagePreference
}

func (f *fakeCaptions) Fetch(_ context.Context, _ string, pref engine.LanguagePreference) (engine.Fetched, error) {
	f.calls++
	f.lastPref = pref
	return f.fetched, f.err
}

func (f *fakeCaptions) ListTracks(context.Context, string) ([]engine.CaptionTrack, error) {
	f.calls++
	return f.tracks, f.err
}

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

var ptToEn = strings.NewReplacer("olá", "hello", "mundo", "world")

func dictionary() translate.Translator {
	return translate.Func(func(_ context.Context, text, source, target string) (string, error) {
		if target != "en" {
			return "", engine.Errorf(engine.KindTranslationFailed, "test", "%w: unsupported target", engine.ErrTranslationFailed)
		}
		return ptToEn.Replace(text), nil
	})
}

func ptCaptions() *fakeCaptions {
	return &fakeCaptions{fetched: engine.Fetched{
		Segments: []engine.Segment{
			{Text: "olá", Start: 0, Duration: 1.2},
			{Text: "mundo", Start: 1.2, Duration: 0.8},
		},
		Language: "pt",
		Source:   "json3",
	}}
}

func TestTranscribeAutoTranslate(t *testing.T) {
	cfg := engine.Config{AutoTranslate: true}
	caps := ptCaptions()
	svc := New(cfg, caps, translate.NewPipeline(dictionary(), cfg), nil)

	got, err := svc.Transcribe(context.Background(), Request{URL: "https://youtu.be/dQw4w9WgXcQ", Language: "en"})
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", got.VideoID)
	assert.Equal(t, "pt", got.SourceLanguage)
	assert.Equal(t, "en", got.TranslatedTo)
	assert.Equal(t, "json3", got.Source)
	assert.Equal(t, "hello world", got.FullText)
	assert.Equal(t, []engine.Segment{
		{Text: "hello", Start: 0, Duration: 1.2},
		{Text: "world", Start: 1.2, Duration: 0.8},
	}, got.Segments)
	assert.Equal(t, "en", caps.lastPref.Requested)
	assert.NotEmpty(t, caps.lastPref.Fallback)
}

func TestTranscribeNoAutoTranslate(t *testing.T) {
	cfg := engine.Config{AutoTranslate: false}
	svc := New(cfg, ptCaptions(), translate.NewPipeline(dictionary(), cfg), nil)

	got, err := svc.Transcribe(context.Background(), Request{URL: testURL, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "olá mundo", got.FullText)
	assert.Empty(t, got.TranslatedTo)
}

func TestTranscribeSameLanguageSkipsTranslation(t *testing.T) {
	calls := 0
	tr := translate.Func(func(context.Context, string, string, string) (string, error) {
		calls++
		return "x", nil
	})
	svc := New(engine.Config{}, ptCaptions(), translate.NewPipeline(tr, engine.Config{}), nil)

	got, err := svc.Transcribe(context.Background(), Request{URL: testURL, TranslateTo: "pt-BR"})
	require.NoError(t, err)
	assert.Equal(t, "olá mundo", got.FullText)
	assert.Zero(t, calls)
}

func TestTranscribeTranslationFailureDegrades(t *testing.T) {
	svc := New(engine.Config{}, ptCaptions(), translate.NewPipeline(dictionary(), engine.Config{}), nil)

	got, err := svc.Transcribe(context.Background(), Request{URL: testURL, TranslateTo: "de"})
	require.NoError(t, err)
	assert.Equal(t, "olá mundo", got.FullText)
	assert.Empty(t, got.TranslatedTo)
}

func TestTranscribeBareIDRejected(t *testing.T) {
	caps := ptCaptions()
	svc := New(engine.Config{}, caps, nil, nil)

	_, err := svc.Transcribe(context.Background(), Request{URL: "not-a-video"})
	assert.ErrorIs(t, err, engine.ErrInvalidURL)
	assert.Zero(t, caps.calls)
}

func TestTranscribeFullTextFollowsSegments(t *testing.T) {
	var calls []string
	tr := translate.Func(func(_ context.Context, text, _, _ string) (string, error) {
		calls = append(calls, text)
		return ptToEn.Replace(text), nil
	})
	svc := New(engine.Config{}, ptCaptions(), translate.NewPipeline(tr, engine.Config{}), nil)

	got, err := svc.Transcribe(context.Background(), Request{URL: testURL, TranslateTo: "en"})
	require.NoError(t, err)
	assert.Equal(t, engine.FullText(got.Segments), got.FullText)
	assert.Equal(t, []string{"olá ||| mundo"}, calls, "aligned batches need no separate full-text call")
}

func TestTranscribeDegradedTranslationNotCached(t *testing.T) {
	cache := engine.NewCache("", time.Minute, 10, time.Minute)
	defer cache.Close()

	// the first call (the segment batch) fails, everything after succeeds
	calls := 0
	tr := translate.Func(func(_ context.Context, text, _, _ string) (string, error) {
		calls++
		if calls == 1 {
			return "", engine.Errorf(engine.KindTranslationFailed, "test", "%w: 503", engine.ErrTranslationFailed)
		}
		return ptToEn.Replace(text), nil
	})
	caps := ptCaptions()
	svc := New(engine.Config{}, caps, translate.NewPipeline(tr, engine.Config{}), cache)

	first, err := svc.Transcribe(context.Background(), Request{URL: testURL, TranslateTo: "en"})
	require.NoError(t, err)
	assert.Equal(t, "olá", first.Segments[0].Text)
	assert.Equal(t, "hello world", first.FullText)

	second, err := svc.Transcribe(context.Background(), Request{URL: testURL, TranslateTo: "en"})
	require.NoError(t, err)
	assert.Equal(t, 2, caps.calls, "degraded result must not be served from cache")
	assert.Equal(t, "hello", second.Segments[0].Text)
	assert.Equal(t, "hello world", second.FullText)
	assert.Equal(t, "en", second.TranslatedTo)

	third, err := svc.Transcribe(context.Background(), Request{URL: testURL, TranslateTo: "en"})
	require.NoError(t, err)
	assert.Equal(t, 2, caps.calls, "complete translation is cached")
	assert.Equal(t, second, third)
}

func TestTranscribeWithoutTranslator(t *testing.T) {
	svc := New(engine.Config{}, ptCaptions(), nil, nil)

	got, err := svc.Transcribe(context.Background(), Request{URL: testURL, TranslateTo: "en"})
	require.NoError(t, err)
	assert.Equal(t, "olá mundo", got.FullText)
	assert.Empty(t, got.TranslatedTo)
}

func TestTranscribeInvalidURL(t *testing.T) {
	caps := ptCaptions()
	svc := New(engine.Config{}, caps, nil, nil)

	_, err := svc.Transcribe(context.Background(), Request{URL: "https://vimeo.com/12345"})
	assert.ErrorIs(t, err, engine.ErrInvalidURL)
	assert.Zero(t, caps.calls)
}

func TestTranscribeChainExhausted(t *testing.T) {
	caps := &fakeCaptions{err: engine.Errorf(engine.KindRateLimited, "", "%w: all sources blocked", engine.ErrRateLimited)}
	svc := New(engine.Config{}, caps, nil, nil)

	_, err := svc.Transcribe(context.Background(), Request{URL: testURL})
	assert.ErrorIs(t, err, engine.ErrRateLimited)
}

func TestTranscribeCached(t *testing.T) {
	cache := engine.NewCache("", time.Minute, 10, time.Minute)
	defer cache.Close()

	caps := ptCaptions()
	svc := New(engine.Config{}, caps, nil, cache)

	first, err := svc.Transcribe(context.Background(), Request{URL: "https://youtu.be/dQw4w9WgXcQ", Language: "pt"})
	require.NoError(t, err)
	second, err := svc.Transcribe(context.Background(), Request{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Language: "pt"})
	require.NoError(t, err)

	assert.Equal(t, 1, caps.calls)
	assert.Equal(t, first, second)
}

func TestLanguages(t *testing.T) {
	caps := &fakeCaptions{tracks: []engine.CaptionTrack{
		{LanguageCode: "pt", LanguageName: "Portuguese (auto-generated)", IsGenerated: true},
		{LanguageCode: "en", LanguageName: "English"},
	}}
	svc := New(engine.Config{}, caps, nil, nil)

	got, err := svc.Languages(context.Background(), "https://www.youtube.com/shorts/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", got.VideoID)
	assert.Len(t, got.AvailableLanguages, 2)

	_, err = svc.Languages(context.Background(), "not a url")
	assert.ErrorIs(t, err, engine.ErrInvalidURL)
}

func TestSameLanguage(t *testing.T) {
	assert.True(t, sameLanguage("pt", "pt-BR"))
	assert.True(t, sameLanguage("EN", "en-orig"))
	assert.False(t, sameLanguage("pt", "en"))
}
