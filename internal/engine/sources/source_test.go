package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

type fakeSource struct {
	name   string
	result engine.Fetched
	err    error
	tracks []engine.CaptionTrack
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context, string, engine.LanguagePreference) (engine.Fetched, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeSource) ListTracks(context.Context, string) ([]engine.CaptionTrack, error) {
	return f.tracks, f.err
}

func failing(name string, kind engine.Kind) *fakeSource {
	sentinel := map[engine.Kind]error{
		engine.KindRateLimited:       engine.ErrRateLimited,
		engine.KindNoCaptions:        engine.ErrNoCaptions,
		engine.KindSourceUnavailable: engine.ErrSourceUnavailable,
		engine.KindFormatUnsupported: engine.ErrFormatUnsupported,
	}[kind]
	return &fakeSource{name: name, err: engine.Errorf(kind, name, "%w", sentinel)}
}

func TestChainAllRateLimited(t *testing.T) {
	chain := NewChain(
		failing("innertube", engine.KindRateLimited),
		failing("json3", engine.KindRateLimited),
		failing("ytdlp", engine.KindRateLimited),
	)
	_, err := chain.Fetch(context.Background(), "dQw4w9WgXcQ", engine.LanguagePreference{})
	require.Error(t, err)

	var ce *ChainError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, engine.KindRateLimited, ce.Kind)
	assert.Len(t, ce.Attempts, 3)
	assert.ErrorIs(t, err, engine.ErrRateLimited)
	assert.Equal(t, engine.KindRateLimited, engine.KindOf(err))
	for _, name := range []string{"innertube", "json3", "ytdlp"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestChainFirstSuccessWins(t *testing.T) {
	first := failing("innertube", engine.KindSourceUnavailable)
	second := &fakeSource{name: "json3", result: engine.Fetched{
		Segments: []engine.Segment{{Text: "hi", Start: 0, Duration: 1}},
		Language: "en",
	}}
	third := &fakeSource{name: "ytdlp"}

	got, err := NewChain(first, second, third).Fetch(context.Background(), "dQw4w9WgXcQ", engine.LanguagePreference{})
	require.NoError(t, err)
	assert.Equal(t, "json3", got.Source)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, third.calls, "chain must stop at the first success")
}

func TestChainEmptyTrackFallsThrough(t *testing.T) {
	empty := &fakeSource{name: "innertube", result: engine.Fetched{Language: "en"}}
	good := &fakeSource{name: "json3", result: engine.Fetched{Segments: []engine.Segment{{Text: "x"}}}}

	got, err := NewChain(empty, good).Fetch(context.Background(), "dQw4w9WgXcQ", engine.LanguagePreference{})
	require.NoError(t, err)
	assert.Equal(t, "json3", got.Source)
}

func TestChainAggregateKind(t *testing.T) {
	tests := []struct {
		name  string
		kinds []engine.Kind
		want  engine.Kind
	}{
		{"all no captions", []engine.Kind{engine.KindNoCaptions, engine.KindNoCaptions}, engine.KindNoCaptions},
		{"mixed", []engine.Kind{engine.KindRateLimited, engine.KindNoCaptions}, engine.KindSourceUnavailable},
		{"format", []engine.Kind{engine.KindFormatUnsupported}, engine.KindSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var srcs []Source
			for i, k := range tt.kinds {
				srcs = append(srcs, failing(string(rune('a'+i)), k))
			}
			_, err := NewChain(srcs...).Fetch(context.Background(), "dQw4w9WgXcQ", engine.LanguagePreference{})
			var ce *ChainError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.want, ce.Kind)
		})
	}
}

func TestChainEmpty(t *testing.T) {
	_, err := NewChain().Fetch(context.Background(), "dQw4w9WgXcQ", engine.LanguagePreference{})
	assert.ErrorIs(t, err, engine.ErrSourceUnavailable)
	assert.Equal(t, "no caption sources configured", err.Error())
}

func TestChainListTracks(t *testing.T) {
	tracks := []engine.CaptionTrack{{LanguageCode: "pt", IsGenerated: true}}
	chain := NewChain(
		failing("innertube", engine.KindRateLimited),
		&fakeSource{name: "json3", tracks: tracks},
	)
	got, err := chain.ListTracks(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, tracks, got)
	assert.Equal(t, []string{"innertube", "json3"}, chain.Names())
}
