package sources

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Source is one way of obtaining a caption track for a video.
type Source interface {
	Name() string
	Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error)
}

// Lister is implemented by sources that can enumerate caption tracks without
// downloading one.
type Lister interface {
	ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error)
}

// Attempt records one failed source call.
type Attempt struct {
	Source string
	Err    error
}

// ChainError aggregates every attempt made before the chain gave up.
type ChainError struct {
	Kind     engine.Kind
	Attempts []Attempt
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msg := a.Err.Error()
		if !strings.HasPrefix(msg, a.Source+":") {
			msg = a.Source + ": " + msg
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "no caption sources configured"
	}
	return "all caption sources failed: " + strings.Join(parts, "; ")
}

// Is matches the engine sentinel of the aggregate kind.
func (e *ChainError) Is(target error) bool {
	return errors.Is(&engine.Error{Kind: e.Kind}, target)
}

// aggregateKind is RateLimited when every attempt was rate limited,
// NoCaptionsAvailable when every attempt found no captions, otherwise
// SourceUnavailable.
func aggregateKind(attempts []Attempt) engine.Kind {
	if len(attempts) == 0 {
		return engine.KindSourceUnavailable
	}
	allRate, allNone := true, true
	for _, a := range attempts {
		switch engine.KindOf(a.Err) {
		case engine.KindRateLimited:
			allNone = false
		case engine.KindNoCaptions:
			allRate = false
		default:
			allRate, allNone = false, false
		}
	}
	switch {
	case allRate:
		return engine.KindRateLimited
	case allNone:
		return engine.KindNoCaptions
	default:
		return engine.KindSourceUnavailable
	}
}

// Chain tries its sources in order and returns the first success.
type Chain struct {
	sources []Source
}

// NewChain builds a chain over the given sources, in order.
func NewChain(srcs ...Source) *Chain {
	return &Chain{sources: srcs}
}

// Names returns the source names in chain order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// Fetch walks the chain sequentially. A failed source is logged and skipped;
// only exhaustion of the whole chain is returned to the caller.
func (c *Chain) Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error) {
	var attempts []Attempt
	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Source: src.Name(), Err: engine.Errorf(engine.KindSourceUnavailable, src.Name(), "%w: %v", engine.ErrSourceUnavailable, err)})
			break
		}
		engine.IncrSourceAttempts()
		fetched, err := src.Fetch(ctx, videoID, pref)
		if err == nil && len(fetched.Segments) == 0 {
			err = engine.Errorf(engine.KindNoCaptions, src.Name(), "%w: empty track", engine.ErrNoCaptions)
		}
		if err == nil {
			if fetched.Source == "" {
				fetched.Source = src.Name()
			}
			slog.Debug("captions: source succeeded",
				slog.String("source", src.Name()), slog.String("video", videoID),
				slog.String("lang", fetched.Language), slog.Int("segments", len(fetched.Segments)))
			return fetched, nil
		}
		kind := engine.KindOf(err)
		engine.IncrSourceFailure(kind)
		slog.Warn("captions: source failed, trying next",
			slog.String("source", src.Name()), slog.String("video", videoID),
			slog.String("kind", string(kind)), slog.Any("error", err))
		attempts = append(attempts, Attempt{Source: src.Name(), Err: err})
	}
	return engine.Fetched{}, &ChainError{Kind: aggregateKind(attempts), Attempts: attempts}
}

// ListTracks asks each Lister in chain order and returns the first answer.
func (c *Chain) ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	var attempts []Attempt
	for _, src := range c.sources {
		l, ok := src.(Lister)
		if !ok {
			continue
		}
		tracks, err := l.ListTracks(ctx, videoID)
		if err == nil {
			return tracks, nil
		}
		kind := engine.KindOf(err)
		engine.IncrSourceFailure(kind)
		slog.Warn("captions: track listing failed, trying next",
			slog.String("source", src.Name()), slog.String("video", videoID), slog.Any("error", err))
		attempts = append(attempts, Attempt{Source: src.Name(), Err: err})
	}
	return nil, &ChainError{Kind: aggregateKind(attempts), Attempts: attempts}
}
