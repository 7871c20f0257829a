// Package translate turns caption text into another language through a
// remote translator with a per-call character ceiling.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Translator translates one piece of text. source may be empty for auto-detection.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Func adapts a plain function to Translator.
type Func func(ctx context.Context, text, source, target string) (string, error)

func (f Func) Translate(ctx context.Context, text, source, target string) (string, error) {
	return f(ctx, text, source, target)
}

// New returns the translator named by cfg.Translator.
func New(cfg engine.Config) (Translator, error) {
	cfg = cfg.WithDefaults()
	switch strings.ToLower(cfg.Translator) {
	case "google", "":
		return NewGoogle(cfg), nil
	case "llm":
		if cfg.LLMComplete == nil {
			return nil, fmt.Errorf("translator %q needs LLM_API_KEY", cfg.Translator)
		}
		return NewLLM(cfg.LLMComplete), nil
	default:
		return nil, fmt.Errorf("unknown translator %q", cfg.Translator)
	}
}
