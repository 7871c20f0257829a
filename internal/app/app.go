// Package app assembles the transcript service from configuration. Both the
// MCP server and the HTTP API start from here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/engine/translate"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// App owns the service and everything that must be released on shutdown.
type App struct {
	Service *transcript.Service
	Cache   *engine.Cache

	cleanups []func()
}

// New wires the service. Optional pieces (stealth client, LLM, cookies,
// Redis) are skipped with a warning when they cannot be initialised.
func New(ctx context.Context, c engine.Config) (*App, error) {
	a := &App{}

	c.BrowserClient = newBrowserClient(c.FetchTimeout)
	c.LLMComplete = newLLMComplete()

	if blob := env.Str("YOUTUBE_COOKIES", ""); blob != "" && c.CookiesFile == "" {
		path, cleanup, err := sources.WriteCookieFile(blob)
		if err != nil {
			slog.Warn("cookies: cannot write transient file, running anonymous", slog.Any("error", err))
		} else {
			c.CookiesFile = path
			a.cleanups = append(a.cleanups, cleanup)
			slog.Info("cookies: transient cookie file written")
		}
	}

	chain, err := sources.Build(ctx, c)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("caption sources: %w", err)
	}

	var pipeline *translate.Pipeline
	tr, err := translate.New(c)
	if err != nil {
		slog.Warn("translation disabled", slog.Any("error", err))
	} else {
		pipeline = translate.NewPipeline(tr, c)
		slog.Info("translator ready", slog.String("backend", c.Translator), slog.Float64("rps", c.TranslateRPS))
	}

	a.Cache = engine.NewCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	a.cleanups = append(a.cleanups, func() { _ = a.Cache.Close() })

	a.Service = transcript.New(c, chain, pipeline, a.Cache)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

func newBrowserClient(timeout time.Duration) *engine.BrowserClient {
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(int(timeout.Seconds())))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
		return nil
	}
	slog.Info("stealth browser client initialized")
	return bc
}

// newLLMComplete returns nil when no LLM key is configured.
func newLLMComplete() engine.CompleteFunc {
	key := env.Str("LLM_API_KEY", "")
	if key == "" {
		return nil
	}
	client := llm.NewClient(
		env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		key,
		env.Str("LLM_MODEL", "gemini-2.5-flash"),
		llm.WithFallbackKeys(env.List("LLM_API_KEY_FALLBACKS", "")),
		llm.WithMaxTokens(env.Int("LLM_MAX_TOKENS", 8192)),
		llm.WithTemperature(env.Float("LLM_TEMPERATURE", 0.1)),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return func(ctx context.Context, system, prompt string) (string, error) {
		return client.Complete(ctx, system, prompt)
	}
}
