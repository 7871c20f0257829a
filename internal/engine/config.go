package engine

import (
	"context"
	"net/http"
	"time"
)

// CompleteFunc sends a prompt to a text-generation backend and returns its reply.
type CompleteFunc func(ctx context.Context, system, prompt string) (string, error)

// Config holds all engine configuration, injected from main.
// It is read-only once the service is built.
type Config struct {
	FetchTimeout     time.Duration // per network call (caption sources)
	TranslateTimeout time.Duration // per translation call
	MaxCaptionBytes  int64         // body limit for caption payloads

	Sources           []string // chain order, e.g. innertube,json3,panel,ytdlp,library
	FallbackLanguages []string // fixed fallback priority after the requested language
	LocaleFallbacks   map[string][]string

	YouTubeAPIKey         string
	YouTubeServiceAccount string // path to a service-account JSON for captions.download
	YtDlpPath             string
	YtDlpTimeout          time.Duration // whole subprocess run
	CookiesFile           string        // transient Netscape cookie file, "" = anonymous

	Translator         string // "google" or "llm"
	TranslateLimit     int    // characters per translation call
	TranslateBatch     int    // segments per batch
	TranslateRPS       float64
	AutoTranslate      bool // translate when the requested language had no track
	GoogleTranslateURL string

	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	RedisURL             string

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = plain HTTP client for page scraping
	LLMComplete   CompleteFunc   // nil = LLM translator unavailable
}

// Defaults used when a Config field is left zero.
const (
	DefaultFetchTimeout    = 10 * time.Second
	DefaultYtDlpTimeout    = 30 * time.Second
	DefaultTranslateLimit  = 4500
	DefaultTranslateBatch  = 35
	DefaultMaxCaptionBytes = 10_000_000
)

// DefaultFallbackLanguages is the fixed priority applied after the requested language.
var DefaultFallbackLanguages = []string{"pt", "en", "es", "fr"}

// DefaultSources is the caption source chain order.
var DefaultSources = []string{"dataapi", "innertube", "json3", "panel", "ytdlp", "library"}

// WithDefaults returns a copy of c with zero fields filled in.
func (c Config) WithDefaults() Config {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.TranslateTimeout <= 0 {
		c.TranslateTimeout = DefaultFetchTimeout
	}
	if c.YtDlpTimeout <= 0 {
		c.YtDlpTimeout = DefaultYtDlpTimeout
	}
	if c.YtDlpPath == "" {
		c.YtDlpPath = "yt-dlp"
	}
	if c.MaxCaptionBytes <= 0 {
		c.MaxCaptionBytes = DefaultMaxCaptionBytes
	}
	if len(c.Sources) == 0 {
		c.Sources = DefaultSources
	}
	if len(c.FallbackLanguages) == 0 {
		c.FallbackLanguages = DefaultFallbackLanguages
	}
	if c.Translator == "" {
		c.Translator = "google"
	}
	if c.TranslateLimit <= 0 {
		c.TranslateLimit = DefaultTranslateLimit
	}
	if c.TranslateBatch <= 0 {
		c.TranslateBatch = DefaultTranslateBatch
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	return c
}

// Preference builds the LanguagePreference for a requested code, honouring
// locale-specific fallback lists when one is configured for that code.
func (c Config) Preference(requested string) LanguagePreference {
	fallback := c.FallbackLanguages
	if lf, ok := c.LocaleFallbacks[requested]; ok && len(lf) > 0 {
		fallback = lf
	}
	return LanguagePreference{Requested: requested, Fallback: fallback}
}
