// Package config loads engine configuration from the environment, an
// optional .env file and an optional YAML overlay.
package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Overlay is the YAML file named by CONFIG_FILE. Every field is optional;
// set fields override the environment.
type Overlay struct {
	Sources           []string            `yaml:"sources"`
	FallbackLanguages []string            `yaml:"fallback_languages"`
	LocaleFallbacks   map[string][]string `yaml:"locale_fallbacks"`
	Translator        string              `yaml:"translator"`
	TranslateLimit    int                 `yaml:"translate_limit"`
	TranslateBatch    int                 `yaml:"translate_batch"`
	TranslateRPS      float64             `yaml:"translate_rps"`
	AutoTranslate     *bool               `yaml:"auto_translate"`
	FetchTimeout      string              `yaml:"fetch_timeout"`
}

// LoadOverlay reads and parses a YAML overlay file.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &o, nil
}

// Apply copies the set fields of o onto c.
func (o *Overlay) Apply(c *engine.Config) error {
	if len(o.Sources) > 0 {
		c.Sources = o.Sources
	}
	if len(o.FallbackLanguages) > 0 {
		c.FallbackLanguages = o.FallbackLanguages
	}
	if len(o.LocaleFallbacks) > 0 {
		c.LocaleFallbacks = o.LocaleFallbacks
	}
	if o.Translator != "" {
		c.Translator = o.Translator
	}
	if o.TranslateLimit > 0 {
		c.TranslateLimit = o.TranslateLimit
	}
	if o.TranslateBatch > 0 {
		c.TranslateBatch = o.TranslateBatch
	}
	if o.TranslateRPS > 0 {
		c.TranslateRPS = o.TranslateRPS
	}
	if o.AutoTranslate != nil {
		c.AutoTranslate = *o.AutoTranslate
	}
	if o.FetchTimeout != "" {
		d, err := time.ParseDuration(o.FetchTimeout)
		if err != nil {
			return fmt.Errorf("fetch_timeout: %w", err)
		}
		c.FetchTimeout = d
	}
	return nil
}

// Load builds the engine config. A .env file in the working directory is
// loaded first when present; it never overrides variables already set.
func Load() (engine.Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Info("config: loaded .env")
	}

	fetchTimeout := env.Duration("FETCH_TIMEOUT", engine.DefaultFetchTimeout)
	c := engine.Config{
		FetchTimeout:          fetchTimeout,
		TranslateTimeout:      env.Duration("TRANSLATE_TIMEOUT", engine.DefaultFetchTimeout),
		MaxCaptionBytes:       int64(env.Int("MAX_CAPTION_BYTES", engine.DefaultMaxCaptionBytes)),
		Sources:               nonEmpty(env.List("TRANSCRIPT_SOURCES", "")),
		FallbackLanguages:     nonEmpty(env.List("FALLBACK_LANGUAGES", "")),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeServiceAccount: env.Str("YOUTUBE_SERVICE_ACCOUNT_FILE", ""),
		YtDlpPath:             env.Str("YTDLP_PATH", "yt-dlp"),
		YtDlpTimeout:          env.Duration("YTDLP_TIMEOUT", engine.DefaultYtDlpTimeout),
		CookiesFile:           env.Str("YOUTUBE_COOKIES_FILE", ""),
		Translator:            env.Str("TRANSLATOR", "google"),
		TranslateLimit:        env.Int("TRANSLATE_LIMIT", engine.DefaultTranslateLimit),
		TranslateBatch:        env.Int("TRANSLATE_BATCH", engine.DefaultTranslateBatch),
		TranslateRPS:          env.Float("TRANSLATE_RPS", 5),
		AutoTranslate:         boolEnv("AUTO_TRANSLATE", true),
		GoogleTranslateURL:    env.Str("GOOGLE_TRANSLATE_URL", ""),
		CacheTTL:              env.Duration("CACHE_TTL", 6*time.Hour),
		CacheMaxEntries:       env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:  env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		RedisURL:              env.Str("REDIS_URL", ""),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if path := env.Str("CONFIG_FILE", ""); path != "" {
		o, err := LoadOverlay(path)
		if err != nil {
			return c, err
		}
		if err := o.Apply(&c); err != nil {
			return c, fmt.Errorf("config file %s: %w", path, err)
		}
		slog.Info("config: overlay applied", slog.String("path", path))
	}
	return c.WithDefaults(), nil
}

// nonEmpty drops blank items so an unset list falls back to the defaults.
func nonEmpty(items []string) []string {
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// boolEnv reads a strconv.ParseBool value; unset or unparsable keeps def.
func boolEnv(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
