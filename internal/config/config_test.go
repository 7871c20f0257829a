package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

func writeOverlay(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestOverlayApply(t *testing.T) {
	path := writeOverlay(t, `
sources: [json3, innertube]
fallback_languages: [en, pt]
locale_fallbacks:
  pt-BR: [pt, es]
translator: llm
translate_limit: 3000
auto_translate: false
fetch_timeout: 5s
`)
	o, err := LoadOverlay(path)
	require.NoError(t, err)

	c := engine.Config{AutoTranslate: true, Translator: "google", TranslateBatch: 7}
	require.NoError(t, o.Apply(&c))

	assert.Equal(t, []string{"json3", "innertube"}, c.Sources)
	assert.Equal(t, []string{"en", "pt"}, c.FallbackLanguages)
	assert.Equal(t, []string{"pt", "es"}, c.Preference("pt-BR").Fallback)
	assert.Equal(t, "llm", c.Translator)
	assert.Equal(t, 3000, c.TranslateLimit)
	assert.Equal(t, 7, c.TranslateBatch, "unset fields keep their value")
	assert.False(t, c.AutoTranslate)
	assert.Equal(t, 5*time.Second, c.FetchTimeout)
}

func TestOverlayErrors(t *testing.T) {
	_, err := LoadOverlay(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadOverlay(writeOverlay(t, "sources: [unterminated"))
	assert.Error(t, err)

	o := &Overlay{FetchTimeout: "soon"}
	assert.Error(t, o.Apply(&engine.Config{}))
}

func TestLoad(t *testing.T) {
	t.Setenv("TRANSCRIPT_SOURCES", "innertube, ytdlp")
	t.Setenv("FALLBACK_LANGUAGES", "")
	t.Setenv("AUTO_TRANSLATE", "false")
	t.Setenv("TRANSLATE_RPS", "2.5")
	t.Setenv("CONFIG_FILE", writeOverlay(t, "translate_batch: 11\n"))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"innertube", "ytdlp"}, c.Sources)
	assert.Equal(t, engine.DefaultFallbackLanguages, c.FallbackLanguages)
	assert.False(t, c.AutoTranslate)
	assert.Equal(t, 2.5, c.TranslateRPS)
	assert.Equal(t, 11, c.TranslateBatch)
	assert.NotNil(t, c.HTTPClient)
}

func TestLoadBadOverlay(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestNonEmpty(t *testing.T) {
	assert.Nil(t, nonEmpty([]string{"", "  "}))
	assert.Equal(t, []string{"a", "b"}, nonEmpty([]string{" a", "", "b "}))
}

func TestBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"false", true, false},
		{"0", true, false},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", true, true},
		{"yes", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("GO_TRANSCRIPT_TEST_BOOL", tt.value)
			}
			assert.Equal(t, tt.want, boolEnv("GO_TRANSCRIPT_TEST_BOOL", tt.def))
		})
	}
}
