// Package toolutil provides shared helpers for the transcript tools and handlers.
package toolutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// NormLang normalises a language code field: trimmed, "" stays "".
func NormLang(lang string) string {
	return strings.TrimSpace(lang)
}

// CacheLoadJSON tries to load a cached value of type T.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, c *engine.Cache, key string) (T, bool) {
	var zero T
	cached, ok := c.Get(ctx, key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(cached, &out); err != nil {
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the cache.
func CacheStoreJSON[T any](ctx context.Context, c *engine.Cache, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, data)
}

// ErrorMessage renders a classified error as "Kind: message" for tool callers.
func ErrorMessage(err error) string {
	if kind := engine.KindOf(err); kind != "" {
		return fmt.Sprintf("%s: %v", kind, err)
	}
	return err.Error()
}
