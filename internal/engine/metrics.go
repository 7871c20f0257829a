package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	LanguageRequests   atomic.Int64
	SourceAttempts     atomic.Int64
	SourceFailures     atomic.Int64
	RateLimited        atomic.Int64
	TranslateCalls     atomic.Int64
	TranslateErrors    atomic.Int64
	BatchMisaligned    atomic.Int64
	CacheHits          atomic.Int64
	CacheMisses        atomic.Int64
}

var metricKeys = []string{
	"transcript_requests", "transcript_errors", "language_requests",
	"source_attempts", "source_failures", "rate_limited",
	"translate_calls", "translate_errors", "batch_misaligned",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"language_requests":   metrics.LanguageRequests.Load(),
		"source_attempts":     metrics.SourceAttempts.Load(),
		"source_failures":     metrics.SourceFailures.Load(),
		"rate_limited":        metrics.RateLimited.Load(),
		"translate_calls":     metrics.TranslateCalls.Load(),
		"translate_errors":    metrics.TranslateErrors.Load(),
		"batch_misaligned":    metrics.BatchMisaligned.Load(),
		"cache_hits":          metrics.CacheHits.Load(),
		"cache_misses":        metrics.CacheMisses.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()   { metrics.TranscriptErrors.Add(1) }
func IncrLanguageRequests()   { metrics.LanguageRequests.Add(1) }
func IncrSourceAttempts()     { metrics.SourceAttempts.Add(1) }
func IncrTranslateCalls()     { metrics.TranslateCalls.Add(1) }
func IncrTranslateErrors()    { metrics.TranslateErrors.Add(1) }
func IncrBatchMisaligned()    { metrics.BatchMisaligned.Add(1) }

// IncrSourceFailure counts a failed source attempt, and rate limiting separately.
func IncrSourceFailure(kind Kind) {
	metrics.SourceFailures.Add(1)
	if kind == KindRateLimited {
		metrics.RateLimited.Add(1)
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
