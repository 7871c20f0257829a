package translate

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Delimiter joins segment texts inside one batch call.
const Delimiter = " ||| "

const splitMarker = "|||"

// Stats counts translation units (chunks or batches) and how many of them
// fell back to their original text.
type Stats struct {
	Units      int
	Failed     int
	Misaligned int
}

// Translated reports whether at least one unit came back translated.
func (s Stats) Translated() bool { return s.Units > s.Failed }

// Pipeline translates long text and segment lists under a per-call character
// ceiling. Failures never escape: a failed unit keeps its original text.
// A Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	tr      Translator
	limit   int
	batch   int
	timeout time.Duration
	limiter *rate.Limiter
}

// NewPipeline builds a pipeline over tr using the limits from cfg.
func NewPipeline(tr Translator, cfg engine.Config) *Pipeline {
	cfg = cfg.WithDefaults()
	limit := rate.Inf
	if cfg.TranslateRPS > 0 {
		limit = rate.Limit(cfg.TranslateRPS)
	}
	return &Pipeline{
		tr:      tr,
		limit:   cfg.TranslateLimit,
		batch:   cfg.TranslateBatch,
		timeout: cfg.TranslateTimeout,
		limiter: rate.NewLimiter(limit, int(math.Max(1, math.Ceil(cfg.TranslateRPS)))),
	}
}

// call makes one paced, time-bounded translation call.
func (p *Pipeline) call(ctx context.Context, text, source, target string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", engine.Errorf(engine.KindTranslationFailed, "", "%w: %v", engine.ErrTranslationFailed, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	engine.IncrTranslateCalls()
	out, err := p.tr.Translate(ctx, text, source, target)
	if err != nil {
		engine.IncrTranslateErrors()
		return "", err
	}
	return out, nil
}

// TranslateText translates text in one call when it fits the ceiling, and
// chunk by chunk otherwise. Chunk results are joined with a single space.
func (p *Pipeline) TranslateText(ctx context.Context, text, source, target string) (string, Stats) {
	var st Stats
	if strings.TrimSpace(text) == "" {
		return text, st
	}
	if utf8.RuneCountInString(text) <= p.limit {
		st.Units = 1
		out, err := p.call(ctx, text, source, target)
		if err != nil {
			st.Failed = 1
			slog.Warn("translate: call failed, keeping original text", slog.Any("error", err))
			return text, st
		}
		return out, st
	}

	chunks := ChunkText(text, p.limit)
	parts := make([]string, len(chunks))
	st.Units = len(chunks)
	for i, chunk := range chunks {
		out, err := p.call(ctx, chunk, source, target)
		if err != nil {
			st.Failed++
			slog.Warn("translate: chunk failed, keeping original text",
				slog.Int("chunk", i+1), slog.Int("chunks", len(chunks)), slog.Any("error", err))
			parts[i] = chunk
			continue
		}
		parts[i] = out
	}
	return strings.Join(parts, " "), st
}

// TranslateSegments translates segment texts in batches joined by Delimiter
// and redistributes the reply positionally. A batch ends at the batch size
// or at the character ceiling, delimiters included, whichever comes first.
// A segment longer than the ceiling on its own goes through TranslateText.
// When the translator drops separators the reply has fewer parts than the
// batch; the remaining segments keep their original text. Timings are never
// touched and segs is not modified.
func (p *Pipeline) TranslateSegments(ctx context.Context, segs []engine.Segment, source, target string) ([]engine.Segment, Stats) {
	out := make([]engine.Segment, len(segs))
	copy(out, segs)

	var st Stats
	for start := 0; start < len(out); {
		end := p.batchEnd(out, start)
		batch := out[start:end]

		if len(batch) == 1 && utf8.RuneCountInString(batch[0].Text) > p.limit {
			text, cst := p.TranslateText(ctx, batch[0].Text, source, target)
			batch[0].Text = text
			st.Units += cst.Units
			st.Failed += cst.Failed
			start = end
			continue
		}

		texts := make([]string, len(batch))
		for i, s := range batch {
			texts[i] = s.Text
		}
		st.Units++

		reply, err := p.call(ctx, strings.Join(texts, Delimiter), source, target)
		if err != nil {
			st.Failed++
			slog.Warn("translate: batch failed, keeping original text",
				slog.Int("from", start), slog.Int("to", end), slog.Any("error", err))
			start = end
			continue
		}

		parts := SplitBatch(reply)
		if len(parts) < len(batch) {
			st.Misaligned++
			engine.IncrBatchMisaligned()
			slog.Warn("translate: delimiter lost, tail of batch left untranslated",
				slog.Int("from", start), slog.Int("expected", len(batch)), slog.Int("got", len(parts)))
		}
		for i := 0; i < len(batch) && i < len(parts); i++ {
			if parts[i] != "" {
				batch[i].Text = parts[i]
			}
		}
		start = end
	}
	return out, st
}

// batchEnd returns the exclusive end of the batch starting at start. The
// batch always holds at least one segment.
func (p *Pipeline) batchEnd(segs []engine.Segment, start int) int {
	delim := utf8.RuneCountInString(Delimiter)
	size := utf8.RuneCountInString(segs[start].Text)
	end := start + 1
	for end < len(segs) && end-start < p.batch {
		next := size + delim + utf8.RuneCountInString(segs[end].Text)
		if next > p.limit {
			break
		}
		size = next
		end++
	}
	return end
}

// SplitBatch splits a batch reply on the delimiter and trims each part.
func SplitBatch(reply string) []string {
	parts := strings.Split(reply, splitMarker)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
