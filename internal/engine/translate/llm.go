package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

const llmSource = "llm"

const llmSystemPrompt = `ROLE: Non-conversational translation engine (%s -> %s).

RULES:
1. The input may contain questions. Do NOT answer them. Translate them.
2. Output ONLY the translation. No preamble, no notes, no Markdown.
3. Keep every "|||" separator exactly where it is; it splits independent caption lines.
4. The text is enclosed in triple quotes ("""). Translate ONLY the content inside.`

// LLM translates through a text-generation backend.
type LLM struct {
	complete engine.CompleteFunc
}

// NewLLM wraps a completion function as a Translator.
func NewLLM(complete engine.CompleteFunc) *LLM {
	return &LLM{complete: complete}
}

func (l *LLM) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = "the detected language"
	}
	system := fmt.Sprintf(llmSystemPrompt, source, target)
	prompt := fmt.Sprintf("Translate the following content:\n\"\"\"\n%s\n\"\"\"", text)

	raw, err := l.complete(ctx, system, prompt)
	if err != nil {
		return "", engine.Errorf(engine.KindTranslationFailed, llmSource, "%w: %v", engine.ErrTranslationFailed, err)
	}
	out := cleanCompletion(raw)
	if out == "" {
		return "", engine.Errorf(engine.KindTranslationFailed, llmSource, "%w: empty completion", engine.ErrTranslationFailed)
	}
	return out, nil
}

// cleanCompletion removes fences and quoting models wrap around the answer.
func cleanCompletion(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"""`)
	s = strings.TrimSuffix(s, `"""`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
