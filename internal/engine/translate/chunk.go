package translate

import (
	"strings"
	"unicode/utf8"
)

// ChunkText splits text into chunks of at most limit runes, breaking only
// between words. A single word longer than limit becomes its own chunk.
// Runs of whitespace collapse to one space.
func ChunkText(text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if limit <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if curLen > 0 && curLen+1+wl > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
