package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Assemble builds the transcript result from ordered segments.
// Segments are copied; the caller's slice is never mutated.
func Assemble(videoID string, segs []Segment) TranscriptResult {
	out := make([]Segment, len(segs))
	copy(out, segs)
	return TranscriptResult{
		VideoID:  videoID,
		Segments: out,
		FullText: FullText(out),
	}
}

// FullText joins segment texts with single spaces.
func FullText(segs []Segment) string {
	texts := make([]string, len(segs))
	for i, s := range segs {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}

// FormatTimestamp renders an elapsed start offset as HH:MM:SS, flooring to
// whole seconds. Offsets of a day or more keep counting hours.
func FormatTimestamp(start float64) string {
	if start < 0 || math.IsNaN(start) {
		start = 0
	}
	secs := int64(math.Floor(start))
	t := time.Unix(secs, 0).UTC()
	if secs >= 24*3600 {
		return fmt.Sprintf("%02d", secs/3600) + t.Format(":04:05")
	}
	return t.Format("15:04:05")
}

// TimestampedLines pairs each segment with its formatted start.
func TimestampedLines(segs []Segment) []TimestampedLine {
	out := make([]TimestampedLine, len(segs))
	for i, s := range segs {
		out[i] = TimestampedLine{Timestamp: FormatTimestamp(s.Start), Text: s.Text}
	}
	return out
}

// Timestamped renders "[HH:MM:SS] text" lines.
func Timestamped(segs []Segment) string {
	var sb strings.Builder
	for i, l := range TimestampedLines(segs) {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("[" + l.Timestamp + "] " + l.Text)
	}
	return sb.String()
}
