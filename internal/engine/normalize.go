package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Caption payloads come in several shapes depending on the source. Every
// normalizer keeps input order, drops cues with no text after trimming and
// never deduplicates. Negative start times are clamped to zero.

// --- json3 (events / segs, milliseconds) ---

type json3Doc struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	TStartMs    int64      `json:"tStartMs"`
	DDurationMs int64      `json:"dDurationMs"`
	Segs        []json3Seg `json:"segs"`
}

type json3Seg struct {
	Utf8 string `json:"utf8"`
}

// NormalizeJSON3 converts a json3 caption body into segments.
func NormalizeJSON3(data []byte) ([]Segment, error) {
	var doc json3Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Errorf(KindFormatUnsupported, "", "%w: json3: %v", ErrFormatUnsupported, err)
	}
	if doc.Events == nil {
		return nil, Errorf(KindFormatUnsupported, "", "%w: json3: no events array", ErrFormatUnsupported)
	}
	return json3Segments(doc.Events), nil
}

func json3Segments(events []json3Event) []Segment {
	segs := make([]Segment, 0, len(events))
	for _, ev := range events {
		if len(ev.Segs) == 0 {
			continue
		}
		var sb strings.Builder
		for _, s := range ev.Segs {
			sb.WriteString(s.Utf8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		segs = append(segs, Segment{
			Text:     text,
			Start:    max(float64(ev.TStartMs)/1000, 0),
			Duration: max(float64(ev.DDurationMs)/1000, 0),
		})
	}
	return segs
}

// --- flat entries ({text, start, duration} in seconds) ---

// Entry is one item of a structured-API transcript list.
type Entry struct {
	Text     string   `json:"text"`
	Start    float64  `json:"start"`
	Duration *float64 `json:"duration,omitempty"`
}

// NormalizeEntries converts structured-API entries into segments.
func NormalizeEntries(entries []Entry) []Segment {
	segs := make([]Segment, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		var dur float64
		if e.Duration != nil {
			dur = max(*e.Duration, 0)
		}
		segs = append(segs, Segment{Text: text, Start: max(e.Start, 0), Duration: dur})
	}
	return segs
}

// --- timedtext XML (format 1: <text start dur>, srv3: <p t d>) ---

type timedTextDoc struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",innerxml"`
	} `xml:"text"`
	Body struct {
		Paras []struct {
			T    int64  `xml:"t,attr"`
			D    int64  `xml:"d,attr"`
			Text string `xml:",innerxml"`
		} `xml:"p"`
	} `xml:"body"`
}

// NormalizeTimedText converts a timedtext XML body into segments.
func NormalizeTimedText(data []byte) ([]Segment, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, Errorf(KindFormatUnsupported, "", "%w: timedtext: %v", ErrFormatUnsupported, err)
	}
	if len(doc.Lines) > 0 {
		entries := make([]Entry, 0, len(doc.Lines))
		for _, l := range doc.Lines {
			start, _ := strconv.ParseFloat(l.Start, 64)
			e := Entry{Text: cueText(l.Text), Start: start}
			if d, err := strconv.ParseFloat(l.Dur, 64); err == nil {
				e.Duration = &d
			}
			entries = append(entries, e)
		}
		return NormalizeEntries(entries), nil
	}
	events := make([]json3Event, 0, len(doc.Body.Paras))
	for _, p := range doc.Body.Paras {
		events = append(events, json3Event{
			TStartMs:    p.T,
			DDurationMs: p.D,
			Segs:        []json3Seg{{Utf8: cueText(p.Text)}},
		})
	}
	return json3Segments(events), nil
}

// --- WebVTT ---

var vttTimingRe = regexp.MustCompile(`^((?:\d+:)?\d{2}:\d{2}[.,]\d{3})\s*-->\s*((?:\d+:)?\d{2}:\d{2}[.,]\d{3})`)

// NormalizeVTT converts a WebVTT (or SRT) body into segments.
func NormalizeVTT(data []byte) ([]Segment, error) {
	if !bytes.Contains(data, []byte("-->")) {
		return nil, Errorf(KindFormatUnsupported, "", "%w: vtt: no cues", ErrFormatUnsupported)
	}
	var (
		segs  []Segment
		start float64
		dur   float64
		lines []string
		inCue bool
	)
	flush := func() {
		if inCue {
			if text := strings.TrimSpace(cueText(strings.Join(lines, " "))); text != "" {
				segs = append(segs, Segment{Text: text, Start: start, Duration: dur})
			}
		}
		inCue = false
		lines = lines[:0]
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if m := vttTimingRe.FindStringSubmatch(line); m != nil {
			flush()
			s, errS := parseCueTime(m[1])
			e, errE := parseCueTime(m[2])
			if errS != nil || errE != nil {
				continue
			}
			start, dur, inCue = s, max(e-s, 0), true
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if inCue {
			lines = append(lines, line)
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, Errorf(KindFormatUnsupported, "", "%w: vtt: %v", ErrFormatUnsupported, err)
	}
	return segs, nil
}

// parseCueTime parses "HH:MM:SS.mmm", "MM:SS.mmm" or the SRT comma variant into seconds.
func parseCueTime(s string) (float64, error) {
	s = strings.Replace(s, ",", ".", 1)
	parts := strings.Split(s, ":")
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("cue time %q: %w", s, err)
		}
		total = total*60 + v
	}
	return total, nil
}

// cueText strips inline markup (<font>, <c>, <i>) and unescapes entities,
// including the double-escaped ones timedtext bodies carry.
func cueText(s string) string {
	s = html.UnescapeString(s)
	s = CleanHTML(s)
	return html.UnescapeString(s)
}
