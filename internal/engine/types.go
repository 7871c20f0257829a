package engine

// --- Core transcript types ---

// Segment is one caption cue. Start and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TrackURL is one delivery location of a caption track.
type TrackURL struct {
	Format string `json:"format"` // json3, srv3, vtt, xml
	URL    string `json:"url"`
}

// CaptionTrack describes one language's caption track as listed upstream.
type CaptionTrack struct {
	LanguageCode string     `json:"code"`
	LanguageName string     `json:"name,omitempty"`
	IsGenerated  bool       `json:"is_generated"`
	URLs         []TrackURL `json:"-"`
	ID           string     `json:"-"` // Data API caption id
}

// URLFor returns the delivery URL for format, or "".
func (t CaptionTrack) URLFor(format string) string {
	for _, u := range t.URLs {
		if u.Format == format {
			return u.URL
		}
	}
	return ""
}

// Fetched is what a caption source returns on success.
type Fetched struct {
	Segments []Segment
	Language string
	Source   string
}

// TranscriptResult is the assembled transcript. Treat as immutable.
//
// FullText is the space-join of Segments, except after a translation in
// which some batch failed or came back misaligned: the full text is then
// translated on its own and may read differently from the segments.
type TranscriptResult struct {
	VideoID        string    `json:"video_id"`
	Segments       []Segment `json:"transcript"`
	FullText       string    `json:"full_text"`
	SourceLanguage string    `json:"source_language,omitempty"`
	TranslatedTo   string    `json:"translated_to,omitempty"`
	Source         string    `json:"source,omitempty"`
}

// TimestampedLine pairs a segment with its HH:MM:SS start.
type TimestampedLine struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// VideoLanguages lists the caption tracks of a video.
type VideoLanguages struct {
	VideoID            string         `json:"video_id"`
	AvailableLanguages []CaptionTrack `json:"available_languages"`
}

// --- Tool input / output types ---

type TranscriptInput struct {
	URL         string `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, embed, shorts) or 11-char video ID"`
	Language    string `json:"language,omitempty" jsonschema:"Preferred caption language code, e.g. pt, en, pt-BR"`
	TranslateTo string `json:"translate_to,omitempty" jsonschema:"Translate the transcript into this language code"`
	Timestamps  bool   `json:"timestamps,omitempty" jsonschema:"Include [HH:MM:SS] timestamped text"`
}

type TranscriptOutput struct {
	TranscriptResult
	Timestamped string `json:"timestamped,omitempty"`
}

type LanguagesInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL or 11-char video ID"`
}
