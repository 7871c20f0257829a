package engine

import (
	"regexp"
	"strings"
)

// videoIDPatterns are tried in order; the first pattern that matches wins,
// even when a later one would also match.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)youtube(?:-nocookie)?\.com/watch\?v=([a-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtube(?:-nocookie)?\.com/watch\?.*?&v=([a-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)youtu\.be/([a-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)/embed/([a-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)/shorts/([a-z0-9_-]{11})`),
	regexp.MustCompile(`(?i)/v/([a-z0-9_-]{11})`),
}

var bareVideoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-char video ID from a YouTube URL.
// Bare IDs are rejected; callers that accept them go through LooksLikeVideoID.
func ExtractVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &Error{Kind: KindInvalidURL, Err: ErrInvalidURL}
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(raw); len(m) >= 2 {
			return m[1], nil
		}
	}
	return "", Errorf(KindInvalidURL, "", "%w: %q", ErrInvalidURL, raw)
}

// LooksLikeVideoID reports whether raw has the shape of a bare video ID.
func LooksLikeVideoID(raw string) bool {
	return bareVideoIDRe.MatchString(strings.TrimSpace(raw))
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
