package engine

import (
	"errors"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=" + id, id},
		{"watch with params after", "https://www.youtube.com/watch?v=" + id + "&t=42s", id},
		{"watch with v later", "https://www.youtube.com/watch?feature=share&v=" + id, id},
		{"mobile watch", "https://m.youtube.com/watch?v=" + id, id},
		{"short link", "https://youtu.be/" + id, id},
		{"short link with query", "https://youtu.be/" + id + "?si=abc", id},
		{"embed", "https://www.youtube.com/embed/" + id, id},
		{"nocookie embed", "https://www.youtube-nocookie.com/embed/" + id, id},
		{"shorts", "https://www.youtube.com/shorts/" + id, id},
		{"v path", "https://www.youtube.com/v/" + id, id},
		{"no scheme", "youtube.com/watch?v=" + id, id},
		{"surrounding spaces", "  https://youtu.be/" + id + "  ", id},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q) error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractVideoIDFirstPatternWins(t *testing.T) {
	// watch?v= is tried before /embed/, so its id is returned.
	got, err := ExtractVideoID("https://www.youtube.com/watch?v=AAAAAAAAAAA&list=x/embed/BBBBBBBBBBB")
	if err != nil {
		t.Fatal(err)
	}
	if got != "AAAAAAAAAAA" {
		t.Errorf("got %q, want AAAAAAAAAAA", got)
	}
}

func TestExtractVideoIDInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "https://example.com/watch?v=short", "https://vimeo.com/123456", "not a url",
		"not-a-video", "hello_world", "definitely1", "dQw4w9WgXcQ"} {
		_, err := ExtractVideoID(raw)
		if err == nil {
			t.Errorf("ExtractVideoID(%q) expected error", raw)
			continue
		}
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ExtractVideoID(%q) error %v is not ErrInvalidURL", raw, err)
		}
		if KindOf(err) != KindInvalidURL {
			t.Errorf("KindOf = %q, want %q", KindOf(err), KindInvalidURL)
		}
	}
}

func TestLooksLikeVideoID(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"dQw4w9WgXcQ", true},
		{" dQw4w9WgXcQ ", true},
		{"not-a-video", true},
		{"dQw4w9WgXc", false},
		{"https://youtu.be/dQw4w9WgXcQ", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksLikeVideoID(tt.raw); got != tt.want {
			t.Errorf("LooksLikeVideoID(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestWatchURL(t *testing.T) {
	if got := WatchURL("dQw4w9WgXcQ"); got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("WatchURL = %q", got)
	}
}
