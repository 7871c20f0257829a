package engine

import "testing"

func TestIsBlockPage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"recaptcha", `<html><body><div class="g-recaptcha" data-sitekey="x"></div></body></html>`, true},
		{"captcha form", `<form id="captcha-form" action="/sorry/index"></form>`, true},
		{"consent", `<form action="https://consent.youtube.com/save" method="POST"><button>Accept all</button></form>`, true},
		{"unusual traffic text", `<html><body><p>Our systems have detected unusual traffic from your computer network.</p></body></html>`, true},
		{"phrase inside script ignored", `<html><script>var s = "unusual traffic";</script><p>watch page</p></html>`, false},
		{"normal page", `<html><head><title>Video</title></head><body>ytInitialPlayerResponse = {}</body></html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlockPage([]byte(tt.body)); got != tt.want {
				t.Errorf("IsBlockPage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBotCheck(t *testing.T) {
	if !IsBotCheck("Sign in to confirm you’re not a bot") {
		t.Error("curly apostrophe bot check not detected")
	}
	if IsBotCheck("Video unavailable") {
		t.Error("plain unavailability is not a bot check")
	}
}
