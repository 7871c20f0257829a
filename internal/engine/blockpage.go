package engine

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// botCheckPhrases appear in playability reasons and interstitials when
// YouTube refuses to serve a datacenter or flagged client.
var botCheckPhrases = []string{
	"sign in to confirm you",
	"confirm you're not a bot",
	"unusual traffic",
	"too many requests",
}

// IsBotCheck reports whether an upstream message is a block signal.
func IsBotCheck(msg string) bool {
	msg = strings.ToLower(strings.ReplaceAll(msg, "’", "'"))
	for _, p := range botCheckPhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsBlockPage reports whether an HTML body is a captcha or consent
// interstitial instead of the requested page. Script and style bodies are
// not inspected.
func IsBlockPage(body []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(body))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "script" || string(name) == "style" {
				inScript = false
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "script" || tok.Data == "style" {
				inScript = tok.Type == html.StartTagToken
			}
			for _, a := range tok.Attr {
				switch {
				case a.Key == "class" && strings.Contains(a.Val, "g-recaptcha"):
					return true
				case a.Key == "action" && tok.Data == "form" && strings.Contains(a.Val, "consent.youtube.com"):
					return true
				case a.Key == "id" && a.Val == "captcha-form":
					return true
				}
			}
		case html.TextToken:
			if !inScript && IsBotCheck(string(z.Text())) {
				return true
			}
		}
	}
}
