package sources

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

const (
	ytNextURL          = "https://www.youtube.com/youtubei/v1/next"
	ytGetTranscriptURL = "https://www.youtube.com/youtubei/v1/get_transcript"
	ytWebVersion       = "2.20250222.10.00"
)

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

// --- WEB client types (/next and /get_transcript endpoints) ---

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type ytWebUser struct {
	EnableSafetyMode bool `json:"enableSafetyMode"`
}

type ytWebReqCtx struct {
	UseSsl bool `json:"useSsl"`
}

// --- /get_transcript response ---

type panelSegment struct {
	StartMs string   `json:"startMs"`
	EndMs   string   `json:"endMs"`
	Snippet textRuns `json:"snippet"`
}

type getTranscriptResp struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []struct {
										TranscriptSegmentRenderer *panelSegment `json:"transcriptSegmentRenderer"`
									} `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

func ytWebClient(visitorData string) ytWebClientCtx {
	return ytWebClientCtx{
		ClientName:    "WEB",
		ClientVersion: ytWebVersion,
		VisitorData:   visitorData,
		Hl:            "en",
		Gl:            "US",
	}
}

// Panel fetches the transcript the watch page shows in its engagement panel:
// /next yields a getTranscriptEndpoint token, /get_transcript turns it into
// timed segments. It works from datacenter IPs where /player answers
// LOGIN_REQUIRED, but only serves the video's default track and cannot list
// tracks, so it reports no language.
type Panel struct {
	fetcher
	nextURL       string
	transcriptURL string
}

// NewPanel builds the engagement-panel source. client may carry a cookie jar.
func NewPanel(cfg engine.Config, client *http.Client) *Panel {
	return &Panel{fetcher: newFetcher(cfg, client), nextURL: ytNextURL, transcriptURL: ytGetTranscriptURL}
}

func (s *Panel) Name() string { return "panel" }

func (s *Panel) post(ctx context.Context, endpoint string, payload any, visitorData string) ([]byte, error) {
	return s.postJSON(ctx, s.Name(), endpoint+"?prettyPrint=false", payload, map[string]string{
		"Accept":                   "*/*",
		"User-Agent":               engine.UserAgentChrome,
		"X-Youtube-Client-Name":    "1",
		"X-Youtube-Client-Version": ytWebVersion,
		"X-Goog-Visitor-Id":        visitorData,
		"Origin":                   "https://www.youtube.com",
		"Referer":                  "https://www.youtube.com/",
	})
}

// Fetch ignores the language preference; the panel serves one track.
func (s *Panel) Fetch(ctx context.Context, videoID string, _ engine.LanguagePreference) (engine.Fetched, error) {
	visitorData := generateVisitorData()

	next, err := s.post(ctx, s.nextURL, map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client":  ytWebClient(visitorData),
			"user":    ytWebUser{EnableSafetyMode: false},
			"request": ytWebReqCtx{UseSsl: true},
		},
	}, visitorData)
	if err != nil {
		return engine.Fetched{}, err
	}
	token, ok := transcriptToken(next)
	if !ok {
		return engine.Fetched{}, engine.Errorf(engine.KindNoCaptions, s.Name(), "%w: no transcript panel", engine.ErrNoCaptions)
	}

	body, err := s.post(ctx, s.transcriptURL, map[string]any{
		"params":  token,
		"context": map[string]any{"client": ytWebClient(visitorData)},
	}, visitorData)
	if err != nil {
		return engine.Fetched{}, err
	}
	var resp getTranscriptResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return engine.Fetched{}, engine.Errorf(engine.KindFormatUnsupported, s.Name(), "%w: get_transcript: %v", engine.ErrFormatUnsupported, err)
	}
	segs := engine.NormalizeEntries(panelEntries(resp))
	if len(segs) == 0 {
		return engine.Fetched{}, engine.Errorf(engine.KindNoCaptions, s.Name(), "%w: transcript panel is empty", engine.ErrNoCaptions)
	}
	return engine.Fetched{Segments: segs, Source: s.Name()}, nil
}

// transcriptToken returns the URL-decoded getTranscriptEndpoint params.
func transcriptToken(next []byte) (string, bool) {
	m := getTranscriptRE.FindSubmatch(next)
	if len(m) < 2 {
		return "", false
	}
	if decoded, err := url.QueryUnescape(string(m[1])); err == nil {
		return decoded, true
	}
	return string(m[1]), true
}

func panelEntries(resp getTranscriptResp) []engine.Entry {
	var entries []engine.Entry
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		list := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, item := range list {
			seg := item.TranscriptSegmentRenderer
			if seg == nil {
				continue
			}
			startMs, _ := strconv.ParseInt(seg.StartMs, 10, 64)
			e := engine.Entry{Text: seg.Snippet.String(), Start: float64(startMs) / 1000}
			if endMs, err := strconv.ParseInt(seg.EndMs, 10, 64); err == nil {
				d := float64(endMs-startMs) / 1000
				e.Duration = &d
			}
			entries = append(entries, e)
		}
	}
	return entries
}
