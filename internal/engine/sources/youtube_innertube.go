package sources

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// YouTube InnerTube player payloads: low-level constants, types and helpers
// shared by the innertube and json3 sources.

const (
	ytPlayerURL      = "https://www.youtube.com/youtubei/v1/player"
	ytWatchURL       = "https://www.youtube.com/watch"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

func androidPlayerReq(videoID string) innertubeReq {
	return innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}
}

type innertubePlayerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string   `json:"baseUrl"`
	LanguageCode string   `json:"languageCode"`
	Kind         string   `json:"kind"` // "asr" = auto-generated
	Name         textRuns `json:"name"`
}

// textRuns is YouTube's localized text, either simpleText or a list of runs.
type textRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textRuns) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// checkPlayability classifies a non-OK playability status. Bot checks and
// login walls are rate limiting; anything else means the video has nothing
// this source can serve.
func checkPlayability(source string, resp innertubePlayerResp) error {
	ps := resp.PlayabilityStatus
	if ps == nil || ps.Status == "" || ps.Status == "OK" {
		return nil
	}
	if ps.Status == "LOGIN_REQUIRED" || engine.IsBotCheck(ps.Reason) {
		return engine.Errorf(engine.KindRateLimited, source, "%w: %s: %s", engine.ErrRateLimited, ps.Status, ps.Reason)
	}
	return engine.Errorf(engine.KindSourceUnavailable, source, "%w: %s: %s", engine.ErrSourceUnavailable, ps.Status, ps.Reason)
}

// playerTracks converts the player caption tracks into descriptors. Tracks
// whose URL requires a PoToken are skipped; they only work in a browser.
// format names the delivery format the caller will request from baseUrl.
func playerTracks(source string, resp innertubePlayerResp, format string) ([]engine.CaptionTrack, error) {
	if err := checkPlayability(source, resp); err != nil {
		return nil, err
	}
	if resp.Captions == nil || len(resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, engine.Errorf(engine.KindNoCaptions, source, "%w: no caption tracks in player response", engine.ErrNoCaptions)
	}
	raw := resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]engine.CaptionTrack, 0, len(raw))
	for _, t := range raw {
		if t.BaseURL == "" || needsPoToken(t.BaseURL) {
			continue
		}
		tracks = append(tracks, engine.CaptionTrack{
			LanguageCode: t.LanguageCode,
			LanguageName: t.Name.String(),
			IsGenerated:  t.Kind == "asr",
			URLs:         []engine.TrackURL{{Format: format, URL: withFormat(t.BaseURL, format)}},
		})
	}
	if len(tracks) == 0 {
		return nil, engine.Errorf(engine.KindSourceUnavailable, source, "%w: all caption tracks require PoToken", engine.ErrSourceUnavailable)
	}
	return tracks, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// withFormat sets the fmt query parameter of a timedtext URL. The "xml"
// format is the default timedtext body, so fmt is removed.
func withFormat(baseURL, format string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	q := u.Query()
	if format == "xml" {
		q.Del("fmt")
	} else {
		q.Set("fmt", format)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// parsePlayerResponse decodes a player response from either the /player body
// or a watch page carrying ytInitialPlayerResponse.
func parsePlayerResponse(source string, body []byte) (innertubePlayerResp, error) {
	var resp innertubePlayerResp
	data := body
	if idx := strings.Index(string(body), ytInitialPlayerResponseMarker); idx >= 0 {
		data = extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
		if data == nil {
			return resp, engine.Errorf(engine.KindFormatUnsupported, source, "%w: unterminated ytInitialPlayerResponse", engine.ErrFormatUnsupported)
		}
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, engine.Errorf(engine.KindFormatUnsupported, source, "%w: decode player response: %v", engine.ErrFormatUnsupported, err)
	}
	return resp, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
