package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

const origSuffix = "-orig"

// YtDlpArgs are the flags passed to yt-dlp for a metadata-only dump.
type YtDlpArgs struct {
	NoConfig    bool
	NoWarnings  bool
	CookiesFile string
}

// BuildArgs builds the yt-dlp argument list for url.
func (a YtDlpArgs) BuildArgs(url string) []string {
	args := make([]string, 0, 10)
	// --no-config first so local configs cannot change behaviour
	if a.NoConfig {
		args = append(args, "--no-config")
	}
	args = append(args, "-j", "--skip-download", "--no-progress", "--no-update")
	if a.NoWarnings {
		args = append(args, "--no-warnings")
	}
	if a.CookiesFile != "" {
		args = append(args, "--cookies", a.CookiesFile)
	}
	args = append(args, url)
	return args
}

type subtitleItem struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

type ytdlpOutput struct {
	ID                string                    `json:"id"`
	Subtitles         map[string][]subtitleItem `json:"subtitles"`
	AutomaticCaptions map[string][]subtitleItem `json:"automatic_captions"`
}

// runFunc runs a command and returns stdout and stderr separately.
type runFunc func(ctx context.Context, exe string, args ...string) (stdout, stderr []byte, err error)

func execRun(ctx context.Context, exe string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// YtDlp asks the yt-dlp binary for the caption listing and downloads the
// chosen json3 track over HTTPS.
type YtDlp struct {
	fetcher
	exe     string
	args    YtDlpArgs
	runTime time.Duration
	run     runFunc
}

// NewYtDlp builds the subprocess source. cookiesFile may be empty.
func NewYtDlp(cfg engine.Config, client *http.Client, cookiesFile string) *YtDlp {
	return &YtDlp{
		fetcher: newFetcher(cfg, client),
		exe:     cfg.YtDlpPath,
		args:    YtDlpArgs{NoConfig: true, NoWarnings: true, CookiesFile: cookiesFile},
		runTime: cfg.YtDlpTimeout,
		run:     execRun,
	}
}

// YtDlpAvailable reports whether the binary resolves on this host.
func YtDlpAvailable(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}

func (s *YtDlp) Name() string { return "ytdlp" }

func (s *YtDlp) dump(ctx context.Context, videoID string) (*ytdlpOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, s.runTime)
	defer cancel()

	stdout, stderr, err := s.run(ctx, s.exe, s.args.BuildArgs(engine.WatchURL(videoID))...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return nil, engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: binary not found: %v", engine.ErrSourceUnavailable, err)
		case ctx.Err() != nil:
			return nil, engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: timeout after %s", engine.ErrSourceUnavailable, s.runTime)
		case strings.Contains(msg, "HTTP Error 429") || engine.IsBotCheck(msg):
			return nil, engine.Errorf(engine.KindRateLimited, s.Name(), "%w: %s", engine.ErrRateLimited, engine.Snippet(msg, 200))
		default:
			return nil, engine.Errorf(engine.KindSourceUnavailable, s.Name(), "%w: %v: %s", engine.ErrSourceUnavailable, err, engine.Snippet(msg, 200))
		}
	}

	var jsonLine []byte
	for _, line := range bytes.Split(stdout, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 && line[0] == '{' {
			jsonLine = line
		}
	}
	if jsonLine == nil {
		return nil, engine.Errorf(engine.KindFormatUnsupported, s.Name(), "%w: no JSON in yt-dlp output", engine.ErrFormatUnsupported)
	}
	var out ytdlpOutput
	if err := json.Unmarshal(jsonLine, &out); err != nil {
		return nil, engine.Errorf(engine.KindFormatUnsupported, s.Name(), "%w: decode yt-dlp output: %v", engine.ErrFormatUnsupported, err)
	}
	return &out, nil
}

// ytdlpTracks lists manual subtitles first, then the original-language
// automatic captions. Auto-translated tracks are only used when yt-dlp did
// not mark an original. Codes are sorted within each group.
func ytdlpTracks(out *ytdlpOutput) []engine.CaptionTrack {
	var tracks []engine.CaptionTrack
	add := func(code string, items []subtitleItem, generated bool) {
		t := engine.CaptionTrack{
			LanguageCode: strings.TrimSuffix(code, origSuffix),
			IsGenerated:  generated,
		}
		for _, it := range items {
			if t.LanguageName == "" {
				t.LanguageName = it.Name
			}
			t.URLs = append(t.URLs, engine.TrackURL{Format: it.Ext, URL: it.URL})
		}
		tracks = append(tracks, t)
	}

	for _, code := range sortedKeys(out.Subtitles) {
		if code == "live_chat" {
			continue
		}
		add(code, out.Subtitles[code], false)
	}

	auto := sortedKeys(out.AutomaticCaptions)
	hasOrig := false
	for _, code := range auto {
		if strings.HasSuffix(code, origSuffix) {
			hasOrig = true
			add(code, out.AutomaticCaptions[code], true)
		}
	}
	if !hasOrig {
		for _, code := range auto {
			add(code, out.AutomaticCaptions[code], true)
		}
	}
	return tracks
}

func sortedKeys(m map[string][]subtitleItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ListTracks returns the tracks yt-dlp reports for the video.
func (s *YtDlp) ListTracks(ctx context.Context, videoID string) ([]engine.CaptionTrack, error) {
	out, err := s.dump(ctx, videoID)
	if err != nil {
		return nil, err
	}
	tracks := ytdlpTracks(out)
	if len(tracks) == 0 {
		return nil, engine.Errorf(engine.KindNoCaptions, s.Name(), "%w: no subtitles or automatic captions", engine.ErrNoCaptions)
	}
	return tracks, nil
}

func (s *YtDlp) Fetch(ctx context.Context, videoID string, pref engine.LanguagePreference) (engine.Fetched, error) {
	tracks, err := s.ListTracks(ctx, videoID)
	if err != nil {
		return engine.Fetched{}, err
	}
	track, err := engine.SelectTrack(tracks, pref)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	u := track.URLFor("json3")
	if u == "" {
		return engine.Fetched{}, engine.Errorf(engine.KindFormatUnsupported, s.Name(), "%w: no json3 format for %s", engine.ErrFormatUnsupported, track.LanguageCode)
	}
	body, err := s.get(ctx, s.Name(), u, map[string]string{"User-Agent": engine.UserAgentChrome})
	if err != nil {
		return engine.Fetched{}, err
	}
	segs, err := engine.NormalizeJSON3(body)
	if err != nil {
		return engine.Fetched{}, attribute(err, s.Name())
	}
	return engine.Fetched{Segments: segs, Language: track.LanguageCode, Source: s.Name()}, nil
}
