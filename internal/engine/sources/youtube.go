package sources

// Caption sources are split across files by upstream:
//   youtube_innertube.go  : InnerTube player types, constants and track helpers
//   youtube_transcript.go : ANDROID /player → timedtext XML
//   youtube_watch.go      : watch page scrape → baseUrl&fmt=json3
//   youtube_panel.go      : WEB /next → engagement panel token → /get_transcript
//   youtube_dataapi.go    : official Data API v3 captions.list / captions.download
//   ytdlp.go              : yt-dlp subprocess listing → json3 download
//   library.go            : kkdai/youtube scraper, last resort

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Build assembles the chain in the order named by cfg.Sources. Sources that
// are not configured on this host (no Data API credentials, no yt-dlp binary)
// are left out with an info log.
func Build(ctx context.Context, cfg engine.Config) (*Chain, error) {
	cfg = cfg.WithDefaults()

	client := cfg.HTTPClient
	if cfg.CookiesFile != "" {
		jar, n, err := LoadCookieJar(cfg.CookiesFile)
		if err != nil {
			return nil, fmt.Errorf("cookies: %w", err)
		}
		withJar := *cfg.HTTPClient
		withJar.Jar = jar
		client = &withJar
		slog.Info("captions: cookies loaded", slog.Int("count", n))
	}

	var srcs []Source
	for _, name := range cfg.Sources {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "dataapi":
			if cfg.YouTubeAPIKey == "" && cfg.YouTubeServiceAccount == "" {
				slog.Info("captions: dataapi skipped, no credentials")
				continue
			}
			src, err := NewDataAPI(ctx, cfg)
			if err != nil {
				return nil, err
			}
			srcs = append(srcs, src)
		case "innertube":
			srcs = append(srcs, NewInnertube(cfg, client))
		case "json3":
			srcs = append(srcs, NewJSON3(cfg, client))
		case "panel":
			srcs = append(srcs, NewPanel(cfg, client))
		case "ytdlp":
			if !YtDlpAvailable(cfg.YtDlpPath) {
				slog.Info("captions: ytdlp skipped, binary not found", slog.String("path", cfg.YtDlpPath))
				continue
			}
			srcs = append(srcs, NewYtDlp(cfg, client, cfg.CookiesFile))
		case "library":
			srcs = append(srcs, NewLibrary(cfg, client))
		case "":
		default:
			return nil, fmt.Errorf("unknown caption source %q", name)
		}
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no caption sources enabled (configured: %s)", strings.Join(cfg.Sources, ","))
	}

	chain := NewChain(srcs...)
	slog.Info("captions: source chain ready", slog.String("order", strings.Join(chain.Names(), ",")))
	return chain, nil
}
