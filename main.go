// go_transcript: YouTube caption transcript MCP server.
//
// Exposes two MCP tools: youtube_transcript, youtube_caption_languages.
// Runs as HTTP MCP server or stdio transport. The same service is served as
// a JSON HTTP API by cmd/transcript-api.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/app"
	"github.com/anatolykoptev/go_transcript/internal/config"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/toolserver"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	mcpPort := env.Str("MCP_PORT", "8892")

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	toolserver.RegisterTools(server, a.Service)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
