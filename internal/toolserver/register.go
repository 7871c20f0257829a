package toolserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers the transcript tools on the given MCP server:
// youtube_transcript, youtube_caption_languages.
func RegisterTools(server *mcp.Server, svc *transcript.Service) {
	registerTranscript(server, svc)
	registerLanguages(server, svc)
}

// videoURL lets tool callers pass a bare video ID where a URL is expected.
func videoURL(raw string) string {
	if engine.LooksLikeVideoID(raw) {
		return engine.WatchURL(strings.TrimSpace(raw))
	}
	return raw
}

func registerTranscript(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the caption transcript of a YouTube video as full text and timestamped segments. Picks the requested caption language (falling back to pt, en, es, fr), tries several caption sources in order, and can translate the transcript into another language.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error) {
		if input.URL == "" {
			return nil, engine.TranscriptOutput{}, fmt.Errorf("url is required")
		}
		result, err := svc.Transcribe(ctx, transcript.Request{
			URL:         videoURL(input.URL),
			Language:    input.Language,
			TranslateTo: input.TranslateTo,
		})
		if err != nil {
			return nil, engine.TranscriptOutput{}, errors.New(toolutil.ErrorMessage(err))
		}
		out := engine.TranscriptOutput{TranscriptResult: *result}
		if input.Timestamps {
			out.Timestamped = engine.Timestamped(result.Segments)
		}
		return nil, out, nil
	})
}

func registerLanguages(server *mcp.Server, svc *transcript.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_caption_languages",
		Description: "List the caption tracks of a YouTube video: language code, language name, and whether the track is auto-generated.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.LanguagesInput) (*mcp.CallToolResult, engine.VideoLanguages, error) {
		if input.URL == "" {
			return nil, engine.VideoLanguages{}, fmt.Errorf("url is required")
		}
		out, err := svc.Languages(ctx, videoURL(input.URL))
		if err != nil {
			return nil, engine.VideoLanguages{}, errors.New(toolutil.ErrorMessage(err))
		}
		return nil, *out, nil
	})
}
