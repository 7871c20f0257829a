package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

type handlers struct {
	svc Transcriber
}

// videoRequest is the body of POST /transcript and POST /check-video.
type videoRequest struct {
	URL         string `json:"url" binding:"required"`
	Language    string `json:"language"`
	TranslateTo string `json:"translate_to"`
	Timestamps  bool   `json:"timestamps"`
}

type errorResponse struct {
	Detail    string `json:"detail"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "YouTube Transcript API is running"})
}

func (h *handlers) fetchTranscript(c *gin.Context) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error(), RequestID: c.GetString("request_id")})
		return
	}
	result, err := h.svc.Transcribe(c.Request.Context(), transcript.Request{
		URL:         req.URL,
		Language:    req.Language,
		TranslateTo: req.TranslateTo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	out := engine.TranscriptOutput{TranscriptResult: *result}
	if req.Timestamps {
		out.Timestamped = engine.Timestamped(result.Segments)
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) checkVideo(c *gin.Context) {
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error(), RequestID: c.GetString("request_id")})
		return
	}
	out, err := h.svc.Languages(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// StatusFor maps an error kind to the HTTP status callers see.
func StatusFor(kind engine.Kind) int {
	switch kind {
	case engine.KindInvalidURL:
		return http.StatusBadRequest
	case engine.KindNoCaptions:
		return http.StatusNotFound
	case engine.KindRateLimited:
		return http.StatusTooManyRequests
	case engine.KindSourceUnavailable, engine.KindFormatUnsupported:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := engine.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusTooManyRequests {
		c.Header("Retry-After", "60")
	}
	c.JSON(status, errorResponse{Detail: err.Error(), Kind: string(kind), RequestID: c.GetString("request_id")})
}
