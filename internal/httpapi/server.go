// Package httpapi exposes the transcript service over a small JSON HTTP API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// Transcriber is the part of the transcript service the handlers call.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcript.Request) (*engine.TranscriptResult, error)
	Languages(ctx context.Context, rawURL string) (*engine.VideoLanguages, error)
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc Transcriber) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), cors(), accessLog())

	h := &handlers{svc: svc}
	r.GET("/", h.root)
	r.POST("/transcript", h.fetchTranscript)
	r.POST("/check-video", h.checkVideo)
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, engine.FormatMetrics())
	})
	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			slog.String("request_id", c.GetString("request_id")),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}
