// transcript-api serves the transcript service as a JSON HTTP API:
// GET /, POST /transcript, POST /check-video, GET /metrics.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_transcript/internal/app"
	"github.com/anatolykoptev/go_transcript/internal/config"
	"github.com/anatolykoptev/go_transcript/internal/httpapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	if env.Str("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + env.Str("PORT", "8000"),
		Handler:           httpapi.NewRouter(a.Service),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      300 * time.Second,
	}

	go func() {
		slog.Info("transcript api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
	slog.Info("transcript api stopped")
}
