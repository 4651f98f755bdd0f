package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxpipe/voxpipe/internal/config"
	"github.com/voxpipe/voxpipe/internal/recorder"
	"github.com/voxpipe/voxpipe/internal/server"
	"github.com/voxpipe/voxpipe/internal/transcript"
	"github.com/voxpipe/voxpipe/pkg/Logger"
	"github.com/voxpipe/voxpipe/pkg/capture/mic"
	"github.com/voxpipe/voxpipe/pkg/transcribe"
)

// Entry point: captures live audio, chunks it on a fixed interval, and
// prints transcription results as they arrive. Source "mic" records from the
// default input device; source "server" exposes a websocket ingest endpoint
// for remote clients instead.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := Logger.New(cfg.Debug)
	logger.Info("Logger initialized")

	service := transcribe.NewService(transcribe.Config{
		APIKey:   cfg.Transcription.APIKey,
		UseMock:  cfg.Transcription.UseMock,
		Provider: cfg.Transcription.Provider,
		Endpoint: cfg.Transcription.Endpoint,
		Model:    cfg.Transcription.Model,
		Language: cfg.Transcription.Language,
	}, logger)

	switch cfg.Source {
	case "server":
		runServer(cfg, service, logger)
	default:
		runMic(cfg, service, logger)
	}
}

func runMic(cfg *config.Settings, service transcribe.Service, logger *Logger.Logger) {
	store := transcript.NewStore()

	rec := recorder.New(recorder.ConfigFromSettings(cfg), service, mic.New(logger), logger)
	rec.OnResult(func(res transcribe.TranscriptionResult) {
		store.Append(res)
		fmt.Printf("[%03d] %s -> %s  %s\n",
			res.Seq,
			res.StartTime.Format("15:04:05"),
			res.EndTime.Format("15:04:05"),
			res.Text)
	})
	rec.OnError(func(err error) {
		logger.Warnf("Transient transcription error: %v", err)
	})

	if err := rec.Start(context.Background()); err != nil {
		logger.Fatalf("Failed to start recording: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Stop(ctx); err != nil {
		logger.Errorf("Stop error: %v", err)
	}

	logger.Infof("Session done: %d chunks transcribed", store.Len())
	if text := store.Text(); text != "" {
		fmt.Println("---")
		fmt.Println(text)
	}
}

func runServer(cfg *config.Settings, service transcribe.Service, logger *Logger.Logger) {
	router := server.NewRouter(server.NewDependencies(cfg, service, logger))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router.Handler(),
	}
	go func() {
		logger.Infof("Listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server exiting: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
	logger.Info("Shutdown complete")
}
