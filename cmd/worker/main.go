package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/podcastsummarizer/internal/bootstrap"
	"github.com/nikhilbhutani/podcastsummarizer/internal/config"
	"github.com/nikhilbhutani/podcastsummarizer/internal/queue"
	"github.com/nikhilbhutani/podcastsummarizer/internal/queue/workers"
	"github.com/nikhilbhutani/podcastsummarizer/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.Store.Backend == "memory" {
		slog.Error("worker needs a shared STORE_BACKEND (redis or postgres)")
		os.Exit(1)
	}
	cfg.Worker.Enabled = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      map[string]int{queue.QueueDefault: 1},
			Logger:      newAsynqLogger(),
		},
	)

	registry := queue.NewHandlersRegistry()
	audioWorker := workers.NewAudioWorker(svc.Pipeline, svc.Uploads, cfg.Audio.MaxUploadBytes)
	if cfg.Worker.WebhookURL != "" {
		audioWorker.WithNotifier(webhook.NewNotifier(cfg.Worker.WebhookURL, cfg.Worker.WebhookSecret, 0))
	}
	registry.Register(queue.TypeAudioProcess, asynq.HandlerFunc(audioWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "store", svc.Store.Name())
	if err := srv.Start(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
	<-ctx.Done()
	slog.Info("shutting down worker...")
	srv.Shutdown()
	slog.Info("worker stopped")
}
