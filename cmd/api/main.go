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

	"golang.org/x/sync/errgroup"

	"github.com/nikhilbhutani/podcastsummarizer/internal/api"
	"github.com/nikhilbhutani/podcastsummarizer/internal/bootstrap"
	"github.com/nikhilbhutani/podcastsummarizer/internal/config"
	"github.com/nikhilbhutani/podcastsummarizer/internal/queue"
)

const sweepInterval = time.Minute

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
	if !cfg.APIKeyConfigured() {
		slog.Warn("OPENAI_API_KEY is not set, hosted model calls will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	deps := api.Deps{Pipeline: svc.Pipeline}
	if cfg.Worker.Enabled {
		jobs := queue.NewClient(cfg.Redis, cfg.Worker)
		defer jobs.Close()
		deps.Jobs = jobs
		deps.Uploads = svc.Uploads
		slog.Info("async jobs enabled", "uploads", svc.Uploads.Name())
	}

	router := api.NewRouter(cfg, deps)
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		router.RateLimiter.Run(gctx)
		return nil
	})
	if svc.Memory != nil {
		g.Go(func() error {
			svc.Memory.Run(gctx, sweepInterval)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced shutdown", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
