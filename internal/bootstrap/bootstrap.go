// Package bootstrap builds the service graph shared by the API server, the
// worker and the CLI from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/podcastsummarizer/internal/audio"
	"github.com/nikhilbhutani/podcastsummarizer/internal/cache"
	"github.com/nikhilbhutani/podcastsummarizer/internal/config"
	"github.com/nikhilbhutani/podcastsummarizer/internal/database"
	"github.com/nikhilbhutani/podcastsummarizer/internal/llm"
	"github.com/nikhilbhutani/podcastsummarizer/internal/multimodal/stt"
	"github.com/nikhilbhutani/podcastsummarizer/internal/multimodal/tts"
	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
	"github.com/nikhilbhutani/podcastsummarizer/internal/storage"
	"github.com/nikhilbhutani/podcastsummarizer/internal/store"
	"github.com/nikhilbhutani/podcastsummarizer/migrations"
)

// Services holds the long-lived collaborators of one process.
type Services struct {
	Pipeline *pipeline.Pipeline
	Store    store.Store
	// Memory is set when the result store is process-local and needs sweeping.
	Memory *store.Memory
	// Uploads is only opened when async jobs are enabled.
	Uploads storage.Storage

	closers []func()
}

// New connects the configured backends and assembles the pipeline. Close
// releases whatever was opened, also after a partial failure.
func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{}

	st, err := s.openStore(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Store = st

	uploads := "none"
	if cfg.Worker.Enabled {
		up, err := NewUploads(cfg.Storage)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Uploads = up
		uploads = up.Name()
	}

	if !audio.Available(cfg.Audio.FFmpegPath) {
		slog.Warn("ffmpeg not found, only WAV uploads can be decoded", "path", cfg.Audio.FFmpegPath)
	}

	s.Pipeline = pipeline.New(PipelineConfig(cfg),
		audio.NewNormalizer(audio.Config{
			TempDir:        cfg.Audio.TempDir,
			FFmpegPath:     cfg.Audio.FFmpegPath,
			MaxUploadBytes: cfg.Audio.MaxUploadBytes,
			MaxDuration:    cfg.Audio.MaxDuration,
			SampleRate:     cfg.Audio.SampleRate,
		}),
		NewSTT(cfg.STT),
		llm.NewGateway(cfg.LLM),
		NewTTS(cfg.TTS),
		st,
	)

	slog.Info("services ready",
		"store", st.Name(),
		"uploads", uploads,
		"stt", cfg.STT.Backend,
		"tts", cfg.TTS.Backend,
		"llm", cfg.LLM.DefaultProvider,
	)
	return s, nil
}

// Close releases backend connections in reverse order of opening.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func (s *Services) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		s.Memory = store.NewMemory(cfg.Store.TTL)
		return s.Memory, nil

	case "redis":
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { client.Close() })
		return store.NewRedis(cache.NewCache(client, store.RedisKeyPrefix), cfg.Store.TTL), nil

	case "postgres":
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		if err := database.RunMigrations(ctx, pool, migrations.FS); err != nil {
			return nil, err
		}
		return store.NewPostgres(pool, cfg.Store.TTL), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// PipelineConfig maps service configuration onto pipeline tuning.
func PipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		DefaultLanguage:       cfg.Pipeline.DefaultLanguage,
		MaxUploadBytes:        cfg.Audio.MaxUploadBytes,
		MaxDuration:           cfg.Audio.MaxDuration,
		EnhanceAll:            cfg.Audio.Enhance,
		CorrectionTemperature: cfg.Pipeline.CorrectionTemperature,
		SummaryTemperature:    cfg.Pipeline.SummaryTemperature,
		SummaryMaxTokens:      cfg.Pipeline.SummaryMaxTokens,
		MaxConcurrency:        cfg.Upstream.MaxConcurrency,
	}
}

func NewSTT(cfg config.STTConfig) stt.STTProvider {
	if cfg.Backend == "local" {
		return stt.NewLocalSTT(stt.LocalSTTConfig{BaseURL: cfg.LocalBaseURL, Timeout: cfg.Timeout})
	}
	return stt.NewOpenAISTT(stt.OpenAISTTConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.Timeout,
	})
}

func NewTTS(cfg config.TTSConfig) tts.TTSProvider {
	if cfg.Backend == "local" {
		return tts.NewLocalTTS(tts.LocalTTSConfig{PiperBinPath: cfg.LocalBinPath, ModelPath: cfg.LocalModel})
	}
	return tts.NewOpenAITTS(tts.OpenAITTSConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Voice:   cfg.Voice,
		Timeout: cfg.Timeout,
	})
}

// NewUploads opens the object storage used to hand uploads to the worker.
func NewUploads(cfg config.StorageConfig) (storage.Storage, error) {
	switch cfg.Backend {
	case "local":
		local, err := storage.NewLocalStorage(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "supabase":
		return storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
