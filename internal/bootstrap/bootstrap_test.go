package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/nikhilbhutani/podcastsummarizer/internal/config"
	"github.com/nikhilbhutani/podcastsummarizer/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Audio: config.AudioConfig{
			MaxUploadBytes: 1 << 20,
			MaxDuration:    time.Minute,
			SampleRate:     16000,
			TempDir:        t.TempDir(),
			FFmpegPath:     "ffmpeg",
		},
		Store:    config.StoreConfig{Backend: "memory"},
		Storage:  config.StorageConfig{Backend: "local", LocalDir: t.TempDir()},
		STT:      config.STTConfig{Backend: "openai"},
		TTS:      config.TTSConfig{Backend: "openai"},
		LLM:      config.LLMConfig{DefaultProvider: "openai"},
		Upstream: config.UpstreamConfig{MaxConcurrency: 2},
	}
}

func TestNewMemoryBackend(t *testing.T) {
	s, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if s.Memory == nil || s.Store.Name() != "memory" {
		t.Fatalf("store = %s, memory = %v", s.Store.Name(), s.Memory)
	}
	if s.Uploads != nil {
		t.Fatalf("uploads opened without jobs: %s", s.Uploads.Name())
	}
	if s.Pipeline == nil {
		t.Fatal("pipeline not built")
	}
}

func TestNewOpensUploadsOnlyForJobs(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Join(t.TempDir(), "uploads")
	cfg.Storage.LocalDir = dir

	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Close()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("upload dir created without jobs, stat err = %v", err)
	}

	cfg.Worker.Enabled = true
	s, err = New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()
	if s.Uploads == nil || s.Uploads.Name() != "local" {
		t.Fatalf("uploads = %v", s.Uploads)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("upload dir missing: %v", err)
	}
}

func TestNewRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Redis = config.RedisConfig{Addr: mr.Addr()}

	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if s.Memory != nil || s.Store.Name() != "redis" {
		t.Fatalf("store = %s", s.Store.Name())
	}
	if err := s.Store.Put(context.Background(), store.Record{ProcessID: "p1", Transcript: "t"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !mr.Exists(store.RedisKeyPrefix + "p1") {
		t.Fatal("record not written to redis")
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "redis"
	cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:1"}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestNewUploadsUnknownBackend(t *testing.T) {
	if _, err := NewUploads(config.StorageConfig{Backend: "s3"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	up, err := NewUploads(config.StorageConfig{Backend: "supabase", SupabaseURL: "https://x.supabase.co", SupabaseKey: "k", Bucket: "b"})
	if err != nil || up.Name() != "supabase" {
		t.Fatalf("supabase uploads = %v, %v", up, err)
	}
}

func TestProviderSelection(t *testing.T) {
	if got := NewSTT(config.STTConfig{Backend: "local"}).Name(); got != "local-whisper" {
		t.Fatalf("local stt = %q", got)
	}
	if got := NewSTT(config.STTConfig{Backend: "openai"}).Name(); got != "openai-whisper" {
		t.Fatalf("openai stt = %q", got)
	}
	if got := NewTTS(config.TTSConfig{Backend: "local", LocalModel: "voice.onnx"}).Name(); got != "local-piper" {
		t.Fatalf("local tts = %q", got)
	}
	if got := NewTTS(config.TTSConfig{Backend: "openai"}).Name(); got != "openai-tts" {
		t.Fatalf("openai tts = %q", got)
	}
}

func TestPipelineConfigMapping(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audio.Enhance = true
	cfg.Pipeline.SummaryMaxTokens = 321

	pc := PipelineConfig(cfg)
	if !pc.EnhanceAll || pc.SummaryMaxTokens != 321 || pc.MaxConcurrency != 2 || pc.MaxDuration != time.Minute {
		t.Fatalf("pipeline config = %+v", pc)
	}
}
