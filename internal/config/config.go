package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Audio    AudioConfig
	Pipeline PipelineConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Storage  StorageConfig
	STT      STTConfig
	TTS      TTSConfig
	Upstream UpstreamConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type AudioConfig struct {
	MaxUploadBytes int64
	MaxDuration    time.Duration
	SampleRate     int
	Enhance        bool // apply enhancement to every upload, not only live recordings
	TempDir        string
	FFmpegPath     string
}

type PipelineConfig struct {
	DefaultLanguage       string
	CorrectionTemperature float64
	SummaryTemperature    float64
	SummaryMaxTokens      int
}

type StoreConfig struct {
	Backend string // "memory", "redis" or "postgres"
	TTL     time.Duration
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string // empty disables bearer auth
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	FallbackModel    string
	MaxRetries       int
	Timeout          time.Duration
}

type StorageConfig struct {
	Backend     string // "local" or "supabase"
	LocalDir    string
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type STTConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LocalBaseURL  string // default: "http://localhost:8178"
	Timeout       time.Duration
}

type TTSConfig struct {
	Backend       string // "openai" or "local"
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	Voice         string
	LocalBinPath  string // default: "piper"
	LocalModel    string // required when backend=local
	Timeout       time.Duration
}

type UpstreamConfig struct {
	MaxConcurrency int64
}

type WorkerConfig struct {
	Enabled       bool // expose the async job endpoints from the API
	Concurrency   int
	JobTimeout    time.Duration
	Retention     time.Duration // how long finished job state stays queryable
	WebhookURL    string        // notified when a job finishes; empty disables
	WebhookSecret string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	maxUpload, err := getEnvInt("AUDIO_MAX_UPLOAD_BYTES", 25*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_MAX_UPLOAD_BYTES: %w", err)
	}

	maxDuration, err := getEnvDuration("AUDIO_MAX_DURATION", 300*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_MAX_DURATION: %w", err)
	}

	sampleRate, err := getEnvInt("AUDIO_SAMPLE_RATE", 16000)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_SAMPLE_RATE: %w", err)
	}

	enhance, err := getEnvBool("AUDIO_ENHANCE", false)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_ENHANCE: %w", err)
	}

	correctionTemp, err := getEnvFloat("CORRECTION_TEMPERATURE", 0.2)
	if err != nil {
		return nil, fmt.Errorf("invalid CORRECTION_TEMPERATURE: %w", err)
	}

	summaryTemp, err := getEnvFloat("SUMMARY_TEMPERATURE", 0.5)
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARY_TEMPERATURE: %w", err)
	}

	summaryMaxTokens, err := getEnvInt("SUMMARY_MAX_TOKENS", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARY_MAX_TOKENS: %w", err)
	}

	storeTTL, err := getEnvDuration("STORE_TTL", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TTL: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	upstreamTimeout, err := getEnvDuration("UPSTREAM_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	maxConcurrency, err := getEnvInt("UPSTREAM_MAX_CONCURRENCY", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_CONCURRENCY: %w", err)
	}

	workerConcurrency, err := getEnvInt("WORKER_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	jobTimeout, err := getEnvDuration("WORKER_JOB_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_JOB_TIMEOUT: %w", err)
	}

	retention, err := getEnvDuration("WORKER_RETENTION", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_RETENTION: %w", err)
	}

	jobsEnabled, err := getEnvBool("JOBS_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid JOBS_ENABLED: %w", err)
	}

	openAIKey := getEnv("OPENAI_API_KEY", "")

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
		Audio: AudioConfig{
			MaxUploadBytes: int64(maxUpload),
			MaxDuration:    maxDuration,
			SampleRate:     sampleRate,
			Enhance:        enhance,
			TempDir:        getEnv("AUDIO_TEMP_DIR", os.TempDir()),
			FFmpegPath:     getEnv("FFMPEG_PATH", "ffmpeg"),
		},
		Pipeline: PipelineConfig{
			DefaultLanguage:       getEnv("DEFAULT_LANGUAGE", "en"),
			CorrectionTemperature: correctionTemp,
			SummaryTemperature:    summaryTemp,
			SummaryMaxTokens:      summaryMaxTokens,
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "memory"),
			TTL:     storeTTL,
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: maxConns,
			MinConns: minConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		LLM: LLMConfig{
			OpenAIKey:        openAIKey,
			OpenAIBaseURL:    getEnv("LLM_OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			FallbackModel:    getEnv("LLM_FALLBACK_MODEL", ""),
			MaxRetries:       maxRetries,
			Timeout:          upstreamTimeout,
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "local"),
			LocalDir:    getEnv("STORAGE_LOCAL_DIR", "data/uploads"),
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "audio-uploads"),
		},
		STT: STTConfig{
			Backend:       getEnv("STT_BACKEND", "openai"),
			OpenAIKey:     openAIKey,
			OpenAIBaseURL: getEnv("STT_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("STT_OPENAI_MODEL", ""),
			LocalBaseURL:  getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
			Timeout:       upstreamTimeout,
		},
		TTS: TTSConfig{
			Backend:       getEnv("TTS_BACKEND", "openai"),
			OpenAIKey:     openAIKey,
			OpenAIBaseURL: getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("TTS_OPENAI_MODEL", ""),
			Voice:         getEnv("TTS_VOICE", "alloy"),
			LocalBinPath:  getEnv("TTS_LOCAL_PIPER_BIN", "piper"),
			LocalModel:    getEnv("TTS_LOCAL_PIPER_MODEL", ""),
			Timeout:       upstreamTimeout,
		},
		Upstream: UpstreamConfig{
			MaxConcurrency: int64(maxConcurrency),
		},
		Worker: WorkerConfig{
			Enabled:       jobsEnabled,
			Concurrency:   workerConcurrency,
			JobTimeout:    jobTimeout,
			Retention:     retention,
			WebhookURL:    getEnv("WEBHOOK_URL", ""),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// APIKeyConfigured reports whether a hosted-model credential is present.
func (c *Config) APIKeyConfigured() bool {
	return c.LLM.OpenAIKey != ""
}

func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Backend {
	case "memory", "redis":
	case "postgres":
		if c.Database.URL == "" {
			problems = append(problems, "DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	switch c.Storage.Backend {
	case "local":
	case "supabase":
		if c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_SERVICE_KEY are required when STORAGE_BACKEND=supabase")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}

	if c.STT.Backend != "openai" && c.STT.Backend != "local" {
		problems = append(problems, fmt.Sprintf("unknown STT_BACKEND %q", c.STT.Backend))
	}
	if c.TTS.Backend != "openai" && c.TTS.Backend != "local" {
		problems = append(problems, fmt.Sprintf("unknown TTS_BACKEND %q", c.TTS.Backend))
	}
	if c.Audio.MaxUploadBytes <= 0 {
		problems = append(problems, "AUDIO_MAX_UPLOAD_BYTES must be positive")
	}
	if c.Audio.MaxDuration <= 0 {
		problems = append(problems, "AUDIO_MAX_DURATION must be positive")
	}
	if c.Worker.Enabled && c.Store.Backend == "memory" {
		problems = append(problems, "JOBS_ENABLED needs a shared STORE_BACKEND (redis or postgres)")
	}
	if c.Worker.Concurrency <= 0 {
		problems = append(problems, "WORKER_CONCURRENCY must be positive")
	}
	if c.Upstream.MaxConcurrency <= 0 {
		problems = append(problems, "UPSTREAM_MAX_CONCURRENCY must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// getEnvDuration accepts Go duration strings ("90s", "2m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
