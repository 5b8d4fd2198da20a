package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/podcastsummarizer/internal/api/handlers"
	"github.com/nikhilbhutani/podcastsummarizer/internal/api/middleware"
	"github.com/nikhilbhutani/podcastsummarizer/internal/auth"
	"github.com/nikhilbhutani/podcastsummarizer/internal/config"
	"github.com/nikhilbhutani/podcastsummarizer/internal/storage"
)

// Deps are the collaborators the HTTP layer needs. Jobs and Uploads may be
// nil, which disables the async job endpoints.
type Deps struct {
	Pipeline handlers.Pipeline
	Jobs     handlers.JobQueue
	Uploads  storage.Storage
}

type Router struct {
	mux         *chi.Mux
	cfg         *config.Config
	deps        Deps
	jwt         *auth.JWTMiddleware
	RateLimiter *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	return &Router{
		mux:         chi.NewRouter(),
		cfg:         cfg,
		deps:        deps,
		jwt:         auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		RateLimiter: middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	}
}

var endpoints = map[string]string{
	"GET /":                      "service description",
	"GET /health":                "liveness and configuration check",
	"GET /readyz":                "result store readiness",
	"GET /languages":             "supported languages",
	"POST /transcribe/":          "transcribe an audio file",
	"POST /summarize-audio/":     "transcribe and summarize an audio file",
	"POST /upload-audio/":        "transcribe and summarize an audio file",
	"POST /summarize/":           "summarize text",
	"POST /text-to-speech":       "synthesize speech from text",
	"GET /summary/{processId}":   "stored transcript and summary",
	"POST /jobs/summarize-audio": "queue an audio file for background processing",
	"GET /jobs/{processId}":      "background job status",
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.AllowedOrigins))
	r.Use(rt.RateLimiter.Limit)

	health := handlers.NewHealthHandler(rt.deps.Pipeline, rt.cfg.Audio.TempDir, rt.cfg.APIKeyConfigured(), endpoints)
	r.Get("/", health.Root)
	r.Get("/health", health.Health)
	r.Get("/healthz", health.Health)
	r.Get("/readyz", health.Readyz)
	r.Get("/languages", health.Languages)

	text := handlers.NewTextHandler(rt.deps.Pipeline)
	r.Get("/summary/{processId}", text.Summary)

	audio := handlers.NewAudioHandler(rt.deps.Pipeline, rt.cfg.Audio.MaxUploadBytes)
	jobs := handlers.NewJobHandler(rt.deps.Pipeline, rt.deps.Jobs, rt.deps.Uploads, rt.cfg.Audio.MaxUploadBytes)
	r.Get("/jobs/{processId}", jobs.Status)

	r.Group(func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		postBoth(r, "/transcribe", audio.Transcribe)
		postBoth(r, "/summarize-audio", audio.SummarizeAudio)
		postBoth(r, "/upload-audio", audio.UploadAudio)
		postBoth(r, "/summarize", text.Summarize)
		postBoth(r, "/text-to-speech", text.TextToSpeech)
		r.Post("/jobs/summarize-audio", jobs.Submit)
	})

	return r
}

// postBoth registers path with and without the trailing slash.
func postBoth(r chi.Router, path string, h http.HandlerFunc) {
	r.Post(path, h)
	r.Post(path+"/", h)
}
