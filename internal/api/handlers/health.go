package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nikhilbhutani/podcastsummarizer/internal/prompt"
)

type HealthHandler struct {
	svc           Pipeline
	tempDir       string
	apiConfigured bool
	endpoints     map[string]string
}

func NewHealthHandler(svc Pipeline, tempDir string, apiConfigured bool, endpoints map[string]string) *HealthHandler {
	return &HealthHandler{svc: svc, tempDir: tempDir, apiConfigured: apiConfigured, endpoints: endpoints}
}

// Root describes the service and lists its endpoints.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Audio transcription and summarization API",
		"endpoints": h.endpoints,
	})
}

// Health reports local readiness to accept uploads.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	apiStatus := "missing"
	if h.apiConfigured {
		apiStatus = "configured"
	}
	writable := dirWritable(h.tempDir)

	status := "healthy"
	if !writable {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"openai_api": apiStatus,
		"temp_dir": map[string]any{
			"path":     h.tempDir,
			"writable": writable,
		},
		"checks": map[string]string{
			"store": h.svc.StoreName(),
		},
		"models": h.svc.Models(),
	})
}

// Readyz pings the result store.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := map[string]string{}

	start := time.Now()
	if err := h.svc.Ready(ctx); err != nil {
		slog.Warn("readiness check failed", "store", h.svc.StoreName(), "error", err)
		checks[h.svc.StoreName()] = "unhealthy"
	} else {
		checks[h.svc.StoreName()] = "ok"
	}

	status := http.StatusOK
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, status, map[string]any{
		"status":     statusStr(status),
		"checks":     checks,
		"latency_ms": time.Since(start).Milliseconds(),
	})
}

// Languages lists supported transcription languages.
func (h *HealthHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"languages": prompt.Languages()})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}

func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
