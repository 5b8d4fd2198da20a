package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/podcastsummarizer/internal/llm"
	"github.com/nikhilbhutani/podcastsummarizer/internal/multimodal/tts"
	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
	"github.com/nikhilbhutani/podcastsummarizer/internal/store"
)

// Pipeline is the job runner the handlers drive.
type Pipeline interface {
	Process(ctx context.Context, job pipeline.Job) (*pipeline.Result, error)
	Validate(job pipeline.Job) error
	ResolveLanguage(code string) (string, error)
	Summarize(ctx context.Context, text, lang string) (pipeline.SummaryResult, error)
	Synthesize(ctx context.Context, text, voice string) (*tts.SynthesisResult, error)
	Lookup(ctx context.Context, id string) (store.Record, error)
	Ready(ctx context.Context) error
	StoreName() string
	Models() []llm.ModelInfo
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// writeError answers with the error's kind and client-safe message. The
// full error chain goes to the log only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := pipeline.KindOf(err)
	detail := "internal error"
	var pe *pipeline.Error
	if errors.As(err, &pe) {
		detail = pe.Message
	}

	attrs := []any{
		"kind", kind,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	}
	if pe != nil {
		attrs = append(attrs, "stage", pe.Stage)
	}
	switch {
	case pipeline.Canceled(err):
		slog.Info("request canceled", attrs...)
	case kind.HTTPStatus() >= 500:
		slog.Error("request failed", attrs...)
	default:
		slog.Warn("request rejected", attrs...)
	}

	writeJSON(w, kind.HTTPStatus(), errorBody{Error: string(kind), Detail: detail})
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: string(pipeline.KindValidation), Detail: detail})
}
