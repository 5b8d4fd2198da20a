package handlers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
	"github.com/nikhilbhutani/podcastsummarizer/internal/queue"
	"github.com/nikhilbhutani/podcastsummarizer/internal/storage"
	"github.com/nikhilbhutani/podcastsummarizer/internal/store"
)

// JobQueue accepts async audio jobs and reports their state.
type JobQueue interface {
	EnqueueAudioProcess(ctx context.Context, payload queue.AudioProcessPayload) error
	Status(processID string) (queue.JobStatus, string, error)
}

// JobHandler serves the async variant of summarize-audio. Uploads are parked
// in object storage and processed by the worker.
type JobHandler struct {
	svc       Pipeline
	jobs      JobQueue
	uploads   storage.Storage
	maxUpload int64
}

func NewJobHandler(svc Pipeline, jobs JobQueue, uploads storage.Storage, maxUpload int64) *JobHandler {
	return &JobHandler{svc: svc, jobs: jobs, uploads: uploads, maxUpload: maxUpload}
}

func (h *JobHandler) enabled(w http.ResponseWriter) bool {
	if h.jobs == nil || h.uploads == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "unavailable", Detail: "async jobs are not enabled"})
		return false
	}
	return true
}

// Submit handles POST /jobs/summarize-audio.
func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}
	up, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	lang, err := h.svc.ResolveLanguage(up.Language)
	if err != nil {
		writeError(w, r, err)
		return
	}
	job := pipeline.Job{ID: uuid.NewString(), Filename: up.Filename, Data: up.Data, Options: pipeline.Options{Language: lang}}
	if err := h.svc.Validate(job); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	key := storage.UploadKey(job.ID)
	if err := h.uploads.Upload(ctx, key, bytes.NewReader(up.Data), up.ContentType); err != nil {
		writeError(w, r, &pipeline.Error{Stage: pipeline.StageReceive, Kind: pipeline.KindStorage, Message: "failed to store audio", Err: err})
		return
	}

	err = h.jobs.EnqueueAudioProcess(ctx, queue.AudioProcessPayload{
		ProcessID:  job.ID,
		Filename:   up.Filename,
		StorageKey: key,
		Language:   lang,
		Enhance:    up.Live,
		Summarize:  true,
	})
	switch {
	case errors.Is(err, queue.ErrDuplicateJob):
		// The upload under this key belongs to the task already queued.
		slog.Info("audio job already queued", "process_id", job.ID)
	case err != nil:
		if derr := h.uploads.Delete(context.WithoutCancel(ctx), key); derr != nil {
			slog.Warn("failed to delete orphaned upload", "key", key, "error", derr)
		}
		writeError(w, r, &pipeline.Error{Stage: pipeline.StageReceive, Kind: pipeline.KindStorage, Message: "failed to queue job", Err: err})
		return
	default:
		slog.Info("audio job queued", "process_id", job.ID, "bytes", len(up.Data))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"success":    true,
		"process_id": job.ID,
		"status":     queue.StatusQueued,
	})
}

// Status handles GET /jobs/{processId}. A stored record wins over queue
// state, so results stay visible after the queue forgets the task.
func (h *JobHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "processId")

	rec, err := h.svc.Lookup(r.Context(), id)
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"process_id": id,
			"status":     queue.StatusCompleted,
			"transcript": rec.Transcript,
			"summary":    rec.Summary,
		})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	if !h.enabled(w) {
		return
	}

	status, lastErr, err := h.jobs.Status(id)
	if err != nil {
		writeError(w, r, &pipeline.Error{Stage: pipeline.StageLookup, Kind: pipeline.KindStorage, Message: "failed to load job", Err: err})
		return
	}
	if status == queue.StatusUnknown {
		writeError(w, r, &pipeline.Error{Stage: pipeline.StageLookup, Kind: pipeline.KindNotFound, Message: "process ID not found"})
		return
	}

	body := map[string]any{"process_id": id, "status": status}
	if status == queue.StatusFailed && lastErr != "" {
		slog.Warn("job failed", "process_id", id, "error", lastErr)
		body["detail"] = "job failed"
	}
	writeJSON(w, http.StatusOK, body)
}
