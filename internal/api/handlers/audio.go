package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/podcastsummarizer/internal/pipeline"
)

type AudioHandler struct {
	svc       Pipeline
	maxUpload int64
}

func NewAudioHandler(svc Pipeline, maxUpload int64) *AudioHandler {
	return &AudioHandler{svc: svc, maxUpload: maxUpload}
}

func (h *AudioHandler) run(w http.ResponseWriter, r *http.Request, summarize bool) (*pipeline.Result, bool) {
	up, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	res, err := h.svc.Process(r.Context(), pipeline.Job{
		Filename: up.Filename,
		Data:     up.Data,
		Options: pipeline.Options{
			Language:  up.Language,
			Enhance:   up.Live,
			Summarize: summarize,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return res, true
}

// Transcribe handles POST /transcribe/.
func (h *AudioHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"transcript": res.Transcript.CorrectedText,
		"language":   res.Transcript.LanguageCode,
		"process_id": res.ProcessID,
	})
}

// SummarizeAudio handles POST /summarize-audio/.
func (h *AudioHandler) SummarizeAudio(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"transcript": res.Transcript.CorrectedText,
		"summary":    res.Summary.Text,
		"process_id": res.ProcessID,
	})
}

// UploadAudio handles POST /upload-audio/, the original combined endpoint.
func (h *AudioHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "File processed successfully",
		"process_id": res.ProcessID,
		"transcript": res.Transcript.CorrectedText,
		"summary":    res.Summary.Text,
	})
}
