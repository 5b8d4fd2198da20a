package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds JSON request bodies. Text length itself is left to
// the hosted services.
const maxJSONBody = 10 << 20

type TextHandler struct {
	svc Pipeline
}

func NewTextHandler(svc Pipeline) *TextHandler {
	return &TextHandler{svc: svc}
}

type summarizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Summarize handles POST /summarize/.
func (h *TextHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Summarize(r.Context(), req.Text, req.Language)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": res.Text})
}

type speechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// TextToSpeech handles POST /text-to-speech.
func (h *TextHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Synthesize(r.Context(), req.Text, req.Voice)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"audio":        base64.StdEncoding.EncodeToString(res.Audio),
		"content_type": res.ContentType,
		"message":      "Speech generated successfully",
	})
}

// Summary handles GET /summary/{processId}.
func (h *TextHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "processId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"transcript": rec.Transcript,
		"summary":    rec.Summary,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}
