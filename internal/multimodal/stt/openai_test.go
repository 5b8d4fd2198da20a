package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenAISTTTranscribe(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotForm = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotForm[k] = v[0]
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"text":     "  hello world  ",
			"language": "english",
			"duration": 1.5,
		})
	}))
	defer srv.Close()

	audioPath := filepath.Join(t.TempDir(), "canonical.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewOpenAISTT(OpenAISTTConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	resp, err := p.Transcribe(context.Background(), TranscriptionRequest{
		FilePath: audioPath,
		Language: "en",
		Prompt:   "podcast episode",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if resp.Text != "hello world" {
		t.Fatalf("text = %q", resp.Text)
	}
	if resp.Duration != 1.5 {
		t.Fatalf("duration = %v", resp.Duration)
	}
	if gotForm["model"] != "whisper-1" || gotForm["language"] != "en" || gotForm["prompt"] != "podcast episode" {
		t.Fatalf("form = %v", gotForm)
	}
}

func TestOpenAISTTTranscribeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	audioPath := filepath.Join(t.TempDir(), "a.wav")
	os.WriteFile(audioPath, []byte("RIFF"), 0o600)

	p := NewOpenAISTT(OpenAISTTConfig{APIKey: "sk-test", BaseURL: srv.URL})
	_, err := p.Transcribe(context.Background(), TranscriptionRequest{FilePath: audioPath})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error = %v", err)
	}
}

func TestLocalSTTDefaults(t *testing.T) {
	l := NewLocalSTT(LocalSTTConfig{})
	if l.Name() != "local-whisper" {
		t.Fatalf("name = %q", l.Name())
	}
	if l.cfg.Model != "whisper-1" {
		t.Fatalf("model = %q", l.cfg.Model)
	}
}
