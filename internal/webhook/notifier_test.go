package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNotifySignsPayload(t *testing.T) {
	var (
		body    []byte
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		headers = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "topsecret", time.Second)
	err := n.Notify(context.Background(), Event{Type: EventJobCompleted, ProcessID: "p1", Status: "completed"})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if got, want := headers.Get("X-Webhook-Signature"), Sign(body, "topsecret"); got != want {
		t.Fatalf("signature = %q, want %q", got, want)
	}
	if headers.Get("X-Webhook-Event") != EventJobCompleted || headers.Get("X-Webhook-ID") == "" {
		t.Fatalf("headers = %v", headers)
	}

	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.ProcessID != "p1" || ev.Timestamp.IsZero() || ev.ErrorKind != "" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestNotifyWithoutSecretIsUnsigned(t *testing.T) {
	var signed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signed = r.Header.Get("X-Webhook-Signature") != ""
	}))
	defer srv.Close()

	if err := NewNotifier(srv.URL, "", time.Second).Notify(context.Background(), Event{Type: EventJobFailed}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if signed {
		t.Fatal("expected no signature header")
	}
}

func TestNotifyNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewNotifier(srv.URL, "s", time.Second).Notify(context.Background(), Event{Type: EventJobFailed}); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestSignKnownVector(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	got := Sign([]byte("The quick brown fox jumps over the lazy dog"), "key")
	want := "sha256=f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"
	if got != want {
		t.Fatalf("Sign() = %q", got)
	}
}
