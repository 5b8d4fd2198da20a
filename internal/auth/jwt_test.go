package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}})
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func protected(m *JWTMiddleware) http.Handler {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := ""
		if c := ClaimsFromContext(r.Context()); c != nil {
			sub = c.Subject
		}
		w.Write([]byte("ok:" + sub))
	}))
}

func TestJWTMiddleware(t *testing.T) {
	m := NewJWTMiddleware(testSecret)

	tests := []struct {
		name   string
		header string
		status int
		detail string
	}{
		{"missing", "", http.StatusUnauthorized, "missing authorization token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "missing authorization token"},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized, "invalid token"},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), time.Now().Add(time.Hour)), http.StatusUnauthorized, "invalid token"},
		{"wrong alg", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(testSecret), time.Now().Add(time.Hour)), http.StatusUnauthorized, "invalid token"},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(-time.Hour)), http.StatusUnauthorized, "token expired"},
		{"valid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(time.Hour)), http.StatusOK, ""},
		{"lowercase scheme", "bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), time.Now().Add(time.Hour)), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transcribe/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(m).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.detail != "" && !strings.Contains(rec.Body.String(), tt.detail) {
				t.Fatalf("body = %s, want detail %q", rec.Body.String(), tt.detail)
			}
			if tt.status == http.StatusOK && rec.Body.String() != "ok:user-1" {
				t.Fatalf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestJWTMiddlewareDisabled(t *testing.T) {
	m := NewJWTMiddleware("")
	if m.Enabled() {
		t.Fatal("empty secret should disable auth")
	}
	rec := httptest.NewRecorder()
	protected(m).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
