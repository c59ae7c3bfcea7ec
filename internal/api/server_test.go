package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/answerdesk/answerdesk/internal/log"
	"github.com/answerdesk/answerdesk/internal/rag"
)

func TestNewServer(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Service:     &mockService{},
		Logger:      log.NewNop(),
		CORSOrigins: []string{"http://localhost:3000"},
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	if srv.Handler() == nil {
		t.Fatal("NewServer().Handler() returned nil")
	}
}

func TestNewServer_MissingService(t *testing.T) {
	if _, err := NewServer(ServerConfig{Logger: log.NewNop()}); err == nil {
		t.Fatal("NewServer(nil service) expected error, got nil")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	rec := doJSON(t, srv, http.MethodGet, "/api/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	rec := doJSON(t, srv, http.MethodGet, "/api/stats", nil)
	id := rec.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID", id)
	}
}

func TestRequestIDMiddleware_ReusesValid(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	want := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("X-Request-ID", want)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != want {
		t.Errorf("X-Request-ID = %q, want %q", got, want)
	}
}

func TestRequestIDMiddleware_RejectsInvalid(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid; injection")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	if got == "not-a-uuid; injection" {
		t.Error("invalid request ID echoed back")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("replacement ID %q is not a UUID", got)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Service:     &mockService{},
		Logger:      log.NewNop(),
		CORSOrigins: []string{"http://localhost:3000"},
		RateBurst:   1000,
	})
	if err != nil {
		t.Fatalf("NewServer() = %v", err)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Service:     &mockService{},
		Logger:      log.NewNop(),
		CORSOrigins: []string{"http://localhost:3000"},
		RateBurst:   1000,
	})
	if err != nil {
		t.Fatalf("NewServer() = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin leaked to unknown origin: %q", got)
	}
}

func TestRateLimit_Exhaustion(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Service:   &mockService{},
		Logger:    log.NewNop(),
		RateBurst: 2,
	})
	if err != nil {
		t.Fatalf("NewServer() = %v", err)
	}

	var last int
	for range 5 {
		rec := doJSON(t, srv, http.MethodGet, "/api/stats", nil)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst = %d, want 429", last)
	}
}

func TestRateLimit_HealthExempt(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Service:   &mockService{},
		Logger:    log.NewNop(),
		RateBurst: 1,
	})
	if err != nil {
		t.Fatalf("NewServer() = %v", err)
	}

	for range 10 {
		rec := doJSON(t, srv, http.MethodGet, "/health", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("health check rate limited: %d", rec.Code)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	svc := &mockService{statsFn: func(ctx context.Context) (*rag.Stats, error) {
		panic("boom")
	}}
	srv := newTestServer(t, svc)

	rec := doJSON(t, srv, http.MethodGet, "/api/stats", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody[ErrorResponse](t, rec)
	if body.Error != "internal_error" {
		t.Errorf("error code = %q", body.Error)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		realIP     string
		forwarded  string
		trustProxy bool
		want       string
	}{
		{"direct", "203.0.113.7:1234", "", "", false, "203.0.113.7"},
		{"ignores headers without trust", "203.0.113.7:1234", "198.51.100.1", "", false, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:80", "198.51.100.1", "", true, "198.51.100.1"},
		{"x-forwarded-for first", "10.0.0.1:80", "", "198.51.100.2, 10.0.0.1", true, "198.51.100.2"},
		{"invalid header falls back", "10.0.0.1:80", "not-an-ip", "", true, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := clientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
