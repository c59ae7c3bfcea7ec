// Package api exposes the knowledge base over a JSON HTTP API: ingest
// endpoints, retrieval-augmented chat, stats and admin operations.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/answerdesk/answerdesk/internal/i18n"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Service     Service          // Required
	Logger      *slog.Logger     // Optional: defaults to slog.Default
	Translator  *i18n.Translator // Optional: defaults to English
	CORSOrigins []string         // Allowed origins for CORS
	TrustProxy  bool             // Trust X-Real-IP/X-Forwarded-For headers
	RateBurst   int              // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tr := cfg.Translator
	if tr == nil {
		tr = i18n.New(i18n.LangEN)
	}

	h := &handler{svc: cfg.Service, tr: tr, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("POST /api/ingest/text", h.ingestText)
	mux.HandleFunc("POST /api/ingest/url", h.ingestURL)
	mux.HandleFunc("POST /api/ingest/file", h.ingestFile)
	mux.HandleFunc("POST /api/chat", h.chat)
	mux.HandleFunc("GET /api/stats", h.stats)
	mux.HandleFunc("DELETE /api/clear", h.clear)

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes. CORS must be before RateLimit so preflight OPTIONS gets
	// proper CORS headers.
	var stack http.Handler = mux
	stack = rateLimitMiddleware(rl, cfg.TrustProxy, tr, logger)(stack)
	stack = corsMiddleware(cfg.CORSOrigins)(stack)
	stack = loggingMiddleware(logger)(stack)
	stack = requestIDMiddleware()(stack)
	stack = recoveryMiddleware(logger)(stack)

	// Health probes bypass the middleware stack so rate limiting never
	// starves container orchestration checks.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", h.health)
	topMux.Handle("/", stack)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
