package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptlab/promptlab/logger"
)

// setupHTTPRoutes configures all HTTP handlers
func (s *Server) setupHTTPRoutes() {
	s.mux.HandleFunc("/api/health", s.wrap(s.HandleHealth))
	s.mux.HandleFunc("/api/system/info", s.wrap(s.HandleSystemInfo))
	s.mux.HandleFunc("/api/config", s.wrap(s.HandleConfig))

	s.mux.HandleFunc("/api/prompts", s.wrap(s.HandlePrompts))         // List/create prompts (GET/POST)
	s.mux.HandleFunc("/api/prompts/", s.wrap(s.HandlePrompt))         // Prompt CRUD (GET/PUT/DELETE /api/prompts/{id})
	s.mux.HandleFunc("/api/export-library", s.wrap(s.HandleExport))   // Export the whole library (GET)
	s.mux.HandleFunc("/api/import-library", s.wrap(s.HandleImport))   // Import an exported library (POST)

	s.mux.HandleFunc("/api/models", s.wrap(s.HandleModels))           // List installed models (GET, ?refresh=true)
	s.mux.HandleFunc("/api/models/cache", s.wrap(s.HandleModelCache)) // Cache info (GET) and clear (DELETE)
	s.mux.HandleFunc("/api/ollama/status", s.wrap(s.HandleOllamaStatus))

	s.mux.HandleFunc("/api/refine-prompt", s.wrap(s.HandleRefine)) // Objective to system prompt (POST)
	s.mux.HandleFunc("/api/run-test", s.wrap(s.HandleRunTest))     // Test a prompt against a message (POST)

	s.mux.HandleFunc("/", s.wrap(s.HandleStatic))
}

// wrap composes the standard middleware chain around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return s.corsMiddleware(s.requestMiddleware(next))
}

// requestMiddleware assigns a request ID and logs API request timing.
func (s *Server) requestMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next(w, r)
			return
		}

		requestID := uuid.NewString()[:8]
		ctx := logger.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next(w, r.WithContext(ctx))

		s.logger.Debugw("API request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// corsMiddleware adds CORS headers using the configured allowed origins
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// originAllowed checks an Origin header against the configured allow
// list using prefix matching so any port number is accepted.
func (s *Server) originAllowed(origin string) bool {
	allowed := s.cfg.GetServerAllowedOrigins()
	if len(allowed) == 0 {
		return strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "http://127.0.0.1")
	}
	for _, allowedOrigin := range allowed {
		if strings.HasPrefix(origin, allowedOrigin) {
			return true
		}
	}
	return false
}
