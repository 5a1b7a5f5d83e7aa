package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// HandleStatic serves the frontend. Unknown non-API paths fall back to
// index.html so client-side routing works.
func (s *Server) HandleStatic(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if s.staticDir == "" {
		writeError(w, http.StatusNotFound, "No frontend directory configured")
		return
	}

	// Resolve inside the static dir only
	relPath := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if relPath == "." || relPath == "" {
		relPath = "index.html"
	}
	if strings.HasPrefix(relPath, "..") {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	fullPath := filepath.Join(s.staticDir, relPath)
	if info, err := os.Stat(fullPath); err != nil || info.IsDir() {
		fullPath = filepath.Join(s.staticDir, "index.html")
		if _, err := os.Stat(fullPath); err != nil {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
	}

	http.ServeFile(w, r, fullPath)
}
