package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/promptlab/promptlab/errors"
	"github.com/promptlab/promptlab/library"
)

// promptRequest is the request body for create and update.
type promptRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	SystemPrompt string   `json:"system_prompt"`
	Objective    string   `json:"objective"`
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature"`
}

func (pr *promptRequest) toPrompt(defaultTemperature float64) *library.Prompt {
	temperature := defaultTemperature
	if pr.Temperature != nil {
		temperature = *pr.Temperature
	}
	return &library.Prompt{
		Name:         pr.Name,
		Description:  pr.Description,
		SystemPrompt: pr.SystemPrompt,
		Objective:    pr.Objective,
		Model:        pr.Model,
		Temperature:  temperature,
	}
}

// HandlePrompts serves GET (list, optional ?search=) and POST (create)
// on /api/prompts.
func (s *Server) HandlePrompts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		search := r.URL.Query().Get("search")
		prompts, err := s.store.List(r.Context(), search)
		if err != nil {
			s.logger.Errorw("Failed to list prompts", "error", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"prompts": prompts,
			"count":   len(prompts),
		})

	case http.MethodPost:
		var req promptRequest
		if readJSON(w, r, &req) != nil {
			return
		}

		created, err := s.store.Create(r.Context(), req.toPrompt(s.cfg.GetOllamaTemperature()))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.logger.Infow("Prompt created", "prompt_id", created.ID, "name", created.Name)
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandlePrompt serves GET, PUT, and DELETE on /api/prompts/{id}.
func (s *Server) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/prompts/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid prompt ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		prompt, err := s.store.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if prompt == nil {
			writeError(w, http.StatusNotFound, errors.NewNotFoundError("prompt %d not found", id).Error())
			return
		}
		writeJSON(w, http.StatusOK, prompt)

	case http.MethodPut:
		var req promptRequest
		if readJSON(w, r, &req) != nil {
			return
		}

		updated, err := s.store.Update(r.Context(), id, req.toPrompt(s.cfg.GetOllamaTemperature()))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		s.logger.Infow("Prompt updated", "prompt_id", id, "name", updated.Name)
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.store.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		s.logger.Infow("Prompt deleted", "prompt_id", id)
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	}
}

// HandleExport serves GET /api/export-library.
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	doc, err := s.store.Export(r.Context())
	if err != nil {
		s.logger.Errorw("Library export failed", "error", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="promptlab-library.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// HandleImport serves POST /api/import-library. Conflicting names are
// skipped and reported, never overwritten.
func (s *Server) HandleImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var doc library.ExportDocument
	if readJSON(w, r, &doc) != nil {
		return
	}

	summary, err := s.store.Import(r.Context(), &doc)
	if err != nil {
		s.logger.Errorw("Library import failed", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
