package server

import (
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/promptlab/promptlab/ollama"
)

// HandleModels serves GET /api/models. ?refresh=true bypasses the
// model cache.
func (s *Server) HandleModels(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	useCache := r.URL.Query().Get("refresh") != "true"
	models, err := s.ollama.ListModels(r.Context(), useCache)
	if err != nil {
		s.logger.Errorw("Failed to list models", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"models": models,
		"count":  len(models),
		"cache":  s.ollama.ModelCacheInfo(),
	})
}

// HandleModelCache serves GET (info) and DELETE (clear) on
// /api/models/cache.
func (s *Server) HandleModelCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.ollama.ModelCacheInfo())
	case http.MethodDelete:
		s.ollama.ClearModelCache()
		s.logger.Infow("Model cache cleared")
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleOllamaStatus serves GET /api/ollama/status.
func (s *Server) HandleOllamaStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.ollama.CheckConnection(r.Context()))
}

type refineRequest struct {
	Objective string `json:"objective"`
	Model     string `json:"model"`
}

// HandleRefine serves POST /api/refine-prompt: expand a one-line
// objective into a detailed system prompt.
func (s *Server) HandleRefine(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req refineRequest
	if readJSON(w, r, &req) != nil {
		return
	}
	if strings.TrimSpace(req.Objective) == "" {
		writeError(w, http.StatusBadRequest, "objective is required")
		return
	}

	refined, err := s.ollama.Refine(r.Context(), req.Objective, req.Model)
	if err != nil {
		s.logger.Errorw("Prompt refinement failed", "error", err, "model", req.Model)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"objective":      req.Objective,
		"refined_prompt": refined,
	})
}

type runTestRequest struct {
	SystemPrompt string   `json:"system_prompt"`
	UserInput    string   `json:"user_input"`
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature"`
	Timeout      *int     `json:"timeout"`
}

// testYAMLConfig is the run configuration echoed back as YAML for the
// result view.
type testYAMLConfig struct {
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	Timeout      int     `yaml:"timeout"`
	SystemPrompt string  `yaml:"system_prompt"`
	UserInput    string  `yaml:"user_input"`
}

// HandleRunTest serves POST /api/run-test: run a system prompt against
// a user message and report the response with the resolved parameters.
func (s *Server) HandleRunTest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req runTestRequest
	if readJSON(w, r, &req) != nil {
		return
	}
	if strings.TrimSpace(req.SystemPrompt) == "" {
		writeError(w, http.StatusBadRequest, "system_prompt is required")
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		writeError(w, http.StatusBadRequest, "user_input is required")
		return
	}

	result, err := s.ollama.TestPrompt(r.Context(), ollama.TestRequest{
		SystemPrompt:   req.SystemPrompt,
		UserInput:      req.UserInput,
		Model:          req.Model,
		Temperature:    req.Temperature,
		TimeoutSeconds: req.Timeout,
	})
	if err != nil {
		s.logger.Errorw("Prompt test failed", "error", err, "model", req.Model)
		writeServiceError(w, err)
		return
	}

	yamlConfig, err := yaml.Marshal(testYAMLConfig{
		Model:        result.Model,
		Temperature:  result.Temperature,
		Timeout:      result.Timeout,
		SystemPrompt: result.SystemPrompt,
		UserInput:    result.UserInput,
	})
	if err != nil {
		s.logger.Warnw("Failed to render test config YAML", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":      result,
		"yaml_config": string(yamlConfig),
	})
}
