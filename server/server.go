// Package server exposes the PromptLab HTTP API: prompt library CRUD,
// Ollama-backed refine and test runs, model listing, library
// export/import, and the static frontend.
package server

import (
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/promptlab/promptlab/am"
	"github.com/promptlab/promptlab/library"
	"github.com/promptlab/promptlab/ollama"
)

// ShutdownTimeout bounds graceful shutdown before in-flight requests
// are abandoned.
const ShutdownTimeout = 10 * time.Second

// ServerState tracks the lifecycle for health reporting.
type ServerState int32

const (
	ServerStateRunning ServerState = iota
	ServerStateDraining
	ServerStateStopped
)

// Server is the PromptLab HTTP server. Each instance owns its mux so
// tests can run servers side by side.
type Server struct {
	cfg    *am.Config
	db     *sql.DB
	store  *library.Store
	ollama *ollama.Client
	logger *zap.SugaredLogger

	mux        *http.ServeMux
	httpServer *http.Server
	staticDir  string
	startedAt  time.Time
	state      atomic.Int32

	promptsWatcher *am.PromptsWatcher
}

// New wires a server from its dependencies.
func New(cfg *am.Config, db *sql.DB, ollamaClient *ollama.Client, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Server{
		cfg:       cfg,
		db:        db,
		store:     library.NewStore(db, logger),
		ollama:    ollamaClient,
		logger:    logger,
		mux:       http.NewServeMux(),
		staticDir: cfg.Server.StaticDir,
		startedAt: time.Now(),
	}
	s.setupHTTPRoutes()
	return s
}

// Store exposes the prompt store, used by CLI commands that share a
// server instance.
func (s *Server) Store() *library.Store { return s.store }

// Handler returns the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// SetPromptsWatcher attaches a meta-prompts file watcher whose
// lifetime the server manages.
func (s *Server) SetPromptsWatcher(w *am.PromptsWatcher) {
	s.promptsWatcher = w
}

func (s *Server) getState() ServerState {
	return ServerState(s.state.Load())
}

func (s *Server) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", stateString(newState))
}

func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
