package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/promptlab/promptlab/errors"
)

// Start runs the HTTP server on the requested port, falling back to an
// alternative when it is taken. Blocks until the server stops.
func (s *Server) Start(port int, openBrowserFunc func(url string)) error {
	actualPort, err := findAvailablePort(port)
	if err != nil {
		return errors.Wrap(err, "failed to find available port")
	}

	if actualPort != port {
		s.logger.Infow("Port in use, using alternative",
			"requested_port", port,
			"actual_port", actualPort,
		)
	}

	host := s.cfg.Server.Host
	if host == "" {
		host = "127.0.0.1"
	}

	url := fmt.Sprintf("http://localhost:%d", actualPort)
	s.logger.Infow("Server ready",
		"url", url,
		"port", actualPort,
		"address", host,
	)

	if openBrowserFunc != nil {
		s.logger.Infow("Opening browser", "url", url)
		openBrowserFunc(url)
	}

	s.setState(ServerStateRunning)
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, actualPort),
		Handler: s.mux,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "HTTP server failed")
	}
	return nil
}

// Stop gracefully shuts down the server and cleans up resources
func (s *Server) Stop() error {
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	if s.promptsWatcher != nil {
		if err := s.promptsWatcher.Stop(); err != nil {
			s.logger.Warnw("Failed to stop prompts watcher", "error", err)
		} else {
			s.logger.Infow("Prompts watcher stopped")
		}
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnw("Graceful shutdown timed out, forcing close", "error", err)
			s.httpServer.Close()
		}
	}

	s.setState(ServerStateStopped)
	s.logger.Infow("Server shutdown complete")
	return nil
}
