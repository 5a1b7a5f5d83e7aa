package server

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/promptlab/promptlab/version"
)

// HandleHealth serves GET /api/health with per-component status.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	dbStatus := "healthy"
	if err := s.db.PingContext(r.Context()); err != nil {
		dbStatus = fmt.Sprintf("error: %v", err)
	}

	ollamaStatus := "unknown"
	if status := s.ollama.CheckConnection(r.Context()); status.Connected {
		if models, err := s.ollama.ListModels(r.Context(), true); err == nil {
			ollamaStatus = fmt.Sprintf("healthy (%d models)", len(models))
		} else {
			ollamaStatus = "healthy"
		}
	} else {
		ollamaStatus = fmt.Sprintf("error: %s", status.Message)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    stateString(s.getState()),
		"service":   "PromptLab Backend",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version.Version,
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"components": map[string]string{
			"database": dbStatus,
			"ollama":   ollamaStatus,
		},
		"config": map[string]any{
			"ollama_endpoint": s.cfg.Ollama.Endpoint,
			"database_path":   s.cfg.GetDatabasePath(),
		},
	})
}

// HandleSystemInfo serves GET /api/system/info for debugging.
func (s *Server) HandleSystemInfo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	info := map[string]any{
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
		"app":        version.Get(),
	}

	if hostInfo, err := host.Info(); err == nil {
		info["hostname"] = hostInfo.Hostname
		info["platform"] = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		info["os"] = hostInfo.OS
		info["arch"] = hostInfo.KernelArch
		info["uptime_seconds"] = hostInfo.Uptime
	} else {
		s.logger.Warnw("Failed to read host info", "error", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info["memory"] = map[string]any{
			"total_mb":     vm.Total / (1024 * 1024),
			"available_mb": vm.Available / (1024 * 1024),
			"used_percent": fmt.Sprintf("%.1f", vm.UsedPercent),
		}
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info["processor"] = cpus[0].ModelName
	}

	writeJSON(w, http.StatusOK, info)
}

// HandleConfig serves GET /api/config with the effective settings. The
// response only carries values the frontend needs.
func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"server": map[string]any{
			"host": s.cfg.Server.Host,
			"port": s.cfg.GetServerPort(),
		},
		"ollama": map[string]any{
			"endpoint":        s.cfg.Ollama.Endpoint,
			"model":           s.cfg.Ollama.Model,
			"temperature":     s.cfg.GetOllamaTemperature(),
			"timeout_seconds": s.cfg.Ollama.TimeoutSeconds,
			"max_retries":     s.cfg.Ollama.MaxRetries,
		},
		"database": map[string]any{
			"path": s.cfg.GetDatabasePath(),
		},
		"prompts": map[string]any{
			"path": s.cfg.Prompts.Path,
		},
	})
}
