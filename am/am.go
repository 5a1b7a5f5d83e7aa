// Package am holds PromptLab application configuration: loading, defaults,
// validation, and the meta-prompt template used by prompt refinement.
package am

import "fmt"

// Config represents the core PromptLab configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	Prompts  PromptsConfig  `mapstructure:"prompts"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the PromptLab web server
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           *int     `mapstructure:"port"` // nil = default 5000, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	StaticDir      string   `mapstructure:"static_dir"` // Frontend assets directory
}

// Server port constants
const (
	DefaultServerPort  = 5000 // Matches the port the frontend expects
	FallbackServerPort = 5050 // Used when the default port is taken
)

// OllamaConfig configures the local model server connection
type OllamaConfig struct {
	Endpoint         string   `mapstructure:"endpoint"`           // e.g., "http://localhost:11434"
	Model            string   `mapstructure:"model"`              // Default model for refine and test runs
	Temperature      *float64 `mapstructure:"temperature"`        // Default sampling temperature (nil = 0.7)
	TimeoutSeconds   int      `mapstructure:"timeout_seconds"`    // Request timeout in seconds
	MaxRetries       int      `mapstructure:"max_retries"`        // Total attempts for transient failures
	CacheTTLSeconds  int      `mapstructure:"cache_ttl_seconds"`  // Model list cache lifetime
	MinServerVersion string   `mapstructure:"min_server_version"` // Semver constraint checked at startup (warn only)
}

// PromptsConfig configures the meta-prompt template source
type PromptsConfig struct {
	Path string `mapstructure:"path"` // Path to prompts.yaml (empty = built-in template)
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "promptlab.db" // Fallback default
	}
	return c.Database.Path
}

// GetServerPort returns the configured port, or the default when unset
func (c *Config) GetServerPort() int {
	if c.Server.Port == nil {
		return DefaultServerPort
	}
	return *c.Server.Port
}

// GetServerAllowedOrigins returns the allowed CORS origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return []string{
			"http://localhost",
			"https://localhost",
			"http://127.0.0.1",
			"https://127.0.0.1",
		}
	}
	return c.Server.AllowedOrigins
}

// GetOllamaTemperature returns the default sampling temperature
func (c *Config) GetOllamaTemperature() float64 {
	if c.Ollama.Temperature == nil {
		return 0.7
	}
	return *c.Ollama.Temperature
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Ollama: {Endpoint: %s, Model: %s}}",
		c.Database.Path, c.Ollama.Endpoint, c.Ollama.Model)
}
