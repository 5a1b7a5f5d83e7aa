package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "promptlab.db")

	// Server configuration defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
	v.SetDefault("server.static_dir", "frontend")

	// Ollama defaults
	v.SetDefault("ollama.endpoint", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2:3b")
	v.SetDefault("ollama.temperature", 0.7)
	v.SetDefault("ollama.timeout_seconds", 30)
	v.SetDefault("ollama.max_retries", 3)
	v.SetDefault("ollama.cache_ttl_seconds", 300)
	v.SetDefault("ollama.min_server_version", ">= 0.1.0")

	// Meta-prompt template defaults
	v.SetDefault("prompts.path", "prompts.yaml")
}

// BindSensitiveEnvVars explicitly binds configuration to environment variables
// used by deployment scripts and CI.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "PROMPTLAB_DATABASE_PATH")
	v.BindEnv("ollama.endpoint", "PROMPTLAB_OLLAMA_ENDPOINT")
	v.BindEnv("ollama.model", "PROMPTLAB_OLLAMA_MODEL")
}
