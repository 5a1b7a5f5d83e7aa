package am

import "github.com/promptlab/promptlab/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.New("server.port cannot be 0 (omit for default port 5000)")
	}
	if c.Server.Port != nil && *c.Server.Port < 0 {
		return errors.Newf("server.port must be positive, got %d", *c.Server.Port)
	}

	if c.Ollama.Endpoint == "" {
		return errors.New("ollama.endpoint cannot be empty")
	}
	if c.Ollama.TimeoutSeconds < 0 {
		return errors.Newf("ollama.timeout_seconds must be >= 0, got %d", c.Ollama.TimeoutSeconds)
	}
	if c.Ollama.MaxRetries < 0 {
		return errors.Newf("ollama.max_retries must be >= 0, got %d", c.Ollama.MaxRetries)
	}
	if c.Ollama.CacheTTLSeconds < 0 {
		return errors.Newf("ollama.cache_ttl_seconds must be >= 0, got %d", c.Ollama.CacheTTLSeconds)
	}

	// Temperature range mirrors what the UI slider allows
	if c.Ollama.Temperature != nil && (*c.Ollama.Temperature < 0 || *c.Ollama.Temperature > 2) {
		return errors.Newf("ollama.temperature must be in [0, 2], got %f", *c.Ollama.Temperature)
	}

	return nil
}
