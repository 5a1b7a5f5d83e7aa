package ollama

import (
	"context"
	"encoding/json"
	"net/http"
)

// ConnectionStatus describes the reachability of the Ollama server. It
// is always returned, never an error, so handlers can report the
// failure detail to the UI.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Endpoint  string `json:"endpoint"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// CheckConnection probes the server through the normal retry pipeline
// and reports the outcome.
func (c *Client) CheckConnection(ctx context.Context) ConnectionStatus {
	if _, err := c.do(ctx, http.MethodGet, "/api/tags", nil, c.timeout); err != nil {
		return ConnectionStatus{
			Connected: false,
			Endpoint:  c.endpoint,
			Status:    "error",
			Message:   err.Error(),
		}
	}
	return ConnectionStatus{
		Connected: true,
		Endpoint:  c.endpoint,
		Status:    "healthy",
		Message:   "Successfully connected to Ollama",
	}
}

// Healthy is the boolean form of CheckConnection for startup checks.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.do(ctx, http.MethodGet, "/api/tags", nil, c.timeout)
	return err == nil
}

// ServerVersion returns the Ollama server version string, used at
// startup to warn when the server is older than the supported minimum.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/version", nil, c.timeout)
	if err != nil {
		return "", err
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &DecodeError{Err: err}
	}
	return payload.Version, nil
}
