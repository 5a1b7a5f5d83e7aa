package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	TopK          *int     `json:"top_k,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// generate runs one non-streaming completion and returns the trimmed
// response text. A whitespace-only completion is treated as a
// connection failure: the server answered but produced nothing usable.
func (c *Client) generate(ctx context.Context, req generateRequest, timeout time.Duration) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/generate", req, timeout)
	if err != nil {
		return "", err
	}

	var payload generateResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &DecodeError{Err: err}
	}

	text := strings.TrimSpace(payload.Response)
	if text == "" {
		return "", &ConnectionError{
			Endpoint: c.endpoint,
			Err:      errEmptyResponse,
		}
	}
	return text, nil
}
