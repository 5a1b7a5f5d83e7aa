package ollama

import (
	"context"
	"fmt"
	"math"
	"time"
)

// testTopP is fixed so test runs vary on temperature alone.
const testTopP = 0.9

// TestRequest describes one prompt test run. Nil optionals fall back to
// the client defaults; an explicit zero temperature is honored.
type TestRequest struct {
	SystemPrompt   string
	UserInput      string
	Model          string
	Temperature    *float64
	TimeoutSeconds *int
}

// TestResult carries the model output together with every parameter
// that was actually used, so the caller can display the resolved run.
type TestResult struct {
	Response      string  `json:"response"`
	ExecutionTime float64 `json:"execution_time"`
	Model         string  `json:"model"`
	Temperature   float64 `json:"temperature"`
	Timeout       int     `json:"timeout"`
	SystemPrompt  string  `json:"system_prompt"`
	UserInput     string  `json:"user_input"`
}

// TestPrompt runs a system prompt against a user message and measures
// the round trip. The system prompt and user input are framed into a
// single completion prompt with User/Assistant labels.
func (c *Client) TestPrompt(ctx context.Context, req TestRequest) (*TestResult, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	temperature := c.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	timeout := c.timeout
	if req.TimeoutSeconds != nil {
		timeout = time.Duration(*req.TimeoutSeconds) * time.Second
	}

	fullPrompt := fmt.Sprintf("%s\n\nUser: %s\n\nAssistant:", req.SystemPrompt, req.UserInput)

	c.logger.Debugw("Testing prompt",
		"model", model,
		"temperature", temperature,
		"timeout", timeout,
		"input_length", len(req.UserInput),
	)

	start := time.Now()
	response, err := c.generate(ctx, generateRequest{
		Model:  model,
		Prompt: fullPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: temperature,
			TopP:        testTopP,
		},
	}, timeout)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	return &TestResult{
		Response:      response,
		ExecutionTime: math.Round(elapsed.Seconds()*100) / 100,
		Model:         model,
		Temperature:   temperature,
		Timeout:       int(timeout / time.Second),
		SystemPrompt:  req.SystemPrompt,
		UserInput:     req.UserInput,
	}, nil
}
