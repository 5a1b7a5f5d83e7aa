// Package ollama is the HTTP client for a local Ollama server: request
// retry and error classification, the model-list cache, and the refine
// and test-run workflows built on top of /api/generate.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/promptlab/promptlab/am"
	"github.com/promptlab/promptlab/errors"
	"github.com/promptlab/promptlab/internal/httpclient"
)

const (
	// DefaultEndpoint is the stock Ollama listen address
	DefaultEndpoint = "http://localhost:11434"

	// DefaultModel is the fallback model when none is specified
	// Should match the default in am/defaults.go for consistency
	DefaultModel = "llama3.2:3b"

	// DefaultTemperature applies when neither config nor request set one.
	// An explicit 0.0 from either source is honored, never replaced.
	DefaultTemperature = 0.7

	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultCacheTTL   = 5 * time.Minute
)

// Client talks to a single Ollama server. It is safe for concurrent use.
type Client struct {
	endpoint    string
	model       string
	temperature float64
	timeout     time.Duration
	maxRetries  int
	httpClient  *httpclient.SaferClient
	metaPrompts *am.MetaPrompts
	logger      *zap.SugaredLogger

	// backoffUnit scales the 2^attempt retry delays. Overridden in tests
	// so retry paths run in milliseconds.
	backoffUnit time.Duration

	cacheTTL time.Duration
	cacheMu  sync.RWMutex
	cache    *modelsSnapshot
}

// Config holds Ollama client configuration
type Config struct {
	Endpoint        string
	Model           string
	Temperature     *float64 // nil = use default (0.7); explicit 0.0 is kept
	TimeoutSeconds  int      // 0 = use default (30s)
	MaxRetries      int      // 0 = use default (3)
	CacheTTLSeconds int      // 0 = use default (300s)
	MetaPrompts     *am.MetaPrompts    // nil = built-in refinement template
	Logger          *zap.SugaredLogger // Structured logger (nil = nop logger)
}

// NewClient creates an Ollama client with PromptLab defaults
func NewClient(config Config) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == nil {
		defaultTemp := DefaultTemperature
		config.Temperature = &defaultTemp
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(DefaultTimeout / time.Second)
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.CacheTTLSeconds <= 0 {
		config.CacheTTLSeconds = int(DefaultCacheTTL / time.Second)
	}

	metaPrompts := config.MetaPrompts
	if metaPrompts == nil {
		// Empty path never resolves to a file, so the built-in template
		// becomes active.
		metaPrompts, _ = am.LoadMetaPrompts("")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// Ollama is a local service, so private-IP blocking stays off. The
	// scheme allow-list and redirect cap still apply. Timeouts are set
	// per request so per-call overrides can exceed the default.
	blockPrivateIP := false
	saferClient := httpclient.NewSaferClientWithOptions(0, httpclient.SaferClientOptions{
		BlockPrivateIP: &blockPrivateIP,
	})

	return &Client{
		endpoint:    strings.TrimRight(config.Endpoint, "/"),
		model:       config.Model,
		temperature: *config.Temperature,
		timeout:     time.Duration(config.TimeoutSeconds) * time.Second,
		maxRetries:  config.MaxRetries,
		httpClient:  saferClient,
		metaPrompts: metaPrompts,
		logger:      logger,
		backoffUnit: time.Second,
		cacheTTL:    time.Duration(config.CacheTTLSeconds) * time.Second,
	}
}

// Endpoint returns the server address the client was configured with.
func (c *Client) Endpoint() string { return c.endpoint }

// Model returns the default model name.
func (c *Client) Model() string { return c.model }

// Temperature returns the default sampling temperature.
func (c *Client) Temperature() float64 { return c.temperature }

// do sends one API request with retry. Timeouts, connection failures,
// and 5xx responses are retried up to maxRetries total attempts with
// 2^attempt backoff between them; a 4xx fails immediately. On
// exhaustion the last classified failure is returned.
func (c *Client) do(ctx context.Context, method, path string, body any, timeout time.Duration) ([]byte, error) {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	url := c.endpoint + path
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := (1 << (attempt - 1)) * c.backoffUnit
			c.logger.Debugw("Retrying Ollama request",
				"attempt", attempt+1, "max_retries", c.maxRetries, "delay", delay, "path", path)
			time.Sleep(delay)
		}

		respBody, done, err := c.attempt(ctx, method, url, reqBody, timeout)
		if err == nil {
			if attempt > 0 {
				c.logger.Infow("Request succeeded after retries",
					"attempts", attempt+1, "path", path)
			}
			return respBody, nil
		}
		if done {
			return nil, err
		}

		c.logger.Warnw("Ollama request failed",
			"attempt", attempt+1, "max_retries", c.maxRetries,
			"error", err, "url", url)
		lastErr = err
	}

	return nil, lastErr
}

// attempt performs a single request. done=true means the error is final
// and must not be retried.
func (c *Client) attempt(ctx context.Context, method, url string, reqBody []byte, timeout time.Duration) (respBody []byte, done bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, bodyReader)
	if err != nil {
		return nil, true, err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, c.classifyTransportError(err, timeout)
	}
	defer resp.Body.Close()

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &ConnectionError{Endpoint: c.endpoint, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, true, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Client errors carry the status and body back to the caller
		// and are never retried.
		return nil, true, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	default:
		return nil, false, &ConnectionError{
			Endpoint: c.endpoint,
			Err:      errors.Newf("server returned status %d", resp.StatusCode),
		}
	}
}

// classifyTransportError sorts a transport failure into timeout vs
// connection so the caller sees the right failure kind after retries.
func (c *Client) classifyTransportError(err error, timeout time.Duration) error {
	if isTimeout(err) {
		return &TimeoutError{Timeout: timeout, Err: err}
	}
	return &ConnectionError{Endpoint: c.endpoint, Err: err}
}

func isTimeout(err error) bool {
	if netErr, ok := asNetError(err); ok && netErr.Timeout() {
		return true
	}
	if isErrno(err, syscall.ETIMEDOUT) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{"context deadline exceeded", "i/o timeout", "timeout awaiting"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

func asNetError(err error) (net.Error, bool) {
	var netErr net.Error
	for e := err; e != nil; e = unwrapOnce(e) {
		if ne, ok := e.(net.Error); ok {
			netErr = ne
			return netErr, true
		}
	}
	return nil, false
}

func isErrno(err error, errno syscall.Errno) bool {
	for e := err; e != nil; e = unwrapOnce(e) {
		if opErr, ok := e.(*net.OpError); ok {
			if sysErr, ok := opErr.Err.(syscall.Errno); ok && sysErr == errno {
				return true
			}
		}
		if sysErr, ok := e.(syscall.Errno); ok && sysErr == errno {
			return true
		}
	}
	return false
}

func unwrapOnce(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

// SetHTTPClient allows overriding the HTTP client for testing
// ⚠️ WARNING: Only use this in tests. Production code should use the default SSRF-safer client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = httpclient.WrapClient(client)
}

// SetBackoffUnit overrides the retry delay unit. Tests use this to keep
// exponential backoff in the millisecond range.
func (c *Client) SetBackoffUnit(unit time.Duration) {
	c.backoffUnit = unit
}
