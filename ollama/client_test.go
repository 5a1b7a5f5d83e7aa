package ollama

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptlab/promptlab/errors"
)

// newTestClient wires a client to an httptest server with millisecond
// backoff so retry paths run fast.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{Endpoint: srv.URL})
	client.SetHTTPClient(srv.Client())
	client.SetBackoffUnit(time.Millisecond)
	return client, srv
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, DefaultEndpoint, client.Endpoint())
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, DefaultTemperature, client.Temperature())
	assert.Equal(t, DefaultTimeout, client.timeout)
	assert.Equal(t, DefaultMaxRetries, client.maxRetries)
	assert.Equal(t, DefaultCacheTTL, client.cacheTTL)
}

func TestNewClientExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	client := NewClient(Config{Temperature: &zero})
	assert.Equal(t, 0.0, client.Temperature())
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://localhost:11434/"})
	assert.Equal(t, "http://localhost:11434", client.Endpoint())
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))

	_, err := client.do(context.Background(), http.MethodGet, "/api/tags", nil, client.timeout)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoClientErrorFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`model "missing" not found`))
	}))

	_, err := client.do(context.Background(), http.MethodGet, "/api/tags", nil, client.timeout)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "not found")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestDoExhaustionReturnsLastError(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.do(context.Background(), http.MethodGet, "/api/tags", nil, client.timeout)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, IsConnectionError(err))
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
	assert.Contains(t, err.Error(), "502")
}

func TestDoBackoffTiming(t *testing.T) {
	unit := 10 * time.Millisecond
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	client.SetBackoffUnit(unit)

	start := time.Now()
	_, err := client.do(context.Background(), http.MethodGet, "/api/tags", nil, client.timeout)
	elapsed := time.Since(start)

	require.NoError(t, err)
	// Two failures cost 1 unit then 2 units of backoff before the
	// third attempt succeeds.
	assert.GreaterOrEqual(t, elapsed, 3*unit)
	assert.Less(t, elapsed, 20*unit)
}

func TestDoConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	client := NewClient(Config{Endpoint: endpoint})
	client.SetBackoffUnit(time.Millisecond)

	_, err := client.do(context.Background(), http.MethodGet, "/api/tags", nil, client.timeout)
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, endpoint, connErr.Endpoint)
}

// flakyTransport fails the first n round trips with a connection error,
// then delegates to the real transport.
type flakyTransport struct {
	remaining atomic.Int32
	next      http.RoundTripper
}

func (ft *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if ft.remaining.Add(-1) >= 0 {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	}
	return ft.next.RoundTrip(req)
}

func TestDoRecoversAfterConnectionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"llama3.2:3b","size":2097152}]}`))
	}))
	t.Cleanup(srv.Close)

	ft := &flakyTransport{next: http.DefaultTransport}
	ft.remaining.Store(2)

	unit := 10 * time.Millisecond
	client := NewClient(Config{Endpoint: srv.URL})
	client.SetHTTPClient(&http.Client{Transport: ft})
	client.SetBackoffUnit(unit)

	start := time.Now()
	models, err := client.ListModels(context.Background(), true)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "llama3.2:3b", models[0].Name)
	assert.GreaterOrEqual(t, elapsed, 3*unit, "expected 1 unit + 2 units of backoff")
}

// timeoutError satisfies net.Error with Timeout() true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type timeoutTransport struct{}

func (timeoutTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, timeoutError{}
}

func TestDoTimeoutClassification(t *testing.T) {
	client := NewClient(Config{Endpoint: "http://localhost:11434", TimeoutSeconds: 5})
	client.SetHTTPClient(&http.Client{Transport: timeoutTransport{}})
	client.SetBackoffUnit(time.Millisecond)

	_, err := client.do(context.Background(), http.MethodGet, "/api/tags", nil, client.timeout)
	require.Error(t, err)

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, 5*time.Second, timeoutErr.Timeout)
	assert.True(t, IsTimeoutError(err))
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}
