package ollama

import (
	"fmt"
	"time"

	"github.com/promptlab/promptlab/errors"
)

// errEmptyResponse marks a completion that came back whitespace-only.
var errEmptyResponse = errors.New("received empty response from model")

// ConnectionError indicates the model server could not be reached, kept
// failing with server errors until retries ran out, or returned an empty
// response where content was required.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to ollama at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is lets errors.Is match the service-unavailable sentinel.
func (e *ConnectionError) Is(target error) bool {
	return target == errors.ErrServiceUnavailable
}

// TimeoutError indicates the final attempt exceeded its deadline.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ollama request timed out after %s: %v", e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool {
	return target == errors.ErrTimeout
}

// StatusError indicates an HTTP 4xx from the model server. These are never
// retried; the original status and body are preserved for the caller.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == errors.ErrInvalidRequest
}

// DecodeError indicates the server responded with a payload that does not
// match the expected schema.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode ollama response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is or wraps a ConnectionError
func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// IsTimeoutError reports whether err is or wraps a TimeoutError
func IsTimeoutError(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// IsStatusError reports whether err is or wraps a StatusError
func IsStatusError(err error) bool {
	var target *StatusError
	return errors.As(err, &target)
}
