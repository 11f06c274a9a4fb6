package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/manvel7/Antd-small-test/internal/api"
)

// StatusNetwork is the status reported for requests that got no response.
const StatusNetwork = 0

// MessageTimeout is the message of every TimeoutError.
const MessageTimeout = "Request timeout"

// NetworkError means the request failed before any response arrived.
// Context cancellation by the caller is reported as a NetworkError too.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Status returns 0.
func (e *NetworkError) Status() int { return StatusNetwork }

// TimeoutError means the request exceeded the client timeout.
type TimeoutError struct {
	Method  string
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s %s after %s", MessageTimeout, e.Method, e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Status returns 408.
func (e *TimeoutError) Status() int { return http.StatusRequestTimeout }

// APIError is a non-2xx answer from the server.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Code is the machine-readable error code from the envelope, if any.
	Code string

	// Message is the server's message, or "HTTP <status>: <text>" when the
	// body carried none.
	Message string

	// Fields lists rejected request fields for validation failures.
	Fields []api.FieldError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// ConflictError means a mutation targeted a record that no longer exists
// on the server, so the local mirror is out of date.
type ConflictError struct {
	ID  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: user %q no longer exists on the server", e.ID)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Status returns the HTTP-like status of err: 0 for network failures,
// 408 for timeouts, the response status for API errors and -1 otherwise.
func Status(err error) int {
	var s interface{ Status() int }
	if errors.As(err, &s) {
		return s.Status()
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return -1
}

// IsNetworkError reports whether err is a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status == http.StatusNotFound
	}
	return false
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
