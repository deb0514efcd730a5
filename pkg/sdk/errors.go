package sdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

var (
	// ErrTimeout is returned when a single attempt exceeds the configured
	// timeout. It is retried by the default policy.
	ErrTimeout = errors.New("sdk: request timed out")

	// ErrUnknownEndpoint is returned for endpoint names missing from the
	// catalog.
	ErrUnknownEndpoint = errors.New("sdk: unknown endpoint")

	// ErrMissingParam is returned when a path parameter has no value.
	ErrMissingParam = errors.New("sdk: missing path parameter")

	// ErrNoCookie is returned by a CookieSource that holds no cookie.
	ErrNoCookie = errors.New("sdk: no session cookie stored")
)

// APIError is a non-2xx response.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Body is the response body decoded as JSON, or nil when it was empty
	// or not valid JSON.
	Body any
	// Code is the server's machine readable error code, when given.
	Code string
	// Message is the server's error message, or the status text.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sdk: status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("sdk: status %d: %s", e.Status, e.Message)
}

// Temporary reports whether the status is worth retrying: 408, 429 and
// every status outside the 4xx range.
func (e *APIError) Temporary() bool {
	switch {
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 400 && e.Status < 500:
		return false
	default:
		return true
	}
}

// newAPIError builds an APIError from a raw response body.
func newAPIError(status int, raw []byte) *APIError {
	e := &APIError{Status: status, Message: http.StatusText(status)}
	if len(raw) == 0 {
		return e
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return e
	}
	e.Body = body

	fields, ok := body.(map[string]any)
	if !ok {
		return e
	}
	if code, ok := fields["code"].(string); ok {
		e.Code = code
	}
	for _, key := range []string{"error", "message"} {
		if msg, ok := fields[key].(string); ok && msg != "" {
			e.Message = msg
			break
		}
	}
	return e
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// decodeError is a successful response whose body could not be decoded.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "sdk: decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }
