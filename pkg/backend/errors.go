package backend

import "fmt"

// UnavailableError indicates the backend connection could not be established.
// The relay rolls back the optimistic store write when it sees this.
type UnavailableError struct {
	// Backend is the name of the backend that could not be reached
	Backend string

	// Cause is the underlying transport error
	Cause error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("backend %q unavailable: %v", e.Backend, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RejectedError indicates the backend answered with a non-success status.
// Body carries the backend-provided detail, capped at a few kilobytes.
type RejectedError struct {
	// Backend is the name of the backend that rejected the request
	Backend string

	// StatusCode is the HTTP status the backend returned
	StatusCode int

	// Body is the response body, truncated if oversized
	Body string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend %q rejected request (status %d): %s", e.Backend, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("backend %q rejected request (status %d)", e.Backend, e.StatusCode)
}

// StreamError indicates a failure after the stream was established:
// an error record from the backend, a transport read failure, or the
// stream ending before a completion marker arrived.
type StreamError struct {
	// Backend is the name of the backend where the error occurred
	Backend string

	// Message is the error message
	Message string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %q stream error: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("backend %q stream error: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ParseError indicates a malformed non-streaming response.
// Mid-stream parse failures are not errors; the framer drops those lines.
type ParseError struct {
	// Backend is the name of the backend that returned the malformed response
	Backend string

	// RawResponse is the response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("backend %q response parse error: %v", e.Backend, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates an invalid request caught before it was sent.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ConfigError indicates an invalid backend configuration.
type ConfigError struct {
	// Backend is the name of the backend with invalid configuration
	Backend string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("backend %q configuration error for field %q: %s",
		e.Backend, e.Field, e.Message)
}
