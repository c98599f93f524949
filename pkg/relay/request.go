package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chordlab/relay/pkg/relay/types"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ParseStreamChatRequest parses an HTTP request body into a
// StreamChatRequest. It enforces the body size limit, validates the JSON,
// and validates required fields. Nothing is mutated anywhere before this
// returns successfully.
func ParseStreamChatRequest(r *http.Request) (*types.StreamChatRequest, error) {
	var req types.StreamChatRequest
	if err := parseBody(r, &req); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, requestErrorFromValidation(err)
	}

	return &req, nil
}

// ParseChatRequest parses an HTTP request body into a non-streaming
// ChatRequest.
func ParseChatRequest(r *http.Request) (*types.ChatRequest, error) {
	var req types.ChatRequest
	if err := parseBody(r, &req); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, requestErrorFromValidation(err)
	}

	return &req, nil
}

// ParseInto reads a size-limited request body and unmarshals it into dst,
// without field validation. Handlers with their own body shapes use this.
func ParseInto(r *http.Request, dst interface{}) error {
	return parseBody(r, dst)
}

// parseBody reads a size-limited request body and unmarshals it into dst.
func parseBody(r *http.Request, dst interface{}) error {
	limitedReader := io.LimitReader(r.Body, MaxRequestBodySize)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if len(body) >= MaxRequestBodySize {
		return &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	return nil
}

// requestErrorFromValidation wraps a field validation failure.
func requestErrorFromValidation(err error) error {
	if valErr, ok := err.(*types.ValidationError); ok {
		return &RequestError{
			Message: valErr.Message,
			Code:    types.CodeInvalidValue,
			Param:   valErr.Field,
		}
	}
	return err
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string and the
// middleware generates one.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to the JSON error envelope.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}
