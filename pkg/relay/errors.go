package relay

import (
	"errors"
	"fmt"

	"chordlab/relay/pkg/backend"
	"chordlab/relay/pkg/relay/types"
)

// HandleError converts the relay's error taxonomy to the JSON error
// envelope. It maps backend errors, validation errors, and internal errors
// to appropriate HTTP status codes.
//
// Example usage:
//
//	if err != nil {
//	    errResp := HandleError(err)
//	    WriteErrorResponse(w, errResp)
//	    return
//	}
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var valErr *backend.ValidationError
	if errors.As(err, &valErr) {
		return types.NewInvalidRequestError(valErr.Message, valErr.Field, types.CodeInvalidValue)
	}

	var unavailErr *backend.UnavailableError
	if errors.As(err, &unavailErr) {
		return types.NewServiceUnavailableError(
			fmt.Sprintf("Backend %q is unavailable", unavailErr.Backend),
		)
	}

	var rejErr *backend.RejectedError
	if errors.As(err, &rejErr) {
		return types.NewBadGatewayError(rejErr.Error())
	}

	var streamErr *backend.StreamError
	if errors.As(err, &streamErr) {
		return types.NewBadGatewayError(streamErr.Error())
	}

	var parseErr *backend.ParseError
	if errors.As(err, &parseErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Failed to parse backend response: %v", parseErr),
		)
	}

	// Default to internal server error for unknown errors
	return types.NewServerError(
		"An internal error occurred. Please try again later.",
	)
}

// EventMessage renders an error as the human-readable text of a terminal
// ErrorEvent. The SSE path cannot change the HTTP status after streaming
// starts, so failures collapse into this single message.
func EventMessage(err error) string {
	resp := HandleError(err)
	return resp.Error.Message
}
