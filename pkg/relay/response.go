package relay

import (
	"encoding/json"
	"fmt"
	"net/http"

	"chordlab/relay/pkg/relay/types"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the content-type header and reports encoding failures.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes the JSON error envelope with the status code
// derived from the error type. Only usable before the response has been
// hijacked into an event stream; after SSE headers are sent, failures go
// out as ErrorEvent frames instead.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	statusCode := errResp.Error.HTTPStatusCode()
	return WriteJSONResponse(w, statusCode, errResp)
}

// SetSSEHeaders sets the headers for a Server-Sent Events push stream.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// WriteEvent writes one ClientEvent as a single SSE frame:
//
//	data: {"delta":"he"}
//
// followed by a blank line, and flushes immediately so every event reaches
// the client before the next one is processed. Events must be written in
// emission order; the terminal event is always the last frame.
func WriteEvent(w http.ResponseWriter, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event frame: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	return nil
}
