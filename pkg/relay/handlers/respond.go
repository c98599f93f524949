package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"chordlab/relay/pkg/relay"
	"chordlab/relay/pkg/relay/types"
)

// writeError writes the JSON error envelope, logging write failures.
func writeError(ctx context.Context, w http.ResponseWriter, errResp *types.ErrorResponse) {
	if err := relay.WriteErrorResponse(w, errResp); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// writeEvent writes one SSE event frame, logging write failures. The error
// is returned so stream loops can treat it as a gone client.
func writeEvent(ctx context.Context, w http.ResponseWriter, event interface{}) error {
	if err := relay.WriteEvent(w, event); err != nil {
		slog.ErrorContext(ctx, "failed to write event frame", "error", err)
		return err
	}
	return nil
}
