package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"chordlab/relay/pkg/backendfactory"
	"chordlab/relay/pkg/relay"
	"chordlab/relay/pkg/relay/types"
)

// ProvidersHandler serves GET /api/providers: one descriptor per configured
// backend, so the client can populate its provider and model pickers.
type ProvidersHandler struct {
	registry BackendRegistry
}

// NewProvidersHandler creates the provider discovery handler.
func NewProvidersHandler(registry BackendRegistry) *ProvidersHandler {
	return &ProvidersHandler{registry: registry}
}

// providerListResponse is the body of GET /api/providers.
type providerListResponse struct {
	Providers []backendfactory.Descriptor `json:"providers"`
}

// ServeHTTP implements http.Handler.
func (h *ProvidersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Method %s not allowed. Use GET instead.", r.Method),
			"method",
			"method_not_allowed",
		))
		return
	}

	resp := &providerListResponse{Providers: h.registry.Descriptors(ctx)}
	if err := relay.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write provider list", "error", err)
	}
}
