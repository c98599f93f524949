package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler serves GET /healthz. It reports process liveness plus a
// backend head count; the status stays "ok" even with zero healthy backends
// so orchestrators do not restart the relay for a down model server.
type HealthHandler struct {
	registry BackendRegistry
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(registry BackendRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"backends": map[string]interface{}{
			"total":   h.registry.Count(),
			"healthy": h.registry.HealthyCount(),
		},
		"timestamp": time.Now().Unix(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
