package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"chordlab/relay/pkg/agents"
	"chordlab/relay/pkg/relay"
	"chordlab/relay/pkg/relay/types"
)

// AgentListHandler serves GET /api/agents.
type AgentListHandler struct {
	store AgentStore
}

// NewAgentListHandler creates the agent listing handler.
func NewAgentListHandler(store AgentStore) *AgentListHandler {
	return &AgentListHandler{store: store}
}

// agentListResponse is the body of GET /api/agents.
type agentListResponse struct {
	Agents []agents.Info `json:"agents"`
}

// ServeHTTP implements http.Handler.
func (h *AgentListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Method %s not allowed. Use GET instead.", r.Method),
			"method",
			"method_not_allowed",
		))
		return
	}

	resp := &agentListResponse{Agents: h.store.List()}
	if err := relay.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write agent list", "error", err)
	}
}

// AgentHandler serves GET and PUT on /api/agents/{id}.
type AgentHandler struct {
	store AgentStore
}

// NewAgentHandler creates the single-agent handler.
func NewAgentHandler(store AgentStore) *AgentHandler {
	return &AgentHandler{store: store}
}

// agentPrefix is the route prefix the handler strips to find the agent id.
const agentPrefix = "/api/agents/"

// saveAgentRequest is the body of PUT /api/agents/{id}.
type saveAgentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
	Prompt      string `json:"prompt"`
}

// ServeHTTP implements http.Handler.
func (h *AgentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := strings.TrimPrefix(r.URL.Path, agentPrefix)
	if id == "" || strings.Contains(id, "/") {
		writeError(ctx, w, types.NewNotFoundError(
			"Agent not found",
			types.CodeAgentNotFound,
		))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.put(w, r, id)
	default:
		writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Method %s not allowed. Use GET or PUT instead.", r.Method),
			"method",
			"method_not_allowed",
		))
	}
}

// get serves GET /api/agents/{id}.
func (h *AgentHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	profile, err := h.store.Get(id)
	if err != nil {
		var notFound *agents.NotFoundError
		if errors.As(err, &notFound) {
			writeError(ctx, w, types.NewNotFoundError(
				fmt.Sprintf("Agent %q not found", id),
				types.CodeAgentNotFound,
			))
			return
		}
		slog.ErrorContext(ctx, "failed to load agent profile",
			"agent", id,
			"error", err,
		)
		writeError(ctx, w, types.NewServerError("Failed to load agent profile"))
		return
	}

	if err := relay.WriteJSONResponse(w, http.StatusOK, profile); err != nil {
		slog.ErrorContext(ctx, "failed to write agent profile", "error", err)
	}
}

// put serves PUT /api/agents/{id}.
func (h *AgentHandler) put(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	var req saveAgentRequest
	if err := relay.ParseInto(r, &req); err != nil {
		writeError(ctx, w, relay.HandleError(err))
		return
	}

	if req.Prompt == "" {
		writeError(ctx, w, types.NewInvalidRequestError(
			"prompt is required",
			"prompt",
			types.CodeMissingField,
		))
		return
	}

	profile := &agents.Profile{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Model:       req.Model,
		Prompt:      req.Prompt,
	}

	if err := h.store.Save(id, profile); err != nil {
		slog.ErrorContext(ctx, "failed to save agent profile",
			"agent", id,
			"error", err,
		)
		writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Failed to save agent: %v", err),
			"id",
			types.CodeInvalidValue,
		))
		return
	}

	slog.InfoContext(ctx, "agent profile updated", "agent", id)

	if err := relay.WriteJSONResponse(w, http.StatusOK, profile); err != nil {
		slog.ErrorContext(ctx, "failed to write agent profile", "error", err)
	}
}
