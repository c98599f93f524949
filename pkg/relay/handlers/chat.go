package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chordlab/relay/pkg/backend"
	"chordlab/relay/pkg/relay"
	"chordlab/relay/pkg/relay/middleware"
	"chordlab/relay/pkg/relay/types"
	"chordlab/relay/pkg/session"
	"chordlab/relay/pkg/usage"
)

// tracerName identifies the relay's spans to the tracer provider.
const tracerName = "chordlab/relay/handlers"

// StreamChatHandler relays one streaming chat turn: POST /api/chat/stream.
//
// Per request it walks a fixed sequence: validate, take the session's keyed
// lock, write the user turn into the store, open the backend stream, forward
// deltas as SSE events, then commit the assistant reply or roll the user
// turn back. Client disconnects exit silently: no terminal event, no
// rollback.
type StreamChatHandler struct {
	registry BackendRegistry
	store    *session.Store
	locks    *session.KeyedMutex
	recorder TurnRecorder
	metrics  TurnMetrics
}

// NewStreamChatHandler creates the streaming chat handler. The recorder and
// metrics may be nil; both are optional observers.
func NewStreamChatHandler(registry BackendRegistry, store *session.Store, locks *session.KeyedMutex, recorder TurnRecorder, metrics TurnMetrics) *StreamChatHandler {
	return &StreamChatHandler{
		registry: registry,
		store:    store,
		locks:    locks,
		recorder: recorder,
		metrics:  metrics,
	}
}

// ServeHTTP implements http.Handler.
func (h *StreamChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	startTime := time.Now()

	if r.Method != http.MethodPost {
		errResp := types.NewInvalidRequestError(
			fmt.Sprintf("Method %s not allowed. Use POST instead.", r.Method),
			"method",
			"method_not_allowed",
		)
		writeError(ctx, w, errResp)
		return
	}

	req, err := relay.ParseStreamChatRequest(r)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse stream chat request",
			"request_id", requestID,
			"error", err,
		)
		writeError(ctx, w, relay.HandleError(err))
		return
	}

	be, ok := h.registry.Get(req.Provider)
	if !ok {
		writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Unknown provider %q", req.Provider),
			"provider",
			types.CodeUnknownProvider,
		))
		return
	}

	slog.InfoContext(ctx, "processing stream chat turn",
		"request_id", requestID,
		"provider", req.Provider,
		"model", req.Model,
		"session_id", req.SessionID,
	)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "relay.turn",
		trace.WithAttributes(
			attribute.String("relay.provider", req.Provider),
			attribute.String("relay.model", req.Model),
			attribute.String("relay.session_id", req.SessionID),
		))
	defer span.End()

	// Hold the session's lock across the whole optimistic-write / stream /
	// commit-or-rollback sequence; a second turn on the same session waits.
	unlock := h.locks.Lock(req.SessionID)
	defer unlock()

	conversation := h.prepareConversation(req)

	finish := func(outcome string, deltas, contentChars int, tokens *int) {
		duration := time.Since(startTime)
		span.SetAttributes(attribute.String("relay.outcome", outcome))

		if h.recorder != nil {
			h.recorder.Record(&usage.TurnRecord{
				RequestID:    requestID,
				SessionID:    req.SessionID,
				Provider:     req.Provider,
				Model:        req.Model,
				Outcome:      outcome,
				Deltas:       deltas,
				ContentChars: contentChars,
				Tokens:       tokens,
				DurationMS:   duration.Milliseconds(),
			})
		}
		if h.metrics != nil {
			tokenCount := 0
			if tokens != nil {
				tokenCount = *tokens
			}
			h.metrics.RecordTurn(req.Provider, req.Model, outcome, duration, deltas, tokenCount)
		}

		slog.InfoContext(ctx, "stream chat turn finished",
			"request_id", requestID,
			"provider", req.Provider,
			"model", req.Model,
			"session_id", req.SessionID,
			"outcome", outcome,
			"deltas", deltas,
			"content_chars", contentChars,
			"duration_ms", duration.Milliseconds(),
		)
	}

	// Headers go out before the backend call; failures past this point are
	// delivered as error events, never as a late status change.
	relay.SetSSEHeaders(w)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	chunks, err := be.StreamChat(ctx, &backend.ChatRequest{
		Model:    req.Model,
		Messages: conversation,
		Stream:   true,
	})
	if err != nil {
		if ctx.Err() != nil {
			// The client went away while the upstream connection was being
			// opened; same silent exit as a mid-stream disconnect.
			slog.WarnContext(ctx, "client disconnected during stream open",
				"request_id", requestID,
				"session_id", req.SessionID,
			)
			finish(usage.OutcomeCancelled, 0, 0, nil)
			return
		}
		slog.ErrorContext(ctx, "backend stream open failed",
			"request_id", requestID,
			"provider", req.Provider,
			"model", req.Model,
			"error", err,
		)
		h.store.RemoveLast(req.SessionID)
		writeEvent(ctx, w, types.ErrorEvent{Error: relay.EventMessage(err)})
		finish(usage.OutcomeError, 0, 0, nil)
		return
	}

	var assistant strings.Builder
	deltas := 0
	doneSeen := false
	var tokens *int
	var streamErr error

	for chunk := range chunks {
		if chunk.Err != nil {
			streamErr = chunk.Err
			break
		}

		if chunk.Done {
			doneSeen = true
			if chunk.EvalCount != nil {
				tokens = chunk.EvalCount
			}
		}

		if chunk.Delta == "" {
			continue
		}

		// Observe cancellation before each forward; a disconnected client
		// gets no further events and no rollback.
		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "client disconnected mid-stream",
				"request_id", requestID,
				"session_id", req.SessionID,
				"deltas_sent", deltas,
			)
			finish(usage.OutcomeCancelled, deltas, assistant.Len(), nil)
			return
		default:
		}

		assistant.WriteString(chunk.Delta)
		if err := writeEvent(ctx, w, types.DeltaEvent{Delta: chunk.Delta}); err != nil {
			finish(usage.OutcomeCancelled, deltas, assistant.Len(), nil)
			return
		}
		deltas++
	}

	if ctx.Err() != nil {
		// The upstream read was torn down by the client going away, not by
		// the backend failing.
		finish(usage.OutcomeCancelled, deltas, assistant.Len(), nil)
		return
	}

	if streamErr == nil && !doneSeen {
		streamErr = &backend.StreamError{
			Backend: req.Provider,
			Message: "stream ended before completion",
		}
	}

	if streamErr != nil {
		slog.ErrorContext(ctx, "backend stream failed",
			"request_id", requestID,
			"provider", req.Provider,
			"model", req.Model,
			"session_id", req.SessionID,
			"deltas_sent", deltas,
			"error", streamErr,
		)
		h.store.RemoveLast(req.SessionID)
		writeEvent(ctx, w, types.ErrorEvent{Error: relay.EventMessage(streamErr)})
		finish(usage.OutcomeError, deltas, 0, nil)
		return
	}

	content := assistant.String()
	h.store.Append(req.SessionID, backend.Message{
		Role:    backend.RoleAssistant,
		Content: content,
	})
	writeEvent(ctx, w, types.DoneEvent{
		Done:    true,
		Content: content,
		Tokens:  tokens,
	})
	finish(usage.OutcomeComplete, deltas, len(content), tokens)
}

// prepareConversation applies the caller's overrides and the new user turn
// to the session store, then reads back the conversation to send. Must be
// called with the session's keyed lock held.
//
// Caller-supplied system messages replace the stored system prefix;
// caller-supplied history replaces the stored non-system history. Both are
// optional; absent fields leave the stored state alone. The user turn is
// appended last, before the backend call, so a failed turn has exactly one
// message to roll back.
func (h *StreamChatHandler) prepareConversation(req *types.StreamChatRequest) []backend.Message {
	if req.SystemMessages != nil {
		h.store.ReplaceSystemPrefix(req.SessionID, req.SystemMessages)
	}

	if req.History != nil {
		prefix := systemOnly(h.store.Read(req.SessionID))
		h.store.SetExact(req.SessionID, append(prefix, req.History...))
	}

	h.store.Append(req.SessionID, backend.Message{
		Role:    backend.RoleUser,
		Content: req.Message,
	})

	return h.store.Read(req.SessionID)
}

// systemOnly filters a conversation down to its system messages.
func systemOnly(messages []backend.Message) []backend.Message {
	kept := make([]backend.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == backend.RoleSystem {
			kept = append(kept, m)
		}
	}
	return kept
}

// ChatHandler serves the non-streaming completion route: POST /api/chat.
// It completes a caller-supplied conversation in one round trip and touches
// no session state.
type ChatHandler struct {
	registry BackendRegistry
}

// NewChatHandler creates the non-streaming chat handler.
func NewChatHandler(registry BackendRegistry) *ChatHandler {
	return &ChatHandler{registry: registry}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	startTime := time.Now()

	if r.Method != http.MethodPost {
		errResp := types.NewInvalidRequestError(
			fmt.Sprintf("Method %s not allowed. Use POST instead.", r.Method),
			"method",
			"method_not_allowed",
		)
		writeError(ctx, w, errResp)
		return
	}

	req, err := relay.ParseChatRequest(r)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse chat request",
			"request_id", requestID,
			"error", err,
		)
		writeError(ctx, w, relay.HandleError(err))
		return
	}

	be, ok := h.registry.Get(req.Provider)
	if !ok {
		writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Unknown provider %q", req.Provider),
			"provider",
			types.CodeUnknownProvider,
		))
		return
	}

	reply, err := be.SendChat(ctx, &backend.ChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
	})
	if err != nil {
		slog.ErrorContext(ctx, "backend chat request failed",
			"request_id", requestID,
			"provider", req.Provider,
			"model", req.Model,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
		writeError(ctx, w, relay.HandleError(err))
		return
	}

	slog.InfoContext(ctx, "chat request succeeded",
		"request_id", requestID,
		"provider", req.Provider,
		"model", req.Model,
		"content_chars", len(reply.Content),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	if err := relay.WriteJSONResponse(w, http.StatusOK, &types.ChatResponse{
		Message: backend.Message{
			Role:    backend.RoleAssistant,
			Content: reply.Content,
		},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			"request_id", requestID,
			"error", err,
		)
	}
}
