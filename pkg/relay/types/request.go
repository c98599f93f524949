package types

import "chordlab/relay/pkg/backend"

// StreamChatRequest is the body of POST /api/chat/stream: one client turn
// to attach to a session's conversation and relay to the backend.
type StreamChatRequest struct {
	// Provider is the configured backend to use (e.g., "local-backend").
	Provider string `json:"provider"`

	// Model is the model identifier to request from the backend.
	Model string `json:"model"`

	// SessionID scopes the conversation this turn belongs to.
	SessionID string `json:"sessionId"`

	// SystemMessages, when present, replaces the session's stored system
	// prefix before the turn is sent. Optional.
	SystemMessages []backend.Message `json:"systemMessages,omitempty"`

	// History, when present, replaces the session's stored non-system
	// history wholesale. Optional.
	History []backend.Message `json:"history,omitempty"`

	// Message is the text of the user's turn.
	Message string `json:"message"`
}

// Validate checks the required fields of a streaming chat request.
// Provider support is checked separately against the backend registry.
func (r *StreamChatRequest) Validate() error {
	if r.Provider == "" {
		return &ValidationError{
			Field:   "provider",
			Message: "provider is required",
		}
	}

	if r.Model == "" {
		return &ValidationError{
			Field:   "model",
			Message: "model is required",
		}
	}

	if r.SessionID == "" {
		return &ValidationError{
			Field:   "sessionId",
			Message: "sessionId is required",
		}
	}

	if r.Message == "" {
		return &ValidationError{
			Field:   "message",
			Message: "message is required",
		}
	}

	return nil
}

// ChatRequest is the body of POST /api/chat: a one-shot, non-streaming
// completion over a caller-supplied conversation. It touches no session
// state.
type ChatRequest struct {
	// Provider is the configured backend to use.
	Provider string `json:"provider"`

	// Model is the model identifier to request from the backend.
	Model string `json:"model"`

	// Messages is the full conversation to complete.
	Messages []backend.Message `json:"messages"`
}

// Validate checks the required fields of a non-streaming chat request.
func (r *ChatRequest) Validate() error {
	if r.Provider == "" {
		return &ValidationError{
			Field:   "provider",
			Message: "provider is required",
		}
	}

	if r.Model == "" {
		return &ValidationError{
			Field:   "model",
			Message: "model is required",
		}
	}

	if len(r.Messages) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "messages must contain at least one message",
		}
	}

	return nil
}

// ChatResponse is the reply of POST /api/chat.
type ChatResponse struct {
	// Message is the assistant's complete reply.
	Message backend.Message `json:"message"`
}

// ValidationError indicates a request field that failed validation.
type ValidationError struct {
	// Field is the name of the invalid field.
	Field string

	// Message describes what is invalid about the field.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
