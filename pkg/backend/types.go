package backend

import "time"

// Message is a single message in a conversation.
// The same shape is used on the client-facing API, in the conversation
// store, and on the backend wire, so it is defined once here.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// ChatRequest is a backend-agnostic chat completion request.
type ChatRequest struct {
	// Model is the model identifier (e.g., "llama3.1", "qwen2.5-coder")
	Model string `json:"model"`

	// Messages is the full conversation, system messages first
	Messages []Message `json:"messages"`

	// Stream requests an incremental token stream instead of a single reply
	Stream bool `json:"stream"`
}

// ChatReply is a complete, non-streaming chat reply.
type ChatReply struct {
	// Model is the model that generated the reply
	Model string `json:"model"`

	// Content is the full generated text
	Content string `json:"content"`

	// EvalCount is the backend-reported completion token count, if any
	EvalCount *int `json:"eval_count,omitempty"`
}

// StreamChunk is one unit delivered on a streaming chat channel.
// A chunk may carry a delta, a completion marker, or both; Err is set
// on the final chunk when the stream failed.
type StreamChunk struct {
	// Delta is the incremental text in this chunk (may be empty)
	Delta string `json:"delta"`

	// Done marks backend-reported completion of the reply
	Done bool `json:"done"`

	// EvalCount is the completion token count, reported with Done if at all
	EvalCount *int `json:"eval_count,omitempty"`

	// Err is set if the stream failed; no further chunks follow it
	Err error `json:"-"`
}

// Health tracks the observed health of a backend.
type Health struct {
	// IsHealthy indicates whether the backend is currently considered healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential failed checks or requests
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this backend
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// Config is the configuration for a single backend instance.
type Config struct {
	// Name is the client-facing provider identifier (e.g., "local-backend")
	Name string

	// Type is the backend protocol type; "ollama" is the only supported type
	Type string

	// BaseURL is the backend base URL (e.g., "http://localhost:11434")
	BaseURL string

	// Timeout bounds non-streaming requests and the connection phase of
	// streaming ones; zero means no client-level timeout
	Timeout time.Duration

	// HealthCheckInterval is how often the background checker probes the backend
	HealthCheckInterval time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
