package backend

import "context"

// Backend is the interface all model-serving backend adapters implement.
// The only adapter shipped today speaks the Ollama newline-delimited-JSON
// convention; the interface keeps the relay independent of that detail.
//
// All methods accept a context.Context for cancellation. Implementations
// must respect cancellation and return promptly when the context ends.
//
// Example usage:
//
//	be, err := ollama.New(config)
//	if err != nil {
//	    return err
//	}
//	defer be.Close()
//
//	chunks, err := be.StreamChat(ctx, &backend.ChatRequest{
//	    Model:    "llama3.1",
//	    Messages: conversation,
//	})
//	if err != nil {
//	    return err
//	}
//	for chunk := range chunks {
//	    if chunk.Err != nil {
//	        return chunk.Err
//	    }
//	    fmt.Print(chunk.Delta)
//	}
type Backend interface {
	// SendChat sends a non-streaming chat request and returns the full reply.
	// A single failure is surfaced to the caller; no retries are attempted.
	SendChat(ctx context.Context, req *ChatRequest) (*ChatReply, error)

	// StreamChat opens a streaming chat request and returns a channel of
	// incremental chunks. The channel is always closed when the stream ends;
	// a failed stream delivers exactly one chunk with Err set as its final
	// chunk. Cancelling the context stops the stream and releases the
	// underlying connection.
	StreamChat(ctx context.Context, req *ChatRequest) (<-chan *StreamChunk, error)

	// ListModels returns the model identifiers the backend currently serves.
	ListModels(ctx context.Context) ([]string, error)

	// HealthCheck probes the backend once, synchronously.
	// Returns nil if the backend is reachable.
	HealthCheck(ctx context.Context) error

	// GetName returns the client-facing provider name (e.g., "local-backend").
	GetName() string

	// GetType returns the backend protocol type (e.g., "ollama").
	GetType() string

	// GetConfig returns the backend's configuration.
	GetConfig() Config

	// IsHealthy returns the current health status as tracked by the
	// background checker and recent request outcomes.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() Health

	// Close releases the backend's resources. The backend must not be used
	// after Close returns.
	Close() error
}
