package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"chordlab/relay/pkg/backend"
)

// DefaultBaseURL is the conventional address of a local Ollama server.
const DefaultBaseURL = "http://localhost:11434"

// Client is the backend adapter for the Ollama chat API.
// It implements the backend.Backend interface over the newline-delimited
// JSON streaming convention: POST /api/chat, one JSON record per line.
type Client struct {
	*backend.HTTPBackend
}

// chatPayload is the wire request for /api/chat.
type chatPayload struct {
	Model    string            `json:"model"`
	Messages []backend.Message `json:"messages"`
	Stream   bool              `json:"stream"`
}

// tagsResponse is the wire response for /api/tags.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// New creates a new Ollama backend instance.
func New(config backend.Config) (*Client, error) {
	if config.Name == "" {
		return nil, &backend.ConfigError{
			Backend: "ollama",
			Field:   "name",
			Message: "backend name is required",
		}
	}

	if config.Type == "" {
		config.Type = "ollama"
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	// Local backends keep small pools
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 5
	}

	c := &Client{
		HTTPBackend: backend.NewHTTPBackend(config),
	}

	slog.Info("ollama backend initialized",
		"backend", config.Name,
		"base_url", config.BaseURL,
	)

	return c, nil
}

// SendChat sends a non-streaming chat request and returns the full reply.
func (c *Client) SendChat(ctx context.Context, req *backend.ChatRequest) (*backend.ChatReply, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	payload := &chatPayload{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
	}

	url := fmt.Sprintf("%s/api/chat", c.GetConfig().BaseURL)

	var resp Record
	if err := c.DoJSON(ctx, "POST", url, payload, &resp, nil); err != nil {
		return nil, err
	}

	// Some backends report failures in-band with a success status.
	if resp.Error != "" {
		return nil, &backend.RejectedError{
			Backend:    c.GetName(),
			StatusCode: http.StatusOK,
			Body:       resp.Error,
		}
	}

	reply := &backend.ChatReply{
		Model:     req.Model,
		Content:   resp.Message.Content,
		EvalCount: resp.EvalCount,
	}

	slog.Debug("chat request succeeded",
		"backend", c.GetName(),
		"model", req.Model,
		"content_chars", len(reply.Content),
	)

	return reply, nil
}

// StreamChat opens a streaming chat request. The returned channel yields
// one chunk per backend record, in wire order, and is closed when the
// stream ends for any reason. A failed stream ends with a chunk whose Err
// is set; a cancelled context ends it silently.
func (c *Client) StreamChat(ctx context.Context, req *backend.ChatRequest) (<-chan *backend.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	payload := &chatPayload{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.GetConfig().BaseURL)

	resp, err := c.Do(ctx, "POST", url, body, nil)
	if err != nil {
		return nil, err
	}

	chunks := make(chan *backend.StreamChunk, 100) // Buffered channel

	go c.readStream(ctx, resp.Body, chunks)

	return chunks, nil
}

// readStream consumes the response body through a Framer and forwards
// chunks until the stream is exhausted, fails, or the context ends.
func (c *Client) readStream(ctx context.Context, body io.ReadCloser, chunks chan<- *backend.StreamChunk) {
	defer close(chunks)
	defer body.Close()

	framer := NewFramer()
	defer func() {
		if framer.Dropped() > 0 {
			slog.Debug("dropped unparseable stream lines",
				"backend", c.GetName(),
				"dropped", framer.Dropped(),
			)
		}
	}()

	buf := make([]byte, 4096)
	doneSeen := false

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			for _, rec := range framer.Push(buf[:n]) {
				if stop := c.forward(ctx, chunks, rec, &doneSeen); stop {
					return
				}
			}
		}

		if readErr == nil {
			continue
		}

		if errors.Is(readErr, io.EOF) {
			if rec, ok := framer.Flush(); ok {
				if stop := c.forward(ctx, chunks, rec, &doneSeen); stop {
					return
				}
			}
			if !doneSeen {
				c.send(ctx, chunks, &backend.StreamChunk{Err: &backend.StreamError{
					Backend: c.GetName(),
					Message: "stream ended before completion",
				}})
			}
			return
		}

		if ctx.Err() != nil {
			// Cancellation tears down the body read; not a backend failure.
			return
		}

		c.send(ctx, chunks, &backend.StreamChunk{Err: &backend.StreamError{
			Backend: c.GetName(),
			Message: "failed to read stream",
			Cause:   readErr,
		}})
		return
	}
}

// forward interprets one record and sends at most one chunk. It reports
// whether streaming must stop: after an error record, or when the caller
// went away mid-send. A done record does not stop the read loop; the
// backend may append metadata after it.
func (c *Client) forward(ctx context.Context, chunks chan<- *backend.StreamChunk, rec Record, doneSeen *bool) bool {
	if rec.Error != "" {
		c.send(ctx, chunks, &backend.StreamChunk{Err: &backend.StreamError{
			Backend: c.GetName(),
			Message: rec.Error,
		}})
		return true
	}

	if rec.Done {
		*doneSeen = true
	}

	chunk := &backend.StreamChunk{
		Delta:     rec.Message.Content,
		Done:      rec.Done,
		EvalCount: rec.EvalCount,
	}
	if chunk.Delta == "" && !chunk.Done {
		return false
	}

	return !c.send(ctx, chunks, chunk)
}

// send delivers a chunk unless the context ends first.
func (c *Client) send(ctx context.Context, chunks chan<- *backend.StreamChunk, chunk *backend.StreamChunk) bool {
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// ListModels returns the models the backend serves, from /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/api/tags", c.GetConfig().BaseURL)

	var resp tagsResponse
	if err := c.DoJSON(ctx, "GET", url, nil, &resp, nil); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)

	return names, nil
}

// validateRequest validates the chat request.
func validateRequest(req *backend.ChatRequest) error {
	if req == nil {
		return &backend.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}

	if req.Model == "" {
		return &backend.ValidationError{
			Field:   "model",
			Message: "model is required",
		}
	}

	if len(req.Messages) == 0 {
		return &backend.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}

	return nil
}
