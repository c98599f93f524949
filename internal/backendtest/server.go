package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Script describes how the mock chat endpoint behaves for one request.
type Script struct {
	// StatusCode overrides the response status; zero means 200 with the
	// scripted lines as the body.
	StatusCode int

	// Body is the response body when StatusCode is set.
	Body string

	// Lines are the raw NDJSON lines to emit, each followed by a newline
	// unless OmitFinalNewline applies to the last one.
	Lines []string

	// OmitFinalNewline drops the trailing newline of the last line, to
	// exercise terminal records without newline termination.
	OmitFinalNewline bool

	// CloseAfter, when >= 0, closes the connection abruptly after that
	// many lines, without finishing the stream. Use -1 to disable.
	CloseAfter int

	// LineDelay is an optional pause between lines.
	LineDelay time.Duration
}

// ChatRequest is the decoded body of one captured chat request.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// ChatMessage is one conversation message in a captured request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Server is a scriptable mock backend.
type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	scripts  []Script
	requests int
	captured []ChatRequest
	models   []string
}

// NewServer starts a mock backend with no scripts queued. Each chat request
// consumes one queued script; requests beyond the queue replay the last
// script.
func NewServer() *Server {
	s := &Server{
		models: []string{"llama3.1"},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the mock backend's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the mock backend down.
func (s *Server) Close() {
	s.server.Close()
}

// Enqueue appends a script to the chat endpoint's queue.
func (s *Server) Enqueue(script Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = append(s.scripts, script)
}

// EnqueueStream is the common case: stream the given lines and finish.
func (s *Server) EnqueueStream(lines ...string) {
	s.Enqueue(Script{Lines: lines, CloseAfter: -1})
}

// EnqueueStatus scripts a non-2xx response with the given body.
func (s *Server) EnqueueStatus(statusCode int, body string) {
	s.Enqueue(Script{StatusCode: statusCode, Body: body, CloseAfter: -1})
}

// SetModels sets the model list served by /api/tags.
func (s *Server) SetModels(models ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = models
}

// Requests returns how many chat requests the mock has received.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// ChatRequests returns the decoded bodies of all chat requests received
// so far, in order.
func (s *Server) ChatRequests() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatRequest, len(s.captured))
	copy(out, s.captured)
	return out
}

// handler routes the two backend endpoints.
func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/chat":
		s.handleChat(w, r)
	case "/api/tags":
		s.handleTags(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleChat captures the request, consumes the next script, and plays it.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.requests++
	s.captured = append(s.captured, req)
	var script Script
	switch {
	case len(s.scripts) > 1:
		script = s.scripts[0]
		s.scripts = s.scripts[1:]
	case len(s.scripts) == 1:
		script = s.scripts[0]
	default:
		script = Script{CloseAfter: -1}
	}
	s.mu.Unlock()

	if script.StatusCode != 0 {
		w.WriteHeader(script.StatusCode)
		fmt.Fprint(w, script.Body)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for i, line := range script.Lines {
		if script.CloseAfter >= 0 && i >= script.CloseAfter {
			s.hijackClose(w)
			return
		}

		if script.LineDelay > 0 {
			time.Sleep(script.LineDelay)
		}

		if script.OmitFinalNewline && i == len(script.Lines)-1 {
			fmt.Fprint(w, line)
		} else {
			fmt.Fprintf(w, "%s\n", line)
		}
		flusher.Flush()
	}
}

// handleTags serves the model list.
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	models := make([]string, len(s.models))
	copy(models, s.models)
	s.mu.Unlock()

	type tag struct {
		Name string `json:"name"`
	}
	resp := struct {
		Models []tag `json:"models"`
	}{}
	for _, m := range models {
		resp.Models = append(resp.Models, tag{Name: m})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// hijackClose tears the TCP connection down without a clean HTTP finish, so
// the client sees an unexpected EOF mid-stream.
func (s *Server) hijackClose(w http.ResponseWriter) {
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		return
	}
	conn, _, err := hijacker.Hijack()
	if err != nil {
		return
	}
	conn.Close()
}
