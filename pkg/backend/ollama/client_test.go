package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"chordlab/relay/pkg/backend"
)

func testConfig(baseURL string) backend.Config {
	return backend.Config{
		Name:    "local-backend",
		Type:    "ollama",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

// TestOllama_StreamingChunkDelivery verifies deltas and the completion
// marker arrive in order with the token count
func TestOllama_StreamingChunkDelivery(t *testing.T) {
	lines := []string{
		`{"message":{"role":"assistant","content":"he"},"done":false}`,
		`{"message":{"role":"assistant","content":"llo"},"done":false}`,
		`{"done":true,"eval_count":2}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("expected path /api/chat, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}

		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
			flusher.Flush()
			time.Sleep(10 * time.Millisecond)
		}
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	req := &backend.ChatRequest{
		Model: "llama3.1",
		Messages: []backend.Message{
			{Role: backend.RoleUser, Content: "hi"},
		},
	}

	chunks, err := client.StreamChat(context.Background(), req)
	if err != nil {
		t.Fatalf("failed to start stream: %v", err)
	}

	var content strings.Builder
	var doneChunk *backend.StreamChunk
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
		content.WriteString(chunk.Delta)
		if chunk.Done {
			doneChunk = chunk
		}
	}

	if content.String() != "hello" {
		t.Errorf("expected accumulated content %q, got %q", "hello", content.String())
	}
	if doneChunk == nil {
		t.Fatal("expected a done chunk")
	}
	if doneChunk.EvalCount == nil || *doneChunk.EvalCount != 2 {
		t.Errorf("expected eval_count 2, got %v", doneChunk.EvalCount)
	}
}

// TestOllama_StreamingErrorRecord verifies an in-stream error record ends
// the stream with a typed StreamError after earlier deltas were delivered
func TestOllama_StreamingErrorRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, `{"message":{"content":"part"},"done":false}`+"\n")
		flusher.Flush()
		fmt.Fprintf(w, `{"error":"model exploded"}`+"\n")
		flusher.Flush()
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	chunks, err := client.StreamChat(context.Background(), &backend.ChatRequest{
		Model:    "llama3.1",
		Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("failed to start stream: %v", err)
	}

	var deltas []string
	var streamErr error
	for chunk := range chunks {
		if chunk.Err != nil {
			streamErr = chunk.Err
			break
		}
		deltas = append(deltas, chunk.Delta)
	}

	if len(deltas) != 1 || deltas[0] != "part" {
		t.Errorf("expected one delta %q before the error, got %v", "part", deltas)
	}
	if streamErr == nil {
		t.Fatal("expected a stream error")
	}
	se, ok := streamErr.(*backend.StreamError)
	if !ok {
		t.Fatalf("expected *backend.StreamError, got %T: %v", streamErr, streamErr)
	}
	if !strings.Contains(se.Message, "model exploded") {
		t.Errorf("expected backend message in error, got %q", se.Message)
	}
}

// TestOllama_StreamingHTTPError verifies a non-success status fails the
// call before any chunk is produced
func TestOllama_StreamingHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"out of memory"}`))
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	chunks, err := client.StreamChat(context.Background(), &backend.ChatRequest{
		Model:    "llama3.1",
		Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Error("expected error when backend rejects the request")
		for range chunks {
		}
		return
	}

	rejected, ok := err.(*backend.RejectedError)
	if !ok {
		t.Fatalf("expected *backend.RejectedError, got %T: %v", err, err)
	}
	if rejected.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rejected.StatusCode)
	}
	if !strings.Contains(rejected.Body, "out of memory") {
		t.Errorf("expected backend body in error, got %q", rejected.Body)
	}
}

// TestOllama_StreamingNoRetry verifies a failing request is sent exactly once
func TestOllama_StreamingNoRetry(t *testing.T) {
	var mu sync.Mutex
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	_, err = client.StreamChat(context.Background(), &backend.ChatRequest{
		Model:    "llama3.1",
		Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	mu.Lock()
	sent := requests
	mu.Unlock()
	if sent != 1 {
		t.Errorf("expected exactly 1 request (no retries), got %d", sent)
	}
}

// TestOllama_StreamingAbruptDisconnect verifies a connection dropped before
// the done record surfaces as a StreamError
func TestOllama_StreamingAbruptDisconnect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, `{"message":{"content":"alm"},"done":false}`+"\n")
		flusher.Flush()

		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("expected http.ResponseWriter to be http.Hijacker")
		}
		conn, _, _ := hj.Hijack()
		conn.Close()
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	chunks, err := client.StreamChat(context.Background(), &backend.ChatRequest{
		Model:    "llama3.1",
		Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("failed to start stream: %v", err)
	}

	var gotDelta, gotErr bool
	for chunk := range chunks {
		if chunk.Err != nil {
			if _, ok := chunk.Err.(*backend.StreamError); !ok {
				t.Errorf("expected *backend.StreamError, got %T", chunk.Err)
			}
			gotErr = true
			continue
		}
		if chunk.Delta == "alm" {
			gotDelta = true
		}
		if chunk.Done {
			t.Error("did not expect a done chunk on a dropped connection")
		}
	}

	if !gotDelta {
		t.Error("expected the delta sent before the disconnect")
	}
	if !gotErr {
		t.Error("expected a stream error after the disconnect")
	}
}

// TestOllama_StreamingClientCancel verifies cancellation closes the stream
// without an error chunk
func TestOllama_StreamingClientCancel(t *testing.T) {
	var mu sync.Mutex
	served := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; i < 100; i++ {
			select {
			case <-r.Context().Done():
				return
			default:
			}
			fmt.Fprintf(w, `{"message":{"content":"n%d"},"done":false}`+"\n", i)
			flusher.Flush()
			mu.Lock()
			served++
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
		}
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chunks, err := client.StreamChat(ctx, &backend.ChatRequest{
		Model:    "llama3.1",
		Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("failed to start stream: %v", err)
	}

	read := 0
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Errorf("expected no error chunk on cancellation, got %v", chunk.Err)
			break
		}
		read++
		if read == 3 {
			cancel()
		}
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	sent := served
	mu.Unlock()
	if sent >= 100 {
		t.Errorf("expected server to stop sending after cancel, but sent all %d records", sent)
	}
}

// TestOllama_StreamingReadsPastDone verifies trailing metadata after the
// done record does not fail the stream
func TestOllama_StreamingReadsPastDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, `{"message":{"content":"ok"},"done":false}`+"\n")
		fmt.Fprintf(w, `{"done":true,"eval_count":1}`+"\n")
		fmt.Fprintf(w, `{"total_duration":123456}`+"\n")
		flusher.Flush()
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	chunks, err := client.StreamChat(context.Background(), &backend.ChatRequest{
		Model:    "llama3.1",
		Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("failed to start stream: %v", err)
	}

	var sawDone bool
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
		if chunk.Done {
			sawDone = true
		}
	}
	if !sawDone {
		t.Error("expected the done chunk")
	}
}

// TestOllama_SendChat verifies the non-streaming path
func TestOllama_SendChat(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"model":"llama3.1","message":{"role":"assistant","content":"A Lydian flavor."},"done":true,"eval_count":7}`)
		}))
		defer server.Close()

		client, err := New(testConfig(server.URL))
		if err != nil {
			t.Fatalf("failed to create backend: %v", err)
		}

		reply, err := client.SendChat(context.Background(), &backend.ChatRequest{
			Model:    "llama3.1",
			Messages: []backend.Message{{Role: backend.RoleUser, Content: "Suggest a color chord"}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reply.Content != "A Lydian flavor." {
			t.Errorf("expected reply content %q, got %q", "A Lydian flavor.", reply.Content)
		}
		if reply.EvalCount == nil || *reply.EvalCount != 7 {
			t.Errorf("expected eval_count 7, got %v", reply.EvalCount)
		}
	})

	t.Run("in-band error field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":"model not found"}`)
		}))
		defer server.Close()

		client, err := New(testConfig(server.URL))
		if err != nil {
			t.Fatalf("failed to create backend: %v", err)
		}

		_, err = client.SendChat(context.Background(), &backend.ChatRequest{
			Model:    "missing",
			Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		rejected, ok := err.(*backend.RejectedError)
		if !ok {
			t.Fatalf("expected *backend.RejectedError, got %T: %v", err, err)
		}
		if !strings.Contains(rejected.Body, "model not found") {
			t.Errorf("expected backend detail in error, got %q", rejected.Body)
		}
	})
}

// TestOllama_ListModels verifies model discovery via /api/tags
func TestOllama_ListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected path /api/tags, got %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"models":[{"name":"qwen2.5"},{"name":"llama3.1"}]}`)
	}))
	defer server.Close()

	client, err := New(testConfig(server.URL))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "llama3.1" || models[1] != "qwen2.5" {
		t.Errorf("expected sorted model names, got %v", models)
	}
}

// TestOllama_ConnectionRefused verifies an unreachable backend maps to
// UnavailableError
func TestOllama_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(testConfig(url))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	_, err = client.StreamChat(context.Background(), &backend.ChatRequest{
		Model:    "llama3.1",
		Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*backend.UnavailableError); !ok {
		t.Errorf("expected *backend.UnavailableError, got %T: %v", err, err)
	}
}

// TestOllama_RequestValidation verifies invalid requests are rejected
// before anything is sent
func TestOllama_RequestValidation(t *testing.T) {
	client, err := New(testConfig("http://localhost:9"))
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	tests := []struct {
		name string
		req  *backend.ChatRequest
	}{
		{name: "nil request", req: nil},
		{name: "missing model", req: &backend.ChatRequest{
			Messages: []backend.Message{{Role: backend.RoleUser, Content: "hi"}},
		}},
		{name: "missing messages", req: &backend.ChatRequest{Model: "llama3.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.StreamChat(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if _, ok := err.(*backend.ValidationError); !ok {
				t.Errorf("expected *backend.ValidationError, got %T: %v", err, err)
			}
		})
	}
}
