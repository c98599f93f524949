package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chordlab/relay/internal/backendtest"
	"chordlab/relay/pkg/backend"
	"chordlab/relay/pkg/backend/ollama"
	"chordlab/relay/pkg/backendfactory"
)

func TestProvidersHandler(t *testing.T) {
	mock := backendtest.NewServer()
	defer mock.Close()
	mock.SetModels("llama3.1", "qwen2.5-coder")

	be, err := ollama.New(backend.Config{Name: "local-backend", BaseURL: mock.URL()})
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	defer be.Close()

	h := NewProvidersHandler(&fakeRegistry{backends: map[string]backend.Backend{"local-backend": be}})

	req := httptest.NewRequest(http.MethodGet, "/api/providers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Providers []backendfactory.Descriptor `json:"providers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Providers) != 1 {
		t.Fatalf("got %d providers, want 1", len(resp.Providers))
	}

	d := resp.Providers[0]
	if d.ID != "local-backend" || d.Type != "ollama" {
		t.Errorf("descriptor = %+v", d)
	}
	if !d.Available {
		t.Errorf("descriptor not available, want healthy")
	}
	if len(d.Models) != 2 {
		t.Errorf("models = %v, want two", d.Models)
	}
}

func TestProvidersHandler_MethodNotAllowed(t *testing.T) {
	h := NewProvidersHandler(&fakeRegistry{backends: map[string]backend.Backend{}})

	req := httptest.NewRequest(http.MethodPost, "/api/providers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	mock := backendtest.NewServer()
	defer mock.Close()

	be, err := ollama.New(backend.Config{Name: "local-backend", BaseURL: mock.URL()})
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	defer be.Close()

	h := NewHealthHandler(&fakeRegistry{backends: map[string]backend.Backend{"local-backend": be}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Status   string `json:"status"`
		Backends struct {
			Total   int `json:"total"`
			Healthy int `json:"healthy"`
		} `json:"backends"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Backends.Total != 1 || resp.Backends.Healthy != 1 {
		t.Errorf("backends = %+v, want 1/1", resp.Backends)
	}
}
