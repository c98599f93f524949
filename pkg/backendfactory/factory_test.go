package backendfactory

import (
	"errors"
	"testing"

	"chordlab/relay/pkg/backend"
)

func TestNew_OllamaBackend(t *testing.T) {
	be, err := New(backend.Config{
		Name:    "local-backend",
		Type:    "ollama",
		BaseURL: "http://localhost:11434",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer be.Close()

	if be.GetName() != "local-backend" {
		t.Errorf("GetName() = %q, want %q", be.GetName(), "local-backend")
	}
	if be.GetType() != "ollama" {
		t.Errorf("GetType() = %q, want %q", be.GetType(), "ollama")
	}
}

func TestNew_InfersBlankType(t *testing.T) {
	be, err := New(backend.Config{Name: "local-backend"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer be.Close()

	if be.GetType() != "ollama" {
		t.Errorf("GetType() = %q, want blank type inferred as %q", be.GetType(), "ollama")
	}
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New(backend.Config{
		Name: "remote",
		Type: "openai",
	})
	if err == nil {
		t.Fatal("New() accepted an unsupported backend type")
	}

	var cfgErr *backend.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error is %T, want *backend.ConfigError", err)
	}
}

func TestNew_MissingName(t *testing.T) {
	_, err := New(backend.Config{Type: "ollama"})
	if err == nil {
		t.Fatal("New() accepted a backend with no name")
	}
}
