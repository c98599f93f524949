package backendfactory

import (
	"context"
	"fmt"
	"log/slog"

	"chordlab/relay/pkg/backend"
	"chordlab/relay/pkg/backend/ollama"
)

// New creates a backend instance from its configuration.
//
// "ollama" is the only supported type. A blank type is inferred as
// "ollama"; anything else is a configuration error — the relay speaks one
// upstream protocol by design.
//
// Example:
//
//	config := backend.Config{
//	    Name:    "local-backend",
//	    BaseURL: "http://localhost:11434",
//	}
//	be, err := backendfactory.New(config)
//	if err != nil {
//	    return err
//	}
//	defer be.Close()
func New(config backend.Config) (backend.Backend, error) {
	backendType := config.Type
	if backendType == "" {
		backendType = "ollama"
		config.Type = backendType
	}

	slog.Debug("creating backend",
		"name", config.Name,
		"type", backendType,
		"base_url", config.BaseURL,
	)

	var be backend.Backend
	var err error

	switch backendType {
	case "ollama":
		be, err = ollama.New(config)

	default:
		return nil, &backend.ConfigError{
			Backend: config.Name,
			Field:   "type",
			Message: fmt.Sprintf("unsupported backend type: %q (supported: ollama)", backendType),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create backend %q: %w", config.Name, err)
	}

	return be, nil
}

// NewWithHealthCheck creates a backend and starts its background health
// checker. The context stops the checker.
func NewWithHealthCheck(ctx context.Context, config backend.Config) (backend.Backend, error) {
	be, err := New(config)
	if err != nil {
		return nil, err
	}

	type healthCheckStarter interface {
		StartHealthChecker(context.Context)
	}

	if hcs, ok := be.(healthCheckStarter); ok {
		hcs.StartHealthChecker(ctx)
		slog.Debug("health checker started", "backend", config.Name)
	}

	return be, nil
}
