// Package backend implements the upstream client abstraction for the relay.
//
// # Overview
//
// The backend package defines a unified interface over model-serving
// backends. The relay talks to exactly one protocol family today — the
// Ollama newline-delimited-JSON chat convention, implemented by the ollama
// subpackage — but the interface keeps the relay code independent of wire
// details and lets tests substitute scripted backends.
//
// # Architecture
//
// The package is organized into three layers:
//
//  1. Backend Interface - the contract all backend adapters implement
//  2. Base HTTP Backend - shared HTTP client logic (connection pooling, typed error mapping, health tracking)
//  3. Backend Adapters - protocol-specific implementations (currently ollama)
//
// The backendfactory package creates and manages backend instances from
// configuration.
//
// # Basic Usage
//
//	config := backend.Config{
//	    Name:    "local-backend",
//	    Type:    "ollama",
//	    BaseURL: "http://localhost:11434",
//	    Timeout: 60 * time.Second,
//	}
//
//	be, err := ollama.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer be.Close()
//
//	reply, err := be.SendChat(context.Background(), &backend.ChatRequest{
//	    Model: "llama3.1",
//	    Messages: []backend.Message{
//	        {Role: backend.RoleUser, Content: "Name a bright-sounding chord."},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(reply.Content)
//
// # Streaming
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
//
// # Error Handling
//
// The package defines specific error types for the relay's failure taxonomy:
//
//   - UnavailableError: the connection could not be established
//   - RejectedError: the backend answered with a non-success status
//   - StreamError: the stream failed after it was established
//   - ParseError: a malformed non-streaming response
//   - ValidationError: an invalid request caught before sending
//   - ConfigError: an invalid backend configuration
//
// There is deliberately no retry logic anywhere in this package: a single
// backend failure is surfaced to the caller, which decides what the client
// sees. Per-request cancellation is propagated through the context.
//
// # Health Checking
//
// Backends track health from request outcomes and an optional background
// checker (StartHealthChecker), using a three-strikes circuit breaker and
// exponential probe backoff while unhealthy.
//
// # Thread Safety
//
// All backend implementations are safe for concurrent use.
package backend
