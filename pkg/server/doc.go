// Package server ties the relay's HTTP surface together.
//
// It registers the chat, agent, provider, health, and metrics routes,
// chains the shared middleware, and manages server lifecycle: start,
// graceful shutdown, and OS signal handling.
//
// # Routes
//
//   - POST /api/chat/stream - streaming chat turn (SSE)
//   - POST /api/chat       - non-streaming chat completion
//   - GET  /api/agents     - list agent profiles
//   - GET  /api/agents/{id} - fetch one agent profile
//   - PUT  /api/agents/{id} - update one agent profile
//   - GET  /api/providers  - list configured backends and their models
//   - GET  /healthz        - liveness probe (always 200)
//   - GET  /metrics        - Prometheus scrape endpoint
//
// # Middleware Chain
//
// Requests pass through, outermost first: Recovery, Logging, RequestID,
// CORS. There is deliberately no timeout middleware and no server write
// timeout: the stream route holds the response open for as long as the
// backend generates tokens.
package server
