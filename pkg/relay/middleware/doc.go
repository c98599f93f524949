// Package middleware provides the HTTP middleware chain for the relay
// server: panic recovery, structured request logging, request ID
// generation, and CORS.
//
// Middleware is applied outermost-first as Recovery > Logging > RequestID >
// CORS, so a panic anywhere below is always converted into a JSON 500 and
// every log line carries the request id.
//
// The logging wrapper forwards http.Flusher so the SSE push stream keeps
// flushing per event when wrapped.
package middleware
