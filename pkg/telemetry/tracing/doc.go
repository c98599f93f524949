// Package tracing sets up OpenTelemetry tracing for the relay.
//
// Spans are exported over OTLP gRPC; disabled tracing installs a no-op
// tracer so instrumented code paths cost nothing. The relay creates one
// span per chat turn.
package tracing
