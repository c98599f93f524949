// Package telemetry groups the relay's observability subpackages:
// structured logging (logging), Prometheus metrics (metrics), and
// OpenTelemetry tracing (tracing).
package telemetry
