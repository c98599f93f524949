// Package logging configures the process-wide structured logger.
//
// The relay logs with log/slog throughout; this package only chooses the
// handler (JSON or text), the minimum level, and installs the default.
// Log keys are snake_case (request_id, session_id, duration_ms) by
// convention, enforced by usage rather than machinery.
package logging
