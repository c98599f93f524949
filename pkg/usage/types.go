package usage

import (
	"context"
	"fmt"
	"time"
)

// Turn outcomes.
const (
	// OutcomeComplete marks a turn whose assistant reply was committed.
	OutcomeComplete = "complete"

	// OutcomeError marks a turn that failed and was rolled back.
	OutcomeError = "error"

	// OutcomeCancelled marks a turn abandoned by the client mid-stream.
	OutcomeCancelled = "cancelled"
)

// TurnRecord is the usage metadata of one relay turn. It deliberately
// carries no message content.
type TurnRecord struct {
	// ID is the unique record identifier (UUID).
	ID string `json:"id"`

	// RequestID correlates the record with request logs and traces.
	RequestID string `json:"request_id"`

	// SessionID is the session the turn belonged to.
	SessionID string `json:"session_id"`

	// Provider is the backend the turn was relayed to.
	Provider string `json:"provider"`

	// Model is the model the turn requested.
	Model string `json:"model"`

	// Outcome is one of complete, error, cancelled.
	Outcome string `json:"outcome"`

	// Deltas is the number of delta events forwarded to the client.
	Deltas int `json:"deltas"`

	// ContentChars is the length of the accumulated assistant text.
	ContentChars int `json:"content_chars"`

	// Tokens is the backend-reported completion token count, if any.
	Tokens *int `json:"tokens,omitempty"`

	// DurationMS is the wall-clock duration of the turn in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`
}

// Storage is the interface usage storage backends implement.
type Storage interface {
	// Store persists a turn record.
	Store(ctx context.Context, record *TurnRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*TurnRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// DeleteOlderThan removes records created before the cutoff and
	// returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases storage resources.
	Close() error
}

// StorageError wraps a storage backend failure with its operation.
type StorageError struct {
	// Backend is the storage backend name ("memory", "sqlite").
	Backend string

	// Op is the operation that failed.
	Op string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("usage storage %s: %s failed: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a storage error.
func NewStorageError(backend, op string, cause error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Cause: cause}
}
