// Package recorder writes usage records asynchronously so the relay's
// streaming path never blocks on storage.
//
// Record enqueues and returns immediately; a single background worker
// drains the channel into storage. When the channel is full the record is
// dropped with a warning — usage metadata is best-effort, the turn itself
// is not. Close drains everything still queued before returning.
package recorder
