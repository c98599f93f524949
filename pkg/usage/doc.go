// Package usage defines the relay's usage records and the storage
// interface they are written through.
//
// A TurnRecord captures per-turn metadata only: counts, durations, and
// outcomes. Conversation content never reaches storage; the relay does not
// persist message text beyond the process lifetime.
//
// Subpackages:
//   - recorder: async, non-blocking record writer
//   - storage: memory and SQLite storage backends
//   - retention: age-based pruning on a cron schedule
package usage
