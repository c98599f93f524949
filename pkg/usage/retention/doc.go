// Package retention prunes aged usage records on a cron schedule.
//
// The pruner deletes records older than the configured retention period;
// the scheduler runs it at the configured cron expression (default daily).
// Pruning is advisory housekeeping: failures are logged, never surfaced to
// the relay path.
package retention
