package retention

import (
	"context"
	"log/slog"
	"time"

	"chordlab/relay/pkg/usage"
)

// Config contains retention configuration.
type Config struct {
	// RetentionDays is how many days of records to keep.
	// Default: 30
	RetentionDays int

	// PruneSchedule is the cron expression for scheduled pruning.
	// Empty disables the scheduler. Default: "0 3 * * *" (daily at 3 AM).
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner deletes usage records older than the retention period.
type Pruner struct {
	storage usage.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a pruner over the given storage.
func NewPruner(storage usage.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = 30
	}

	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "usage.retention"),
	}
}

// Prune deletes records older than the retention period and returns how
// many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	start := time.Now()
	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	p.logger.Info("usage records pruned",
		"deleted_count", deleted,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return deleted, nil
}

// Schedule returns the configured cron expression.
func (p *Pruner) Schedule() string {
	return p.config.PruneSchedule
}
