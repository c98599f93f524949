package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chordlab/relay/pkg/usage"
)

// Config contains configuration for the usage recorder.
type Config struct {
	// Enabled enables usage recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder records per-turn usage metadata asynchronously.
type Recorder struct {
	storage    usage.Storage
	config     *Config
	recordChan chan *usage.TurnRecord
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// New creates a usage recorder over the given storage and starts its
// background worker.
func New(storage usage.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *usage.TurnRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "usage.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("usage recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues a turn record for async writing and returns immediately.
// A missing ID or CreatedAt is filled in. When the channel is full the
// record is dropped with a warning; the relay is never blocked on usage
// bookkeeping.
func (r *Recorder) Record(record *usage.TurnRecord) {
	if !r.config.Enabled || record == nil {
		return
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	select {
	case r.recordChan <- record:
	default:
		r.logger.Warn("usage record channel full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
	}
}

// Close shuts the recorder down, draining queued records first.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

// worker drains the record channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *usage.TurnRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store usage record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	r.logger.Debug("usage recorded",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"outcome", record.Outcome,
		"deltas", record.Deltas,
		"duration_ms", record.DurationMS,
	)
}
