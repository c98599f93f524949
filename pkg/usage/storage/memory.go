package storage

import (
	"context"
	"sync"
	"time"

	"chordlab/relay/pkg/usage"
)

// DefaultMemoryCapacity bounds the in-memory backend so an unattended
// process cannot grow without limit.
const DefaultMemoryCapacity = 10000

// MemoryStorage implements usage.Storage with a bounded in-memory slice.
// When the capacity is reached the oldest records are discarded.
type MemoryStorage struct {
	mu       sync.RWMutex
	records  []*usage.TurnRecord
	capacity int
}

// NewMemoryStorage creates an in-memory storage backend with the default
// capacity.
func NewMemoryStorage() *MemoryStorage {
	return NewMemoryStorageWithCapacity(DefaultMemoryCapacity)
}

// NewMemoryStorageWithCapacity creates an in-memory storage backend
// holding at most capacity records.
func NewMemoryStorageWithCapacity(capacity int) *MemoryStorage {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStorage{capacity: capacity}
}

// Store persists a turn record, evicting the oldest when full.
func (s *MemoryStorage) Store(ctx context.Context, record *usage.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records = append(s.records, &recordCopy)

	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}

	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStorage) Recent(ctx context.Context, limit int) ([]*usage.TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*usage.TurnRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		recordCopy := *s.records[i]
		out = append(out, &recordCopy)
	}

	return out, nil
}

// Count returns the number of stored records.
func (s *MemoryStorage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// DeleteOlderThan removes records created before the cutoff.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if r.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept

	return deleted, nil
}

// Close releases storage resources. No-op for memory storage.
func (s *MemoryStorage) Close() error {
	return nil
}
