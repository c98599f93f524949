package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"chordlab/relay/pkg/usage"
)

func testRecord(id string, createdAt time.Time) *usage.TurnRecord {
	tokens := 42
	return &usage.TurnRecord{
		ID:           id,
		RequestID:    "req-" + id,
		SessionID:    "s1",
		Provider:     "local-backend",
		Model:        "llama3.1",
		Outcome:      usage.OutcomeComplete,
		Deltas:       3,
		ContentChars: 11,
		Tokens:       &tokens,
		DurationMS:   120,
		CreatedAt:    createdAt,
	}
}

// storageUnderTest runs the shared contract tests against a backend.
func storageUnderTest(t *testing.T, store usage.Storage) {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	old := now.AddDate(0, 0, -60)

	if err := store.Store(ctx, testRecord("old-1", old)); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if err := store.Store(ctx, testRecord("new-1", now)); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d records, want 2", len(recent))
	}
	if recent[0].ID != "new-1" {
		t.Errorf("Recent()[0].ID = %q, want newest first", recent[0].ID)
	}
	if recent[0].Tokens == nil || *recent[0].Tokens != 42 {
		t.Errorf("token count did not round-trip: %v", recent[0].Tokens)
	}

	cutoff := now.AddDate(0, 0, -30)
	deleted, err := store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteOlderThan() = %d, want 1", deleted)
	}

	count, _ = store.Count(ctx)
	if count != 1 {
		t.Errorf("Count() after prune = %d, want 1", count)
	}
}

func TestMemoryStorage(t *testing.T) {
	store := NewMemoryStorage()
	defer store.Close()

	storageUnderTest(t, store)
}

func TestMemoryStorage_BoundedCapacity(t *testing.T) {
	store := NewMemoryStorageWithCapacity(3)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := store.Store(ctx, testRecord(string(rune('a'+i)), time.Now())); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
	}

	count, _ := store.Count(ctx)
	if count != 3 {
		t.Errorf("Count() = %d, want capacity bound of 3", count)
	}
}

func TestSQLiteStorage(t *testing.T) {
	config := DefaultSQLiteConfig()
	config.Path = filepath.Join(t.TempDir(), "usage.db")

	store, err := NewSQLiteStorage(config)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	defer store.Close()

	storageUnderTest(t, store)
}

func TestSQLiteStorage_NullTokens(t *testing.T) {
	config := DefaultSQLiteConfig()
	config.Path = filepath.Join(t.TempDir(), "usage.db")

	store, err := NewSQLiteStorage(config)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	rec := testRecord("no-tokens", time.Now())
	rec.Tokens = nil
	if err := store.Store(ctx, rec); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	recent, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if recent[0].Tokens != nil {
		t.Errorf("Tokens = %v, want nil for a backend that reported none", *recent[0].Tokens)
	}
}
