package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"chordlab/relay/pkg/usage"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/usage.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements usage.Storage using SQLite through the pure-Go
// driver, so the relay builds without cgo.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a SQLite storage backend, initializing the
// schema and enabling WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "usage.storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite usage storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the schema and pragmas.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return usage.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return usage.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return usage.NewStorageError("sqlite", "create_schema", err)
	}

	return nil
}

// Store persists a turn record.
func (s *SQLiteStorage) Store(ctx context.Context, record *usage.TurnRecord) error {
	var tokens sql.NullInt64
	if record.Tokens != nil {
		tokens = sql.NullInt64{Int64: int64(*record.Tokens), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (
			id, request_id, session_id, provider, model, outcome,
			deltas, content_chars, tokens, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RequestID, record.SessionID, record.Provider,
		record.Model, record.Outcome, record.Deltas, record.ContentChars,
		tokens, record.DurationMS, record.CreatedAt,
	)
	if err != nil {
		return usage.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]*usage.TurnRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, session_id, provider, model, outcome,
		       deltas, content_chars, tokens, duration_ms, created_at
		FROM turns
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "recent", err)
	}
	defer rows.Close()

	var records []*usage.TurnRecord
	for rows.Next() {
		var r usage.TurnRecord
		var tokens sql.NullInt64
		if err := rows.Scan(
			&r.ID, &r.RequestID, &r.SessionID, &r.Provider, &r.Model,
			&r.Outcome, &r.Deltas, &r.ContentChars, &tokens,
			&r.DurationMS, &r.CreatedAt,
		); err != nil {
			return nil, usage.NewStorageError("sqlite", "scan", err)
		}
		if tokens.Valid {
			t := int(tokens.Int64)
			r.Tokens = &t
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, usage.NewStorageError("sqlite", "iterate", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM turns").Scan(&count)
	if err != nil {
		return 0, usage.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteOlderThan removes records created before the cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM turns WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, usage.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, usage.NewStorageError("sqlite", "rows_affected", err)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
