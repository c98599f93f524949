// Package storage provides the usage storage backends.
//
// MemoryStorage is a bounded in-memory ring used by tests and as the
// default when no database path is configured. SQLiteStorage persists
// records to a local SQLite file (pure-Go driver, WAL mode) for
// deployments that want usage history to survive restarts.
package storage
