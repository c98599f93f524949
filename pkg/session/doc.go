// Package session implements the in-memory conversation store.
//
// The store maps a client-chosen session identifier to an ordered message
// list. It is pure data plus mutation operations; it performs no I/O and
// survives only for the process lifetime. Missing session ids are treated
// as empty conversations everywhere, never as errors, so the relay can
// retry and roll back without special cases.
//
// The store is constructed once per process and passed by reference to the
// relay; tests construct an isolated instance per case. A KeyedMutex in the
// same package serializes whole-turn mutation sequences per session id so
// that two concurrent turns on the same session cannot interleave their
// optimistic-write and rollback steps.
package session
