package session

import "sync"

// KeyedMutex hands out one mutex per key so a caller can serialize a
// multi-step sequence against other holders of the same key without
// blocking holders of different keys.
//
// The relay holds a session's mutex across the whole optimistic-write /
// stream / commit-or-rollback sequence of a turn; a second turn on the
// same session waits its turn instead of interleaving. Entries live for
// the process lifetime, matching the store's own lifecycle.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given key, creating it on first use,
// and returns the function that releases it.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
