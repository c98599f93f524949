package session

import (
	"sort"
	"sync"

	"chordlab/relay/pkg/backend"
)

// Store is a process-wide mapping from session id to an ordered message
// list. All methods are safe for concurrent use; operations on different
// session ids never block each other. No method ever fails on a missing
// session id — absence means "empty conversation".
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

// conversation holds one session's messages behind its own lock so that
// writers to different sessions do not contend.
type conversation struct {
	mu       sync.Mutex
	messages []backend.Message
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*conversation),
	}
}

// get returns the conversation for a session id, creating it when create
// is set. Returns nil when the session is unknown and create is false.
func (s *Store) get(sessionID string, create bool) *conversation {
	s.mu.RLock()
	c := s.conversations[sessionID]
	s.mu.RUnlock()
	if c != nil || !create {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c = s.conversations[sessionID]; c == nil {
		c = &conversation{}
		s.conversations[sessionID] = c
	}
	return c
}

// Append adds messages to the end of a session's conversation, creating
// the conversation if it does not exist yet.
func (s *Store) Append(sessionID string, messages ...backend.Message) {
	if len(messages) == 0 {
		return
	}

	c := s.get(sessionID, true)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, messages...)
}

// Read returns a copy of a session's conversation, sorted so that all
// system messages precede all non-system messages. The sort is stable:
// insertion order is preserved within each group. An unknown session id
// yields an empty slice.
func (s *Store) Read(sessionID string) []backend.Message {
	c := s.get(sessionID, false)
	if c == nil {
		return []backend.Message{}
	}

	c.mu.Lock()
	out := make([]backend.Message, len(c.messages))
	copy(out, c.messages)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Role == backend.RoleSystem && out[j].Role != backend.RoleSystem
	})
	return out
}

// Len returns the number of messages stored for a session id.
func (s *Store) Len(sessionID string) int {
	c := s.get(sessionID, false)
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// ReplaceSystemPrefix removes every stored system message for the session
// and prepends the given ones, preserving the relative order of the
// remaining messages. A nil or empty replacement simply strips the prefix.
func (s *Store) ReplaceSystemPrefix(sessionID string, newSystem []backend.Message) {
	c := s.get(sessionID, true)
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]backend.Message, 0, len(c.messages)+len(newSystem))
	kept = append(kept, newSystem...)
	for _, m := range c.messages {
		if m.Role != backend.RoleSystem {
			kept = append(kept, m)
		}
	}
	c.messages = kept
}

// RemoveLast removes exactly one trailing message from the session's
// conversation. It is a no-op for an empty or unknown session; rollback
// must tolerate finding nothing to undo.
func (s *Store) RemoveLast(sessionID string) {
	c := s.get(sessionID, false)
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.messages); n > 0 {
		c.messages = c.messages[:n-1]
	}
}

// SetExact replaces the session's conversation wholesale with the given
// messages. Used when a caller supplies a full history that supersedes the
// server-side one.
func (s *Store) SetExact(sessionID string, messages []backend.Message) {
	c := s.get(sessionID, true)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = make([]backend.Message, len(messages))
	copy(c.messages, messages)
}
