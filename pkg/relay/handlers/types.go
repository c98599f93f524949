package handlers

import (
	"context"
	"time"

	"chordlab/relay/pkg/agents"
	"chordlab/relay/pkg/backend"
	"chordlab/relay/pkg/backendfactory"
	"chordlab/relay/pkg/usage"
)

// BackendRegistry is the view of the backend manager the handlers need.
type BackendRegistry interface {
	// Get returns the backend registered under the given provider name.
	Get(name string) (backend.Backend, bool)

	// Names returns the sorted list of registered provider names.
	Names() []string

	// Count returns the number of registered backends.
	Count() int

	// HealthyCount returns the number of currently healthy backends.
	HealthyCount() int

	// Descriptors returns one discovery descriptor per backend.
	Descriptors(ctx context.Context) []backendfactory.Descriptor
}

// AgentStore is the view of the agent profile store the handlers need.
type AgentStore interface {
	// List returns the listing entries of all profiles, sorted by id.
	List() []agents.Info

	// Get returns the profile with the given id.
	Get(id string) (*agents.Profile, error)

	// Save persists a profile under the given id.
	Save(id string, profile *agents.Profile) error
}

// TurnRecorder records per-turn usage metadata. Implementations must not
// block the caller.
type TurnRecorder interface {
	Record(record *usage.TurnRecord)
}

// TurnMetrics observes finished relay turns.
type TurnMetrics interface {
	RecordTurn(provider, model, outcome string, duration time.Duration, deltas, tokens int)
}
