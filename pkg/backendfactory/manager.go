package backendfactory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"chordlab/relay/pkg/backend"
)

// Descriptor describes one configured backend for provider discovery.
type Descriptor struct {
	// ID is the client-facing provider identifier.
	ID string `json:"id"`

	// Type is the backend protocol type.
	Type string `json:"type"`

	// Available reports whether the backend is currently healthy.
	Available bool `json:"available"`

	// Models lists the models the backend serves; empty when unavailable.
	Models []string `json:"models"`
}

// Manager manages the registry of configured backends.
// It handles backend lifecycle: creation, health monitoring, shutdown.
// Manager is safe for concurrent use.
type Manager struct {
	backends map[string]backend.Backend
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
}

// NewManager creates an empty backend manager.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		backends: make(map[string]backend.Backend),
		ctx:      ctx,
		cancel:   cancel,
		logger:   slog.Default().With("component", "backendfactory.manager"),
	}
}

// Add creates a backend from config, starts its health checker, and
// registers it. An existing backend with the same name is replaced and
// closed.
func (m *Manager) Add(config backend.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.backends[config.Name]; ok {
		m.logger.Warn("replacing existing backend", "name", config.Name)
		existing.Close()
		delete(m.backends, config.Name)
	}

	be, err := NewWithHealthCheck(m.ctx, config)
	if err != nil {
		return fmt.Errorf("failed to add backend %q: %w", config.Name, err)
	}

	m.backends[config.Name] = be

	m.logger.Info("backend added",
		"name", config.Name,
		"type", be.GetType(),
		"total_backends", len(m.backends),
	)

	return nil
}

// Get returns a backend by its provider name.
func (m *Manager) Get(name string) (backend.Backend, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	be, ok := m.backends[name]
	return be, ok
}

// Names returns the sorted list of registered provider names.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.backends))
	for name := range m.backends {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Count returns the number of registered backends.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.backends)
}

// HealthyCount returns the number of currently healthy backends.
func (m *Manager) HealthyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, be := range m.backends {
		if be.IsHealthy() {
			count++
		}
	}
	return count
}

// Descriptors returns one descriptor per registered backend, sorted by id.
// Availability reflects the tracked health state; the model list is
// fetched live from each healthy backend and left empty for unhealthy
// ones or when the listing fails.
func (m *Manager) Descriptors(ctx context.Context) []Descriptor {
	m.mu.RLock()
	backends := make(map[string]backend.Backend, len(m.backends))
	for name, be := range m.backends {
		backends[name] = be
	}
	m.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(backends))
	for name, be := range backends {
		d := Descriptor{
			ID:        name,
			Type:      be.GetType(),
			Available: be.IsHealthy(),
			Models:    []string{},
		}

		if d.Available {
			listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			models, err := be.ListModels(listCtx)
			cancel()
			if err != nil {
				m.logger.Warn("failed to list models",
					"backend", name,
					"error", err,
				)
			} else {
				d.Models = models
			}
		}

		descriptors = append(descriptors, d)
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].ID < descriptors[j].ID
	})

	return descriptors
}

// Close shuts down all backends and stops their health checkers.
func (m *Manager) Close() error {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	for name, be := range m.backends {
		if err := be.Close(); err != nil {
			m.logger.Error("error closing backend", "name", name, "error", err)
		}
	}
	m.backends = make(map[string]backend.Backend)

	return nil
}
