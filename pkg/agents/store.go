package agents

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// validID constrains profile ids to file-name-safe characters.
var validID = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Store serves agent profiles from a directory of markdown files.
// All reads are served from memory; Reload re-reads the directory.
// Store is safe for concurrent use.
type Store struct {
	dir      string
	mu       sync.RWMutex
	profiles map[string]*Profile
	logger   *slog.Logger
}

// NewStore creates a store over the given directory and loads it.
// The directory is created if it does not exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create agents directory %q: %w", dir, err)
	}

	s := &Store{
		dir:      dir,
		profiles: make(map[string]*Profile),
		logger:   slog.Default().With("component", "agents.store"),
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Dir returns the directory the store serves from.
func (s *Store) Dir() string {
	return s.dir
}

// Reload re-reads every profile in the directory, replacing the in-memory
// set wholesale. Files that fail to parse are skipped with a warning so
// one broken profile cannot take down the rest.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read agents directory %q: %w", s.dir, err)
	}

	profiles := make(map[string]*Profile)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			continue
		}

		id := strings.TrimSuffix(name, filepath.Ext(name))

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("failed to read agent profile",
				"file", name,
				"error", err,
			)
			continue
		}

		profile, err := ParseProfile(id, data)
		if err != nil {
			s.logger.Warn("skipping unparseable agent profile",
				"file", name,
				"error", err,
			)
			continue
		}

		profiles[id] = profile
	}

	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()

	s.logger.Info("agent profiles loaded",
		"dir", s.dir,
		"count", len(profiles),
	)

	return nil
}

// List returns the listing entries of all profiles, sorted by id.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.profiles))
	for _, p := range s.profiles {
		infos = append(infos, p.Info())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})

	return infos
}

// Get returns a copy of the profile with the given id.
func (s *Store) Get(id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	profileCopy := *p
	return &profileCopy, nil
}

// GetPrompt returns the system prompt of the profile with the given id.
func (s *Store) GetPrompt(id string) (string, error) {
	p, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return p.Prompt, nil
}

// Save writes a profile to disk atomically (temp file + rename) and
// updates the in-memory set. The profile's ID field is overridden by the
// id argument.
func (s *Store) Save(id string, profile *Profile) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("invalid agent id %q", id)
	}

	profile.ID = id
	if profile.Name == "" {
		profile.Name = id
	}

	data, err := profile.Render()
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, id+".md")
	tmp, err := os.CreateTemp(s.dir, "."+id+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace profile file: %w", err)
	}

	profileCopy := *profile
	s.mu.Lock()
	s.profiles[id] = &profileCopy
	s.mu.Unlock()

	s.logger.Info("agent profile saved",
		"agent", id,
		"file", path,
	)

	return nil
}
