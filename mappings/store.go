// Package mappings persists learned merchant→category mappings per owner.
// The categorization engine never touches a store directly; callers read a
// snapshot before categorizing and upsert confirmed results afterwards.
package mappings

import (
	"os"
	"sync"

	"github.com/go-yaml/yaml"
	"github.com/helpcomp/statement-categorizer/categorize"
	"github.com/rs/zerolog/log"
)

// Store reads and writes an owner's learned mappings. Upsert is keyed by
// owner plus merchant pattern: a repeat pattern replaces the previous
// category assignment.
type Store interface {
	List(owner string) ([]categorize.Mapping, error)
	Upsert(owner string, mapping categorize.Mapping) error
}

// FileStore keeps mappings in a YAML file, grouped by owner. Suited to
// single-user CLI runs; the mutex protects the in-memory copy, and every
// upsert rewrites the file.
type FileStore struct {
	path   string
	mu     sync.Mutex
	owners map[string][]categorize.Mapping
}

// NewFileStore loads the file at path, tolerating a missing file (first run
// starts with an empty store).
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		owners: make(map[string][]categorize.Mapping),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &s.owners); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns a copy of the owner's mappings so callers cannot mutate the
// store's snapshot from outside.
func (s *FileStore) List(owner string) ([]categorize.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.owners[owner]
	out := make([]categorize.Mapping, len(existing))
	copy(out, existing)
	return out, nil
}

func (s *FileStore) Upsert(owner string, mapping categorize.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, m := range s.owners[owner] {
		if m.MerchantPattern == mapping.MerchantPattern {
			s.owners[owner][i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		s.owners[owner] = append(s.owners[owner], mapping)
	}

	raw, err := yaml.Marshal(s.owners)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return err
	}

	log.Debug().
		Str("owner", owner).
		Str("pattern", mapping.MerchantPattern).
		Bool("replaced", replaced).
		Msg("Saved mapping")
	return nil
}
