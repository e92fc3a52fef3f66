// Package store holds the findings collection of the current session.
package store

import (
	"sync"

	"github.com/Sena-ops/sentrius/internal/model"
)

// Store keeps exactly one findings collection. Loading replaces it as a whole;
// readers only ever see complete snapshots.
type Store struct {
	mu       sync.RWMutex
	findings []model.Finding
}

func New() *Store {
	return &Store{findings: []model.Finding{}}
}

// Load replaces the current collection. A nil collection is stored as empty.
func (s *Store) Load(findings []model.Finding) {
	next := make([]model.Finding, len(findings))
	copy(next, findings)

	s.mu.Lock()
	s.findings = next
	s.mu.Unlock()
}

func (s *Store) Clear() {
	s.Load(nil)
}

// Current returns a copy of the stored collection.
func (s *Store) Current() []model.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.findings)
}
