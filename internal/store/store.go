package store

import (
	"sync"

	"qms-document-control/internal/domain"
)

// Store holds the current snapshot. Read paths share the live pointer and
// must treat it as immutable; mutators build the next snapshot from a clone
// and swap it in.
type Store struct {
	mu      sync.RWMutex
	current *domain.Snapshot
}

func New(initial *domain.Snapshot) *Store {
	if initial == nil {
		initial = domain.NewSnapshot()
	}
	return &Store{current: initial}
}

// Get returns the current snapshot.
func (s *Store) Get() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clone returns a mutable copy of the current snapshot.
func (s *Store) Clone() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Replace swaps in the next snapshot.
func (s *Store) Replace(next *domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
}
