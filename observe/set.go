package observe

import (
	"sync"

	"endfind/estimator"
)

// Set is an insertion-ordered set of observations. Exact repeats are ignored.
// It is safe for concurrent use.
type Set struct {
	mu    sync.Mutex
	seen  map[estimator.Observation]struct{}
	items []estimator.Observation
}

func NewSet() *Set {
	return &Set{seen: make(map[estimator.Observation]struct{})}
}

// Add stores obs and reports whether it was new.
func (s *Set) Add(obs estimator.Observation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[obs]; ok {
		return false
	}
	s.seen[obs] = struct{}{}
	s.items = append(s.items, obs)
	return true
}

// Remove drops obs and reports whether it was present.
func (s *Set) Remove(obs estimator.Observation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[obs]; !ok {
		return false
	}
	delete(s.seen, obs)
	for i, o := range s.items {
		if o == obs {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[estimator.Observation]struct{})
	s.items = nil
}

// Observations returns a copy in insertion order.
func (s *Set) Observations() []estimator.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]estimator.Observation(nil), s.items...)
}
