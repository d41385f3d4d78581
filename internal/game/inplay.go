package game

import (
	"sort"
	"sync"
)

// inPlaySet tracks players currently bound to an unsettled session. A player
// in this set may not join a waiting queue.
type inPlaySet struct {
	mu      sync.RWMutex
	members map[int]struct{}
}

func newInPlaySet() *inPlaySet {
	return &inPlaySet{members: make(map[int]struct{})}
}

func (s *inPlaySet) Add(playerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[playerID] = struct{}{}
}

func (s *inPlaySet) Remove(playerID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, playerID)
}

func (s *inPlaySet) Contains(playerID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[playerID]
	return ok
}

// Snapshot returns the member ids in ascending order, for the ops API.
func (s *inPlaySet) Snapshot() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
