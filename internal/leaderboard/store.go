// Package leaderboard holds the shared best-survival-time table and the
// per-client sessions that publish to it.
package leaderboard

import (
	"cmp"
	"errors"
	"slices"
	"sync"
)

var (
	// ErrNameConflict is returned when a name is already on the board.
	ErrNameConflict = errors.New("name already present")
	// ErrEmptyName is returned when a name is blank after trimming.
	ErrEmptyName = errors.New("name is empty")
)

// Withdraw is the score value that removes a name from the board.
const Withdraw = -1.0

// Entry is one row of the leaderboard.
type Entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"` // Best survival time in seconds
}

// Snapshot is a point-in-time copy of the board, ordered by name.
type Snapshot []Entry

// Ranked returns a copy ordered by score descending, ties broken by name.
func (s Snapshot) Ranked() Snapshot {
	ranked := slices.Clone(s)
	slices.SortStableFunc(ranked, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ranked
}

// Top returns at most n entries of the ranked board.
func (s Snapshot) Top(n int) Snapshot {
	ranked := s.Ranked()
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Store is the process-wide leaderboard. Readers run concurrently, writers
// are exclusive and never do I/O while holding the lock.
type Store struct {
	mu      sync.RWMutex
	entries map[string]float64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]float64)}
}

// Upsert sets the score for name, inserting it if needed.
func (s *Store) Upsert(name string, score float64) {
	s.mu.Lock()
	s.entries[name] = score
	s.mu.Unlock()
}

// Remove deletes name. Removing an absent name is a no-op.
func (s *Store) Remove(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
}

// Update applies a score report: a negative score removes the name,
// anything else upserts it.
func (s *Store) Update(name string, score float64) {
	if score < 0 {
		s.Remove(name)
		return
	}
	s.Upsert(name, score)
}

// Claim inserts name with score if it is absent. The check and the insert
// happen under one lock.
func (s *Store) Claim(name string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return ErrNameConflict
	}
	s.entries[name] = score
	return nil
}

// Get returns the score for name.
func (s *Store) Get(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.entries[name]
	return score, ok
}

// Len returns the number of names on the board.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot copies the board, ordered by name.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	snap := make(Snapshot, 0, len(s.entries))
	for name, score := range s.entries {
		snap = append(snap, Entry{Name: name, Score: score})
	}
	s.mu.RUnlock()

	slices.SortFunc(snap, func(a, b Entry) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return snap
}
