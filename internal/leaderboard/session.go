package leaderboard

import (
	"fmt"
	"strings"
	"sync"
)

// Session is one client's view of the leaderboard. It owns at most one
// registered name and withdraws it when closed.
type Session struct {
	store    *Store
	notifier Notifier

	mu         sync.Mutex
	name       string
	registered bool
	cached     Snapshot

	closeOnce sync.Once
}

// NewSession creates an unregistered session. A nil notifier drops events.
func NewSession(store *Store, notifier Notifier) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Session{store: store, notifier: notifier}
}

// Claim registers name on the board with a score of 0. The name is
// trimmed first. Claiming a new name releases the previous one.
func (s *Session) Claim(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registered && s.name == name {
		return nil
	}
	if err := s.store.Claim(name, 0); err != nil {
		return fmt.Errorf("claim %q: %w", name, err)
	}

	if s.registered {
		s.store.Remove(s.name)
		s.notifier.NotifyTime(s.name, Withdraw)
	}
	s.name = name
	s.registered = true
	s.notifier.NotifyRegister(name)
	s.cached = s.store.Snapshot()
	return nil
}

// Name returns the registered name, or "" when nothing is registered.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registered {
		return ""
	}
	return s.name
}

// Registered reports whether the session currently owns a name.
func (s *Session) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered
}

// ReportTime publishes t as the session's best time. A negative t
// withdraws the name. Reports from an unregistered session are ignored.
func (s *Session) ReportTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registered {
		return
	}
	s.store.Update(s.name, t)
	s.notifier.NotifyTime(s.name, t)
	if t < 0 {
		s.registered = false
	}
}

// Sync refreshes the cached snapshot from the store.
func (s *Session) Sync() {
	snap := s.store.Snapshot()
	s.mu.Lock()
	s.cached = snap
	s.mu.Unlock()
}

// Leaderboard returns the snapshot taken by the last Sync or Claim.
func (s *Session) Leaderboard() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached
}

// Close withdraws the registered name. It sends exactly one withdrawal,
// with an empty name when nothing is registered, and is safe to call
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		name := ""
		if s.registered {
			name = s.name
			s.store.Remove(name)
			s.registered = false
		}
		s.notifier.NotifyTime(name, Withdraw)
	})
}
