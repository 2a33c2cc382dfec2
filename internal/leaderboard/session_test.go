package leaderboard

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

type call struct {
	kind string
	name string
	t    float64
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []call
}

func (r *recordingNotifier) NotifyRegister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"register", name, 0})
}

func (r *recordingNotifier) NotifyTime(name string, t float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{"time", name, t})
}

func (r *recordingNotifier) withdrawals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.kind == "time" && c.t < 0 {
			n++
		}
	}
	return n
}

func TestClaimScenario(t *testing.T) {
	store := NewStore()
	first := NewSession(store, nil)
	second := NewSession(store, nil)

	if err := first.Claim("ann"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	err := second.Claim("ann")
	if !errors.Is(err, ErrNameConflict) {
		t.Fatalf("second claim err = %v, want ErrNameConflict", err)
	}

	want := Snapshot{{Name: "ann", Score: 0}}
	if got := store.Snapshot(); !slices.Equal(got, want) {
		t.Fatalf("store = %v, want %v", got, want)
	}
}

func TestClaimTrimsAndRejectsEmpty(t *testing.T) {
	store := NewStore()
	s := NewSession(store, nil)

	for _, name := range []string{"", "   ", "\t"} {
		if err := s.Claim(name); !errors.Is(err, ErrEmptyName) {
			t.Errorf("Claim(%q) err = %v, want ErrEmptyName", name, err)
		}
	}
	if store.Len() != 0 {
		t.Fatal("empty claim mutated the store")
	}

	if err := s.Claim("  bob "); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get("bob"); !ok {
		t.Fatal("trimmed name not registered")
	}
	if s.Name() != "bob" {
		t.Fatalf("Name = %q, want bob", s.Name())
	}
}

func TestClaimNotifiesAndSnapshots(t *testing.T) {
	store := NewStore()
	store.Upsert("zed", 4)
	n := &recordingNotifier{}
	s := NewSession(store, n)

	if err := s.Claim("ann"); err != nil {
		t.Fatal(err)
	}
	if len(n.calls) != 1 || n.calls[0] != (call{"register", "ann", 0}) {
		t.Fatalf("calls = %v", n.calls)
	}
	if got := s.Leaderboard(); len(got) != 2 {
		t.Fatalf("initial snapshot = %v, want 2 entries", got)
	}
}

func TestReclaimReleasesPreviousName(t *testing.T) {
	store := NewStore()
	n := &recordingNotifier{}
	s := NewSession(store, n)

	s.Claim("ann")
	if err := s.Claim("bob"); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Get("ann"); ok {
		t.Error("previous name still registered")
	}
	if _, ok := store.Get("bob"); !ok {
		t.Error("new name not registered")
	}
	if n.withdrawals() != 1 {
		t.Errorf("withdrawals = %d, want 1", n.withdrawals())
	}
}

func TestReportTime(t *testing.T) {
	store := NewStore()
	n := &recordingNotifier{}
	s := NewSession(store, n)

	s.ReportTime(3)
	if len(n.calls) != 0 || store.Len() != 0 {
		t.Fatal("unregistered report was not ignored")
	}

	s.Claim("ann")
	s.ReportTime(4.5)
	if got, _ := store.Get("ann"); got != 4.5 {
		t.Fatalf("score = %v, want 4.5", got)
	}

	s.ReportTime(Withdraw)
	if _, ok := store.Get("ann"); ok {
		t.Fatal("withdrawal did not remove the entry")
	}
	if s.Registered() {
		t.Fatal("session still registered after withdrawal")
	}

	want := []call{{"register", "ann", 0}, {"time", "ann", 4.5}, {"time", "ann", Withdraw}}
	if !slices.Equal(n.calls, want) {
		t.Fatalf("calls = %v, want %v", n.calls, want)
	}
}

func TestSync(t *testing.T) {
	store := NewStore()
	s := NewSession(store, nil)
	if len(s.Leaderboard()) != 0 {
		t.Fatal("fresh session has data")
	}

	store.Upsert("ann", 2)
	if len(s.Leaderboard()) != 0 {
		t.Fatal("snapshot refreshed without Sync")
	}
	s.Sync()
	if got := s.Leaderboard(); len(got) != 1 || got[0].Name != "ann" {
		t.Fatalf("Leaderboard = %v", got)
	}
}

func TestCloseSendsExactlyOneWithdrawal(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session, store *Store)
		want  call
	}{
		{
			name:  "never claimed",
			setup: func(*Session, *Store) {},
			want:  call{"time", "", Withdraw},
		},
		{
			name: "after failed claim",
			setup: func(s *Session, store *Store) {
				store.Upsert("ann", 1)
				s.Claim("ann")
			},
			want: call{"time", "", Withdraw},
		},
		{
			name:  "registered",
			setup: func(s *Session, _ *Store) { s.Claim("bob") },
			want:  call{"time", "bob", Withdraw},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			n := &recordingNotifier{}
			s := NewSession(store, n)
			tt.setup(s, store)

			s.Close()
			s.Close()

			if got := n.withdrawals(); got != 1 {
				t.Fatalf("withdrawals = %d, want 1", got)
			}
			if last := n.calls[len(n.calls)-1]; last != tt.want {
				t.Fatalf("last call = %v, want %v", last, tt.want)
			}
		})
	}
}

func TestCloseRemovesOnlyOwnEntry(t *testing.T) {
	store := NewStore()
	owner := NewSession(store, nil)
	owner.Claim("ann")

	other := NewSession(store, nil)
	other.Claim("ann") // Conflict
	other.Close()

	if _, ok := store.Get("ann"); !ok {
		t.Fatal("closing a session removed another session's name")
	}

	owner.Close()
	if store.Len() != 0 {
		t.Fatal("owner's entry survived Close")
	}
}

func TestCloseViaDefer(t *testing.T) {
	store := NewStore()
	n := &recordingNotifier{}

	func() {
		s := NewSession(store, n)
		defer s.Close()
		s.Claim("ann")
		panicked := func() (ok bool) {
			defer func() { ok = recover() != nil }()
			defer s.Close()
			panic("frame loop failed")
		}()
		if !panicked {
			t.Fatal("expected panic")
		}
	}()

	if got := n.withdrawals(); got != 1 {
		t.Fatalf("withdrawals = %d, want 1", got)
	}
	if store.Len() != 0 {
		t.Fatal("entry survived teardown")
	}
}
