package server

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
)

func newTestServer() *Server {
	return NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
}

func TestRegisterAndUnregister(t *testing.T) {
	s := newTestServer()
	a := s.RegisterClient("ann")
	b := s.RegisterClient("bob")

	if a.ID == b.ID {
		t.Fatal("duplicate client IDs")
	}
	if s.Players() != 2 {
		t.Fatalf("Players = %d, want 2", s.Players())
	}

	s.UnregisterClient(a.ID)
	s.UnregisterClient(a.ID) // Second call is a no-op
	if s.Players() != 1 {
		t.Fatalf("Players = %d, want 1", s.Players())
	}
	if _, ok := <-a.EventsCh; ok {
		t.Fatal("events channel not closed on unregister")
	}
}

func TestSessionsShareTheStore(t *testing.T) {
	s := newTestServer()
	first := s.NewSession()
	defer first.Close()
	second := s.NewSession()
	defer second.Close()

	if err := first.Claim("ann"); err != nil {
		t.Fatal(err)
	}
	if err := second.Claim("ann"); err == nil {
		t.Fatal("second session claimed a taken name")
	}
	if s.Store().Len() != 1 {
		t.Fatalf("store Len = %d, want 1", s.Store().Len())
	}
}

func TestShutdownNotifiesAndWaits(t *testing.T) {
	s := newTestServer()
	h := s.RegisterClient("ann")

	go func() {
		ev := <-h.EventsCh
		if ev.Type == EventServerShutdown {
			s.UnregisterClient(h.ID)
		}
	}()

	if !s.Shutdown(2 * time.Second) {
		t.Fatal("Shutdown timed out with a cooperative client")
	}
}

func TestShutdownTimesOut(t *testing.T) {
	s := newTestServer()
	s.RegisterClient("stuck")

	start := time.Now()
	if s.Shutdown(100 * time.Millisecond) {
		t.Fatal("Shutdown reported success with a client still connected")
	}
	if time.Since(start) < 100*time.Millisecond {
		t.Fatal("Shutdown returned before the timeout")
	}
}

func TestLateJoinerSeesShutdown(t *testing.T) {
	s := newTestServer()
	s.Shutdown(0)

	h := s.RegisterClient("late")
	select {
	case ev := <-h.EventsCh:
		if ev.Type != EventServerShutdown {
			t.Fatalf("event = %v", ev.Type)
		}
	default:
		t.Fatal("late joiner not told about shutdown")
	}
}
