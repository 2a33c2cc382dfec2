package client

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AlanFayz/Speedy-Jumper/internal/input"
	"github.com/AlanFayz/Speedy-Jumper/internal/leaderboard"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/game"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/server"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
)

func fixedTermSize() (int, int, error) { return 80, 24, nil }

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyRegister(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, "register "+name)
}

func (n *recordingNotifier) NotifyTime(name string, t float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t == leaderboard.Withdraw {
		n.events = append(n.events, "withdraw "+name)
	}
}

func (n *recordingNotifier) snapshot() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// newTestClient connects a client with no prefilled name.
func newTestClient(t *testing.T, srv server.GameServer, keys string) (*Client, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	c := NewClient(srv, bufio.NewReader(strings.NewReader(keys)), out, ClientOptions{
		TermSizeFunc: fixedTermSize,
				Logger:       log.New(io.Discard),
		Muted:        true,
	})
	return c, out
}

func runWithTimeout(t *testing.T, c *Client) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- c.Run() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunQuitsAndUnregisters(t *testing.T) {
	srv := server.NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
	c, out := newTestClient(t, srv, "\x03")

	if srv.Players() != 1 {
		t.Fatalf("Players = %d after connect, want 1", srv.Players())
	}
	runWithTimeout(t, c)

	if srv.Players() != 0 {
		t.Fatalf("Players = %d after quit, want 0", srv.Players())
	}
	if !strings.Contains(out.String(), "\033[?25h") {
		t.Error("cursor not restored on exit")
	}
}

func TestRunWithdrawsClaimedName(t *testing.T) {
	store := leaderboard.NewStore()
	notifier := &recordingNotifier{}
	srv := server.NewServer(store, notifier, log.New(io.Discard))
	c, _ := newTestClient(t, srv, "bob\r\x03")

	runWithTimeout(t, c)

	got := notifier.snapshot()
	want := []string{"register bob", "withdraw bob"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("store Len = %d after disconnect, want 0", store.Len())
	}
}

func TestMenuInput(t *testing.T) {
	srv := server.NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
	c, _ := newTestClient(t, srv, "")
	defer srv.UnregisterClient(c.handle.ID)

	c.input = input.Input{Text: []rune("ab"), Backspace: true, Enter: true}
	gi := c.gameInput()
	if string(gi.Text) != "ab" || !gi.Backspace || !gi.Confirm {
		t.Fatalf("menu input = %+v", gi)
	}
	if gi.Boost || gi.PlayAgain {
		t.Fatalf("menu input leaked other actions: %+v", gi)
	}

	c.input = input.Input{Escape: true}
	c.gameInput()
	if c.state.Running {
		t.Fatal("escape in menu did not quit")
	}
}

func TestPlayingInput(t *testing.T) {
	srv := server.NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
	c, _ := newTestClient(t, srv, "")
	defer srv.UnregisterClient(c.handle.ID)
	defer c.session.Close()

	c.machine.Step(0, game.Input{Text: []rune("ann"), Confirm: true})
	if c.machine.Phase() != game.PhasePlaying {
		t.Fatalf("phase = %v, want playing", c.machine.Phase())
	}
	center := c.machine.Player().Center()

	tests := []struct {
		name        string
		in          input.Input
		mouse       *physics.Vec2
		wantBoost   bool
		wantPointer bool
		pointer     physics.Vec2
	}{
		{"idle", input.Input{}, nil, false, false, physics.Vec2{}},
		{"space boosts", input.Input{Space: true}, nil, true, false, physics.Vec2{}},
		{"click boosts", input.Input{Click: true}, nil, true, false, physics.Vec2{}},
		{"right arrow aims right", input.Input{Right: true}, nil, false, true, center.Add(physics.V(keyboardAimDistance, 0))},
		{"up arrow aims up", input.Input{Up: true}, nil, false, true, center.Add(physics.V(0, -keyboardAimDistance))},
		{"mouse aims", input.Input{}, &physics.Vec2{X: 0.1, Y: 0.9}, false, true, physics.V(0.1, 0.9)},
		{"arrows win over mouse", input.Input{Left: true}, &physics.Vec2{X: 0.1, Y: 0.9}, false, true, center.Add(physics.V(-keyboardAimDistance, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.state.hasMouse = tt.mouse != nil
			if tt.mouse != nil {
				c.state.pointer = *tt.mouse
			}
			c.input = tt.in
			gi := c.gameInput()
			if gi.Boost != tt.wantBoost {
				t.Errorf("Boost = %v, want %v", gi.Boost, tt.wantBoost)
			}
			if gi.HasPointer != tt.wantPointer {
				t.Fatalf("HasPointer = %v, want %v", gi.HasPointer, tt.wantPointer)
			}
			if tt.wantPointer && gi.Pointer.Sub(tt.pointer).Length() > 1e-9 {
				t.Errorf("Pointer = %v, want %v", gi.Pointer, tt.pointer)
			}
		})
	}
}

func TestTrackMouseIgnoresReportsOutsideField(t *testing.T) {
	srv := server.NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
	c, _ := newTestClient(t, srv, "")
	defer srv.UnregisterClient(c.handle.ID)

	c.trackMouse(input.MouseEvent{Col: 0, Row: 12})
	c.trackMouse(input.MouseEvent{Col: 40, Row: 30})
	if c.state.hasMouse {
		t.Fatalf("pointer tracked outside the field: %v", c.state.pointer)
	}

	c.trackMouse(input.MouseEvent{Col: 40, Row: 12})
	if !c.state.hasMouse {
		t.Fatal("pointer inside the field ignored")
	}
	if p := c.state.pointer; p.X <= 0 || p.X >= 1 || p.Y <= 0 || p.Y >= 1 {
		t.Fatalf("pointer = %v, want inside the unit field", p)
	}
}

func TestShutdownEventStartsCountdown(t *testing.T) {
	srv := server.NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
	c, _ := newTestClient(t, srv, "")
	defer srv.UnregisterClient(c.handle.ID)

	c.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}
	c.processServerEvents()
	if !c.state.Shutdown {
		t.Fatal("shutdown event ignored")
	}
	if c.state.shutdownTimer != config.ShutdownDisplaySeconds {
		t.Fatalf("shutdownTimer = %v, want %v", c.state.shutdownTimer, config.ShutdownDisplaySeconds)
	}

	c.state.delta = time.Duration(config.ShutdownDisplaySeconds * float64(time.Second))
	c.updateShutdownState()
	if c.state.Running {
		t.Fatal("client still running after countdown")
	}
}

func TestUsernamePrefillsName(t *testing.T) {
	srv := server.NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
	c := NewClient(srv, bufio.NewReader(strings.NewReader("")), io.Discard, ClientOptions{
		TermSizeFunc: fixedTermSize,
		Username:     "alice",
	})
	defer srv.UnregisterClient(c.handle.ID)

	if got := c.machine.NameInput(); got != "alice" {
		t.Fatalf("NameInput = %q, want alice", got)
	}
}

func TestHasRune(t *testing.T) {
	tests := []struct {
		text []rune
		want bool
	}{
		{nil, false},
		{[]rune("abc"), false},
		{[]rune("xq"), true},
		{[]rune("Q"), true},
	}
	for _, tt := range tests {
		if got := hasRune(tt.text, 'q', 'Q'); got != tt.want {
			t.Errorf("hasRune(%q) = %v, want %v", string(tt.text), got, tt.want)
		}
	}
}

func TestDrawFrameShowsMenu(t *testing.T) {
	srv := server.NewServer(leaderboard.NewStore(), nil, log.New(io.Discard))
	c, out := newTestClient(t, srv, "")
	defer srv.UnregisterClient(c.handle.ID)

	if err := c.drawFrame(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Name:", "no data"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("menu frame missing %q", want)
		}
	}
}
