package object

import (
	"testing"
	"time"

	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
	"github.com/AlanFayz/Speedy-Jumper/internal/timer"
)

type recordingAudio struct {
	played []Sound
}

func (a *recordingAudio) Play(s Sound, _ bool, _ float64) {
	a.played = append(a.played, s)
}

func (a *recordingAudio) count(s Sound) int {
	n := 0
	for _, p := range a.played {
		if p == s {
			n++
		}
	}
	return n
}

var testScreen = Screen{Width: 1, Height: 1}

const frame = time.Second / 60

func newTestPlayer() (*Player, *timer.ManualClock) {
	clk := &timer.ManualClock{}
	p := NewCenteredPlayer(testScreen, clk)
	clk.Advance(time.Second) // Past the boost cooldown
	return p, clk
}

func TestPlayerBoostsTowardPointer(t *testing.T) {
	p, _ := newTestPlayer()
	audio := &recordingAudio{}
	pointer := p.Center().Add(physics.V(0, -0.3))

	p.Update(UpdateContext{
		Delta:  frame,
		Input:  Input{Pointer: pointer, HasPointer: true, Boost: true},
		Screen: testScreen,
		Audio:  audio,
	})

	if p.BoostCounter != config.InitialBoosts-1 {
		t.Errorf("BoostCounter = %d, want %d", p.BoostCounter, config.InitialBoosts-1)
	}
	if p.Velocity.Y >= 0 {
		t.Errorf("Velocity.Y = %v, want upward", p.Velocity.Y)
	}
	if audio.count(SoundBoost) != 1 {
		t.Errorf("boost sounds = %d, want 1", audio.count(SoundBoost))
	}
}

func TestPlayerBoostGating(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(p *Player, clk *timer.ManualClock)
		input   func(p *Player) Input
		boosted bool
	}{
		{
			name:    "ready",
			setup:   func(*Player, *timer.ManualClock) {},
			input:   func(p *Player) Input { return Input{Pointer: physics.V(0.5, 0), HasPointer: true, Boost: true} },
			boosted: true,
		},
		{
			name: "cooldown",
			setup: func(p *Player, clk *timer.ManualClock) {
				p.boostTimer.Reset()
				clk.Advance(config.BoostCooldown / 2)
			},
			input: func(p *Player) Input { return Input{Pointer: physics.V(0.5, 0), HasPointer: true, Boost: true} },
		},
		{
			name:  "no boosts left",
			setup: func(p *Player, _ *timer.ManualClock) { p.BoostCounter = 0 },
			input: func(p *Player) Input { return Input{Pointer: physics.V(0.5, 0), HasPointer: true, Boost: true} },
		},
		{
			name:  "no pointer",
			setup: func(*Player, *timer.ManualClock) {},
			input: func(p *Player) Input { return Input{Boost: true} },
		},
		{
			name:  "pointer on centre",
			setup: func(*Player, *timer.ManualClock) {},
			input: func(p *Player) Input { return Input{Pointer: p.Center(), HasPointer: true, Boost: true} },
		},
		{
			name:  "not pressed",
			setup: func(*Player, *timer.ManualClock) {},
			input: func(p *Player) Input { return Input{Pointer: physics.V(0.5, 0), HasPointer: true} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, clk := newTestPlayer()
			tt.setup(p, clk)
			before := p.BoostCounter

			p.Update(UpdateContext{Delta: frame, Input: tt.input(p), Screen: testScreen})

			if got := p.BoostCounter < before; got != tt.boosted {
				t.Errorf("boosted = %v, want %v", got, tt.boosted)
			}
		})
	}
}

func TestPlayerGravity(t *testing.T) {
	p, _ := newTestPlayer()
	y := p.Position.Y
	for i := 0; i < 30; i++ {
		p.Update(UpdateContext{Delta: frame, Screen: testScreen})
	}
	if p.Velocity.Y <= 0 || p.Position.Y <= y {
		t.Errorf("player did not fall: pos %v vel %v", p.Position, p.Velocity)
	}
}

func TestPlayerSpeedClamped(t *testing.T) {
	p, _ := newTestPlayer()
	p.Velocity = physics.V(0, 50)
	p.Update(UpdateContext{Delta: frame, Screen: testScreen})
	if p.Velocity.Length() > config.MaxSpeed+1e-9 {
		t.Errorf("speed = %v, want <= %v", p.Velocity.Length(), config.MaxSpeed)
	}
}

func TestPlayerBouncesOffWalls(t *testing.T) {
	tests := []struct {
		name  string
		pos   physics.Vec2
		vel   physics.Vec2
		check func(v physics.Vec2) bool
	}{
		{"left", physics.V(0, 0.5), physics.V(-0.5, 0), func(v physics.Vec2) bool { return v.X > 0 }},
		{"right", physics.V(1-config.PlayerWidth, 0.5), physics.V(0.5, 0), func(v physics.Vec2) bool { return v.X < 0 }},
		{"top", physics.V(0.5, 0), physics.V(0, -0.5), func(v physics.Vec2) bool { return v.Y > 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPlayer()
			audio := &recordingAudio{}
			p.Position = tt.pos
			p.Velocity = tt.vel

			p.Update(UpdateContext{Delta: frame, Screen: testScreen, Audio: audio})

			if !tt.check(p.Velocity) {
				t.Errorf("velocity after bounce = %v", p.Velocity)
			}
			if audio.count(SoundBounce) != 1 {
				t.Errorf("bounce sounds = %d, want 1", audio.count(SoundBounce))
			}
		})
	}
}

func TestPlayerNoBounceWhenLeavingWall(t *testing.T) {
	p, _ := newTestPlayer()
	audio := &recordingAudio{}
	p.Position = physics.V(0, 0.5)
	p.Velocity = physics.V(0.3, 0)

	p.Update(UpdateContext{Delta: frame, Screen: testScreen, Audio: audio})

	if audio.count(SoundBounce) != 0 {
		t.Error("bounced while moving away from the wall")
	}
}

func TestPlayerClampedToSidesAndTop(t *testing.T) {
	p, _ := newTestPlayer()
	p.Position = physics.V(0.01, 0.01)
	p.Velocity = physics.V(-0.9, 0)
	for i := 0; i < 10; i++ {
		p.Update(UpdateContext{Delta: frame, Screen: testScreen})
		if p.Position.X < 0 || p.Position.Y < 0 || p.Position.X > 1-p.Size.X {
			t.Fatalf("frame %d: position %v outside field", i, p.Position)
		}
	}
}

func TestPlayerFallsThroughBottom(t *testing.T) {
	p, _ := newTestPlayer()
	p.Position = physics.V(0.5, 1.5)
	p.Update(UpdateContext{Delta: frame, Screen: testScreen})
	if p.Position.Y <= 1.5 {
		t.Errorf("Position.Y = %v, want below 1.5", p.Position.Y)
	}
}
