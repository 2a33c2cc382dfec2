package object

import (
	"math"
	"time"

	"github.com/AlanFayz/Speedy-Jumper/internal/draw"
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
	"github.com/AlanFayz/Speedy-Jumper/internal/timer"
)

// Player is the sprite steered toward the pointer.
type Player struct {
	Position physics.Vec2 // Top-left corner
	Velocity physics.Vec2
	Size     physics.Vec2

	BoostCounter  int     // Boosts left; doubles as lives against hurtful collectibles
	ViewRadius    float64 // Collectibles further than this from the centre are not drawn
	BoostCooldown time.Duration
	BoostImpulse  float64 // Velocity added by a boost
	Gravity       float64
	MaxSpeed      float64
	Damping       float64 // Velocity fraction lost per 60Hz frame

	boostTimer timer.Timer
}

// NewPlayer creates a player at the given top-left position.
func NewPlayer(position physics.Vec2, clock timer.Clock) *Player {
	return &Player{
		Position:      position,
		Size:          physics.V(config.PlayerWidth, config.PlayerHeight),
		BoostCounter:  config.InitialBoosts,
		ViewRadius:    config.ViewRadiusLarge,
		BoostCooldown: config.BoostCooldown,
		BoostImpulse:  config.BoostImpulse,
		Gravity:       config.Gravity,
		MaxSpeed:      config.MaxSpeed,
		Damping:       config.Damping,
		boostTimer:    timer.New(clock),
	}
}

// NewCenteredPlayer creates a player centred on the screen.
func NewCenteredPlayer(screen Screen, clock timer.Clock) *Player {
	p := NewPlayer(physics.Vec2{}, clock)
	p.Position = physics.V(screen.Width/2-p.Size.X/2, screen.Height/2-p.Size.Y/2)
	return p
}

// Bounds returns the player's bounding box.
func (p *Player) Bounds() physics.Bounds {
	return physics.NewBounds(p.Position, p.Size)
}

// Center returns the centre of the player.
func (p *Player) Center() physics.Vec2 {
	return p.Bounds().Center()
}

// Update applies steering, gravity, wall bounces and damping, then moves
// the player. The bottom edge is open: falling through it is how a run ends.
func (p *Player) Update(ctx UpdateContext) {
	dt := ctx.Delta.Seconds()
	audio := ctx.Audio
	if audio == nil {
		audio = NopAudio{}
	}

	p.handleBoost(ctx.Input, audio)

	p.Velocity.Y += p.Gravity * dt

	p.handleBorder(ctx.Screen, audio)

	p.Velocity = p.Velocity.ClampLength(p.MaxSpeed)
	p.Position = p.Position.Add(p.Velocity.Scale(dt))

	// Normalize damping to ~60fps
	keep := math.Pow(1-p.Damping, dt*60)
	p.Velocity = p.Velocity.Lerp(physics.Vec2{}, 1-keep)

	p.Position = p.Position.Clamp(
		physics.V(0, 0),
		physics.V(ctx.Screen.Width-p.Size.X, math.MaxFloat64),
	)
}

func (p *Player) handleBoost(in Input, audio Audio) {
	if !in.HasPointer {
		return
	}
	direction := in.Pointer.Sub(p.Center()).NormalizeOrZero()
	if direction.IsZero() {
		return
	}

	if in.Boost && p.boostTimer.HasElapsed(p.BoostCooldown) && p.BoostCounter > 0 {
		p.Velocity = p.Velocity.Add(direction.Scale(p.BoostImpulse))
		p.boostTimer.Reset()
		p.BoostCounter--
		audio.Play(SoundBoost, false, config.SoundVolume)
	}
}

// handleBorder pushes the player back off the left, right and top walls
// when it is touching one and moving into it.
func (p *Player) handleBorder(screen Screen, audio Audio) {
	var normal physics.Vec2
	if p.Position.X <= 0 {
		normal.X += 1
	} else if p.Position.X >= screen.Width-p.Size.X {
		normal.X -= 1
	}
	if p.Position.Y <= 0 {
		normal.Y += 1
	}

	if normal.IsZero() || p.Velocity.Dot(normal) >= 0 {
		return
	}

	audio.Play(SoundBounce, false, config.SoundVolume)
	force := normal.NormalizeOrZero().Scale(p.Velocity.Length() * config.BorderRestitution)
	p.Velocity = p.Velocity.Add(force)
}

// BoostReady reports whether the boost cooldown has passed.
func (p *Player) BoostReady() bool {
	return p.boostTimer.HasElapsed(p.BoostCooldown)
}

// Draw renders the player as a filled box with an outlined view radius.
func (p *Player) Draw(ctx DrawContext) error {
	b := p.Bounds()
	ctx.Canvas.FillRect(b.Position.X, b.Position.Y, b.Size.X, b.Size.Y)

	c := b.Center()
	ctx.Canvas.DrawCircle(draw.Point{X: c.X, Y: c.Y}, p.ViewRadius)
	return nil
}
