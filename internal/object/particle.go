package object

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived speck thrown off when a collectible is picked up.
type Particle struct {
	Position    physics.Vec2
	Velocity    physics.Vec2
	Lifetime    time.Duration // Remaining
	MaxLifetime time.Duration
	Drag        float64 // Velocity kept per 60Hz frame (1.0 = no drag)
	Hurtful     bool    // Burst came from a hurtful collectible
}

const (
	burstCount    = 8
	burstSpeed    = 0.35
	burstLifetime = 400 * time.Millisecond
)

func newParticle(pos, vel physics.Vec2, lifetime time.Duration, hurtful bool) *Particle {
	p := particlePool.Get().(*Particle)
	p.Position = pos
	p.Velocity = vel
	p.Lifetime = lifetime
	p.MaxLifetime = lifetime
	p.Drag = 0.92
	p.Hurtful = hurtful
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the field.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnBurst appends a circular burst of particles centred on at.
func SpawnBurst(dst []*Particle, at physics.Vec2, hurtful bool, rng *rand.Rand) []*Particle {
	for i := 0; i < burstCount; i++ {
		angle := rng.Float64() * 2 * math.Pi
		// Speed varies from 50% to 150%
		speed := burstSpeed * (0.5 + rng.Float64())
		life := time.Duration(float64(burstLifetime) * (0.5 + rng.Float64()*0.5))

		vel := physics.V(math.Cos(angle)*speed, math.Sin(angle)*speed)
		dst = append(dst, newParticle(at, vel, life, hurtful))
	}
	return dst
}

// Update moves the particle and reports whether it has expired.
func (p *Particle) Update(delta time.Duration) bool {
	p.Lifetime -= delta
	if p.Lifetime <= 0 {
		return true
	}

	dt := delta.Seconds()
	// Normalize drag to ~60fps
	p.Velocity = p.Velocity.Scale(math.Pow(p.Drag, dt*60))
	p.Position = p.Position.Add(p.Velocity.Scale(dt))
	return false
}

// Faded reports whether the particle is in the last quarter of its life.
func (p *Particle) Faded() bool {
	return p.MaxLifetime > 0 && float64(p.Lifetime)/float64(p.MaxLifetime) < 0.25
}

// Draw renders the particle as a single pixel.
func (p *Particle) Draw(ctx DrawContext) error {
	if p.Faded() {
		return nil
	}
	ctx.Canvas.SetFloat(p.Position.X, p.Position.Y)
	return nil
}
