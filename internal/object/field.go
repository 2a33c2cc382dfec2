package object

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
	"github.com/AlanFayz/Speedy-Jumper/internal/timer"
)

// Field owns the live collectibles. It spawns them on a cooldown, moves
// them and prunes the ones that left the screen or were picked up.
type Field struct {
	Cap           int
	Batch         int
	SpawnCooldown time.Duration
	Screen        Screen

	collectibles []*Collectible
	particles    []*Particle
	rng          *rand.Rand
	spawnTimer   timer.Timer
}

// NewField creates an empty field. The first batch spawns once the spawn
// cooldown has passed.
func NewField(screen Screen, clock timer.Clock, rng *rand.Rand) *Field {
	return &Field{
		Cap:           config.MaxCollectibles,
		Batch:         config.SpawnBatch,
		SpawnCooldown: config.SpawnCooldown,
		Screen:        screen,
		rng:           rng,
		spawnTimer:    timer.New(clock),
	}
}

// Collectibles returns the live collectibles. The slice is owned by the field.
func (f *Field) Collectibles() []*Collectible {
	return f.collectibles
}

// Particles returns the live pickup particles.
func (f *Field) Particles() []*Particle {
	return f.particles
}

// Len returns the number of live collectibles.
func (f *Field) Len() int {
	return len(f.collectibles)
}

// Reset drops every collectible and particle and restarts the spawn cooldown.
func (f *Field) Reset() {
	for _, p := range f.particles {
		p.Release()
	}
	clear(f.particles)
	clear(f.collectibles)
	f.collectibles = f.collectibles[:0]
	f.particles = f.particles[:0]
	f.spawnTimer.Reset()
}

// Update moves every collectible and particle by one frame.
func (f *Field) Update(delta time.Duration) {
	for _, c := range f.collectibles {
		c.Update(delta)
	}

	kept := f.particles[:0]
	for _, p := range f.particles {
		if p.Update(delta) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(f.particles[len(kept):])
	f.particles = kept
}

// Cleanup removes collectibles that left the screen, overlap the player or
// were already consumed. Returns how many were removed.
func (f *Field) Cleanup(player physics.Bounds) int {
	screen := f.Screen.Bounds()
	removed := 0

	kept := f.collectibles[:0]
	for _, c := range f.collectibles {
		consumed := c.Consumed || c.Bounds.Intersects(player)
		if consumed || !c.Bounds.Intersects(screen) {
			if consumed {
				center := c.Bounds.Center()
				f.particles = SpawnBurst(f.particles, center, c.Hurtful, f.rng)
			}
			removed++
			continue
		}
		kept = append(kept, c)
	}
	// Drop references held past the new length
	clear(f.collectibles[len(kept):])
	f.collectibles = kept
	return removed
}

// SpawnTick spawns a batch when the cooldown has passed and the field is
// below capacity.
func (f *Field) SpawnTick(player physics.Bounds, elapsed time.Duration) int {
	if len(f.collectibles) >= f.Cap || !f.spawnTimer.HasElapsed(f.SpawnCooldown) {
		return 0
	}
	f.spawnTimer.Reset()
	return f.Spawn(f.Batch, player, elapsed)
}

// Spawn adds up to n collectibles, never exceeding the field capacity.
// Returns how many were added.
func (f *Field) Spawn(n int, player physics.Bounds, elapsed time.Duration) int {
	room := f.Cap - len(f.collectibles)
	if n > room {
		n = room
	}

	added := 0
	for i := 0; i < n; i++ {
		c, ok := f.newCollectible(player, elapsed)
		if !ok {
			continue
		}
		f.collectibles = append(f.collectibles, c)
		added++
	}
	return added
}

// newCollectible draws a random collectible that does not overlap the
// player. Gives up after config.SpawnAttempts draws.
func (f *Field) newCollectible(player physics.Bounds, elapsed time.Duration) (*Collectible, bool) {
	for attempt := 0; attempt < config.SpawnAttempts; attempt++ {
		size := uniform(f.rng, config.CollectibleMinSize, config.CollectibleMaxSize)
		pos := physics.V(
			f.rng.Float64()*math.Max(f.Screen.Width-size, 0),
			f.rng.Float64()*math.Max(f.Screen.Height-size, 0),
		)
		bounds := physics.NewBounds(pos, physics.V(size, size))
		if bounds.Intersects(player) {
			continue
		}

		hi := AccelerationBound(elapsed)
		return &Collectible{
			Bounds:  bounds,
			Hurtful: f.rng.IntN(2) == 0,
			Acceleration: physics.V(
				uniform(f.rng, -hi*config.AccelLateral, hi*config.AccelLateral),
				uniform(f.rng, config.AccelMin, hi),
			),
		}, true
	}
	return nil, false
}

// AccelerationBound returns the upper bound of collectible acceleration
// after the run has lasted elapsed. It decays from config.AccelInitial
// toward config.AccelFloor.
func AccelerationBound(elapsed time.Duration) float64 {
	decay := math.Exp(-elapsed.Seconds() / config.AccelDecay.Seconds())
	return config.AccelFloor + (config.AccelInitial-config.AccelFloor)*decay
}

// Visible returns the collectibles whose centre lies within radius of center.
func (f *Field) Visible(center physics.Vec2, radius float64) []*Collectible {
	var visible []*Collectible
	for _, c := range f.collectibles {
		if physics.PointInCircle(c.Bounds.Center(), center, radius) {
			visible = append(visible, c)
		}
	}
	return visible
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
