// Package object holds the simulated entities: the player, the falling
// collectibles and the field that owns them.
package object

import (
	"time"

	"github.com/AlanFayz/Speedy-Jumper/internal/draw"
	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
)

// Screen is the playfield in normalized units.
type Screen struct {
	Width  float64
	Height float64
}

// Bounds returns the playfield rectangle anchored at the origin.
func (s Screen) Bounds() physics.Bounds {
	return physics.NewBounds(physics.Vec2{}, physics.V(s.Width, s.Height))
}

// Sound identifies a sound effect.
type Sound int

const (
	SoundBoost  Sound = iota // Played when a boost fires
	SoundBounce              // Played when the player bounces off a wall
)

// Audio plays sound effects. Implementations must not block.
type Audio interface {
	Play(sound Sound, looped bool, volume float64)
}

// NopAudio discards every sound.
type NopAudio struct{}

// Play does nothing.
func (NopAudio) Play(Sound, bool, float64) {}

// Input is the per-frame control state consumed by the player.
type Input struct {
	Pointer    physics.Vec2 // Aim point in normalized coordinates
	HasPointer bool
	Boost      bool
}

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta  time.Duration
	Input  Input
	Screen Screen
	Audio  Audio
}

// DrawContext provides drawing resources for objects.
// The canvas logical size matches the playfield, so objects draw in
// playfield coordinates.
type DrawContext struct {
	Canvas *draw.Canvas
}

// Drawable is implemented by everything the terminal client renders.
type Drawable interface {
	Draw(ctx DrawContext) error
}

// ShouldRenderBlink returns true if an object with remaining blink time
// should be rendered this frame (for blinking effect).
// Returns true always if remainingTime <= 0.
func ShouldRenderBlink(remainingTime float64, frequency float64) bool {
	if remainingTime <= 0 {
		return true
	}
	phase := int(remainingTime * frequency)
	return phase%2 != 0
}
