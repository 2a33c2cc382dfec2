package object

import (
	"time"

	"github.com/AlanFayz/Speedy-Jumper/internal/physics"
)

// Collectible is a falling box that either feeds or drains the player's boosts.
type Collectible struct {
	Bounds       physics.Bounds
	Hurtful      bool
	Velocity     physics.Vec2
	Acceleration physics.Vec2
	Consumed     bool // Effect already applied; removed on the next cleanup
}

// Update integrates acceleration and velocity over dt.
func (c *Collectible) Update(delta time.Duration) {
	dt := delta.Seconds()
	c.Velocity = c.Velocity.Add(c.Acceleration.Scale(dt))
	c.Bounds.Translate(c.Velocity.Scale(dt))
}

// Draw renders hurtful collectibles filled and helpful ones as outlines.
func (c *Collectible) Draw(ctx DrawContext) error {
	b := c.Bounds
	if c.Hurtful {
		ctx.Canvas.FillRect(b.Position.X, b.Position.Y, b.Size.X, b.Size.Y)
		return nil
	}
	ctx.Canvas.StrokeRect(b.Position.X, b.Position.Y, b.Size.X, b.Size.Y)
	return nil
}
