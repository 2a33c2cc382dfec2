package game

import (
	"github.com/AlanFayz/Speedy-Jumper/internal/loop/config"
	"github.com/AlanFayz/Speedy-Jumper/internal/object"
)

// CollisionResult counts the collectibles applied in one pass.
type CollisionResult struct {
	Helpful int
	Hurtful int
}

// ResolveCollisions applies every collectible overlapping the player and
// marks it consumed. Consumed collectibles are skipped, so each one
// affects the player once even if it survives until the next cleanup.
// The boost counter never ends below zero.
func ResolveCollisions(p *object.Player, items []*object.Collectible) CollisionResult {
	var res CollisionResult
	bounds := p.Bounds()

	for _, c := range items {
		if c.Consumed || !c.Bounds.Intersects(bounds) {
			continue
		}
		c.Consumed = true

		if c.Hurtful {
			p.BoostCounter -= config.HurtfulBoostCost
			p.ViewRadius = config.ViewRadiusSmall
			res.Hurtful++
		} else {
			p.BoostCounter += config.HelpfulBoostGain
			p.ViewRadius = config.ViewRadiusLarge
			res.Helpful++
		}
	}

	p.BoostCounter = max(p.BoostCounter, 0)
	return res
}
