package physics

// Bounds is an axis-aligned box given by its top-left corner and size.
// Sizes are expected to be non-negative; nothing enforces it.
type Bounds struct {
	Position Vec2
	Size     Vec2
}

// NewBounds creates a box from its top-left corner and size.
func NewBounds(position, size Vec2) Bounds {
	return Bounds{Position: position, Size: size}
}

// Center returns the centre point of the box.
func (b Bounds) Center() Vec2 {
	return b.Position.Add(b.Size.Scale(0.5))
}

// Max returns the bottom-right corner.
func (b Bounds) Max() Vec2 {
	return b.Position.Add(b.Size)
}

// Translate moves the box by offset.
func (b *Bounds) Translate(offset Vec2) {
	b.Position = b.Position.Add(offset)
}

// Intersects reports whether the two boxes overlap.
// Boxes that only share an edge do not intersect.
func (b Bounds) Intersects(o Bounds) bool {
	bMax, oMax := b.Max(), o.Max()
	if b.Position.X >= oMax.X || o.Position.X >= bMax.X {
		return false
	}
	if b.Position.Y >= oMax.Y || o.Position.Y >= bMax.Y {
		return false
	}
	return true
}

// Contains reports whether p lies inside the box (edges included).
func (b Bounds) Contains(p Vec2) bool {
	m := b.Max()
	return p.X >= b.Position.X && p.X <= m.X && p.Y >= b.Position.Y && p.Y <= m.Y
}
