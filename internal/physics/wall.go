package physics

import "math"

// Wall normals point back into the arena.
var (
	normalFromRight  = Vec2{X: -1, Y: 0}
	normalFromLeft   = Vec2{X: 1, Y: 0}
	normalFromBottom = Vec2{X: 0, Y: -1}
	normalFromTop    = Vec2{X: 0, Y: 1}
)

// CollideWalls finds the first vertex of p, in vertex order, that lies
// beyond a wall of the [0,width]×[0,height] arena while still moving outward
// through it, and resolves that single contact. Walls are tried right, left,
// bottom, top. A polygon that is outside but already receding is left alone.
// Reports whether an impulse was applied.
func CollideWalls(p *Polygon, width, height, restitution float64) bool {
	if p.bb.Within(width, height) {
		return false
	}
	i, n, ok := wallContact(p, width, height)
	if !ok {
		return false
	}
	return ResolveWallImpulse(p, n, i, restitution)
}

func wallContact(p *Polygon, width, height float64) (int, Vec2, bool) {
	for i := 0; i < p.n; i++ {
		v := p.vertices[i]
		vel := p.VelocityAt(v)
		switch {
		case v.X > width && vel.X > 0:
			return i, normalFromRight, true
		case v.X < 0 && vel.X < 0:
			return i, normalFromLeft, true
		case v.Y > height && vel.Y > 0:
			return i, normalFromBottom, true
		case v.Y < 0 && vel.Y < 0:
			return i, normalFromTop, true
		}
	}
	return 0, Vec2{}, false
}

// ResolveWallImpulse applies the impulse for vertex i striking an immovable
// wall with unit normal n. Only velocities change. It returns false when the
// impulse would not be finite.
func ResolveWallImpulse(p *Polygon, n Vec2, i int, restitution float64) bool {
	v := p.Vertex(i)
	r := v.Minus(p.cm).Perp()
	rn := r.Dot(n)

	denom := 1/p.mass + rn*rn/p.inertia
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return false
	}
	j := -(1 + restitution) * p.VelocityAt(v).Dot(n) / denom

	p.LinearVelocity = p.LinearVelocity.Plus(n.Times(j / p.mass))
	p.AngularVelocity += rn * j / p.inertia
	return true
}
