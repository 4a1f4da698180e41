package physics

import "math"

// Contact describes where one polygon's vertex has entered another.
type Contact struct {
	Point  Vec2
	Normal Vec2 // unit, pointing out of the penetrated polygon
	Edge   int
}

// FindContacts returns one contact for every vertex of b lying inside a. The
// contact edge is the first edge of a, in vertex order, crossed by the
// segment from b's center of mass to the vertex.
func FindContacts(a, b *Polygon) []Contact {
	var contacts []Contact
	for i := 0; i < b.n; i++ {
		if c, ok := contactFor(a, b, b.vertices[i]); ok {
			contacts = append(contacts, c)
		}
	}
	return contacts
}

func contactFor(a, b *Polygon, v Vec2) (Contact, bool) {
	if !a.bb.Contains(v) || !a.ContainsPoint(v) {
		return Contact{}, false
	}
	for e := 0; e < a.n; e++ {
		p, q := a.vertices[e], a.vertices[e+1]
		if !segmentsCross(b.cm, v, p, q) {
			continue
		}
		normal := q.Minus(p).Perp().Normalize()
		if normal.Dot(p.Plus(q).Times(0.5).Minus(a.cm)) < 0 {
			normal = normal.Invert()
		}
		return Contact{Point: v, Normal: normal, Edge: e}, true
	}
	return Contact{}, false
}

// CollidePolygons resolves the vertices of b that have penetrated a. Contacts
// are detected and resolved one vertex at a time so later vertices see the
// velocities produced by earlier impulses. Returns the number of impulses
// applied.
func CollidePolygons(a, b *Polygon) int {
	if !a.bb.Overlaps(b.bb) {
		return 0
	}
	hits := 0
	for i := 0; i < b.n; i++ {
		c, ok := contactFor(a, b, b.vertices[i])
		if !ok {
			continue
		}
		if ResolveContact(a, b, c) {
			hits++
		}
	}
	return hits
}

// ResolveContact applies equal and opposite impulses to a and b at the
// contact point when the bodies are approaching along the contact normal. It
// returns false when they are separating or the impulse would not be finite.
// Pair contacts are always perfectly elastic.
func ResolveContact(a, b *Polygon, c Contact) bool {
	n := c.Normal
	vRel := b.VelocityAt(c.Point).Minus(a.VelocityAt(c.Point))
	approach := vRel.Dot(n)
	if approach >= 0 {
		return false
	}

	rA := c.Point.Minus(a.cm).Perp()
	rB := c.Point.Minus(b.cm).Perp()
	rAn := rA.Dot(n)
	rBn := rB.Dot(n)

	denom := 1/a.mass + 1/b.mass + rAn*rAn/a.inertia + rBn*rBn/b.inertia
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return false
	}
	j := -2 * approach / denom

	b.LinearVelocity = b.LinearVelocity.Plus(n.Times(j / b.mass))
	a.LinearVelocity = a.LinearVelocity.Minus(n.Times(j / a.mass))
	b.AngularVelocity += rBn * j / b.inertia
	a.AngularVelocity -= rAn * j / a.inertia
	return true
}
