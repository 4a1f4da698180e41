package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned for vertex sets that cannot form a rigid body.
var ErrInvalidGeometry = errors.New("invalid polygon geometry")

// minArea is the smallest |area| accepted as non-degenerate.
const minArea = 1e-9

// PolygonID identifies a polygon inside a World.
type PolygonID int

// Polygon is a rigid convex body. The vertex slice is stored closed: the
// first vertex is repeated after the last so edge i is always
// vertices[i] → vertices[i+1].
//
// Mass, center of mass and inertia are computed once in NewPolygon. After
// that the center of mass is carried along by Integrate together with the
// vertices and is never derived from them again.
type Polygon struct {
	ID              PolygonID
	LinearVelocity  Vec2
	AngularVelocity float64
	Color           string

	vertices []Vec2
	n        int
	mass     float64
	cm       Vec2
	inertia  float64
	bb       BoundingBox
}

// NewPolygon builds a polygon from an ordered vertex list. Either winding
// order is accepted. Velocities start at zero.
func NewPolygon(vertices []Vec2) (*Polygon, error) {
	n := len(vertices)
	if n < 3 {
		return nil, fmt.Errorf("%w: need at least 3 vertices, got %d", ErrInvalidGeometry, n)
	}
	for i, v := range vertices {
		if !v.IsFinite() {
			return nil, fmt.Errorf("%w: vertex %d is not finite", ErrInvalidGeometry, i)
		}
	}

	closed := make([]Vec2, n+1)
	copy(closed, vertices)
	closed[n] = vertices[0]

	area := signedArea(closed, n)
	if math.Abs(area) < minArea {
		return nil, fmt.Errorf("%w: zero area", ErrInvalidGeometry)
	}

	p := &Polygon{
		vertices: closed,
		n:        n,
		mass:     math.Abs(area),
	}
	p.cm = centroid(closed, n, area)
	p.inertia = secondMoment(closed, n, p.cm)
	if p.inertia <= 0 || math.IsNaN(p.inertia) {
		return nil, fmt.Errorf("%w: non-positive moment of inertia", ErrInvalidGeometry)
	}
	p.UpdateBoundingBox()
	return p, nil
}

// signedArea is the shoelace formula over a closed vertex slice.
func signedArea(vs []Vec2, n int) float64 {
	area := 0.0
	for i := 0; i < n; i++ {
		area += vs[i].Cross(vs[i+1])
	}
	return area / 2
}

func centroid(vs []Vec2, n int, area float64) Vec2 {
	x, y := 0.0, 0.0
	for i := 0; i < n; i++ {
		term := vs[i].Cross(vs[i+1])
		x += (vs[i].X + vs[i+1].X) * term
		y += (vs[i].Y + vs[i+1].Y) * term
	}
	return Vec2{X: x / (6 * area), Y: y / (6 * area)}
}

// secondMoment is the polar moment of inertia about cm for unit density.
func secondMoment(vs []Vec2, n int, cm Vec2) float64 {
	inertia := 0.0
	for i := 0; i < n; i++ {
		a := vs[i].Minus(cm)
		b := vs[i+1].Minus(cm)
		term := a.Cross(b)
		inertia += (a.X*a.X + a.X*b.X + b.X*b.X + a.Y*a.Y + a.Y*b.Y + b.Y*b.Y) * term
	}
	return math.Abs(inertia / 12)
}

// N returns the number of distinct vertices.
func (p *Polygon) N() int { return p.n }

// Vertex returns vertex i, wrapping around in both directions.
func (p *Polygon) Vertex(i int) Vec2 {
	i %= p.n
	if i < 0 {
		i += p.n
	}
	return p.vertices[i]
}

// Edge returns the endpoints of edge i.
func (p *Polygon) Edge(i int) (Vec2, Vec2) {
	return p.Vertex(i), p.Vertex(i + 1)
}

// Vertices returns a copy of the distinct vertices.
func (p *Polygon) Vertices() []Vec2 {
	out := make([]Vec2, p.n)
	copy(out, p.vertices[:p.n])
	return out
}

func (p *Polygon) Mass() float64 { return p.mass }
func (p *Polygon) Inertia() float64 { return p.inertia }
func (p *Polygon) CenterOfMass() Vec2 { return p.cm }
func (p *Polygon) BoundingBox() BoundingBox { return p.bb }

// UpdateBoundingBox recomputes the box from the current vertices.
func (p *Polygon) UpdateBoundingBox() {
	p.bb = boundingBoxOf(p.vertices[:p.n])
}

// VelocityAt returns the velocity of a point rigidly attached to the polygon.
func (p *Polygon) VelocityAt(point Vec2) Vec2 {
	r := point.Minus(p.cm).Perp()
	return p.LinearVelocity.Plus(r.Times(p.AngularVelocity))
}

// Integrate advances the polygon by one tick: the center of mass moves by the
// linear velocity and every vertex is rotated about the moved center. gravity
// is then added to the vertical velocity.
func (p *Polygon) Integrate(gravity float64) {
	oldCM := p.cm
	p.cm = oldCM.Plus(p.LinearVelocity)
	for i := 0; i <= p.n; i++ {
		p.vertices[i] = p.vertices[i].Minus(oldCM).Rotate(p.AngularVelocity).Plus(p.cm)
	}
	if gravity != 0 {
		p.LinearVelocity.Y += gravity
	}
	p.UpdateBoundingBox()
}

// ContainsPoint runs an even-odd ray cast. Points on an edge or vertex are
// reported as contained.
func (p *Polygon) ContainsPoint(pt Vec2) bool {
	inside := false
	for i := 0; i < p.n; i++ {
		a, b := p.vertices[i], p.vertices[i+1]
		if onSegment(pt, a, b) {
			return true
		}
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// KineticEnergy is the translational energy ½mv².
func (p *Polygon) KineticEnergy() float64 {
	return 0.5 * p.mass * p.LinearVelocity.MagnitudeSquared()
}

// RotationalEnergy is ½Iω².
func (p *Polygon) RotationalEnergy() float64 {
	return 0.5 * p.inertia * p.AngularVelocity * p.AngularVelocity
}

// Momentum returns the linear momentum m·v.
func (p *Polygon) Momentum() Vec2 {
	return p.LinearVelocity.Times(p.mass)
}

// PolygonSnapshot is a read-only copy of the state a renderer needs.
type PolygonSnapshot struct {
	ID              PolygonID `json:"id"`
	Vertices        []Vec2    `json:"vertices"`
	CenterOfMass    Vec2      `json:"center_of_mass"`
	Color           string    `json:"color"`
	LinearVelocity  Vec2      `json:"linear_velocity"`
	AngularVelocity float64   `json:"angular_velocity"`
}

func (p *Polygon) Snapshot() PolygonSnapshot {
	return PolygonSnapshot{
		ID:              p.ID,
		Vertices:        p.Vertices(),
		CenterOfMass:    p.cm,
		Color:           p.Color,
		LinearVelocity:  p.LinearVelocity,
		AngularVelocity: p.AngularVelocity,
	}
}
