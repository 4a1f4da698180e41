package physics

import (
	"math"
	"sort"
)

// boundaryEpsilon is the tolerance used when deciding whether a point sits on an edge.
const boundaryEpsilon = 1e-9

// BoundingBox is an axis-aligned box. It is only ever used as a cheap reject
// before the exact tests run.
type BoundingBox struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// boundingBoxOf returns the box around pts. pts must not be empty.
func boundingBoxOf(pts []Vec2) BoundingBox {
	bb := BoundingBox{XMin: pts[0].X, XMax: pts[0].X, YMin: pts[0].Y, YMax: pts[0].Y}
	for _, p := range pts[1:] {
		bb.XMin = math.Min(bb.XMin, p.X)
		bb.XMax = math.Max(bb.XMax, p.X)
		bb.YMin = math.Min(bb.YMin, p.Y)
		bb.YMax = math.Max(bb.YMax, p.Y)
	}
	return bb
}

// Contains reports whether p lies inside the box or on its border.
func (bb BoundingBox) Contains(p Vec2) bool {
	return p.X >= bb.XMin && p.X <= bb.XMax && p.Y >= bb.YMin && p.Y <= bb.YMax
}

// Within reports whether the box lies entirely inside [0,w]×[0,h].
func (bb BoundingBox) Within(w, h float64) bool {
	return bb.XMin >= 0 && bb.XMax <= w && bb.YMin >= 0 && bb.YMax <= h
}

func (bb BoundingBox) Overlaps(o BoundingBox) bool {
	return bb.XMin <= o.XMax && bb.XMax >= o.XMin && bb.YMin <= o.YMax && bb.YMax >= o.YMin
}

// segmentsCross reports whether segment p1→p2 meets segment q1→q2. The far
// endpoint p2 is excluded, so a segment that only touches an edge at p2 does
// not count. Parallel and coincident segments never intersect.
func segmentsCross(p1, p2, q1, q2 Vec2) bool {
	r := p2.Minus(p1)
	s := q2.Minus(q1)
	denom := r.Cross(s)
	if denom == 0 {
		return false
	}
	qp := q1.Minus(p1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	return t >= 0 && t < 1 && u >= 0 && u <= 1
}

// onSegment reports whether p lies on the closed segment a→b.
func onSegment(p, a, b Vec2) bool {
	ab := b.Minus(a)
	ap := p.Minus(a)
	scale := math.Max(ab.Magnitude(), 1)
	if math.Abs(ab.Cross(ap)) > boundaryEpsilon*scale*scale {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-boundaryEpsilon && p.X <= math.Max(a.X, b.X)+boundaryEpsilon &&
		p.Y >= math.Min(a.Y, b.Y)-boundaryEpsilon && p.Y <= math.Max(a.Y, b.Y)+boundaryEpsilon
}

func cross3(o, a, b Vec2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// convexHull returns the hull of pts using Andrew's monotone chain, starting
// from the lexicographically smallest point. Collinear points are dropped.
func convexHull(pts []Vec2) []Vec2 {
	sorted := append([]Vec2(nil), pts...)
	if len(sorted) < 3 {
		return sorted
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X == sorted[j].X {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lower []Vec2
	for _, p := range sorted {
		for len(lower) >= 2 && cross3(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []Vec2
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross3(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}
