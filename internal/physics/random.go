package physics

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Rand is the source of every random choice the simulation makes. A
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniform returns a value in [-max, max).
func uniform(rng Rand, max float64) float64 {
	return max * (2*rng.Float64() - 1)
}

// RandomColor returns a css rgb() string.
func RandomColor(rng Rand) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", rng.IntN(256), rng.IntN(256), rng.IntN(256))
}

// randomCenter places a point at least margin away from every wall when the
// arena is large enough, and at the arena center otherwise.
func randomCenter(rng Rand, width, height, margin float64) Vec2 {
	c := Vec2{X: width / 2, Y: height / 2}
	if width > 2*margin {
		c.X = (width-2*margin)*rng.Float64() + margin
	}
	if height > 2*margin {
		c.Y = (height-2*margin)*rng.Float64() + margin
	}
	return c
}

// RandomVertices jitters n points around a circle of the configured radius
// centered at center and returns their convex hull.
func RandomVertices(rng Rand, cfg Config, center Vec2) []Vec2 {
	minSides, maxSides := cfg.MinSides, cfg.MaxSides
	if minSides < 3 {
		minSides = 3
	}
	if maxSides < minSides {
		maxSides = minSides
	}
	n := minSides + rng.IntN(maxSides-minSides+1)

	pts := make([]Vec2, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Vec2{
			X: center.X + cfg.Radius*math.Cos(theta) + rng.Float64()*cfg.Noise,
			Y: center.Y + cfg.Radius*math.Sin(theta) + rng.Float64()*cfg.Noise,
		}
	}
	return convexHull(pts)
}
