package physics

import "math"

// Ball is a soft disc. Mass grows with r² and overlapping balls push each
// other apart instead of colliding instantaneously.
type Ball struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Mass     float64 `json:"mass"`
	Color    string  `json:"color"`
}

func NewBall(position, velocity Vec2, radius float64) *Ball {
	return &Ball{
		Position: position,
		Velocity: velocity,
		Radius:   radius,
		Mass:     radius * radius,
	}
}

// Contains reports whether p lies inside the ball or on its rim.
func (b *Ball) Contains(p Vec2) bool {
	return b.Position.Minus(p).MagnitudeSquared() <= b.Radius*b.Radius
}

// Energy is m·|v|², the quantity the squish step keeps constant.
func (b *Ball) Energy() float64 {
	return b.Mass * b.Velocity.MagnitudeSquared()
}

// move flips a velocity component whenever the rim touches a wall, then
// steps the position.
func (b *Ball) move(width, height float64) {
	if b.Position.X-b.Radius <= 0 || b.Position.X+b.Radius >= width {
		b.Velocity.X = -b.Velocity.X
	}
	if b.Position.Y-b.Radius <= 0 || b.Position.Y+b.Radius >= height {
		b.Velocity.Y = -b.Velocity.Y
	}
	b.Position = b.Position.Plus(b.Velocity)
}

// Squish pushes two overlapping balls apart with a force that grows as their
// centers approach and is weighted by the other ball's mass, then rescales
// both velocities so the pair keeps its total energy. It returns false when
// the balls do not overlap.
func Squish(a, b *Ball, squish float64) bool {
	d := a.Position.Minus(b.Position)
	dist2 := d.MagnitudeSquared()
	if dist2 == 0 {
		return false
	}
	if math.Sqrt(dist2) > a.Radius+b.Radius {
		return false
	}

	before := a.Energy() + b.Energy()
	a.Velocity = a.Velocity.Plus(d.Times(squish * b.Mass / (1000 * dist2)))
	b.Velocity = b.Velocity.Minus(d.Times(squish * a.Mass / (1000 * dist2)))

	after := a.Energy() + b.Energy()
	if after > 0 {
		scale := math.Sqrt(before / after)
		a.Velocity = a.Velocity.Times(scale)
		b.Velocity = b.Velocity.Times(scale)
	}
	return true
}

// BallWorld is the ball counterpart of World.
type BallWorld struct {
	cfg    Config
	rng    Rand
	balls  []*Ball
	nextID int
	ticks  uint64
}

func NewBallWorld(cfg Config, rng Rand) *BallWorld {
	return &BallWorld{cfg: cfg, rng: rng, nextID: 1}
}

func (w *BallWorld) Config() Config { return w.cfg }

func (w *BallWorld) Ticks() uint64 { return w.ticks }

func (w *BallWorld) Len() int { return len(w.balls) }

func (w *BallWorld) radius() float64 {
	if w.cfg.BallFixedRadius {
		return 50
	}
	return 50*w.rng.Float64() + 5
}

// Insert appends b and assigns it an id.
func (w *BallWorld) Insert(b *Ball) int {
	b.ID = w.nextID
	w.nextID++
	w.balls = append(w.balls, b)
	return b.ID
}

// AddBall adds a random ball, centered at at when given.
func (w *BallWorld) AddBall(at *Vec2) int {
	r := w.radius()
	pos := randomCenter(w.rng, w.cfg.Width, w.cfg.Height, r)
	if at != nil {
		pos = *at
	}
	vel := Vec2{X: w.cfg.BallSpeed * w.rng.Float64(), Y: w.cfg.BallSpeed * w.rng.Float64()}
	b := NewBall(pos, vel, r)
	b.Color = RandomColor(w.rng)
	return w.Insert(b)
}

// Populate adds n random balls.
func (w *BallWorld) Populate(n int) {
	for i := 0; i < n; i++ {
		w.AddBall(nil)
	}
}

// RemoveBall removes the first ball containing point.
func (w *BallWorld) RemoveBall(point Vec2) bool {
	for i, b := range w.balls {
		if b.Contains(point) {
			w.balls = append(w.balls[:i], w.balls[i+1:]...)
			return true
		}
	}
	return false
}

// Tick moves every ball, then squishes each overlapping unordered pair once.
func (w *BallWorld) Tick() {
	for _, b := range w.balls {
		b.move(w.cfg.Width, w.cfg.Height)
	}
	for i := 0; i < len(w.balls); i++ {
		for j := i + 1; j < len(w.balls); j++ {
			Squish(w.balls[i], w.balls[j], w.cfg.BallSquish)
		}
	}
	w.ticks++
}

// Balls returns copies of every ball in list order.
func (w *BallWorld) Balls() []Ball {
	out := make([]Ball, len(w.balls))
	for i, b := range w.balls {
		out[i] = *b
	}
	return out
}

// Energy returns the total m·|v|² over all balls.
func (w *BallWorld) Energy() float64 {
	total := 0.0
	for _, b := range w.balls {
		total += b.Energy()
	}
	return total
}
