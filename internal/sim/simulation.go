package sim

import (
	"fmt"

	"github.com/polyspin/backend/internal/physics"
)

// Kind selects which body type a scene simulates.
type Kind string

const (
	KindPolygons Kind = "polygons"
	KindBalls    Kind = "balls"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindPolygons:
		return KindPolygons, nil
	case KindBalls:
		return KindBalls, nil
	}
	return "", fmt.Errorf("%w: unknown scene kind %q", ErrInvalidRequest, s)
}

// ShapeSpec is the portable description of one body, used for presets.
type ShapeSpec struct {
	Vertices        []physics.Vec2 `json:"vertices,omitempty"`
	Center          physics.Vec2   `json:"center"`
	Radius          float64        `json:"radius,omitempty"`
	LinearVelocity  physics.Vec2   `json:"linear_velocity"`
	AngularVelocity float64        `json:"angular_velocity,omitempty"`
	Color           string         `json:"color"`
}

// Frame is what the renderer paints for one tick.
type Frame struct {
	Token    string                    `json:"token"`
	Kind     Kind                      `json:"kind"`
	Tick     uint64                    `json:"tick"`
	Width    float64                   `json:"width"`
	Height   float64                   `json:"height"`
	Running  bool                      `json:"running"`
	Energy   float64                   `json:"energy"`
	Polygons []physics.PolygonSnapshot `json:"polygons,omitempty"`
	Balls    []physics.Ball            `json:"balls,omitempty"`
}

// simulation is the surface shared by polygon and ball worlds.
type simulation interface {
	Tick()
	Ticks() uint64
	Len() int
	// Add inserts a shape. vertices wins over at; with neither the shape
	// is placed at random.
	Add(vertices []physics.Vec2, at *physics.Vec2) (int, error)
	RemoveAt(p physics.Vec2) bool
	Fill(f *Frame)
	Export() []ShapeSpec
	Restore(specs []ShapeSpec) error
}

type polygonSim struct {
	w *physics.World
}

func (s polygonSim) Tick()         { s.w.Tick() }
func (s polygonSim) Ticks() uint64 { return s.w.Ticks() }
func (s polygonSim) Len() int      { return s.w.Len() }

func (s polygonSim) Add(vertices []physics.Vec2, at *physics.Vec2) (int, error) {
	var (
		id  physics.PolygonID
		err error
	)
	if len(vertices) == 0 && at != nil {
		id, err = s.w.AddPolygonAt(*at)
	} else {
		id, err = s.w.AddPolygon(vertices)
	}
	return int(id), err
}

func (s polygonSim) RemoveAt(p physics.Vec2) bool { return s.w.RemovePolygon(p) }

func (s polygonSim) Fill(f *Frame) {
	f.Polygons = s.w.Polygons()
	kinetic, rotational := s.w.Energy()
	f.Energy = kinetic + rotational
}

func (s polygonSim) Export() []ShapeSpec {
	snaps := s.w.Polygons()
	specs := make([]ShapeSpec, len(snaps))
	for i, p := range snaps {
		specs[i] = ShapeSpec{
			Vertices:        p.Vertices,
			Center:          p.CenterOfMass,
			LinearVelocity:  p.LinearVelocity,
			AngularVelocity: p.AngularVelocity,
			Color:           p.Color,
		}
	}
	return specs
}

func (s polygonSim) Restore(specs []ShapeSpec) error {
	for i, shape := range specs {
		p, err := physics.NewPolygon(shape.Vertices)
		if err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
		p.LinearVelocity = shape.LinearVelocity
		p.AngularVelocity = shape.AngularVelocity
		p.Color = shape.Color
		s.w.Insert(p)
	}
	return nil
}

type ballSim struct {
	w *physics.BallWorld
}

func (s ballSim) Tick()         { s.w.Tick() }
func (s ballSim) Ticks() uint64 { return s.w.Ticks() }
func (s ballSim) Len() int      { return s.w.Len() }

func (s ballSim) Add(_ []physics.Vec2, at *physics.Vec2) (int, error) {
	return s.w.AddBall(at), nil
}

func (s ballSim) RemoveAt(p physics.Vec2) bool { return s.w.RemoveBall(p) }

func (s ballSim) Fill(f *Frame) {
	f.Balls = s.w.Balls()
	f.Energy = s.w.Energy()
}

func (s ballSim) Export() []ShapeSpec {
	balls := s.w.Balls()
	specs := make([]ShapeSpec, len(balls))
	for i, b := range balls {
		specs[i] = ShapeSpec{
			Center:         b.Position,
			Radius:         b.Radius,
			LinearVelocity: b.Velocity,
			Color:          b.Color,
		}
	}
	return specs
}

func (s ballSim) Restore(specs []ShapeSpec) error {
	for i, shape := range specs {
		if shape.Radius <= 0 {
			return fmt.Errorf("shape %d: %w: radius must be positive", i, ErrInvalidRequest)
		}
		b := physics.NewBall(shape.Center, shape.LinearVelocity, shape.Radius)
		b.Color = shape.Color
		s.w.Insert(b)
	}
	return nil
}

func newSimulation(kind Kind, cfg physics.Config, seed uint64) simulation {
	rng := physics.NewRand(seed)
	if kind == KindBalls {
		return ballSim{w: physics.NewBallWorld(cfg, rng)}
	}
	return polygonSim{w: physics.NewWorld(cfg, rng)}
}
