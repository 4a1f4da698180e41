package sim

import (
	"sync"
	"time"

	"github.com/polyspin/backend/internal/physics"
)

// Scene is one named simulation. All access to the underlying world goes
// through the scene mutex.
type Scene struct {
	Token     string
	Kind      Kind
	Seed      uint64
	Config    physics.Config
	CreatedAt time.Time

	mu      sync.Mutex
	sim     simulation
	running bool
}

// Summary is the listing view of a scene.
type Summary struct {
	Token     string    `json:"token"`
	Kind      Kind      `json:"kind"`
	Seed      uint64    `json:"seed"`
	Shapes    int       `json:"shapes"`
	Tick      uint64    `json:"tick"`
	Running   bool      `json:"running"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Scene) frameLocked() Frame {
	f := Frame{
		Token:   s.Token,
		Kind:    s.Kind,
		Tick:    s.sim.Ticks(),
		Width:   s.Config.Width,
		Height:  s.Config.Height,
		Running: s.running,
	}
	s.sim.Fill(&f)
	return f
}

// Step advances the scene one tick and returns the resulting frame.
func (s *Scene) Step() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Tick()
	return s.frameLocked()
}

// stepIfRunning is the runner's entry point; paused scenes are left alone.
func (s *Scene) stepIfRunning() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return Frame{}, false
	}
	s.sim.Tick()
	return s.frameLocked(), true
}

func (s *Scene) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Scene) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Token:     s.Token,
		Kind:      s.Kind,
		Seed:      s.Seed,
		Shapes:    s.sim.Len(),
		Tick:      s.sim.Ticks(),
		Running:   s.running,
		CreatedAt: s.CreatedAt,
	}
}

func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Len()
}

// AddShape inserts a shape from explicit vertices, at a point, or at random.
func (s *Scene) AddShape(vertices []physics.Vec2, at *physics.Vec2, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > 0 && s.sim.Len() >= limit {
		return 0, ErrSceneFull
	}
	return s.sim.Add(vertices, at)
}

// RemoveShape deletes the first shape containing p.
func (s *Scene) RemoveShape(p physics.Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.RemoveAt(p)
}

// ClickResult reports what a click did.
type ClickResult struct {
	Action  string `json:"action"`
	ShapeID int    `json:"shape_id,omitempty"`
}

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// Click removes the shape under p, or adds a new one centered at p when
// nothing was hit.
func (s *Scene) Click(p physics.Vec2, limit int) (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim.RemoveAt(p) {
		return ClickResult{Action: ActionRemoved}, nil
	}
	if limit > 0 && s.sim.Len() >= limit {
		return ClickResult{}, ErrSceneFull
	}
	id, err := s.sim.Add(nil, &p)
	if err != nil {
		return ClickResult{}, err
	}
	return ClickResult{Action: ActionAdded, ShapeID: id}, nil
}

func (s *Scene) Pause() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Scene) Resume() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
}

func (s *Scene) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Shapes exports the current bodies for persistence.
func (s *Scene) Shapes() []ShapeSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Export()
}
