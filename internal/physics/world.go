package physics

// World owns the polygons of one simulation and advances them tick by tick.
// It is not safe for concurrent use; callers serialize access.
type World struct {
	cfg      Config
	rng      Rand
	polygons []*Polygon
	nextID   PolygonID
	ticks    uint64
}

// NewWorld returns an empty world. rng drives every random choice so a
// fixed seed replays the same run.
func NewWorld(cfg Config, rng Rand) *World {
	return &World{cfg: cfg, rng: rng, nextID: 1}
}

func (w *World) Config() Config { return w.cfg }

func (w *World) Ticks() uint64 { return w.ticks }

func (w *World) Len() int { return len(w.polygons) }

// Tick advances the world by one step: every polygon first bounces off the
// walls and moves, then every ordered pair is checked for penetration.
// Restitution only scales wall impulses.
func (w *World) Tick() {
	g := w.cfg.gravity()
	for _, p := range w.polygons {
		p.UpdateBoundingBox()
		CollideWalls(p, w.cfg.Width, w.cfg.Height, w.cfg.Restitution)
		p.Integrate(g)
	}

	for i, a := range w.polygons {
		for j, b := range w.polygons {
			if i == j {
				continue
			}
			CollidePolygons(a, b)
		}
	}
	w.ticks++
}

// Polygons returns snapshots of every polygon in list order.
func (w *World) Polygons() []PolygonSnapshot {
	out := make([]PolygonSnapshot, len(w.polygons))
	for i, p := range w.polygons {
		out[i] = p.Snapshot()
	}
	return out
}

// Polygon returns the polygon with the given id.
func (w *World) Polygon(id PolygonID) (*Polygon, bool) {
	for _, p := range w.polygons {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Insert adds a fully built polygon as is and assigns it an id.
func (w *World) Insert(p *Polygon) PolygonID {
	p.ID = w.nextID
	w.nextID++
	p.UpdateBoundingBox()
	w.polygons = append(w.polygons, p)
	return p.ID
}

// AddPolygon creates a polygon from vertices, or a random one when vertices
// is empty, gives it a random color and velocity within the configured
// bounds and appends it.
func (w *World) AddPolygon(vertices []Vec2) (PolygonID, error) {
	if len(vertices) == 0 {
		center := randomCenter(w.rng, w.cfg.Width, w.cfg.Height, w.cfg.Radius)
		vertices = RandomVertices(w.rng, w.cfg, center)
	}
	return w.addWithRandomMotion(vertices)
}

// AddPolygonAt creates a random polygon around point.
func (w *World) AddPolygonAt(point Vec2) (PolygonID, error) {
	return w.addWithRandomMotion(RandomVertices(w.rng, w.cfg, point))
}

func (w *World) addWithRandomMotion(vertices []Vec2) (PolygonID, error) {
	p, err := NewPolygon(vertices)
	if err != nil {
		return 0, err
	}
	p.Color = RandomColor(w.rng)
	p.LinearVelocity = Vec2{
		X: uniform(w.rng, w.cfg.MaxLinearSpeed),
		Y: uniform(w.rng, w.cfg.MaxLinearSpeed),
	}
	p.AngularVelocity = uniform(w.rng, w.cfg.MaxAngularSpeed)
	return w.Insert(p), nil
}

// Populate adds n random polygons.
func (w *World) Populate(n int) error {
	for i := 0; i < n; i++ {
		if _, err := w.AddPolygon(nil); err != nil {
			return err
		}
	}
	return nil
}

// RemovePolygon removes the first polygon, in list order, containing point.
func (w *World) RemovePolygon(point Vec2) bool {
	for i, p := range w.polygons {
		if p.ContainsPoint(point) {
			w.polygons = append(w.polygons[:i], w.polygons[i+1:]...)
			return true
		}
	}
	return false
}

// Energy returns the total kinetic and rotational energy.
func (w *World) Energy() (kinetic, rotational float64) {
	for _, p := range w.polygons {
		kinetic += p.KineticEnergy()
		rotational += p.RotationalEnergy()
	}
	return kinetic, rotational
}

// Momentum returns the total linear momentum.
func (w *World) Momentum() Vec2 {
	var m Vec2
	for _, p := range w.polygons {
		m = m.Plus(p.Momentum())
	}
	return m
}
