package sim

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/physics"
)

// EventPublisher fans scene events out to other instances.
type EventPublisher interface {
	PublishSceneEvent(ctx context.Context, ev SceneEvent) error
}

// SceneEvent is the payload published on the scene_events channel.
type SceneEvent struct {
	Type       string        `json:"type"`
	SceneToken string        `json:"scene_token"`
	ShapeID    int           `json:"shape_id,omitempty"`
	Point      *physics.Vec2 `json:"point,omitempty"`
	At         time.Time     `json:"at"`
}

const (
	EventSceneCreated = "scene_created"
	EventSceneDeleted = "scene_deleted"
	EventScenePaused  = "scene_paused"
	EventSceneResumed = "scene_resumed"
	EventShapeAdded   = "shape_added"
	EventShapeRemoved = "shape_removed"
)

// Overrides replaces individual physics settings for one scene. Field names
// match physics.Config so a stored config decodes straight into it.
type Overrides struct {
	Width           *float64 `json:"width,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	Restitution     *float64 `json:"restitution,omitempty"`
	GravityEnabled  *bool    `json:"gravity_enabled,omitempty"`
	Gravity         *float64 `json:"gravity,omitempty"`
	MaxLinearSpeed  *float64 `json:"max_linear_speed,omitempty"`
	MaxAngularSpeed *float64 `json:"max_angular_speed,omitempty"`
	Radius          *float64 `json:"radius,omitempty"`
	Noise           *float64 `json:"noise,omitempty"`
	MinSides        *int     `json:"min_sides,omitempty"`
	MaxSides        *int     `json:"max_sides,omitempty"`
	BallSpeed       *float64 `json:"ball_speed,omitempty"`
	BallSquish      *float64 `json:"ball_squish,omitempty"`
	BallFixedRadius *bool    `json:"ball_fixed_radius,omitempty"`
}

func (o *Overrides) apply(c physics.Config) physics.Config {
	if o == nil {
		return c
	}
	if o.Width != nil {
		c.Width = *o.Width
	}
	if o.Height != nil {
		c.Height = *o.Height
	}
	if o.Restitution != nil {
		c.Restitution = *o.Restitution
	}
	if o.GravityEnabled != nil {
		c.GravityEnabled = *o.GravityEnabled
	}
	if o.Gravity != nil {
		c.Gravity = *o.Gravity
	}
	if o.MaxLinearSpeed != nil {
		c.MaxLinearSpeed = *o.MaxLinearSpeed
	}
	if o.MaxAngularSpeed != nil {
		c.MaxAngularSpeed = *o.MaxAngularSpeed
	}
	if o.Radius != nil {
		c.Radius = *o.Radius
	}
	if o.Noise != nil {
		c.Noise = *o.Noise
	}
	if o.MinSides != nil {
		c.MinSides = *o.MinSides
	}
	if o.MaxSides != nil {
		c.MaxSides = *o.MaxSides
	}
	if o.BallSpeed != nil {
		c.BallSpeed = *o.BallSpeed
	}
	if o.BallSquish != nil {
		c.BallSquish = *o.BallSquish
	}
	if o.BallFixedRadius != nil {
		c.BallFixedRadius = *o.BallFixedRadius
	}
	return c
}

// CreateOptions describes a new scene. A nil Count uses the configured
// default; Seed 0 falls back to the configured seed, then to the clock.
type CreateOptions struct {
	Kind      Kind       `json:"kind"`
	Count     *int       `json:"count,omitempty"`
	Seed      uint64     `json:"seed,omitempty"`
	Overrides *Overrides `json:"config,omitempty"`
}

// Manager owns every live scene.
type Manager struct {
	scenes map[string]*Scene
	cfg    config.Config
	events EventPublisher
	mu     sync.RWMutex
	cfgMu  sync.RWMutex
}

func NewManager(cfg *config.Config, events EventPublisher) *Manager {
	return &Manager{
		scenes: make(map[string]*Scene),
		cfg:    *cfg,
		events: events,
	}
}

// Config returns a copy of the settings new scenes are created with.
func (m *Manager) Config() config.Config {
	m.cfgMu.RLock()
	defer m.cfgMu.RUnlock()
	return m.cfg
}

// SetRuntimeValue changes one runtime setting. Existing scenes keep the
// settings they were created with.
func (m *Manager) SetRuntimeValue(key, value string) error {
	m.cfgMu.Lock()
	defer m.cfgMu.Unlock()
	next := m.cfg
	if err := next.SetRuntimeValue(key, value); err != nil {
		return err
	}
	if err := next.Physics().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	m.cfg = next
	return nil
}

// generateID generates a random alphanumeric ID
func generateID(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[n.Int64()]
	}
	return string(result)
}

func generateSceneToken() string {
	return "SCN_" + generateID(10)
}

func resolveSeed(cfg config.Config, seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	if cfg.DefaultSeed != 0 {
		return uint64(cfg.DefaultSeed)
	}
	return uint64(time.Now().UnixNano())
}

// Create builds a scene populated with random shapes and starts it running.
func (m *Manager) Create(opts CreateOptions) (*Scene, error) {
	cfg := m.Config()
	count := cfg.DefaultShapeCount
	if opts.Count != nil {
		count = *opts.Count
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: count must not be negative", ErrInvalidRequest)
	}
	if cfg.MaxShapesPerScene > 0 && count > cfg.MaxShapesPerScene {
		return nil, fmt.Errorf("%w: count exceeds %d", ErrSceneFull, cfg.MaxShapesPerScene)
	}

	s, err := newScene(cfg, opts)
	if err != nil {
		return nil, err
	}
	switch w := s.sim.(type) {
	case polygonSim:
		if err := w.w.Populate(count); err != nil {
			return nil, fmt.Errorf("populate scene: %w", err)
		}
	case ballSim:
		w.w.Populate(count)
	}
	return m.register(cfg, s)
}

// Restore builds a scene from saved shapes. The scene starts paused so an
// operator can inspect it before resuming.
func (m *Manager) Restore(opts CreateOptions, shapes []ShapeSpec) (*Scene, error) {
	cfg := m.Config()
	if cfg.MaxShapesPerScene > 0 && len(shapes) > cfg.MaxShapesPerScene {
		return nil, fmt.Errorf("%w: preset has %d shapes", ErrSceneFull, len(shapes))
	}
	s, err := newScene(cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := s.sim.Restore(shapes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	s.running = false
	return m.register(cfg, s)
}

func newScene(cfg config.Config, opts CreateOptions) (*Scene, error) {
	kind, err := ParseKind(string(opts.Kind))
	if err != nil {
		return nil, err
	}
	pcfg := opts.Overrides.apply(cfg.Physics())
	if err := pcfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	seed := resolveSeed(cfg, opts.Seed)
	return &Scene{
		Token:     generateSceneToken(),
		Kind:      kind,
		Seed:      seed,
		Config:    pcfg,
		CreatedAt: time.Now(),
		sim:       newSimulation(kind, pcfg, seed),
		running:   true,
	}, nil
}

func (m *Manager) register(cfg config.Config, s *Scene) (*Scene, error) {
	m.mu.Lock()
	if cfg.MaxScenes > 0 && len(m.scenes) >= cfg.MaxScenes {
		m.mu.Unlock()
		return nil, ErrTooManyScenes
	}
	m.scenes[s.Token] = s
	m.mu.Unlock()

	log.Printf("[SIM] Scene %s created: kind=%s seed=%d shapes=%d", s.Token, s.Kind, s.Seed, s.Len())
	m.Publish(SceneEvent{Type: EventSceneCreated, SceneToken: s.Token})
	return s, nil
}

func (m *Manager) Get(token string) (*Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scenes[token]
	if !ok {
		return nil, ErrSceneNotFound
	}
	return s, nil
}

func (m *Manager) Delete(token string) error {
	m.mu.Lock()
	if _, ok := m.scenes[token]; !ok {
		m.mu.Unlock()
		return ErrSceneNotFound
	}
	delete(m.scenes, token)
	m.mu.Unlock()

	log.Printf("[SIM] Scene %s deleted", token)
	m.Publish(SceneEvent{Type: EventSceneDeleted, SceneToken: token})
	return nil
}

// List returns scene summaries, oldest first.
func (m *Manager) List() []Summary {
	scenes := m.snapshot()
	out := make([]Summary, 0, len(scenes))
	for _, s := range scenes {
		out = append(out, s.Summary())
	}
	return out
}

func (m *Manager) snapshot() []*Scene {
	m.mu.RLock()
	scenes := make([]*Scene, 0, len(m.scenes))
	for _, s := range m.scenes {
		scenes = append(scenes, s)
	}
	m.mu.RUnlock()
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].CreatedAt.Equal(scenes[j].CreatedAt) {
			return scenes[i].Token < scenes[j].Token
		}
		return scenes[i].CreatedAt.Before(scenes[j].CreatedAt)
	})
	return scenes
}

// Publish sends ev to the event publisher, if one is configured. Failures
// are logged and never surface to the caller.
func (m *Manager) Publish(ev SceneEvent) {
	if m.events == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.events.PublishSceneEvent(ctx, ev); err != nil {
		log.Printf("[SIM] Failed to publish %s for scene %s: %v", ev.Type, ev.SceneToken, err)
	}
}
