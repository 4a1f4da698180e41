package sim

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/physics"
)

func testConfig() *config.Config {
	d := physics.DefaultConfig()
	return &config.Config{
		TickIntervalMs:    10,
		FrameCacheEvery:   5,
		DefaultShapeCount: 3,
		DefaultSeed:       42,
		MaxScenes:         4,
		MaxShapesPerScene: 8,
		SceneCacheTTLMins: 60,
		ArenaWidth:        d.Width,
		ArenaHeight:       d.Height,
		Restitution:       d.Restitution,
		Gravity:           d.Gravity,
		MaxLinearSpeed:    d.MaxLinearSpeed,
		MaxAngularSpeed:   d.MaxAngularSpeed,
		PolygonRadius:     d.Radius,
		PolygonNoise:      d.Noise,
		PolygonMinSides:   d.MinSides,
		PolygonMaxSides:   d.MaxSides,
		BallSpeed:         d.BallSpeed,
		BallSquish:        d.BallSquish,
		BallFixedRadius:   d.BallFixedRadius,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []SceneEvent
}

func (p *recordingPublisher) PublishSceneEvent(_ context.Context, ev SceneEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type countingSink struct {
	frames map[string]int
}

func (s *countingSink) BroadcastFrame(f Frame) {
	s.frames[f.Token]++
}

func intPtr(n int) *int { return &n }

func TestCreateDefaults(t *testing.T) {
	m := NewManager(testConfig(), nil)
	s, err := m.Create(CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Kind != KindPolygons {
		t.Errorf("kind = %q, want %q", s.Kind, KindPolygons)
	}
	if s.Seed != 42 {
		t.Errorf("seed = %d, want 42", s.Seed)
	}
	if s.Len() != 3 {
		t.Errorf("shapes = %d, want 3", s.Len())
	}
	if !s.Running() {
		t.Error("new scene should be running")
	}
	f := s.Frame()
	if len(f.Polygons) != 3 || f.Width != 1280 || f.Height != 720 {
		t.Errorf("unexpected frame: %d polygons, %vx%v", len(f.Polygons), f.Width, f.Height)
	}
}

func TestCreateBalls(t *testing.T) {
	m := NewManager(testConfig(), nil)
	s, err := m.Create(CreateOptions{Kind: KindBalls, Count: intPtr(2)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f := s.Step()
	if len(f.Balls) != 2 || len(f.Polygons) != 0 {
		t.Fatalf("frame has %d balls and %d polygons", len(f.Balls), len(f.Polygons))
	}
	if f.Tick != 1 {
		t.Errorf("tick = %d, want 1", f.Tick)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	badRestitution := 2.0
	tests := []struct {
		name string
		opts CreateOptions
		want error
	}{
		{"unknown kind", CreateOptions{Kind: "triangles"}, ErrInvalidRequest},
		{"negative count", CreateOptions{Count: intPtr(-1)}, ErrInvalidRequest},
		{"too many shapes", CreateOptions{Count: intPtr(9)}, ErrSceneFull},
		{"bad restitution", CreateOptions{Overrides: &Overrides{Restitution: &badRestitution}}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(testConfig(), nil)
			if _, err := m.Create(tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOverridesApplied(t *testing.T) {
	m := NewManager(testConfig(), nil)
	width := 500.0
	gravity := true
	s, err := m.Create(CreateOptions{Count: intPtr(0), Overrides: &Overrides{Width: &width, GravityEnabled: &gravity}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Config.Width != 500 || !s.Config.GravityEnabled {
		t.Errorf("overrides not applied: %+v", s.Config)
	}
	if s.Config.Height != 720 {
		t.Errorf("height = %v, want default 720", s.Config.Height)
	}
}

func TestRestoredSceneKeepsShapeSettings(t *testing.T) {
	m := NewManager(testConfig(), nil)
	sides, radius, noise := 4, 20.0, 0.0
	s, err := m.Restore(CreateOptions{Overrides: &Overrides{
		MinSides: &sides,
		MaxSides: &sides,
		Radius:   &radius,
		Noise:    &noise,
	}}, nil)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.Config.MinSides != 4 || s.Config.MaxSides != 4 || s.Config.Radius != 20 {
		t.Errorf("shape settings not applied: %+v", s.Config)
	}

	at := physics.NewVec2(300, 300)
	if _, err := s.AddShape(nil, &at, 0); err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	f := s.Frame()
	if len(f.Polygons) != 1 {
		t.Fatalf("polygons = %d, want 1", len(f.Polygons))
	}
	if n := len(f.Polygons[0].Vertices); n != 4 {
		t.Errorf("spawned polygon has %d vertices, want 4", n)
	}
}

func TestSceneLimit(t *testing.T) {
	m := NewManager(testConfig(), nil)
	for i := 0; i < 4; i++ {
		if _, err := m.Create(CreateOptions{Count: intPtr(0)}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if _, err := m.Create(CreateOptions{Count: intPtr(0)}); !errors.Is(err, ErrTooManyScenes) {
		t.Fatalf("err = %v, want ErrTooManyScenes", err)
	}
	if got := len(m.List()); got != 4 {
		t.Errorf("List returned %d scenes, want 4", got)
	}
}

func TestGetAndDelete(t *testing.T) {
	pub := &recordingPublisher{}
	m := NewManager(testConfig(), pub)
	s, err := m.Create(CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := m.Get(s.Token)
	if err != nil || got != s {
		t.Fatalf("Get(%s) = %v, %v", s.Token, got, err)
	}
	if err := m.Delete(s.Token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(s.Token); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("Get after delete: err = %v", err)
	}
	if err := m.Delete(s.Token); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("second Delete: err = %v", err)
	}
	want := []string{EventSceneCreated, EventSceneDeleted}
	if got := pub.types(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestSameSeedSameFrames(t *testing.T) {
	m := NewManager(testConfig(), nil)
	a, err := m.Create(CreateOptions{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Create(CreateOptions{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	var fa, fb Frame
	for i := 0; i < 25; i++ {
		fa = a.Step()
		fb = b.Step()
	}
	if !reflect.DeepEqual(fa.Polygons, fb.Polygons) {
		t.Fatal("scenes with the same seed diverged")
	}
}

func TestClickAddsThenRemoves(t *testing.T) {
	m := NewManager(testConfig(), nil)
	s, err := m.Create(CreateOptions{Count: intPtr(0)})
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Click(physics.NewVec2(640, 360), 0)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if res.Action != ActionAdded || res.ShapeID == 0 {
		t.Fatalf("first click = %+v, want an added shape", res)
	}
	cm := s.Frame().Polygons[0].CenterOfMass
	res, err = s.Click(cm, 0)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if res.Action != ActionRemoved {
		t.Fatalf("second click = %+v, want removal", res)
	}
	if s.Len() != 0 {
		t.Errorf("shapes = %d, want 0", s.Len())
	}
}

func TestAddShapeRespectsLimit(t *testing.T) {
	m := NewManager(testConfig(), nil)
	s, err := m.Create(CreateOptions{Count: intPtr(2)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddShape(nil, nil, 2); !errors.Is(err, ErrSceneFull) {
		t.Errorf("err = %v, want ErrSceneFull", err)
	}
	if _, err := s.AddShape(nil, nil, 3); err != nil {
		t.Errorf("AddShape under limit: %v", err)
	}
	_, err = s.AddShape([]physics.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}, nil, 0)
	if !errors.Is(err, physics.ErrInvalidGeometry) {
		t.Errorf("degenerate shape: err = %v, want ErrInvalidGeometry", err)
	}
}

func TestRestoreRebuildsShapes(t *testing.T) {
	m := NewManager(testConfig(), nil)
	src, err := m.Create(CreateOptions{Count: intPtr(4)})
	if err != nil {
		t.Fatal(err)
	}
	shapes := src.Shapes()
	dst, err := m.Restore(CreateOptions{Kind: src.Kind, Seed: src.Seed}, shapes)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if dst.Running() {
		t.Error("restored scene should start paused")
	}
	if !reflect.DeepEqual(dst.Shapes(), shapes) {
		t.Error("restored shapes differ from the source")
	}
}

func TestRestoreRejectsBadBalls(t *testing.T) {
	m := NewManager(testConfig(), nil)
	_, err := m.Restore(CreateOptions{Kind: KindBalls}, []ShapeSpec{{Center: physics.NewVec2(10, 10)}})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestRunOnceSkipsPausedScenes(t *testing.T) {
	cfg := testConfig()
	m := NewManager(cfg, nil)
	running, err := m.Create(CreateOptions{Count: intPtr(1)})
	if err != nil {
		t.Fatal(err)
	}
	paused, err := m.Create(CreateOptions{Count: intPtr(1)})
	if err != nil {
		t.Fatal(err)
	}
	paused.Pause()

	sink := &countingSink{frames: map[string]int{}}
	for i := 0; i < 3; i++ {
		runOnce(context.Background(), m, nil, sink, cfg)
	}
	if sink.frames[running.Token] != 3 {
		t.Errorf("running scene got %d frames, want 3", sink.frames[running.Token])
	}
	if sink.frames[paused.Token] != 0 {
		t.Errorf("paused scene got %d frames, want 0", sink.frames[paused.Token])
	}
	if paused.Frame().Tick != 0 {
		t.Errorf("paused scene advanced to tick %d", paused.Frame().Tick)
	}

	paused.Resume()
	runOnce(context.Background(), m, nil, sink, cfg)
	if sink.frames[paused.Token] != 1 {
		t.Errorf("resumed scene got %d frames, want 1", sink.frames[paused.Token])
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"", KindPolygons, true},
		{"polygons", KindPolygons, true},
		{"balls", KindBalls, true},
		{"cubes", "", false},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestSetRuntimeValue(t *testing.T) {
	m := NewManager(testConfig(), nil)
	if err := m.SetRuntimeValue("restitution", "2"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("restitution 2: err = %v, want ErrInvalidRequest", err)
	}
	if got := m.Config().Restitution; got != 1 {
		t.Errorf("rejected value leaked into config: restitution = %v", got)
	}
	if err := m.SetRuntimeValue("no_such_key", "1"); !errors.Is(err, config.ErrUnknownRuntimeKey) {
		t.Errorf("unknown key: err = %v", err)
	}

	before, err := m.Create(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetRuntimeValue("default_shape_count", "1"); err != nil {
		t.Fatalf("SetRuntimeValue: %v", err)
	}
	after, err := m.Create(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if before.Len() != 3 || after.Len() != 1 {
		t.Errorf("shape counts = %d and %d, want 3 and 1", before.Len(), after.Len())
	}
}
