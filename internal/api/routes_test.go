package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/middleware"
	"github.com/polyspin/backend/internal/physics"
	"github.com/polyspin/backend/internal/sim"
	"github.com/polyspin/backend/internal/ws"
)

func testConfig() *config.Config {
	d := physics.DefaultConfig()
	return &config.Config{
		Environment:        "test",
		FrontendURL:        "http://localhost:5173",
		TickIntervalMs:     10,
		DefaultShapeCount:  2,
		DefaultSeed:        5,
		MaxScenes:          8,
		MaxShapesPerScene:  4,
		ArenaWidth:         d.Width,
		ArenaHeight:        d.Height,
		Restitution:        d.Restitution,
		Gravity:            d.Gravity,
		MaxLinearSpeed:     d.MaxLinearSpeed,
		MaxAngularSpeed:    d.MaxAngularSpeed,
		PolygonRadius:      d.Radius,
		PolygonNoise:       d.Noise,
		PolygonMinSides:    d.MinSides,
		PolygonMaxSides:    d.MaxSides,
		BallSpeed:          d.BallSpeed,
		BallSquish:         d.BallSquish,
		BallFixedRadius:    d.BallFixedRadius,
		JWTSecret:          "test-secret",
		OperatorTokenHours: 1,
	}
}

type testServer struct {
	router  *gin.Engine
	manager *sim.Manager
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	m := sim.NewManager(cfg, nil)
	hub := ws.NewHub(m)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	router := gin.New()
	SetupRoutes(router, nil, m, hub, sim.NewFrameStore(nil, time.Hour), cfg)
	return &testServer{router: router, manager: m, cfg: cfg}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

type createResponse struct {
	Scene sim.Summary `json:"scene"`
	Frame sim.Frame   `json:"frame"`
}

func (s *testServer) createScene(t *testing.T, body interface{}) createResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/scenes", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create scene: status %d body %s", w.Code, w.Body.String())
	}
	var resp createResponse
	decode(t, w, &resp)
	return resp
}

func TestHealthAndConfig(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/config", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("config status = %d", w.Code)
	}
	var body struct {
		Physics        physics.Config `json:"physics"`
		TickIntervalMs int            `json:"tick_interval_ms"`
	}
	decode(t, w, &body)
	if body.Physics.Width != 1280 || body.TickIntervalMs != 10 {
		t.Errorf("config = %+v", body)
	}
}

func TestCreateAndListScenes(t *testing.T) {
	s := newTestServer(t)

	created := s.createScene(t, nil)
	if created.Scene.Shapes != 2 || created.Scene.Kind != sim.KindPolygons {
		t.Errorf("created = %+v", created.Scene)
	}
	s.createScene(t, map[string]interface{}{"kind": "balls", "count": 3})

	w := s.do(t, http.MethodGet, "/api/v1/scenes", nil, "")
	var list struct {
		Scenes []sim.Summary `json:"scenes"`
	}
	decode(t, w, &list)
	if len(list.Scenes) != 2 {
		t.Errorf("listed %d scenes, want 2", len(list.Scenes))
	}
}

func TestCreateSceneErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"unknown kind", map[string]interface{}{"kind": "stars"}, http.StatusBadRequest},
		{"over shape limit", map[string]interface{}{"count": 5}, http.StatusConflict},
		{"bad restitution", map[string]interface{}{"config": map[string]interface{}{"restitution": -1}}, http.StatusBadRequest},
		{"malformed", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/scenes", tt.body, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestTickAdvancesFrame(t *testing.T) {
	s := newTestServer(t)
	created := s.createScene(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/scenes/"+created.Scene.Token+"/tick?steps=5", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("tick status = %d", w.Code)
	}
	var f sim.Frame
	decode(t, w, &f)
	if f.Tick != 5 {
		t.Errorf("tick = %d, want 5", f.Tick)
	}

	w = s.do(t, http.MethodGet, "/api/v1/scenes/"+created.Scene.Token, nil, "")
	decode(t, w, &f)
	if f.Tick != 5 || len(f.Polygons) != 2 {
		t.Errorf("frame = tick %d with %d polygons", f.Tick, len(f.Polygons))
	}
}

func TestUnknownSceneIs404(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/api/v1/scenes/SCN_NOPE",
		"/api/v1/scenes/SCN_NOPE/ws",
	} {
		if w := s.do(t, http.MethodGet, path, nil, ""); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
	if w := s.do(t, http.MethodPost, "/api/v1/scenes/SCN_NOPE/tick", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("tick unknown scene = %d, want 404", w.Code)
	}
}

func TestCachedFrameMissWithoutRedis(t *testing.T) {
	s := newTestServer(t)
	created := s.createScene(t, nil)
	w := s.do(t, http.MethodGet, "/api/v1/scenes/"+created.Scene.Token+"?cached=true", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAddAndRemoveShapes(t *testing.T) {
	s := newTestServer(t)
	created := s.createScene(t, map[string]interface{}{"count": 0})
	base := "/api/v1/scenes/" + created.Scene.Token

	square := []physics.Vec2{{X: 100, Y: 100}, {X: 200, Y: 100}, {X: 200, Y: 200}, {X: 100, Y: 200}}
	w := s.do(t, http.MethodPost, base+"/shapes", map[string]interface{}{"vertices": square}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d body %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, base+"/shapes", map[string]interface{}{"vertices": square[:2]}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("degenerate add = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodDelete, base+"/shapes?x=10&y=10", nil, "")
	var res struct {
		Removed bool `json:"removed"`
		Shapes  int  `json:"shapes"`
	}
	decode(t, w, &res)
	if res.Removed || res.Shapes != 1 {
		t.Errorf("miss = %+v", res)
	}

	w = s.do(t, http.MethodDelete, base+"/shapes?x=150&y=150", nil, "")
	decode(t, w, &res)
	if !res.Removed || res.Shapes != 0 {
		t.Errorf("hit = %+v", res)
	}

	if w := s.do(t, http.MethodDelete, base+"/shapes?x=abc", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad point = %d, want 400", w.Code)
	}
}

func TestShapeLimit(t *testing.T) {
	s := newTestServer(t)
	created := s.createScene(t, map[string]interface{}{"count": 4})
	w := s.do(t, http.MethodPost, "/api/v1/scenes/"+created.Scene.Token+"/shapes", nil, "")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestClickTogglesShape(t *testing.T) {
	s := newTestServer(t)
	created := s.createScene(t, map[string]interface{}{"count": 0})
	path := "/api/v1/scenes/" + created.Scene.Token + "/click"

	w := s.do(t, http.MethodPost, path, map[string]float64{"x": 400, "y": 300}, "")
	var res sim.ClickResult
	decode(t, w, &res)
	if res.Action != sim.ActionAdded {
		t.Fatalf("first click = %+v", res)
	}

	scene, err := s.manager.Get(created.Scene.Token)
	if err != nil {
		t.Fatal(err)
	}
	cm := scene.Frame().Polygons[0].CenterOfMass
	w = s.do(t, http.MethodPost, path, map[string]float64{"x": cm.X, "y": cm.Y}, "")
	decode(t, w, &res)
	if res.Action != sim.ActionRemoved {
		t.Errorf("second click = %+v", res)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	created := s.createScene(t, nil)
	path := "/api/v1/admin/scenes/" + created.Scene.Token + "/pause"

	if w := s.do(t, http.MethodPost, path, nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
	if w := s.do(t, http.MethodPost, path, nil, "bogus"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", w.Code)
	}
}

func TestAdminPauseResumeDelete(t *testing.T) {
	s := newTestServer(t)
	created := s.createScene(t, nil)
	token, _, err := middleware.IssueOperatorToken(s.cfg, "ops", []string{"admin"})
	if err != nil {
		t.Fatal(err)
	}
	base := "/api/v1/admin/scenes/" + created.Scene.Token

	w := s.do(t, http.MethodPost, base+"/pause", nil, token)
	var sum sim.Summary
	decode(t, w, &sum)
	if w.Code != http.StatusOK || sum.Running {
		t.Fatalf("pause = %d %+v", w.Code, sum)
	}

	w = s.do(t, http.MethodPost, base+"/resume", nil, token)
	decode(t, w, &sum)
	if !sum.Running {
		t.Errorf("resume left scene paused")
	}

	if w := s.do(t, http.MethodDelete, base, nil, token); w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, base, nil, token); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
	if _, err := s.manager.Get(created.Scene.Token); err == nil {
		t.Error("scene still present after delete")
	}
}

func TestLoginWithoutDatabase(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"username": "ops", "secret": "x"}, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty login = %d, want 400", w.Code)
	}
}
