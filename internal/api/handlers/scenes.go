package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/polyspin/backend/internal/physics"
	"github.com/polyspin/backend/internal/sim"
)

const maxStepsPerRequest = 1000

// ListScenes returns every live scene
func ListScenes(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"scenes": m.List()})
	}
}

// CreateScene starts a new scene. An empty body creates a default polygon
// scene.
func CreateScene(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts sim.CreateOptions
		if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		s, err := m.Create(opts)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("X-Scene-Token", s.Token)
		c.JSON(http.StatusCreated, gin.H{"scene": s.Summary(), "frame": s.Frame()})
	}
}

// GetScene returns the current frame. With ?cached=true the last frame
// cached in Redis is returned instead, which also works for scenes owned by
// another instance.
func GetScene(m *sim.Manager, frames *sim.FrameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if c.Query("cached") == "true" {
			f, err := frames.LoadFrame(c.Request.Context(), token)
			if errors.Is(err, sim.ErrFrameNotCached) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, f)
			return
		}

		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.Frame())
	}
}

// StepScene advances a scene by ?steps= ticks (default 1) and pushes the
// resulting frame to its viewers.
func StepScene(m *sim.Manager, sink sim.FrameSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		steps := queryInt(c, "steps", 1, 1, maxStepsPerRequest)
		var f sim.Frame
		for i := 0; i < steps; i++ {
			f = s.Step()
		}
		if sink != nil {
			sink.BroadcastFrame(f)
		}
		c.JSON(http.StatusOK, f)
	}
}

type addShapeRequest struct {
	Vertices []physics.Vec2 `json:"vertices"`
	Point    *physics.Vec2  `json:"point"`
}

// AddShape inserts a shape from explicit vertices, around a point, or at
// random when the body is empty.
func AddShape(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		var req addShapeRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Point != nil && !req.Point.IsFinite() {
			writeError(c, fmt.Errorf("%w: point must be finite", sim.ErrInvalidRequest))
			return
		}

		id, err := s.AddShape(req.Vertices, req.Point, m.Config().MaxShapesPerScene)
		if err != nil {
			writeError(c, err)
			return
		}
		m.Publish(sim.SceneEvent{Type: sim.EventShapeAdded, SceneToken: s.Token, ShapeID: id, Point: req.Point})
		c.JSON(http.StatusCreated, gin.H{"shape_id": id, "shapes": s.Len()})
	}
}

// RemoveShape deletes the first shape containing ?x=&y=.
func RemoveShape(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		p, err := queryPoint(c)
		if err != nil {
			writeError(c, err)
			return
		}

		removed := s.RemoveShape(p)
		if removed {
			m.Publish(sim.SceneEvent{Type: sim.EventShapeRemoved, SceneToken: s.Token, Point: &p})
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed, "shapes": s.Len()})
	}
}

// ClickScene removes the shape under the point, or adds one there.
func ClickScene(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		var p physics.Vec2
		if err := c.ShouldBindJSON(&p); err != nil || !p.IsFinite() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y required"})
			return
		}

		res, err := s.Click(p, m.Config().MaxShapesPerScene)
		if err != nil {
			writeError(c, err)
			return
		}
		evType := sim.EventShapeAdded
		if res.Action == sim.ActionRemoved {
			evType = sim.EventShapeRemoved
		}
		m.Publish(sim.SceneEvent{Type: evType, SceneToken: s.Token, ShapeID: res.ShapeID, Point: &p})
		c.JSON(http.StatusOK, res)
	}
}
