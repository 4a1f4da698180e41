package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/polyspin/backend/internal/physics"
	"github.com/polyspin/backend/internal/sim"
)

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sim.ErrSceneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, sim.ErrSceneFull), errors.Is(err, sim.ErrTooManyScenes):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, sim.ErrInvalidRequest), errors.Is(err, physics.ErrInvalidGeometry):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// sceneFromParam resolves :token or writes a 404.
func sceneFromParam(c *gin.Context, m *sim.Manager) (*sim.Scene, bool) {
	s, err := m.Get(c.Param("token"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}

// queryPoint reads finite x and y query parameters.
func queryPoint(c *gin.Context) (physics.Vec2, error) {
	x, errX := strconv.ParseFloat(c.Query("x"), 64)
	y, errY := strconv.ParseFloat(c.Query("y"), 64)
	if errX != nil || errY != nil {
		return physics.Vec2{}, fmt.Errorf("%w: x and y query parameters are required", sim.ErrInvalidRequest)
	}
	p := physics.NewVec2(x, y)
	if !p.IsFinite() {
		return physics.Vec2{}, fmt.Errorf("%w: point must be finite", sim.ErrInvalidRequest)
	}
	return p, nil
}

// queryInt reads a bounded integer query parameter.
func queryInt(c *gin.Context, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || v < lo {
		return def
	}
	if v > hi {
		return hi
	}
	return v
}
