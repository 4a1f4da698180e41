package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/polyspin/backend/internal/sim"
)

// GetConfig returns the settings the renderer needs to size and drive a scene
func GetConfig(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := m.Config()
		c.JSON(http.StatusOK, gin.H{
			"physics":              cfg.Physics(),
			"tick_interval_ms":     cfg.TickIntervalMs,
			"default_shape_count":  cfg.DefaultShapeCount,
			"max_shapes_per_scene": cfg.MaxShapesPerScene,
			"max_scenes":           cfg.MaxScenes,
			"kinds":                []sim.Kind{sim.KindPolygons, sim.KindBalls},
		})
	}
}
