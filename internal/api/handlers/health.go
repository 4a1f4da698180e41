package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/polyspin/backend/internal/sim"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "polyspin-api",
			"version": version,
			"uptime":  time.Since(startTime).String(),
			"scenes":  len(m.List()),
		})
	}
}
