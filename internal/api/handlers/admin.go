package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/sim"
	"github.com/polyspin/backend/internal/ws"
)

// DeleteScene stops a scene, drops its cached frame and disconnects its
// viewers.
func DeleteScene(db *sqlx.DB, m *sim.Manager, hub *ws.Hub, frames *sim.FrameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := m.Delete(token); err != nil {
			audit(c, db, "delete_scene", map[string]interface{}{"token": token}, false)
			writeError(c, err)
			return
		}
		if err := frames.DeleteFrame(c.Request.Context(), token); err != nil {
			log.Printf("[ADMIN] Failed to drop cached frame for %s: %v", token, err)
		}
		if hub != nil {
			hub.CloseScene(token)
		}
		audit(c, db, "delete_scene", map[string]interface{}{"token": token}, true)
		c.JSON(http.StatusOK, gin.H{"deleted": token})
	}
}

// PauseScene stops the runner from ticking a scene
func PauseScene(db *sqlx.DB, m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		s.Pause()
		m.Publish(sim.SceneEvent{Type: sim.EventScenePaused, SceneToken: s.Token})
		audit(c, db, "pause_scene", map[string]interface{}{"token": s.Token}, true)
		c.JSON(http.StatusOK, s.Summary())
	}
}

// ResumeScene hands a scene back to the runner
func ResumeScene(db *sqlx.DB, m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		s.Resume()
		m.Publish(sim.SceneEvent{Type: sim.EventSceneResumed, SceneToken: s.Token})
		audit(c, db, "resume_scene", map[string]interface{}{"token": s.Token}, true)
		c.JSON(http.StatusOK, s.Summary())
	}
}
