package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/scenes"
	"github.com/polyspin/backend/internal/sim"
)

// SavePreset persists a live scene's shapes under a name
func SavePreset(db *sqlx.DB, m *sim.Manager, presets *scenes.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sceneFromParam(c, m)
		if !ok {
			return
		}
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		id, err := presets.Save(c.Request.Context(), strings.TrimSpace(req.Name), operatorName(c), s)
		if err != nil {
			log.Printf("[ADMIN] Failed to save preset for scene %s: %v", s.Token, err)
			audit(c, db, "save_preset", map[string]interface{}{"token": s.Token}, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preset"})
			return
		}
		audit(c, db, "save_preset", map[string]interface{}{"token": s.Token, "preset_id": id}, true)
		c.JSON(http.StatusCreated, gin.H{"preset_id": id})
	}
}

// ListPresets returns saved presets without their shape payloads
func ListPresets(presets *scenes.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryInt(c, "limit", 25, 1, 200)
		offset := queryInt(c, "offset", 0, 0, 1<<30)
		list, err := presets.List(c.Request.Context(), limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to list presets: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list presets"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"presets": list, "limit": limit, "offset": offset})
	}
}

// LoadPreset rebuilds a saved preset as a new, paused scene
func LoadPreset(db *sqlx.DB, m *sim.Manager, presets *scenes.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preset id"})
			return
		}
		p, err := presets.Get(c.Request.Context(), id)
		if errors.Is(err, scenes.ErrPresetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}

		opts, shapes, err := scenes.Decode(p)
		if err != nil {
			log.Printf("[ADMIN] Preset %d is unreadable: %v", id, err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "preset is unreadable"})
			return
		}
		s, err := m.Restore(opts, shapes)
		if err != nil {
			audit(c, db, "load_preset", map[string]interface{}{"preset_id": id}, false)
			writeError(c, err)
			return
		}
		audit(c, db, "load_preset", map[string]interface{}{"preset_id": id, "token": s.Token}, true)
		c.JSON(http.StatusCreated, gin.H{"scene": s.Summary(), "frame": s.Frame()})
	}
}

// DeletePreset removes a saved preset
func DeletePreset(db *sqlx.DB, presets *scenes.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preset id"})
			return
		}
		err = presets.Delete(c.Request.Context(), id)
		if errors.Is(err, scenes.ErrPresetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		audit(c, db, "delete_preset", map[string]interface{}{"preset_id": id}, true)
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}
