package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/admin"
	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/sim"
)

// GetRuntimeConfig returns all stored runtime config entries
func GetRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := admin.GetAllRuntimeConfig(c.Request.Context(), db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch config"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"config": configs})
	}
}

// UpdateRuntimeConfig changes one setting for scenes created from now on
func UpdateRuntimeConfig(db *sqlx.DB, m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value required"})
			return
		}

		// Check the value against the live settings before persisting it.
		if err := m.SetRuntimeValue(key, req.Value); err != nil {
			audit(c, db, "update_config", map[string]interface{}{"key": key, "value": req.Value}, false)
			if errors.Is(err, config.ErrUnknownRuntimeKey) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := admin.UpdateRuntimeConfigValue(c.Request.Context(), db, key, req.Value, operatorName(c)); err != nil {
			log.Printf("[ADMIN] Failed to persist runtime config %s: %v", key, err)
			audit(c, db, "update_config", map[string]interface{}{"key": key, "value": req.Value}, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "applied but not persisted"})
			return
		}
		audit(c, db, "update_config", map[string]interface{}{"key": key, "value": req.Value}, true)
		c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
	}
}
