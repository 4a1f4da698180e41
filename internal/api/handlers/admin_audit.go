package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/admin"
)

// GetAuditLogs returns paginated audit log entries
func GetAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := c.DefaultQuery("operator", "")
		limit := queryInt(c, "limit", 25, 1, 200)
		offset := queryInt(c, "offset", 0, 0, 1<<30)

		logs, err := admin.AuditLogs(c.Request.Context(), db, operator, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch audit logs"})
			return
		}
		// Viewing the audit log is not itself audited.
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}
