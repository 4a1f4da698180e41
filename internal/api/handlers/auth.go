package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/admin"
	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/middleware"
)

// OperatorLogin validates username + secret and issues a bearer JWT
func OperatorLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Secret   string `json:"secret" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and secret required"})
			return
		}
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator store unavailable"})
			return
		}

		ctx := c.Request.Context()
		username := strings.TrimSpace(req.Username)
		op, err := admin.Authenticate(ctx, db, username, req.Secret)
		if err != nil {
			admin.LogAction(ctx, db, username, c.ClientIP(), c.FullPath(), "login", nil, false)
			if errors.Is(err, admin.ErrOperatorNotFound) || errors.Is(err, admin.ErrInvalidSecret) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		token, exp, err := middleware.IssueOperatorToken(cfg, op.Username, op.Roles)
		if err != nil {
			log.Printf("[ADMIN] Failed to sign token for %s: %v", op.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogAction(ctx, db, op.Username, c.ClientIP(), c.FullPath(), "login", nil, true)
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp.Format(time.RFC3339),
			"operator":   op,
		})
	}
}

func operatorName(c *gin.Context) string {
	if claims, ok := middleware.CurrentOperator(c); ok {
		return claims.Username
	}
	return ""
}

// audit records an operator action for the current request.
func audit(c *gin.Context, db *sqlx.DB, action string, details map[string]interface{}, success bool) {
	admin.LogAction(c.Request.Context(), db, operatorName(c), c.ClientIP(), c.FullPath(), action, details, success)
}
