package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/api/handlers"
	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/middleware"
	"github.com/polyspin/backend/internal/scenes"
	"github.com/polyspin/backend/internal/sim"
	"github.com/polyspin/backend/internal/ws"
)

// SetupRoutes configures all API routes. Routes backed by Postgres are only
// registered when db is non-nil.
func SetupRoutes(router *gin.Engine, db *sqlx.DB, m *sim.Manager, hub *ws.Hub, frames *sim.FrameStore, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(m))
		v1.GET("/config", handlers.GetConfig(m))

		sc := v1.Group("/scenes")
		{
			sc.GET("", handlers.ListScenes(m))
			sc.POST("", handlers.CreateScene(m))
			sc.GET("/:token", handlers.GetScene(m, frames))
			sc.POST("/:token/tick", handlers.StepScene(m, hub))
			sc.POST("/:token/shapes", handlers.AddShape(m))
			sc.DELETE("/:token/shapes", handlers.RemoveShape(m))
			sc.POST("/:token/click", handlers.ClickScene(m))
			sc.GET("/:token/ws", middleware.WebSocketOriginCheck(cfg), ws.HandleWebSocket(hub))
		}

		v1.POST("/admin/login", handlers.OperatorLogin(db, cfg))

		adm := v1.Group("/admin", middleware.OperatorAuth(cfg))
		{
			adm.DELETE("/scenes/:token", handlers.DeleteScene(db, m, hub, frames))
			adm.POST("/scenes/:token/pause", handlers.PauseScene(db, m))
			adm.POST("/scenes/:token/resume", handlers.ResumeScene(db, m))

			if db == nil {
				log.Println("[API] No database; preset, config and audit routes disabled")
				return
			}
			presets := scenes.NewStore(db)
			adm.POST("/scenes/:token/presets", handlers.SavePreset(db, m, presets))
			adm.GET("/presets", handlers.ListPresets(presets))
			adm.POST("/presets/:id/load", handlers.LoadPreset(db, m, presets))
			adm.DELETE("/presets/:id", handlers.DeletePreset(db, presets))
			adm.GET("/config", handlers.GetRuntimeConfig(db))
			adm.PUT("/config/:key", handlers.UpdateRuntimeConfig(db, m))
			adm.GET("/audit", handlers.GetAuditLogs(db))
		}
	}
}
