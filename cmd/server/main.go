package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/polyspin/backend/internal/admin"
	"github.com/polyspin/backend/internal/api"
	"github.com/polyspin/backend/internal/config"
	"github.com/polyspin/backend/internal/database"
	"github.com/polyspin/backend/internal/migrations"
	"github.com/polyspin/backend/internal/redis"
	"github.com/polyspin/backend/internal/sim"
	"github.com/polyspin/backend/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		var err error
		db, err = database.Connect(connectCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if os.Getenv("MIGRATE_ON_START") == "true" {
			dir := os.Getenv("MIGRATIONS_DIR")
			if dir == "" {
				dir = "migrations"
			}
			log.Printf("[MIGRATE] Running DB migrations from %s", dir)
			if err := migrations.RunMigrations(cfg.DatabaseURL, dir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		if err := admin.ApplyRuntimeConfigToConfig(ctx, db, cfg); err != nil {
			log.Printf("[CONFIG] Runtime config not applied: %v", err)
		}
	} else {
		log.Println("[DB] DATABASE_URL empty; presets and operators disabled")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		var err error
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[REDIS] REDIS_URL empty; frame cache and scene events disabled")
	}

	frames := sim.NewFrameStore(rdb, time.Duration(cfg.SceneCacheTTLMins)*time.Minute)
	manager := sim.NewManager(cfg, frames)

	hub := ws.NewHub(manager)
	go hub.Run(ctx)
	ws.StartSceneEventSubscriber(ctx, rdb, hub)

	if cfg.DefaultShapeCount > 0 {
		if s, err := manager.Create(sim.CreateOptions{}); err != nil {
			log.Printf("[SIM] Failed to create default scene: %v", err)
		} else {
			log.Printf("[SIM] Default scene ready: %s", s.Token)
		}
	}
	sim.StartRunner(ctx, manager, frames, hub, cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, manager, hub, frames, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting polyspin server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
