package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/polyspin/backend/internal/physics"
)

type Config struct {
	// Environment
	Environment string
	Verbose     bool

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickIntervalMs    int
	FrameCacheEvery   int
	DefaultShapeCount int
	DefaultSeed       int64
	MaxScenes         int
	MaxShapesPerScene int
	SceneCacheTTLMins int
	ArenaWidth        float64
	ArenaHeight       float64
	Restitution       float64
	GravityEnabled    bool
	Gravity           float64
	MaxLinearSpeed    float64
	MaxAngularSpeed   float64
	PolygonRadius     float64
	PolygonNoise      float64
	PolygonMinSides   int
	PolygonMaxSides   int
	BallSpeed         float64
	BallSquish        float64
	BallFixedRadius   bool

	// Security
	JWTSecret          string
	OperatorTokenHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		Verbose:     getEnvBool("VERBOSE", false),

		// Postgres and Redis are optional; empty disables them
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickIntervalMs:    getEnvInt("TICK_INTERVAL_MS", 10),
		FrameCacheEvery:   getEnvInt("FRAME_CACHE_EVERY_TICKS", 50),
		DefaultShapeCount: getEnvInt("DEFAULT_SHAPE_COUNT", 6),
		DefaultSeed:       int64(getEnvInt("DEFAULT_SEED", 0)),
		MaxScenes:         getEnvInt("MAX_SCENES", 32),
		MaxShapesPerScene: getEnvInt("MAX_SHAPES_PER_SCENE", 64),
		SceneCacheTTLMins: getEnvInt("SCENE_CACHE_TTL_MINUTES", 60),
		ArenaWidth:        getEnvFloat("ARENA_WIDTH", 1280),
		ArenaHeight:       getEnvFloat("ARENA_HEIGHT", 720),
		Restitution:       getEnvFloat("RESTITUTION", 1),
		GravityEnabled:    getEnvBool("GRAVITY_ENABLED", false),
		Gravity:           getEnvFloat("GRAVITY", 0.1),
		MaxLinearSpeed:    getEnvFloat("MAX_LINEAR_SPEED", 4),
		MaxAngularSpeed:   getEnvFloat("MAX_ANGULAR_SPEED", 0.05),
		PolygonRadius:     getEnvFloat("POLYGON_RADIUS", 100),
		PolygonNoise:      getEnvFloat("POLYGON_NOISE", 100),
		PolygonMinSides:   getEnvInt("POLYGON_MIN_SIDES", 3),
		PolygonMaxSides:   getEnvInt("POLYGON_MAX_SIDES", 7),
		BallSpeed:         getEnvFloat("BALL_SPEED", 5),
		BallSquish:        getEnvFloat("BALL_SQUISH", 1),
		BallFixedRadius:   getEnvBool("BALL_FIXED_RADIUS", true),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		OperatorTokenHours: getEnvInt("OPERATOR_TOKEN_HOURS", 12),
	}
}

// Physics returns the simulation settings every new scene starts from.
func (c *Config) Physics() physics.Config {
	return physics.Config{
		Width:           c.ArenaWidth,
		Height:          c.ArenaHeight,
		Restitution:     c.Restitution,
		GravityEnabled:  c.GravityEnabled,
		Gravity:         c.Gravity,
		MaxLinearSpeed:  c.MaxLinearSpeed,
		MaxAngularSpeed: c.MaxAngularSpeed,
		Radius:          c.PolygonRadius,
		Noise:           c.PolygonNoise,
		MinSides:        c.PolygonMinSides,
		MaxSides:        c.PolygonMaxSides,
		BallSpeed:       c.BallSpeed,
		BallSquish:      c.BallSquish,
		BallFixedRadius: c.BallFixedRadius,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
