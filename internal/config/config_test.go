package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "")
	t.Setenv("RESTITUTION", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	cfg := Load()

	if cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Errorf("stores enabled by default: DatabaseURL=%q RedisURL=%q", cfg.DatabaseURL, cfg.RedisURL)
	}

	if cfg.ArenaWidth != 1280 || cfg.ArenaHeight != 720 {
		t.Errorf("arena = %vx%v, want 1280x720", cfg.ArenaWidth, cfg.ArenaHeight)
	}
	if cfg.Restitution != 1 {
		t.Errorf("restitution = %v, want 1", cfg.Restitution)
	}
	if cfg.TickIntervalMs != 10 {
		t.Errorf("tick interval = %d, want 10", cfg.TickIntervalMs)
	}
	if err := cfg.Physics().Validate(); err != nil {
		t.Errorf("default physics config invalid: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "640.5")
	t.Setenv("GRAVITY_ENABLED", "true")
	t.Setenv("POLYGON_MAX_SIDES", "5")
	t.Setenv("RESTITUTION", "not-a-number")

	cfg := Load()
	phys := cfg.Physics()

	if phys.Width != 640.5 {
		t.Errorf("width = %v, want 640.5", phys.Width)
	}
	if !phys.GravityEnabled {
		t.Error("expected gravity enabled")
	}
	if phys.MaxSides != 5 {
		t.Errorf("max sides = %d, want 5", phys.MaxSides)
	}
	if phys.Restitution != 1 {
		t.Errorf("unparseable restitution should fall back to default, got %v", phys.Restitution)
	}
}

func TestSetRuntimeValue(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
		check      func(c *Config) bool
	}{
		{"restitution", "0.5", false, func(c *Config) bool { return c.Restitution == 0.5 }},
		{"gravity_enabled", "true", false, func(c *Config) bool { return c.GravityEnabled }},
		{"polygon_max_sides", "9", false, func(c *Config) bool { return c.PolygonMaxSides == 9 }},
		{"max_scenes", "many", true, nil},
		{"gravity_enabled", "sometimes", true, nil},
		{"jwt_secret", "x", true, nil},
	}
	for _, tt := range tests {
		c := &Config{}
		err := c.SetRuntimeValue(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetRuntimeValue(%q, %q) err = %v", tt.key, tt.value, err)
			continue
		}
		if tt.check != nil && !tt.check(c) {
			t.Errorf("SetRuntimeValue(%q, %q) did not apply: %+v", tt.key, tt.value, c)
		}
	}
}
